package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"devutils/internal/logger"
	"devutils/internal/platform"
)

const terraformVersion = "1.9.8"

// Terraform installs HashiCorp Terraform. On Linux the pinned release zip is
// downloaded and the binary copied into the install directory.
var Terraform = &Installer{
	Name:           "terraform",
	Aliases:        []string{"tf"},
	Description:    "Infrastructure as code CLI",
	Binary:         "terraform",
	VersionArgs:    []string{"version"},
	DefaultVersion: terraformVersion,
	Steps: platform.Table[Step]{
		platform.MacOS:   terraformMacOS,
		platform.Debian:  terraformLinux,
		platform.RHEL:    terraformLinux,
		platform.Windows: windowsPackage("Hashicorp.Terraform", "terraform"),
	},
}

func terraformMacOS(ctx context.Context, env *Env) error {
	brew := env.brew()
	if err := brew.Tap(ctx, "hashicorp/tap"); err != nil {
		return err
	}
	return brew.Install(ctx, "hashicorp/tap/terraform")
}

// TerraformURL returns the release zip URL for a version and architecture.
func TerraformURL(version, arch string) string {
	return fmt.Sprintf("https://releases.hashicorp.com/terraform/%s/terraform_%s_linux_%s.zip", version, version, arch)
}

func terraformLinux(ctx context.Context, env *Env) error {
	if err := requireArch(env, "terraform", platform.AMD64, platform.ARM64); err != nil {
		return err
	}
	url := TerraformURL(env.versionOr(terraformVersion), env.Platform.Arch)
	if env.DryRun {
		logger.Plain("[dry-run] download %s and install terraform\n", url)
		return nil
	}

	archive, cleanup, err := env.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = ExtractAndInstall(ctx, env.Runner, archive, filepath.Join(filepath.Dir(archive), "extract"), "terraform", env.InstallDir)
	return err
}
