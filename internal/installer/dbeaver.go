package installer

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"devutils/internal/logger"
	"devutils/internal/pkgmgr"
	"devutils/internal/platform"
)

const (
	dbeaverDebURL = "https://dbeaver.io/files/dbeaver-ce_latest_amd64.deb"
	dbeaverRPMURL = "https://dbeaver.io/files/dbeaver-ce-latest-stable.x86_64.rpm"
)

// DBeaver installs DBeaver Community Edition.
var DBeaver = &Installer{
	Name:        "dbeaver",
	Aliases:     []string{"dbeaver-ce", "dbeaver-community"},
	Description: "Universal database client",
	Check: func(ctx context.Context, env *Env) bool {
		if env.Runner.Exists("dbeaver") || env.Runner.Exists("dbeaver-ce") {
			return true
		}
		switch env.Platform.Family {
		case platform.Darwin:
			return env.brew().IsCaskInstalled(ctx, "dbeaver-community")
		case platform.Debian:
			return env.snap().IsInstalled(ctx, "dbeaver-ce") || env.apt().IsInstalled(ctx, "dbeaver-ce")
		case platform.RHEL:
			return env.snap().IsInstalled(ctx, "dbeaver-ce") || env.dnf().IsInstalled(ctx, "dbeaver-ce")
		case platform.Windows:
			return pkgmgr.WindowsIsInstalled(ctx, env.Runner, "dbeaver.dbeaver", "dbeaver")
		}
		return false
	},
	Steps: platform.Table[Step]{
		platform.MacOS:   brewCask("dbeaver-community"),
		platform.Debian:  dbeaverDebian,
		platform.RHEL:    dbeaverRHEL,
		platform.Windows: windowsPackage("dbeaver.dbeaver", "dbeaver"),
	},
}

func dbeaverDebian(ctx context.Context, env *Env) error {
	if snap := env.snap(); snap.Available() {
		return snap.Install(ctx, "dbeaver-ce", false)
	}
	if err := requireArch(env, "dbeaver", platform.AMD64); err != nil {
		return err
	}
	return installPackageFile(ctx, env, dbeaverDebURL)
}

func dbeaverRHEL(ctx context.Context, env *Env) error {
	if snap := env.snap(); snap.Available() {
		return snap.Install(ctx, "dbeaver-ce", false)
	}
	if err := requireArch(env, "dbeaver", platform.AMD64); err != nil {
		return err
	}
	return installPackageFile(ctx, env, dbeaverRPMURL)
}

// installPackageFile downloads a .deb or .rpm and hands it to the native
// package manager so dependencies are resolved.
func installPackageFile(ctx context.Context, env *Env, url string) error {
	if env.DryRun {
		logger.Plain("[dry-run] download %s\n", url)
		return installLocalPackage(ctx, env, filepath.Join(os.TempDir(), path.Base(url)))
	}
	file, cleanup, err := env.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer cleanup()
	return installLocalPackage(ctx, env, file)
}

func installLocalPackage(ctx context.Context, env *Env, file string) error {
	if env.Platform.Family == platform.RHEL {
		return env.dnf().Install(ctx, file)
	}
	return env.apt().InstallDeb(ctx, file)
}
