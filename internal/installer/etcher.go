package installer

import (
	"context"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
	"devutils/internal/pkgmgr"
	"devutils/internal/platform"
)

const etcherRepo = "balena-io/etcher"

// BalenaEtcher installs balenaEtcher. Linux builds are published for x86_64
// only, so other architectures are rejected before anything is downloaded.
var BalenaEtcher = &Installer{
	Name:        "balena-etcher",
	Aliases:     []string{"etcher", "balenaetcher"},
	Description: "Flash OS images to SD cards and USB drives",
	Check: func(ctx context.Context, env *Env) bool {
		if env.Runner.Exists("balena-etcher") || env.Runner.Exists("balena-etcher-electron") {
			return true
		}
		switch env.Platform.Family {
		case platform.Darwin:
			return env.brew().IsCaskInstalled(ctx, "balenaetcher")
		case platform.Debian:
			return env.apt().IsInstalled(ctx, "balena-etcher")
		case platform.RHEL:
			return env.dnf().IsInstalled(ctx, "balena-etcher")
		case platform.Windows:
			return pkgmgr.WindowsIsInstalled(ctx, env.Runner, "Balena.Etcher", "etcher")
		}
		return false
	},
	Steps: platform.Table[Step]{
		platform.MacOS:   brewCask("balenaetcher"),
		platform.Debian:  etcherLinux("_amd64.deb"),
		platform.RHEL:    etcherLinux(".x86_64.rpm"),
		platform.Windows: windowsPackage("Balena.Etcher", "etcher"),
	},
}

func etcherLinux(suffix string) Step {
	return func(ctx context.Context, env *Env) error {
		if err := requireArch(env, "balena-etcher", platform.AMD64); err != nil {
			return err
		}
		if env.Releases == nil {
			return errors.New("no GitHub release source configured")
		}
		rel, err := env.Releases.Release(ctx, etcherRepo, "")
		if err != nil {
			return err
		}
		asset, ok := assetWithSuffix(rel.Assets, suffix)
		if !ok {
			return errors.Newf("release %s of %s has no *%s asset", rel.Tag, etcherRepo, suffix)
		}
		logger.Info("[INFO] Using balenaEtcher %s (%s)\n", rel.Tag, asset.Name)
		return installPackageFile(ctx, env, asset.URL)
	}
}
