package installer

import (
	"context"

	"devutils/internal/pkgmgr"
	"devutils/internal/platform"
)

// Step constructors for the common one-command installs.

func brewFormula(formulae ...string) Step {
	return func(ctx context.Context, env *Env) error {
		return env.brew().Install(ctx, formulae...)
	}
}

func brewCask(cask string) Step {
	return func(ctx context.Context, env *Env) error {
		return env.brew().InstallCask(ctx, cask)
	}
}

func aptPackages(pkgs ...string) Step {
	return func(ctx context.Context, env *Env) error {
		apt := env.apt()
		if err := apt.Update(ctx); err != nil {
			return err
		}
		return apt.Install(ctx, pkgs...)
	}
}

func dnfPackages(pkgs ...string) Step {
	return func(ctx context.Context, env *Env) error {
		return env.dnf().Install(ctx, pkgs...)
	}
}

func windowsPackage(wingetID, chocoPkg string) Step {
	return func(ctx context.Context, env *Env) error {
		return pkgmgr.WindowsInstall(ctx, env.Runner, wingetID, chocoPkg)
	}
}

// caskOrBinary checks the binary on PATH, then the package manager that
// installs the GUI build: the macOS cask or the winget/choco package.
func caskOrBinary(cask, binary, wingetID, chocoPkg string) func(ctx context.Context, env *Env) bool {
	return func(ctx context.Context, env *Env) bool {
		if binary != "" && env.Runner.Exists(binary) {
			return true
		}
		switch env.Platform.Family {
		case platform.Darwin:
			return env.brew().IsCaskInstalled(ctx, cask)
		case platform.Windows:
			return pkgmgr.WindowsIsInstalled(ctx, env.Runner, wingetID, chocoPkg)
		}
		return false
	}
}
