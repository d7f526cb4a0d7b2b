package pkgmgr

import (
	"context"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
	"devutils/internal/shell"
)

// WindowsInstall installs a package with winget, falling back to Chocolatey
// when winget is missing or its install fails. Either ID may be empty.
func WindowsInstall(ctx context.Context, r shell.Runner, wingetID, chocoPkg string) error {
	wg := NewWinget(r)
	ch := NewChoco(r)

	var wingetErr error
	if wingetID != "" && wg.Available() {
		if wingetErr = wg.Install(ctx, wingetID); wingetErr == nil {
			return nil
		}
		logger.Warn("[WARN] winget install failed: %v\n", wingetErr)
	}
	if chocoPkg != "" && ch.Available() {
		if wingetErr != nil {
			logger.Info("[INFO] Falling back to Chocolatey...\n")
		}
		return ch.Install(ctx, chocoPkg)
	}
	if wingetErr != nil {
		return wingetErr
	}
	return errors.New("neither winget nor choco is available; install one of them first")
}

// WindowsIsInstalled reports whether either manager has the package.
func WindowsIsInstalled(ctx context.Context, r shell.Runner, wingetID, chocoPkg string) bool {
	if wingetID != "" && NewWinget(r).IsInstalled(ctx, wingetID) {
		return true
	}
	return chocoPkg != "" && NewChoco(r).IsInstalled(ctx, chocoPkg)
}
