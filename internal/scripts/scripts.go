// Package scripts implements the small cross-platform utilities exposed as
// dev subcommands. Scripts that shell out take a shell.Runner; everything a
// script prints for the user goes to the io.Writer it is given.
package scripts

import (
	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
	"devutils/internal/shell"
)

// Names lists every script subcommand, in the order they are documented.
var Names = []string{
	"git-push", "git-pull", "ports", "local-ip", "iso", "dp",
	"docker-clean", "get-video", "clear-dns-cache",
}

// requireCommand fails with ErrCommandNotFound unless name is on PATH.
func requireCommand(r shell.Runner, name, suggestion string) error {
	if r.Exists(name) {
		return nil
	}
	return deverrors.NewExitError(errors.Wrapf(deverrors.ErrCommandNotFound, "%s", name), suggestion)
}
