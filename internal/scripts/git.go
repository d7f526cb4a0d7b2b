package scripts

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
	"devutils/internal/logger"
	"devutils/internal/shell"
)

// DefaultCommitMessage is used by GitPush when no message is given.
const DefaultCommitMessage = "Update"

func requireWorkTree(ctx context.Context, r shell.Runner) error {
	if err := requireCommand(r, "git", "run `dev install git`"); err != nil {
		return err
	}
	res := r.Run(ctx, "git", "rev-parse", "--is-inside-work-tree")
	if !res.OK() || strings.TrimSpace(res.Stdout) != "true" {
		return deverrors.NewExitError(deverrors.ErrNotGitRepo, "run this command inside a git repository")
	}
	return nil
}

// GitPush stages everything, commits when there is something to commit and
// pushes the current branch.
func GitPush(ctx context.Context, r shell.Runner, w io.Writer, message string) error {
	if err := requireWorkTree(ctx, r); err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		message = DefaultCommitMessage
	}

	if err := r.Run(ctx, "git", "add", "-A").Err("git add"); err != nil {
		return err
	}

	status := r.Run(ctx, "git", "status", "--porcelain")
	if err := status.Err("git status"); err != nil {
		return err
	}
	if strings.TrimSpace(status.Stdout) == "" {
		logger.Info("[INFO] Nothing to commit\n")
	} else {
		if err := r.Stream(ctx, "git", "commit", "-m", message).Err("git commit"); err != nil {
			return err
		}
	}

	if err := r.Stream(ctx, "git", "push").Err("git push"); err != nil {
		return errors.Wrap(err, "pushing")
	}
	_, _ = io.WriteString(w, "Pushed.\n")
	return nil
}

// GitPull rebases local work onto the upstream branch, stashing uncommitted
// changes around the rebase.
func GitPull(ctx context.Context, r shell.Runner, w io.Writer) error {
	if err := requireWorkTree(ctx, r); err != nil {
		return err
	}
	if err := r.Stream(ctx, "git", "pull", "--rebase", "--autostash").Err("git pull"); err != nil {
		return err
	}
	_, _ = io.WriteString(w, "Up to date.\n")
	return nil
}
