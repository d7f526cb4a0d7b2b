package scripts

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
	"devutils/internal/shell"
)

const dockerPSFormat = "table {{.ID}}\t{{.Names}}\t{{.Image}}\t{{.Status}}\t{{.Ports}}"

func requireDocker(r shell.Runner) error {
	return requireCommand(r, "docker", "run `dev install docker`")
}

// DockerPS prints running containers (all containers with all) in a compact
// table.
func DockerPS(ctx context.Context, r shell.Runner, w io.Writer, all bool) error {
	if err := requireDocker(r); err != nil {
		return err
	}
	args := []string{"ps", "--format", dockerPSFormat}
	if all {
		args = append(args, "-a")
	}
	res := r.Run(ctx, "docker", args...)
	if err := res.Err("docker ps"); err != nil {
		return err
	}
	_, _ = io.WriteString(w, res.Stdout)
	return nil
}

// Confirmer asks a yes/no question.
type Confirmer func(question string) (bool, error)

// DockerClean removes stopped containers, unused images, networks and
// volumes. Unless yes is set the user must confirm; a nil confirm means no
// one can be asked, which is refused.
func DockerClean(ctx context.Context, r shell.Runner, w io.Writer, yes bool, confirm Confirmer) error {
	if err := requireDocker(r); err != nil {
		return err
	}
	if !yes {
		if confirm == nil {
			return errors.New("refusing to prune without confirmation on a non-interactive terminal; pass --yes")
		}
		ok, err := confirm("Remove all stopped containers, unused images, networks and volumes?")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = io.WriteString(w, "Aborted.\n")
			return nil
		}
	}

	logger.Info("[INFO] Pruning docker system...\n")
	if err := r.Stream(ctx, "docker", "system", "prune", "-af", "--volumes").Err("docker system prune"); err != nil {
		return err
	}
	_, _ = io.WriteString(w, "Docker cleaned.\n")
	return nil
}
