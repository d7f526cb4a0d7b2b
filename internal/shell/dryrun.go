package shell

import (
	"context"
	"fmt"
	"io"
)

// DryRun is a Runner that prints every command instead of executing it.
// Exists is delegated to the wrapped runner. Read-only queries reach the
// wrapped runner through Unwrap.
type DryRun struct {
	Next Runner
	Out  io.Writer
}

// Run prints the command and reports success.
func (d DryRun) Run(_ context.Context, name string, args ...string) Result {
	_, _ = fmt.Fprintf(d.Out, "[dry-run] %s\n", Join(name, args...))
	return Result{}
}

// Stream prints the command and reports success.
func (d DryRun) Stream(ctx context.Context, name string, args ...string) Result {
	return d.Run(ctx, name, args...)
}

// Exists delegates to the wrapped runner.
func (d DryRun) Exists(name string) bool {
	return d.Next.Exists(name)
}

// Unwrap returns the runner that really executes commands: the wrapped runner
// of a DryRun, or r itself.
func Unwrap(r Runner) Runner {
	switch d := r.(type) {
	case DryRun:
		return Unwrap(d.Next)
	case *DryRun:
		return Unwrap(d.Next)
	}
	return r
}
