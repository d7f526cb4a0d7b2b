// Package shell runs external commands and reports their outcome as a Result
// instead of an error, so callers can branch on exit codes the way an
// installer step does.
package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
)

// Exit codes synthesized when a command never produced one of its own.
const (
	CodeStartFailed = 1
	CodeTimeout     = 124
	CodeNotFound    = 127
)

// Result is the outcome of one subprocess invocation.
type Result struct {
	Code   int
	Stdout string
	Stderr string
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.Code == 0
}

// Err converts a failed result into an error naming desc. It returns nil for
// a successful result.
func (r Result) Err(desc string) error {
	if r.OK() {
		return nil
	}
	detail := strings.TrimSpace(r.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(r.Stdout)
	}
	if detail == "" {
		return errors.Newf("%s failed with exit code %d", desc, r.Code)
	}
	return errors.Newf("%s failed with exit code %d: %s", desc, r.Code, detail)
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args and captures stdout and stderr.
	Run(ctx context.Context, name string, args ...string) Result
	// Stream executes name with args attached to the terminal.
	Stream(ctx context.Context, name string, args ...string) Result
	// Exists reports whether name resolves to an executable on PATH.
	Exists(name string) bool
}

// Options configures an Exec runner.
type Options struct {
	// Timeout bounds every command. Zero means no timeout.
	Timeout time.Duration
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Stdin, Stdout and Stderr are used by Stream. Nil means the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	opts Options
}

// New returns an Exec runner configured by opts.
func New(opts Options) *Exec {
	return &Exec{opts: opts}
}

// Run executes the command and captures its output.
func (e *Exec) Run(ctx context.Context, name string, args ...string) Result {
	var stdout, stderr bytes.Buffer
	code := e.run(ctx, name, args, nil, &stdout, &stderr)
	return Result{Code: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// Stream executes the command with stdio attached so the user sees progress.
// Only the exit code is reported.
func (e *Exec) Stream(ctx context.Context, name string, args ...string) Result {
	stdin, stdout, stderr := e.opts.Stdin, e.opts.Stdout, e.opts.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return Result{Code: e.run(ctx, name, args, stdin, stdout, stderr)}
}

// Exists reports whether name is on PATH.
func (e *Exec) Exists(name string) bool {
	return CommandExists(name)
}

func (e *Exec) run(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger.Debug("[DEBUG] Running command: %s\n", Join(name, args...))

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.opts.Dir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0
	}
	if errors.Is(err, exec.ErrNotFound) {
		_, _ = io.WriteString(stderr, name+": command not found\n")
		return CodeNotFound
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("[WARN] %s timed out after %s\n", name, e.opts.Timeout)
		return CodeTimeout
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	logger.Debug("[DEBUG] %s could not be started: %v\n", name, err)
	return CodeStartFailed
}

// CommandExists reports whether name resolves to an executable on PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Join renders a command line for logs and dry-run output.
func Join(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'|&;<>$") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
