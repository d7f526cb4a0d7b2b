package shell

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
}

func TestExecRunCapturesOutput(t *testing.T) {
	skipOnWindows(t)
	res := New(Options{}).Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	assert.Equal(t, 3, res.Code)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.False(t, res.OK())
}

func TestExecRunMissingCommand(t *testing.T) {
	res := New(Options{}).Run(context.Background(), "definitely-not-a-real-command-xyz")
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Contains(t, res.Stderr, "command not found")
}

func TestExecRunTimeout(t *testing.T) {
	skipOnWindows(t)
	res := New(Options{Timeout: 50 * time.Millisecond}).Run(context.Background(), "sleep", "5")
	assert.Equal(t, CodeTimeout, res.Code)
}

func TestExecStreamUsesConfiguredWriters(t *testing.T) {
	skipOnWindows(t)
	var stdout bytes.Buffer
	res := New(Options{Stdout: &stdout, Stderr: &stdout}).Stream(context.Background(), "sh", "-c", "echo streamed")
	require.True(t, res.OK())
	assert.Equal(t, "streamed\n", stdout.String())
	assert.Empty(t, res.Stdout)
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Result{}.Err("noop"))

	err := Result{Code: 2, Stderr: "  boom \n"}.Err("apt-get install")
	require.Error(t, err)
	assert.Equal(t, "apt-get install failed with exit code 2: boom", err.Error())

	err = Result{Code: 1, Stdout: "from stdout"}.Err("x")
	assert.Contains(t, err.Error(), "from stdout")

	err = Result{Code: 9}.Err("y")
	assert.Equal(t, "y failed with exit code 9", err.Error())
}

func TestCommandExists(t *testing.T) {
	assert.False(t, CommandExists("definitely-not-a-real-command-xyz"))
	if runtime.GOOS != "windows" {
		assert.True(t, CommandExists("sh"))
	}
}

func TestJoinQuotes(t *testing.T) {
	got := Join("git", "commit", "-m", "fix it's broken")
	assert.Equal(t, `git commit -m 'fix it'\''s broken'`, got)
	assert.Equal(t, "apt-get install -y vim", Join("apt-get", "install", "-y", "vim"))
	assert.Equal(t, "echo ''", Join("echo", ""))
}

func TestDryRunPrintsAndDelegatesExists(t *testing.T) {
	var out bytes.Buffer
	next := New(Options{})
	d := DryRun{Next: next, Out: &out}

	res := d.Stream(context.Background(), "apt-get", "install", "-y", "vim")
	assert.True(t, res.OK())
	assert.Equal(t, "[dry-run] apt-get install -y vim\n", out.String())
	assert.Equal(t, next.Exists("definitely-not-a-real-command-xyz"), d.Exists("definitely-not-a-real-command-xyz"))
	assert.True(t, strings.HasPrefix(out.String(), "[dry-run]"))
}

func TestUnwrapReturnsExecutingRunner(t *testing.T) {
	next := New(Options{})
	assert.Same(t, next, Unwrap(DryRun{Next: next}))
	assert.Same(t, next, Unwrap(&DryRun{Next: DryRun{Next: next}}))
	assert.Same(t, next, Unwrap(next))
}
