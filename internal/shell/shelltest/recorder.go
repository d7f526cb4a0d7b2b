// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"strings"
	"sync"

	"devutils/internal/shell"
)

// Call is one recorded invocation.
type Call struct {
	Name   string
	Args   []string
	Stream bool
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Recorder records every command and answers with scripted results.
// Commands without a scripted result succeed with empty output.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	results  map[string][]shell.Result
	existing map[string]bool
	// OnRun, when set, is invoked for every call before the scripted result
	// is looked up. Returning ok=true overrides the scripted result.
	OnRun func(c Call) (shell.Result, bool)
}

// NewRecorder returns a Recorder where the given commands exist on PATH.
func NewRecorder(existing ...string) *Recorder {
	r := &Recorder{
		results:  make(map[string][]shell.Result),
		existing: make(map[string]bool),
	}
	for _, name := range existing {
		r.existing[name] = true
	}
	return r
}

// SetExists marks a command as present or absent on PATH.
func (r *Recorder) SetExists(name string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existing[name] = ok
}

// On scripts the result for a full command line such as "docker --version".
// Successive calls queue results; the last one repeats.
func (r *Recorder) On(cmdline string, res shell.Result) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[cmdline] = append(r.results[cmdline], res)
	return r
}

// Run records the call.
func (r *Recorder) Run(_ context.Context, name string, args ...string) shell.Result {
	return r.record(Call{Name: name, Args: args})
}

// Stream records the call.
func (r *Recorder) Stream(_ context.Context, name string, args ...string) shell.Result {
	return r.record(Call{Name: name, Args: args, Stream: true})
}

// Exists reports the scripted PATH state.
func (r *Recorder) Exists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.existing[name]
}

// Calls returns the recorded invocations in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Commands returns the recorded invocations rendered as command lines.
func (r *Recorder) Commands() []string {
	calls := r.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

func (r *Recorder) record(c Call) shell.Result {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	hook := r.OnRun
	r.mu.Unlock()

	if hook != nil {
		if res, ok := hook(c); ok {
			return res
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := c.String()
	queue := r.results[key]
	switch len(queue) {
	case 0:
		return shell.Result{}
	case 1:
		return queue[0]
	default:
		r.results[key] = queue[1:]
		return queue[0]
	}
}

var _ shell.Runner = (*Recorder)(nil)
