// Package errors defines the sentinel errors shared across dev commands and
// the ExitError type used to turn a failure into a process exit code.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for the dev CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a validation or execution failure.
	ExitFailure = 1
)

// Sentinel errors for common failure conditions.
var (
	// ErrUnsupportedPlatform indicates no handler exists for the detected platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrUnsupportedArch indicates the tool is not available for the CPU architecture.
	ErrUnsupportedArch = errors.New("unsupported architecture")

	// ErrUnknownTool indicates the requested tool is not in the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownTechnology indicates no ignore template exists for a technology.
	ErrUnknownTechnology = errors.New("unknown technology")

	// ErrMissingArgument indicates a required positional argument was not given.
	ErrMissingArgument = errors.New("missing argument")

	// ErrCommandNotFound indicates a required external command is not on PATH.
	ErrCommandNotFound = errors.New("command not found")

	// ErrNotGitRepo indicates a git script ran outside a work tree.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrUnbalancedMarkers indicates a .gitignore section start marker has no
	// matching end marker (or the reverse).
	ErrUnbalancedMarkers = errors.New("unbalanced dev ignore markers")
)

// ExitError wraps an error with an exit code and optional suggestion.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError creates an ExitError with ExitFailure and a suggestion.
func NewExitError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitFailure,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for err. A nil error maps to
// ExitSuccess and anything that is not an ExitError maps to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// SuggestionFor returns the suggestion attached anywhere in err's chain.
func SuggestionFor(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Suggestion
	}
	return ""
}
