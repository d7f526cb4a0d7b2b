package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

var (
	mu  sync.Mutex
	out io.Writer = color.Output
)

// printer returns a printf-style function that writes text in the given color
// to the current output writer. The writer is resolved on every call so that
// SetOutput takes effect for already-declared level functions.
func printer(attrs ...color.Attribute) func(format string, a ...any) {
	c := color.New(attrs...)
	return func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = c.Fprintf(out, format, a...)
	}
}

// Info logs informational messages in green color.
// Green is typically used for normal progress messages.
var Info = printer(color.FgGreen)

// Success logs completion messages in bold bright green.
var Success = printer(color.FgHiGreen, color.Bold)

// Warn logs warning messages in bright magenta color.
// Magenta is bright and stands out, signaling caution without being too alarming.
var Warn = printer(color.FgHiMagenta)

// Error logs error messages in red color.
var Error = printer(color.FgRed)

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// This is a function variable that is assigned dynamically during Init based on debug flag.
var Debug = func(format string, a ...any) {}

// Plain prints uncolored text, used for command output echoed back to the user.
func Plain(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(out, format, a...)
}

// Init initializes the logger package, specifically enabling or disabling debug logging.
// When enabled, Debug will print messages in cyan color.
// When disabled, Debug will be a no-op function that silently ignores debug logs.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = printer(color.FgCyan)
	} else {
		Debug = func(format string, a ...any) {}
	}
}

// SetOutput redirects all level functions to w and returns a function restoring
// the previous writer. Tests use it to capture what a command reported.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	prev := out
	out = w
	mu.Unlock()
	return func() {
		mu.Lock()
		out = prev
		mu.Unlock()
	}
}
