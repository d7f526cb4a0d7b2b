package scripts

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"devutils/internal/platform"
	"devutils/internal/shell"
)

// portCommand is one way of listing listening sockets.
type portCommand struct {
	name string
	args []string
}

var (
	lsofListen   = portCommand{"lsof", []string{"-iTCP", "-sTCP:LISTEN", "-n", "-P"}}
	ssListen     = portCommand{"ss", []string{"-tulnp"}}
	netstatLinux = portCommand{"netstat", []string{"-tulnp"}}
	netstatWin   = portCommand{"netstat", []string{"-ano"}}
)

// portCommands is the dispatch table of candidate commands, tried in order.
var portCommands = platform.Table[[]portCommand]{
	platform.MacOS:   {lsofListen},
	platform.Debian:  {ssListen, netstatLinux, lsofListen},
	platform.RHEL:    {ssListen, netstatLinux, lsofListen},
	platform.Windows: {netstatWin},
}

// Ports prints listening ports. A non-zero port keeps only the header and
// the lines mentioning :port.
func Ports(ctx context.Context, r shell.Runner, w io.Writer, p platform.Platform, port int) error {
	candidates, ok := portCommands.Lookup(p)
	if !ok {
		return platform.Unsupported(p)
	}

	for _, c := range candidates {
		if !r.Exists(c.name) {
			continue
		}
		res := r.Run(ctx, c.name, c.args...)
		if err := res.Err(shell.Join(c.name, c.args...)); err != nil {
			// lsof exits 1 when nothing is listening.
			if c.name == "lsof" && res.Code == 1 && res.Stderr == "" {
				_, _ = io.WriteString(w, "No listening ports.\n")
				return nil
			}
			return err
		}
		_, _ = io.WriteString(w, filterPort(res.Stdout, port))
		return nil
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return requireCommand(r, names[0], fmt.Sprintf("install one of: %s", strings.Join(names, ", ")))
}

// filterPort keeps the first line plus every line mentioning :port.
func filterPort(output string, port int) string {
	if port <= 0 {
		return output
	}
	re := regexp.MustCompile(fmt.Sprintf(`:%d\b`, port))
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	var b strings.Builder
	matched := 0
	for i, line := range lines {
		if i == 0 || re.MatchString(line) {
			b.WriteString(line)
			b.WriteString("\n")
			if i > 0 {
				matched++
			}
		}
	}
	if matched == 0 {
		return fmt.Sprintf("Nothing is listening on port %d.\n", port)
	}
	return b.String()
}

// ValidatePort validates a port number.
func ValidatePort(n int) error {
	if n < 0 || n > 65535 {
		return errors.Newf("invalid port %d", n)
	}
	return nil
}
