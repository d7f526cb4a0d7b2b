package scripts

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
)

// AliasOptions control Aliases.
type AliasOptions struct {
	// Shell is "zsh" or "bash". Empty means detect from $SHELL.
	Shell string
	// Home is the directory holding the rc file. Empty means the user's home.
	Home   string
	DryRun bool
}

// shellrcMap maps supported shells to their rc file names.
var shellrcMap = map[string]string{
	"zsh":  ".zshrc",
	"bash": ".bashrc",
}

// AliasLine renders the alias that forwards name to dev.
func AliasLine(name string) string {
	return fmt.Sprintf("alias %s=\"dev %s\"", name, name)
}

// Aliases appends an alias for every script name to the shell rc file,
// skipping lines already present. It returns the rc path and the lines
// added.
func Aliases(names []string, opts AliasOptions) (string, []string, error) {
	shell := opts.Shell
	if shell == "" {
		shell = detectShell()
	}
	logger.Debug("[DEBUG] Using shell '%s' for aliases\n", shell)

	shellrc, ok := shellrcMap[shell]
	if !ok {
		return "", nil, errors.Newf("unsupported shell %q (supported: bash, zsh)", shell)
	}

	home := opts.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", nil, errors.Wrap(err, "finding home directory")
		}
		home = h
	}
	rcPath := filepath.Join(home, shellrc)

	// Read existing lines from the rc file to avoid duplicates
	existing := make(map[string]bool)
	content, err := os.ReadFile(rcPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", nil, errors.Wrapf(err, "reading %s", rcPath)
	}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		existing[strings.TrimSpace(scanner.Text())] = true
	}

	var added []string
	for _, name := range names {
		line := AliasLine(name)
		if existing[line] {
			logger.Debug("[DEBUG] Alias already exists: %s\n", line)
			continue
		}
		existing[line] = true
		added = append(added, line)
	}
	if len(added) == 0 || opts.DryRun {
		return rcPath, added, nil
	}

	file, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return rcPath, nil, errors.Wrapf(err, "opening %s for appending", rcPath)
	}
	defer file.Close()

	// Keep the user's last line intact when the file lacks a final newline.
	if len(content) > 0 && content[len(content)-1] != '\n' {
		if _, err := file.WriteString("\n"); err != nil {
			return rcPath, nil, errors.Wrapf(err, "writing %s", rcPath)
		}
	}
	for _, line := range added {
		if _, err := file.WriteString(line + "\n"); err != nil {
			return rcPath, nil, errors.Wrapf(err, "writing alias %q", line)
		}
		logger.Info("[INFO] Added alias: %s\n", line)
	}
	return rcPath, added, nil
}

// detectShell identifies the user's shell from $SHELL, defaulting to zsh.
func detectShell() string {
	shell := os.Getenv("SHELL")
	logger.Debug("[DEBUG] Detected shell environment: %s\n", shell)
	if strings.Contains(shell, "bash") {
		return "bash"
	}
	return "zsh"
}
