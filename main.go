package main

import (
	"devutils/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// dev is a developer environment bootstrapper that:
//   - Detects the platform (macOS, Debian/Ubuntu, Fedora/RHEL, WSL, Windows) and its package manager
//   - Installs developer tools through a per-platform dispatch table, skipping tools already present
//   - Syncs a YAML or TOML tool manifest, tracking downloaded tools in a JSON state file
//   - Maintains technology sections in .gitignore files
//   - Provides small cross-platform replacements for common shell aliases
//
// Any failure exits with status 1.
func main() {
	cmd.Execute()
}
