package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
	"devutils/internal/state"
)

// Homebrew bin directories on Apple silicon, Intel macOS and Linux.
var brewPrefixes = []string{"/opt/homebrew/bin/", "/usr/local/Cellar/", "/home/linuxbrew/.linuxbrew/bin/"}

// Uninstall attempts to remove a tool recorded in state. Paths under a
// Homebrew prefix go through `brew uninstall` and paths under ~/.cargo/bin
// through `cargo uninstall`. Otherwise it tries, in order: direct removal of
// the recorded path (with sudo when the directory is not writable),
// forgetting a macOS .pkg receipt, and removing /usr/local/bin/<name>*
// matches. Go binaries under ~/go/bin are covered by direct removal.
func Uninstall(ctx context.Context, name string, ts state.ToolState, env *Env) error {
	logger.Info("[INFO] Uninstalling %s...\n", name)

	installPath := ts.InstallPath
	for _, prefix := range brewPrefixes {
		if strings.HasPrefix(installPath, prefix) {
			logger.Info("[INFO] Detected Homebrew tool. Uninstalling with brew...\n")
			return env.brew().Uninstall(ctx, name)
		}
	}
	if strings.Contains(filepath.ToSlash(installPath), "/.cargo/bin/") && env.Runner.Exists("cargo") {
		logger.Info("[INFO] Detected Rust tool. Uninstalling with cargo...\n")
		res := env.Runner.Run(ctx, "cargo", "uninstall", name)
		if res.OK() {
			return nil
		}
		logger.Warn("[WARN] cargo uninstall failed (%v); removing the binary directly\n", res.Err("cargo uninstall"))
	}
	if installPath != "" && installPath != "/Applications" {
		logger.Debug("[DEBUG] Attempting to remove %s\n", installPath)
		err := os.Remove(installPath)
		switch {
		case err == nil, errors.Is(err, os.ErrNotExist):
			logger.Info("[INFO] Successfully removed %s\n", installPath)
			return nil
		case errors.Is(err, os.ErrPermission):
			if env.Runner.Stream(ctx, "sudo", "rm", "-f", installPath).OK() {
				logger.Info("[INFO] Successfully removed %s\n", installPath)
				return nil
			}
		default:
			if err := os.RemoveAll(installPath); err == nil {
				logger.Info("[INFO] Successfully removed directory %s\n", installPath)
				return nil
			}
		}
	}

	if env.Runner.Exists("pkgutil") {
		logger.Info("[INFO] Trying to uninstall %s as macOS .pkg...\n", name)
		res := env.Runner.Run(ctx, "pkgutil", "--pkgs")
		if res.OK() {
			for _, line := range strings.Split(res.Stdout, "\n") {
				line = strings.TrimSpace(line)
				if line == "" || !strings.Contains(strings.ToLower(line), strings.ToLower(name)) {
					continue
				}
				if env.Runner.Run(ctx, "sudo", "pkgutil", "--forget", line).OK() {
					logger.Info("[INFO] pkgutil forget succeeded for %s\n", line)
					return nil
				}
				logger.Error("[ERROR] pkgutil forget failed for %s\n", line)
			}
		}
	}

	// Fallback: use globbing to match and delete binaries
	pattern := filepath.Join("/usr/local/bin", name+"*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return errors.Wrapf(err, "globbing %s", pattern)
	}
	logger.Debug("[DEBUG] Globbing matches %v\n", matches)
	if removeMatches(ctx, env, matches) {
		return nil
	}
	return errors.Newf("could not uninstall %s; manual cleanup may be required", name)
}

// removeMatches runs `sudo rm -f` on each match and reports whether any
// removal succeeded.
func removeMatches(ctx context.Context, env *Env, matches []string) bool {
	removed := false
	for _, match := range matches {
		logger.Info("[INFO] Removing matched binary: %s\n", match)
		if res := env.Runner.Run(ctx, "sudo", "rm", "-f", match); res.OK() {
			removed = true
		} else {
			logger.Error("[ERROR] Failed to remove %s: %s\n", match, strings.TrimSpace(res.Stderr))
		}
	}
	return removed
}

func renameFile(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return errors.Wrapf(err, "renaming %s", filepath.Base(from))
	}
	return nil
}
