// Package installer installs developer tools. Every built-in tool is an
// Installer: an idempotency check, a dispatch table of per-platform steps,
// and a version check used to confirm the install.
package installer

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
	"devutils/internal/logger"
	"devutils/internal/pkgmgr"
	"devutils/internal/platform"
	"devutils/internal/shell"
)

// Step installs a tool on one platform.
type Step func(ctx context.Context, env *Env) error

// Installer describes how to install one tool across platforms.
type Installer struct {
	Name        string
	Aliases     []string
	Description string
	// Binary is the executable checked for idempotency and verification.
	// GUI applications leave it empty and supply Check.
	Binary string
	// Check reports whether the tool is already installed. Nil means
	// "Binary is on PATH".
	Check func(ctx context.Context, env *Env) bool
	// Steps is the per-platform dispatch table.
	Steps platform.Table[Step]
	// VersionArgs are passed to Binary to print its version. Nil means --version.
	VersionArgs []string
	// DefaultVersion is used by installers that download a pinned release.
	DefaultVersion string
}

// Platforms lists the platform keys the installer supports.
func (i *Installer) Platforms() []string {
	return i.Steps.Keys()
}

// Installed runs the idempotency check. The check always runs against the
// real runner, also in dry-run mode.
func (i *Installer) Installed(ctx context.Context, env *Env) bool {
	live := *env
	live.Runner = shell.Unwrap(env.Runner)
	if i.Check != nil {
		return i.Check(ctx, &live)
	}
	return i.Binary != "" && live.Runner.Exists(i.Binary)
}

// Env is everything an install step may touch.
type Env struct {
	Platform   platform.Platform
	Runner     shell.Runner
	Downloader Downloader
	Releases   ReleaseSource
	// Version overrides Installer.DefaultVersion.
	Version string
	// InstallDir is where downloaded binaries are copied. Empty means
	// /usr/local/bin with a fallback to ~/bin.
	InstallDir string
	// TempDir holds downloads. Empty means os.TempDir().
	TempDir string
	Force   bool
	DryRun  bool
	// FileExists is consulted for marker files such as apt source lists.
	// Nil means os.Stat.
	FileExists func(path string) bool
}

func (e *Env) fileExists(path string) bool {
	if e.FileExists != nil {
		return e.FileExists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

// versionOr returns the requested version without a leading "v", or def.
func (e *Env) versionOr(def string) string {
	if e.Version != "" {
		return strings.TrimPrefix(e.Version, "v")
	}
	return def
}

func (e *Env) brew() pkgmgr.Brew { return pkgmgr.NewBrew(e.Runner) }

func (e *Env) apt() pkgmgr.Apt { return pkgmgr.NewApt(e.Runner, e.Platform.NeedsSudo) }

func (e *Env) dnf() pkgmgr.Dnf {
	return pkgmgr.NewDnf(e.Runner, e.Platform.PackageManager, e.Platform.NeedsSudo)
}

func (e *Env) snap() pkgmgr.Snap { return pkgmgr.NewSnap(e.Runner, e.Platform.NeedsSudo) }

func (e *Env) systemd() pkgmgr.Systemd { return pkgmgr.NewSystemd(e.Runner, e.Platform.NeedsSudo) }

// privileged runs a command through sudo when the platform requires it.
func (e *Env) privileged(ctx context.Context, name string, args ...string) shell.Result {
	if e.Platform.NeedsSudo {
		return e.Runner.Stream(ctx, "sudo", append([]string{name}, args...)...)
	}
	return e.Runner.Stream(ctx, name, args...)
}

// Outcome reports what Install did.
type Outcome struct {
	Skipped bool
	Version string
}

// Install installs inst unless it is already present. The flow is:
// idempotency check, platform dispatch, then a version check.
func Install(ctx context.Context, inst *Installer, env *Env) (Outcome, error) {
	if !env.Force && inst.Installed(ctx, env) {
		logger.Info("[INFO] %s is already installed. Skipping.\n", inst.Name)
		return Outcome{Skipped: true}, nil
	}

	step, ok := inst.Steps.Lookup(env.Platform)
	if !ok || step == nil {
		logger.Error("[ERROR] %s cannot be installed on %s (supported: %s)\n",
			inst.Name, env.Platform.Type, strings.Join(inst.Platforms(), ", "))
		return Outcome{}, platform.Unsupported(env.Platform)
	}

	logger.Info("[INFO] Installing %s on %s...\n", inst.Name, env.Platform)
	if err := step(ctx, env); err != nil {
		logger.Error("[ERROR] Failed to install %s: %v\n", inst.Name, err)
		return Outcome{}, errors.Wrapf(err, "installing %s", inst.Name)
	}
	if env.DryRun {
		return Outcome{}, nil
	}

	version := verify(ctx, inst, env)
	if version != "" {
		logger.Success("%s %s installed successfully\n", inst.Name, version)
	} else {
		logger.Success("%s installed successfully\n", inst.Name)
	}
	return Outcome{Version: version}, nil
}

// verify runs the version check and returns the parsed version. A failing
// check is only a warning: GUI installs and fresh PATH entries often need a
// new shell before the binary resolves.
func verify(ctx context.Context, inst *Installer, env *Env) string {
	if inst.Binary == "" {
		return ""
	}
	args := inst.VersionArgs
	if args == nil {
		args = []string{"--version"}
	}
	res := env.Runner.Run(ctx, inst.Binary, args...)
	if !res.OK() {
		logger.Warn("[WARN] %s was installed but `%s` failed; you may need to restart your shell\n",
			inst.Name, shell.Join(inst.Binary, args...))
		return ""
	}
	return ParseVersion(res.Stdout + "\n" + res.Stderr)
}

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+)+`)

// ParseVersion extracts the first dotted version number from tool output,
// e.g. "Docker version 24.0.7, build afdd53b" -> "24.0.7".
func ParseVersion(output string) string {
	return versionPattern.FindString(output)
}

// requireArch fails with ErrUnsupportedArch unless the platform matches one
// of archs. No command has run when it fails.
func requireArch(env *Env, tool string, archs ...string) error {
	for _, a := range archs {
		if env.Platform.Arch == a {
			return nil
		}
	}
	logger.Error("[ERROR] %s is only available for %s on this platform (detected %s)\n",
		tool, strings.Join(archs, ", "), env.Platform.Arch)
	return errors.Wrapf(deverrors.ErrUnsupportedArch, "%s on %s", tool, env.Platform.Arch)
}
