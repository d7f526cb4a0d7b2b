// Package pkgmgr wraps the native package manager CLIs (Homebrew, APT,
// DNF/YUM, snap, Chocolatey, winget) and systemd. Every call goes through a
// shell.Runner, so the wrappers only build argument lists.
package pkgmgr

import (
	"context"
	"strings"

	"devutils/internal/shell"
)

// base carries what every wrapper needs.
type base struct {
	r    shell.Runner
	sudo bool
}

// privileged runs name with args, prefixed with sudo when required.
func (b base) privileged(ctx context.Context, name string, args ...string) shell.Result {
	if b.sudo {
		return b.r.Stream(ctx, "sudo", append([]string{name}, args...)...)
	}
	return b.r.Stream(ctx, name, args...)
}

// query runs a read-only command. It bypasses a dry-run wrapper so that
// installed checks reflect the real machine.
func (b base) query(ctx context.Context, name string, args ...string) shell.Result {
	return shell.Unwrap(b.r).Run(ctx, name, args...)
}

// Brew wraps Homebrew.
type Brew struct{ base }

// NewBrew returns a Homebrew wrapper.
func NewBrew(r shell.Runner) Brew {
	return Brew{base{r: r}}
}

// Install installs formulae.
func (b Brew) Install(ctx context.Context, formulae ...string) error {
	return b.r.Stream(ctx, "brew", append([]string{"install"}, formulae...)...).Err("brew install " + strings.Join(formulae, " "))
}

// InstallCask installs a cask.
func (b Brew) InstallCask(ctx context.Context, cask string) error {
	return b.r.Stream(ctx, "brew", "install", "--cask", cask).Err("brew install --cask " + cask)
}

// Tap adds a third-party tap.
func (b Brew) Tap(ctx context.Context, repo string) error {
	return b.r.Stream(ctx, "brew", "tap", repo).Err("brew tap " + repo)
}

// IsInstalled reports whether a formula is installed.
func (b Brew) IsInstalled(ctx context.Context, formula string) bool {
	return b.r.Exists("brew") && b.query(ctx, "brew", "list", "--formula", formula).OK()
}

// IsCaskInstalled reports whether a cask is installed.
func (b Brew) IsCaskInstalled(ctx context.Context, cask string) bool {
	return b.r.Exists("brew") && b.query(ctx, "brew", "list", "--cask", cask).OK()
}

// Uninstall removes a formula.
func (b Brew) Uninstall(ctx context.Context, formula string) error {
	return b.r.Run(ctx, "brew", "uninstall", formula).Err("brew uninstall " + formula)
}

// Apt wraps apt-get and dpkg.
type Apt struct{ base }

// NewApt returns an APT wrapper.
func NewApt(r shell.Runner, sudo bool) Apt {
	return Apt{base{r: r, sudo: sudo}}
}

// Update refreshes the package index.
func (a Apt) Update(ctx context.Context) error {
	return a.privileged(ctx, "apt-get", "update").Err("apt-get update")
}

// Install installs packages non-interactively.
func (a Apt) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install", "-y"}, pkgs...)
	return a.privileged(ctx, "apt-get", args...).Err("apt-get install " + strings.Join(pkgs, " "))
}

// InstallDeb installs a local .deb file, resolving its dependencies.
func (a Apt) InstallDeb(ctx context.Context, path string) error {
	if !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, ".") {
		path = "./" + path
	}
	return a.privileged(ctx, "apt-get", "install", "-y", path).Err("apt-get install " + path)
}

// IsInstalled reports whether dpkg knows the package.
func (a Apt) IsInstalled(ctx context.Context, pkg string) bool {
	return a.query(ctx, "dpkg", "-s", pkg).OK()
}

// Dnf wraps dnf, or yum when constructed with that binary name.
type Dnf struct {
	base
	bin string
}

// NewDnf returns a wrapper for bin ("dnf" or "yum").
func NewDnf(r shell.Runner, bin string, sudo bool) Dnf {
	if bin == "" {
		bin = "dnf"
	}
	return Dnf{base: base{r: r, sudo: sudo}, bin: bin}
}

// Install installs packages non-interactively.
func (d Dnf) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install", "-y"}, pkgs...)
	return d.privileged(ctx, d.bin, args...).Err(d.bin + " install " + strings.Join(pkgs, " "))
}

// AddRepo registers a .repo URL.
func (d Dnf) AddRepo(ctx context.Context, url string) error {
	if d.bin == "yum" {
		return d.privileged(ctx, "yum-config-manager", "--add-repo", url).Err("yum-config-manager --add-repo")
	}
	return d.privileged(ctx, "dnf", "config-manager", "--add-repo", url).Err("dnf config-manager --add-repo")
}

// IsInstalled reports whether rpm knows the package.
func (d Dnf) IsInstalled(ctx context.Context, pkg string) bool {
	return d.query(ctx, "rpm", "-q", pkg).OK()
}

// Snap wraps snapd.
type Snap struct{ base }

// NewSnap returns a snap wrapper.
func NewSnap(r shell.Runner, sudo bool) Snap {
	return Snap{base{r: r, sudo: sudo}}
}

// Available reports whether snap is on PATH.
func (s Snap) Available() bool {
	return s.r.Exists("snap")
}

// Install installs a snap, optionally with classic confinement.
func (s Snap) Install(ctx context.Context, pkg string, classic bool) error {
	args := []string{"install", pkg}
	if classic {
		args = append(args, "--classic")
	}
	return s.privileged(ctx, "snap", args...).Err("snap install " + pkg)
}

// IsInstalled reports whether the snap is installed.
func (s Snap) IsInstalled(ctx context.Context, pkg string) bool {
	return s.Available() && s.query(ctx, "snap", "list", pkg).OK()
}

// Choco wraps Chocolatey.
type Choco struct{ base }

// NewChoco returns a Chocolatey wrapper.
func NewChoco(r shell.Runner) Choco {
	return Choco{base{r: r}}
}

// Available reports whether choco is on PATH.
func (c Choco) Available() bool {
	return c.r.Exists("choco")
}

// Install installs a package, answering yes to prompts.
func (c Choco) Install(ctx context.Context, pkg string) error {
	return c.r.Stream(ctx, "choco", "install", pkg, "-y").Err("choco install " + pkg)
}

// IsInstalled reports whether the package is installed locally.
func (c Choco) IsInstalled(ctx context.Context, pkg string) bool {
	if !c.Available() {
		return false
	}
	res := c.query(ctx, "choco", "list", "--local-only", "--exact", pkg, "--limit-output")
	return res.OK() && strings.HasPrefix(strings.ToLower(strings.TrimSpace(res.Stdout)), strings.ToLower(pkg)+"|")
}

// Winget wraps the Windows Package Manager.
type Winget struct{ base }

// NewWinget returns a winget wrapper.
func NewWinget(r shell.Runner) Winget {
	return Winget{base{r: r}}
}

// Available reports whether winget is on PATH.
func (w Winget) Available() bool {
	return w.r.Exists("winget")
}

// Install installs a package by exact ID.
func (w Winget) Install(ctx context.Context, id string) error {
	return w.r.Stream(ctx, "winget", "install", "--id", id, "-e", "--silent",
		"--accept-package-agreements", "--accept-source-agreements").Err("winget install " + id)
}

// IsInstalled reports whether a package with the exact ID is installed.
func (w Winget) IsInstalled(ctx context.Context, id string) bool {
	if !w.Available() {
		return false
	}
	res := w.query(ctx, "winget", "list", "--id", id, "-e")
	return res.OK() && strings.Contains(strings.ToLower(res.Stdout), strings.ToLower(id))
}

// Systemd wraps systemctl.
type Systemd struct{ base }

// NewSystemd returns a systemctl wrapper.
func NewSystemd(r shell.Runner, sudo bool) Systemd {
	return Systemd{base{r: r, sudo: sudo}}
}

// Available reports whether systemctl is on PATH.
func (s Systemd) Available() bool {
	return s.r.Exists("systemctl")
}

// EnableNow enables and starts a unit.
func (s Systemd) EnableNow(ctx context.Context, unit string) error {
	return s.privileged(ctx, "systemctl", "enable", "--now", unit).Err("systemctl enable --now " + unit)
}

// IsActive reports whether a unit is running.
func (s Systemd) IsActive(ctx context.Context, unit string) bool {
	return s.query(ctx, "systemctl", "is-active", "--quiet", unit).OK()
}
