// Package platform detects the operating system, distribution, package
// manager and CPU architecture the CLI is running on.
//
// Detection happens once per invocation; the resulting Platform is read-only
// and is what every dispatch table is keyed on.
package platform

import (
	"os"
	"runtime"
	"strings"

	"devutils/internal/logger"
	"devutils/internal/shell"
)

// Type identifies a concrete platform.
type Type string

// Supported platform types. Family keys (Darwin, Debian, RHEL) can be used in
// dispatch tables to cover every type of that family at once.
const (
	MacOS       Type = "macos"
	Ubuntu      Type = "ubuntu"
	DebianOS    Type = "debian"
	Raspbian    Type = "raspbian"
	Fedora      Type = "fedora"
	RHELOS      Type = "rhel"
	AmazonLinux Type = "amazon_linux"
	WSL         Type = "wsl"
	Windows     Type = "windows"
	Unknown     Type = "unknown"

	Darwin Type = "darwin"
	Debian Type = "debian-family"
	RHEL   Type = "rhel-family"
)

// Architectures reported in Platform.Arch.
const (
	AMD64 = "amd64"
	ARM64 = "arm64"
)

// Platform describes the machine the CLI runs on.
type Platform struct {
	Type           Type
	Family         Type
	Distro         string
	PackageManager string
	Arch           string
	WSL            bool
	NeedsSudo      bool
}

// String renders the platform for messages, e.g. "ubuntu (apt, amd64)".
func (p Platform) String() string {
	var b strings.Builder
	b.WriteString(string(p.Type))
	b.WriteString(" (")
	if p.PackageManager != "" {
		b.WriteString(p.PackageManager)
		b.WriteString(", ")
	}
	b.WriteString(p.Arch)
	b.WriteString(")")
	return b.String()
}

// Detect inspects the running system.
func Detect() Platform {
	osRelease := map[string]string{}
	if runtime.GOOS == "linux" {
		if f, err := os.Open("/etc/os-release"); err == nil {
			osRelease = ParseOSRelease(f)
			_ = f.Close()
		} else {
			logger.Debug("[DEBUG] /etc/os-release not readable: %v\n", err)
		}
	}

	wsl := runtime.GOOS == "linux" && (os.Getenv("WSL_DISTRO_NAME") != "" || isWSLKernel(kernelRelease()))
	p := Build(runtime.GOOS, runtime.GOARCH, osRelease, wsl, shell.CommandExists)
	p.NeedsSudo = runtime.GOOS == "linux" && os.Geteuid() != 0
	logger.Debug("[DEBUG] Detected platform %s, distro=%q\n", p, p.Distro)
	return p
}

// Build assembles a Platform from raw facts. exists reports whether a command
// is on PATH and drives the package manager choice.
func Build(goos, goarch string, osRelease map[string]string, wsl bool, exists func(string) bool) Platform {
	typ, distro := Classify(goos, osRelease, wsl)
	p := Platform{
		Type:   typ,
		Family: FamilyOf(typ),
		Distro: distro,
		Arch:   NormalizeArch(goarch),
		WSL:    wsl,
	}
	p.PackageManager = packageManagerFor(p.Family, exists)
	return p
}

// Classify maps GOOS and os-release fields to a platform type and distro ID.
func Classify(goos string, osRelease map[string]string, wsl bool) (Type, string) {
	switch goos {
	case "darwin":
		return MacOS, "macos"
	case "windows":
		return Windows, "windows"
	case "linux":
	default:
		return Unknown, goos
	}

	id := strings.ToLower(osRelease["ID"])
	like := strings.Fields(strings.ToLower(osRelease["ID_LIKE"]))

	if wsl {
		return WSL, id
	}

	switch id {
	case "ubuntu", "pop", "linuxmint", "elementary":
		return Ubuntu, id
	case "debian":
		return DebianOS, id
	case "raspbian":
		return Raspbian, id
	case "fedora":
		return Fedora, id
	case "rhel", "centos", "rocky", "almalinux", "ol":
		return RHELOS, id
	case "amzn":
		return AmazonLinux, id
	}

	for _, l := range like {
		switch l {
		case "ubuntu":
			return Ubuntu, id
		case "debian":
			return DebianOS, id
		case "fedora":
			return Fedora, id
		case "rhel", "centos":
			return RHELOS, id
		}
	}
	return Unknown, id
}

// FamilyOf returns the family key of a platform type.
func FamilyOf(t Type) Type {
	switch t {
	case MacOS:
		return Darwin
	case Ubuntu, DebianOS, Raspbian, WSL:
		return Debian
	case Fedora, RHELOS, AmazonLinux:
		return RHEL
	case Windows:
		return Windows
	default:
		return Unknown
	}
}

// NormalizeArch folds architecture aliases into AMD64 and ARM64.
func NormalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64", "x64":
		return AMD64
	case "arm64", "aarch64":
		return ARM64
	default:
		return strings.ToLower(arch)
	}
}

func packageManagerFor(family Type, exists func(string) bool) string {
	switch family {
	case Darwin:
		return "brew"
	case Debian:
		return "apt"
	case RHEL:
		if exists == nil || exists("dnf") {
			return "dnf"
		}
		return "yum"
	case Windows:
		if exists == nil || exists("winget") {
			return "winget"
		}
		return "choco"
	default:
		return ""
	}
}

func isWSLKernel(release string) bool {
	r := strings.ToLower(release)
	return strings.Contains(r, "microsoft") || strings.Contains(r, "wsl")
}
