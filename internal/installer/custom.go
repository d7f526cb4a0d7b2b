package installer

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"devutils/internal/config"
	"devutils/internal/logger"
	"devutils/internal/platform"
)

// InstallDownload installs a manifest tool from a GitHub release or a URL and
// returns where it was placed.
func InstallDownload(ctx context.Context, tool config.Tool, env *Env) (string, error) {
	logger.Debug("[DEBUG] InstallDownload: Installing tool %s from source %s\n", tool.Name, tool.Source)

	switch tool.Source {
	case config.SourceGitHub:
		logger.Info("[INFO] Installing %s@%s from GitHub...\n", tool.Name, tool.Version)
		url, err := resolveGitHubAsset(ctx, tool, env)
		if err != nil {
			return "", err
		}
		return installFromURL(ctx, tool, url, env)

	case config.SourceURL:
		logger.Info("[INFO] Installing %s from custom URL...\n", tool.Name)
		return installFromURL(ctx, tool, tool.URL, env)

	default:
		return "", errors.Newf("tool %s has no download source", tool.Name)
	}
}

// resolveGitHubAsset finds the release asset matching this machine.
func resolveGitHubAsset(ctx context.Context, tool config.Tool, env *Env) (string, error) {
	if env.Releases == nil {
		return "", errors.New("no GitHub release source configured")
	}
	repo := tool.Name
	if tool.Repo != "" {
		repo = tool.Repo
	}
	tag := tool.Tag
	if tag == "" {
		tag = "v" + strings.TrimPrefix(tool.Version, "v")
	}

	release, err := env.Releases.Release(ctx, repo, tag)
	if err != nil {
		return "", errors.Wrapf(err, "fetching release for %s@%s", tool.Name, tool.Version)
	}

	goos := goosOf(env.Platform)
	asset, ok := SelectAsset(release.Assets, goos, env.Platform.Arch)
	if !ok {
		return "", errors.Newf("no matching asset found for OS=%s ARCH=%s in release %s", goos, env.Platform.Arch, release.Tag)
	}
	logger.Debug("[DEBUG] Found matching asset: %s\n", asset.Name)
	return asset.URL, nil
}

// installFromURL downloads url and installs it according to its file type:
// macOS .pkg through installer(8), .deb/.rpm through the package manager,
// archives through ExtractAndInstall, anything else as a bare binary.
func installFromURL(ctx context.Context, tool config.Tool, url string, env *Env) (string, error) {
	if env.DryRun {
		logger.Plain("[dry-run] download %s and install %s\n", url, tool.Name)
		return "", nil
	}

	file, cleanup, err := env.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer cleanup()

	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".pkg"):
		logger.Info("[INFO] Detected .pkg file for %s. Installing via macOS installer...\n", tool.Name)
		res := env.Runner.Stream(ctx, "sudo", "installer", "-pkg", file, "-target", "/")
		if err := res.Err(".pkg installation of " + tool.Name); err != nil {
			return "", err
		}
		return "/Applications", nil // general location for GUI apps (may vary by .pkg)

	case strings.HasSuffix(lower, ".deb"), strings.HasSuffix(lower, ".rpm"):
		if err := installLocalPackage(ctx, env, file); err != nil {
			return "", err
		}
		return "", nil

	case IsArchive(lower):
		return ExtractAndInstall(ctx, env.Runner, file, filepath.Join(filepath.Dir(file), "extract"), tool.Name, env.InstallDir)

	default:
		// A bare executable: rename it to the tool name on the way in.
		named := filepath.Join(filepath.Dir(file), binaryName(tool.Name, env.Platform))
		if named != file {
			if err := renameFile(file, named); err != nil {
				return "", err
			}
		}
		return installBinaries([]string{named}, env.InstallDir)
	}
}

func goosOf(p platform.Platform) string {
	switch p.Family {
	case platform.Darwin:
		return "darwin"
	case platform.Windows:
		return "windows"
	case platform.Debian, platform.RHEL:
		return "linux"
	}
	return runtime.GOOS
}

func binaryName(name string, p platform.Platform) string {
	if p.Family == platform.Windows && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}
