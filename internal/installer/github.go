package installer

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"

	"devutils/internal/logger"
	"devutils/internal/platform"
)

// Asset is one downloadable file of a release.
type Asset struct {
	Name string
	URL  string
}

// Release is a published release with its assets.
type Release struct {
	Tag    string
	Assets []Asset
}

// ReleaseSource resolves releases of a GitHub repository ("owner/name").
// An empty tag selects the latest release.
type ReleaseSource interface {
	Release(ctx context.Context, repo, tag string) (*Release, error)
}

// GitHubReleases resolves releases through the GitHub REST API.
type GitHubReleases struct {
	client *github.Client
}

// NewGitHubReleases returns a client, authenticated when token is non-empty.
func NewGitHubReleases(ctx context.Context, token string) *GitHubReleases {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return &GitHubReleases{client: github.NewClient(httpClient)}
}

// Release fetches release metadata for repo at tag.
func (g *GitHubReleases) Release(ctx context.Context, repo, tag string) (*Release, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, errors.Newf("invalid GitHub repository %q, expected owner/name", repo)
	}

	var (
		rel *github.RepositoryRelease
		err error
	)
	if tag == "" {
		logger.Debug("[DEBUG] Fetching latest GitHub release of %s\n", repo)
		rel, _, err = g.client.Repositories.GetLatestRelease(ctx, owner, name)
	} else {
		logger.Debug("[DEBUG] Fetching GitHub release %s of %s\n", tag, repo)
		rel, _, err = g.client.Repositories.GetReleaseByTag(ctx, owner, name, tag)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetching release %q of %s", tag, repo)
	}

	out := &Release{Tag: rel.GetTagName()}
	for _, a := range rel.Assets {
		out.Assets = append(out.Assets, Asset{Name: a.GetName(), URL: a.GetBrowserDownloadURL()})
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", out.Tag, len(out.Assets))
	return out, nil
}

var (
	osPatterns = map[string][]string{
		"darwin":  {"darwin", "macos", "apple", "mac", "osx"},
		"linux":   {"linux"},
		"windows": {"windows", "win64", "win32"},
	}
	archPatterns = map[string][]string{
		platform.AMD64: {"amd64", "x86_64", "x64", "64bit", "64-bit"},
		platform.ARM64: {"arm64", "aarch64"},
	}
	archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.xz", ".tar.bz2", ".zip", ".7z"}
)

// SelectAsset picks the archive asset built for goos/arch. Archive formats
// are preferred in archiveSuffixes order; macOS falls back to universal
// builds when no arch-specific asset exists.
func SelectAsset(assets []Asset, goos, arch string) (Asset, bool) {
	osPats := osPatterns[goos]
	archPats := archPatterns[platform.NormalizeArch(arch)]
	if goos == "darwin" {
		archPats = append(append([]string{}, archPats...), "universal", "all")
	}

	for _, suffix := range archiveSuffixes {
		for _, a := range assets {
			n := strings.ToLower(a.Name)
			if strings.HasSuffix(n, suffix) && containsAny(n, osPats) && containsAny(n, archPats) {
				return a, true
			}
		}
	}
	return Asset{}, false
}

// assetWithSuffix returns the first asset whose name ends with suffix.
func assetWithSuffix(assets []Asset, suffix string) (Asset, bool) {
	for _, a := range assets {
		if strings.HasSuffix(strings.ToLower(a.Name), strings.ToLower(suffix)) {
			return a, true
		}
	}
	return Asset{}, false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
