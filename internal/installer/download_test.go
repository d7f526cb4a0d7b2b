package installer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devutils/internal/config"
	deverrors "devutils/internal/errors"
	"devutils/internal/platform"
	"devutils/internal/shell"
	"devutils/internal/shell/shelltest"
)

func TestTerraformLinuxDownloadsPinnedZip(t *testing.T) {
	captureLog(t)
	rec := shelltest.NewRecorder().On("terraform version", shell.Result{Stdout: "Terraform v1.9.8\non linux_amd64\n"})
	env := newTestEnv(t, ubuntuAMD64, rec)
	zipURL := TerraformURL(terraformVersion, platform.AMD64)
	dl := env.Downloader.(*fakeDownloader)
	dl.files[zipURL] = zipBytes(t, archiveEntry{name: "terraform", body: "#!/bin/sh\necho terraform\n", mode: 0o755})

	out, err := Install(context.Background(), Terraform, env)
	require.NoError(t, err)
	assert.Equal(t, "1.9.8", out.Version)
	assert.Equal(t, []string{zipURL}, dl.calls())
	assert.FileExists(t, filepath.Join(env.InstallDir, "terraform"))
	assert.Equal(t, []string{"terraform version"}, rec.Commands())
}

func TestTerraformVersionOverride(t *testing.T) {
	log := captureLog(t)
	rec := shelltest.NewRecorder()
	p := ubuntuAMD64
	p.Arch = platform.ARM64
	env := newTestEnv(t, p, rec)
	env.Version = "v1.5.7"
	env.DryRun = true

	_, err := Install(context.Background(), Terraform, env)
	require.NoError(t, err)
	assert.Empty(t, env.Downloader.(*fakeDownloader).calls())
	assert.Contains(t, log.String(), "https://releases.hashicorp.com/terraform/1.5.7/terraform_1.5.7_linux_arm64.zip")
}

func TestTerraformRejectsUnknownArch(t *testing.T) {
	captureLog(t)
	rec := shelltest.NewRecorder()
	p := ubuntuAMD64
	p.Arch = "386"
	env := newTestEnv(t, p, rec)

	_, err := Install(context.Background(), Terraform, env)
	assert.True(t, errors.Is(err, deverrors.ErrUnsupportedArch))
	assert.Empty(t, env.Downloader.(*fakeDownloader).calls())
}

func TestExtractAndInstallTarGz(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "mytool_1.0_linux_amd64.tar.gz")
	require.NoError(t, os.WriteFile(src, tarGzBytes(t,
		archiveEntry{name: "mytool-1.0/README.md", body: "docs", mode: 0o644},
		archiveEntry{name: "mytool-1.0/bin/mytool", body: "bin", mode: 0o755},
	), 0o644))
	installDir := t.TempDir()

	path, err := ExtractAndInstall(context.Background(), shelltest.NewRecorder(), src, filepath.Join(dir, "extract"), "", installDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(installDir, "mytool"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111)
	assert.NoFileExists(t, filepath.Join(installDir, "README.md"))
}

func TestExtractAndInstallAsksFileForUnmarkedBinaries(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "mytool.tar.gz")
	require.NoError(t, os.WriteFile(src, tarGzBytes(t,
		archiveEntry{name: "mytool.txt", body: "notes", mode: 0o644},
		archiveEntry{name: "mytool", body: "bin", mode: 0o644},
	), 0o644))
	dest := filepath.Join(dir, "extract")
	rec := shelltest.NewRecorder("file").
		On("file --brief "+filepath.Join(dest, "mytool"), shell.Result{Stdout: "ELF 64-bit LSB executable, x86-64\n"}).
		On("file --brief "+filepath.Join(dest, "mytool.txt"), shell.Result{Stdout: "ASCII text\n"})
	installDir := t.TempDir()

	path, err := ExtractAndInstall(context.Background(), rec, src, dest, "mytool", installDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(installDir, "mytool"), path)
	assert.NoFileExists(t, filepath.Join(installDir, "mytool.txt"))
	assert.Len(t, rec.Calls(), 2)
}

func TestExtractAndInstallWithoutFileCommand(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "mytool.tar.gz")
	require.NoError(t, os.WriteFile(src, tarGzBytes(t, archiveEntry{name: "mytool", body: "bin", mode: 0o644}), 0o644))
	rec := shelltest.NewRecorder()

	_, err := ExtractAndInstall(context.Background(), rec, src, filepath.Join(dir, "extract"), "mytool", t.TempDir())
	require.Error(t, err)
	assert.Empty(t, rec.Calls())
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(src, zipBytes(t, archiveEntry{name: "../escaped", body: "x", mode: 0o644}), 0o644))

	err := ExtractArchive(src, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
	assert.NoFileExists(t, filepath.Join(dir, "escaped"))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	err := ExtractArchive("tool.rar", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("a.TAR.GZ"))
	assert.True(t, IsArchive("a.7z"))
	assert.False(t, IsArchive("a.deb"))
	assert.Equal(t, "gh", extractToolNameFromPath("/tmp/gh_2.40.0_linux_amd64.tar.gz"))
}

func TestSelectAsset(t *testing.T) {
	assets := []Asset{
		{Name: "tool_1.0_checksums.txt"},
		{Name: "tool_1.0_darwin_arm64.tar.gz"},
		{Name: "tool_1.0_macOS_universal.zip"},
		{Name: "tool_1.0_linux_x86_64.tar.gz"},
		{Name: "tool_1.0_linux_arm64.zip"},
		{Name: "tool_1.0_windows_amd64.zip"},
	}
	tests := []struct {
		goos, arch, want string
	}{
		{"linux", "amd64", "tool_1.0_linux_x86_64.tar.gz"},
		{"linux", "aarch64", "tool_1.0_linux_arm64.zip"},
		{"darwin", "arm64", "tool_1.0_darwin_arm64.tar.gz"},
		{"darwin", "amd64", "tool_1.0_macOS_universal.zip"},
		{"windows", "amd64", "tool_1.0_windows_amd64.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.arch, func(t *testing.T) {
			got, ok := SelectAsset(assets, tt.goos, tt.arch)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	_, ok := SelectAsset(assets, "windows", "arm64")
	assert.False(t, ok)
}

func TestGitHubReleases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/tool/releases/latest":
			fmt.Fprint(w, `{"tag_name":"v2.0.0","assets":[{"name":"tool_linux_amd64.tar.gz","browser_download_url":"https://dl.example/tool.tar.gz"}]}`)
		case "/repos/acme/tool/releases/tags/v1.0.0":
			fmt.Fprint(w, `{"tag_name":"v1.0.0","assets":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	g := NewGitHubReleases(ctx, "")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	g.client.BaseURL = base

	rel, err := g.Release(ctx, "acme/tool", "")
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", rel.Tag)
	assert.Equal(t, []Asset{{Name: "tool_linux_amd64.tar.gz", URL: "https://dl.example/tool.tar.gz"}}, rel.Assets)

	rel, err = g.Release(ctx, "acme/tool", "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", rel.Tag)

	_, err = g.Release(ctx, "acme/missing", "")
	assert.Error(t, err)

	_, err = g.Release(ctx, "not-a-repo", "")
	assert.ErrorContains(t, err, "expected owner/name")
}

func TestHTTPDownloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			fmt.Fprint(w, "payload")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file")
	require.NoError(t, HTTPDownloader{}.Download(context.Background(), srv.URL+"/ok", dest))
	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	err = HTTPDownloader{Client: srv.Client()}.Download(context.Background(), srv.URL+"/missing", dest)
	assert.ErrorContains(t, err, "HTTP status 404")
}

func TestInstallDownloadFromGitHub(t *testing.T) {
	captureLog(t)
	env := newTestEnv(t, ubuntuAMD64, shelltest.NewRecorder())
	assetURL := "https://github.com/acme/mytool/releases/download/v1.2.3/mytool_1.2.3_linux_amd64.tar.gz"
	releases := env.Releases.(*fakeReleases)
	releases.releases["acme/mytool"] = &Release{
		Tag: "v1.2.3",
		Assets: []Asset{
			{Name: "mytool_1.2.3_darwin_amd64.tar.gz", URL: "https://example.invalid/darwin"},
			{Name: "mytool_1.2.3_linux_amd64.tar.gz", URL: assetURL},
		},
	}
	env.Downloader.(*fakeDownloader).files[assetURL] = tarGzBytes(t, archiveEntry{name: "mytool", body: "bin", mode: 0o755})

	path, err := InstallDownload(context.Background(), config.Tool{
		Name: "mytool", Version: "1.2.3", Source: config.SourceGitHub, Repo: "acme/mytool",
	}, env)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.InstallDir, "mytool"), path)
	assert.Equal(t, []string{"acme/mytool@v1.2.3"}, releases.asked)
}

func TestInstallDownloadNoMatchingAsset(t *testing.T) {
	captureLog(t)
	env := newTestEnv(t, ubuntuAMD64, shelltest.NewRecorder())
	env.Releases.(*fakeReleases).releases["acme/mytool"] = &Release{
		Tag:    "v1.0.0",
		Assets: []Asset{{Name: "mytool_windows_amd64.zip"}},
	}

	_, err := InstallDownload(context.Background(), config.Tool{
		Name: "mytool", Tag: "v1.0.0", Source: config.SourceGitHub, Repo: "acme/mytool",
	}, env)
	assert.ErrorContains(t, err, "no matching asset")
}

func TestInstallDownloadPlainBinaryFromURL(t *testing.T) {
	captureLog(t)
	env := newTestEnv(t, ubuntuAMD64, shelltest.NewRecorder())
	binURL := "https://example.com/releases/mytool-linux-amd64"
	env.Downloader.(*fakeDownloader).files[binURL] = []byte("\x7fELF")

	path, err := InstallDownload(context.Background(), config.Tool{
		Name: "mytool", Source: config.SourceURL, URL: binURL,
	}, env)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.InstallDir, "mytool"), path)
	assert.FileExists(t, path)
}

func TestInstallDownloadDebFromURL(t *testing.T) {
	captureLog(t)
	rec := shelltest.NewRecorder()
	env := newTestEnv(t, ubuntuAMD64, rec)
	debURL := "https://example.com/pkg/mytool_1.0_amd64.deb"
	env.Downloader.(*fakeDownloader).files[debURL] = []byte("deb")

	_, err := InstallDownload(context.Background(), config.Tool{
		Name: "mytool", Source: config.SourceURL, URL: debURL,
	}, env)
	require.NoError(t, err)
	require.Len(t, rec.Commands(), 1)
	assert.True(t, strings.HasPrefix(rec.Commands()[0], "apt-get install -y /"))
	assert.True(t, strings.HasSuffix(rec.Commands()[0], "mytool_1.0_amd64.deb"))
}
