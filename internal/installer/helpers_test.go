package installer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"devutils/internal/logger"
	"devutils/internal/platform"
	"devutils/internal/shell/shelltest"
)

// fakeDownloader serves canned bodies by URL.
type fakeDownloader struct {
	mu     sync.Mutex
	files  map[string][]byte
	called []string
}

func (f *fakeDownloader) Download(_ context.Context, url, dest string) error {
	f.mu.Lock()
	f.called = append(f.called, url)
	body, ok := f.files[url]
	f.mu.Unlock()
	if !ok {
		return errors.Newf("GET %s: HTTP status 404", url)
	}
	return os.WriteFile(dest, body, 0o644)
}

func (f *fakeDownloader) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.called...)
}

// fakeReleases returns canned releases keyed by repo.
type fakeReleases struct {
	mu       sync.Mutex
	releases map[string]*Release
	asked    []string
}

func (f *fakeReleases) Release(_ context.Context, repo, tag string) (*Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, repo+"@"+tag)
	rel, ok := f.releases[repo]
	if !ok {
		return nil, errors.Newf("release %q of %s not found", tag, repo)
	}
	return rel, nil
}

var ubuntuAMD64 = platform.Platform{
	Type:           platform.Ubuntu,
	Family:         platform.Debian,
	Distro:         "ubuntu",
	PackageManager: "apt",
	Arch:           platform.AMD64,
}

func newTestEnv(t *testing.T, p platform.Platform, rec *shelltest.Recorder) *Env {
	t.Helper()
	return &Env{
		Platform:   p,
		Runner:     rec,
		Downloader: &fakeDownloader{files: map[string][]byte{}},
		Releases:   &fakeReleases{releases: map[string]*Release{}},
		InstallDir: t.TempDir(),
		TempDir:    t.TempDir(),
		FileExists: func(string) bool { return false },
	}
}

// captureLog redirects the logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	restore := logger.SetOutput(&buf)
	t.Cleanup(restore)
	return &buf
}

type archiveEntry struct {
	name string
	body string
	mode int64
}

func zipBytes(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		hdr.SetMode(os.FileMode(e.mode))
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func tarGzBytes(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Size:     int64(len(e.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}
