package installer

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
)

// Downloader fetches a URL into a local file.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// HTTPDownloader downloads over HTTP(S).
type HTTPDownloader struct {
	Client *http.Client
}

// Download downloads the content located at url and saves it to destPath.
func (d HTTPDownloader) Download(ctx context.Context, url, destPath string) error {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "building request for %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to GET %s", url)
	}
	// Ensure the response body stream is closed when the function returns
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %s\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("GET %s: HTTP status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %s", destPath)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return errors.Wrap(err, "failed to write response to file")
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", destPath)
	}

	logger.Debug("[DEBUG] Downloaded %s to: %s\n", url, destPath)
	return nil
}

// fetch downloads url into a fresh temporary directory and returns the file
// path together with a cleanup function.
func (e *Env) fetch(ctx context.Context, url string) (string, func(), error) {
	if e.Downloader == nil {
		return "", func() {}, errors.New("no downloader configured")
	}
	dir, err := os.MkdirTemp(e.TempDir, "dev-download-")
	if err != nil {
		return "", func() {}, errors.Wrap(err, "creating download directory")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Debug("[DEBUG] Failed to clean %s: %v\n", dir, err)
		}
	}

	dest := filepath.Join(dir, path.Base(url))
	logger.Info("[INFO] Downloading %s\n", url)
	if err := e.Downloader.Download(ctx, url, dest); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return dest, cleanup, nil
}
