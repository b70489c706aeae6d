package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/G-Node/gin-release/internal/logger"
)

// errBadHTTPStatus reports an unexpected response status for a download.
var errBadHTTPStatus = errors.New("unexpected http status")

// Fetcher downloads release dependencies into a single directory, using
// an ETagCache to skip transfers whose entity tag and size are unchanged.
type Fetcher struct {
	client *http.Client
	cache  *ETagCache
	dir    string
}

// New creates a Fetcher writing into dir.
func New(dir string, cache *ETagCache, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		dir:    dir,
	}
}

// Download fetches url into the fetcher's directory and returns the local
// path. The name defaults to the last URL segment. When the cached entity
// tag matches (via If-None-Match) and the on-disk file has the cached
// size, the body is not transferred again.
func (f *Fetcher) Download(ctx context.Context, url, name string) (string, error) {
	if name == "" {
		name = path.Base(strings.TrimRight(url, "/"))
	}

	dest := filepath.Join(f.dir, name)
	logger.Infof(ctx, "Downloading %s -> %s", url, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}

	cached, haveCached := f.cache.Get(url)
	if haveCached && fileHasSize(dest, cached.Size) {
		req.Header.Set("If-None-Match", cached.ETag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusNotModified:
		logger.Info(ctx, "File already downloaded, skipping")
		return dest, nil
	case http.StatusOK:
		// Transfer below.
	default:
		return "", fmt.Errorf("%s: %s: %w", url, resp.Status, errBadHTTPStatus)
	}

	written, err := writeBody(dest, resp.Body)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		f.cache.Set(url, Entry{ETag: etag, Size: written})
	}

	logger.InfoKV(ctx, "Download complete", "path", dest, "bytes", written)

	return dest, nil
}

// Prestaged reports whether a manually staged artifact is present in the
// download directory and returns its path.
func (f *Fetcher) Prestaged(ctx context.Context, name string) (string, bool) {
	dest := filepath.Join(f.dir, name)
	if _, err := os.Stat(dest); err != nil {
		logger.Warnf(ctx, "Pre-staged artifact %s not found", dest)
		return dest, false
	}

	logger.Infof(ctx, "Found %s", dest)

	return dest, true
}

// writeBody streams the response body to dest and returns the byte count.
func writeBody(dest string, body io.Reader) (written int64, err error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	written, err = io.Copy(out, body)

	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return written, err
}

// fileHasSize reports whether path exists with exactly the given size.
func fileHasSize(path string, size int64) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() == size
}
