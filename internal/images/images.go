// Package images implements the best-effort image acquirer. Downloads are
// cached locally under the event id; every failure degrades to "no image"
// and never aborts the pipeline.
package images

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/samircd4/bcp-events/internal/logger"
)

// Acquirer downloads event images into a local cache directory.
type Acquirer struct {
	dir        string
	httpClient *http.Client
	maxRetries uint64
}

// New creates an Acquirer caching into dir. The directory is created on
// first successful download, not here.
func New(dir string) *Acquirer {
	return &Acquirer{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 2,
	}
}

// Acquire downloads the image at rawURL into the cache, named by event id
// and the URL's file extension. Returns the local path and true on
// success. An empty or placeholder URL ("nan", left behind by tabular
// round-trips) short-circuits to false without any network call, as does
// any download or I/O failure.
func (a *Acquirer) Acquire(eventID, rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.EqualFold(rawURL, "nan") {
		logger.Info("event has no image", logger.Fields{"event_id": eventID})
		return "", false
	}

	ext, err := extension(rawURL)
	if err != nil {
		logger.Warn("cannot derive image extension", logger.Fields{
			"event_id": eventID,
			"url":      rawURL,
		})
		return "", false
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		logger.Error("creating image cache dir", logger.Fields{"dir": a.dir}, err)
		return "", false
	}

	dest := filepath.Join(a.dir, fmt.Sprintf("%s.%s", eventID, ext))

	op := func() error {
		return a.download(rawURL, dest)
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.maxRetries)
	if err := backoff.Retry(op, policy); err != nil {
		logger.Error("image download failed", logger.Fields{
			"event_id": eventID,
			"url":      rawURL,
		}, err)
		return "", false
	}

	logger.Info("image downloaded", logger.Fields{
		"event_id": eventID,
		"path":     dest,
	})
	return dest, true
}

// download streams the remote resource to a temp file and renames it into
// place, so a partial download never satisfies the byte-for-byte guarantee.
func (a *Acquirer) download(rawURL, dest string) error {
	resp, err := a.httpClient.Get(rawURL)
	if err != nil {
		return fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(a.dir, ".download-*")
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return backoff.Permanent(fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return backoff.Permanent(fmt.Errorf("renaming image: %w", err))
	}
	return nil
}

// extension returns the substring after the last '.' in the URL path,
// ignoring any query string.
func extension(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		return "", fmt.Errorf("URL path %q has no extension", u.Path)
	}
	return ext, nil
}
