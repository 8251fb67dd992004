// Package fetch obtains the scraped NBS listing, either live over HTTP or
// from a cached snapshot on disk. The NBS pages are served in GB2312/GBK,
// so everything is decoded to UTF-8 on the way in.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// DefaultTimeout bounds a single listing download.
const DefaultTimeout = 60 * time.Second

// Fetcher retrieves listing snapshots and manages the local cache.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// New creates a Fetcher caching under cacheDir.
func New(cacheDir string) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		cacheDir: cacheDir,
	}
}

// NewWithClient creates a Fetcher with a custom HTTP client, used by tests
// to point at a local server.
func NewWithClient(cacheDir string, client *http.Client) *Fetcher {
	return &Fetcher{client: client, cacheDir: cacheDir}
}

// CachePath returns the snapshot path for a publication date.
func (f *Fetcher) CachePath(version string) string {
	return filepath.Join(f.cacheDir, version+".html")
}

// Cached returns the cached snapshot for version as UTF-8 text.
func (f *Fetcher) Cached(version string) ([]byte, error) {
	path := f.CachePath(version)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSourceError(sources.Scraped.String(), version,
			errors.WrapIO("read", path, err))
	}
	return decode(raw)
}

// Fetch returns the listing for version as UTF-8 text. With useCache set it
// reads the cached snapshot first and falls back to the network only when
// the snapshot is missing.
func (f *Fetcher) Fetch(ctx context.Context, version string, useCache bool) ([]byte, error) {
	log := logging.FromContext(ctx)

	if useCache {
		body, err := f.Cached(version)
		if err == nil {
			log.Info().Str("path", f.CachePath(version)).Msg("reading cached listing")
			return body, nil
		}
		log.Warn().Str("version", version).Msg("cache missing, fetching from network")
	}

	raw, err := f.download(ctx, version)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// RefreshCache downloads every known version (or only version, when given)
// and persists the raw snapshots. Writes go through a temp file so an
// interrupted download never replaces a good snapshot.
func (f *Fetcher) RefreshCache(ctx context.Context, version string) error {
	log := logging.FromContext(ctx)

	targets := sources.Versions()
	if version != "" {
		targets = []string{version}
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return errors.WrapIO("create", f.cacheDir, err)
	}

	for _, v := range targets {
		raw, err := f.download(ctx, v)
		if err != nil {
			return err
		}

		path := f.CachePath(v)
		if err := writeAtomic(path, raw); err != nil {
			return err
		}
		log.Info().Str("version", v).Str("path", path).Msg("saved snapshot")
	}
	return nil
}

// download retrieves the raw (still GBK-encoded) listing for version.
func (f *Fetcher) download(ctx context.Context, version string) ([]byte, error) {
	url, ok := sources.URL(version)
	if !ok {
		return nil, errors.NewSourceError(sources.Scraped.String(), version,
			errors.New("unknown publication date"))
	}

	logging.FromContext(ctx).Info().Str("url", url).Msg("retrieving listing")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapSource(sources.Scraped.String(), version, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.WrapSource(sources.Scraped.String(), version, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSourceError(sources.Scraped.String(), version,
			errors.New("unexpected status "+resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapSource(sources.Scraped.String(), version, err)
	}
	return body, nil
}

// decode converts a listing to UTF-8, sniffing the charset from the content
// and its meta tags.
func decode(raw []byte) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), "text/html")
	if err != nil {
		return nil, errors.WrapSource(sources.Scraped.String(), "", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapSource(sources.Scraped.String(), "", err)
	}
	return out, nil
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
