package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

func testContext() context.Context {
	return logging.WithLogger(context.Background(), &logging.Nop)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func stubClient(status int, body []byte, hits *int) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			if hits != nil {
				*hits++
			}
			return &http.Response{
				StatusCode: status,
				Status:     http.StatusText(status),
				Body:       io.NopCloser(strings.NewReader(string(body))),
				Header:     make(http.Header),
			}, nil
		}),
	}
}

// gbkListing is a minimal listing declaring gb2312, with 北京市 in GBK bytes.
func gbkListing() []byte {
	var b []byte
	b = append(b, []byte(`<html><head><meta charset="gb2312"></head><body>`)...)
	b = append(b, 0xB1, 0xB1, 0xBE, 0xA9, 0xCA, 0xD0)
	b = append(b, []byte(`</body></html>`)...)
	return b
}

func TestCachedDecodesToUTF8(t *testing.T) {
	dir := t.TempDir()
	f := New(dir)
	require.NoError(t, os.WriteFile(f.CachePath(sources.DefaultVersion), gbkListing(), 0o644))

	body, err := f.Cached(sources.DefaultVersion)
	require.NoError(t, err)
	assert.Contains(t, string(body), "北京市")
}

func TestCachedMissingSnapshot(t *testing.T) {
	f := New(t.TempDir())

	_, err := f.Cached(sources.DefaultVersion)
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestFetchPrefersCache(t *testing.T) {
	dir := t.TempDir()
	hits := 0
	f := NewWithClient(dir, stubClient(http.StatusOK, gbkListing(), &hits))
	require.NoError(t, os.WriteFile(f.CachePath(sources.DefaultVersion), gbkListing(), 0o644))

	body, err := f.Fetch(testContext(), sources.DefaultVersion, true)
	require.NoError(t, err)
	assert.Contains(t, string(body), "北京市")
	assert.Zero(t, hits, "cache hit must not touch the network")
}

func TestFetchFallsBackToNetwork(t *testing.T) {
	hits := 0
	f := NewWithClient(t.TempDir(), stubClient(http.StatusOK, gbkListing(), &hits))

	body, err := f.Fetch(testContext(), sources.DefaultVersion, true)
	require.NoError(t, err)
	assert.Contains(t, string(body), "北京市")
	assert.Equal(t, 1, hits)
}

func TestFetchUnknownVersion(t *testing.T) {
	f := NewWithClient(t.TempDir(), stubClient(http.StatusOK, nil, nil))

	_, err := f.Fetch(testContext(), "1999-01-01", false)
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestFetchNon200Status(t *testing.T) {
	f := NewWithClient(t.TempDir(), stubClient(http.StatusNotFound, nil, nil))

	_, err := f.Fetch(testContext(), sources.DefaultVersion, false)
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestRefreshCacheWritesRawSnapshot(t *testing.T) {
	dir := t.TempDir()
	raw := gbkListing()
	f := NewWithClient(dir, stubClient(http.StatusOK, raw, nil))

	require.NoError(t, f.RefreshCache(testContext(), sources.DefaultVersion))

	got, err := os.ReadFile(f.CachePath(sources.DefaultVersion))
	require.NoError(t, err)
	assert.Equal(t, raw, got, "snapshots are stored undecoded")
}

func TestRefreshCacheAllVersions(t *testing.T) {
	dir := t.TempDir()
	f := NewWithClient(dir, stubClient(http.StatusOK, gbkListing(), nil))

	require.NoError(t, f.RefreshCache(testContext(), ""))

	for _, v := range sources.Versions() {
		_, err := os.Stat(f.CachePath(v))
		assert.NoError(t, err, "version %s", v)
	}
}
