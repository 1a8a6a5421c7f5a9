package github

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/hubscout/pkg/log"
)

// fromCacheHeader marks synthesized responses so callers (and tests)
// can tell a cache hit from a network round trip.
const fromCacheHeader = "X-Hubscout-Cache"

// cacheTransport is a GET-only response cache sitting between go-github
// and the network. Fresh entries are served without touching the
// network; stale entries with an ETag are revalidated with
// If-None-Match, and a 304 refreshes the entry and serves the stored
// body. Only 2xx/3xx responses are stored, each keyed by full URL.
type cacheTransport struct {
	base       http.RoundTripper
	searchTTL  time.Duration
	profileTTL time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	status   int
	header   http.Header
	body     []byte
	etag     string
	storedAt time.Time
}

func newCacheTransport(base http.RoundTripper, searchTTL, profileTTL time.Duration) *cacheTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &cacheTransport{
		base:       base,
		searchTTL:  searchTTL,
		profileTTL: profileTTL,
		logger:     log.ForService("cache"),
		entries:    make(map[string]*cacheEntry),
	}
}

func (t *cacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	key := req.URL.String()
	ttl := t.profileTTL
	if strings.Contains(req.URL.Path, "/search/") {
		ttl = t.searchTTL
	}

	// Entries are immutable once stored; revalidation replaces them.
	// storedAt is still read under the lock so a concurrent replacement
	// cannot race the freshness check.
	t.mu.Lock()
	entry := t.entries[key]
	fresh := entry != nil && time.Since(entry.storedAt) < ttl
	t.mu.Unlock()

	if fresh {
		t.logger.Debugf("cache hit for %s", key)
		return entry.response(req), nil
	}

	if entry != nil && entry.etag != "" {
		req = req.Clone(req.Context())
		req.Header.Set("If-None-Match", entry.etag)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified && entry != nil {
		t.logger.Debugf("revalidated %s", key)
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		refreshed := &cacheEntry{
			status:   entry.status,
			header:   entry.header,
			body:     entry.body,
			etag:     entry.etag,
			storedAt: time.Now(),
		}
		t.mu.Lock()
		t.entries[key] = refreshed
		t.mu.Unlock()
		return refreshed.response(req), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	stored := &cacheEntry{
		status:   resp.StatusCode,
		header:   sanitizeHeader(resp.Header),
		body:     body,
		etag:     resp.Header.Get("Etag"),
		storedAt: time.Now(),
	}

	t.mu.Lock()
	t.entries[key] = stored
	t.mu.Unlock()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// response synthesizes an http.Response from the stored entry.
func (e *cacheEntry) response(req *http.Request) *http.Response {
	header := e.header.Clone()
	header.Set(fromCacheHeader, "1")
	return &http.Response{
		Status:        http.StatusText(e.status),
		StatusCode:    e.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.body)),
		ContentLength: int64(len(e.body)),
		Request:       req,
	}
}

// sanitizeHeader strips the rate-limit headers before storing so a
// cache hit never feeds stale quota numbers back into the tracker.
func sanitizeHeader(h http.Header) http.Header {
	clone := h.Clone()
	for _, name := range []string{
		"X-Ratelimit-Limit",
		"X-Ratelimit-Remaining",
		"X-Ratelimit-Used",
		"X-Ratelimit-Reset",
	} {
		clone.Del(name)
	}
	return clone
}
