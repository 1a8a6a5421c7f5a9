package github

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func cacheGet(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCacheServesFreshEntry(t *testing.T) {
	var upstream atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
		io.WriteString(w, `{"login":"octocat"}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, time.Minute)}

	first := cacheGet(t, client, srv.URL+"/users/octocat")
	if first.Header.Get(fromCacheHeader) != "" {
		t.Error("first response must come from the network")
	}

	second := cacheGet(t, client, srv.URL+"/users/octocat")
	if second.Header.Get(fromCacheHeader) != "1" {
		t.Error("second response should be a cache hit")
	}
	body, _ := io.ReadAll(second.Body)
	if !strings.Contains(string(body), "octocat") {
		t.Errorf("cached body corrupted: %q", body)
	}

	if n := upstream.Load(); n != 1 {
		t.Errorf("expected a single upstream request, saw %d", n)
	}
}

func TestCacheKeyedByFullURL(t *testing.T) {
	var upstream atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, time.Minute)}

	cacheGet(t, client, srv.URL+"/search/users?q=a&page=1")
	cacheGet(t, client, srv.URL+"/search/users?q=a&page=2")
	cacheGet(t, client, srv.URL+"/search/users?q=a&page=1")

	if n := upstream.Load(); n != 2 {
		t.Errorf("expected 2 upstream requests for 2 distinct URLs, saw %d", n)
	}
}

func TestCacheSkipsErrorResponses(t *testing.T) {
	var upstream atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, time.Minute)}

	cacheGet(t, client, srv.URL+"/users/octocat")
	cacheGet(t, client, srv.URL+"/users/octocat")

	if n := upstream.Load(); n != 2 {
		t.Errorf("error responses must not be cached, saw %d upstream requests", n)
	}
}

func TestCacheSkipsNonGet(t *testing.T) {
	var upstream atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, time.Minute)}

	for range 2 {
		resp, err := client.Post(srv.URL+"/graphql", "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
	}

	if n := upstream.Load(); n != 2 {
		t.Errorf("POST requests must bypass the cache, saw %d upstream requests", n)
	}
}

func TestCacheRevalidatesWithETag(t *testing.T) {
	var upstream atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v1"`)
		io.WriteString(w, `{"login":"octocat"}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, 5*time.Millisecond)}

	cacheGet(t, client, srv.URL+"/users/octocat")
	time.Sleep(20 * time.Millisecond)

	resp := cacheGet(t, client, srv.URL+"/users/octocat")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("revalidated response should read as success, got %d", resp.StatusCode)
	}
	if resp.Header.Get(fromCacheHeader) != "1" {
		t.Error("revalidated response should be served from the stored entry")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "octocat") {
		t.Errorf("revalidated body lost: %q", body)
	}
	if n := upstream.Load(); n != 2 {
		t.Errorf("expected an upstream revalidation round trip, saw %d requests", n)
	}

	// The 304 refreshed the entry, so an immediate third request stays
	// local.
	cacheGet(t, client, srv.URL+"/users/octocat")
	if n := upstream.Load(); n != 2 {
		t.Errorf("refreshed entry should serve without revalidating, saw %d requests", n)
	}
}

func TestCacheConcurrentRevalidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v1"`)
		io.WriteString(w, `{"login":"octocat"}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, time.Microsecond)}

	// Populate, then let the entry go stale.
	cacheGet(t, client, srv.URL+"/users/octocat")
	time.Sleep(time.Millisecond)

	// Overlapping lookups for the same stale URL must not interfere
	// while both revalidate.
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/users/octocat")
			if err != nil {
				t.Errorf("GET during revalidation: %v", err)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), "octocat") {
				t.Errorf("revalidated body lost: %q", body)
			}
		}()
	}
	wg.Wait()
}

func TestCacheStripsRateLimitHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: newCacheTransport(nil, time.Minute, time.Minute)}

	first := cacheGet(t, client, srv.URL+"/users/octocat")
	if first.Header.Get("X-RateLimit-Remaining") != "42" {
		t.Error("network response must keep its rate headers")
	}

	second := cacheGet(t, client, srv.URL+"/users/octocat")
	for _, name := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if got := second.Header.Get(name); got != "" {
			t.Errorf("cache hit leaked %s=%q", name, got)
		}
	}
}
