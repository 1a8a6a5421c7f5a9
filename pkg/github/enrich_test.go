package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func summaries(n int) []UserSummary {
	out := make([]UserSummary, n)
	for i := range out {
		out[i] = UserSummary{ID: int64(i + 1), Login: fmt.Sprintf("user%d", i)}
	}
	return out
}

func TestEnrichEmpty(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}), nil)

	profiles := client.enrich(context.Background(), nil)
	if len(profiles) != 0 {
		t.Errorf("expected empty result, got %d profiles", len(profiles))
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("empty enrichment must not issue requests, saw %d", n)
	}
}

func TestEnrichPreservesOrderOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		login := strings.TrimPrefix(r.URL.Path, "/users/")
		if login == "user1" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		fmt.Fprint(w, userJSON(login, 1))
	})
	client := newTestClient(t, mux, nil)

	profiles := client.enrich(context.Background(), summaries(3))
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	for i, profile := range profiles {
		if want := fmt.Sprintf("user%d", i); profile.Login != want {
			t.Errorf("position %d: expected %s, got %s", i, want, profile.Login)
		}
	}
	if profiles[0].DetailsUnavailable || profiles[2].DetailsUnavailable {
		t.Error("successful lookups marked unavailable")
	}
	if !profiles[1].DetailsUnavailable {
		t.Error("failed lookup not marked unavailable")
	}
	// The failed entry keeps its summary identity.
	if profiles[1].Login != "user1" || profiles[1].ID != 2 {
		t.Errorf("degraded entry lost summary fields: %+v", profiles[1].UserSummary)
	}
}

func TestEnrichCapsLookups(t *testing.T) {
	var requests atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, userJSON(strings.TrimPrefix(r.URL.Path, "/users/"), 1))
	})
	client := newTestClient(t, mux, nil)

	profiles := client.enrich(context.Background(), summaries(40))
	if len(profiles) != 40 {
		t.Fatalf("expected 40 profiles, got %d", len(profiles))
	}
	if n := requests.Load(); n != 30 {
		t.Errorf("expected 30 detail lookups, saw %d", n)
	}
	for i, profile := range profiles {
		if i < 30 && profile.DetailsUnavailable {
			t.Errorf("position %d: expected enriched entry", i)
		}
		if i >= 30 && !profile.DetailsUnavailable {
			t.Errorf("position %d: beyond the cap, expected summary only", i)
		}
	}
}

func TestEnrichRespectsBatchSize(t *testing.T) {
	var mu sync.Mutex
	active, maxActive, total := 0, 0, 0

	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		active++
		total++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		fmt.Fprint(w, userJSON(strings.TrimPrefix(r.URL.Path, "/users/"), 1))
	})
	client := newTestClient(t, mux, func(o *Options) {
		o.BatchSize = 3
	})

	profiles := client.enrich(context.Background(), summaries(10))
	if len(profiles) != 10 {
		t.Fatalf("expected 10 profiles, got %d", len(profiles))
	}

	mu.Lock()
	defer mu.Unlock()
	if total != 10 {
		t.Errorf("expected 10 lookups, saw %d", total)
	}
	if maxActive > 3 {
		t.Errorf("batch size exceeded: %d concurrent lookups", maxActive)
	}
}

func TestEnrichStopsWhenQuotaLow(t *testing.T) {
	var requests atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "1")
		fmt.Fprint(w, userJSON(strings.TrimPrefix(r.URL.Path, "/users/"), 1))
	})
	client := newTestClient(t, mux, func(o *Options) {
		o.BatchSize = 2
	})

	profiles := client.enrich(context.Background(), summaries(6))
	if len(profiles) != 6 {
		t.Fatalf("expected 6 profiles, got %d", len(profiles))
	}
	// The first batch reports 1 remaining, which is below the floor, so
	// no further batch is issued.
	if n := requests.Load(); n != 2 {
		t.Errorf("expected exactly one batch of 2 lookups, saw %d", n)
	}
	if profiles[0].DetailsUnavailable || profiles[1].DetailsUnavailable {
		t.Error("first batch should be enriched")
	}
	for i := 2; i < 6; i++ {
		if !profiles[i].DetailsUnavailable {
			t.Errorf("position %d: expected summary only after quota stop", i)
		}
	}
}

func TestEnrichStopsOnCancelledContext(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	profiles := client.enrich(ctx, summaries(8))
	if len(profiles) != 8 {
		t.Fatalf("expected 8 profiles, got %d", len(profiles))
	}
	for i, profile := range profiles {
		if !profile.DetailsUnavailable {
			t.Errorf("position %d: expected summary only under cancelled context", i)
		}
	}
}
