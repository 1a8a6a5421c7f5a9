package github

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v73/github"
)

func TestTrackerDefaults(t *testing.T) {
	tracker := NewTracker()

	snapshot := tracker.Snapshot()
	if snapshot.Limit != 60 || snapshot.Remaining != 60 {
		t.Errorf("expected unauthenticated defaults 60/60, got %d/%d", snapshot.Limit, snapshot.Remaining)
	}
	if snapshot.Used != 0 {
		t.Errorf("expected zero used, got %d", snapshot.Used)
	}
}

func TestTrackerUpdate(t *testing.T) {
	tracker := NewTracker()
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	tracker.Update(gh.Rate{Limit: 5000, Remaining: 4990, Reset: gh.Timestamp{Time: reset}})

	snapshot := tracker.Snapshot()
	if snapshot.Limit != 5000 {
		t.Errorf("expected limit 5000, got %d", snapshot.Limit)
	}
	if snapshot.Remaining != 4990 {
		t.Errorf("expected remaining 4990, got %d", snapshot.Remaining)
	}
	if snapshot.Used != 10 {
		t.Errorf("expected used 10, got %d", snapshot.Used)
	}
	if !snapshot.Reset.Equal(reset) {
		t.Errorf("expected reset %v, got %v", reset, snapshot.Reset)
	}
}

func TestTrackerIgnoresZeroRate(t *testing.T) {
	tracker := NewTracker()
	tracker.Update(gh.Rate{Limit: 5000, Remaining: 100})

	// Responses served from cache carry no rate headers. They must not
	// reset the tracker to zero.
	tracker.Update(gh.Rate{})

	snapshot := tracker.Snapshot()
	if snapshot.Limit != 5000 || snapshot.Remaining != 100 {
		t.Errorf("zero-rate update was not ignored: %+v", snapshot)
	}
}

func TestTrackerIsLow(t *testing.T) {
	tracker := NewTracker()

	tracker.Update(gh.Rate{Limit: 60, Remaining: 10})
	if tracker.IsLow(3) {
		t.Error("10 remaining with buffer 3 should not be low")
	}

	tracker.Update(gh.Rate{Limit: 60, Remaining: 3})
	if !tracker.IsLow(3) {
		t.Error("3 remaining with buffer 3 should be low")
	}

	tracker.Update(gh.Rate{Limit: 60, Remaining: 1})
	if !tracker.IsLow(3) {
		t.Error("1 remaining with buffer 3 should be low")
	}
}
