package credstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: failed to close store: %v", err)
		}
	})
	return store
}

func TestTokenRoundTrip(t *testing.T) {
	store := openTestStore(t)

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token on empty store: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token on fresh store, got %q", token)
	}

	if err := store.SetToken("ghp_testtoken"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	token, err = store.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "ghp_testtoken" {
		t.Errorf("expected stored token, got %q", token)
	}
}

func TestSetTokenReplaces(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetToken("first"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := store.SetToken("second"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "second" {
		t.Errorf("expected replaced token 'second', got %q", token)
	}
}

func TestClearToken(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetToken("doomed"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken failed: %v", err)
	}

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token after clear, got %q", token)
	}

	// Clearing again is a no-op, not an error.
	if err := store.ClearToken(); err != nil {
		t.Errorf("ClearToken on empty store: %v", err)
	}
}

func TestArbitraryKeys(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("other_key", "other_value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := store.Get("other_key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "other_value" {
		t.Errorf("expected 'other_value', got %q", value)
	}

	if err := store.Delete("other_key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	value, err = store.Get("other_key")
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value after delete, got %q", value)
	}
}
