package localstore

import (
	"path/filepath"
	"testing"
)

func TestStoreRoundtrip(t *testing.T) {
	t.Parallel()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if _, ok := store.Get("activeSubscriptionId"); ok {
		t.Fatal("expected miss on fresh store")
	}

	if err := store.Set("activeSubscriptionId", "sub-42"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := store.Get("activeSubscriptionId")
	if !ok || got != "sub-42" {
		t.Fatalf("get = %q, %v", got, ok)
	}

	if err := store.Set("activeSubscriptionId", "sub-43"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := store.Get("activeSubscriptionId"); got != "sub-43" {
		t.Fatalf("expected last write to win, got %q", got)
	}

	if err := store.Delete("activeSubscriptionId"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get("activeSubscriptionId"); ok {
		t.Fatal("expected miss after delete")
	}
	if err := store.Delete("activeSubscriptionId"); err != nil {
		t.Fatalf("deleting absent key should not error: %v", err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tiffino.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set("user_token", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("user_token")
	if !ok || got != "tok-1" {
		t.Fatalf("expected persisted token, got %q, %v", got, ok)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
