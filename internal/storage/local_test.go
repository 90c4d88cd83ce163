package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(filepath.Join(t.TempDir(), "backup.db"))
	if err != nil {
		t.Fatalf("failed to open backup store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "doc:u1"); err != nil || ok {
		t.Fatalf("expected a miss on a fresh store, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "doc:u1", `{"currentWeight":72}`); err != nil {
		t.Fatal(err)
	}

	value, ok, err := store.Get(ctx, "doc:u1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != `{"currentWeight":72}` {
		t.Errorf("unexpected value: ok=%v value=%q", ok, value)
	}

	// Set replaces.
	if err := store.Set(ctx, "doc:u1", `{"currentWeight":70}`); err != nil {
		t.Fatal(err)
	}
	value, _, _ = store.Get(ctx, "doc:u1")
	if value != `{"currentWeight":70}` {
		t.Errorf("expected replacement, got %q", value)
	}
}

func TestLocalStoreDelete(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "doc:u1", "x"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "doc:u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, "doc:u1"); ok {
		t.Error("expected key gone after delete")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "doc:u1"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}
