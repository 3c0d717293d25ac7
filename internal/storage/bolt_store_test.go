package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltStoreOverwritesAndExpires(t *testing.T) {
	opts := Options{
		EntryTTL:        2 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "diag.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if _, ok, err := store.Get("ctx-1"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := store.Put("ctx-1", []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("ctx-1", []byte("second")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get("ctx-1")
	if err != nil || !ok {
		t.Fatalf("expected value, ok=%v err=%v", ok, err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(2100 * time.Millisecond)

	if _, ok, err := store.Get("ctx-1"); err != nil || ok {
		t.Fatalf("expected entry to expire, ok=%v err=%v", ok, err)
	}
}

func TestBoltStoreKeysAreIndependent(t *testing.T) {
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "diag.db"), Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := store.Put("a", []byte("A")); err != nil {
		t.Fatalf("Put a: %v", err)
	}
	if err := store.Put("b", []byte("B")); err != nil {
		t.Fatalf("Put b: %v", err)
	}
	if got, _, _ := store.Get("a"); string(got) != "A" {
		t.Fatalf("key a clobbered: %q", got)
	}
	if err := store.Put("", []byte("x")); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put("x", []byte("y")); err != nil {
		t.Fatalf("noop store Put: %v", err)
	}
	if _, ok, _ := store.Get("x"); ok {
		t.Fatalf("noop store must not retain values")
	}
}

func TestNewStoreRejectsUnknown(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
