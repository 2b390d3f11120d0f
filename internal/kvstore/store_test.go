package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// backends under test share one contract; redis is exercised only when a
// server is available and is omitted here.
func testBackends(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFileStore(filepath.Join(t.TempDir(), "kv.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing: want ErrNotFound, got %v", err)
			}

			if err := store.Set(ctx, "a", []byte("1")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := store.Get(ctx, "a")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "1" {
				t.Fatalf("Get: want %q, got %q", "1", got)
			}

			if err := store.Set(ctx, "a", []byte("2")); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, _ = store.Get(ctx, "a")
			if string(got) != "2" {
				t.Fatalf("Get after overwrite: want %q, got %q", "2", got)
			}

			if err := store.Remove(ctx, "a"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get removed: want ErrNotFound, got %v", err)
			}
			if err := store.Remove(ctx, "a"); err != nil {
				t.Fatalf("Remove absent key: %v", err)
			}
		})
	}
}

func TestStoreMultiOperations(t *testing.T) {
	ctx := context.Background()

	for name, store := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := store.MultiSet(ctx, map[string][]byte{
				"x": []byte("10"),
				"y": []byte("20"),
			})
			if err != nil {
				t.Fatalf("MultiSet: %v", err)
			}

			values, err := store.MultiGet(ctx, []string{"x", "gone", "y"})
			if err != nil {
				t.Fatalf("MultiGet: %v", err)
			}
			if len(values) != 3 {
				t.Fatalf("MultiGet: want 3 entries, got %d", len(values))
			}
			if string(values[0]) != "10" || values[1] != nil || string(values[2]) != "20" {
				t.Fatalf("MultiGet: positional mismatch: %q %q %q", values[0], values[1], values[2])
			}

			if err := store.MultiRemove(ctx, []string{"x", "y", "gone"}); err != nil {
				t.Fatalf("MultiRemove: %v", err)
			}
			if _, err := store.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get after MultiRemove: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestFileStoreReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := first.Set(ctx, "token", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A second instance over the same path sees the persisted data.
	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore reopen: %v", err)
	}
	got, err := second.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("Get after reopen: want %q, got %q", "abc", got)
	}
}

func TestSQLiteStoreReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := first.Set(ctx, "token", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("Get after reopen: want %q, got %q", "abc", got)
	}
}
