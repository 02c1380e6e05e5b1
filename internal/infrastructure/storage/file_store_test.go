package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	ids := map[string]struct{}{
		"wakatime|100": {},
		"wakatime|200": {},
	}
	if err := store.Save(ctx, "wakatime", ids); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "wakatime")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(loaded))
	}
	for id := range ids {
		if _, ok := loaded[id]; !ok {
			t.Fatalf("id %s lost in round trip", id)
		}
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	loaded, err := store.Load(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty set, got %d ids", len(loaded))
	}
}

func TestFileStoreCorruptFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(dir)
	if _, err := store.Load(context.Background(), "bad"); err == nil {
		t.Fatal("expected decode error for corrupt state file")
	}
}
