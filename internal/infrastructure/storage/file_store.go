package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"historycal/internal/ports"
)

// FileStore keeps one JSON file of delivered event IDs per source.
// No other process reads these files concurrently.
type FileStore struct {
	dir string
}

var _ ports.StateStore = (*FileStore)(nil)

// NewFileStore roots the store at dir; files are created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load reads the delivered-ID set for a source. A missing file is an
// empty set; a corrupt file is an error the caller may downgrade.
func (s *FileStore) Load(_ context.Context, source string) (map[string]struct{}, error) {
	raw, err := os.ReadFile(s.path(source))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("read state for %s: %w", source, err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", source, err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Save writes the delivered-ID set, replacing any previous file.
func (s *FileStore) Save(_ context.Context, source string, ids map[string]struct{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	raw, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", source, err)
	}

	if err := os.WriteFile(s.path(source), raw, 0o644); err != nil {
		return fmt.Errorf("write state for %s: %w", source, err)
	}
	return nil
}

func (s *FileStore) path(source string) string {
	return filepath.Join(s.dir, source+".json")
}
