package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"binfleet-backend/internal/models"
)

// ErrCorruptSnapshot indicates the snapshot file exists but cannot be parsed.
// Callers recover by resetting to an empty registry.
var ErrCorruptSnapshot = errors.New("snapshot file is corrupt")

// SnapshotStore persists the full bin list to a single JSON file. The file is
// rewritten wholesale on every save; the caller is responsible for holding the
// registry lock across the write so two mutations never interleave.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store backed by the given file path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save overwrites the snapshot file with the given bins, preserving order.
func (s *SnapshotStore) Save(bins []models.Bin) error {
	if bins == nil {
		bins = []models.Bin{}
	}

	data, err := json.MarshalIndent(bins, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to serialize bins: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

// Load reads the snapshot file. A missing file is the expected cold-start
// case and returns an empty list; an unreadable or unparsable file returns
// ErrCorruptSnapshot.
func (s *SnapshotStore) Load() ([]models.Bin, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Bin{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	var bins []models.Bin
	if err := json.Unmarshal(data, &bins); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if bins == nil {
		bins = []models.Bin{}
	}

	return bins, nil
}
