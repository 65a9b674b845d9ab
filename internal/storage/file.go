package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore persists the save slot as a YAML file. Writes go through a
// temporary file and rename, so an interrupted save never corrupts an
// existing slot.
type FileStore struct {
	dir  string
	slot string
}

// NewFileStore creates a FileStore writing slot files under dir.
//
// Precondition: dir and slot must be non-empty.
func NewFileStore(dir, slot string) *FileStore {
	return &FileStore{dir: dir, slot: slot}
}

// Path returns the slot file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.slot+".yaml")
}

// Save writes the snapshot to the slot file atomically.
//
// Postcondition: On error, any previously saved slot is unchanged.
func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, s.slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp save file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing save file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing save file: %w", err)
	}
	return nil
}

// Load reads and decodes the slot file.
//
// Postcondition: Returns ErrNoSave when the slot file does not exist.
func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSave
		}
		return nil, fmt.Errorf("reading save file: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding save file: %w", err)
	}
	return &snap, nil
}
