package storage

import (
	"context"
	"errors"
)

// ErrNoSave is returned by Load when the slot has never been written.
var ErrNoSave = errors.New("no saved game")

// SaveStore persists and retrieves the single save slot. A failed Save must
// leave any existing slot intact; a failed Load must not return a partial
// snapshot.
type SaveStore interface {
	// Save writes the snapshot to the slot, replacing any previous save.
	Save(ctx context.Context, snap *Snapshot) error
	// Load reads the slot. Returns ErrNoSave when nothing has been saved.
	Load(ctx context.Context) (*Snapshot, error)
}
