// Package storage provides save-slot persistence for game sessions: a
// snapshot model that encodes every item exactly once with its current owner,
// and stores that write snapshots to durable storage.
package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/cory-johannsen/sentinel/internal/game/world"
)

// OwnerRef records the single collection holding an item at snapshot time.
type OwnerRef struct {
	// Kind is the owning collection kind: room, inventory, or container.
	Kind world.OwnerKind `yaml:"kind"`
	// ID is the owning room or container item ID; empty for inventory.
	ID string `yaml:"id,omitempty"`
}

// ItemRecord is the snapshot of one item's dynamic state. Static fields
// (name, description, capabilities) are not recorded; they are re-read from
// the world definition on restore.
type ItemRecord struct {
	ID    string   `yaml:"id"`
	Owner OwnerRef `yaml:"owner"`
	Open  bool     `yaml:"open"`
	// Slot is the item's position within its owning collection, preserving
	// observable ordering across a round trip.
	Slot int `yaml:"slot"`
}

// PlayerRecord is the snapshot of the player's dynamic state.
type PlayerRecord struct {
	Name   string `yaml:"name"`
	Room   string `yaml:"room"`
	Health int    `yaml:"health"`
	Score  int    `yaml:"score"`
	Moves  int    `yaml:"moves"`
}

// Flags is the snapshot of the engine's session flags.
type Flags struct {
	LampLit    bool     `yaml:"lamp_lit"`
	GameWon    bool     `yaml:"game_won"`
	ScoredKeys []string `yaml:"scored_keys"`
}

// Snapshot is the full persisted state of one session: the player, every
// item's current owner and open state, and the session flags.
type Snapshot struct {
	SessionID string       `yaml:"session_id"`
	SavedAt   time.Time    `yaml:"saved_at"`
	Player    PlayerRecord `yaml:"player"`
	Items     []ItemRecord `yaml:"items"`
	Flags     Flags        `yaml:"flags"`
}

// Capture encodes the world and session flags into a Snapshot. Each item is
// encoded exactly once with its current owner; encountering an item twice, or
// finishing with an item unaccounted for, is an ownership invariant violation
// and fails the capture.
//
// Postcondition: On success, len(snapshot.Items) == len(w.Items).
func Capture(w *world.World, flags Flags, sessionID string, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		SessionID: sessionID,
		SavedAt:   now,
		Player: PlayerRecord{
			Name:   w.Player.Name,
			Room:   w.Player.RoomID,
			Health: w.Player.Health,
			Score:  w.Player.Score,
			Moves:  w.Player.Moves,
		},
		Flags: flags,
	}

	seen := make(map[string]bool, len(w.Items))
	record := func(it *world.Item, owner OwnerRef, slot int) error {
		if seen[it.ID] {
			return fmt.Errorf("item %q encoded twice (second owner %s %q)", it.ID, owner.Kind, owner.ID)
		}
		seen[it.ID] = true
		snap.Items = append(snap.Items, ItemRecord{
			ID:    it.ID,
			Owner: owner,
			Open:  it.Open,
			Slot:  slot,
		})
		return nil
	}

	for _, roomID := range sortedKeys(w.Rooms) {
		for slot, it := range w.Rooms[roomID].Items {
			if err := record(it, OwnerRef{Kind: world.OwnerRoom, ID: roomID}, slot); err != nil {
				return nil, err
			}
		}
	}
	for slot, it := range w.Player.Inventory {
		if err := record(it, OwnerRef{Kind: world.OwnerInventory}, slot); err != nil {
			return nil, err
		}
	}
	for _, containerID := range sortedKeys(w.Items) {
		for slot, it := range w.Items[containerID].Contents {
			if err := record(it, OwnerRef{Kind: world.OwnerContainer, ID: containerID}, slot); err != nil {
				return nil, err
			}
		}
	}

	if len(snap.Items) != len(w.Items) {
		for id := range w.Items {
			if !seen[id] {
				return nil, fmt.Errorf("item %q has no owner", id)
			}
		}
	}

	return snap, nil
}

// Restore builds a fresh world from the static definition and overlays the
// snapshot's dynamic state: item ownership, open flags, and player fields.
// Static content (descriptions, exits, synonyms, capabilities) always comes
// from the definition, so content fixes are never masked by stale saves.
//
// Postcondition: On success, the returned world satisfies the ownership
// invariant; on error, no partial world is returned.
func Restore(def *world.Definition, snap *Snapshot) (*world.World, error) {
	w := def.Build(snap.Player.Name)

	if len(snap.Items) != len(w.Items) {
		return nil, fmt.Errorf("snapshot has %d items, world defines %d", len(snap.Items), len(w.Items))
	}

	// Discard the definition's initial placement; the snapshot is the sole
	// authority on ownership.
	for _, room := range w.Rooms {
		room.Items = nil
	}
	for _, it := range w.Items {
		it.Contents = nil
	}
	w.Player.Inventory = nil

	records := make([]ItemRecord, len(snap.Items))
	copy(records, snap.Items)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Slot < records[j].Slot })

	placed := make(map[string]bool, len(records))
	for _, rec := range records {
		if placed[rec.ID] {
			return nil, fmt.Errorf("snapshot encodes item %q twice", rec.ID)
		}
		placed[rec.ID] = true

		it, ok := w.Items[rec.ID]
		if !ok {
			return nil, fmt.Errorf("snapshot references unknown item %q", rec.ID)
		}
		it.Open = rec.Open

		switch rec.Owner.Kind {
		case world.OwnerRoom:
			room, ok := w.Rooms[rec.Owner.ID]
			if !ok {
				return nil, fmt.Errorf("item %q: unknown owner room %q", rec.ID, rec.Owner.ID)
			}
			room.AddItem(it)
		case world.OwnerInventory:
			w.Player.AddItem(it)
		case world.OwnerContainer:
			container, ok := w.Items[rec.Owner.ID]
			if !ok {
				return nil, fmt.Errorf("item %q: unknown owner container %q", rec.ID, rec.Owner.ID)
			}
			container.AddContent(it)
		default:
			return nil, fmt.Errorf("item %q: unknown owner kind %q", rec.ID, rec.Owner.Kind)
		}
	}

	if _, ok := w.Rooms[snap.Player.Room]; !ok {
		return nil, fmt.Errorf("snapshot places player in unknown room %q", snap.Player.Room)
	}
	w.Player.RoomID = snap.Player.Room
	w.Player.Health = snap.Player.Health
	w.Player.Score = snap.Player.Score
	w.Player.Moves = snap.Player.Moves

	if err := w.CheckOwnership(); err != nil {
		return nil, fmt.Errorf("restored world violates ownership: %w", err)
	}

	return w, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
