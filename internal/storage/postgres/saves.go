package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/sentinel/internal/game/world"
	"github.com/cory-johannsen/sentinel/internal/storage"
)

// SaveRepository persists session snapshots to PostgreSQL. It implements
// storage.SaveStore for one named save slot: a snapshot row in saves plus one
// row per item in save_items, replaced atomically on each save.
type SaveRepository struct {
	db   *pgxpool.Pool
	slot string
}

// NewSaveRepository creates a SaveRepository bound to the given slot.
//
// Precondition: db must be a valid, open connection pool; slot must be
// non-empty.
func NewSaveRepository(db *pgxpool.Pool, slot string) *SaveRepository {
	return &SaveRepository{db: db, slot: slot}
}

// Save writes the snapshot, replacing any previous save in the slot. The
// snapshot row and all item rows are written in one transaction, so a failed
// save never leaves a partial slot behind.
//
// Postcondition: On success, Load returns an equivalent snapshot.
func (r *SaveRepository) Save(ctx context.Context, snap *storage.Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO saves (slot, session_id, saved_at, player_name, room_id,
		                    health, score, moves, lamp_lit, game_won, scored_keys)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (slot) DO UPDATE SET
		   session_id  = EXCLUDED.session_id,
		   saved_at    = EXCLUDED.saved_at,
		   player_name = EXCLUDED.player_name,
		   room_id     = EXCLUDED.room_id,
		   health      = EXCLUDED.health,
		   score       = EXCLUDED.score,
		   moves       = EXCLUDED.moves,
		   lamp_lit    = EXCLUDED.lamp_lit,
		   game_won    = EXCLUDED.game_won,
		   scored_keys = EXCLUDED.scored_keys,
		   updated_at  = NOW()`,
		r.slot, snap.SessionID, snap.SavedAt,
		snap.Player.Name, snap.Player.Room,
		snap.Player.Health, snap.Player.Score, snap.Player.Moves,
		snap.Flags.LampLit, snap.Flags.GameWon, snap.Flags.ScoredKeys,
	)
	if err != nil {
		return fmt.Errorf("upserting save %q: %w", r.slot, err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM save_items WHERE slot = $1`, r.slot); err != nil {
		return fmt.Errorf("clearing save items %q: %w", r.slot, err)
	}

	for _, item := range snap.Items {
		_, err := tx.Exec(ctx,
			`INSERT INTO save_items (slot, item_id, owner_kind, owner_id, open, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.slot, item.ID, string(item.Owner.Kind), item.Owner.ID, item.Open, item.Slot,
		)
		if err != nil {
			return fmt.Errorf("inserting save item %q: %w", item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save %q: %w", r.slot, err)
	}
	return nil
}

// Load reads the slot's snapshot.
//
// Postcondition: Returns storage.ErrNoSave when the slot has never been
// saved.
func (r *SaveRepository) Load(ctx context.Context) (*storage.Snapshot, error) {
	snap := &storage.Snapshot{}
	err := r.db.QueryRow(ctx,
		`SELECT session_id, saved_at, player_name, room_id,
		        health, score, moves, lamp_lit, game_won, scored_keys
		 FROM saves WHERE slot = $1`, r.slot,
	).Scan(
		&snap.SessionID, &snap.SavedAt,
		&snap.Player.Name, &snap.Player.Room,
		&snap.Player.Health, &snap.Player.Score, &snap.Player.Moves,
		&snap.Flags.LampLit, &snap.Flags.GameWon, &snap.Flags.ScoredKeys,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNoSave
		}
		return nil, fmt.Errorf("reading save %q: %w", r.slot, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT item_id, owner_kind, owner_id, open, position
		 FROM save_items WHERE slot = $1
		 ORDER BY position, item_id`, r.slot,
	)
	if err != nil {
		return nil, fmt.Errorf("reading save items %q: %w", r.slot, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item storage.ItemRecord
		var kind string
		if err := rows.Scan(&item.ID, &kind, &item.Owner.ID, &item.Open, &item.Slot); err != nil {
			return nil, fmt.Errorf("scanning save item: %w", err)
		}
		item.Owner.Kind = world.OwnerKind(kind)
		snap.Items = append(snap.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating save items %q: %w", r.slot, err)
	}

	return snap, nil
}
