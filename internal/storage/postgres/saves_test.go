package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/sentinel/internal/game/world"
	"github.com/cory-johannsen/sentinel/internal/storage"
	"github.com/cory-johannsen/sentinel/internal/storage/postgres"
	"github.com/cory-johannsen/sentinel/internal/testutil"
)

func testSnapshot(savedAt time.Time) *storage.Snapshot {
	return &storage.Snapshot{
		SessionID: "0b0e9867-6c71-4a2e-9a7a-97e86cf2e9ce",
		SavedAt:   savedAt,
		Player: storage.PlayerRecord{
			Name:   "Tester",
			Room:   "house",
			Health: 80,
			Score:  15,
			Moves:  7,
		},
		Items: []storage.ItemRecord{
			{ID: "mailbox", Owner: storage.OwnerRef{Kind: world.OwnerRoom, ID: "field"}, Open: true},
			{ID: "leaflet", Owner: storage.OwnerRef{Kind: world.OwnerInventory}, Slot: 0},
			{ID: "lamp", Owner: storage.OwnerRef{Kind: world.OwnerInventory}, Slot: 1},
			{ID: "treasure", Owner: storage.OwnerRef{Kind: world.OwnerContainer, ID: "chest"}},
		},
		Flags: storage.Flags{
			LampLit:    true,
			ScoredKeys: []string{"open_mailbox", "take_leaflet"},
		},
	}
}

func TestSaveRepositoryRoundTrip(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	repo := postgres.NewSaveRepository(pc.RawPool, "savegame")
	want := testSnapshot(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.True(t, want.SavedAt.Equal(got.SavedAt))
	assert.Equal(t, want.Player, got.Player)
	assert.ElementsMatch(t, want.Items, got.Items)
	assert.Equal(t, want.Flags, got.Flags)
}

func TestSaveReplacesSlot(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	repo := postgres.NewSaveRepository(pc.RawPool, "savegame")
	first := testSnapshot(time.Now().UTC())
	require.NoError(t, repo.Save(ctx, first))

	second := testSnapshot(time.Now().UTC())
	second.Player.Room = "cellar"
	second.Player.Moves = 12
	second.Items = second.Items[:2]
	second.Flags.GameWon = true
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cellar", got.Player.Room)
	assert.Equal(t, 12, got.Player.Moves)
	assert.Len(t, got.Items, 2, "replaced saves drop stale item rows")
	assert.True(t, got.Flags.GameWon)
}

func TestSlotsAreIndependent(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	one := postgres.NewSaveRepository(pc.RawPool, "one")
	two := postgres.NewSaveRepository(pc.RawPool, "two")

	snap := testSnapshot(time.Now().UTC())
	require.NoError(t, one.Save(ctx, snap))

	_, err := two.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSave)
}

func TestLoadEmptySlot(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)

	repo := postgres.NewSaveRepository(pc.RawPool, "never-saved")
	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSave)
}
