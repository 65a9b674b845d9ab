package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sentinel/internal/game/world"
	"github.com/cory-johannsen/sentinel/internal/storage"
)

const testWorldYAML = `
start_room: field
rooms:
  - id: field
    name: Open Field
    description: You are standing in an open field west of a white house.
    short_description: Open field.
    exits:
      north: house
  - id: house
    name: White House
    description: You are inside the white house.
    exits:
      south: field
      down: cellar
  - id: cellar
    name: Cellar
    description: A damp stone cellar.
    dark: true
    exits:
      up: house
items:
  - id: mailbox
    name: mailbox
    description: A small wooden mailbox.
    takeable: false
    openable: true
    location:
      room: field
  - id: leaflet
    name: leaflet
    description: A crumpled leaflet.
    readable: true
    read_text: "WELCOME TO THE WHITE HOUSE!"
    location:
      container: mailbox
  - id: lamp
    name: lamp
    description: A battered brass lamp.
    synonyms: [lantern]
    light_source: true
    location:
      room: field
  - id: brass_key
    name: brass key
    description: A small tarnished key.
    synonyms: [key]
    location:
      room: house
  - id: scroll
    name: ancient scroll
    description: A scroll covered in runes.
    synonyms: [scroll]
    readable: true
    read_text: "The runes speak of treasure below."
    location:
      room: house
  - id: chest
    name: treasure chest
    description: A heavy iron-bound chest.
    synonyms: [chest]
    takeable: false
    openable: true
    reveals_contents: true
    key_required: brass key
    location:
      room: cellar
  - id: treasure
    name: golden treasure
    description: A dazzling heap of gold.
    synonyms: [treasure, gold]
    location:
      container: chest
messages:
  game:
    win_message: "Victory! {score} points in {moves} moves."
  easter_eggs:
    xyzzy: "A hollow voice says: fool."
scoring:
  - action: take
    item: leaflet
    points: 5
  - action: read
    item: scroll
    points: 10
  - action: open
    item: chest
    points: 20
  - action: take
    item: treasure
    points: 50
    wins: true
`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	def, err := world.LoadDefinitionFromBytes([]byte(testWorldYAML))
	require.NoError(t, err)
	store := storage.NewFileStore(t.TempDir(), "savegame")
	return New(def, store, zap.NewNop(), "Tester")
}

// run starts a fresh game and replays the given commands, returning the last
// outcome.
func run(t *testing.T, eng *Engine, cmds ...string) Outcome {
	t.Helper()
	out := eng.NewGame()
	for _, cmd := range cmds {
		out = eng.Process(context.Background(), cmd)
	}
	return out
}

func TestNewGameShowsStartRoom(t *testing.T) {
	eng := testEngine(t)
	out := eng.NewGame()

	assert.Equal(t, OutcomeLooked, out.Kind)
	require.NotNil(t, out.Room)
	assert.Equal(t, "field", out.Room.ID)
	assert.Equal(t, []string{"north"}, out.Room.Exits)
	assert.Equal(t, StateRunning, eng.State())
}

func TestMove(t *testing.T) {
	eng := testEngine(t)

	out := run(t, eng, "north")
	assert.Equal(t, OutcomeMoved, out.Kind)
	require.NotNil(t, out.Room)
	assert.Equal(t, "house", out.Room.ID)
	assert.Equal(t, 1, eng.world.Player.Moves)

	out = eng.Process(context.Background(), "east")
	assert.Equal(t, OutcomeBlockedNoExit, out.Kind)
	assert.Equal(t, "house", eng.world.Player.RoomID)
	assert.Equal(t, 1, eng.world.Player.Moves, "blocked moves are not counted")
}

func TestMoveSynonymsAreEquivalent(t *testing.T) {
	for _, input := range []string{"north", "n", "go north"} {
		eng := testEngine(t)
		out := run(t, eng, input)
		assert.Equal(t, OutcomeMoved, out.Kind, "input %q", input)
		assert.Equal(t, "house", eng.world.Player.RoomID)
	}
}

func TestDarkRoomBlocksEntryWithoutLight(t *testing.T) {
	eng := testEngine(t)

	out := run(t, eng, "north", "down")
	assert.Equal(t, OutcomeBlockedDark, out.Kind)
	assert.Equal(t, "house", eng.world.Player.RoomID)
}

func TestLitLampOpensDarkRoom(t *testing.T) {
	eng := testEngine(t)

	out := run(t, eng, "take lamp", "use lamp", "north", "down")
	assert.Equal(t, OutcomeMoved, out.Kind)
	require.NotNil(t, out.Room)
	assert.Equal(t, "cellar", out.Room.ID)
	assert.True(t, out.Room.Dark)
	assert.True(t, out.Room.LampLit)
}

func TestDarknessGatesActions(t *testing.T) {
	eng := testEngine(t)
	// Walk into the cellar lit, then extinguish the lamp.
	run(t, eng, "take lamp", "use lamp", "north", "down")
	out := eng.Process(context.Background(), "use lamp")
	assert.Equal(t, OutcomeLampOff, out.Kind)

	assert.Equal(t, OutcomeDarkRoom, eng.Process(context.Background(), "look").Kind)
	assert.Equal(t, OutcomeActionDark, eng.Process(context.Background(), "examine chest").Kind)
	assert.Equal(t, OutcomeActionDark, eng.Process(context.Background(), "open chest").Kind)
	assert.Equal(t, OutcomeActionDark, eng.Process(context.Background(), "take chest").Kind)
	assert.Equal(t, OutcomeActionDark, eng.Process(context.Background(), "read chest").Kind)

	// Inventory and movement out remain available in the dark.
	assert.Equal(t, OutcomeInventory, eng.Process(context.Background(), "inventory").Kind)
	assert.Equal(t, OutcomeMoved, eng.Process(context.Background(), "up").Kind)
}

func TestLampOnInDarkRoomRevealsIt(t *testing.T) {
	eng := testEngine(t)
	run(t, eng, "take lamp", "use lamp", "north", "down", "use lamp")

	out := eng.Process(context.Background(), "use lantern")
	assert.Equal(t, OutcomeLampOn, out.Kind)
	require.NotNil(t, out.Room)
	assert.Equal(t, "cellar", out.Room.ID)
}

func TestTakeAndDrop(t *testing.T) {
	eng := testEngine(t)

	out := run(t, eng, "take lamp")
	assert.Equal(t, OutcomeTaken, out.Kind)
	assert.Equal(t, "lamp", out.ItemName)
	assert.True(t, eng.world.Player.HasItem("lamp"))

	out = eng.Process(context.Background(), "drop the lamp")
	assert.Equal(t, OutcomeDropped, out.Kind)
	assert.False(t, eng.world.Player.HasItem("lamp"))
	assert.NotNil(t, eng.currentRoom().FindItem("lamp"))

	assert.NoError(t, eng.world.CheckOwnership())
}

func TestTakeFailures(t *testing.T) {
	eng := testEngine(t)
	eng.NewGame()

	out := eng.Process(context.Background(), "take mailbox")
	assert.Equal(t, OutcomeCantTake, out.Kind)

	out = eng.Process(context.Background(), "take unicorn")
	assert.Equal(t, OutcomeNotHere, out.Kind)
	assert.Equal(t, "unicorn", out.ItemName)

	out = eng.Process(context.Background(), "drop lamp")
	assert.Equal(t, OutcomeNotCarrying, out.Kind)

	// Closed containers hide their contents.
	out = eng.Process(context.Background(), "take leaflet")
	assert.Equal(t, OutcomeNotHere, out.Kind)
}

func TestTakeFromOpenContainer(t *testing.T) {
	eng := testEngine(t)
	out := run(t, eng, "open mailbox")
	assert.Equal(t, OutcomeOpened, out.Kind)
	assert.Equal(t, []string{"leaflet"}, out.Revealed)
	assert.False(t, out.Released, "the mailbox keeps its contents")

	out = eng.Process(context.Background(), "take leaflet")
	assert.Equal(t, OutcomeTaken, out.Kind)
	assert.True(t, eng.world.Player.HasItem("leaflet"))
	assert.NoError(t, eng.world.CheckOwnership())
}

func TestExamine(t *testing.T) {
	eng := testEngine(t)
	run(t, eng, "open mailbox")

	out := eng.Process(context.Background(), "examine mailbox")
	assert.Equal(t, OutcomeExamined, out.Kind)
	assert.Equal(t, "A small wooden mailbox.", out.Text)

	// Contents of open containers are visible to examine.
	out = eng.Process(context.Background(), "look at leaflet")
	assert.Equal(t, OutcomeExamined, out.Kind)

	out = eng.Process(context.Background(), "examine ghost")
	assert.Equal(t, OutcomeNothingSpecial, out.Kind)
}

func TestOpenFailures(t *testing.T) {
	eng := testEngine(t)
	eng.NewGame()

	out := eng.Process(context.Background(), "open lamp")
	assert.Equal(t, OutcomeCantOpen, out.Kind)

	out = eng.Process(context.Background(), "open ghost")
	assert.Equal(t, OutcomeNotHere, out.Kind)

	eng.Process(context.Background(), "open mailbox")
	out = eng.Process(context.Background(), "open mailbox")
	assert.Equal(t, OutcomeAlreadyOpen, out.Kind)
}

func TestLockedChestRequiresCarriedKey(t *testing.T) {
	eng := testEngine(t)
	out := run(t, eng, "take lamp", "use lamp", "north", "down", "open chest")

	assert.Equal(t, OutcomeLocked, out.Kind)
	assert.Equal(t, "treasure chest", out.ItemName)
	assert.Equal(t, "brass key", out.KeyName)
	assert.False(t, eng.currentRoom().FindItem("chest").Open)
}

func TestOpenChestSpillsContents(t *testing.T) {
	eng := testEngine(t)
	out := run(t, eng,
		"take lamp", "use lamp", "north", "take key", "down", "open chest")

	assert.Equal(t, OutcomeOpened, out.Kind)
	assert.Equal(t, []string{"golden treasure"}, out.Revealed)
	assert.True(t, out.Released)
	require.NotNil(t, out.Award)
	assert.Equal(t, 20, out.Award.Points)

	cellar := eng.currentRoom()
	assert.NotNil(t, cellar.FindItem("treasure"))
	assert.Empty(t, cellar.FindItem("chest").Contents)
	assert.NoError(t, eng.world.CheckOwnership())
}

func TestRead(t *testing.T) {
	eng := testEngine(t)
	out := run(t, eng, "north", "read scroll")

	assert.Equal(t, OutcomeRead, out.Kind)
	assert.Equal(t, "The runes speak of treasure below.", out.Text)
	require.NotNil(t, out.Award)
	assert.Equal(t, 10, out.Award.Points)

	out = eng.Process(context.Background(), "read brass key")
	assert.Equal(t, OutcomeCantRead, out.Kind)
}

func TestUse(t *testing.T) {
	eng := testEngine(t)
	eng.NewGame()

	out := eng.Process(context.Background(), "use lamp")
	assert.Equal(t, OutcomeNotCarrying, out.Kind, "use requires the item in hand")

	out = run(t, eng, "take mailbox")
	assert.Equal(t, OutcomeCantTake, out.Kind)
	out = eng.Process(context.Background(), "use mailbox")
	assert.Equal(t, OutcomeNotCarrying, out.Kind)

	eng.Process(context.Background(), "take lamp")
	out = eng.Process(context.Background(), "use lamp")
	assert.Equal(t, OutcomeLampOn, out.Kind)
	assert.Nil(t, out.Room, "lighting a bright room shows nothing new")
	out = eng.Process(context.Background(), "use lamp")
	assert.Equal(t, OutcomeLampOff, out.Kind)

	eng.Process(context.Background(), "north")
	eng.Process(context.Background(), "take key")
	out = eng.Process(context.Background(), "use key")
	assert.Equal(t, OutcomeCantUse, out.Kind)
}

func TestScoringAwardsOncePerRule(t *testing.T) {
	eng := testEngine(t)
	out := run(t, eng, "open mailbox", "take leaflet")

	require.NotNil(t, out.Award)
	assert.Equal(t, "take_leaflet", out.Award.Key)
	assert.Equal(t, 5, out.Award.Points)
	assert.Equal(t, 5, eng.world.Player.Score)

	// Dropping and retaking never re-awards.
	eng.Process(context.Background(), "drop leaflet")
	out = eng.Process(context.Background(), "take leaflet")
	assert.Equal(t, OutcomeTaken, out.Kind)
	assert.Nil(t, out.Award)
	assert.Equal(t, 5, eng.world.Player.Score)
}

func TestWinningRuleEndsSession(t *testing.T) {
	eng := testEngine(t)
	out := run(t, eng,
		"take lamp", "use lamp", "north", "take key", "down",
		"open chest", "take treasure")

	assert.Equal(t, OutcomeTaken, out.Kind)
	require.NotNil(t, out.Award)
	assert.Equal(t, 50, out.Award.Points)
	assert.True(t, out.Won)
	assert.Equal(t, "Victory! 70 points in 2 moves.", out.WinMessage)
	assert.Equal(t, StateWon, eng.State())

	out = eng.Process(context.Background(), "look")
	assert.Equal(t, OutcomeSessionOver, out.Kind)
}

func TestScoreHealthStatus(t *testing.T) {
	eng := testEngine(t)
	run(t, eng, "open mailbox", "take leaflet", "north")

	out := eng.Process(context.Background(), "score")
	assert.Equal(t, OutcomeScore, out.Kind)
	assert.Equal(t, 5, out.Score)
	assert.Equal(t, 85, out.MaxScore)
	assert.Equal(t, 1, out.Moves)

	out = eng.Process(context.Background(), "health")
	assert.Equal(t, OutcomeHealth, out.Kind)
	assert.Equal(t, world.MaxHealth, out.Health)

	out = eng.Process(context.Background(), "status")
	assert.Equal(t, OutcomeStatus, out.Kind)
	require.NotNil(t, out.Player)
	assert.Equal(t, "Tester", out.Player.Name)
	assert.Equal(t, "house", out.Player.Room)
	assert.Equal(t, 1, out.Player.Carrying)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	eng := testEngine(t)
	run(t, eng, "take lamp", "use lamp", "open mailbox", "take leaflet", "north")

	out := eng.Process(context.Background(), "save")
	assert.Equal(t, OutcomeSaved, out.Kind)

	// Mutate after saving, then load discards the mutations.
	run2 := []string{"drop leaflet", "south"}
	for _, cmd := range run2 {
		eng.Process(context.Background(), cmd)
	}
	out = eng.Process(context.Background(), "load")
	assert.Equal(t, OutcomeLoaded, out.Kind)
	require.NotNil(t, out.Room)
	assert.Equal(t, "house", out.Room.ID)

	assert.Equal(t, "house", eng.world.Player.RoomID)
	assert.True(t, eng.world.Player.HasItem("leaflet"))
	assert.True(t, eng.state.LampLit)
	assert.Equal(t, 5, eng.world.Player.Score)
	assert.NoError(t, eng.world.CheckOwnership())

	// The consumed scoring key survives the round trip.
	eng.Process(context.Background(), "drop leaflet")
	got := eng.Process(context.Background(), "take leaflet")
	assert.Nil(t, got.Award)
}

func TestLoadWithoutSaveFails(t *testing.T) {
	eng := testEngine(t)
	eng.NewGame()
	before := eng.world

	out := eng.Process(context.Background(), "load")
	assert.Equal(t, OutcomeLoadFailed, out.Kind)
	assert.ErrorIs(t, out.Err, storage.ErrNoSave)
	assert.Same(t, before, eng.world, "a failed load leaves the session untouched")
}

func TestResume(t *testing.T) {
	def, err := world.LoadDefinitionFromBytes([]byte(testWorldYAML))
	require.NoError(t, err)
	store := storage.NewFileStore(t.TempDir(), "savegame")

	first := New(def, store, zap.NewNop(), "Tester")
	run(t, first, "take lamp", "north")
	require.Equal(t, OutcomeSaved, first.Process(context.Background(), "save").Kind)

	second := New(def, store, zap.NewNop(), "Tester")
	out, err := second.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeLoaded, out.Kind)
	assert.Equal(t, StateRunning, second.State())
	assert.Equal(t, "house", second.world.Player.RoomID)
	assert.True(t, second.world.Player.HasItem("lamp"))
}

func TestResumeWithoutSave(t *testing.T) {
	eng := testEngine(t)
	_, err := eng.Resume(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSave)
	assert.Equal(t, StateNotStarted, eng.State())
}

func TestEasterEggs(t *testing.T) {
	eng := testEngine(t)
	eng.NewGame()

	out := eng.Process(context.Background(), "  XYZZY  ")
	assert.Equal(t, OutcomeEasterEgg, out.Kind)
	assert.Equal(t, "A hollow voice says: fool.", out.Text)
}

func TestUnknownEmptyHelpQuit(t *testing.T) {
	eng := testEngine(t)
	eng.NewGame()

	out := eng.Process(context.Background(), "frobnicate the lamp")
	assert.Equal(t, OutcomeUnknown, out.Kind)
	assert.Equal(t, "frobnicate the lamp", out.Raw)

	assert.Equal(t, OutcomeNone, eng.Process(context.Background(), "   ").Kind)
	assert.Equal(t, OutcomeHelp, eng.Process(context.Background(), "help").Kind)

	out = eng.Process(context.Background(), "quit")
	assert.Equal(t, OutcomeQuit, out.Kind)
	assert.Equal(t, StateQuit, eng.State())
	assert.Equal(t, OutcomeSessionOver, eng.Process(context.Background(), "look").Kind)
}

type failingStore struct{ err error }

func (f *failingStore) Save(context.Context, *storage.Snapshot) error { return f.err }
func (f *failingStore) Load(context.Context) (*storage.Snapshot, error) {
	return nil, f.err
}

func TestSaveFailureIsReported(t *testing.T) {
	def, err := world.LoadDefinitionFromBytes([]byte(testWorldYAML))
	require.NoError(t, err)
	boom := errors.New("disk full")
	eng := New(def, &failingStore{err: boom}, zap.NewNop(), "Tester")
	eng.NewGame()

	out := eng.Process(context.Background(), "save")
	assert.Equal(t, OutcomeSaveFailed, out.Kind)
	assert.ErrorIs(t, out.Err, boom)
	assert.Equal(t, StateRunning, eng.State())
}

// TestOwnershipInvariantUnderRandomPlay drives the engine with arbitrary
// command sequences and checks that every item still has exactly one owner
// after each step.
func TestOwnershipInvariantUnderRandomPlay(t *testing.T) {
	def, err := world.LoadDefinitionFromBytes([]byte(testWorldYAML))
	require.NoError(t, err)

	verbs := []string{"take", "drop", "open", "read", "use", "examine"}
	objects := []string{
		"lamp", "mailbox", "leaflet", "brass key", "scroll", "chest", "treasure", "ghost",
	}
	moves := []string{"north", "south", "up", "down", "east"}

	rapid.Check(t, func(rt *rapid.T) {
		eng := New(def, storage.NewFileStore(t.TempDir(), "savegame"), zap.NewNop(), "Tester")
		eng.NewGame()

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps && eng.Running(); i++ {
			var input string
			if rapid.Bool().Draw(rt, "move") {
				input = rapid.SampledFrom(moves).Draw(rt, "dir")
			} else {
				verb := rapid.SampledFrom(verbs).Draw(rt, "verb")
				obj := rapid.SampledFrom(objects).Draw(rt, "obj")
				input = verb + " " + obj
			}
			eng.Process(context.Background(), input)
			if err := eng.world.CheckOwnership(); err != nil {
				rt.Fatalf("after %q: %v", input, err)
			}
		}
	})
}

// TestScoreNeverExceedsMaximum replays random playthroughs and checks the
// score is monotonic and bounded by the definition's maximum.
func TestScoreNeverExceedsMaximum(t *testing.T) {
	def, err := world.LoadDefinitionFromBytes([]byte(testWorldYAML))
	require.NoError(t, err)
	max := def.MaxScore()

	script := []string{
		"take lamp", "use lamp", "open mailbox", "take leaflet", "north",
		"take key", "read scroll", "down", "open chest", "take treasure",
	}

	rapid.Check(t, func(rt *rapid.T) {
		eng := New(def, storage.NewFileStore(t.TempDir(), "savegame"), zap.NewNop(), "Tester")
		eng.NewGame()

		prev := 0
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps && eng.Running(); i++ {
			idx := rapid.IntRange(0, len(script)-1).Draw(rt, "idx")
			eng.Process(context.Background(), script[idx])
			score := eng.world.Player.Score
			if score < prev {
				rt.Fatalf("score decreased from %d to %d", prev, score)
			}
			if score > max {
				rt.Fatalf("score %d exceeds maximum %d", score, max)
			}
			prev = score
		}
	})
}
