package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sentinel/internal/game/command"
	"github.com/cory-johannsen/sentinel/internal/game/world"
	"github.com/cory-johannsen/sentinel/internal/storage"
)

// ruleKey indexes scoring rules by action and target item ID.
type ruleKey struct {
	action string
	itemID string
}

// Engine runs one game session. It owns the mutable world and game state;
// callers interact only through NewGame, Resume, and Process. It is not safe
// for concurrent use.
type Engine struct {
	def        *world.Definition
	store      storage.SaveStore
	logger     *zap.Logger
	playerName string

	world     *world.World
	state     *GameState
	session   SessionState
	sessionID string

	rules map[ruleKey]world.ScoreRule
}

// New creates an engine for the given world definition. The session starts
// in StateNotStarted; call NewGame or Resume before Process.
//
// Precondition: def must be validated, store and logger must be non-nil.
func New(def *world.Definition, store storage.SaveStore, logger *zap.Logger, playerName string) *Engine {
	rules := make(map[ruleKey]world.ScoreRule, len(def.Scoring))
	for _, r := range def.Scoring {
		rules[ruleKey{action: r.Action, itemID: r.Item}] = r
	}
	return &Engine{
		def:        def,
		store:      store,
		logger:     logger,
		playerName: playerName,
		session:    StateNotStarted,
		rules:      rules,
	}
}

// State returns the current session state.
func (e *Engine) State() SessionState {
	return e.session
}

// Running reports whether the session accepts commands.
func (e *Engine) Running() bool {
	return e.session == StateRunning
}

// NewGame builds a fresh world from the definition and starts the session.
//
// Postcondition: the session is StateRunning and the returned outcome is the
// initial room view.
func (e *Engine) NewGame() Outcome {
	e.world = e.def.Build(e.playerName)
	e.state = newGameState()
	e.sessionID = uuid.NewString()
	e.session = StateRunning
	e.logger.Info("session started",
		zap.String("session_id", e.sessionID),
		zap.String("player", e.playerName),
		zap.String("start_room", e.world.Player.RoomID))
	return e.look()
}

// Resume restores the session from the save store. On any error the engine
// is left untouched; callers typically fall back to NewGame when the error
// is storage.ErrNoSave.
//
// Postcondition: on success the session is StateRunning (or StateWon when
// the save recorded a finished game) and the outcome is OutcomeLoaded.
func (e *Engine) Resume(ctx context.Context) (Outcome, error) {
	snap, err := e.store.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	w, err := storage.Restore(e.def, snap)
	if err != nil {
		return Outcome{}, fmt.Errorf("restoring snapshot: %w", err)
	}
	e.adopt(w, snap)
	e.logger.Info("session resumed",
		zap.String("session_id", e.sessionID),
		zap.String("room", e.world.Player.RoomID),
		zap.Int("score", e.world.Player.Score))
	return e.loadedOutcome(), nil
}

// Process parses one line of input and applies it to the session.
//
// Precondition: the session must have been started with NewGame or Resume.
// Postcondition: exactly one outcome is returned for every input, and the
// world's ownership invariant holds afterwards.
func (e *Engine) Process(ctx context.Context, text string) Outcome {
	if e.session != StateRunning {
		return Outcome{Kind: OutcomeSessionOver}
	}

	folded := strings.ToLower(strings.TrimSpace(text))
	if reply, ok := e.def.Messages.Get("easter_eggs", folded); ok {
		return Outcome{Kind: OutcomeEasterEgg, Text: reply}
	}

	parsed := command.Parse(text)
	e.logger.Debug("command",
		zap.String("session_id", e.sessionID),
		zap.String("kind", parsed.Kind.String()),
		zap.String("arg", parsed.Arg))

	switch parsed.Kind {
	case command.None:
		return Outcome{Kind: OutcomeNone}
	case command.Move:
		return e.move(world.Direction(parsed.Arg))
	case command.Look:
		return e.look()
	case command.Examine:
		return e.examine(parsed.Arg)
	case command.Inventory:
		return e.inventory()
	case command.Take:
		return e.take(parsed.Arg)
	case command.Drop:
		return e.drop(parsed.Arg)
	case command.Use:
		return e.use(parsed.Arg)
	case command.Open:
		return e.open(parsed.Arg)
	case command.Read:
		return e.read(parsed.Arg)
	case command.Help:
		return Outcome{Kind: OutcomeHelp}
	case command.Quit:
		e.session = StateQuit
		e.logger.Info("session quit", zap.String("session_id", e.sessionID))
		return Outcome{Kind: OutcomeQuit}
	case command.Save:
		return e.save(ctx)
	case command.Load:
		return e.load(ctx)
	case command.Score:
		return Outcome{
			Kind:     OutcomeScore,
			Score:    e.world.Player.Score,
			MaxScore: e.def.MaxScore(),
			Moves:    e.world.Player.Moves,
		}
	case command.Health:
		return Outcome{Kind: OutcomeHealth, Health: e.world.Player.Health}
	case command.Status:
		return Outcome{Kind: OutcomeStatus, Player: e.playerView()}
	case command.Unknown:
		return Outcome{Kind: OutcomeUnknown, Raw: parsed.Arg}
	default:
		// The Kind enum is closed; Parse never emits anything else.
		return Outcome{Kind: OutcomeUnknown, Raw: parsed.Arg}
	}
}

func (e *Engine) move(dir world.Direction) Outcome {
	room := e.currentRoom()
	destID, ok := room.Exit(dir)
	if !ok {
		return Outcome{Kind: OutcomeBlockedNoExit}
	}
	dest, ok := e.world.Room(destID)
	if !ok {
		// Validated definitions cannot reach this.
		return Outcome{Kind: OutcomeBlockedNoExit}
	}
	if dest.Dark && !e.state.LampLit {
		return Outcome{Kind: OutcomeBlockedDark}
	}
	e.world.Player.MoveTo(dest.ID)
	return Outcome{Kind: OutcomeMoved, Room: e.roomView(dest)}
}

func (e *Engine) look() Outcome {
	room := e.currentRoom()
	if e.inDark() {
		return Outcome{Kind: OutcomeDarkRoom}
	}
	return Outcome{Kind: OutcomeLooked, Room: e.roomView(room)}
}

func (e *Engine) examine(name string) Outcome {
	if e.inDark() {
		return Outcome{Kind: OutcomeActionDark}
	}
	name = command.NormalizeObjectName(name)
	if item := e.findVisible(name); item != nil {
		if item.Description == "" {
			return Outcome{Kind: OutcomeNothingSpecial, ItemName: item.Name}
		}
		return Outcome{Kind: OutcomeExamined, ItemName: item.Name, Text: item.Description}
	}
	return Outcome{Kind: OutcomeNothingSpecial, ItemName: name}
}

func (e *Engine) inventory() Outcome {
	names := make([]string, 0, len(e.world.Player.Inventory))
	for _, it := range e.world.Player.Inventory {
		names = append(names, it.Name)
	}
	return Outcome{Kind: OutcomeInventory, Items: names}
}

func (e *Engine) take(name string) Outcome {
	if e.inDark() {
		return Outcome{Kind: OutcomeActionDark}
	}
	name = command.NormalizeObjectName(name)
	room := e.currentRoom()

	if item := room.FindItem(name); item != nil {
		if !item.Takeable {
			return Outcome{Kind: OutcomeCantTake, ItemName: item.Name}
		}
		room.RemoveItem(name)
		e.world.Player.AddItem(item)
		return e.scored("take", item, Outcome{Kind: OutcomeTaken, ItemName: item.Name})
	}

	// Open containers in the room expose their contents to take.
	for _, container := range room.Items {
		if !container.Open {
			continue
		}
		item := container.FindContent(name)
		if item == nil {
			continue
		}
		if !item.Takeable {
			return Outcome{Kind: OutcomeCantTake, ItemName: item.Name}
		}
		container.RemoveContent(name)
		e.world.Player.AddItem(item)
		return e.scored("take", item, Outcome{Kind: OutcomeTaken, ItemName: item.Name})
	}

	return Outcome{Kind: OutcomeNotHere, ItemName: name}
}

func (e *Engine) drop(name string) Outcome {
	name = command.NormalizeObjectName(name)
	item := e.world.Player.RemoveItem(name)
	if item == nil {
		return Outcome{Kind: OutcomeNotCarrying, ItemName: name}
	}
	e.currentRoom().AddItem(item)
	return Outcome{Kind: OutcomeDropped, ItemName: item.Name}
}

func (e *Engine) use(name string) Outcome {
	name = command.NormalizeObjectName(name)
	item := e.world.Player.FindItem(name)
	if item == nil {
		return Outcome{Kind: OutcomeNotCarrying, ItemName: name}
	}

	if item.LightSource {
		if e.state.LampLit {
			e.state.LampLit = false
			return Outcome{Kind: OutcomeLampOff, ItemName: item.Name}
		}
		e.state.LampLit = true
		out := Outcome{Kind: OutcomeLampOn, ItemName: item.Name}
		room := e.currentRoom()
		if room.Dark {
			// Lighting a dark room reveals it.
			out.Room = e.roomView(room)
		}
		return e.scored("use", item, out)
	}

	if !item.Useable {
		return Outcome{Kind: OutcomeCantUse, ItemName: item.Name}
	}
	return e.scored("use", item, Outcome{Kind: OutcomeUsed, ItemName: item.Name})
}

func (e *Engine) open(name string) Outcome {
	if e.inDark() {
		return Outcome{Kind: OutcomeActionDark}
	}
	name = command.NormalizeObjectName(name)
	item := e.findVisible(name)
	if item == nil {
		return Outcome{Kind: OutcomeNotHere, ItemName: name}
	}
	if !item.Openable {
		return Outcome{Kind: OutcomeCantOpen, ItemName: item.Name}
	}
	if item.Open {
		return Outcome{Kind: OutcomeAlreadyOpen, ItemName: item.Name}
	}
	if item.KeyRequired != "" && !e.world.Player.HasItem(item.KeyRequired) {
		return Outcome{Kind: OutcomeLocked, ItemName: item.Name, KeyName: item.KeyRequired}
	}

	item.Open = true
	out := Outcome{Kind: OutcomeOpened, ItemName: item.Name}
	for _, content := range item.Contents {
		out.Revealed = append(out.Revealed, content.Name)
	}
	if item.RevealsContents && len(item.Contents) > 0 {
		// Contents spill into the current room, preserving order.
		room := e.currentRoom()
		for _, content := range item.Contents {
			room.AddItem(content)
		}
		item.Contents = nil
		out.Released = true
	}
	return e.scored("open", item, out)
}

func (e *Engine) read(name string) Outcome {
	if e.inDark() {
		return Outcome{Kind: OutcomeActionDark}
	}
	name = command.NormalizeObjectName(name)
	item := e.findVisible(name)
	if item == nil {
		return Outcome{Kind: OutcomeNotHere, ItemName: name}
	}
	if !item.Readable {
		return Outcome{Kind: OutcomeCantRead, ItemName: item.Name}
	}
	return e.scored("read", item, Outcome{Kind: OutcomeRead, ItemName: item.Name, Text: item.ReadText})
}

func (e *Engine) save(ctx context.Context) Outcome {
	snap, err := storage.Capture(e.world, e.state.flags(), e.sessionID, time.Now().UTC())
	if err != nil {
		e.logger.Error("capture failed", zap.Error(err))
		return Outcome{Kind: OutcomeSaveFailed, Err: err}
	}
	if err := e.store.Save(ctx, snap); err != nil {
		e.logger.Error("save failed", zap.Error(err))
		return Outcome{Kind: OutcomeSaveFailed, Err: err}
	}
	e.logger.Info("game saved",
		zap.String("session_id", e.sessionID),
		zap.String("room", e.world.Player.RoomID))
	return Outcome{Kind: OutcomeSaved}
}

func (e *Engine) load(ctx context.Context) Outcome {
	snap, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("load failed", zap.Error(err))
		return Outcome{Kind: OutcomeLoadFailed, Err: err}
	}
	w, err := storage.Restore(e.def, snap)
	if err != nil {
		// The running session is untouched on a failed restore.
		e.logger.Error("restore failed", zap.Error(err))
		return Outcome{Kind: OutcomeLoadFailed, Err: err}
	}
	e.adopt(w, snap)
	e.logger.Info("game loaded",
		zap.String("session_id", e.sessionID),
		zap.String("room", e.world.Player.RoomID))
	return e.loadedOutcome()
}

// adopt swaps in a restored world and its flags. Called only after Restore
// succeeded, so the session is never left half-replaced.
func (e *Engine) adopt(w *world.World, snap *storage.Snapshot) {
	e.world = w
	e.state = stateFromFlags(snap.Flags)
	e.sessionID = snap.SessionID
	if e.sessionID == "" {
		e.sessionID = uuid.NewString()
	}
	if e.state.GameWon {
		e.session = StateWon
	} else {
		e.session = StateRunning
	}
}

func (e *Engine) loadedOutcome() Outcome {
	out := Outcome{Kind: OutcomeLoaded}
	if !e.inDark() {
		out.Room = e.roomView(e.currentRoom())
	}
	return out
}

// scored consults the scoring rules after a successful action. Each rule
// awards at most once per session; the winning rule additionally ends the
// session.
func (e *Engine) scored(action string, item *world.Item, out Outcome) Outcome {
	rule, ok := e.rules[ruleKey{action: action, itemID: item.ID}]
	if !ok {
		return out
	}
	key := scoreKey(action, item.Name)
	if _, done := e.state.Scored[key]; done {
		return out
	}
	e.state.Scored[key] = struct{}{}
	e.world.Player.AddScore(rule.Points)
	out.Award = &Award{Key: key, Points: rule.Points, Total: e.world.Player.Score}
	e.logger.Info("points awarded",
		zap.String("session_id", e.sessionID),
		zap.String("key", key),
		zap.Int("points", rule.Points),
		zap.Int("total", e.world.Player.Score))

	if rule.Wins && !e.state.GameWon {
		e.state.GameWon = true
		e.session = StateWon
		out.Won = true
		out.WinMessage = e.winMessage()
		e.logger.Info("game won",
			zap.String("session_id", e.sessionID),
			zap.Int("score", e.world.Player.Score),
			zap.Int("moves", e.world.Player.Moves))
	}
	return out
}

// scoreKey derives the persistent scoring key for an action on an item,
// e.g. "take_golden_treasure".
func scoreKey(action, itemName string) string {
	name := strings.ReplaceAll(strings.ToLower(itemName), " ", "_")
	return action + "_" + name
}

// winMessage substitutes the final score and move count into the win text
// from the world definition.
func (e *Engine) winMessage() string {
	msg, ok := e.def.Messages.Get("game", "win_message")
	if !ok {
		msg = "You have won! Final score: {score} points in {moves} moves."
	}
	return strings.NewReplacer(
		"{score}", strconv.Itoa(e.world.Player.Score),
		"{moves}", strconv.Itoa(e.world.Player.Moves),
	).Replace(msg)
}

// inDark reports whether the player currently cannot see.
func (e *Engine) inDark() bool {
	return e.currentRoom().Dark && !e.state.LampLit
}

// findVisible resolves an object name against the inventory, the current
// room, and open containers in the room, in that order.
func (e *Engine) findVisible(name string) *world.Item {
	if item := e.world.Player.FindItem(name); item != nil {
		return item
	}
	room := e.currentRoom()
	if item := room.FindItem(name); item != nil {
		return item
	}
	for _, container := range room.Items {
		if !container.Open {
			continue
		}
		if item := container.FindContent(name); item != nil {
			return item
		}
	}
	return nil
}

// currentRoom panics on a missing player room. The definition validator and
// the snapshot restorer both guarantee the room exists, so this indicates
// engine-internal corruption, not bad input.
func (e *Engine) currentRoom() *world.Room {
	room, err := e.world.CurrentRoom()
	if err != nil {
		panic(err)
	}
	return room
}

func (e *Engine) roomView(room *world.Room) *RoomView {
	view := &RoomView{
		ID:               room.ID,
		Name:             room.Name,
		Description:      room.Description,
		ShortDescription: room.ShortDescription,
		Dark:             room.Dark,
		LampLit:          e.state.LampLit,
	}
	for _, item := range room.Items {
		iv := ItemView{
			Name:        item.Name,
			Open:        item.Open,
			LightSource: item.LightSource,
		}
		if item.Open {
			for _, content := range item.Contents {
				iv.Contents = append(iv.Contents, content.Name)
			}
		}
		view.Items = append(view.Items, iv)
	}
	for _, dir := range room.ExitDirections() {
		view.Exits = append(view.Exits, string(dir))
	}
	return view
}

func (e *Engine) playerView() *PlayerView {
	p := e.world.Player
	return &PlayerView{
		Name:     p.Name,
		Room:     p.RoomID,
		Health:   p.Health,
		Score:    p.Score,
		Moves:    p.Moves,
		Carrying: len(p.Inventory),
	}
}
