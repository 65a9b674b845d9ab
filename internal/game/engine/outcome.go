// Package engine orchestrates command dispatch for one game session: it
// validates preconditions against the world model, applies state transitions,
// tracks scoring and the win condition, and reports structured outcomes for
// an external renderer.
package engine

// OutcomeKind tags the structured result of processing one command.
type OutcomeKind int

// Outcome kinds. Every failure path has a kind of its own; nothing is
// silently swallowed.
const (
	OutcomeNone OutcomeKind = iota
	OutcomeMoved
	OutcomeBlockedNoExit
	OutcomeBlockedDark
	OutcomeLooked
	OutcomeDarkRoom
	OutcomeExamined
	OutcomeNothingSpecial
	OutcomeActionDark
	OutcomeInventory
	OutcomeTaken
	OutcomeCantTake
	OutcomeNotHere
	OutcomeDropped
	OutcomeNotCarrying
	OutcomeLampOn
	OutcomeLampOff
	OutcomeUsed
	OutcomeCantUse
	OutcomeOpened
	OutcomeAlreadyOpen
	OutcomeLocked
	OutcomeCantOpen
	OutcomeRead
	OutcomeCantRead
	OutcomeHelp
	OutcomeScore
	OutcomeHealth
	OutcomeStatus
	OutcomeSaved
	OutcomeSaveFailed
	OutcomeLoaded
	OutcomeLoadFailed
	OutcomeQuit
	OutcomeUnknown
	OutcomeEasterEgg
	OutcomeSessionOver
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeNone:           "none",
	OutcomeMoved:          "moved",
	OutcomeBlockedNoExit:  "blocked_no_exit",
	OutcomeBlockedDark:    "blocked_dark",
	OutcomeLooked:         "looked",
	OutcomeDarkRoom:       "dark_room",
	OutcomeExamined:       "examined",
	OutcomeNothingSpecial: "nothing_special",
	OutcomeActionDark:     "action_dark",
	OutcomeInventory:      "inventory",
	OutcomeTaken:          "taken",
	OutcomeCantTake:       "cant_take",
	OutcomeNotHere:        "not_here",
	OutcomeDropped:        "dropped",
	OutcomeNotCarrying:    "not_carrying",
	OutcomeLampOn:         "lamp_on",
	OutcomeLampOff:        "lamp_off",
	OutcomeUsed:           "used",
	OutcomeCantUse:        "cant_use",
	OutcomeOpened:         "opened",
	OutcomeAlreadyOpen:    "already_open",
	OutcomeLocked:         "locked",
	OutcomeCantOpen:       "cant_open",
	OutcomeRead:           "read",
	OutcomeCantRead:       "cant_read",
	OutcomeHelp:           "help",
	OutcomeScore:          "score",
	OutcomeHealth:         "health",
	OutcomeStatus:         "status",
	OutcomeSaved:          "saved",
	OutcomeSaveFailed:     "save_failed",
	OutcomeLoaded:         "loaded",
	OutcomeLoadFailed:     "load_failed",
	OutcomeQuit:           "quit",
	OutcomeUnknown:        "unknown",
	OutcomeEasterEgg:      "easter_egg",
	OutcomeSessionOver:    "session_over",
}

// String returns the snake_case name of the outcome kind.
func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return "invalid"
}

// ItemView is a read-only view of an item for rendering.
type ItemView struct {
	// Name is the item's canonical display name.
	Name string
	// Open reports an openable item's current state.
	Open bool
	// Contents lists the names of visible contained items (open containers).
	Contents []string
	// LightSource marks the session's light-giving item.
	LightSource bool
}

// RoomView is a read-only snapshot of a visible room for rendering.
type RoomView struct {
	ID               string
	Name             string
	Description      string
	ShortDescription string
	Items            []ItemView
	// Exits lists exit directions in the standard order.
	Exits []string
	// Dark and LampLit describe the lighting that made this view possible.
	Dark    bool
	LampLit bool
}

// PlayerView is a read-only snapshot of the player for rendering.
type PlayerView struct {
	Name     string
	Room     string
	Health   int
	Score    int
	Moves    int
	Carrying int
}

// Award reports points granted by a scored action.
type Award struct {
	// Key is the scoring key that was consumed.
	Key string
	// Points is the value of this rule.
	Points int
	// Total is the player's score after the award.
	Total int
}

// Outcome is the structured result of processing one command. The renderer
// turns it into text; the engine never formats decorative output. The one
// exception is WinMessage, which carries the win text with score and moves
// already substituted.
type Outcome struct {
	Kind OutcomeKind

	// Room is set on Moved, Looked, Loaded (when visible), and LampOn
	// inside a dark room.
	Room *RoomView
	// ItemName is the canonical name of the item the command acted on.
	ItemName string
	// KeyName names the required key on Locked outcomes.
	KeyName string
	// Revealed lists the names of contents reported by Opened.
	Revealed []string
	// Released reports that revealed contents moved into the current room.
	Released bool
	// Text carries read payloads, examine descriptions, and easter eggs.
	Text string
	// Items lists inventory names on Inventory outcomes.
	Items []string
	// Player is set on Status outcomes.
	Player *PlayerView
	// Score, MaxScore, Moves are set on Score outcomes.
	Score    int
	MaxScore int
	Moves    int
	// Health is set on Health outcomes.
	Health int
	// Raw carries the unrecognized input on Unknown outcomes.
	Raw string
	// Err carries the cause of SaveFailed and LoadFailed outcomes.
	Err error

	// Award is attached when the command scored points.
	Award *Award
	// Won reports that this command triggered the win transition.
	Won bool
	// WinMessage is the formatted win text, set only when Won is true.
	WinMessage string
}
