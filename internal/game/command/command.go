// Package command converts raw player input into canonical commands using an
// ordered pattern grammar.
package command

// Kind is the closed set of canonical commands. The engine dispatches on it
// with an exhaustive switch.
type Kind int

// Canonical commands in dispatch order.
const (
	// None is returned for empty input; it is not an error.
	None Kind = iota
	Move
	Look
	Examine
	Inventory
	Take
	Drop
	Use
	Open
	Read
	Help
	Quit
	Save
	Load
	Score
	Health
	Status
	// Unknown carries the raw input of an unrecognized command.
	Unknown
)

var kindNames = map[Kind]string{
	None:      "none",
	Move:      "move",
	Look:      "look",
	Examine:   "examine",
	Inventory: "inventory",
	Take:      "take",
	Drop:      "drop",
	Use:       "use",
	Open:      "open",
	Read:      "read",
	Help:      "help",
	Quit:      "quit",
	Save:      "save",
	Load:      "load",
	Score:     "score",
	Health:    "health",
	Status:    "status",
	Unknown:   "unknown",
}

// String returns the lowercase name of the command kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Parsed is the canonical (command, argument) pair produced by Parse.
type Parsed struct {
	// Kind is the canonical command.
	Kind Kind
	// Arg is the canonical direction for Move, the verbatim (trimmed)
	// object text for object verbs, the raw input for Unknown, and empty
	// otherwise.
	Arg string
}
