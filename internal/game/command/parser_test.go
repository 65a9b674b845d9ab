package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Movement(t *testing.T) {
	tests := []struct {
		input string
		dir   string
	}{
		{"north", "north"},
		{"n", "north"},
		{"go north", "north"},
		{"GO NORTH", "north"},
		{"  south  ", "south"},
		{"s", "south"},
		{"e", "east"},
		{"w", "west"},
		{"up", "up"},
		{"u", "up"},
		{"go d", "down"},
	}
	for _, tt := range tests {
		got := Parse(tt.input)
		assert.Equal(t, Move, got.Kind, "input %q", tt.input)
		assert.Equal(t, tt.dir, got.Arg, "input %q", tt.input)
	}
}

func TestParse_Canonicalization(t *testing.T) {
	// "north", "n", and "go north" must parse to the identical pair.
	want := Parse("north")
	assert.Equal(t, want, Parse("n"))
	assert.Equal(t, want, Parse("go north"))
	assert.Equal(t, want, Parse("  North "))
}

func TestParse_ObjectCommands(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		arg   string
	}{
		{"take lamp", Take, "lamp"},
		{"get brass key", Take, "brass key"},
		{"pick up leaflet", Take, "leaflet"},
		{"drop lamp", Drop, "lamp"},
		{"put down the lamp", Drop, "the lamp"},
		{"examine mailbox", Examine, "mailbox"},
		{"x mailbox", Examine, "mailbox"},
		{"look at treasure chest", Examine, "treasure chest"},
		{"inspect scroll", Examine, "scroll"},
		{"use lamp", Use, "lamp"},
		{"open treasure chest", Open, "treasure chest"},
		{"read ancient scroll", Read, "ancient scroll"},
	}
	for _, tt := range tests {
		got := Parse(tt.input)
		assert.Equal(t, tt.kind, got.Kind, "input %q", tt.input)
		assert.Equal(t, tt.arg, got.Arg, "input %q", tt.input)
	}
}

func TestParse_BareCommands(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"look", Look},
		{"l", Look},
		{"look around", Look},
		{"examine room", Look},
		{"inventory", Inventory},
		{"i", Inventory},
		{"inv", Inventory},
		{"help", Help},
		{"?", Help},
		{"commands", Help},
		{"quit", Quit},
		{"q", Quit},
		{"exit", Quit},
		{"bye", Quit},
		{"save", Save},
		{"save game", Save},
		{"load", Load},
		{"load game", Load},
		{"restore", Load},
		{"score", Score},
		{"health", Health},
		{"hp", Health},
		{"status", Status},
		{"stat", Status},
	}
	for _, tt := range tests {
		got := Parse(tt.input)
		assert.Equal(t, tt.kind, got.Kind, "input %q", tt.input)
		assert.Empty(t, got.Arg, "input %q", tt.input)
	}
}

func TestParse_PriorityOrder(t *testing.T) {
	// "examine room" is claimed by Look before Examine can capture "room".
	assert.Equal(t, Parsed{Kind: Look}, Parse("examine room"))
	// "look at X" is claimed by Examine before Look's bare form fails it.
	assert.Equal(t, Parsed{Kind: Examine, Arg: "mailbox"}, Parse("look at mailbox"))
	// Movement always wins over the grammar.
	assert.Equal(t, Parsed{Kind: Move, Arg: "up"}, Parse("u"))
}

func TestParse_Empty(t *testing.T) {
	assert.Equal(t, Parsed{Kind: None}, Parse(""))
	assert.Equal(t, Parsed{Kind: None}, Parse("   \t  "))
}

func TestParse_Unknown(t *testing.T) {
	got := Parse("frobnicate the mailbox")
	assert.Equal(t, Unknown, got.Kind)
	assert.Equal(t, "frobnicate the mailbox", got.Arg)
}

func TestParse_ArgumentNotTokenized(t *testing.T) {
	got := Parse("take the rusty brass key")
	assert.Equal(t, Take, got.Kind)
	assert.Equal(t, "the rusty brass key", got.Arg)
}

func TestNormalizeObjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the brass key", "brass key"},
		{"The Brass Key", "brass key"},
		{"a lamp", "lamp"},
		{"an apple", "apple"},
		{"  mailbox  ", "mailbox"},
		{"lamp", "lamp"},
		// only one leading article is stripped
		{"the a lamp", "a lamp"},
		// articles are not stripped mid-name
		{"man the lamp", "man the lamp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeObjectName(tt.in), "input %q", tt.in)
	}
}

// Property: parsing is insensitive to case and surrounding whitespace.
func TestPropertyParseCaseAndSpaceInsensitive(t *testing.T) {
	inputs := []string{
		"north", "go west", "look", "take lamp", "open mailbox",
		"read scroll", "inventory", "quit", "save game",
	}
	rapid.Check(t, func(t *rapid.T) {
		base := inputs[rapid.IntRange(0, len(inputs)-1).Draw(t, "input_idx")]
		pad := strings.Repeat(" ", rapid.IntRange(0, 4).Draw(t, "pad"))
		variant := pad + mixCase(t, base) + pad
		assert.Equal(t, Parse(base), Parse(variant), "variant %q", variant)
	})
}

func mixCase(t *rapid.T, s string) string {
	var b strings.Builder
	for _, r := range s {
		if rapid.Bool().Draw(t, "upper") {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

// Property: every parse yields a defined kind, and Unknown always carries
// the folded input.
func TestPropertyParseTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.StringMatching(`[ a-z?]{0,30}`).Draw(t, "input")
		got := Parse(input)
		assert.NotEqual(t, "invalid", got.Kind.String())
		if got.Kind == Unknown {
			assert.Equal(t, strings.ToLower(strings.TrimSpace(input)), got.Arg)
		}
	})
}
