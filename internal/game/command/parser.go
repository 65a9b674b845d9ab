package command

import (
	"regexp"
	"strings"
)

// directions maps every accepted direction token, including single-letter
// abbreviations, to its canonical form.
var directions = map[string]string{
	"north": "north", "n": "north",
	"south": "south", "s": "south",
	"east": "east", "e": "east",
	"west": "west", "w": "west",
	"up": "up", "u": "up",
	"down": "down", "d": "down",
}

// movePattern matches a direction token with an optional leading "go".
var movePattern = regexp.MustCompile(`^(?:go\s+)?(north|south|east|west|up|down|n|s|e|w|u|d)$`)

// rule binds a command kind to its accepted patterns. A pattern with a
// capture group yields the captured text as the argument.
type rule struct {
	kind     Kind
	patterns []*regexp.Regexp
}

// grammar is an ordered priority list: earlier rules always win over later
// ones, and within a rule earlier patterns win. The ordering is part of the
// parser's contract, so this must stay a slice, never a map.
var grammar = []rule{
	{Look, compile(`^(?:look|l)$`, `^look\s+around$`, `^examine\s+room$`)},
	{Examine, compile(`^(?:examine|x)\s+(.+)$`, `^look\s+at\s+(.+)$`, `^inspect\s+(.+)$`)},
	{Inventory, compile(`^(?:inventory|i|inv)$`)},
	{Take, compile(`^(?:take|get)\s+(.+)$`, `^pick\s+up\s+(.+)$`)},
	{Drop, compile(`^drop\s+(.+)$`, `^put\s+down\s+(.+)$`)},
	{Use, compile(`^use\s+(.+)$`)},
	{Open, compile(`^open\s+(.+)$`)},
	{Read, compile(`^read\s+(.+)$`)},
	{Help, compile(`^help$`, `^\?$`, `^commands$`)},
	{Quit, compile(`^(?:quit|exit|q)$`, `^bye$`)},
	{Save, compile(`^save$`, `^save\s+game$`)},
	{Load, compile(`^load$`, `^load\s+game$`, `^restore$`)},
	{Score, compile(`^score$`)},
	{Health, compile(`^(?:health|hp)$`)},
	{Status, compile(`^(?:status|stat)$`)},
}

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// Parse converts raw input into a canonical (command, argument) pair.
// Input is trimmed and case-folded. Movement is resolved first against the
// direction table; the remaining grammar is tried in priority order with
// first-match-wins semantics. Object arguments are captured verbatim apart
// from trimming; multi-word names are never tokenized.
//
// Postcondition: empty input yields Kind None; input matching no pattern
// yields Kind Unknown carrying the raw (folded) text.
func Parse(text string) Parsed {
	input := strings.ToLower(strings.TrimSpace(text))
	if input == "" {
		return Parsed{Kind: None}
	}

	if m := movePattern.FindStringSubmatch(input); m != nil {
		return Parsed{Kind: Move, Arg: directions[m[1]]}
	}

	for _, r := range grammar {
		for _, p := range r.patterns {
			m := p.FindStringSubmatch(input)
			if m == nil {
				continue
			}
			if len(m) > 1 {
				return Parsed{Kind: r.kind, Arg: strings.TrimSpace(m[1])}
			}
			return Parsed{Kind: r.kind}
		}
	}

	return Parsed{Kind: Unknown, Arg: input}
}

// articles are stripped from the front of object names before matching.
var articles = []string{"the ", "a ", "an "}

// NormalizeObjectName lowercases an object name, trims it, and strips one
// leading article, so "the brass key" and "brass key" resolve identically.
func NormalizeObjectName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, art := range articles {
		if strings.HasPrefix(name, art) {
			name = strings.TrimSpace(strings.TrimPrefix(name, art))
			break
		}
	}
	return name
}
