package engine

import (
	"sort"

	"github.com/cory-johannsen/sentinel/internal/storage"
)

// SessionState tracks the lifecycle of one game session.
type SessionState int

const (
	// StateNotStarted means no world has been built yet.
	StateNotStarted SessionState = iota
	// StateRunning means commands are accepted.
	StateRunning
	// StateWon is terminal: the winning rule fired.
	StateWon
	// StateQuit is terminal: the player quit.
	StateQuit
)

// String returns a short name for the session state.
func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateWon:
		return "won"
	case StateQuit:
		return "quit"
	default:
		return "invalid"
	}
}

// GameState holds session flags that live outside the world model. It is
// owned by the engine and replaced wholesale on load.
type GameState struct {
	// LampLit reports whether the light source is switched on. Lighting is
	// session-global: one lamp lights every dark room while lit.
	LampLit bool
	// GameWon latches once the winning rule fires.
	GameWon bool
	// Scored records consumed scoring keys so no rule awards twice.
	Scored map[string]struct{}
}

func newGameState() *GameState {
	return &GameState{Scored: make(map[string]struct{})}
}

func stateFromFlags(f storage.Flags) *GameState {
	s := newGameState()
	s.LampLit = f.LampLit
	s.GameWon = f.GameWon
	for _, key := range f.ScoredKeys {
		s.Scored[key] = struct{}{}
	}
	return s
}

func (s *GameState) flags() storage.Flags {
	keys := make([]string, 0, len(s.Scored))
	for key := range s.Scored {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return storage.Flags{
		LampLit:    s.LampLit,
		GameWon:    s.GameWon,
		ScoredKeys: keys,
	}
}
