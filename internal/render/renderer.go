// Package render formats engine outcomes as plain text for the console.
// All decorative wording lives here or in the world definition's message
// table; the engine only reports structured outcomes.
package render

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/sentinel/internal/game/engine"
	"github.com/cory-johannsen/sentinel/internal/game/world"
)

// fallbacks supply wording for any message the world definition omits, keyed
// by section and key. Placeholders {item}, {key}, and {raw} are substituted
// before display.
var fallbacks = map[string]map[string]string{
	"actions": {
		"taken":        "Taken.",
		"dropped":      "Dropped.",
		"lamp_on":      "The {item} is now on, casting a warm glow.",
		"lamp_off":     "The {item} is now off.",
		"used":         "You use the {item}.",
		"opened":       "You open the {item}.",
		"already_open": "The {item} is already open.",
		"saved":        "Game saved.",
		"loaded":       "Game restored.",
	},
	"errors": {
		"no_exit":         "You can't go that way.",
		"dark_move":       "It is pitch black that way. You are likely to be eaten by a grue.",
		"dark_room":       "It is pitch black. You can't see a thing.",
		"dark_action":     "It's too dark to do that.",
		"cant_take":       "You can't take the {item}.",
		"not_here":        "There is no {item} here.",
		"not_carrying":    "You aren't carrying a {item}.",
		"cant_use":        "You can't use the {item}.",
		"cant_open":       "The {item} doesn't open.",
		"locked":          "The {item} is locked. You need the {key}.",
		"cant_read":       "There is nothing written on the {item}.",
		"nothing_special": "You see nothing special about the {item}.",
		"unknown":         "I don't understand \"{raw}\". Type \"help\" for commands.",
		"save_failed":     "The game could not be saved.",
		"load_failed":     "No saved game could be restored.",
		"session_over":    "The game is over.",
	},
}

// Renderer turns engine outcomes into display text. Wording from the world
// definition's message table overrides the built-in fallbacks.
type Renderer struct {
	messages world.Messages
}

// New creates a renderer backed by the given message table. A nil table is
// allowed; every message then uses its fallback.
func New(messages world.Messages) *Renderer {
	return &Renderer{messages: messages}
}

func (r *Renderer) msg(section, key string) string {
	if r.messages != nil {
		if text, ok := r.messages.Get(section, key); ok {
			return text
		}
	}
	return fallbacks[section][key]
}

func subst(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

// Outcome renders one engine outcome as display text. Score awards and the
// win banner are appended to the action's own text.
//
// Postcondition: every outcome kind yields non-empty text, except None.
func (r *Renderer) Outcome(out engine.Outcome) string {
	var b strings.Builder

	switch out.Kind {
	case engine.OutcomeNone:
		return ""
	case engine.OutcomeMoved, engine.OutcomeLooked, engine.OutcomeLoaded:
		if out.Kind == engine.OutcomeLoaded {
			b.WriteString(r.msg("actions", "loaded"))
			b.WriteString("\n")
		}
		if out.Room != nil {
			b.WriteString(r.RoomView(out.Room))
		} else if out.Kind == engine.OutcomeLoaded {
			b.WriteString(r.msg("errors", "dark_room"))
		}
	case engine.OutcomeBlockedNoExit:
		b.WriteString(r.msg("errors", "no_exit"))
	case engine.OutcomeBlockedDark:
		b.WriteString(r.msg("errors", "dark_move"))
	case engine.OutcomeDarkRoom:
		b.WriteString(r.msg("errors", "dark_room"))
	case engine.OutcomeActionDark:
		b.WriteString(r.msg("errors", "dark_action"))
	case engine.OutcomeExamined:
		b.WriteString(out.Text)
	case engine.OutcomeNothingSpecial:
		b.WriteString(subst(r.msg("errors", "nothing_special"), "{item}", out.ItemName))
	case engine.OutcomeInventory:
		b.WriteString(r.Inventory(out.Items))
	case engine.OutcomeTaken:
		b.WriteString(r.msg("actions", "taken"))
	case engine.OutcomeCantTake:
		b.WriteString(subst(r.msg("errors", "cant_take"), "{item}", out.ItemName))
	case engine.OutcomeNotHere:
		b.WriteString(subst(r.msg("errors", "not_here"), "{item}", out.ItemName))
	case engine.OutcomeDropped:
		b.WriteString(r.msg("actions", "dropped"))
	case engine.OutcomeNotCarrying:
		b.WriteString(subst(r.msg("errors", "not_carrying"), "{item}", out.ItemName))
	case engine.OutcomeLampOn:
		b.WriteString(subst(r.msg("actions", "lamp_on"), "{item}", out.ItemName))
		if out.Room != nil {
			b.WriteString("\n\n")
			b.WriteString(r.RoomView(out.Room))
		}
	case engine.OutcomeLampOff:
		b.WriteString(subst(r.msg("actions", "lamp_off"), "{item}", out.ItemName))
	case engine.OutcomeUsed:
		b.WriteString(subst(r.msg("actions", "used"), "{item}", out.ItemName))
	case engine.OutcomeCantUse:
		b.WriteString(subst(r.msg("errors", "cant_use"), "{item}", out.ItemName))
	case engine.OutcomeOpened:
		b.WriteString(subst(r.msg("actions", "opened"), "{item}", out.ItemName))
		if len(out.Revealed) > 0 {
			if out.Released {
				b.WriteString(fmt.Sprintf("\nOpening the %s reveals: %s.",
					out.ItemName, strings.Join(out.Revealed, ", ")))
			} else {
				b.WriteString(fmt.Sprintf("\nInside the %s you see: %s.",
					out.ItemName, strings.Join(out.Revealed, ", ")))
			}
		}
	case engine.OutcomeAlreadyOpen:
		b.WriteString(subst(r.msg("actions", "already_open"), "{item}", out.ItemName))
	case engine.OutcomeLocked:
		b.WriteString(subst(r.msg("errors", "locked"),
			"{item}", out.ItemName, "{key}", out.KeyName))
	case engine.OutcomeCantOpen:
		b.WriteString(subst(r.msg("errors", "cant_open"), "{item}", out.ItemName))
	case engine.OutcomeRead:
		if out.Text == "" {
			b.WriteString(subst(r.msg("errors", "cant_read"), "{item}", out.ItemName))
		} else {
			b.WriteString(fmt.Sprintf("The %s reads:\n%s", out.ItemName, out.Text))
		}
	case engine.OutcomeCantRead:
		b.WriteString(subst(r.msg("errors", "cant_read"), "{item}", out.ItemName))
	case engine.OutcomeHelp:
		b.WriteString(r.Help())
	case engine.OutcomeScore:
		b.WriteString(fmt.Sprintf("Score: %d of %d points, in %d moves.",
			out.Score, out.MaxScore, out.Moves))
	case engine.OutcomeHealth:
		b.WriteString(fmt.Sprintf("Health: %d/%d", out.Health, world.MaxHealth))
	case engine.OutcomeStatus:
		b.WriteString(r.status(out.Player))
	case engine.OutcomeSaved:
		b.WriteString(r.msg("actions", "saved"))
	case engine.OutcomeSaveFailed:
		b.WriteString(r.msg("errors", "save_failed"))
	case engine.OutcomeLoadFailed:
		b.WriteString(r.msg("errors", "load_failed"))
	case engine.OutcomeQuit:
		b.WriteString("Thanks for playing!")
	case engine.OutcomeUnknown:
		b.WriteString(subst(r.msg("errors", "unknown"), "{raw}", out.Raw))
	case engine.OutcomeEasterEgg:
		b.WriteString(out.Text)
	case engine.OutcomeSessionOver:
		b.WriteString(r.msg("errors", "session_over"))
	default:
		b.WriteString(subst(r.msg("errors", "unknown"), "{raw}", out.Raw))
	}

	if out.Award != nil {
		b.WriteString(fmt.Sprintf("\n[+%d points. Score: %d]", out.Award.Points, out.Award.Total))
	}
	if out.Won {
		b.WriteString("\n\n")
		b.WriteString(out.WinMessage)
	}
	return b.String()
}

// RoomView formats a visible room: name, description, items, and exits.
func (r *Renderer) RoomView(rv *engine.RoomView) string {
	var b strings.Builder
	b.WriteString(rv.Name)
	b.WriteString("\n")
	b.WriteString(rv.Description)

	if len(rv.Items) > 0 {
		b.WriteString("\n\nYou can see:")
		for _, item := range rv.Items {
			b.WriteString("\n  ")
			b.WriteString(item.Name)
			b.WriteString(itemNote(item, rv.LampLit))
		}
	}
	if len(rv.Exits) > 0 {
		b.WriteString("\n\nExits: ")
		b.WriteString(strings.Join(rv.Exits, ", "))
	}
	return b.String()
}

func itemNote(item engine.ItemView, lampLit bool) string {
	switch {
	case item.LightSource && lampLit:
		return " (glowing)"
	case item.Open && len(item.Contents) > 0:
		return fmt.Sprintf(" (open, containing: %s)", strings.Join(item.Contents, ", "))
	case item.Open:
		return " (open)"
	default:
		return ""
	}
}

// Inventory formats the carried item list.
func (r *Renderer) Inventory(items []string) string {
	if len(items) == 0 {
		return "You aren't carrying anything."
	}
	var b strings.Builder
	b.WriteString("You are carrying:")
	for _, name := range items {
		b.WriteString("\n  ")
		b.WriteString(name)
	}
	return b.String()
}

func (r *Renderer) status(pv *engine.PlayerView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n", pv.Name))
	b.WriteString(fmt.Sprintf("  Location: %s\n", pv.Room))
	b.WriteString(fmt.Sprintf("  Health: %d/%d   Score: %d   Moves: %d\n",
		pv.Health, world.MaxHealth, pv.Score, pv.Moves))
	b.WriteString(fmt.Sprintf("  Carrying: %d items", pv.Carrying))
	return b.String()
}

// Help returns the command reference.
func (r *Renderer) Help() string {
	return strings.TrimSpace(`
Available commands:
  go <direction>      Move north, south, east, west, up, or down.
                      Bare directions and single letters work too.
  look (l)            Describe the current room.
  examine <item> (x)  Inspect an item more closely.
  take <item>         Pick up an item.
  drop <item>         Put down a carried item.
  open <item>         Open a container.
  read <item>         Read an item.
  use <item>          Use a carried item.
  inventory (i)       List what you are carrying.
  score               Show score and move count.
  health (hp)         Show health.
  status              Show a full status summary.
  save / load         Save or restore the game.
  help (?)            Show this text.
  quit (q)            End the game.
`)
}
