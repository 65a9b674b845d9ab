package world

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages maps section and key to a display string. The renderer consumes
// these verbatim; the engine only formats the win message.
type Messages map[string]map[string]string

// Get returns the message for the given section and key.
//
// Postcondition: Returns (message, true) if present, or ("", false).
func (m Messages) Get(section, key string) (string, bool) {
	sec, ok := m[section]
	if !ok {
		return "", false
	}
	msg, ok := sec[key]
	return msg, ok
}

// ScoreRule awards points the first time an action succeeds on an item.
type ScoreRule struct {
	// Action is the scored verb: "take", "open", "read", or "use".
	Action string `yaml:"action"`
	// Item is the ID of the item the action must target.
	Item string `yaml:"item"`
	// Points is the fixed award for this rule.
	Points int `yaml:"points"`
	// Wins marks the rule that ends the game when awarded.
	Wins bool `yaml:"wins"`
}

// ScoreActions are the verbs a ScoreRule may name.
var ScoreActions = map[string]bool{
	"take": true,
	"open": true,
	"read": true,
	"use":  true,
}

// ItemPlacement locates an item at world start: in a room or inside a
// container item. Exactly one field is set.
type ItemPlacement struct {
	Room      string `yaml:"room"`
	Container string `yaml:"container"`
}

// ItemDef is the static definition of an item.
type ItemDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Synonyms    []string `yaml:"synonyms"`

	// Takeable defaults to true when omitted, matching the data format.
	Takeable        *bool  `yaml:"takeable"`
	Readable        bool   `yaml:"readable"`
	Useable         bool   `yaml:"useable"`
	Openable        bool   `yaml:"openable"`
	LightSource     bool   `yaml:"light_source"`
	RevealsContents bool   `yaml:"reveals_contents"`
	KeyRequired     string `yaml:"key_required"`
	ReadText        string `yaml:"read_text"`

	Location ItemPlacement `yaml:"location"`
}

// RoomDef is the static definition of a room.
type RoomDef struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	Description      string            `yaml:"description"`
	ShortDescription string            `yaml:"short_description"`
	Dark             bool              `yaml:"dark"`
	Exits            map[string]string `yaml:"exits"`
}

// Definition is the static, externally supplied world description. It is
// loaded once at session start and never mutated; Build derives fresh mutable
// state from it.
type Definition struct {
	StartRoom string      `yaml:"start_room"`
	Rooms     []RoomDef   `yaml:"rooms"`
	Items     []ItemDef   `yaml:"items"`
	Messages  Messages    `yaml:"messages"`
	Scoring   []ScoreRule `yaml:"scoring"`
}

// LoadDefinitionFromFile reads and validates a world definition YAML file.
//
// Precondition: path must point to a valid YAML world definition.
// Postcondition: Returns a validated Definition or a non-nil error.
func LoadDefinitionFromFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world definition %s: %w", path, err)
	}
	def, err := LoadDefinitionFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading world definition %s: %w", path, err)
	}
	return def, nil
}

// LoadDefinitionFromBytes parses and validates a world definition from YAML.
//
// Postcondition: Returns a validated Definition or a non-nil error.
func LoadDefinitionFromBytes(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}
	return &def, nil
}

// Validate checks the definition's structural invariants: the start room and
// every exit target exist, item placements resolve, only openable items hold
// contents or locks, key references name defined items, and scoring rules
// reference known actions and items with at most one winning rule.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *Definition) Validate() error {
	if d.StartRoom == "" {
		return fmt.Errorf("start_room must not be empty")
	}
	if len(d.Rooms) == 0 {
		return fmt.Errorf("world must contain at least one room")
	}

	roomIDs := make(map[string]bool, len(d.Rooms))
	for _, r := range d.Rooms {
		if r.ID == "" {
			return fmt.Errorf("room with empty ID")
		}
		if roomIDs[r.ID] {
			return fmt.Errorf("duplicate room ID %q", r.ID)
		}
		roomIDs[r.ID] = true
		if r.Name == "" {
			return fmt.Errorf("room %q: name must not be empty", r.ID)
		}
		if r.Description == "" {
			return fmt.Errorf("room %q: description must not be empty", r.ID)
		}
	}
	if !roomIDs[d.StartRoom] {
		return fmt.Errorf("start_room %q not found in rooms", d.StartRoom)
	}
	for _, r := range d.Rooms {
		for dir, target := range r.Exits {
			if !Direction(dir).IsStandard() {
				return fmt.Errorf("room %q: unknown exit direction %q", r.ID, dir)
			}
			if !roomIDs[target] {
				return fmt.Errorf("room %q: exit %q targets unknown room %q", r.ID, dir, target)
			}
		}
	}

	itemIDs := make(map[string]bool, len(d.Items))
	itemByID := make(map[string]ItemDef, len(d.Items))
	for _, it := range d.Items {
		if it.ID == "" {
			return fmt.Errorf("item with empty ID")
		}
		if itemIDs[it.ID] {
			return fmt.Errorf("duplicate item ID %q", it.ID)
		}
		itemIDs[it.ID] = true
		itemByID[it.ID] = it
		if it.Name == "" {
			return fmt.Errorf("item %q: name must not be empty", it.ID)
		}
		if it.RevealsContents && !it.Openable {
			return fmt.Errorf("item %q: reveals_contents requires openable", it.ID)
		}
		if it.KeyRequired != "" && !it.Openable {
			return fmt.Errorf("item %q: key_required requires openable", it.ID)
		}
	}
	for _, it := range d.Items {
		switch {
		case it.Location.Room != "" && it.Location.Container != "":
			return fmt.Errorf("item %q: location names both a room and a container", it.ID)
		case it.Location.Room != "":
			if !roomIDs[it.Location.Room] {
				return fmt.Errorf("item %q: location room %q not found", it.ID, it.Location.Room)
			}
		case it.Location.Container != "":
			container, ok := itemByID[it.Location.Container]
			if !ok {
				return fmt.Errorf("item %q: location container %q not found", it.ID, it.Location.Container)
			}
			if !container.Openable {
				return fmt.Errorf("item %q: container %q is not openable", it.ID, it.Location.Container)
			}
		default:
			return fmt.Errorf("item %q: location must name a room or a container", it.ID)
		}
		if it.KeyRequired != "" {
			if !d.keyResolves(it.KeyRequired) {
				return fmt.Errorf("item %q: key_required %q does not name a defined item", it.ID, it.KeyRequired)
			}
		}
	}

	winners := 0
	for i, rule := range d.Scoring {
		if !ScoreActions[rule.Action] {
			return fmt.Errorf("scoring rule %d: unknown action %q", i, rule.Action)
		}
		if !itemIDs[rule.Item] {
			return fmt.Errorf("scoring rule %d: unknown item %q", i, rule.Item)
		}
		if rule.Points <= 0 {
			return fmt.Errorf("scoring rule %d: points must be > 0, got %d", i, rule.Points)
		}
		if rule.Wins {
			winners++
		}
	}
	if winners > 1 {
		return fmt.Errorf("scoring declares %d winning rules, want at most 1", winners)
	}

	return nil
}

// keyResolves reports whether name matches any defined item's canonical name
// or synonyms. Lock requirements are matched by name, not ID, because the
// unlocking check searches the player's inventory by name.
func (d *Definition) keyResolves(name string) bool {
	lower := strings.ToLower(name)
	for _, it := range d.Items {
		if lower == strings.ToLower(it.Name) {
			return true
		}
		for _, syn := range it.Synonyms {
			if lower == strings.ToLower(syn) {
				return true
			}
		}
	}
	return false
}

// MaxScore returns the sum of all scoring rule point values.
func (d *Definition) MaxScore() int {
	total := 0
	for _, rule := range d.Scoring {
		total += rule.Points
	}
	return total
}

// Build instantiates a fresh mutable World from the definition: new room and
// item values, initial item placement applied, and the player at the start
// room. Each call returns fully independent state.
//
// Precondition: d must have passed Validate.
// Postcondition: The returned world satisfies the ownership invariant.
func (d *Definition) Build(playerName string) *World {
	w := &World{
		Rooms:  make(map[string]*Room, len(d.Rooms)),
		Items:  make(map[string]*Item, len(d.Items)),
		Player: NewPlayer(playerName, d.StartRoom),
	}

	for _, rd := range d.Rooms {
		room := &Room{
			ID:               rd.ID,
			Name:             rd.Name,
			Description:      strings.TrimSpace(rd.Description),
			ShortDescription: rd.ShortDescription,
			Exits:            make(map[Direction]string, len(rd.Exits)),
			Dark:             rd.Dark,
		}
		if room.ShortDescription == "" {
			room.ShortDescription = rd.Name
		}
		for dir, target := range rd.Exits {
			room.Exits[Direction(dir)] = target
		}
		w.Rooms[room.ID] = room
	}

	for _, id := range d.Items {
		item := &Item{
			ID:              id.ID,
			Name:            id.Name,
			Description:     id.Description,
			Synonyms:        id.Synonyms,
			Takeable:        id.Takeable == nil || *id.Takeable,
			Readable:        id.Readable,
			Useable:         id.Useable,
			Openable:        id.Openable,
			LightSource:     id.LightSource,
			RevealsContents: id.RevealsContents,
			KeyRequired:     id.KeyRequired,
			ReadText:        id.ReadText,
		}
		w.Items[item.ID] = item
	}

	// Placement happens after all items exist so containers resolve.
	for _, id := range d.Items {
		item := w.Items[id.ID]
		if id.Location.Room != "" {
			w.Rooms[id.Location.Room].AddItem(item)
		} else {
			w.Items[id.Location.Container].AddContent(item)
		}
	}

	return w
}
