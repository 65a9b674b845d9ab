// Package world provides the game world model: rooms, items, the player,
// and the world definition they are built from.
package world

import "strings"

// Direction represents a compass direction or vertical movement.
type Direction string

// Standard directions recognized by the movement grammar.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// StandardDirections contains all recognized directions in display order.
var StandardDirections = []Direction{North, South, East, West, Up, Down}

// IsStandard reports whether d is one of the six standard directions.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Room represents a location in the game world.
type Room struct {
	// ID uniquely identifies this room within the world.
	ID string
	// Name is the short display name of the room.
	Name string
	// Description is the full description shown on look.
	Description string
	// ShortDescription is the brief description used in movement banners.
	// Defaults to Name when the definition omits it.
	ShortDescription string
	// Exits maps a direction to the destination room ID. The mapping is
	// directed and not necessarily symmetric.
	Exits map[Direction]string
	// Items are the items currently placed in the room, in placement order.
	Items []*Item
	// Dark marks a room that requires an active light source to enter or
	// act in.
	Dark bool
}

// Exit returns the destination room ID for the given direction.
//
// Postcondition: Returns (roomID, true) if an exit exists, or ("", false).
func (r *Room) Exit(dir Direction) (string, bool) {
	id, ok := r.Exits[dir]
	return id, ok
}

// ExitDirections returns the room's exit directions in the standard order.
func (r *Room) ExitDirections() []Direction {
	var dirs []Direction
	for _, d := range StandardDirections {
		if _, ok := r.Exits[d]; ok {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// FindItem returns the first item in the room matching the normalized name.
//
// Postcondition: Returns the item or nil; the room is not modified.
func (r *Room) FindItem(name string) *Item {
	for _, it := range r.Items {
		if it.MatchesName(name) {
			return it
		}
	}
	return nil
}

// RemoveItem removes and returns the first item matching the normalized name.
//
// Postcondition: Returns the removed item, or nil with the room unchanged.
func (r *Room) RemoveItem(name string) *Item {
	for i, it := range r.Items {
		if it.MatchesName(name) {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return it
		}
	}
	return nil
}

// AddItem appends an item to the room's collection.
//
// Precondition: it must not currently belong to any other collection.
func (r *Room) AddItem(it *Item) {
	r.Items = append(r.Items, it)
}

// Item represents an interactive object in the game world.
type Item struct {
	// ID uniquely identifies this item within the world.
	ID string
	// Name is the canonical display name.
	Name string
	// Description is shown when the item is examined.
	Description string
	// Synonyms are alternate names matched case-insensitively.
	Synonyms []string

	// Capability flags.
	Takeable bool
	Readable bool
	Useable  bool
	Openable bool
	// LightSource marks an item whose use toggles the session lamp.
	LightSource bool
	// RevealsContents marks an openable item whose contents spill into the
	// current room when opened.
	RevealsContents bool

	// KeyRequired names the item that must be carried to open this one.
	// Empty means unlocked.
	KeyRequired string
	// ReadText is the payload shown when a readable item is read.
	ReadText string

	// Open is the current open/closed state. Only meaningful when Openable.
	Open bool
	// Contents are the items inside this one, in placement order. Only
	// populated when Openable.
	Contents []*Item
}

// MatchesName reports whether the given name matches the item's canonical
// name or any synonym, case-insensitively.
func (i *Item) MatchesName(name string) bool {
	lower := strings.ToLower(name)
	if lower == strings.ToLower(i.Name) {
		return true
	}
	for _, syn := range i.Synonyms {
		if lower == strings.ToLower(syn) {
			return true
		}
	}
	return false
}

// FindContent returns the first contained item matching the normalized name.
//
// Postcondition: Returns the item or nil; contents are not modified.
func (i *Item) FindContent(name string) *Item {
	for _, it := range i.Contents {
		if it.MatchesName(name) {
			return it
		}
	}
	return nil
}

// RemoveContent removes and returns the first contained item matching the
// normalized name.
//
// Postcondition: Returns the removed item, or nil with contents unchanged.
func (i *Item) RemoveContent(name string) *Item {
	for idx, it := range i.Contents {
		if it.MatchesName(name) {
			i.Contents = append(i.Contents[:idx], i.Contents[idx+1:]...)
			return it
		}
	}
	return nil
}

// AddContent appends an item to this item's contents.
//
// Precondition: i must be openable; it must not belong to any other collection.
func (i *Item) AddContent(it *Item) {
	i.Contents = append(i.Contents, it)
}
