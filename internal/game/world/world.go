package world

import "fmt"

// OwnerKind identifies the kind of collection an item currently belongs to.
type OwnerKind string

// Owner kinds. Every item belongs to exactly one owner at any time.
const (
	OwnerRoom      OwnerKind = "room"
	OwnerInventory OwnerKind = "inventory"
	OwnerContainer OwnerKind = "container"
)

// Owner identifies the single collection currently holding an item.
type Owner struct {
	// Kind is the owning collection's kind.
	Kind OwnerKind
	// ID is the owning room or container item ID. Empty for OwnerInventory.
	ID string
}

// World is the mutable aggregate of rooms, items, and the player for one
// session. It is built from a Definition and mutated only by the engine.
type World struct {
	// Rooms indexes every room by ID.
	Rooms map[string]*Room
	// Items indexes every item instance by ID, regardless of owner.
	Items map[string]*Item
	// Player is the session's player character.
	Player *Player
}

// Room returns the room with the given ID.
//
// Postcondition: Returns (room, true) if found, or (nil, false).
func (w *World) Room(id string) (*Room, bool) {
	r, ok := w.Rooms[id]
	return r, ok
}

// CurrentRoom returns the room the player occupies.
//
// Precondition: the player's RoomID must reference an existing room; the
// definition validator and the engine's movement checks maintain this.
func (w *World) CurrentRoom() (*Room, error) {
	r, ok := w.Rooms[w.Player.RoomID]
	if !ok {
		return nil, fmt.Errorf("player room %q not found", w.Player.RoomID)
	}
	return r, nil
}

// Owner reports the collection currently holding the item with the given ID.
// It scans room collections, the player's inventory, and container contents.
//
// Postcondition: Returns (owner, true) for the first collection found, or
// (Owner{}, false) when the item is unowned, which is an ownership invariant
// violation.
func (w *World) Owner(itemID string) (Owner, bool) {
	target, ok := w.Items[itemID]
	if !ok {
		return Owner{}, false
	}
	for id, room := range w.Rooms {
		for _, it := range room.Items {
			if it == target {
				return Owner{Kind: OwnerRoom, ID: id}, true
			}
		}
	}
	for _, it := range w.Player.Inventory {
		if it == target {
			return Owner{Kind: OwnerInventory}, true
		}
	}
	for id, container := range w.Items {
		for _, it := range container.Contents {
			if it == target {
				return Owner{Kind: OwnerContainer, ID: id}, true
			}
		}
	}
	return Owner{}, false
}

// CheckOwnership verifies that every item belongs to exactly one collection.
//
// Postcondition: Returns nil, or an error naming the first item that is
// unowned or owned more than once.
func (w *World) CheckOwnership() error {
	counts := make(map[*Item]int, len(w.Items))
	for _, room := range w.Rooms {
		for _, it := range room.Items {
			counts[it]++
		}
	}
	for _, it := range w.Player.Inventory {
		counts[it]++
	}
	for _, container := range w.Items {
		for _, it := range container.Contents {
			counts[it]++
		}
	}
	for id, it := range w.Items {
		switch counts[it] {
		case 1:
		case 0:
			return fmt.Errorf("item %q has no owner", id)
		default:
			return fmt.Errorf("item %q has %d owners", id, counts[it])
		}
	}
	return nil
}
