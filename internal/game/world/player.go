package world

// MaxHealth is the upper clamp for player health.
const MaxHealth = 100

// Player represents the player character.
type Player struct {
	// Name is the player's display name.
	Name string
	// RoomID is the ID of the room the player currently occupies.
	RoomID string
	// Inventory holds carried items in acquisition order.
	Inventory []*Item
	// Health is clamped to [0, MaxHealth].
	Health int
	// Score is monotonically non-decreasing during normal play.
	Score int
	// Moves counts successful room changes.
	Moves int
}

// NewPlayer creates a player at full health in the given room.
//
// Precondition: startRoom must be a valid room ID.
func NewPlayer(name, startRoom string) *Player {
	return &Player{
		Name:   name,
		RoomID: startRoom,
		Health: MaxHealth,
	}
}

// MoveTo places the player in the given room and increments the move counter.
//
// Precondition: roomID must be a valid room ID; the caller has already
// validated the exit and any light requirement.
func (p *Player) MoveTo(roomID string) {
	p.RoomID = roomID
	p.Moves++
}

// FindItem returns the first carried item matching the normalized name.
func (p *Player) FindItem(name string) *Item {
	for _, it := range p.Inventory {
		if it.MatchesName(name) {
			return it
		}
	}
	return nil
}

// HasItem reports whether the player carries an item matching the name.
func (p *Player) HasItem(name string) bool {
	return p.FindItem(name) != nil
}

// RemoveItem removes and returns the first carried item matching the
// normalized name.
//
// Postcondition: Returns the removed item, or nil with inventory unchanged.
func (p *Player) RemoveItem(name string) *Item {
	for i, it := range p.Inventory {
		if it.MatchesName(name) {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return it
		}
	}
	return nil
}

// AddItem appends an item to the player's inventory.
//
// Precondition: it must not currently belong to any other collection.
func (p *Player) AddItem(it *Item) {
	p.Inventory = append(p.Inventory, it)
}

// AddScore adds points to the player's score.
//
// Precondition: points must be >= 0.
func (p *Player) AddScore(points int) {
	p.Score += points
}

// Damage reduces health, clamping at zero.
//
// Postcondition: Returns true if the player is dead (health == 0).
func (p *Player) Damage(amount int) bool {
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	return p.Health == 0
}

// Heal restores health, clamping at MaxHealth.
func (p *Player) Heal(amount int) {
	p.Health += amount
	if p.Health > MaxHealth {
		p.Health = MaxHealth
	}
}

// Alive reports whether the player has health remaining.
func (p *Player) Alive() bool {
	return p.Health > 0
}
