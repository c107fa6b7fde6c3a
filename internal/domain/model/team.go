// Package model contains domain models passed between layers.
package model

// Slot identifies one of the six fixed roster positions.
type Slot string

// The six roster slots every team fills. Values match the external
// player catalog's position keys.
const (
	SlotGuard         Slot = "guard"
	SlotCenter        Slot = "center"
	SlotForwardCenter Slot = "forward_center"
	SlotForward       Slot = "forward"
	SlotGuardForward  Slot = "guard_forward"
	SlotForwardGuard  Slot = "forward_guard"
)

// Slots lists all valid slots in a stable order.
func Slots() []Slot {
	return []Slot{
		SlotGuard,
		SlotCenter,
		SlotForwardCenter,
		SlotForward,
		SlotGuardForward,
		SlotForwardGuard,
	}
}

// ValidSlot reports whether s is one of the six roster slots.
func ValidSlot(s Slot) bool {
	switch s {
	case SlotGuard, SlotCenter, SlotForwardCenter, SlotForward, SlotGuardForward, SlotForwardGuard:
		return true
	}
	return false
}

// Team is a user's fantasy roster plus its coin and point state.
// Version is the optimistic-concurrency token checked on every write.
type Team struct {
	ID             string             `json:"id"`
	Owner          string             `json:"owner"`
	Coins          float64            `json:"coins"`
	Slots          map[Slot]string    `json:"slots"`
	SlotCosts      map[Slot]float64   `json:"slot_costs"`
	PointsMatchday float64            `json:"points_matchday"`
	TotalPoints    float64            `json:"total_points"`
	Version        int64              `json:"version"`
}

// NewTeam creates an empty roster with the given starting budget.
func NewTeam(id, owner string, coins float64) Team {
	return Team{
		ID:        id,
		Owner:     owner,
		Coins:     coins,
		Slots:     make(map[Slot]string),
		SlotCosts: make(map[Slot]float64),
	}
}

// Clone returns a deep copy so callers can mutate without aliasing
// store-held state.
func (t Team) Clone() Team {
	c := t
	c.Slots = make(map[Slot]string, len(t.Slots))
	for k, v := range t.Slots {
		c.Slots[k] = v
	}
	c.SlotCosts = make(map[Slot]float64, len(t.SlotCosts))
	for k, v := range t.SlotCosts {
		c.SlotCosts[k] = v
	}
	return c
}

// FilledSlots returns the number of slots holding a player.
func (t Team) FilledSlots() int {
	return len(t.Slots)
}

// LedgerEntry records the points one team earned on one matchday.
// At most one entry may exist per (team, matchday).
type LedgerEntry struct {
	TeamID   string  `json:"team_id"`
	Matchday int     `json:"matchday"`
	Points   float64 `json:"points"`
}

// Row is a derived leaderboard row; never persisted.
type Row struct {
	Rank   int     `json:"rank"`
	TeamID string  `json:"team_id"`
	Points float64 `json:"points"`
}
