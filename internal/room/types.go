// Package room defines the in-memory authoritative state for one room: its
// players, nations, tick count, and pending command queue (§3, §4.D). All
// mutation happens inside the tick scheduler's critical section; readers
// (the hub, HTTP/WS handlers) observe a consistent snapshot via an atomic
// pointer swap, never a partially-updated nation.
package room

import (
	"time"

	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

// Status is the closed room lifecycle enum (§3).
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusOpen         Status = "open"
	StatusPaused       Status = "paused"
	StatusEnded        Status = "ended"
	StatusError        Status = "error"
)

// NationStatus is the closed nation lifecycle enum.
type NationStatus string

const (
	NationActive   NationStatus = "active"
	NationDefeated NationStatus = "defeated"
	NationWinner   NationStatus = "winner"
)

// ArrowType distinguishes attack and defend orders.
type ArrowType string

const (
	ArrowAttack ArrowType = "attack"
	ArrowDefend ArrowType = "defend"
)

// Player is one credentialed room member.
type Player struct {
	UserID   string
	Password string
	Profile  string
}

// City is a named settlement owned by a nation.
type City struct {
	X, Y int32
	Type string
	Name string
}

// Structure is a built improvement at a single cell.
type Structure struct {
	X, Y int32
	Type string
}

// ArrowOrder is one in-flight attack or defend order (§3).
type ArrowOrder struct {
	Type           ArrowType
	Path           []territory.Coord // ordered, 8-connected, len >= 2
	RemainingPower float64
	CurrentIndex   int
	Progress       float64 // fractional progress toward Path[CurrentIndex+1], [0,1)
	Percent        float64
}

// Nation is one player's in-game entity (§3).
type Nation struct {
	Owner        string
	StartingCell territory.Coord
	Territory    *territory.Set
	Population   float64
	NationalWill int
	Resources    map[string]float64
	Cities       []City
	Structures   []Structure
	DefendArrow  *ArrowOrder
	AttackArrows []*ArrowOrder
	TroopTarget  float64 // [0,1]
	AttackPercent float64 // [0.05,1]
	Status       NationStatus
	AutoCity     bool
}

// Clone deep-copies a Nation for copy-on-write state transitions.
func (n *Nation) Clone() *Nation {
	if n == nil {
		return nil
	}
	out := *n
	out.Territory = n.Territory.Clone()
	out.Resources = make(map[string]float64, len(n.Resources))
	for k, v := range n.Resources {
		out.Resources[k] = v
	}
	out.Cities = append([]City(nil), n.Cities...)
	out.Structures = append([]Structure(nil), n.Structures...)
	if n.DefendArrow != nil {
		d := *n.DefendArrow
		d.Path = append([]territory.Coord(nil), n.DefendArrow.Path...)
		out.DefendArrow = &d
	}
	out.AttackArrows = make([]*ArrowOrder, len(n.AttackArrows))
	for i, a := range n.AttackArrows {
		cp := *a
		cp.Path = append([]territory.Coord(nil), a.Path...)
		out.AttackArrows[i] = &cp
	}
	return &out
}

// TerritoryPercentage returns this nation's share of totalLandCells.
func (n *Nation) TerritoryPercentage(totalLandCells int) float64 {
	if totalLandCells == 0 {
		return 0
	}
	return float64(n.Territory.Len()) / float64(totalLandCells) * 100
}

// Command is a single queued, already-validated client command awaiting the
// next tick. Kind and Payload are interpreted by internal/nation.
type Command struct {
	Kind    string
	Owner   string
	Payload any
}

// State is one room's full authoritative snapshot (§3, §4.D).
type State struct {
	RoomID       string
	RoomName     string
	MapID        string
	TickCount    uint64
	Status       Status
	Creator      string
	Players      []Player
	Nations      map[string]*Nation // keyed by owner id
	LastActivity time.Time

	// LastBroadcastTerritories is not written by the scheduler or any other
	// component, and Clone does not copy it; per-subscriber delta-base
	// bookkeeping lives in the hub.
	LastBroadcastTerritories map[string]*territory.Set

	PendingCommands []Command
}

// Clone performs a shallow-structural deep copy suitable for building the
// next tick's state without mutating the previous snapshot still referenced
// by readers.
func (s *State) Clone() *State {
	out := &State{
		RoomID:       s.RoomID,
		RoomName:     s.RoomName,
		MapID:        s.MapID,
		TickCount:    s.TickCount,
		Status:       s.Status,
		Creator:      s.Creator,
		Players:      append([]Player(nil), s.Players...),
		Nations:      make(map[string]*Nation, len(s.Nations)),
		LastActivity: s.LastActivity,
	}
	for owner, n := range s.Nations {
		out.Nations[owner] = n.Clone()
	}
	return out
}

// SortedOwners returns nation owner ids in ascending order, the
// deterministic per-tick processing order required by §4.E.
func (s *State) SortedOwners() []string {
	owners := make([]string, 0, len(s.Nations))
	for o := range s.Nations {
		owners = append(owners, o)
	}
	for i := 1; i < len(owners); i++ {
		j := i
		for j > 0 && owners[j] < owners[j-1] {
			owners[j], owners[j-1] = owners[j-1], owners[j]
			j--
		}
	}
	return owners
}
