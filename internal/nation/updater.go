// Package nation implements the per-tick nation updater (§4.E): command
// application, arrow propagation and combat, territory expansion,
// population/resource growth, structure effects, and defeat/victory
// transitions. Advance is the sole entry point; it never mutates prev, only
// the cloned next state it returns, preserving the snapshot discipline
// internal/room.Handle depends on.
package nation

import (
	"github.com/s4lvi/historyengine-sub001/internal/command"
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/room"
)

// Advance computes the next tick's state from prev, the generated map, the
// drained command list, and the gameplay config, following the eight
// ordered steps of §4.E. Nations are always processed in ascending owner id
// order so command FIFO and expansion raster order are deterministic.
func Advance(prev *room.State, m *mapgen.Map, cmds []room.Command, cfg GameplayConfig) (*room.State, []Event) {
	cfg = cfg.WithDefaults()
	next := prev.Clone()
	next.TickCount++

	var events []Event
	events = append(events, applyCommands(next, m, cmds, cfg)...)
	events = append(events, propagateArrows(next, m, cfg)...)

	var mapSeed uint64
	if m != nil {
		mapSeed = m.Seed
	}
	expandTerritory(next, m, cfg, mapSeed)
	growResources(next, m, cfg)

	events = append(events, applyDefeats(next)...)
	events = append(events, applyVictory(next, m, cfg)...)

	return next, events
}

// applyDefeats runs step 7 of §4.E: a nation with zero territory after the
// tick transitions to defeated, discarding its cities, structures, and
// arrows.
func applyDefeats(next *room.State) []Event {
	var events []Event
	for _, owner := range next.SortedOwners() {
		n := next.Nations[owner]
		if n.Status != room.NationActive {
			continue
		}
		if n.Territory.Len() > 0 {
			continue
		}
		n.Status = room.NationDefeated
		n.Cities = nil
		n.Structures = nil
		n.DefendArrow = nil
		n.AttackArrows = nil
		events = append(events, Event{Kind: EventNationDefeated, Owner: owner})
	}
	return events
}

// applyVictory runs step 8 of §4.E: victory is measured against land cells
// only, since ocean/coastal-water can never be claimed and counting it
// would make some maps mathematically unwinnable.
func applyVictory(next *room.State, m *mapgen.Map, cfg GameplayConfig) []Event {
	if next.Status == room.StatusEnded {
		return nil
	}
	totalLand := countLandCells(m)
	if totalLand == 0 {
		return nil
	}
	var events []Event
	for _, owner := range next.SortedOwners() {
		n := next.Nations[owner]
		if n.Status != room.NationActive {
			continue
		}
		if n.TerritoryPercentage(totalLand) >= cfg.WinConditionPercentage {
			n.Status = room.NationWinner
			next.Status = room.StatusEnded
			events = append(events, Event{Kind: EventNationVictory, Owner: owner})
			break
		}
	}
	return events
}

func countLandCells(m *mapgen.Map) int {
	if m == nil {
		return 0
	}
	count := 0
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			if m.IsLand(x, y) {
				count++
			}
		}
	}
	return count
}
