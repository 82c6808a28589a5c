package nation

import (
	"github.com/s4lvi/historyengine-sub001/internal/command"
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

// applyCommands runs step 1 of §4.E: queued commands in FIFO order,
// per-nation. An invalid command (insufficient resources, unowned target,
// pre-defeat) is silently dropped here — intake already rejected anything
// malformed; what survives to the tick boundary can still be stale against
// state that changed since validation, so every handler re-checks.
func applyCommands(next *room.State, m *mapgen.Map, cmds []room.Command, cfg GameplayConfig) []Event {
	var events []Event
	for _, c := range cmds {
		switch c.Kind {
		case command.KindFound:
			events = append(events, applyFound(next, m, c)...)
		case command.KindBuildCity:
			applyBuildCity(next, c)
		case command.KindBuildStructure:
			applyBuildStructure(next, c, cfg)
		case command.KindArrowStart:
			applyArrowStart(next, c, cfg)
		case command.KindArrowCancel:
			applyArrowCancel(next, c)
		case command.KindSetTroopTarget:
			applySetTroopTarget(next, c)
		case command.KindSetAttackPercent:
			applySetAttackPercent(next, c)
		case command.KindQuit:
			applyQuit(next, c)
		case command.KindPlayerSettings:
			applyPlayerSettings(next, c)
		// KindPause/KindUnpause/KindEnd are never enqueued here: pausing must
		// stop the scheduler's ticker itself (§8 "pause freezes ticks"), which
		// a per-tick status flag can't do, so the composition root routes
		// those kinds straight to scheduler.Worker/manager.Manager instead of
		// the command queue.
		}
	}
	return events
}

func applyFound(next *room.State, m *mapgen.Map, c room.Command) []Event {
	p, ok := c.Payload.(command.FoundPayload)
	if !ok {
		return nil
	}
	if existing, ok := next.Nations[c.Owner]; ok && existing.Status != room.NationDefeated {
		return nil
	}
	if m != nil && (!m.InBounds(int(p.X), int(p.Y)) || !m.IsFoundable(int(p.X), int(p.Y))) {
		return nil
	}
	for _, n := range next.Nations {
		if n.Status != room.NationDefeated && n.Territory.Contains(p.X, p.Y) {
			return nil
		}
	}
	t := territory.New(1)
	t.Add(p.X, p.Y)
	next.Nations[c.Owner] = &room.Nation{
		Owner:         c.Owner,
		StartingCell:  territory.Coord{X: p.X, Y: p.Y},
		Territory:     t,
		Population:    100,
		NationalWill:  50,
		Resources:     map[string]float64{},
		TroopTarget:   0.5,
		AttackPercent: 0.5,
		Status:        room.NationActive,
	}
	return []Event{{Kind: EventNationFounded, Owner: c.Owner, X: p.X, Y: p.Y}}
}

func applyBuildCity(next *room.State, c room.Command) {
	p, ok := c.Payload.(command.BuildCityPayload)
	n := next.Nations[c.Owner]
	if !ok || n == nil || n.Status != room.NationActive {
		return
	}
	if !n.Territory.Contains(p.X, p.Y) {
		return
	}
	for _, city := range n.Cities {
		if city.X == p.X && city.Y == p.Y {
			return
		}
	}
	n.Cities = append(n.Cities, room.City{X: p.X, Y: p.Y, Type: p.CityType, Name: p.CityName})
}

func applyBuildStructure(next *room.State, c room.Command, cfg GameplayConfig) {
	p, ok := c.Payload.(command.BuildStructurePayload)
	n := next.Nations[c.Owner]
	if !ok || n == nil || n.Status != room.NationActive {
		return
	}
	if !n.Territory.Contains(p.X, p.Y) {
		return
	}
	for _, s := range n.Structures {
		if s.X == p.X && s.Y == p.Y {
			return
		}
	}
	sc, ok := cfg.Structures[p.Type]
	if !ok {
		return
	}
	if n.Resources["food"] < sc.Cost {
		return
	}
	n.Resources["food"] -= sc.Cost
	n.Structures = append(n.Structures, room.Structure{X: p.X, Y: p.Y, Type: p.Type})
}

func applyArrowStart(next *room.State, c room.Command, cfg GameplayConfig) {
	p, ok := c.Payload.(command.ArrowStartPayload)
	n := next.Nations[c.Owner]
	if !ok || n == nil || n.Status != room.NationActive {
		return
	}
	if len(p.Path) < 2 || !n.Territory.Contains(p.Path[0].X, p.Path[0].Y) {
		return
	}
	order := &room.ArrowOrder{
		Type:           p.Type,
		Path:           append([]territory.Coord(nil), p.Path...),
		RemainingPower: n.Population * p.Percent,
		CurrentIndex:   0,
		Percent:        p.Percent,
	}
	switch p.Type {
	case room.ArrowDefend:
		n.DefendArrow = order
	case room.ArrowAttack:
		if len(n.AttackArrows) >= cfg.MaxAttackArrows {
			return
		}
		n.AttackArrows = append(n.AttackArrows, order)
	}
}

func applyArrowCancel(next *room.State, c room.Command) {
	p, ok := c.Payload.(command.ArrowCancelPayload)
	n := next.Nations[c.Owner]
	if !ok || n == nil {
		return
	}
	switch p.Type {
	case room.ArrowDefend:
		n.DefendArrow = nil
	case room.ArrowAttack:
		// Cancel cancels every in-flight attack arrow; per-arrow cancellation
		// would need a client-assigned arrow id, which §4.E/§6 don't define.
		n.AttackArrows = nil
	}
}

func applySetTroopTarget(next *room.State, c room.Command) {
	p, ok := c.Payload.(command.SetTroopTargetPayload)
	n := next.Nations[c.Owner]
	if !ok || n == nil {
		return
	}
	n.TroopTarget = p.Target
}

func applySetAttackPercent(next *room.State, c room.Command) {
	p, ok := c.Payload.(command.SetAttackPercentPayload)
	n := next.Nations[c.Owner]
	if !ok || n == nil {
		return
	}
	n.AttackPercent = p.Percent
}

func applyQuit(next *room.State, c room.Command) {
	delete(next.Nations, c.Owner)
}

func applyPlayerSettings(next *room.State, c room.Command) {
	p, ok := c.Payload.(command.PlayerSettingsPayload)
	if !ok {
		return
	}
	for i := range next.Players {
		if next.Players[i].UserID == c.Owner {
			next.Players[i].Profile = p.Profile
			return
		}
	}
}
