package nation

import (
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/room"
)

// biomeMoveCost is the per-biome arrow movement cost: higher costs mean an
// arrow spends more ticks crossing that terrain.
var biomeMoveCost = map[mapgen.Biome]float64{
	mapgen.BiomeOcean:          4.0,
	mapgen.BiomeCoastal:        1.5,
	mapgen.BiomeMountain:       3.0,
	mapgen.BiomeDesert:         1.5,
	mapgen.BiomeSavanna:        1.0,
	mapgen.BiomeTropicalForest: 1.5,
	mapgen.BiomeRainforest:     1.8,
	mapgen.BiomeTundra:         1.3,
	mapgen.BiomeTaiga:          1.3,
	mapgen.BiomeGrassland:      0.8,
	mapgen.BiomeWoodland:       1.2,
	mapgen.BiomeForest:         1.4,
	mapgen.BiomeRiver:          2.0,
}

func moveCost(m *mapgen.Map, x, y int32) float64 {
	if m == nil || !m.InBounds(int(x), int(y)) {
		return 1.0
	}
	cost, ok := biomeMoveCost[m.At(int(x), int(y)).Biome]
	if !ok {
		return 1.0
	}
	return cost
}

// propagateArrows runs step 2 and step 3 of §4.E together: each arrow
// advances toward the next cell on its path, and a step that lands on a
// cell owned by another active nation is resolved as combat immediately.
// At most one ownership transfer per contested cell per tick, enforced by
// capturedThisTick.
func propagateArrows(next *room.State, m *mapgen.Map, cfg GameplayConfig) []Event {
	var events []Event
	capturedThisTick := make(map[territoryKey]bool)

	for _, owner := range next.SortedOwners() {
		n := next.Nations[owner]
		if n.Status != room.NationActive {
			continue
		}

		if n.DefendArrow != nil {
			advanceDefendArrow(n)
		}

		kept := n.AttackArrows[:0]
		for _, order := range n.AttackArrows {
			if advanceAttackArrow(next, m, cfg, n, order, capturedThisTick, &events) {
				kept = append(kept, order)
			}
		}
		n.AttackArrows = kept
	}
	return events
}

type territoryKey struct{ X, Y int32 }

func advanceDefendArrow(n *room.Nation) {
	order := n.DefendArrow
	cost := 1.0
	order.Progress += (0.25 + 0.75*order.Percent) / cost
	for order.Progress >= 1.0 && order.CurrentIndex < len(order.Path)-1 {
		order.Progress -= 1.0
		order.CurrentIndex++
	}
	if order.CurrentIndex >= len(order.Path)-1 {
		// Troops return home: half the committed power rejoins the population
		// pool, the rest is the cost of having mobilized it.
		n.Population += order.RemainingPower * 0.5
		n.DefendArrow = nil
	}
}

// advanceAttackArrow returns false if the arrow should be removed (path
// exhausted or defeated in combat).
func advanceAttackArrow(next *room.State, m *mapgen.Map, cfg GameplayConfig, attacker *room.Nation, order *room.ArrowOrder, captured map[territoryKey]bool, events *[]Event) bool {
	if order.CurrentIndex >= len(order.Path)-1 {
		return false
	}
	target := order.Path[order.CurrentIndex+1]
	cost := moveCost(m, target.X, target.Y)
	order.Progress += (0.25 + 0.75*order.Percent) / cost
	if order.Progress < 1.0 {
		return true
	}
	order.Progress -= 1.0

	defenderOwner := ownerOf(next, target.X, target.Y)
	if defenderOwner == "" || defenderOwner == attacker.Owner {
		order.CurrentIndex++
		return true
	}

	key := territoryKey{target.X, target.Y}
	if captured[key] {
		// Another arrow already flipped this cell this tick; hold position.
		return true
	}
	defender := next.Nations[defenderOwner]
	if defender == nil || defender.Status != room.NationActive {
		order.CurrentIndex++
		return true
	}

	attackerWins := resolveCombat(cfg, attacker, defender, order, target)
	if attackerWins {
		captured[key] = true
		defender.Territory.Remove(target.X, target.Y)
		attacker.Territory.Add(target.X, target.Y)
		order.CurrentIndex++
		*events = append(*events, Event{Kind: EventCellCaptured, Owner: attacker.Owner, X: target.X, Y: target.Y})
		return order.RemainingPower > 0.01
	}
	return order.RemainingPower > 0.01
}

// resolveCombat applies the resolved attrition formula and returns whether
// the attacker captured the cell. Ties favor the defender.
func resolveCombat(cfg GameplayConfig, attacker, defender *room.Nation, order *room.ArrowOrder, cell territoryKey) bool {
	attackerPower := order.RemainingPower
	defenderPower := defenderCellPower(cfg, defender, cell)

	attackerWins := attackerPower > defenderPower
	winnerPower, loserPower := attackerPower, defenderPower
	if !attackerWins {
		winnerPower, loserPower = defenderPower, attackerPower
	}

	loserLossFraction := winnerPower / (winnerPower + loserPower) * cfg.AttritionK
	if loserLossFraction < 0 {
		loserLossFraction = 0
	}
	if loserLossFraction > 1 {
		loserLossFraction = 1
	}
	frictionLoss := (1 - loserLossFraction) * cfg.WinnerFrictionRate

	if attackerWins {
		order.RemainingPower -= order.RemainingPower * frictionLoss
		defender.Population -= defenderPower * loserLossFraction
	} else {
		order.RemainingPower -= order.RemainingPower * loserLossFraction
		defender.Population -= defenderPower * frictionLoss
	}
	if defender.Population < 0 {
		defender.Population = 0
	}
	if order.RemainingPower < 0 {
		order.RemainingPower = 0
	}
	return attackerWins
}

func defenderCellPower(cfg GameplayConfig, defender *room.Nation, cell territoryKey) float64 {
	territoryLen := defender.Territory.Len()
	if territoryLen == 0 {
		return 0
	}
	density := defender.Population / float64(territoryLen)
	multiplier := 1.0
	for _, s := range defender.Structures {
		if s.X == cell.X && s.Y == cell.Y {
			if sc, ok := cfg.Structures[s.Type]; ok && sc.DefenseMultiplier > 0 {
				multiplier *= sc.DefenseMultiplier
			}
		}
	}
	return density * multiplier
}

func ownerOf(s *room.State, x, y int32) string {
	for _, owner := range s.SortedOwners() {
		n := s.Nations[owner]
		if n.Status == room.NationActive && n.Territory.Contains(x, y) {
			return owner
		}
	}
	return ""
}
