package nation

import (
	"sort"

	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/rng"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

// expandTerritory runs step 4 of §4.E: probabilistic border expansion,
// biased by biome desirability and adjacency to existing cells. Candidates
// are visited in raster order for determinism; the RNG stream is derived
// from the map seed and tick count so replaying a tick's inputs reproduces
// identical expansion outcomes.
func expandTerritory(next *room.State, m *mapgen.Map, cfg GameplayConfig, mapSeed uint64) {
	if m == nil {
		return
	}
	r := rng.New(rng.DeriveSeed(mapSeed^next.TickCount, "expansion"))

	for _, owner := range next.SortedOwners() {
		n := next.Nations[owner]
		if n.Status != room.NationActive {
			continue
		}
		candidates := borderCandidates(next, m, n)
		attempts := cfg.ExpansionAttemptsPerTick
		if attempts > len(candidates) {
			attempts = len(candidates)
		}
		for i := 0; i < attempts; i++ {
			cand := candidates[i]
			if n.Resources["food"] < cfg.ExpansionBaseCost {
				break
			}
			desirability := cfg.BiomeDesirabilityScores[m.At(int(cand.X), int(cand.Y)).Biome]
			desirability += float64(cand.adjacentOwned) * cfg.CellDesirabilityAdjacentWeight / 8.0
			if desirability <= 0 {
				continue
			}
			// Desirability biases the claim chance directly: higher score,
			// higher probability this raster pass claims the cell.
			chance := desirability / (desirability + 50.0)
			if r.Float64() >= chance {
				continue
			}
			if ownerOf(next, cand.X, cand.Y) != "" {
				continue
			}
			n.Territory.Add(cand.X, cand.Y)
			n.Resources["food"] -= cfg.ExpansionBaseCost
		}
	}
}

type borderCandidate struct {
	X, Y          int32
	adjacentOwned int
}

// borderCandidates returns every unowned land cell adjacent to n's
// territory, sorted in raster order (row-major) for deterministic
// iteration.
func borderCandidates(s *room.State, m *mapgen.Map, n *room.Nation) []borderCandidate {
	seen := make(map[territory.Coord]bool)
	var out []borderCandidate
	for _, c := range n.Territory.Coords() {
		for _, d := range neighbors8 {
			nx, ny := c.X+d[0], c.Y+d[1]
			if !m.InBounds(int(nx), int(ny)) || !m.IsLand(int(nx), int(ny)) {
				continue
			}
			if n.Territory.Contains(nx, ny) {
				continue
			}
			if ownerOf(s, nx, ny) != "" {
				continue
			}
			key := territory.Coord{X: nx, Y: ny}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, borderCandidate{X: nx, Y: ny, adjacentOwned: countAdjacentOwned(n, nx, ny)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

var neighbors8 = [8][2]int32{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func countAdjacentOwned(n *room.Nation, x, y int32) int {
	count := 0
	for _, d := range neighbors8 {
		if n.Territory.Contains(x+d[0], y+d[1]) {
			count++
		}
	}
	return count
}
