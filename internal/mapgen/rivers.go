package mapgen

import (
	"math"
	"sort"

	"github.com/s4lvi/historyengine-sub001/internal/rng"
)

// computeRivers implements §4.B.3: flow accumulation over land cells,
// processed in descending elevation order, each cell draining its entire
// flow to its steepest downhill 4-neighbor. A cell becomes a river once its
// accumulated flow crosses a size-scaled threshold.
func (g *generator) computeRivers() {
	w, h := g.w, g.h
	noise := rng.Noise2D(rng.DeriveSeed(g.seed, "rain"))
	c := g.cfg

	type cellIdx struct {
		idx  int
		elev float64
	}
	order := make([]cellIdx, 0, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			e := g.elevation[idx]
			if e < c.SeaLevel {
				g.flow[idx] = 0
				continue
			}
			n := noise(float64(x)*0.05, float64(y)*0.05)
			bonus := math.Max(0, e-0.4) * rainElevationBonus
			g.flow[idx] = 1 + n*rainNoiseWeight + bonus
			order = append(order, cellIdx{idx: idx, elev: e})
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].elev > order[j].elev })

	for _, ci := range order {
		idx := ci.idx
		x, y := idx%w, idx/w
		bestIdx := -1
		bestDrop := 0.0
		myElev := g.elevation[idx]
		for _, d := range neighbors4 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nidx := g.idx(nx, ny)
			if g.elevation[nidx] >= c.SeaLevel {
				drop := myElev - g.elevation[nidx]
				if drop > bestDrop {
					bestDrop = drop
					bestIdx = nidx
				}
			}
		}
		if bestIdx >= 0 {
			g.flow[bestIdx] += g.flow[idx]
		}
	}

	total := float64(len(order))
	threshold := math.Max(25, math.Sqrt(total)*c.RiverFlowMultiplier)
	widenThreshold := threshold * c.RiverWidenMultiplier

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			if g.elevation[idx] < c.SeaLevel {
				continue
			}
			if g.flow[idx] >= threshold {
				g.isRiver[idx] = true
			}
		}
	}
	// Widening pass: mark 4-neighbors of strong-flow river cells.
	toWiden := make([]int, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			if g.flow[idx] < widenThreshold {
				continue
			}
			for _, d := range neighbors4 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nidx := g.idx(nx, ny)
				if g.elevation[nidx] >= c.SeaLevel {
					toWiden = append(toWiden, nidx)
				}
			}
		}
	}
	for _, idx := range toWiden {
		g.isRiver[idx] = true
	}
}

const (
	rainNoiseWeight     = 0.8
	rainElevationBonus  = 3.0
)
