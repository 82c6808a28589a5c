package mapgen

import (
	"math"
	"sort"

	"github.com/s4lvi/historyengine-sub001/internal/rng"
)

// repairConnectivity implements §4.B.2: label 4-connected land components;
// if more than one exists, bridge every non-main component to the largest
// ("main") component with 2-4 gaussian blobs placed along the path between
// the component's closest cell and its nearest main-component cell.
func (g *generator) repairConnectivity() {
	w, h := g.w, g.h
	labels, sizes := labelComponents4(w, h, func(x, y int) bool {
		return g.elevation[g.idx(x, y)] >= g.cfg.SeaLevel
	})
	if len(sizes) <= 1 {
		return
	}

	mainLabel := 0
	mainSize := sizes[0]
	for i, s := range sizes {
		if s > mainSize {
			mainSize = s
			mainLabel = i
		}
	}

	mainSeeds := make([][2]int, 0, mainSize)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels[g.idx(x, y)] == mainLabel {
				mainSeeds = append(mainSeeds, [2]int{x, y})
			}
		}
	}
	if len(mainSeeds) == 0 {
		return
	}

	dist, nearest := multiSourceBFS(w, h, mainSeeds, -1, true)

	// For each non-main component, find its own cell closest to main and
	// bridge.
	r := rng.New(rng.DeriveSeed(g.seed, "connectivity"))
	type compInfo struct {
		bestDist    int
		bestCell    [2]int
		bestNearest [2]int
	}
	infos := make(map[int]*compInfo)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			lbl := labels[idx]
			if lbl == -1 || lbl == mainLabel {
				continue
			}
			d := dist[idx]
			if d == -1 {
				continue
			}
			info, ok := infos[lbl]
			if !ok || d < info.bestDist {
				infos[lbl] = &compInfo{bestDist: d, bestCell: [2]int{x, y}, bestNearest: nearest[idx]}
			}
		}
	}

	// Range over labels in sorted order, not map iteration order: r is a
	// single shared RNG stream, so iterating a map here would make the
	// per-component draw order (and thus the repaired map) depend on Go's
	// randomized map order instead of only on seed.
	labelOrder := make([]int, 0, len(infos))
	for lbl := range infos {
		labelOrder = append(labelOrder, lbl)
	}
	sort.Ints(labelOrder)

	for _, lbl := range labelOrder {
		info := infos[lbl]
		numBlobs := 2 + r.Intn(3) // 2..4
		ax, ay := float64(info.bestCell[0]), float64(info.bestCell[1])
		bx, by := float64(info.bestNearest[0]), float64(info.bestNearest[1])
		for i := 1; i <= numBlobs; i++ {
			t := float64(i) / float64(numBlobs+1)
			jitter := (r.Float64() - 0.5) * 2
			px := rng.Lerp(ax, bx, t) + jitter
			py := rng.Lerp(ay, by, t) + jitter
			radius := 3.0 + r.Float64()*4
			g.liftGaussian(px, py, radius, g.cfg.SeaLevel+0.05, 0.9)
		}
	}
}

// liftGaussian raises elevation in a radial falloff around (cx,cy) toward
// target, capped at maxElev.
func (g *generator) liftGaussian(cx, cy, radius, target, maxElev float64) {
	r := int(math.Ceil(radius * 3))
	cxi, cyi := int(cx), int(cy)
	for dy := -r; dy <= r; dy++ {
		y := cyi + dy
		if y < 0 || y >= g.h {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			x := cxi + dx
			if x < 0 || x >= g.w {
				continue
			}
			d2 := float64(dx*dx + dy*dy)
			falloff := math.Exp(-d2 / (2 * radius * radius))
			idx := g.idx(x, y)
			lifted := g.elevation[idx] + (target-g.elevation[idx])*falloff
			if lifted > maxElev {
				lifted = maxElev
			}
			if lifted > g.elevation[idx] {
				g.elevation[idx] = lifted
			}
		}
	}
}
