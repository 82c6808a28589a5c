package mapgen

import "github.com/s4lvi/historyengine-sub001/internal/rng"

// computeMoisture implements §4.B.4: multi-source BFS distance to nearest
// water/river, a west-to-east rain-shadow pass, low-amplitude noise, and a
// final box-blur smoothing.
func (g *generator) computeMoisture() {
	w, h := g.w, g.h
	c := g.cfg
	R := c.MoistureInfluenceRadius

	seeds := make([][2]int, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			if g.elevation[idx] < c.SeaLevel || g.isRiver[idx] {
				seeds = append(seeds, [2]int{x, y})
			}
		}
	}

	dist, _ := multiSourceBFS(w, h, seeds, R, false)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			if g.elevation[idx] < c.SeaLevel {
				g.moisture[idx] = 1.0
				continue
			}
			base := 0.3
			d := dist[idx]
			if d >= 0 && d <= R {
				bonus := (float64(R-d) / float64(R)) * 0.7
				base += bonus
			}
			g.moisture[idx] = base
		}
	}

	// Rain-shadow pass, row-major from west.
	for y := 0; y < h; y++ {
		shadow := 0.0
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			e := g.elevation[idx]
			if e > 0.6 {
				shadow += (e - 0.6) * 0.4
			}
			shadow *= c.RainShadowDecay
			g.moisture[idx] = clamp01(g.moisture[idx] - shadow)
		}
	}

	noise := rng.Noise2D(rng.DeriveSeed(g.seed, "moisture_noise"))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			n := noise(float64(x)*0.08, float64(y)*0.08)
			g.moisture[idx] = clamp01(g.moisture[idx] + n*0.05)
		}
	}

	for pass := 0; pass < c.MoistureSmoothPasses; pass++ {
		g.moisture = boxBlur3x3(g.moisture, w, h)
	}
}

// boxBlur3x3 applies one double-buffered 3x3 mean pass.
func boxBlur3x3(src []float64, w, h int) []float64 {
	dst := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			n := 0
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					sum += src[ny*w+nx]
					n++
				}
			}
			dst[y*w+x] = sum / float64(n)
		}
	}
	return dst
}
