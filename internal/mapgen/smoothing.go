package mapgen

// smooth implements §4.B.8: a final 3x3 mean elevation pass, restricted to
// non-coastal cells with elevation in [0.35,0.7] whose neighbors also
// satisfy that predicate (avoids blurring coastlines or mountain faces).
func (g *generator) smooth() {
	w, h := g.w, g.h

	eligible := func(idx int) bool {
		if g.biome[idx] == BiomeCoastal || g.biome[idx] == BiomeOcean {
			return false
		}
		e := g.elevation[idx]
		return e >= 0.35 && e <= 0.7
	}

	out := make([]float64, len(g.elevation))
	copy(out, g.elevation)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			if !eligible(idx) {
				continue
			}
			sum := 0.0
			n := 0
			allEligible := true
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
					nidx := g.idx(nx, ny)
					if !eligible(nidx) {
						allEligible = false
						continue
					}
					sum += g.elevation[nidx]
					n++
				}
			}
			if !allEligible || n == 0 {
				continue
			}
			out[idx] = clamp01(sum / float64(n))
		}
	}
	g.elevation = out
}
