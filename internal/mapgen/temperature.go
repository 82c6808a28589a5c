package mapgen

import (
	"math"

	"github.com/s4lvi/historyengine-sub001/internal/rng"
)

// computeTemperature implements §4.B.5:
// 25*(1-(|y/H-0.5|*1.25)^1.5) + multi-scale noise - 5*elevation.
func (g *generator) computeTemperature() {
	w, h := g.w, g.h
	n1 := rng.Noise2D(rng.DeriveSeed(g.seed, "temp_noise_1"))
	n2 := rng.Noise2D(rng.DeriveSeed(g.seed, "temp_noise_2"))

	for y := 0; y < h; y++ {
		latFrac := math.Abs(float64(y)/float64(h)-0.5) * 1.25
		latTerm := 25 * (1 - math.Pow(latFrac, 1.5))
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			noiseLarge := n1(float64(x)*0.01, float64(y)*0.01) * 3
			noiseFine := n2(float64(x)*0.05, float64(y)*0.05) * 1.5
			g.temp[idx] = latTerm + noiseLarge + noiseFine - 5*g.elevation[idx]
		}
	}
}
