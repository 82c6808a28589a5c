package mapgen

import (
	"math"

	"github.com/s4lvi/historyengine-sub001/internal/rng"
)

// placeAnchors draws numBlobs gaussian elevation anchors from a dedicated
// PRNG stream, forcing anchor 0 to be a guaranteed mountain seed (strength
// >= 0.55) per §4.B.1.
func (g *generator) placeAnchors() {
	r := rng.New(rng.DeriveSeed(g.seed, "anchors"))
	margin := g.cfg.AnchorMargin
	minX := margin * float64(g.w)
	maxX := (1 - margin) * float64(g.w)
	minY := margin * float64(g.h)
	maxY := (1 - margin) * float64(g.h)

	g.anchors = make([]anchor, g.cfg.NumBlobs)
	for i := 0; i < g.cfg.NumBlobs; i++ {
		strength := g.cfg.AnchorMinStrength + r.Float64()*g.cfg.AnchorStrengthRange
		if i == 0 && strength < 0.55 {
			strength = 0.55
		}
		g.anchors[i] = anchor{
			x:        minX + r.Float64()*(maxX-minX),
			y:        minY + r.Float64()*(maxY-minY),
			strength: strength,
			sigma:    g.cfg.AnchorMinSigma + r.Float64()*g.cfg.AnchorSigmaRange,
		}
	}
}

// anchorBias returns the max over all anchors of strength * exp(-d^2/(2*sigma^2*W^2)).
// sigma is expressed as a fraction of width, matching the anchor placement margins.
func (g *generator) anchorBias(x, y float64) float64 {
	best := 0.0
	for _, a := range g.anchors {
		dx := x - a.x
		dy := y - a.y
		d2 := dx*dx + dy*dy
		sigmaAbs := a.sigma * float64(g.w)
		v := a.strength * math.Exp(-d2/(2*sigmaAbs*sigmaAbs))
		if v > best {
			best = v
		}
	}
	return best
}

// sampleFBM evaluates the domain-warped FBM elevation noise at (x,y), per
// §4.B.1: two successive warp offsets, then an FBM sample at the warped
// coordinate.
func (g *generator) sampleFBM(x, y float64) float64 {
	c := g.cfg
	w1 := c.Warp1Amplitude * g.noise(x*c.Warp1Scale, y*c.Warp1Scale)
	w2 := c.Warp2Amplitude * g.noise((x+w1)*c.Warp2Scale, (y+w1)*c.Warp2Scale)
	return rng.FBM(g.noise, x+w1+w2, y+w1+w2, c.FBMFrequency, c.FBMPersistence, c.FBMOctaves)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// buildElevation runs phase 1: noise + anchor bias + border fade + sub-sea
// push + peak amplification + the peak guarantee.
func (g *generator) buildElevation() {
	c := g.cfg
	w, h := g.w, g.h
	borderPx := c.BorderWidth * float64(w)

	maxElev := -math.MaxFloat64
	maxIdx := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			noise := g.sampleFBM(fx, fy)
			blobBias := g.anchorBias(fx, fy)

			e := noise*c.NoiseWeight + blobBias*c.AnchorWeight + c.ElevationOffset

			if blobBias > 0.2 && noise > 0.15 {
				e += (blobBias - 0.2) * noise * c.PeakAmplifyStrength
			}

			// Border fade: smoothStep from the nearer edge.
			distToEdgeX := math.Min(fx, float64(w-1)-fx)
			distToEdgeY := math.Min(fy, float64(h-1)-fy)
			distToEdge := math.Min(distToEdgeX, distToEdgeY)
			fade := rng.SmoothStep(0, borderPx, distToEdge)
			e *= fade

			if e < c.SeaLevel {
				e *= c.SubSeaPush
			}

			e = clamp01(e)
			idx := g.idx(x, y)
			g.elevation[idx] = e
			if e > maxElev {
				maxElev = e
				maxIdx = idx
			}
		}
	}

	// Peak guarantee: ensure at least one cell reaches mountainLevel+0.07.
	if maxElev < c.MountainLevel+0.03 {
		cx, cy := maxIdx%w, maxIdx/w
		target := c.MountainLevel + 0.07
		radius := math.Max(3, float64(w+h)/40)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx := float64(x - cx)
				dy := float64(y - cy)
				d := math.Sqrt(dx*dx + dy*dy)
				if d > radius*3 {
					continue
				}
				dome := math.Exp(-(d * d) / (2 * radius * radius))
				idx := g.idx(x, y)
				g.elevation[idx] = clamp01(math.Max(g.elevation[idx], target*dome+g.elevation[idx]*(1-dome)))
			}
		}
	}
}
