package mapgen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/s4lvi/historyengine-sub001/internal/rng"
)

// generator holds the mutable working state threaded through the eight
// pipeline phases. Each phase is a method that consumes the previous
// phase's output, mirroring dshills-dungo's staged-pipeline generator
// shape (one struct, one method per stage, run in Generate's fixed order).
type generator struct {
	w, h int
	cfg  Config
	seed uint64
	log  *zap.Logger

	noise func(x, y float64) float64

	elevation []float64
	flow      []float64
	moisture  []float64
	temp      []float64
	isRiver   []bool
	biome     []Biome
	features  [][]Feature
	resources [][]Resource

	anchors []anchor
}

type anchor struct {
	x, y, strength, sigma float64
}

// Generate runs the full eight-phase pipeline and returns a populated Map.
// It is a pure function: identical (w, h, seed, cfg) always produces a
// byte-identical Map, with no reliance on wall-clock time or global state.
func Generate(w, h int, seed uint64, cfg Config, log *zap.Logger) (*Map, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("mapgen: width and height must be positive, got %dx%d", w, h)
	}
	cfg = cfg.WithDefaults()
	if cfg.NumBlobs < 1 {
		return nil, fmt.Errorf("mapgen: numBlobs must be >= 1, got %d", cfg.NumBlobs)
	}
	if log == nil {
		log = zap.NewNop()
	}

	g := &generator{
		w: w, h: h, cfg: cfg, seed: seed,
		log:       log.With(zap.Int("width", w), zap.Int("height", h), zap.Uint64("seed", seed)),
		noise:     rng.Noise2D(rng.DeriveSeed(seed, "elevation_noise")),
		elevation: make([]float64, w*h),
		flow:      make([]float64, w*h),
		moisture:  make([]float64, w*h),
		temp:      make([]float64, w*h),
		isRiver:   make([]bool, w*h),
		biome:     make([]Biome, w*h),
		features:  make([][]Feature, w*h),
		resources: make([][]Resource, w*h),
	}

	g.placeAnchors()
	g.buildElevation()
	g.repairConnectivity()
	g.computeRivers()
	g.computeMoisture()
	g.computeTemperature()
	g.assignBiomes()
	g.assignResources()
	g.smooth()

	return g.toMap(), nil
}

func (g *generator) idx(x, y int) int { return y*g.w + x }

func (g *generator) toMap() *Map {
	cells := make([]Cell, g.w*g.h)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			i := g.idx(x, y)
			cells[i] = Cell{
				X: x, Y: y,
				Elevation:   g.elevation[i],
				Moisture:    g.moisture[i],
				Temperature: g.temp[i],
				Biome:       g.biome[i],
				IsRiver:     g.isRiver[i],
				Features:    g.features[i],
				Resources:   g.resources[i],
			}
		}
	}
	return &Map{Width: g.w, Height: g.h, Seed: g.seed, Config: g.cfg, Cells: cells}
}
