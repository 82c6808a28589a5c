// Package mapgen implements the eight-phase map generation pipeline:
// domain-warped FBM elevation, connectivity repair, flow-accumulation
// rivers, moisture, temperature, biome assignment, resource spawning, and a
// final smoothing pass. Generation is deterministic: Generate(w,h,seed,cfg)
// must be byte-identical across invocations and implementations.
package mapgen

// Biome is a closed enum tag assigned per cell.
type Biome int

const (
	BiomeOcean Biome = iota
	BiomeCoastal
	BiomeMountain
	BiomeDesert
	BiomeSavanna
	BiomeTropicalForest
	BiomeRainforest
	BiomeTundra
	BiomeTaiga
	BiomeGrassland
	BiomeWoodland
	BiomeForest
	BiomeRiver
	biomeCount
)

var biomeNames = [biomeCount]string{
	"OCEAN", "COASTAL", "MOUNTAIN", "DESERT", "SAVANNA", "TROPICAL_FOREST",
	"RAINFOREST", "TUNDRA", "TAIGA", "GRASSLAND", "WOODLAND", "FOREST", "RIVER",
}

func (b Biome) String() string {
	if b < 0 || int(b) >= len(biomeNames) {
		return "UNKNOWN"
	}
	return biomeNames[b]
}

// BiomeNames returns the full index->name mapping table, used verbatim by
// the wire format (§4.C).
func BiomeNames() []string {
	out := make([]string, len(biomeNames))
	copy(out, biomeNames[:])
	return out
}

// Feature is a closed enum of per-cell terrain tags.
type Feature int

const (
	FeaturePeaks Feature = iota
	FeatureCliffs
	FeatureHills
	FeatureSprings
	FeatureLowlands
	FeatureWetlands
	FeatureMarshes
	FeatureFertileValleys
	FeatureRiver
	featureCount
)

var featureNames = [featureCount]string{
	"peaks", "cliffs", "hills", "springs", "lowlands", "wetlands", "marshes",
	"fertile_valleys", "river",
}

func (f Feature) String() string {
	if f < 0 || int(f) >= len(featureNames) {
		return "unknown"
	}
	return featureNames[f]
}

func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames[:])
	return out
}

// Resource is a closed enum of spawnable resource tags.
type Resource int

const (
	ResourceFood Resource = iota
	ResourceWood
	ResourceStone
	ResourceIron
	ResourceGold
	resourceCount
)

var resourceNames = [resourceCount]string{
	"food", "wood", "stone", "iron", "gold",
}

func (r Resource) String() string {
	if r < 0 || int(r) >= len(resourceNames) {
		return "unknown"
	}
	return resourceNames[r]
}

func ResourceNames() []string {
	out := make([]string, len(resourceNames))
	copy(out, resourceNames[:])
	return out
}

// Cell is one immutable grid tile, set once during generation.
type Cell struct {
	X, Y        int
	Elevation   float64
	Moisture    float64
	Temperature float64
	Biome       Biome
	IsRiver     bool
	Features    []Feature
	Resources   []Resource
}

// Map is a generated width x height grid of cells plus generation config.
type Map struct {
	Width, Height int
	Seed          uint64
	Config        Config
	Cells         []Cell // row-major, len == Width*Height
}

func (m *Map) At(x, y int) *Cell {
	return &m.Cells[y*m.Width+x]
}

func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// IsLand reports whether the cell at (x,y) is at/above sea level.
func (m *Map) IsLand(x, y int) bool {
	return m.At(x, y).Elevation >= m.Config.SeaLevel
}

// IsFoundable reports whether a nation may be founded at (x,y): land, and
// not a river cell. River cells satisfy IsLand (elevation >= sea level by
// construction) but are still water for founding purposes.
func (m *Map) IsFoundable(x, y int) bool {
	c := m.At(x, y)
	return c.Elevation >= m.Config.SeaLevel && !c.IsRiver
}
