package nation

import (
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/room"
)

// biomeYieldMultiplier scales per-cell resource regeneration by terrain.
var biomeYieldMultiplier = map[mapgen.Biome]float64{
	mapgen.BiomeOcean:          0.1,
	mapgen.BiomeCoastal:        1.1,
	mapgen.BiomeMountain:       0.6,
	mapgen.BiomeDesert:         0.4,
	mapgen.BiomeSavanna:        1.0,
	mapgen.BiomeTropicalForest: 1.2,
	mapgen.BiomeRainforest:     1.1,
	mapgen.BiomeTundra:         0.5,
	mapgen.BiomeTaiga:          0.8,
	mapgen.BiomeGrassland:      1.4,
	mapgen.BiomeWoodland:       1.2,
	mapgen.BiomeForest:         1.1,
	mapgen.BiomeRiver:          1.5,
}

// growResources runs step 5 of §4.E: population growth and resource
// regeneration for every active nation.
func growResources(next *room.State, m *mapgen.Map, cfg GameplayConfig) {
	for _, owner := range next.SortedOwners() {
		n := next.Nations[owner]
		if n.Status != room.NationActive {
			continue
		}
		growPopulation(n, cfg)
		regenerateResources(n, m, cfg)
	}
}

func growPopulation(n *room.Nation, cfg GameplayConfig) {
	territoryLen := float64(n.Territory.Len())
	if territoryLen == 0 {
		return
	}
	cityCount := float64(len(n.Cities))
	growth := cfg.PopulationGrowthRate * territoryLen * (1 + cityCount/territoryLen)
	cap := cfg.PopulationMaxPerTerritory*territoryLen + cfg.CityBonus*cityCount
	n.Population += growth
	if n.Population > cap {
		n.Population = cap
	}
	if n.Population < 0 {
		n.Population = 0
	}
}

func regenerateResources(n *room.Nation, m *mapgen.Map, cfg GameplayConfig) {
	if n.Resources == nil {
		n.Resources = map[string]float64{}
	}
	var total float64
	for _, c := range n.Territory.Coords() {
		mult := 1.0
		if m != nil && m.InBounds(int(c.X), int(c.Y)) {
			if bm, ok := biomeYieldMultiplier[m.At(int(c.X), int(c.Y)).Biome]; ok {
				mult = bm
			}
		}
		total += cfg.ResourceBaseYield * mult
	}
	for _, s := range n.Structures {
		if sc, ok := cfg.Structures[s.Type]; ok && sc.ResourceBonus > 0 {
			total += total * sc.ResourceBonus
		}
	}
	n.Resources["food"] += total
}
