package mapgen

import "github.com/s4lvi/historyengine-sub001/internal/rng"

// biomeSpawnProbability gives each biome a spawn probability and
// biomeResourceTable a weighted pick table over Resource, per §4.B.7.
type resourceEntry struct {
	resource Resource
	weight   float64
}

var biomeSpawnProbability = map[Biome]float64{
	BiomeGrassland:      0.35,
	BiomeWoodland:       0.4,
	BiomeForest:         0.45,
	BiomeTropicalForest:  0.4,
	BiomeRainforest:     0.4,
	BiomeSavanna:        0.3,
	BiomeTaiga:          0.35,
	BiomeTundra:         0.2,
	BiomeDesert:         0.2,
	BiomeMountain:       0.5,
	BiomeCoastal:        0.25,
	BiomeRiver:          0.4,
}

var biomeResourceTable = map[Biome][]resourceEntry{
	BiomeGrassland:      {{ResourceFood, 0.7}, {ResourceStone, 0.3}},
	BiomeWoodland:       {{ResourceWood, 0.6}, {ResourceFood, 0.4}},
	BiomeForest:         {{ResourceWood, 0.7}, {ResourceFood, 0.3}},
	BiomeTropicalForest:  {{ResourceWood, 0.5}, {ResourceFood, 0.5}},
	BiomeRainforest:     {{ResourceWood, 0.6}, {ResourceFood, 0.4}},
	BiomeSavanna:        {{ResourceFood, 0.8}, {ResourceStone, 0.2}},
	BiomeTaiga:          {{ResourceWood, 0.8}, {ResourceStone, 0.2}},
	BiomeTundra:         {{ResourceStone, 0.6}, {ResourceIron, 0.4}},
	BiomeDesert:         {{ResourceGold, 0.5}, {ResourceStone, 0.5}},
	BiomeMountain:       {{ResourceStone, 0.4}, {ResourceIron, 0.4}, {ResourceGold, 0.2}},
	BiomeCoastal:        {{ResourceFood, 1.0}},
	BiomeRiver:          {{ResourceFood, 0.6}, {ResourceStone, 0.4}},
}

// assignResources implements §4.B.7: per-cell spawn roll, then a weighted
// pick from the biome's resource table. Ore weights shift upward with
// elevation (mountains spawn more iron/gold at higher altitude).
func (g *generator) assignResources() {
	w, h := g.w, g.h
	spawnRoll := rng.New(rng.DeriveSeed(g.seed, "resource_spawn"))
	pickRoll := rng.New(rng.DeriveSeed(g.seed, "resource_pick"))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			b := g.biome[idx]
			if b == BiomeOcean {
				continue
			}
			prob, ok := biomeSpawnProbability[b]
			if !ok || spawnRoll.Float64() >= prob {
				continue
			}
			entries := biomeResourceTable[b]
			if len(entries) == 0 {
				continue
			}
			weights := make([]float64, len(entries))
			for i, e := range entries {
				w := e.weight
				if (e.resource == ResourceIron || e.resource == ResourceGold) && b == BiomeMountain {
					w *= 1 + g.elevation[idx]
				}
				weights[i] = w
			}
			pick := pickRoll.WeightedChoice(weights)
			if pick < 0 {
				continue
			}
			g.resources[idx] = append(g.resources[idx], entries[pick].resource)
		}
	}
}
