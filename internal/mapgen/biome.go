package mapgen

import "github.com/s4lvi/historyengine-sub001/internal/rng"

// assignBiomes implements §4.B.6: elevation-threshold ocean/coastal/mountain,
// otherwise a temperature x moisture matrix projecting into the closed
// biome set; rivers always override to RIVER. Also derives the per-cell
// Features list (peaks/cliffs/hills/springs/lowlands/wetlands/marshes/
// fertile valleys/river) from the same underlying fields.
func (g *generator) assignBiomes() {
	w, h := g.w, g.h
	c := g.cfg
	jitterNoise := rng.Noise2D(rng.DeriveSeed(g.seed, "biome_jitter"))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := g.idx(x, y)
			e := g.elevation[idx]
			m := g.moisture[idx]
			t := g.temp[idx]
			jitter := jitterNoise(float64(x)*0.1, float64(y)*0.1) * 0.02

			var b Biome
			switch {
			case e < c.SeaLevel:
				b = BiomeOcean
			case e < c.CoastalLevel+jitter:
				b = BiomeCoastal
			case e >= c.MountainLevel+jitter:
				b = BiomeMountain
			default:
				b = classifyByTempMoisture(t, m)
			}

			if g.isRiver[idx] {
				b = BiomeRiver
			}

			g.biome[idx] = b
			g.features[idx] = deriveFeatures(e, m, c, g.isRiver[idx])
		}
	}
}

// classifyByTempMoisture projects (temperature, moisture) into the closed
// non-coastal/non-mountain biome matrix via smoothStep-eased thresholds.
func classifyByTempMoisture(t, m float64) Biome {
	hot := rng.SmoothStep(15, 30, t)
	cold := rng.SmoothStep(5, -5, t)
	wet := rng.SmoothStep(0.35, 0.75, m)

	switch {
	case cold > 0.5:
		if wet > 0.4 {
			return BiomeTaiga
		}
		return BiomeTundra
	case hot > 0.6:
		switch {
		case wet > 0.75:
			return BiomeRainforest
		case wet > 0.5:
			return BiomeTropicalForest
		case wet > 0.25:
			return BiomeSavanna
		default:
			return BiomeDesert
		}
	default:
		switch {
		case wet > 0.6:
			return BiomeForest
		case wet > 0.35:
			return BiomeWoodland
		default:
			return BiomeGrassland
		}
	}
}

func deriveFeatures(elev, moisture float64, cfg Config, isRiver bool) []Feature {
	var f []Feature
	switch {
	case elev >= cfg.MountainLevel+0.1:
		f = append(f, FeaturePeaks)
	case elev >= cfg.MountainLevel:
		f = append(f, FeatureCliffs)
	case elev >= cfg.MountainLevel-0.15:
		f = append(f, FeatureHills)
	}
	if isRiver {
		f = append(f, FeatureRiver, FeatureSprings)
	}
	if elev < cfg.SeaLevel+0.03 && elev >= cfg.SeaLevel {
		f = append(f, FeatureLowlands)
	}
	if moisture > 0.75 && elev < cfg.MountainLevel-0.2 {
		f = append(f, FeatureWetlands)
	}
	if moisture > 0.85 && elev < cfg.SeaLevel+0.1 {
		f = append(f, FeatureMarshes)
	}
	if isRiver && moisture > 0.5 && elev < cfg.MountainLevel-0.2 {
		f = append(f, FeatureFertileValleys)
	}
	return f
}
