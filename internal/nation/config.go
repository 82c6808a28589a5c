package nation

import "github.com/s4lvi/historyengine-sub001/internal/mapgen"

// ArmyStats describes one buildable unit type's baseline stats.
type ArmyStats struct {
	Speed          float64 `toml:"speed" json:"speed"`
	Power          float64 `toml:"power" json:"power"`
	PopulationCost float64 `toml:"population_cost" json:"populationCost"`
}

// StructureConfig describes one buildable structure's cost and effect.
type StructureConfig struct {
	Description      string  `toml:"description" json:"description"`
	Cost             float64 `toml:"cost" json:"cost"`
	DefenseMultiplier float64 `toml:"defense_multiplier" json:"defenseMultiplier"`
	ResourceBonus     float64 `toml:"resource_bonus" json:"resourceBonus"`
}

// GameplayConfig is the closed set of simulation thresholds from §6's
// "gameplay" block. Every field has a default here for the same reason
// mapgen.Config does: a missing key must fall back to the default, never to
// Go's zero value.
type GameplayConfig struct {
	WinConditionPercentage float64 `toml:"win_condition_percentage" json:"winConditionPercentage"`

	PopulationGrowthRate    float64 `toml:"population_growth_rate" json:"populationGrowthRate"`
	PopulationMaxPerTerritory float64 `toml:"population_max_per_territory" json:"populationMaxPerTerritory"`
	CityBonus               float64 `toml:"city_bonus" json:"cityBonus"`

	ResourceBaseYield float64 `toml:"resource_base_yield" json:"resourceBaseYield"`

	CellDesirabilityAdjacentWeight float64 `toml:"cell_desirability_adjacent_weight" json:"cellDesirabilityAdjacentWeight"`
	BiomeDesirabilityScores        map[mapgen.Biome]float64 `toml:"-" json:"biomeDesirabilityScores"`

	ExpansionBaseCost       float64 `toml:"expansion_base_cost" json:"expansionBaseCost"`
	ExpansionAttemptsPerTick int    `toml:"expansion_attempts_per_tick" json:"expansionAttemptsPerTick"`

	FortDefenseMultiplier float64 `toml:"fort_defense_multiplier" json:"fortDefenseMultiplier"`
	AttritionK            float64 `toml:"attrition_k" json:"attritionK"`
	WinnerFrictionRate    float64 `toml:"winner_friction_rate" json:"winnerFrictionRate"`

	MaxAttackArrows int `toml:"max_attack_arrows" json:"maxAttackArrows"`

	ArmyStats  map[string]ArmyStats       `toml:"-" json:"armyStats"`
	Structures map[string]StructureConfig `toml:"-" json:"structures"`
}

// DefaultGameplayConfig returns the §6 defaults, including the closed
// biome-desirability and army/structure tables the spec references but does
// not enumerate inline; values here are the implementer's resolved choice
// (recorded in the grounding ledger), matched to each biome's character
// (fertile biomes score higher, ocean/mountain score near zero).
func DefaultGameplayConfig() GameplayConfig {
	return GameplayConfig{
		WinConditionPercentage: 75,

		PopulationGrowthRate:      0.02,
		PopulationMaxPerTerritory: 100,
		CityBonus:                 500,

		ResourceBaseYield: 1,

		CellDesirabilityAdjacentWeight: 40,
		BiomeDesirabilityScores: map[mapgen.Biome]float64{
			mapgen.BiomeOcean:          0,
			mapgen.BiomeCoastal:        15,
			mapgen.BiomeMountain:       5,
			mapgen.BiomeDesert:         4,
			mapgen.BiomeSavanna:        12,
			mapgen.BiomeTropicalForest: 14,
			mapgen.BiomeRainforest:     10,
			mapgen.BiomeTundra:         3,
			mapgen.BiomeTaiga:          8,
			mapgen.BiomeGrassland:      20,
			mapgen.BiomeWoodland:       16,
			mapgen.BiomeForest:         13,
			mapgen.BiomeRiver:          25,
		},

		ExpansionBaseCost:        5,
		ExpansionAttemptsPerTick: 8,

		FortDefenseMultiplier: 2.0,
		AttritionK:            0.5,
		WinnerFrictionRate:    0.15,

		MaxAttackArrows: 3,

		ArmyStats: map[string]ArmyStats{
			"infantry": {Speed: 1.0, Power: 10, PopulationCost: 5},
			"cavalry":  {Speed: 2.0, Power: 14, PopulationCost: 8},
			"siege":    {Speed: 0.5, Power: 25, PopulationCost: 15},
		},

		Structures: map[string]StructureConfig{
			"farm":      {Description: "raises resource yield", Cost: 50, ResourceBonus: 0.5},
			"fort":      {Description: "raises defensive power", Cost: 100, DefenseMultiplier: 2.0},
			"warehouse": {Description: "raises resource yield", Cost: 75, ResourceBonus: 0.25},
		},
	}
}

// WithDefaults fills any zero-valued scalar field and any nil map field of
// cfg from DefaultGameplayConfig.
func (cfg GameplayConfig) WithDefaults() GameplayConfig {
	d := DefaultGameplayConfig()
	if cfg.WinConditionPercentage == 0 {
		cfg.WinConditionPercentage = d.WinConditionPercentage
	}
	if cfg.PopulationGrowthRate == 0 {
		cfg.PopulationGrowthRate = d.PopulationGrowthRate
	}
	if cfg.PopulationMaxPerTerritory == 0 {
		cfg.PopulationMaxPerTerritory = d.PopulationMaxPerTerritory
	}
	if cfg.CityBonus == 0 {
		cfg.CityBonus = d.CityBonus
	}
	if cfg.ResourceBaseYield == 0 {
		cfg.ResourceBaseYield = d.ResourceBaseYield
	}
	if cfg.CellDesirabilityAdjacentWeight == 0 {
		cfg.CellDesirabilityAdjacentWeight = d.CellDesirabilityAdjacentWeight
	}
	if cfg.BiomeDesirabilityScores == nil {
		cfg.BiomeDesirabilityScores = d.BiomeDesirabilityScores
	}
	if cfg.ExpansionBaseCost == 0 {
		cfg.ExpansionBaseCost = d.ExpansionBaseCost
	}
	if cfg.ExpansionAttemptsPerTick == 0 {
		cfg.ExpansionAttemptsPerTick = d.ExpansionAttemptsPerTick
	}
	if cfg.FortDefenseMultiplier == 0 {
		cfg.FortDefenseMultiplier = d.FortDefenseMultiplier
	}
	if cfg.AttritionK == 0 {
		cfg.AttritionK = d.AttritionK
	}
	if cfg.WinnerFrictionRate == 0 {
		cfg.WinnerFrictionRate = d.WinnerFrictionRate
	}
	if cfg.MaxAttackArrows == 0 {
		cfg.MaxAttackArrows = d.MaxAttackArrows
	}
	if cfg.ArmyStats == nil {
		cfg.ArmyStats = d.ArmyStats
	}
	if cfg.Structures == nil {
		cfg.Structures = d.Structures
	}
	return cfg
}
