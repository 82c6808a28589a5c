package mapgen

// Config is the closed set of map-generation thresholds from spec §6. Every
// field has a default here; a missing/zero-value field loaded from an
// external document should fall back to DefaultConfig(), never to Go's
// zero value, since e.g. a zero SeaLevel would make the whole map land.
type Config struct {
	SeaLevel       float64 `toml:"sea_level" json:"seaLevel"`
	CoastalLevel   float64 `toml:"coastal_level" json:"coastalLevel"`
	MountainLevel  float64 `toml:"mountain_level" json:"mountainLevel"`
	ElevationOffset float64 `toml:"elevation_offset" json:"elevationOffset"`

	NoiseWeight  float64 `toml:"noise_weight" json:"noiseWeight"`
	AnchorWeight float64 `toml:"anchor_weight" json:"anchorWeight"`

	Warp1Scale     float64 `toml:"warp1_scale" json:"warp1Scale"`
	Warp1Amplitude float64 `toml:"warp1_amplitude" json:"warp1Amplitude"`
	Warp2Scale     float64 `toml:"warp2_scale" json:"warp2Scale"`
	Warp2Amplitude float64 `toml:"warp2_amplitude" json:"warp2Amplitude"`

	FBMOctaves     int     `toml:"fbm_octaves" json:"fbmOctaves"`
	FBMFrequency   float64 `toml:"fbm_frequency" json:"fbmFrequency"`
	FBMPersistence float64 `toml:"fbm_persistence" json:"fbmPersistence"`

	BorderWidth float64 `toml:"border_width" json:"borderWidth"`

	AnchorMargin        float64 `toml:"anchor_margin" json:"anchorMargin"`
	AnchorMinStrength   float64 `toml:"anchor_min_strength" json:"anchorMinStrength"`
	AnchorStrengthRange float64 `toml:"anchor_strength_range" json:"anchorStrengthRange"`
	AnchorMinSigma      float64 `toml:"anchor_min_sigma" json:"anchorMinSigma"`
	AnchorSigmaRange    float64 `toml:"anchor_sigma_range" json:"anchorSigmaRange"`

	PeakAmplifyStrength float64 `toml:"peak_amplify_strength" json:"peakAmplifyStrength"`
	SubSeaPush          float64 `toml:"sub_sea_push" json:"subSeaPush"`

	RiverFlowMultiplier   float64 `toml:"river_flow_multiplier" json:"riverFlowMultiplier"`
	RiverWidenMultiplier  float64 `toml:"river_widen_multiplier" json:"riverWidenMultiplier"`

	MoistureInfluenceRadius int     `toml:"moisture_influence_radius" json:"moistureInfluenceRadius"`
	RainShadowDecay         float64 `toml:"rain_shadow_decay" json:"rainShadowDecay"`
	MoistureSmoothPasses    int     `toml:"moisture_smooth_passes" json:"moistureSmoothPasses"`

	NumBlobs int `toml:"num_blobs" json:"numBlobs"`
}

// DefaultConfig returns the §6 defaults.
func DefaultConfig() Config {
	return Config{
		SeaLevel:        0.35,
		CoastalLevel:    0.40,
		MountainLevel:   0.85,
		ElevationOffset: 0.40,

		NoiseWeight:  0.6,
		AnchorWeight: 0.4,

		Warp1Scale:     0.003,
		Warp1Amplitude: 40,
		Warp2Scale:     0.006,
		Warp2Amplitude: 20,

		FBMOctaves:     6,
		FBMFrequency:   0.008,
		FBMPersistence: 0.5,

		BorderWidth: 0.18,

		AnchorMargin:        0.15,
		AnchorMinStrength:   0.4,
		AnchorStrengthRange: 0.35,
		AnchorMinSigma:      0.15,
		AnchorSigmaRange:    0.12,

		PeakAmplifyStrength: 0.8,
		SubSeaPush:          0.6,

		RiverFlowMultiplier:  0.12,
		RiverWidenMultiplier: 4,

		MoistureInfluenceRadius: 15,
		RainShadowDecay:         0.92,
		MoistureSmoothPasses:    3,

		NumBlobs: 5,
	}
}

// WithDefaults fills any zero-valued field of cfg from DefaultConfig. This
// is how a partially-specified config document (e.g. decoded from TOML/JSON
// where the caller only overrode a handful of knobs) is normalized before
// generation runs.
func (cfg Config) WithDefaults() Config {
	d := DefaultConfig()
	if cfg.SeaLevel == 0 {
		cfg.SeaLevel = d.SeaLevel
	}
	if cfg.CoastalLevel == 0 {
		cfg.CoastalLevel = d.CoastalLevel
	}
	if cfg.MountainLevel == 0 {
		cfg.MountainLevel = d.MountainLevel
	}
	if cfg.ElevationOffset == 0 {
		cfg.ElevationOffset = d.ElevationOffset
	}
	if cfg.NoiseWeight == 0 {
		cfg.NoiseWeight = d.NoiseWeight
	}
	if cfg.AnchorWeight == 0 {
		cfg.AnchorWeight = d.AnchorWeight
	}
	if cfg.Warp1Scale == 0 {
		cfg.Warp1Scale = d.Warp1Scale
	}
	if cfg.Warp1Amplitude == 0 {
		cfg.Warp1Amplitude = d.Warp1Amplitude
	}
	if cfg.Warp2Scale == 0 {
		cfg.Warp2Scale = d.Warp2Scale
	}
	if cfg.Warp2Amplitude == 0 {
		cfg.Warp2Amplitude = d.Warp2Amplitude
	}
	if cfg.FBMOctaves == 0 {
		cfg.FBMOctaves = d.FBMOctaves
	}
	if cfg.FBMFrequency == 0 {
		cfg.FBMFrequency = d.FBMFrequency
	}
	if cfg.FBMPersistence == 0 {
		cfg.FBMPersistence = d.FBMPersistence
	}
	if cfg.BorderWidth == 0 {
		cfg.BorderWidth = d.BorderWidth
	}
	if cfg.AnchorMargin == 0 {
		cfg.AnchorMargin = d.AnchorMargin
	}
	if cfg.AnchorMinStrength == 0 {
		cfg.AnchorMinStrength = d.AnchorMinStrength
	}
	if cfg.AnchorStrengthRange == 0 {
		cfg.AnchorStrengthRange = d.AnchorStrengthRange
	}
	if cfg.AnchorMinSigma == 0 {
		cfg.AnchorMinSigma = d.AnchorMinSigma
	}
	if cfg.AnchorSigmaRange == 0 {
		cfg.AnchorSigmaRange = d.AnchorSigmaRange
	}
	if cfg.PeakAmplifyStrength == 0 {
		cfg.PeakAmplifyStrength = d.PeakAmplifyStrength
	}
	if cfg.SubSeaPush == 0 {
		cfg.SubSeaPush = d.SubSeaPush
	}
	if cfg.RiverFlowMultiplier == 0 {
		cfg.RiverFlowMultiplier = d.RiverFlowMultiplier
	}
	if cfg.RiverWidenMultiplier == 0 {
		cfg.RiverWidenMultiplier = d.RiverWidenMultiplier
	}
	if cfg.MoistureInfluenceRadius == 0 {
		cfg.MoistureInfluenceRadius = d.MoistureInfluenceRadius
	}
	if cfg.RainShadowDecay == 0 {
		cfg.RainShadowDecay = d.RainShadowDecay
	}
	if cfg.MoistureSmoothPasses == 0 {
		cfg.MoistureSmoothPasses = d.MoistureSmoothPasses
	}
	if cfg.NumBlobs == 0 {
		cfg.NumBlobs = d.NumBlobs
	}
	return cfg
}
