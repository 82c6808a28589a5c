package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.TickPeriod != 100*time.Millisecond {
		t.Fatalf("unexpected default tick period: %v", cfg.Server.TickPeriod)
	}
	if cfg.Map.SeaLevel != 0.35 {
		t.Fatalf("unexpected default sea level: %v", cfg.Map.SeaLevel)
	}
	if cfg.Gameplay.WinConditionPercentage != 75 {
		t.Fatalf("unexpected default win condition: %v", cfg.Gameplay.WinConditionPercentage)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("unexpected default store driver: %q", cfg.Store.Driver)
	}
}

func TestLoadMissingKeyFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	// Only override one nested field; everything else (including the rest
	// of [map]) must still come from the default.
	if err := os.WriteFile(path, []byte("[map]\nsea_level = 0.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Map.SeaLevel != 0.5 {
		t.Fatalf("expected overridden sea level 0.5, got %v", cfg.Map.SeaLevel)
	}
	if cfg.Map.CoastalLevel != 0.40 {
		t.Fatalf("expected default coastal level to survive, got %v", cfg.Map.CoastalLevel)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv("HISTORYENGINE_TICK_PERIOD_MS", "50")
	t.Setenv("HISTORYENGINE_RESET_ON_BOOT", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.TickPeriod != 50*time.Millisecond {
		t.Fatalf("expected tick period override, got %v", cfg.Server.TickPeriod)
	}
	if !cfg.Server.ResetOnBoot {
		t.Fatalf("expected reset-on-boot override to apply")
	}
}
