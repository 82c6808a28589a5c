// Package config loads server configuration from a TOML file with
// built-in defaults for every key (§6's "any missing key must fall back
// to the default"), then applies environment-variable overrides for the
// handful of values operators commonly need to flip per-deploy.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/nation"
)

// Config is the server's full closed configuration set.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Map      mapgen.Config  `toml:"map"`
	Gameplay nation.GameplayConfig `toml:"gameplay"`
	Store    StoreConfig    `toml:"store"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig is transport and scheduling configuration.
type ServerConfig struct {
	BindAddress     string        `toml:"bind_address"`
	EnableCORS      bool          `toml:"enable_cors"`
	TickPeriod      time.Duration `toml:"tick_period"`
	IdleRoomTTL     time.Duration `toml:"idle_room_ttl"`
	IdleSweepPeriod time.Duration `toml:"idle_sweep_period"`
	ResetOnBoot     bool          `toml:"reset_on_boot"`
	ClearRooms      bool          `toml:"clear_rooms"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver string `toml:"driver"` // "memory" (default) or "postgres"
	DSN    string `toml:"dsn"`
}

// LoggingConfig controls the zap logger's verbosity and encoding.
type LoggingConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "json" or "console"
}

// Load reads and parses the TOML file at path, starting from defaults()
// so any field the file omits keeps its default, then applies
// environment-variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.Map = cfg.Map.WithDefaults()
	cfg.Gameplay = cfg.Gameplay.WithDefaults()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:     "0.0.0.0:8080",
			EnableCORS:      true,
			TickPeriod:      100 * time.Millisecond,
			IdleRoomTTL:     10 * time.Minute,
			IdleSweepPeriod: 30 * time.Second,
		},
		Map:      mapgen.DefaultConfig(),
		Gameplay: nation.DefaultGameplayConfig(),
		Store: StoreConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// applyEnvOverrides applies the environment toggles named in §6: boot-time
// reset, clear-rooms, idle TTL/sweep interval, and a tick-period override.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HISTORYENGINE_RESET_ON_BOOT"); v == "true" {
		cfg.Server.ResetOnBoot = true
	}
	if v := os.Getenv("HISTORYENGINE_CLEAR_ROOMS"); v == "true" {
		cfg.Server.ClearRooms = true
	}
	if v := os.Getenv("HISTORYENGINE_IDLE_ROOM_TTL_MS"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			cfg.Server.IdleRoomTTL = ms
		}
	}
	if v := os.Getenv("HISTORYENGINE_IDLE_SWEEP_INTERVAL_MS"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			cfg.Server.IdleSweepPeriod = ms
		}
	}
	if v := os.Getenv("HISTORYENGINE_TICK_PERIOD_MS"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			cfg.Server.TickPeriod = ms
		}
	}
	if v := os.Getenv("HISTORYENGINE_BIND_ADDRESS"); v != "" {
		cfg.Server.BindAddress = v
	}
	if v := os.Getenv("HISTORYENGINE_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
		cfg.Store.Driver = "postgres"
	}
}
