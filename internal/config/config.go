package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Sim     SimConfig     `toml:"sim"`
	Feeds   FeedsConfig   `toml:"feeds"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
}

type SimConfig struct {
	TickRate     time.Duration `toml:"tick_rate"`
	ScenarioPath string        `toml:"scenario_path"`
	ScriptsDir   string        `toml:"scripts_dir"`
	CensusEvery  uint64        `toml:"census_every"` // ticks between census reports (0 = off)
}

// FeedsConfig sets the cadence of the simulated external producers.
type FeedsConfig struct {
	SpawnInterval     time.Duration `toml:"spawn_interval"`
	TelemetryInterval time.Duration `toml:"telemetry_interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "worldsim",
		},
		Sim: SimConfig{
			TickRate:     100 * time.Millisecond,
			ScenarioPath: "data/scenario.yaml",
			ScriptsDir:   "scripts",
			CensusEvery:  25,
		},
		Feeds: FeedsConfig{
			SpawnInterval:     500 * time.Millisecond,
			TelemetryInterval: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
