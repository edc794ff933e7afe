package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim     SimConfig     `toml:"sim"`
	Pool    PoolConfig    `toml:"pool"`
	Logging LoggingConfig `toml:"logging"`
}

type SimConfig struct {
	Entities     int `toml:"entities"`       // initial particle count
	Ticks        int `toml:"ticks"`          // 0 = run until interrupted
	SpawnPerTick int `toml:"spawn_per_tick"` // particles the emitter stages each tick
	Lifetime     int `toml:"lifetime"`       // ticks before a particle expires
}

type PoolConfig struct {
	Workers       int `toml:"workers"` // 0 = GOMAXPROCS
	QueueCapacity int `toml:"queue_capacity"`
	Lanes         int `toml:"lanes"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func defaultConfig() Config {
	return Config{
		Sim: SimConfig{
			Entities:     100_000,
			Ticks:        300,
			SpawnPerTick: 500,
			Lifetime:     120,
		},
		Pool: PoolConfig{
			Workers: 0,
			Lanes:   8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
