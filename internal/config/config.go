// Package config loads the TOML scenario files consumed by the fog demo
// and the headless report tool. The vision library itself takes plain
// structs; this layer only exists for the two commands.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Garsondee/Fog-Sense/internal/vision"
)

type Config struct {
	Grid    GridConfig    `toml:"grid"`
	Surface SurfaceConfig `toml:"surface"`
	Sim     SimConfig     `toml:"sim"`
}

type GridConfig struct {
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	CellSize  float64 `toml:"cell_size"`
	MapWidth  float64 `toml:"map_width"`
	MapHeight float64 `toml:"map_height"`
}

type SurfaceConfig struct {
	MaxDistance  float64 `toml:"max_distance"`
	EdgeSoftness float64 `toml:"edge_softness"`
	Upscale      int     `toml:"upscale"` // integer block size per cell
}

type SimConfig struct {
	Casters      int      `toml:"casters"` // per player
	Players      []string `toml:"players"`
	Seed         int64    `toml:"seed"`
	Ticks        int      `toml:"ticks"`
	SightMin     float64  `toml:"sight_min"`
	SightMax     float64  `toml:"sight_max"`
	RemovalEvery int      `toml:"removal_every"` // 0 = never remove casters
}

// Default returns the scenario used when no config file is given:
// the reference 64x64 grid with two players.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Width: 64, Height: 64, CellSize: 2, MapWidth: 128, MapHeight: 128,
		},
		Surface: SurfaceConfig{
			MaxDistance: 2, EdgeSoftness: 1, Upscale: 4,
		},
		Sim: SimConfig{
			Casters:  4,
			Players:  []string{"red", "blue"},
			Seed:     42,
			Ticks:    600,
			SightMin: 6,
			SightMax: 14,
		},
	}
}

// Load reads and validates a scenario file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %g", c.Grid.CellSize)
	}
	if c.Surface.Upscale <= 0 {
		return fmt.Errorf("upscale must be positive, got %d", c.Surface.Upscale)
	}
	if c.Sim.Casters < 0 {
		return fmt.Errorf("casters must be non-negative, got %d", c.Sim.Casters)
	}
	if len(c.Sim.Players) == 0 {
		return fmt.Errorf("at least one player required")
	}
	if c.Sim.SightMin <= 0 || c.Sim.SightMax < c.Sim.SightMin {
		return fmt.Errorf("sight range [%g,%g] invalid", c.Sim.SightMin, c.Sim.SightMax)
	}
	return nil
}

// GridConfig converts to the vision package's grid config.
func (c *Config) GridConfig() vision.GridConfig {
	return vision.GridConfig{
		GridWidth:  c.Grid.Width,
		GridHeight: c.Grid.Height,
		CellSize:   c.Grid.CellSize,
		MapWidth:   c.Grid.MapWidth,
		MapHeight:  c.Grid.MapHeight,
	}
}

// SurfaceConfig converts to the vision package's surface config.
func (c *Config) SurfaceConfig() vision.SurfaceConfig {
	return vision.SurfaceConfig{
		GridWidth:    c.Grid.Width,
		GridHeight:   c.Grid.Height,
		CellSize:     c.Grid.CellSize,
		MaxDistance:  c.Surface.MaxDistance,
		EdgeSoftness: c.Surface.EdgeSoftness,
	}
}
