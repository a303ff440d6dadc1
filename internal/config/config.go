package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmsim/internal/logging"
	"github.com/san-kum/swarmsim/internal/record"
	"github.com/san-kum/swarmsim/internal/sim"
)

const (
	DefaultFrames     = 600
	DefaultFPS        = 30
	DefaultWidth      = 400.0
	DefaultHeight     = 300.0
	DefaultStatsEvery = 10
	DefaultDataDir    = "data"
	DefaultPrecision  = 4
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name       string         `yaml:"name" toml:"name"`
	Seed       int64          `yaml:"seed" toml:"seed"`
	Frames     int            `yaml:"frames" toml:"frames"`
	FPS        int            `yaml:"fps" toml:"fps"`
	ZSort      bool           `yaml:"zsort" toml:"zsort"`
	StatsEvery int            `yaml:"stats_every" toml:"stats_every"`
	DataDir    string         `yaml:"data_dir" toml:"data_dir"`
	Worlds     []WorldConfig  `yaml:"worlds" toml:"worlds"`
	Spawns     []SpawnConfig  `yaml:"spawns" toml:"spawns"`
	Record     RecordConfig   `yaml:"record" toml:"record"`
	Logging    logging.Config `yaml:"logging" toml:"logging"`
}

type WorldConfig struct {
	Name       string    `yaml:"name" toml:"name"`
	Width      float64   `yaml:"width" toml:"width"`
	Height     float64   `yaml:"height" toml:"height"`
	Gravity    []float64 `yaml:"gravity,omitempty" toml:"gravity,omitempty"`
	Friction   *float64  `yaml:"friction,omitempty" toml:"friction,omitempty"`
	Boundary   string    `yaml:"boundary,omitempty" toml:"boundary,omitempty"`
	ColorMode  string    `yaml:"color_mode,omitempty" toml:"color_mode,omitempty"`
	Resolution float64   `yaml:"resolution,omitempty" toml:"resolution,omitempty"`
}

// SpawnConfig places Count entities of Kind at start. Without a Location
// they are scattered uniformly over the world; with one, Spread is the
// scatter radius around it. Emit adds that many more every frame.
type SpawnConfig struct {
	Kind      string             `yaml:"kind" toml:"kind"`
	World     string             `yaml:"world,omitempty" toml:"world,omitempty"`
	Count     int                `yaml:"count" toml:"count"`
	Emit      int                `yaml:"emit,omitempty" toml:"emit,omitempty"`
	Location  []float64          `yaml:"location,omitempty" toml:"location,omitempty"`
	Spread    float64            `yaml:"spread,omitempty" toml:"spread,omitempty"`
	Velocity  []float64          `yaml:"velocity,omitempty" toml:"velocity,omitempty"`
	Jitter    float64            `yaml:"jitter,omitempty" toml:"jitter,omitempty"`
	Lifespan  *int               `yaml:"lifespan,omitempty" toml:"lifespan,omitempty"`
	Boundary  string             `yaml:"boundary,omitempty" toml:"boundary,omitempty"`
	ColorMode string             `yaml:"color_mode,omitempty" toml:"color_mode,omitempty"`
	Color     []int              `yaml:"color,omitempty" toml:"color,omitempty"`
	HSL       []float64          `yaml:"hsl,omitempty" toml:"hsl,omitempty"`
	ZIndex    int                `yaml:"z_index,omitempty" toml:"z_index,omitempty"`
	Camera    bool               `yaml:"camera,omitempty" toml:"camera,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty" toml:"params,omitempty"`
}

type RecordConfig struct {
	Enabled     bool     `yaml:"enabled" toml:"enabled"`
	Start       int      `yaml:"start" toml:"start"`
	End         int      `yaml:"end" toml:"end"`
	Precision   int      `yaml:"precision" toml:"precision"`
	ItemFields  []string `yaml:"item_fields,omitempty" toml:"item_fields,omitempty"`
	WorldFields []string `yaml:"world_fields,omitempty" toml:"world_fields,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Seed:       1,
		Frames:     DefaultFrames,
		FPS:        DefaultFPS,
		StatsEvery: DefaultStatsEvery,
		DataDir:    DefaultDataDir,
		Worlds: []WorldConfig{
			{Name: "main", Width: DefaultWidth, Height: DefaultHeight},
		},
		Spawns: []SpawnConfig{
			{Kind: "Mover", Count: 20},
		},
		Record: RecordConfig{
			Start:     0,
			End:       -1,
			Precision: DefaultPrecision,
		},
		Logging: logging.DefaultConfig(),
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads YAML, or TOML when the extension is .toml, over the defaults.
// Worlds and spawns given in the file replace the default lists whole.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	worlds, spawns := cfg.Worlds, cfg.Spawns
	cfg.Worlds, cfg.Spawns = nil, nil
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if cfg.Worlds == nil {
		cfg.Worlds = worlds
	}
	if cfg.Spawns == nil {
		cfg.Spawns = spawns
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	if c.Frames < 0 {
		return invalid("frames must not be negative")
	}
	if c.FPS <= 0 {
		return invalid("fps must be positive")
	}
	if c.StatsEvery < 0 {
		return invalid("stats_every must not be negative")
	}
	if len(c.Worlds) == 0 {
		return invalid("at least one world is required")
	}

	names := make(map[string]bool, len(c.Worlds))
	for i, w := range c.Worlds {
		if w.Name == "" {
			return invalid("world %d has no name", i)
		}
		if names[w.Name] {
			return invalid("duplicate world %q", w.Name)
		}
		names[w.Name] = true
		if w.Width <= 0 || w.Height <= 0 {
			return invalid("world %q needs positive dimensions", w.Name)
		}
		if w.Gravity != nil && len(w.Gravity) != 2 {
			return invalid("world %q gravity must be [x, y]", w.Name)
		}
		if !validBoundary(w.Boundary) {
			return invalid("world %q: unknown boundary %q", w.Name, w.Boundary)
		}
		if !validMode(w.ColorMode) {
			return invalid("world %q: unknown color mode %q", w.Name, w.ColorMode)
		}
	}

	for i, s := range c.Spawns {
		if s.World != "" && !names[s.World] {
			return invalid("spawn %d: unknown world %q", i, s.World)
		}
		if s.Count < 0 || s.Emit < 0 {
			return invalid("spawn %d: counts must not be negative", i)
		}
		if s.Location != nil && len(s.Location) != 2 {
			return invalid("spawn %d: location must be [x, y]", i)
		}
		if s.Velocity != nil && len(s.Velocity) != 2 {
			return invalid("spawn %d: velocity must be [x, y]", i)
		}
		if s.Color != nil && len(s.Color) != 3 {
			return invalid("spawn %d: color must be [r, g, b]", i)
		}
		for _, v := range s.Color {
			if v < 0 || v > 255 {
				return invalid("spawn %d: color component %d out of range", i, v)
			}
		}
		if s.HSL != nil && len(s.HSL) != 3 {
			return invalid("spawn %d: hsl must be [h, s, l]", i)
		}
		if !validBoundary(s.Boundary) {
			return invalid("spawn %d: unknown boundary %q", i, s.Boundary)
		}
		if !validMode(s.ColorMode) {
			return invalid("spawn %d: unknown color mode %q", i, s.ColorMode)
		}
	}

	r := c.Record
	if r.Enabled {
		if r.Start < 0 {
			return invalid("record start must not be negative")
		}
		if r.End >= 0 && r.End < r.Start {
			return invalid("record end %d before start %d", r.End, r.Start)
		}
		for _, f := range r.ItemFields {
			if !slices.Contains(record.ItemFields, f) {
				return invalid("unknown record item field %q", f)
			}
		}
		for _, f := range r.WorldFields {
			if !slices.Contains(record.WorldFields, f) {
				return invalid("unknown record world field %q", f)
			}
		}
	}
	return nil
}

func validMode(m string) bool {
	switch sim.ColorMode(m) {
	case "", sim.ColorRGB, sim.ColorHSL:
		return true
	}
	return false
}

func validBoundary(b string) bool {
	return b == "" || b == "inherit" || sim.ParseBoundary(b) != sim.BoundaryInherit
}
