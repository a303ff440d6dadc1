package config

import "sort"

func intp(v int) *int { return &v }

func preset(name string, worlds []WorldConfig, spawns ...SpawnConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	if worlds != nil {
		cfg.Worlds = worlds
	}
	cfg.Spawns = spawns
	return cfg
}

// Presets build a fresh Config on every call so callers may modify it.
var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"flocking": func() *Config {
		return preset("flocking",
			[]WorldConfig{{Name: "main", Width: 400, Height: 300, Boundary: "wrap"}},
			SpawnConfig{
				Kind: "Flocker", Count: 120, Jitter: 3,
				Params: map[string]float64{"seek_pointer": 1, "seek_strength": 0.05},
			},
		)
	},
	"walkers": func() *Config {
		cfg := preset("walkers", nil,
			SpawnConfig{Kind: "Walker", Count: 40, Params: map[string]float64{"avoid_edges": 20}},
			SpawnConfig{Kind: "Walker", Count: 10, Params: map[string]float64{"random": 1}},
			SpawnConfig{Kind: "Dragger", Count: 1, Location: []float64{200, 150}},
		)
		cfg.Frames = 1200
		return cfg
	},
	"seekers": func() *Config {
		return preset("seekers", nil,
			SpawnConfig{Kind: "Attractor", Count: 1, Location: []float64{200, 150}, Params: map[string]float64{"G": 0.5}},
			SpawnConfig{Kind: "Seeker", Count: 25, Jitter: 2},
		)
	},
	"repellers": func() *Config {
		return preset("repellers",
			[]WorldConfig{{Name: "main", Width: 400, Height: 300, Gravity: []float64{0, 0.05}}},
			SpawnConfig{Kind: "Repeller", Count: 3, Location: []float64{200, 200}, Spread: 120},
			SpawnConfig{Kind: "Mover", Count: 60, Location: []float64{200, 20}, Spread: 150, ColorMode: "hsl", HSL: []float64{200, 0.8, 0.6}},
		)
	},
	"fountain": func() *Config {
		cfg := preset("fountain",
			[]WorldConfig{{Name: "main", Width: 400, Height: 300, Gravity: []float64{0, 0.15}, Boundary: "none"}},
			SpawnConfig{
				Kind: "Particle", Emit: 3,
				Location: []float64{200, 290}, Velocity: []float64{0, -6}, Jitter: 1.5,
				Lifespan: intp(80),
			},
			SpawnConfig{Kind: "Dragger", Count: 1, Location: []float64{200, 120}, Params: map[string]float64{"size": 120, "c": 0.05}},
		)
		cfg.ZSort = true
		return cfg
	},
	"orbit": func() *Config {
		return preset("orbit",
			[]WorldConfig{{Name: "main", Width: 400, Height: 300, Gravity: []float64{0, 0}, Friction: new(float64)}},
			SpawnConfig{Kind: "Attractor", Count: 1, Location: []float64{200, 150}, Params: map[string]float64{"G": 0.4}},
			SpawnConfig{Kind: "Mover", Count: 30, Velocity: []float64{0, 0}, Jitter: 2, Params: map[string]float64{"max_speed": 6}},
		)
	},
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
