// Package scene builds a ready-to-step Simulation from configuration.
package scene

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/swarmsim/internal/config"
	"github.com/san-kum/swarmsim/internal/kinds"
	"github.com/san-kum/swarmsim/internal/noise"
	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

type Scene struct {
	Sim      *sim.Simulation
	Config   *config.Config
	Emitters []*Emitter
}

// Build creates the worlds and initial population described by cfg. The
// same config and seed always produce the same scene.
func Build(cfg *config.Config, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := kinds.NewRegistry(kinds.Deps{
		Noise: noise.NewSimplex(cfg.Seed),
		Rand:  rand.New(rand.NewSource(cfg.Seed + 1)),
	})
	if err != nil {
		return nil, err
	}

	s := sim.New(sim.Config{
		Seed:        cfg.Seed,
		ZSort:       cfg.ZSort,
		TotalFrames: cfg.Frames,
		Registry:    reg,
		Logger:      log,
	})

	for _, wc := range cfg.Worlds {
		if _, err := s.AddWorld(worldOptions(wc)); err != nil {
			return nil, fmt.Errorf("scene: world %q: %w", wc.Name, err)
		}
	}

	sc := &Scene{Sim: s, Config: cfg}
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i, sp := range cfg.Spawns {
		w := s.World(sp.World)
		if sp.World == "" {
			w = s.Worlds()[0]
		}
		for n := 0; n < sp.Count; n++ {
			if _, err := Spawn(s, w, sp, rng); err != nil {
				return nil, fmt.Errorf("scene: spawn %d: %w", i, err)
			}
		}
		if sp.Emit > 0 {
			em := &Emitter{World: w, Spawn: sp, rng: rng}
			sc.Emitters = append(sc.Emitters, em)
			s.AddObserver(em)
		}
	}

	log.Info("scene built",
		zap.String("name", cfg.Name),
		zap.Int64("seed", cfg.Seed),
		zap.Int("worlds", len(s.Worlds())),
		zap.Int("entities", s.Count()),
		zap.Int("emitters", len(sc.Emitters)),
	)
	return sc, nil
}

func worldOptions(wc config.WorldConfig) sim.WorldOptions {
	opts := sim.WorldOptions{
		Name:       wc.Name,
		Width:      wc.Width,
		Height:     wc.Height,
		Friction:   wc.Friction,
		Boundary:   sim.ParseBoundary(wc.Boundary),
		ColorMode:  sim.ColorMode(wc.ColorMode),
		Resolution: wc.Resolution,
	}
	if len(wc.Gravity) == 2 {
		g := vector.New(wc.Gravity[0], wc.Gravity[1])
		opts.Gravity = &g
	}
	return opts
}

// Spawn adds one entity described by sp to w, drawing placement and
// velocity jitter from rng.
func Spawn(s *sim.Simulation, w *sim.World, sp config.SpawnConfig, rng *rand.Rand) (*sim.Entity, error) {
	return s.Add(sp.Kind, w, sim.Params(sp.Params), options(w, sp, rng)...)
}

func options(w *sim.World, sp config.SpawnConfig, rng *rand.Rand) []sim.Option {
	var loc vector.Vector
	if len(sp.Location) == 2 {
		loc = vector.New(sp.Location[0], sp.Location[1]).Add(inDisk(rng, sp.Spread))
	} else {
		loc = vector.New(rng.Float64()*w.Width, rng.Float64()*w.Height)
	}
	opts := []sim.Option{sim.WithLocation(loc)}

	var vel vector.Vector
	if len(sp.Velocity) == 2 {
		vel = vector.New(sp.Velocity[0], sp.Velocity[1])
	}
	if sp.Jitter > 0 {
		vel.AddIn(inDisk(rng, sp.Jitter))
	}
	if !vel.IsZero() {
		opts = append(opts, sim.WithVelocity(vel))
	}

	if sp.Lifespan != nil {
		opts = append(opts, sim.WithLifespan(*sp.Lifespan))
	}
	if sp.Boundary != "" {
		opts = append(opts, sim.WithBoundary(sim.ParseBoundary(sp.Boundary)))
	}
	if sp.ColorMode != "" {
		opts = append(opts, sim.WithColorMode(sim.ColorMode(sp.ColorMode)))
	}
	if len(sp.Color) == 3 {
		opts = append(opts, sim.WithColor([3]uint8{uint8(sp.Color[0]), uint8(sp.Color[1]), uint8(sp.Color[2])}))
	}
	if len(sp.HSL) == 3 {
		opts = append(opts, sim.WithHSL(sp.HSL[0], sp.HSL[1], sp.HSL[2]))
	}
	if sp.ZIndex != 0 {
		opts = append(opts, sim.WithZIndex(sp.ZIndex))
	}
	if sp.Camera {
		opts = append(opts, sim.WithControlCamera())
	}
	return opts
}

// inDisk returns a uniform random point in a disk of radius r.
func inDisk(rng *rand.Rand, r float64) vector.Vector {
	if r <= 0 {
		return vector.Vector{}
	}
	rad := r * math.Sqrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	return vector.New(rad*math.Cos(theta), rad*math.Sin(theta))
}

var _ sim.Observer = (*Emitter)(nil)

// Emitter spawns Spawn.Emit entities after every frame.
type Emitter struct {
	World *sim.World
	Spawn config.SpawnConfig

	rng     *rand.Rand
	emitted int
}

func (em *Emitter) OnFrame(s *sim.Simulation) error {
	if em.World.Paused {
		return nil
	}
	for i := 0; i < em.Spawn.Emit; i++ {
		if _, err := Spawn(s, em.World, em.Spawn, em.rng); err != nil {
			return err
		}
		em.emitted++
	}
	return nil
}

func (em *Emitter) Emitted() int { return em.emitted }
