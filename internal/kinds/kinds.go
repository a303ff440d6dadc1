// Package kinds registers the built-in entity kinds.
package kinds

import (
	"math/rand"

	"github.com/san-kum/swarmsim/internal/noise"
	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/steer"
)

const (
	Item      = sim.DefaultKind
	Mover     = "Mover"
	Flocker   = "Flocker"
	Walker    = "Walker"
	Seeker    = "Seeker"
	Attractor = "Attractor"
	Repeller  = "Repeller"
	Dragger   = "Dragger"
	Particle  = "Particle"
)

// Deps are the shared sources a factory may draw from.
type Deps struct {
	Noise noise.Source
	Rand  *rand.Rand
}

// Register installs every built-in kind into reg.
func Register(reg *sim.Registry, deps Deps) error {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(1))
	}
	if deps.Noise == nil {
		deps.Noise = noise.NewSimplex(deps.Rand.Int63())
	}

	factories := map[string]sim.Factory{
		Item:      item,
		Mover:     mover,
		Flocker:   flocker,
		Walker:    walker(deps),
		Seeker:    seeker,
		Attractor: attractor,
		Repeller:  repeller,
		Dragger:   dragger,
		Particle:  particle,
	}
	for name, f := range factories {
		if err := reg.Register(name, f); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with the built-in kinds installed.
func NewRegistry(deps Deps) (*sim.Registry, error) {
	reg := sim.NewRegistry()
	if err := Register(reg, deps); err != nil {
		return nil, err
	}
	return reg, nil
}

// fields makes e respond to attractors, repellers and drag fields.
func fields(e *sim.Entity, p sim.Params) {
	e.Attach(
		steer.Attraction{Kinds: []string{Attractor, Repeller}, Range: p.Get("field_range", 0)},
		steer.DragFields{Kinds: []string{Dragger}},
	)
}

func item(e *sim.Entity, p sim.Params) {
	e.Width = p.Get("width", 0)
	e.Height = p.Get("height", e.Width)
}

func mover(e *sim.Entity, p sim.Params) {
	e.Width = p.Get("width", 10)
	e.Height = p.Get("height", e.Width)
	e.MaxSpeed = p.Get("max_speed", 5)
	e.PointToDirection = true
	fields(e, p)
}

func flocker(e *sim.Entity, p sim.Params) {
	e.Width = p.Get("width", 4)
	e.Height = p.Get("height", e.Width)
	e.MaxSpeed = p.Get("max_speed", 3)
	e.MaxSteeringForce = p.Get("max_steering_force", 0.5)
	e.Mass = p.Get("mass", 1)
	e.PointToDirection = true
	e.NoGravity = p.Get("gravity", 0) == 0
	e.NoFriction = true
	e.Color = [3]uint8{120, 200, 255}

	f := steer.NewFlock(e.Width)
	f.SeparateRadius = p.Get("separation", f.SeparateRadius)
	f.AlignRadius = p.Get("align_radius", f.AlignRadius)
	f.CohesionRadius = p.Get("cohesion_radius", f.CohesionRadius)
	f.SeparateStrength = p.Get("separate_strength", f.SeparateStrength)
	f.AlignStrength = p.Get("align_strength", f.AlignStrength)
	f.CohesionStrength = p.Get("cohesion_strength", f.CohesionStrength)
	e.Attach(f)

	if p.Get("seek_pointer", 0) != 0 {
		e.Attach(steer.SeekBehavior{
			Target:     steer.PointerTarget(),
			SlowRadius: p.Get("slow_radius", 0),
			Strength:   p.Get("seek_strength", 0.1),
		})
	}
	if margin := p.Get("avoid_edges", 0); margin > 0 {
		e.Attach(steer.EdgeAvoid{Margin: margin})
	}
	fields(e, p)
}

func walker(deps Deps) sim.Factory {
	return func(e *sim.Entity, p sim.Params) {
		e.Width = p.Get("width", 2)
		e.Height = p.Get("height", e.Width)
		e.MaxSpeed = p.Get("max_speed", 1)
		e.NoGravity = true
		e.NoFriction = true
		e.Color = [3]uint8{255, 180, 90}

		if p.Get("random", 0) != 0 {
			e.Attach(steer.RandomWalk{
				Radius:     p.Get("random_radius", steer.DefaultWalkRadius),
				SlowRadius: p.Get("slow_radius", 0),
			})
		} else {
			w := steer.NewWander(deps.Noise, deps.Rand.Float64()*10000, deps.Rand.Float64()*10000)
			w.Speed = p.Get("noise_speed", w.Speed)
			a := p.Get("noise_accel", steer.DefaultWanderAccel)
			w.Low, w.High = -a, a
			e.Attach(w)
		}
		if margin := p.Get("avoid_edges", 0); margin > 0 {
			e.Attach(steer.EdgeAvoid{Margin: margin})
		}
	}
}

func seeker(e *sim.Entity, p sim.Params) {
	e.Width = p.Get("width", 6)
	e.Height = p.Get("height", e.Width)
	e.MaxSpeed = p.Get("max_speed", 4)
	e.MaxSteeringForce = p.Get("max_steering_force", 1)
	e.PointToDirection = true
	e.NoGravity = true
	e.Color = [3]uint8{255, 90, 120}

	target := steer.Nearest(Attractor)
	if p.Get("seek_pointer", 0) != 0 {
		target = steer.PointerTarget()
	}
	e.Attach(steer.SeekBehavior{Target: target, SlowRadius: p.Get("slow_radius", 0)})
}

func attractor(e *sim.Entity, p sim.Params) {
	e.Static = true
	e.Mass = p.Get("mass", 1000)
	e.Scale = p.Get("scale", 20)
	e.Width = p.Get("width", 10)
	e.Height = e.Width
	e.Attrs["G"] = p.Get("G", 1)
	e.Color = [3]uint8{90, 255, 140}
	e.ZIndex = 1
}

func repeller(e *sim.Entity, p sim.Params) {
	e.Static = true
	e.Mass = p.Get("mass", 1000)
	e.Scale = p.Get("scale", 20)
	e.Width = p.Get("width", 10)
	e.Height = e.Width
	e.Attrs["G"] = p.Get("G", -10)
	e.Color = [3]uint8{250, 105, 0}
	e.ZIndex = 1
}

func dragger(e *sim.Entity, p sim.Params) {
	e.Static = true
	e.Width = p.Get("size", 80)
	e.Height = e.Width
	e.Attrs["c"] = p.Get("c", 0.1)
	e.Opacity = p.Get("opacity", 0.3)
	e.Color = [3]uint8{60, 90, 200}
	e.ZIndex = -1
}

// particle fades out linearly over its lifespan.
func particle(e *sim.Entity, p sim.Params) {
	e.Width = p.Get("width", 1)
	e.Height = e.Width
	e.Mass = p.Get("mass", 1)
	e.Lifespan = int(p.Get("lifespan", 60))
	e.NoFriction = p.Get("friction", 0) == 0
	e.Boundary = sim.BoundaryNone
	fields(e, p)
	e.AfterStep = func(pe *sim.Entity) {
		if pe.Lifespan > 0 {
			pe.Opacity = 1 - float64(pe.Life)/float64(pe.Lifespan)
		}
	}
}
