package steer

import (
	"math"

	"github.com/san-kum/swarmsim/internal/noise"
	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

// Default flocking parameters.
const (
	DefaultSeparateStrength = 0.3
	DefaultAlignStrength    = 0.2
	DefaultCohesionStrength = 0.1

	DefaultWanderSpeed = 0.005
	DefaultWanderAccel = 0.075
	DefaultWalkRadius  = 100.0
)

// Target resolves a location to steer toward.
type Target interface {
	Resolve(e *sim.Entity, ctx sim.Context) (vector.Vector, bool)
}

type fixed vector.Vector

func (f fixed) Resolve(*sim.Entity, sim.Context) (vector.Vector, bool) {
	return vector.Vector(f), true
}

// At targets a fixed location.
func At(v vector.Vector) Target { return fixed(v) }

type follow sim.Handle

func (f follow) Resolve(_ *sim.Entity, ctx sim.Context) (vector.Vector, bool) {
	t, ok := ctx.Lookup(sim.Handle(f))
	if !ok {
		return vector.Vector{}, false
	}
	return t.Location, true
}

// Follow targets a live entity. Once the entity is retired the target
// no longer resolves.
func Follow(h sim.Handle) Target { return follow(h) }

type nearest string

func (n nearest) Resolve(e *sim.Entity, ctx sim.Context) (vector.Vector, bool) {
	best := math.Inf(1)
	var loc vector.Vector
	ctx.Each(string(n), func(o *sim.Entity) {
		if o.ID == e.ID {
			return
		}
		if d := e.Location.Distance(o.Location); d < best {
			best, loc = d, o.Location
		}
	})
	return loc, !math.IsInf(best, 1)
}

// Nearest targets the closest live entity of kind.
func Nearest(kind string) Target { return nearest(kind) }

type pointer struct{}

func (pointer) Resolve(_ *sim.Entity, ctx sim.Context) (vector.Vector, bool) {
	p, ok := ctx.Pointer()
	if !ok {
		return vector.Vector{}, false
	}
	return p.Location(), true
}

// PointerTarget targets the current input sample.
func PointerTarget() Target { return pointer{} }

// SeekBehavior seeks Target with arrival. A zero SlowRadius defaults to
// half the world width; a negative one disables arrival so the entity
// seeks at full speed.
type SeekBehavior struct {
	Target     Target
	SlowRadius float64
	Strength   float64
}

func (b SeekBehavior) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	if b.Target == nil {
		return vector.Vector{}
	}
	t, ok := b.Target.Resolve(e, ctx)
	if !ok {
		return vector.Vector{}
	}
	r := b.SlowRadius
	if r == 0 {
		r = e.World.Width / 2
	}
	return Seek(e, t, r).Scale(strength(b.Strength))
}

type FleeBehavior struct {
	Threat   Target
	Radius   float64
	Strength float64
}

func (b FleeBehavior) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	if b.Threat == nil {
		return vector.Vector{}
	}
	t, ok := b.Threat.Resolve(e, ctx)
	if !ok {
		return vector.Vector{}
	}
	return Flee(e, t, b.Radius).Scale(strength(b.Strength))
}

// Flock combines separation, alignment and cohesion with same-kind
// neighbors.
type Flock struct {
	SeparateRadius   float64
	AlignRadius      float64
	CohesionRadius   float64
	SeparateStrength float64
	AlignStrength    float64
	CohesionStrength float64
}

// NewFlock returns a Flock with the default strengths. The separation
// radius is twice the entity width; align and cohesion look twice as far.
func NewFlock(width float64) Flock {
	sep := width * 2
	return Flock{
		SeparateRadius:   sep,
		AlignRadius:      sep * 2,
		CohesionRadius:   sep * 2,
		SeparateStrength: DefaultSeparateStrength,
		AlignStrength:    DefaultAlignStrength,
		CohesionStrength: DefaultCohesionStrength,
	}
}

func (f Flock) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	var sum vector.Vector
	if f.SeparateStrength != 0 {
		sum.AddIn(Separate(e, ctx, f.SeparateRadius).Scale(f.SeparateStrength))
	}
	if f.AlignStrength != 0 {
		sum.AddIn(Align(e, ctx, f.AlignRadius).Scale(f.AlignStrength))
	}
	if f.CohesionStrength != 0 {
		sum.AddIn(Cohesion(e, ctx, f.CohesionRadius).Scale(f.CohesionStrength))
	}
	return sum
}

// Attraction sums the pull of every live entity of the source kinds.
// The sign and size of G come from each source's "G" attribute. A
// positive Range ignores sources farther away.
type Attraction struct {
	Kinds []string
	Range float64
}

func (a Attraction) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	var sum vector.Vector
	for _, kind := range a.Kinds {
		ctx.Each(kind, func(src *sim.Entity) {
			if src.ID == e.ID {
				return
			}
			if a.Range > 0 && e.Location.Distance(src.Location) > a.Range {
				return
			}
			sum.AddIn(Attract(e, src, src.Attrs.Get("G", 1)))
		})
	}
	return sum
}

// DragFields applies drag from every field of the given kinds that e
// overlaps. The coefficient comes from each field's "c" attribute.
type DragFields struct {
	Kinds []string
}

func (d DragFields) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	var sum vector.Vector
	for _, kind := range d.Kinds {
		ctx.Each(kind, func(field *sim.Entity) {
			if field.ID == e.ID {
				return
			}
			if e.Location.Distance(field.Location) < field.Width*field.Scale/2 {
				sum.AddIn(Drag(e, field.Attrs.Get("c", 0.1)))
			}
		})
	}
	return sum
}

// Wander drives acceleration from two noise channels sampled along the
// frame clock. The acceleration is returned as a force scaled by mass so
// that integration reproduces it exactly.
type Wander struct {
	Noise   noise.Source
	Speed   float64
	Low     float64
	High    float64
	OffsetX float64
	OffsetY float64
}

// NewWander returns a Wander with the default time step and acceleration
// range. Distinct offsets keep the two channels uncorrelated.
func NewWander(src noise.Source, offsetX, offsetY float64) Wander {
	return Wander{
		Noise:   src,
		Speed:   DefaultWanderSpeed,
		Low:     -DefaultWanderAccel,
		High:    DefaultWanderAccel,
		OffsetX: offsetX,
		OffsetY: offsetY,
	}
}

func (w Wander) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	if w.Noise == nil {
		return vector.Vector{}
	}
	t := float64(ctx.Clock()) * w.Speed
	ax := noise.Map(w.Noise.Eval(t+w.OffsetX, 0, 0.1), -1, 1, w.Low, w.High)
	ay := noise.Map(w.Noise.Eval(t+w.OffsetY, 0, 0.1), -1, 1, w.Low, w.High)
	return vector.New(ax, ay).Scale(e.Mass)
}

// RandomWalk seeks a new random point within Radius of the entity every
// frame.
type RandomWalk struct {
	Radius     float64
	SlowRadius float64
}

func (r RandomWalk) Force(e *sim.Entity, ctx sim.Context) vector.Vector {
	rng := ctx.Rand()
	offset := vector.New(
		(rng.Float64()*2-1)*r.Radius,
		(rng.Float64()*2-1)*r.Radius,
	)
	return Seek(e, e.Location.Add(offset), r.SlowRadius)
}

type EdgeAvoid struct {
	Margin   float64
	Strength float64
}

func (a EdgeAvoid) Force(e *sim.Entity, _ sim.Context) vector.Vector {
	return AvoidEdges(e, a.Margin).Scale(strength(a.Strength))
}

func strength(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}
