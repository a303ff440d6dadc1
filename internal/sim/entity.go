package sim

import (
	"github.com/san-kum/swarmsim/internal/vector"
)

// Defaults applied to every entity before its kind factory runs.
const (
	DefaultMass             = 10.0
	DefaultMaxSpeed         = 10.0
	DefaultMaxSteeringForce = 10.0
	DefaultBounciness       = 0.5
	DefaultLifespan         = -1

	headingEpsilon = 1e-3
)

var DefaultColor = [3]uint8{200, 200, 200}

// Entity is a simulated point mass. Every kind shares the same integration
// step; kinds differ only in the Behaviors attached by their factory.
type Entity struct {
	ID     uint64
	Name   string
	World  *World
	handle Handle

	Location     vector.Vector
	Velocity     vector.Vector
	Acceleration vector.Vector

	Mass             float64
	MaxSpeed         float64
	MinSpeed         float64
	MaxSteeringForce float64

	Life     int
	Lifespan int

	Boundary   Boundary
	Bounciness float64

	Width  float64
	Height float64
	Scale  float64
	Angle  float64

	Static           bool
	PointToDirection bool
	NoGravity        bool
	NoFriction       bool
	ControlCamera    bool

	// Parent attaches the entity rigidly at Offset, rotated by the
	// parent's Angle.
	Parent Handle
	Offset vector.Vector

	Visible    bool
	Opacity    float64
	Blur       float64
	ColorMode  ColorMode
	Color      [3]uint8
	Hue        float64
	Saturation float64
	Lightness  float64
	ZIndex     int

	Behaviors []Behavior
	Attrs     Params

	BeforeStep func(*Entity)
	AfterStep  func(*Entity)

	live    bool
	stepped int
}

func (e *Entity) Handle() Handle { return e.handle }
func (e *Entity) Live() bool     { return e.live }

// ApplyForce accumulates f / Mass into the acceleration.
func (e *Entity) ApplyForce(f vector.Vector) {
	if e.Mass == 0 {
		return
	}
	e.Acceleration.AddIn(f.Div(e.Mass))
}

// Attach adds behaviors to the entity.
func (e *Entity) Attach(b ...Behavior) {
	e.Behaviors = append(e.Behaviors, b...)
}

// BoundaryPolicy resolves inheritance against the owning world.
func (e *Entity) BoundaryPolicy() Boundary {
	if e.Boundary != BoundaryInherit {
		return e.Boundary
	}
	if e.World == nil {
		return BoundaryNone
	}
	return e.World.Boundary
}

func (e *Entity) colorMode() ColorMode {
	if e.ColorMode != "" {
		return e.ColorMode
	}
	if e.World != nil {
		return e.World.ColorMode
	}
	return ColorRGB
}

// reset restores every field to its default. The slot's behaviors slice
// is reused to avoid reallocating on recycle.
func (e *Entity) reset(w *World) {
	behaviors := e.Behaviors[:0]
	for i := range e.Behaviors {
		e.Behaviors[i] = nil
	}
	*e = Entity{
		World:            w,
		Mass:             DefaultMass,
		MaxSpeed:         DefaultMaxSpeed,
		MaxSteeringForce: DefaultMaxSteeringForce,
		Lifespan:         DefaultLifespan,
		Bounciness:       DefaultBounciness,
		Scale:            1,
		Visible:          true,
		Opacity:          1,
		Color:            DefaultColor,
		Behaviors:        behaviors,
		Attrs:            Params{},
		stepped:          -1,
	}
}

func (e *Entity) drawable() Drawable {
	return Drawable{
		EntityID:   e.ID,
		Kind:       e.Name,
		Location:   e.Location,
		Angle:      e.Angle,
		Width:      e.Width,
		Height:     e.Height,
		Scale:      e.Scale,
		Opacity:    e.Opacity,
		Blur:       e.Blur,
		ColorMode:  e.colorMode(),
		Color:      e.Color,
		Hue:        e.Hue,
		Saturation: e.Saturation,
		Lightness:  e.Lightness,
		ZIndex:     e.ZIndex,
	}
}

// Option overrides entity fields after the kind factory has run.
type Option func(*Entity)

func WithLocation(v vector.Vector) Option { return func(e *Entity) { e.Location = v } }
func WithVelocity(v vector.Vector) Option { return func(e *Entity) { e.Velocity = v } }
func WithMass(m float64) Option           { return func(e *Entity) { e.Mass = m } }
func WithLife(life int) Option            { return func(e *Entity) { e.Life = life } }
func WithLifespan(n int) Option           { return func(e *Entity) { e.Lifespan = n } }
func WithBoundary(b Boundary) Option      { return func(e *Entity) { e.Boundary = b } }
func WithBounciness(b float64) Option     { return func(e *Entity) { e.Bounciness = b } }
func WithStatic(s bool) Option            { return func(e *Entity) { e.Static = s } }
func WithZIndex(z int) Option             { return func(e *Entity) { e.ZIndex = z } }
func WithColor(c [3]uint8) Option         { return func(e *Entity) { e.Color = c } }
func WithColorMode(m ColorMode) Option    { return func(e *Entity) { e.ColorMode = m } }
func WithOpacity(o float64) Option        { return func(e *Entity) { e.Opacity = o } }
func WithScale(s float64) Option          { return func(e *Entity) { e.Scale = s } }
func WithControlCamera() Option           { return func(e *Entity) { e.ControlCamera = true } }

func WithSpeed(max, min float64) Option {
	return func(e *Entity) {
		e.MaxSpeed = max
		e.MinSpeed = min
	}
}

func WithSize(w, h float64) Option {
	return func(e *Entity) {
		e.Width = w
		e.Height = h
	}
}

func WithHSL(h, s, l float64) Option {
	return func(e *Entity) {
		e.Hue, e.Saturation, e.Lightness = h, s, l
	}
}

// WithParent attaches the entity to parent at a fixed offset.
func WithParent(parent Handle, offset vector.Vector) Option {
	return func(e *Entity) {
		e.Parent = parent
		e.Offset = offset
	}
}

func WithBehaviors(b ...Behavior) Option {
	return func(e *Entity) { e.Attach(b...) }
}

func WithAttr(key string, v float64) Option {
	return func(e *Entity) { e.Attrs[key] = v }
}

func WithHooks(before, after func(*Entity)) Option {
	return func(e *Entity) {
		e.BeforeStep = before
		e.AfterStep = after
	}
}
