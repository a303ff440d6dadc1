package sim

import (
	"math/rand"

	"github.com/san-kum/swarmsim/internal/vector"
)

// Boundary selects what happens when an entity crosses its world's extents.
type Boundary uint8

const (
	BoundaryInherit Boundary = iota
	BoundaryBounce
	BoundaryWrap
	BoundaryNone
)

func (b Boundary) String() string {
	switch b {
	case BoundaryBounce:
		return "bounce"
	case BoundaryWrap:
		return "wrap"
	case BoundaryNone:
		return "none"
	default:
		return "inherit"
	}
}

// ParseBoundary maps a config name to a Boundary. Unknown names inherit.
func ParseBoundary(name string) Boundary {
	switch name {
	case "bounce", "clamp":
		return BoundaryBounce
	case "wrap":
		return BoundaryWrap
	case "none":
		return BoundaryNone
	default:
		return BoundaryInherit
	}
}

type ColorMode string

const (
	ColorRGB ColorMode = "rgb"
	ColorHSL ColorMode = "hsl"
)

// Params carries kind-specific tuning values into a factory and serves
// as the per-entity attribute bag.
type Params map[string]float64

func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Behavior contributes one force to an entity's per-frame force sum.
// Implementations must not mutate entities other than e.
type Behavior interface {
	Force(e *Entity, ctx Context) vector.Vector
}

// BehaviorFunc adapts a plain function to Behavior.
type BehaviorFunc func(e *Entity, ctx Context) vector.Vector

func (f BehaviorFunc) Force(e *Entity, ctx Context) vector.Vector { return f(e, ctx) }

// Context is the read-only view of the simulation handed to behaviors.
type Context interface {
	Clock() int
	Live() []*Entity
	Each(kind string, fn func(*Entity))
	Lookup(h Handle) (*Entity, bool)
	Pointer() (Pointer, bool)
	Rand() *rand.Rand
}

// Pointer is an input sample already mapped into world coordinates.
type Pointer interface {
	Location() vector.Vector
	Velocity() vector.Vector
}

// Renderer receives the drawable snapshot after every step.
type Renderer interface {
	Supports(mode ColorMode) bool
	Render(snap Snapshot) error
}

// Observer is notified once per completed frame, before the clock advances.
type Observer interface {
	OnFrame(s *Simulation) error
}

type Drawable struct {
	EntityID   uint64
	Kind       string
	Location   vector.Vector
	Angle      float64
	Width      float64
	Height     float64
	Scale      float64
	Opacity    float64
	Blur       float64
	ColorMode  ColorMode
	Color      [3]uint8
	Hue        float64
	Saturation float64
	Lightness  float64
	ZIndex     int
}

type Layer struct {
	World *World
	Items []Drawable
}

type Snapshot struct {
	Frame  int
	Layers []Layer
}
