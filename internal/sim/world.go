package sim

import (
	"fmt"

	"github.com/san-kum/swarmsim/internal/vector"
)

const (
	DefaultGravityY = 0.1
	DefaultFriction = 0.1
)

// World is a bounded simulation domain with ambient forces and its own
// pool of retired entity slots, partitioned by kind.
type World struct {
	Name       string
	Width      float64
	Height     float64
	Gravity    vector.Vector
	Friction   float64
	Boundary   Boundary
	ColorMode  ColorMode
	Resolution float64

	// Camera is the visual offset shifted by camera-controlling entities.
	Camera vector.Vector

	// Paused worlds are skipped by Step.
	Paused bool

	pool map[string][]uint32
}

type WorldOptions struct {
	Name       string
	Width      float64
	Height     float64
	Gravity    *vector.Vector
	Friction   *float64
	Boundary   Boundary
	ColorMode  ColorMode
	Resolution float64
}

func newWorld(opts WorldOptions) (*World, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %s is %.2fx%.2f", ErrInvalidWorld, opts.Name, opts.Width, opts.Height)
	}
	w := &World{
		Name:       opts.Name,
		Width:      opts.Width,
		Height:     opts.Height,
		Gravity:    vector.New(0, DefaultGravityY),
		Friction:   DefaultFriction,
		Boundary:   opts.Boundary,
		ColorMode:  opts.ColorMode,
		Resolution: opts.Resolution,
		pool:       make(map[string][]uint32),
	}
	if opts.Gravity != nil {
		w.Gravity = *opts.Gravity
	}
	if opts.Friction != nil {
		w.Friction = *opts.Friction
	}
	if w.Boundary == BoundaryInherit {
		w.Boundary = BoundaryBounce
	}
	if w.ColorMode == "" {
		w.ColorMode = ColorRGB
	}
	if w.Resolution <= 0 {
		w.Resolution = 1
	}
	return w, nil
}

// Center returns the middle of the world.
func (w *World) Center() vector.Vector {
	return vector.New(w.Width/2, w.Height/2)
}

// PoolSize reports how many retired slots of kind this world holds.
// An empty kind counts every pooled slot.
func (w *World) PoolSize(kind string) int {
	if kind != "" {
		return len(w.pool[kind])
	}
	n := 0
	for _, slots := range w.pool {
		n += len(slots)
	}
	return n
}

func (w *World) pushPool(kind string, idx uint32) {
	w.pool[kind] = append(w.pool[kind], idx)
}

func (w *World) popPool(kind string) (uint32, bool) {
	slots := w.pool[kind]
	if len(slots) == 0 {
		return 0, false
	}
	idx := slots[len(slots)-1]
	w.pool[kind] = slots[:len(slots)-1]
	return idx, true
}
