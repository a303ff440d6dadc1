// Package input samples a pointing device for steering behaviors.
package input

import (
	"sync"

	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

var _ sim.Pointer = (*Sampler)(nil)

// Sampler keeps the last pointer location and the displacement since the
// previous sample. The host may feed it from another goroutine.
type Sampler struct {
	mu       sync.RWMutex
	location vector.Vector
	velocity vector.Vector
	sampled  bool
}

func NewSampler() *Sampler { return &Sampler{} }

// Sample records a new pointer location. The first sample has zero velocity.
func (s *Sampler) Sample(loc vector.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sampled {
		s.velocity = loc.Sub(s.location)
	}
	s.location = loc
	s.sampled = true
}

// Release clears velocity without moving the pointer, as when the button
// is let go.
func (s *Sampler) Release() {
	s.mu.Lock()
	s.velocity = vector.Vector{}
	s.mu.Unlock()
}

func (s *Sampler) Location() vector.Vector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

func (s *Sampler) Velocity() vector.Vector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.velocity
}

func (s *Sampler) Sampled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampled
}

// Scaled maps terminal cell coordinates into world space.
func Scaled(col, row int, cellW, cellH float64) vector.Vector {
	return vector.New((float64(col)+0.5)*cellW, (float64(row)+0.5)*cellH)
}
