package sim

import (
	"go.uber.org/zap"

	"github.com/san-kum/swarmsim/internal/vector"
)

// stepEntity runs one frame of integration, boundary handling and
// lifecycle for e.
func (s *Simulation) stepEntity(e *Entity) {
	if e.BeforeStep != nil {
		e.BeforeStep(e)
		if !e.live {
			return
		}
	}

	if !e.Static {
		w := e.World
		if !e.NoGravity {
			e.ApplyForce(w.Gravity)
		}
		if !e.NoFriction && w.Friction != 0 {
			e.ApplyForce(Friction(e.Velocity, w.Friction))
		}
		for _, b := range e.Behaviors {
			e.ApplyForce(b.Force(e, s))
		}

		e.Velocity.AddIn(e.Acceleration)
		e.Velocity.LimitIn(e.MaxSpeed, e.MinSpeed)
		e.Location.AddIn(e.Velocity)

		if e.PointToDirection && e.Velocity.Mag() > headingEpsilon {
			e.Angle = e.Velocity.Heading()
		}
		if e.ControlCamera {
			w.Camera.SubIn(e.Velocity)
		}

		s.applyBoundary(e)
		s.followParent(e)
		e.Acceleration.Zero()
	}

	if e.Life < e.Lifespan {
		e.Life++
	} else if e.Lifespan != -1 {
		// Remove cannot fail here: e is live and its handle is current.
		_ = s.Remove(e)
		return
	}

	if e.AfterStep != nil {
		e.AfterStep(e)
	}
}

// Friction opposes v with magnitude c. A zero velocity yields no force.
func Friction(v vector.Vector, c float64) vector.Vector {
	return v.Normalize().Scale(-c)
}

func (s *Simulation) applyBoundary(e *Entity) {
	switch e.BoundaryPolicy() {
	case BoundaryBounce:
		Bounce(e)
	case BoundaryWrap:
		Wrap(e)
	}
}

// Bounce clamps e inside its world using half extents and reflects the
// velocity component perpendicular to the wall, scaled by Bounciness.
func Bounce(e *Entity) {
	w := e.World
	hw, hh := e.Width/2, e.Height/2

	if e.Location.X+hw > w.Width {
		e.Location.X = w.Width - hw
		e.Velocity.X *= -e.Bounciness
	} else if e.Location.X-hw < 0 {
		e.Location.X = hw
		e.Velocity.X *= -e.Bounciness
	}

	if e.Location.Y+hh > w.Height {
		e.Location.Y = w.Height - hh
		e.Velocity.Y *= -e.Bounciness
	} else if e.Location.Y-hh < 0 {
		e.Location.Y = hh
		e.Velocity.Y *= -e.Bounciness
	}
}

// Wrap teleports e to the opposite wall when it leaves the world. The
// velocity is untouched. Camera-controlling entities shift the world
// camera so the jump is not visible.
func Wrap(e *Entity) {
	w := e.World
	before := e.Location

	if e.Location.X > w.Width {
		e.Location.X = 0
	} else if e.Location.X < 0 {
		e.Location.X = w.Width
	}
	if e.Location.Y > w.Height {
		e.Location.Y = 0
	} else if e.Location.Y < 0 {
		e.Location.Y = w.Height
	}

	if e.ControlCamera {
		w.Camera.AddIn(before.Sub(e.Location))
	}
}

func (s *Simulation) followParent(e *Entity) {
	if e.Parent.IsZero() {
		return
	}
	p, ok := s.arena.get(e.Parent)
	if !ok {
		s.log.Debug("parent retired, detaching",
			zap.Uint64("entity", e.ID),
			zap.Uint32("parent_slot", e.Parent.Index()),
		)
		e.Parent = 0
		return
	}
	e.Location = p.Location.Add(e.Offset.Rotate(p.Angle))
}
