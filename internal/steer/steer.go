// Package steer implements the steering and force behaviors that entities
// attach to contribute to their per-frame force sum.
//
// The plain functions compute a single force from explicit inputs. The
// behavior types wrap them as sim.Behavior values and resolve neighbors
// and targets from the sim.Context. Every function returns the zero
// vector instead of NaN when its inputs are degenerate.
package steer

import (
	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

// Desired turns a desired velocity into a steering force limited to the
// entity's MaxSteeringForce.
func Desired(e *sim.Entity, desired vector.Vector) vector.Vector {
	return desired.Sub(e.Velocity).Limit(e.MaxSteeringForce, 0)
}

// Seek steers toward target. Inside slowRadius the desired speed ramps
// linearly from MaxSpeed down to zero at the target. A non-positive
// slowRadius seeks at full speed.
func Seek(e *sim.Entity, target vector.Vector, slowRadius float64) vector.Vector {
	offset := target.Sub(e.Location)
	d := offset.Mag()
	speed := e.MaxSpeed
	if slowRadius > 0 && d < slowRadius {
		speed = e.MaxSpeed * d / slowRadius
	}
	return Desired(e, offset.Normalize().Scale(speed))
}

// Flee steers away from threat while it is closer than radius. A
// non-positive radius always flees.
func Flee(e *sim.Entity, threat vector.Vector, radius float64) vector.Vector {
	offset := e.Location.Sub(threat)
	if radius > 0 && offset.Mag() >= radius {
		return vector.Vector{}
	}
	return Desired(e, offset.Normalize().Scale(e.MaxSpeed))
}

// neighbors calls fn for every same-kind entity other than e strictly
// inside radius.
func neighbors(e *sim.Entity, ctx sim.Context, radius float64, fn func(o *sim.Entity, d float64)) {
	ctx.Each(e.Name, func(o *sim.Entity) {
		if o.ID == e.ID {
			return
		}
		d := e.Location.Distance(o.Location)
		if d > 0 && d < radius {
			fn(o, d)
		}
	})
}

// Separate steers away from same-kind neighbors closer than radius,
// weighting each by the inverse of its distance.
func Separate(e *sim.Entity, ctx sim.Context, radius float64) vector.Vector {
	var sum vector.Vector
	count := 0
	neighbors(e, ctx, radius, func(o *sim.Entity, d float64) {
		sum.AddIn(e.Location.Sub(o.Location).Normalize().Div(d))
		count++
	})
	if count == 0 {
		return vector.Vector{}
	}
	desired := sum.Div(float64(count)).Normalize().Scale(e.MaxSpeed)
	return Desired(e, desired)
}

// Align steers toward the average velocity of same-kind neighbors.
func Align(e *sim.Entity, ctx sim.Context, radius float64) vector.Vector {
	var sum vector.Vector
	count := 0
	neighbors(e, ctx, radius, func(o *sim.Entity, _ float64) {
		sum.AddIn(o.Velocity)
		count++
	})
	if count == 0 {
		return vector.Vector{}
	}
	desired := sum.Div(float64(count)).Normalize().Scale(e.MaxSpeed)
	return Desired(e, desired)
}

// Cohesion steers toward the centroid of same-kind neighbors.
func Cohesion(e *sim.Entity, ctx sim.Context, radius float64) vector.Vector {
	var sum vector.Vector
	count := 0
	neighbors(e, ctx, radius, func(o *sim.Entity, _ float64) {
		sum.AddIn(o.Location)
		count++
	})
	if count == 0 {
		return vector.Vector{}
	}
	centroid := sum.Div(float64(count))
	desired := centroid.Sub(e.Location).Normalize().Scale(e.MaxSpeed)
	return Desired(e, desired)
}

// Attract is the inverse-square pull of src on e with strength
// g * src.Mass * e.Mass / d². The distance is clamped into
// [src.Scale/8, src.Scale]. A negative g repels.
func Attract(e, src *sim.Entity, g float64) vector.Vector {
	dir := src.Location.Sub(e.Location)
	d := clamp(dir.Mag(), src.Scale/8, src.Scale)
	if d <= 0 {
		return vector.Vector{}
	}
	strength := g * src.Mass * e.Mass / (d * d)
	return dir.Normalize().Scale(strength)
}

// Drag opposes the entity's velocity with magnitude c * |v|².
func Drag(e *sim.Entity, c float64) vector.Vector {
	speed := e.Velocity.Mag()
	return e.Velocity.Normalize().Scale(-c * speed * speed)
}

// AvoidEdges steers back toward the interior when e is within margin of
// a wall of its world.
func AvoidEdges(e *sim.Entity, margin float64) vector.Vector {
	w := e.World
	desired := e.Velocity
	steering := false

	switch {
	case e.Location.X < margin:
		desired.X, steering = e.MaxSpeed, true
	case e.Location.X > w.Width-margin:
		desired.X, steering = -e.MaxSpeed, true
	}
	switch {
	case e.Location.Y < margin:
		desired.Y, steering = e.MaxSpeed, true
	case e.Location.Y > w.Height-margin:
		desired.Y, steering = -e.MaxSpeed, true
	}

	if !steering {
		return vector.Vector{}
	}
	return Desired(e, desired.Normalize().Scale(e.MaxSpeed))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
