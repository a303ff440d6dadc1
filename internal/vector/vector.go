// Package vector provides the 2D vector primitive used by the simulation.
//
// Methods on the value receiver return a new Vector and never modify their
// operand. Methods with the In suffix mutate the receiver and are meant for
// the per-frame integration path.
package vector

import (
	"errors"
	"math"
)

// ErrDivideByZero is returned by DivIn when the divisor is zero.
var ErrDivideByZero = errors.New("vector: divide by zero")

type Vector struct {
	X, Y float64
}

func New(x, y float64) Vector { return Vector{X: x, Y: y} }

func (v Vector) Add(o Vector) Vector       { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector       { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(n float64) Vector    { return Vector{v.X * n, v.Y * n} }
func (v Vector) Dot(o Vector) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vector) MagSq() float64            { return v.X*v.X + v.Y*v.Y }
func (v Vector) Mag() float64              { return math.Sqrt(v.MagSq()) }
func (v Vector) Distance(o Vector) float64 { return v.Sub(o).Mag() }
func (v Vector) IsZero() bool              { return v.X == 0 && v.Y == 0 }

// Div returns v / n. Dividing by zero returns v unchanged.
func (v Vector) Div(n float64) Vector {
	if n == 0 {
		return v
	}
	return Vector{v.X / n, v.Y / n}
}

// Normalize returns the unit vector in the direction of v.
// A zero vector is returned as is.
func (v Vector) Normalize() Vector {
	m := v.Mag()
	if m == 0 {
		return v
	}
	return Vector{v.X / m, v.Y / m}
}

// Limit rescales v to max when its magnitude exceeds max, and up to min
// when min is nonzero and the magnitude is below it. A zero vector has no
// direction and is never scaled up.
func (v Vector) Limit(max, min float64) Vector {
	m := v.Mag()
	if m == 0 {
		return v
	}
	if m > max {
		return v.Scale(max / m)
	}
	if min != 0 && m < min {
		return v.Scale(min / m)
	}
	return v
}

// Rotate returns v rotated counterclockwise by rad radians.
func (v Vector) Rotate(rad float64) Vector {
	sin, cos := math.Sincos(rad)
	return Vector{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func (v Vector) Midpoint(o Vector) Vector {
	return Vector{(v.X + o.X) / 2, (v.Y + o.Y) / 2}
}

// Heading is the angle of v in radians, measured from the positive x axis.
func (v Vector) Heading() float64 { return math.Atan2(v.Y, v.X) }

func (v Vector) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v *Vector) AddIn(o Vector) {
	v.X += o.X
	v.Y += o.Y
}

func (v *Vector) SubIn(o Vector) {
	v.X -= o.X
	v.Y -= o.Y
}

func (v *Vector) ScaleIn(n float64) {
	v.X *= n
	v.Y *= n
}

func (v *Vector) DivIn(n float64) error {
	if n == 0 {
		return ErrDivideByZero
	}
	v.X /= n
	v.Y /= n
	return nil
}

func (v *Vector) NormalizeIn()            { *v = v.Normalize() }
func (v *Vector) LimitIn(max, min float64) { *v = v.Limit(max, min) }
func (v *Vector) RotateIn(rad float64)     { *v = v.Rotate(rad) }
func (v *Vector) Zero()                    { v.X, v.Y = 0, 0 }
