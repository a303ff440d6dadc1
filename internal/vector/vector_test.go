package vector

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b Vector) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestAddCommutes(t *testing.T) {
	pairs := [][2]Vector{
		{New(1, 2), New(3, 4)},
		{New(-1.5, 0), New(0, 7.25)},
		{New(0, 0), New(-3, -3)},
	}
	for _, p := range pairs {
		if p[0].Add(p[1]) != p[1].Add(p[0]) {
			t.Errorf("add not commutative for %v, %v", p[0], p[1])
		}
	}
}

func TestDivScaleRoundTrip(t *testing.T) {
	tests := []struct {
		v Vector
		n float64
	}{
		{New(3, 4), 2},
		{New(-7, 0.5), 0.3},
		{New(100, -100), -9},
	}
	for _, tt := range tests {
		got := tt.v.Div(tt.n).Scale(tt.n)
		if !approx(got, tt.v) {
			t.Errorf("div/scale %v by %f: got %v", tt.v, tt.n, got)
		}
	}
}

func TestDivByZero(t *testing.T) {
	v := New(3, 4)
	if got := v.Div(0); got != v {
		t.Errorf("expected Div(0) to be a no-op, got %v", got)
	}
	if err := v.DivIn(0); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
	if v != New(3, 4) {
		t.Errorf("DivIn(0) modified receiver: %v", v)
	}
}

func TestNormalize(t *testing.T) {
	for _, v := range []Vector{New(3, 4), New(-0.001, 0), New(1e6, -2e6)} {
		if m := v.Normalize().Mag(); math.Abs(m-1) > eps {
			t.Errorf("normalize %v: magnitude %f", v, m)
		}
	}

	var z Vector
	z.NormalizeIn()
	if !z.IsZero() || !z.IsValid() {
		t.Errorf("normalize on zero vector produced %v", z)
	}
}

func TestLimit(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector
		max, min float64
		wantMag  float64
	}{
		{"above max", New(30, 40), 10, 0, 10},
		{"below min", New(0.3, 0.4), 10, 2, 2},
		{"inside range", New(3, 4), 10, 2, 5},
		{"zero min ignored", New(0.3, 0.4), 10, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Limit(tt.max, tt.min)
			if math.Abs(got.Mag()-tt.wantMag) > eps {
				t.Errorf("expected magnitude %f, got %f", tt.wantMag, got.Mag())
			}
			if tt.v.Normalize().Dot(got.Normalize()) < 1-eps {
				t.Errorf("limit changed direction: %v -> %v", tt.v, got)
			}
		})
	}

	var z Vector
	if got := z.Limit(10, 2); !got.IsZero() {
		t.Errorf("expected zero vector to stay zero, got %v", got)
	}
}

func TestRotate(t *testing.T) {
	got := New(1, 0).Rotate(math.Pi / 2)
	if !approx(got, New(0, 1)) {
		t.Errorf("expected (0,1), got %v", got)
	}

	v := New(2, 0)
	v.RotateIn(math.Pi)
	if !approx(v, New(-2, 0)) {
		t.Errorf("expected (-2,0), got %v", v)
	}
}

func TestDistanceMidpointDot(t *testing.T) {
	a, b := New(0, 0), New(6, 8)
	if d := a.Distance(b); d != 10 {
		t.Errorf("expected distance 10, got %f", d)
	}
	if m := a.Midpoint(b); m != New(3, 4) {
		t.Errorf("expected midpoint (3,4), got %v", m)
	}
	if d := New(1, 2).Dot(New(3, 4)); d != 11 {
		t.Errorf("expected dot 11, got %f", d)
	}
}

func TestInPlace(t *testing.T) {
	v := New(1, 1)
	v.AddIn(New(2, 3))
	v.SubIn(New(1, 1))
	v.ScaleIn(2)
	if v != New(4, 6) {
		t.Errorf("expected (4,6), got %v", v)
	}
	if err := v.DivIn(2); err != nil {
		t.Fatal(err)
	}
	v.LimitIn(1, 0)
	if math.Abs(v.Mag()-1) > eps {
		t.Errorf("expected unit magnitude, got %f", v.Mag())
	}
	v.Zero()
	if !v.IsZero() {
		t.Errorf("expected zero, got %v", v)
	}
}
