package steer

import (
	"math"
	"testing"

	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

const tol = 1e-9

func setup(t *testing.T) (*sim.Simulation, *sim.World) {
	t.Helper()
	reg := sim.NewRegistry()
	for _, kind := range []string{"Other", "Prey", "Boid", "Repeller", "Dragger"} {
		reg.MustRegister(kind, func(*sim.Entity, sim.Params) {})
	}
	s := sim.New(sim.Config{Seed: 5, Registry: reg})
	w, err := s.AddWorld(sim.WorldOptions{Width: 400, Height: 300})
	if err != nil {
		t.Fatal(err)
	}
	return s, w
}

func add(t *testing.T, s *sim.Simulation, w *sim.World, kind string, opts ...sim.Option) *sim.Entity {
	t.Helper()
	e, err := s.Add(kind, w, nil, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func at(x, y float64) sim.Option { return sim.WithLocation(vector.New(x, y)) }

func TestSeparateConvergence(t *testing.T) {
	s, w := setup(t)
	a := add(t, s, w, "Item", at(100, 100))
	b := add(t, s, w, "Item", at(105, 100))

	fa := Separate(a, s, 10)
	fb := Separate(b, s, 10)
	if fa.X >= 0 || fb.X <= 0 {
		t.Fatalf("expected forces pointing apart, got %v and %v", fa, fb)
	}
	if math.Abs(fa.Y) > tol || math.Abs(fb.Y) > tol {
		t.Errorf("expected no vertical component, got %v and %v", fa, fb)
	}

	b.Location = vector.New(120, 100)
	if f := Separate(a, s, 10); !f.IsZero() {
		t.Errorf("expected zero force beyond separation radius, got %v", f)
	}
}

func TestNeighborFiltering(t *testing.T) {
	s, w := setup(t)
	a := add(t, s, w, "Item", at(50, 50))

	tests := []struct {
		name string
		fn   func(*sim.Entity, sim.Context, float64) vector.Vector
	}{
		{"separate", Separate},
		{"align", Align},
		{"cohesion", Cohesion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if f := tt.fn(a, s, 20); !f.IsZero() || !f.IsValid() {
				t.Errorf("alone: expected zero, got %v", f)
			}
		})
	}

	// Same location is excluded by the strict distance check, other
	// kinds are excluded by name.
	add(t, s, w, "Item", at(50, 50))
	add(t, s, w, "Other", at(55, 50))
	for _, tt := range tests {
		t.Run(tt.name+"/filtered", func(t *testing.T) {
			if f := tt.fn(a, s, 20); !f.IsZero() || !f.IsValid() {
				t.Errorf("expected zero, got %v", f)
			}
		})
	}
}

func TestAlignAndCohesion(t *testing.T) {
	s, w := setup(t)
	a := add(t, s, w, "Item", at(100, 100))
	add(t, s, w, "Item", at(110, 100), sim.WithVelocity(vector.New(0, 5)))
	add(t, s, w, "Item", at(110, 110), sim.WithVelocity(vector.New(0, 3)))

	al := Align(a, s, 30)
	if al.Y <= 0 || math.Abs(al.X) > tol {
		t.Errorf("expected align force along +y, got %v", al)
	}

	co := Cohesion(a, s, 30)
	if co.X <= 0 || co.Y <= 0 {
		t.Errorf("expected cohesion toward (110, 105), got %v", co)
	}
	if co.Mag() > a.MaxSteeringForce+tol {
		t.Errorf("cohesion exceeded max steering force: %f", co.Mag())
	}
}

func TestSeekArrival(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(0, 0))

	tests := []struct {
		name       string
		target     vector.Vector
		slowRadius float64
		want       vector.Vector
	}{
		{"full speed", vector.New(100, 0), 0, vector.New(10, 0)},
		{"inside slow radius", vector.New(100, 0), 200, vector.New(5, 0)},
		{"outside slow radius", vector.New(300, 0), 200, vector.New(10, 0)},
		{"at target", vector.New(0, 0), 200, vector.New(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Seek(e, tt.target, tt.slowRadius)
			if math.Abs(got.X-tt.want.X) > tol || math.Abs(got.Y-tt.want.Y) > tol {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	e.Velocity = vector.New(3, 0)
	if got := Seek(e, e.Location, 200); math.Abs(got.X+3) > tol {
		t.Errorf("expected braking force (-3, 0) at the target, got %v", got)
	}
}

func TestSeekBehaviorSlowRadius(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(0, 0))

	tests := []struct {
		name       string
		slowRadius float64
		wantX      float64
	}{
		{"default half width", 0, 5},
		{"explicit", 400, 2.5},
		{"negative disables arrival", -1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := SeekBehavior{Target: At(vector.New(100, 0)), SlowRadius: tt.slowRadius}
			if got := b.Force(e, s); math.Abs(got.X-tt.wantX) > tol || math.Abs(got.Y) > tol {
				t.Errorf("expected (%f, 0), got %v", tt.wantX, got)
			}
		})
	}
}

func TestSeekLimitsSteering(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(0, 0), sim.WithVelocity(vector.New(-10, 0)))
	e.MaxSteeringForce = 2
	if got := Seek(e, vector.New(100, 0), 0); math.Abs(got.Mag()-2) > tol {
		t.Errorf("expected steering limited to 2, got %f", got.Mag())
	}
}

func TestFlee(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(10, 10))
	if f := Flee(e, vector.New(5, 10), 20); f.X <= 0 {
		t.Errorf("expected flee along +x, got %v", f)
	}
	if f := Flee(e, vector.New(100, 10), 20); !f.IsZero() {
		t.Errorf("expected no flee beyond radius, got %v", f)
	}
}

func TestAttract(t *testing.T) {
	s, w := setup(t)
	src := add(t, s, w, "Item", at(10, 0), sim.WithMass(1000), sim.WithScale(20))
	e := add(t, s, w, "Item", at(0, 0), sim.WithMass(10))

	tests := []struct {
		name  string
		loc   vector.Vector
		g     float64
		wantX float64
	}{
		{"in range", vector.New(0, 0), 1, 100},
		{"clamped near", vector.New(9, 0), 1, 1600},
		{"clamped far", vector.New(-90, 0), 1, 25},
		{"repel", vector.New(0, 0), -10, -1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.Location = tt.loc
			got := Attract(e, src, tt.g)
			if math.Abs(got.X-tt.wantX) > 1e-6 || math.Abs(got.Y) > tol {
				t.Errorf("expected (%f, 0), got %v", tt.wantX, got)
			}
		})
	}

	e.Location = src.Location
	if f := Attract(e, src, 1); !f.IsZero() || !f.IsValid() {
		t.Errorf("expected zero force at contact, got %v", f)
	}
}

func TestAttractionBehavior(t *testing.T) {
	s, w := setup(t)
	add(t, s, w, "Repeller", at(110, 100), sim.WithMass(1000), sim.WithScale(20), sim.WithAttr("G", -10))
	e := add(t, s, w, "Item", at(100, 100))

	f := Attraction{Kinds: []string{"Repeller"}}.Force(e, s)
	if f.X >= 0 {
		t.Errorf("expected repulsion along -x, got %v", f)
	}
	if f := (Attraction{Kinds: []string{"Repeller"}, Range: 5}).Force(e, s); !f.IsZero() {
		t.Errorf("expected out of range source to be ignored, got %v", f)
	}
}

func TestDrag(t *testing.T) {
	s, w := setup(t)
	field := add(t, s, w, "Dragger", at(100, 100), sim.WithSize(40, 40), sim.WithAttr("c", 0.1))
	e := add(t, s, w, "Item", at(105, 100), sim.WithVelocity(vector.New(3, 4)))

	got := Drag(e, 0.1)
	if math.Abs(got.X+1.5) > tol || math.Abs(got.Y+2) > tol {
		t.Errorf("expected (-1.5, -2), got %v", got)
	}

	if f := (DragFields{Kinds: []string{"Dragger"}}).Force(e, s); math.Abs(f.X+1.5) > tol {
		t.Errorf("expected drag inside the field, got %v", f)
	}
	field.Location = vector.New(300, 300)
	if f := (DragFields{Kinds: []string{"Dragger"}}).Force(e, s); !f.IsZero() {
		t.Errorf("expected no drag outside the field, got %v", f)
	}
}

func TestAvoidEdges(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(5, 150), sim.WithVelocity(vector.New(-2, 0)))
	if f := AvoidEdges(e, 20); f.X <= 0 {
		t.Errorf("expected push away from left wall, got %v", f)
	}
	e.Location = vector.New(200, 150)
	if f := AvoidEdges(e, 20); !f.IsZero() {
		t.Errorf("expected no force in the interior, got %v", f)
	}
}

type constNoise float64

func (c constNoise) Eval(x, y, z float64) float64 { return float64(c) }

func TestWander(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", sim.WithMass(2))

	f := NewWander(constNoise(1), 0, 100).Force(e, s)
	if math.Abs(f.X-2*DefaultWanderAccel) > tol || math.Abs(f.Y-2*DefaultWanderAccel) > tol {
		t.Errorf("expected max acceleration scaled by mass, got %v", f)
	}

	if f := (Wander{}).Force(e, s); !f.IsZero() {
		t.Errorf("expected zero without a noise source, got %v", f)
	}
}

func TestRandomWalkBounded(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(200, 150))
	rw := RandomWalk{Radius: DefaultWalkRadius}
	for i := 0; i < 100; i++ {
		if f := rw.Force(e, s); f.Mag() > e.MaxSteeringForce+tol || !f.IsValid() {
			t.Fatalf("unexpected random walk force %v", f)
		}
	}
}

type fixedPointer vector.Vector

func (p fixedPointer) Location() vector.Vector { return vector.Vector(p) }
func (p fixedPointer) Velocity() vector.Vector { return vector.Vector{} }

func TestSeekTargets(t *testing.T) {
	s, w := setup(t)
	e := add(t, s, w, "Item", at(100, 100))
	prey := add(t, s, w, "Prey", at(150, 100))
	add(t, s, w, "Prey", at(100, 300))

	follow := SeekBehavior{Target: Follow(prey.Handle())}
	if f := follow.Force(e, s); f.X <= 0 {
		t.Errorf("expected seek toward followed entity, got %v", f)
	}
	if f := (SeekBehavior{Target: Nearest("Prey")}).Force(e, s); f.X <= 0 || math.Abs(f.Y) > tol {
		t.Errorf("expected seek toward nearest prey, got %v", f)
	}

	if err := s.Remove(prey); err != nil {
		t.Fatal(err)
	}
	if f := follow.Force(e, s); !f.IsZero() {
		t.Errorf("expected no force for retired target, got %v", f)
	}

	ptr := SeekBehavior{Target: PointerTarget()}
	if f := ptr.Force(e, s); !f.IsZero() {
		t.Errorf("expected no force without pointer, got %v", f)
	}
	s.SetPointer(fixedPointer(vector.New(100, 50)))
	if f := ptr.Force(e, s); f.Y >= 0 {
		t.Errorf("expected seek toward pointer, got %v", f)
	}
}

func TestFlockDefaults(t *testing.T) {
	f := NewFlock(4)
	if f.SeparateRadius != 8 || f.AlignRadius != 16 || f.CohesionRadius != 16 {
		t.Errorf("unexpected radii %+v", f)
	}

	s, w := setup(t)
	a := add(t, s, w, "Boid", at(100, 100))
	add(t, s, w, "Boid", at(104, 100))
	if got := f.Force(a, s); got.X >= 0 {
		t.Errorf("expected separation to dominate at close range, got %v", got)
	}
}
