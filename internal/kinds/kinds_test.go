package kinds

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

func newSim(t *testing.T) (*sim.Simulation, *sim.World) {
	t.Helper()
	reg, err := NewRegistry(Deps{Rand: rand.New(rand.NewSource(3))})
	if err != nil {
		t.Fatal(err)
	}
	s := sim.New(sim.Config{Seed: 3, Registry: reg})
	w, err := s.AddWorld(sim.WorldOptions{Width: 400, Height: 300})
	if err != nil {
		t.Fatal(err)
	}
	return s, w
}

func TestRegisterAll(t *testing.T) {
	s, w := newSim(t)
	all := []string{Item, Mover, Flocker, Walker, Seeker, Attractor, Repeller, Dragger, Particle}

	for _, kind := range all {
		e, err := s.Add(kind, w, nil, sim.WithLocation(w.Center()))
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if e.Name != kind {
			t.Errorf("expected kind %s, got %s", kind, e.Name)
		}
	}
	if s.Fallbacks() != 0 {
		t.Errorf("built-in kinds should not fall back, got %d", s.Fallbacks())
	}
	if got := len(s.Registry().Kinds()); got != len(all) {
		t.Errorf("expected %d kinds, got %d", len(all), got)
	}

	for i := 0; i < 100; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range s.Live() {
		if !e.Location.IsValid() || !e.Velocity.IsValid() {
			t.Errorf("%s diverged: %v %v", e.Name, e.Location, e.Velocity)
		}
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := sim.NewRegistry()
	if err := Register(reg, Deps{}); err != nil {
		t.Fatal(err)
	}
	if err := Register(reg, Deps{}); !errors.Is(err, sim.ErrDuplicateKind) {
		t.Errorf("expected ErrDuplicateKind, got %v", err)
	}
}

func TestParticleFadesAndRetires(t *testing.T) {
	s, w := newSim(t)
	e, _ := s.Add(Particle, w, sim.Params{"lifespan": 4}, sim.WithLocation(w.Center()))

	s.Step()
	s.Step()
	if e.Opacity != 0.5 {
		t.Errorf("expected opacity 0.5 at half life, got %f", e.Opacity)
	}
	for i := 0; i < 3; i++ {
		s.Step()
	}
	if e.Live() {
		t.Error("particle should retire after its lifespan")
	}
	if w.PoolSize(Particle) != 1 {
		t.Errorf("expected pooled particle, got %d", w.PoolSize(Particle))
	}
}

func TestSeekerApproachesAttractor(t *testing.T) {
	s, w := newSim(t)
	s.Add(Attractor, w, nil, sim.WithLocation(vector.New(300, 150)))
	e, _ := s.Add(Seeker, w, nil, sim.WithLocation(vector.New(50, 150)))

	start := e.Location.Distance(vector.New(300, 150))
	for i := 0; i < 30; i++ {
		s.Step()
	}
	if d := e.Location.Distance(vector.New(300, 150)); d >= start {
		t.Errorf("seeker did not approach: %f -> %f", start, d)
	}
}

func TestRepellerPushesMovers(t *testing.T) {
	s, w := newSim(t)
	s.Add(Repeller, w, nil, sim.WithLocation(vector.New(200, 150)))
	e, _ := s.Add(Mover, w, nil, sim.WithLocation(vector.New(190, 150)), sim.WithMass(10))
	w.Gravity = vector.Vector{}

	s.Step()
	if e.Velocity.X >= 0 {
		t.Errorf("expected mover pushed to -x, got %v", e.Velocity)
	}
}

func TestWalkerStaysBounded(t *testing.T) {
	s, w := newSim(t)
	e, _ := s.Add(Walker, w, nil, sim.WithLocation(w.Center()))
	for i := 0; i < 200; i++ {
		s.Step()
		if e.Velocity.Mag() > e.MaxSpeed+1e-9 {
			t.Fatalf("walker exceeded max speed: %f", e.Velocity.Mag())
		}
	}
	if e.Location == w.Center() {
		t.Error("walker should move")
	}
}

func TestFlockerParams(t *testing.T) {
	s, w := newSim(t)
	e, _ := s.Add(Flocker, w, sim.Params{"max_speed": 7, "seek_pointer": 1, "avoid_edges": 10})
	if e.MaxSpeed != 7 {
		t.Errorf("expected max speed 7, got %f", e.MaxSpeed)
	}
	// flock, pointer seek, edge avoidance, attraction, drag
	if len(e.Behaviors) != 5 {
		t.Errorf("expected 5 behaviors, got %d", len(e.Behaviors))
	}
	if !e.NoGravity {
		t.Error("flockers ignore gravity by default")
	}
}
