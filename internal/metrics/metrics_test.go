package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

func newSim(t *testing.T) (*sim.Simulation, *sim.World) {
	t.Helper()
	reg := sim.NewRegistry()
	reg.MustRegister("Boid", func(*sim.Entity, sim.Params) {})
	s := sim.New(sim.Config{Registry: reg})
	zero := 0.0
	w, err := s.AddWorld(sim.WorldOptions{Width: 100, Height: 100, Gravity: &vector.Vector{}, Friction: &zero})
	if err != nil {
		t.Fatal(err)
	}
	return s, w
}

func TestPopulation(t *testing.T) {
	s, w := newSim(t)
	s.Add("Boid", w, nil)
	s.Add("Boid", w, nil)
	s.Add("Item", w, nil)

	all, boids := NewPopulation(""), NewPopulation("Boid")
	all.Observe(s)
	boids.Observe(s)
	if all.Value() != 3 || boids.Value() != 2 {
		t.Errorf("expected 3 and 2, got %v and %v", all.Value(), boids.Value())
	}
	if boids.Name() != "population_Boid" {
		t.Errorf("unexpected name %s", boids.Name())
	}
	all.Reset()
	if all.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSpeedMetrics(t *testing.T) {
	s, w := newSim(t)
	s.Add("Item", w, nil, sim.WithLocation(vector.New(50, 50)), sim.WithVelocity(vector.New(3, 4)), sim.WithMass(2))
	s.Add("Item", w, nil, sim.WithLocation(vector.New(50, 50)), sim.WithVelocity(vector.New(1, 0)), sim.WithMass(2))
	s.Add("Item", w, nil, sim.WithStatic(true), sim.WithVelocity(vector.New(100, 0)))

	ms := NewMeanSpeed()
	ms.Observe(s)
	if math.Abs(ms.Value()-3) > 1e-9 {
		t.Errorf("expected mean speed 3, got %f", ms.Value())
	}

	ke := NewKineticEnergy()
	ke.Observe(s)
	if math.Abs(ke.Value()-26) > 1e-9 {
		t.Errorf("expected kinetic energy 26, got %f", ke.Value())
	}

	sum := SummarizeSpeeds(Speeds(s))
	if sum.Max != 5 || math.Abs(sum.StdDev-math.Sqrt(8)) > 1e-9 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if got := SummarizeSpeeds(nil); got != (SpeedSummary{}) {
		t.Errorf("expected zero summary, got %+v", got)
	}
}

func TestEscapes(t *testing.T) {
	s, w := newSim(t)
	s.Add("Item", w, nil, sim.WithLocation(vector.New(50, 50)))
	e, _ := s.Add("Item", w, nil, sim.WithLocation(vector.New(150, 50)))

	m := NewEscapes(10)
	m.Observe(s)
	if m.Value() != 1 {
		t.Errorf("expected 1 escape, got %f", m.Value())
	}
	e.Location = vector.New(105, 50)
	m.Observe(s)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5 escapes per frame, got %f", m.Value())
	}
}

func TestCollector(t *testing.T) {
	s, w := newSim(t)
	for i := 0; i < 4; i++ {
		s.Add("Item", w, nil, sim.WithLocation(vector.New(50, 50)), sim.WithLifespan(2))
	}
	c := NewCollector(2, DefaultMetrics()...)
	s.AddObserver(c)
	for i := 0; i < 6; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}

	rows := c.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected rows at frames 0, 2, 4; got %d", len(rows))
	}
	if rows[0].Live != 4 || rows[2].Live != 0 || rows[2].Pooled != 4 {
		t.Errorf("unexpected rows %+v", rows)
	}
	if _, ok := c.Summary()["population"]; !ok {
		t.Error("expected population in summary")
	}

	c.Reset()
	if len(c.Rows()) != 0 {
		t.Error("expected no rows after reset")
	}
}
