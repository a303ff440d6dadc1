// Package metrics aggregates per-frame counters over a running simulation.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/swarmsim/internal/sim"
)

// Metric observes the simulation once per frame.
type Metric interface {
	Name() string
	Observe(s *sim.Simulation)
	Value() float64
	Reset()
}

// Population tracks the live count of one kind, or of every kind when
// kind is empty.
type Population struct {
	kind  string
	count int
}

func NewPopulation(kind string) *Population { return &Population{kind: kind} }

func (p *Population) Name() string {
	if p.kind == "" {
		return "population"
	}
	return "population_" + p.kind
}

func (p *Population) Observe(s *sim.Simulation) {
	if p.kind == "" {
		p.count = s.Count()
		return
	}
	p.count = 0
	s.Each(p.kind, func(*sim.Entity) { p.count++ })
}

func (p *Population) Value() float64 { return float64(p.count) }
func (p *Population) Reset()         { p.count = 0 }

// MeanSpeed averages the per-frame mean speed over every observed frame.
type MeanSpeed struct {
	total   float64
	samples int
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(s *sim.Simulation) {
	speeds := Speeds(s)
	if len(speeds) == 0 {
		return
	}
	m.total += stat.Mean(speeds, nil)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}

// KineticEnergy tracks the total kinetic energy of moving entities in the
// last observed frame and the largest seen.
type KineticEnergy struct {
	current float64
	peak    float64
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(s *sim.Simulation) {
	k.current = Kinetic(s)
	if k.current > k.peak {
		k.peak = k.current
	}
}

func (k *KineticEnergy) Value() float64 { return k.current }
func (k *KineticEnergy) Peak() float64  { return k.peak }

func (k *KineticEnergy) Reset() {
	k.current = 0
	k.peak = 0
}

// Escapes counts entities found outside their world by more than margin,
// or with a non-finite location.
type Escapes struct {
	margin     float64
	violations int
	samples    int
}

func NewEscapes(margin float64) *Escapes { return &Escapes{margin: margin} }

func (e *Escapes) Name() string { return "escapes" }

func (e *Escapes) Observe(s *sim.Simulation) {
	e.samples++
	for _, ent := range s.Live() {
		l := ent.Location
		if !l.IsValid() ||
			l.X < -e.margin || l.X > ent.World.Width+e.margin ||
			l.Y < -e.margin || l.Y > ent.World.Height+e.margin {
			e.violations++
		}
	}
}

// Value is the mean number of escaped entities per frame.
func (e *Escapes) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.violations) / float64(e.samples)
}

func (e *Escapes) Reset() {
	e.violations = 0
	e.samples = 0
}

// Speeds returns the speed of every non-static live entity.
func Speeds(s *sim.Simulation) []float64 {
	out := make([]float64, 0, s.Count())
	for _, e := range s.Live() {
		if e.Static {
			continue
		}
		out = append(out, e.Velocity.Mag())
	}
	return out
}

func Kinetic(s *sim.Simulation) float64 {
	total := 0.0
	for _, e := range s.Live() {
		if e.Static {
			continue
		}
		total += 0.5 * e.Mass * e.Velocity.MagSq()
	}
	return total
}

// SpeedSummary is the distribution of speeds in one frame.
type SpeedSummary struct {
	Mean   float64
	StdDev float64
	P90    float64
	Max    float64
}

func SummarizeSpeeds(speeds []float64) SpeedSummary {
	switch len(speeds) {
	case 0:
		return SpeedSummary{}
	case 1:
		return SpeedSummary{Mean: speeds[0], P90: speeds[0], Max: speeds[0]}
	}
	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return SpeedSummary{
		Mean:   mean,
		StdDev: std,
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
}
