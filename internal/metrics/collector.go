package metrics

import (
	"github.com/san-kum/swarmsim/internal/sim"
)

// FrameStats is one sampled row of the stats table.
type FrameStats struct {
	Frame       int     `csv:"frame"`
	Live        int     `csv:"live"`
	Pooled      int     `csv:"pooled"`
	Fallbacks   int     `csv:"fallbacks"`
	MeanSpeed   float64 `csv:"mean_speed"`
	SpeedStdDev float64 `csv:"speed_stddev"`
	SpeedP90    float64 `csv:"speed_p90"`
	MaxSpeed    float64 `csv:"max_speed"`
	Kinetic     float64 `csv:"kinetic_energy"`
}

var _ sim.Observer = (*Collector)(nil)

// Collector is a sim.Observer that samples a stats row every Every frames
// and feeds its metrics on every frame.
type Collector struct {
	Every   int
	Metrics []Metric

	rows []FrameStats
}

func NewCollector(every int, ms ...Metric) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{Every: every, Metrics: ms, rows: make([]FrameStats, 0, 64)}
}

// DefaultMetrics is the set reported in run summaries.
func DefaultMetrics() []Metric {
	return []Metric{
		NewPopulation(""),
		NewMeanSpeed(),
		NewKineticEnergy(),
		NewEscapes(0),
	}
}

func (c *Collector) OnFrame(s *sim.Simulation) error {
	for _, m := range c.Metrics {
		m.Observe(s)
	}
	if s.Clock()%c.Every != 0 {
		return nil
	}
	c.rows = append(c.rows, Sample(s))
	return nil
}

// Sample computes a stats row for the current frame.
func Sample(s *sim.Simulation) FrameStats {
	sum := SummarizeSpeeds(Speeds(s))
	return FrameStats{
		Frame:       s.Clock(),
		Live:        s.Count(),
		Pooled:      s.PoolSize(""),
		Fallbacks:   s.Fallbacks(),
		MeanSpeed:   sum.Mean,
		SpeedStdDev: sum.StdDev,
		SpeedP90:    sum.P90,
		MaxSpeed:    sum.Max,
		Kinetic:     Kinetic(s),
	}
}

func (c *Collector) Rows() []FrameStats { return c.rows }

// Summary returns the current value of every metric by name.
func (c *Collector) Summary() map[string]float64 {
	out := make(map[string]float64, len(c.Metrics))
	for _, m := range c.Metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (c *Collector) Reset() {
	c.rows = c.rows[:0]
	for _, m := range c.Metrics {
		m.Reset()
	}
}
