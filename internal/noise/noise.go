// Package noise provides coherent noise sources for wandering behaviors.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Source returns smooth noise in [-1, 1] for nearby inputs.
type Source interface {
	Eval(x, y, z float64) float64
}

// Simplex is an OpenSimplex backed Source.
type Simplex struct {
	n opensimplex.Noise
}

func NewSimplex(seed int64) *Simplex {
	return &Simplex{n: opensimplex.New(seed)}
}

func (s *Simplex) Eval(x, y, z float64) float64 {
	return clamp(s.n.Eval3(x, y, z))
}

// Map linearly maps v from [inLow, inHigh] into [outLow, outHigh].
func Map(v, inLow, inHigh, outLow, outHigh float64) float64 {
	if inHigh == inLow {
		return outLow
	}
	return outLow + (v-inLow)*(outHigh-outLow)/(inHigh-inLow)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
