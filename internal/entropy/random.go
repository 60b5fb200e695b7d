// Package entropy provides the simulation's single seedable randomness
// source. Every stochastic draw (Poisson arrivals, price noise) goes through
// one Source so that a fixed seed reproduces a run bit for bit.
package entropy

import (
	"math"
	"math/rand"
)

// Source wraps a seeded generator behind the draw shapes the engine needs.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic source from a seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform random float64 in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Norm returns a Gaussian sample with the given mean and standard deviation.
func (s *Source) Norm(mean, stddev float64) float64 {
	return mean + s.rng.NormFloat64()*stddev
}

// ClampedNorm returns a Gaussian sample clamped to [lo, hi].
func (s *Source) ClampedNorm(mean, stddev, lo, hi float64) float64 {
	v := s.Norm(mean, stddev)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Poisson samples a Poisson-distributed count with the given mean using
// Knuth's multiplication method. Non-positive means always yield zero.
// The method is O(mean) per draw, so callers cap the mean before sampling.
func (s *Source) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= s.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
