// Package randx provides the seeded random source used by all generation
// code. Every generator receives its own Source so concurrent generation
// never shares state and identical seeds reproduce identical output.
package randx

import (
	"math"
	"math/rand/v2"
)

// seedMix decorrelates the two PCG stream words derived from one seed.
const seedMix = 0x9E3779B97F4A7C15

// Source is a deterministic random stream. It is not safe for concurrent
// use; fork one per goroutine instead of sharing.
type Source struct {
	rng  *rand.Rand
	seed int64
}

// New returns a Source seeded with the given value.
func New(seed int64) *Source {
	return &Source{
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^seedMix)),
		seed: seed,
	}
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Fork derives an independent child source. The draw advances this
// source, so forking order matters for reproducibility.
func (s *Source) Fork() *Source {
	return New(s.Int64())
}

// Uint32 returns the next value of the underlying stream.
func (s *Source) Uint32() uint32 {
	return s.rng.Uint32()
}

// Read fills p with random bytes and never fails, implementing io.Reader
// for deterministic id generation.
func (s *Source) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := s.rng.Uint64()
		for j := i; j < i+8 && j < len(p); j++ {
			p[j] = byte(v)
			v >>= 8
		}
	}
	return len(p), nil
}

// Int64 returns a non-negative random 63-bit integer.
func (s *Source) Int64() int64 {
	return s.rng.Int64()
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Float64Between returns a uniform value in [min, max).
func (s *Source) Float64Between(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.rng.Float64()*(max-min)
}

// Angle returns a uniform angle in [0, 2π) radians.
func (s *Source) Angle() float64 {
	return s.rng.Float64() * 2 * math.Pi
}

// Normal samples a normal distribution with the given mean and standard
// deviation.
func (s *Source) Normal(mean, stddev float64) float64 {
	if stddev <= 0 {
		return mean
	}
	return mean + s.rng.NormFloat64()*stddev
}

// PositiveNormal samples a normal distribution rejecting non-positive
// values. After a bounded number of rejected draws it falls back to the
// absolute value of the last sample so the call always terminates.
func (s *Source) PositiveNormal(mean, stddev float64) float64 {
	const maxDraws = 16
	v := s.Normal(mean, stddev)
	for i := 0; i < maxDraws && v <= 0; i++ {
		v = s.Normal(mean, stddev)
	}
	if v <= 0 {
		v = math.Abs(v)
	}
	return v
}

// LogNormal samples exp(Normal(mu, sigma)). Useful for quantities spread
// over several orders of magnitude, like small-body masses.
func (s *Source) LogNormal(mu, sigma float64) float64 {
	return math.Exp(s.Normal(mu, sigma))
}

// IntBetween returns a uniform integer in [min, max], inclusive on both
// ends.
func (s *Source) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.IntN(max-min+1)
}

// Bool returns true with probability p.
func (s *Source) Bool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Choice returns a uniformly chosen index in [0, n). It returns 0 when n
// is not positive.
func (s *Source) Choice(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n)
}

// WeightedChoice returns an index sampled proportionally to the given
// weights. Non-positive weights are treated as zero; if all weights are
// zero the first index is returned.
func (s *Source) WeightedChoice(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	target := s.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}
