package randx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminism(t *testing.T) {
	t.Run("identical seeds produce identical streams", func(t *testing.T) {
		a := New(42)
		b := New(42)
		for i := 0; i < 100; i++ {
			require.Equal(t, a.Uint32(), b.Uint32())
		}
		for i := 0; i < 100; i++ {
			require.Equal(t, a.Float64(), b.Float64())
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a := New(1)
		b := New(2)
		same := true
		for i := 0; i < 16; i++ {
			if a.Uint32() != b.Uint32() {
				same = false
				break
			}
		}
		assert.False(t, same)
	})

	t.Run("fork is reproducible", func(t *testing.T) {
		a := New(7).Fork()
		b := New(7).Fork()
		require.Equal(t, a.Seed(), b.Seed())
		require.Equal(t, a.Uint32(), b.Uint32())
	})
}

func TestFloat64Between(t *testing.T) {
	s := New(99)
	for i := 0; i < 1000; i++ {
		v := s.Float64Between(-3.5, 12.25)
		require.GreaterOrEqual(t, v, -3.5)
		require.Less(t, v, 12.25)
	}

	t.Run("degenerate range returns min", func(t *testing.T) {
		assert.Equal(t, 4.0, s.Float64Between(4.0, 4.0))
		assert.Equal(t, 4.0, s.Float64Between(4.0, 1.0))
	})
}

func TestIntBetween(t *testing.T) {
	s := New(5)
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		v := s.IntBetween(2, 5)
		require.GreaterOrEqual(t, v, 2)
		require.LessOrEqual(t, v, 5)
		seen[v] = true
	}

	// Both endpoints must be reachable.
	assert.True(t, seen[2])
	assert.True(t, seen[5])

	t.Run("degenerate range returns min", func(t *testing.T) {
		assert.Equal(t, 3, s.IntBetween(3, 3))
		assert.Equal(t, 3, s.IntBetween(3, -1))
	})
}

func TestNormal(t *testing.T) {
	s := New(11)
	const n = 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := s.Normal(100, 15)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	stddev := math.Sqrt(sumSq/n - mean*mean)

	assert.InDelta(t, 100, mean, 1.0)
	assert.InDelta(t, 15, stddev, 1.0)

	t.Run("zero stddev returns mean", func(t *testing.T) {
		assert.Equal(t, 42.0, s.Normal(42, 0))
	})
}

func TestPositiveNormal(t *testing.T) {
	s := New(13)

	// A mean well below zero forces both the rejection loop and the
	// fallback path; the result must still be positive.
	for i := 0; i < 2000; i++ {
		require.Greater(t, s.PositiveNormal(-5, 1), 0.0)
	}
	for i := 0; i < 2000; i++ {
		require.Greater(t, s.PositiveNormal(0.3, 2), 0.0)
	}
}

func TestBool(t *testing.T) {
	s := New(17)

	assert.False(t, s.Bool(0))
	assert.True(t, s.Bool(1))

	hits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if s.Bool(0.25) {
			hits++
		}
	}
	assert.InDelta(t, 0.25, float64(hits)/n, 0.03)
}

func TestWeightedChoice(t *testing.T) {
	s := New(23)

	t.Run("respects weights", func(t *testing.T) {
		counts := make([]int, 3)
		for i := 0; i < 10000; i++ {
			counts[s.WeightedChoice([]float64{1, 0, 3})]++
		}
		assert.Zero(t, counts[1])
		assert.Greater(t, counts[2], counts[0])
	})

	t.Run("all-zero weights fall back to first", func(t *testing.T) {
		assert.Equal(t, 0, s.WeightedChoice([]float64{0, 0}))
	})
}
