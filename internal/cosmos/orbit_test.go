package cosmos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/randx"
)

func TestCircularOrbit(t *testing.T) {
	t.Run("one AU around one solar mass has a one year period", func(t *testing.T) {
		o, err := CircularOrbit(EarthMass, SolarMass, Vector3{X: AU})
		require.NoError(t, err)

		const year = 365.25 * 86400
		assert.InEpsilon(t, year, o.Period(), 0.001)
		assert.Zero(t, o.Eccentricity)
		assert.InEpsilon(t, AU, o.SemiMajorAxis, 1e-12)
	})

	t.Run("epoch state reproduces the construction position", func(t *testing.T) {
		rel := Vector3{X: 0.3 * AU, Y: -1.1 * AU, Z: 0.05 * AU}
		o, err := CircularOrbit(0, SolarMass, rel)
		require.NoError(t, err)

		pos, vel := o.StateVectorsAtTime(0)
		assert.InDelta(t, rel.X, pos.X, 1e-3*AU)
		assert.InDelta(t, rel.Y, pos.Y, 1e-3*AU)
		assert.InDelta(t, rel.Z, pos.Z, 1e-3*AU)

		// Circular speed comes from the vis-viva relation.
		want := math.Sqrt(o.GravParam / rel.Length())
		assert.InEpsilon(t, want, vel.Length(), 1e-6)
		assert.InDelta(t, 0, pos.Normalize().Dot(vel.Normalize()), 1e-6)
	})

	t.Run("polar position does not degenerate", func(t *testing.T) {
		o, err := CircularOrbit(0, SolarMass, Vector3{Z: AU})
		require.NoError(t, err)
		pos, _ := o.StateVectorsAtTime(0)
		assert.InDelta(t, AU, pos.Length(), 1)
	})

	t.Run("massless primary is rejected", func(t *testing.T) {
		_, err := CircularOrbit(EarthMass, 0, Vector3{X: AU})
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("zero separation is rejected", func(t *testing.T) {
		_, err := CircularOrbit(EarthMass, SolarMass, Vector3{})
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestEccentricOrbit(t *testing.T) {
	rng := randx.New(404)

	t.Run("preserves the current separation", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			rel := Vector3{X: 2.5 * AU, Y: 0.4 * AU}
			o, err := EccentricOrbit(rng, 0, SolarMass, rel, 0.45, 0.2)
			require.NoError(t, err)

			pos, _ := o.StateVectorsAtTime(0)
			assert.InEpsilon(t, rel.Length(), pos.Length(), 1e-9)
			assert.LessOrEqual(t, o.Inclination, 0.2)
			assert.Positive(t, o.SemiMajorAxis)
		}
	})

	t.Run("eccentricity outside the bound range is rejected", func(t *testing.T) {
		for _, e := range []float64{-0.1, 1.0, 1.5} {
			_, err := EccentricOrbit(rng, 0, SolarMass, Vector3{X: AU}, e, 0)
			require.ErrorIs(t, err, ErrInvalidConfiguration, "eccentricity %v", e)
		}
	})
}

func TestStateVectorsPeriodicity(t *testing.T) {
	rng := randx.New(7)
	rel := Vector3{X: 1.7 * AU, Y: -0.6 * AU, Z: 0.02 * AU}
	o, err := EccentricOrbit(rng, 0, SolarMass, rel, 0.6, 0.4)
	require.NoError(t, err)

	pos0, vel0 := o.StateVectorsAtTime(0)
	posT, velT := o.StateVectorsAtTime(o.Period())

	tol := 1e-6 * o.SemiMajorAxis
	assert.InDelta(t, pos0.X, posT.X, tol)
	assert.InDelta(t, pos0.Y, posT.Y, tol)
	assert.InDelta(t, pos0.Z, posT.Z, tol)

	vtol := 1e-6 * vel0.Length()
	assert.InDelta(t, vel0.X, velT.X, vtol)
	assert.InDelta(t, vel0.Y, velT.Y, vtol)
	assert.InDelta(t, vel0.Z, velT.Z, vtol)
}

func TestAdvanceBy(t *testing.T) {
	o, err := CircularOrbit(0, SolarMass, Vector3{X: AU})
	require.NoError(t, err)

	t.Run("half a period flips the position", func(t *testing.T) {
		start, _ := o.StateVectorsAtTime(0)
		pos, _ := o.AdvanceBy(o.Period() / 2)
		assert.InDelta(t, -start.X, pos.X, 1e-4*AU)
		assert.InDelta(t, -start.Y, pos.Y, 1e-4*AU)
	})

	t.Run("defining elements are untouched", func(t *testing.T) {
		a, e, i := o.SemiMajorAxis, o.Eccentricity, o.Inclination
		o.AdvanceBy(12345)
		assert.Equal(t, a, o.SemiMajorAxis)
		assert.Equal(t, e, o.Eccentricity)
		assert.Equal(t, i, o.Inclination)
	})
}

func TestSolveKepler(t *testing.T) {
	t.Run("circular case is exact", func(t *testing.T) {
		for _, m := range []float64{0, 0.5, math.Pi, 5.9} {
			assert.Equal(t, m, solveKepler(m, 0))
		}
	})

	t.Run("high eccentricity still satisfies the equation", func(t *testing.T) {
		for _, m := range []float64{0.01, 1.3, math.Pi, 4.4, 6.2} {
			ea := solveKepler(m, 0.95)
			assert.InDelta(t, m, ea-0.95*math.Sin(ea), 1e-6)
		}
	})
}

func TestHillRadius(t *testing.T) {
	t.Run("earthlike orbit yields about a hundredth of an AU", func(t *testing.T) {
		o := &Orbit{
			OrbitedMass:   SolarMass,
			SemiMajorAxis: AU,
			Eccentricity:  0.0167,
			GravParam:     G * (SolarMass + EarthMass),
		}
		hill := o.HillRadius(EarthMass)
		assert.Greater(t, hill, 1.4e9)
		assert.Less(t, hill, 1.55e9)
	})

	t.Run("massless inputs yield zero", func(t *testing.T) {
		o := &Orbit{OrbitedMass: SolarMass, SemiMajorAxis: AU}
		assert.Zero(t, o.HillRadius(0))
	})
}
