package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
)

func TestSternLevisonMass(t *testing.T) {
	t.Run("Earth clears its neighborhood", func(t *testing.T) {
		assert.Less(t, SternLevisonMass(cosmos.AU), cosmos.EarthMass)
	})

	t.Run("a Pluto mass cannot clear a Kuiper orbit", func(t *testing.T) {
		const plutoMass = 1.31e22
		assert.Greater(t, SternLevisonMass(39.5*cosmos.AU), plutoMass)
	})

	t.Run("threshold grows with distance", func(t *testing.T) {
		assert.Greater(t, SternLevisonMass(10*cosmos.AU), SternLevisonMass(cosmos.AU))
	})
}

func TestSternLevisonMassFor(t *testing.T) {
	t.Run("prefers the assigned orbit", func(t *testing.T) {
		body := &cosmos.Location{
			Type:     cosmos.StructurePlanet,
			Position: cosmos.Vector3{X: 9 * cosmos.AU},
			Orbit:    &cosmos.Orbit{SemiMajorAxis: cosmos.AU},
		}
		got, err := SternLevisonMassFor(body)
		require.NoError(t, err)
		assert.InEpsilon(t, SternLevisonMass(cosmos.AU), got, 1e-12)
	})

	t.Run("falls back to the provisional distance", func(t *testing.T) {
		parent := &cosmos.Location{Type: cosmos.StructureStarSystem}
		body := &cosmos.Location{
			Type:     cosmos.StructurePlanet,
			Position: cosmos.Vector3{X: 2 * cosmos.AU},
		}
		parent.AddChild(body)

		got, err := SternLevisonMassFor(body)
		require.NoError(t, err)
		assert.InEpsilon(t, SternLevisonMass(2*cosmos.AU), got, 1e-12)
	})

	t.Run("rogue body has no context", func(t *testing.T) {
		body := &cosmos.Location{Name: "stray", Type: cosmos.StructurePlanet}
		_, err := SternLevisonMassFor(body)
		require.ErrorIs(t, err, cosmos.ErrMissingOrbitalContext)
	})
}

func TestRocheRingLimit(t *testing.T) {
	t.Run("icy material survives farther out than rock", func(t *testing.T) {
		icy := RocheRingLimit(7e7, 1300, IcyRingDensity)
		rocky := RocheRingLimit(7e7, 1300, RockyRingDensity)
		assert.Greater(t, icy, rocky)
		assert.Greater(t, rocky, 7e7)
	})

	t.Run("zero ring density yields no limit", func(t *testing.T) {
		assert.Zero(t, RocheRingLimit(7e7, 1300, 0))
	})
}

func TestEquilibriumTemperature(t *testing.T) {
	t.Run("Earthlike distance and albedo land near 255 K", func(t *testing.T) {
		got := EquilibriumTemperature(cosmos.SolarLuminosity, cosmos.AU, 0.3)
		assert.InDelta(t, 255, got, 3)
	})

	t.Run("deep space floors at the cosmic background", func(t *testing.T) {
		got := EquilibriumTemperature(cosmos.SolarLuminosity, cosmos.LightYear, 0.3)
		assert.Equal(t, cosmos.CosmicBackgroundTemperature, got)
	})

	t.Run("no source means background temperature", func(t *testing.T) {
		assert.Equal(t, cosmos.CosmicBackgroundTemperature, EquilibriumTemperature(0, cosmos.AU, 0.3))
	})
}

func TestSchwarzschildRadius(t *testing.T) {
	assert.InDelta(t, 2954, SchwarzschildRadius(cosmos.SolarMass), 5)
}

func TestSnowLine(t *testing.T) {
	t.Run("solar luminosity freezes beyond 2.7 AU", func(t *testing.T) {
		assert.InEpsilon(t, 2.7*cosmos.AU, SnowLine(cosmos.SolarLuminosity), 1e-9)
	})

	t.Run("dim stars pull the line inward", func(t *testing.T) {
		assert.InEpsilon(t, 1.35*cosmos.AU, SnowLine(cosmos.SolarLuminosity/4), 1e-9)
	})

	t.Run("dark sources have no line", func(t *testing.T) {
		assert.Zero(t, SnowLine(0))
	})
}

func TestRadiusMassRoundTrip(t *testing.T) {
	const density = 3300.0
	for _, mass := range []float64{1e12, 3.4e20, cosmos.EarthMass} {
		r := RadiusForMass(mass, density)
		assert.InEpsilon(t, mass, MassForRadius(r, density), 1e-9)
	}
	assert.Zero(t, RadiusForMass(1e20, 0))
}
