package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
)

func TestNewStar(t *testing.T) {
	t.Run("a sunlike dwarf reproduces solar values", func(t *testing.T) {
		star, err := NewStar(7, StarParams{
			Temperature:     cosmos.SolarTemperature,
			LuminosityClass: LuminosityV,
		})
		require.NoError(t, err)

		assert.Equal(t, cosmos.StructureStar, star.Type)
		assert.InEpsilon(t, cosmos.SolarMass, star.Mass(), 0.01)
		assert.InEpsilon(t, cosmos.SolarLuminosity, star.Luminosity(), 0.01)
		assert.InEpsilon(t, cosmos.SolarRadius, star.Radius(), 0.01)
	})

	t.Run("same seed and params give the same star", func(t *testing.T) {
		a, err := NewStar(42, StarParams{})
		require.NoError(t, err)
		b, err := NewStar(42, StarParams{})
		require.NoError(t, err)

		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Mass(), b.Mass())
		assert.Equal(t, *a.Material.Temperature, *b.Material.Temperature)
	})

	t.Run("pinned temperature is honored", func(t *testing.T) {
		star, err := NewStar(3, StarParams{Temperature: 9000})
		require.NoError(t, err)
		assert.Equal(t, 9000.0, *star.Material.Temperature)
	})

	t.Run("spectral class bounds the sampled temperature", func(t *testing.T) {
		for seed := int64(0); seed < 20; seed++ {
			star, err := NewStar(seed, StarParams{SpectralClass: SpectralM})
			require.NoError(t, err)
			temp := *star.Material.Temperature
			assert.GreaterOrEqual(t, temp, 2400.0)
			assert.Less(t, temp, 3700.0)
		}
	})

	t.Run("giants outshine dwarfs of the same temperature", func(t *testing.T) {
		dwarf, err := NewStar(11, StarParams{Temperature: 4500, LuminosityClass: LuminosityV})
		require.NoError(t, err)
		giant, err := NewStar(11, StarParams{Temperature: 4500, LuminosityClass: LuminosityIII})
		require.NoError(t, err)

		assert.Greater(t, giant.Luminosity(), 5*dwarf.Luminosity())
		assert.Greater(t, giant.Radius(), dwarf.Radius())
	})

	t.Run("composition is normalized and hydrogen rich", func(t *testing.T) {
		star, err := NewStar(5, StarParams{})
		require.NoError(t, err)

		var sum, hydrogen float64
		for _, c := range star.Material.Composition {
			sum += c.Proportion
			if c.Substance == cosmos.SubstanceHydrogen {
				hydrogen = c.Proportion
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Greater(t, hydrogen, 0.5)
	})

	t.Run("negative temperature is rejected", func(t *testing.T) {
		_, err := NewStar(1, StarParams{Temperature: -10})
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})

	t.Run("unknown spectral class is rejected", func(t *testing.T) {
		_, err := NewStar(1, StarParams{SpectralClass: "Q"})
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}

func TestSpectralClassFor(t *testing.T) {
	cases := map[float64]SpectralClass{
		3000:  SpectralM,
		4500:  SpectralK,
		5778:  SpectralG,
		7000:  SpectralF,
		9000:  SpectralA,
		15000: SpectralB,
		40000: SpectralO,
	}
	for temp, want := range cases {
		assert.Equal(t, want, SpectralClassFor(temp), "temp %v", temp)
	}
}

func TestNewBlackHole(t *testing.T) {
	t.Run("shape is the event horizon", func(t *testing.T) {
		hole, err := NewBlackHole(9, BlackHoleParams{Mass: 10 * cosmos.SolarMass})
		require.NoError(t, err)

		assert.Equal(t, cosmos.StructureBlackHole, hole.Type)
		assert.InEpsilon(t, SchwarzschildRadius(10*cosmos.SolarMass), hole.Radius(), 1e-9)
		assert.Nil(t, hole.Material.Temperature)
	})

	t.Run("supermassive sampling lands in galactic-core range", func(t *testing.T) {
		for seed := int64(0); seed < 20; seed++ {
			hole, err := NewBlackHole(seed, BlackHoleParams{Supermassive: true})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, hole.Mass(), 2e35)
			assert.LessOrEqual(t, hole.Mass(), 1e40)
		}
	})

	t.Run("stellar sampling stays in remnant range", func(t *testing.T) {
		for seed := int64(0); seed < 20; seed++ {
			hole, err := NewBlackHole(seed, BlackHoleParams{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, hole.Mass(), 6e30)
			assert.LessOrEqual(t, hole.Mass(), 3e32)
		}
	})

	t.Run("negative mass is rejected", func(t *testing.T) {
		_, err := NewBlackHole(1, BlackHoleParams{Mass: -1})
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}
