package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
)

func TestNewAsteroidField(t *testing.T) {
	t.Run("builds a torus at the requested distance", func(t *testing.T) {
		star := sunlikeStar(t)
		field, err := NewAsteroidField(41, FieldParams{Star: star, OrbitDistance: 3 * cosmos.AU})
		require.NoError(t, err)

		shape := field.Material.Shape
		assert.Equal(t, cosmos.ShapeTorus, shape.Kind)
		assert.Equal(t, 3*cosmos.AU, shape.A)
		assert.Less(t, shape.B, shape.A)
		assert.Equal(t, star.Name+" Belt", field.Name)

		want := EquilibriumTemperature(star.Luminosity(), 3*cosmos.AU, field.Material.Albedo)
		require.NotNil(t, field.Material.Temperature)
		assert.Equal(t, want, *field.Material.Temperature)
	})

	t.Run("samples a distance without a primary", func(t *testing.T) {
		field, err := NewAsteroidField(42, FieldParams{})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, field.Material.Shape.A, 2*cosmos.AU)
		assert.LessOrEqual(t, field.Material.Shape.A, 6*cosmos.AU)
		assert.Contains(t, field.Name, " Belt")
		require.NotNil(t, field.Material.Temperature)
		assert.Equal(t, cosmos.CosmicBackgroundTemperature, *field.Material.Temperature)
	})

	t.Run("rejects a negative distance", func(t *testing.T) {
		_, err := NewAsteroidField(43, FieldParams{OrbitDistance: -1})
		assert.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}

func TestNewOortCloud(t *testing.T) {
	star := sunlikeStar(t)
	cloud, err := NewOortCloud(51, CloudParams{Star: star})
	require.NoError(t, err)

	shape := cloud.Material.Shape
	assert.Equal(t, cosmos.ShapeHollowSphere, shape.Kind)
	assert.Greater(t, shape.B, shape.A)
	assert.GreaterOrEqual(t, shape.A, 2.5e15)
	assert.Equal(t, star.Name+" Cloud", cloud.Name)
	require.NotNil(t, cloud.Material.Temperature)
	assert.Equal(t, cosmos.CosmicBackgroundTemperature, *cloud.Material.Temperature)

	var ice float64
	for _, c := range cloud.Material.Composition {
		if c.Substance == cosmos.SubstanceWaterIce {
			ice = c.Proportion
		}
	}
	assert.Greater(t, ice, 0.4)
}
