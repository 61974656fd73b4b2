package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
)

func TestNewUniverse(t *testing.T) {
	t.Run("honors a pinned radius", func(t *testing.T) {
		universe, err := NewUniverse(1, UniverseParams{Radius: 1e23})
		require.NoError(t, err)

		assert.Equal(t, cosmos.StructureUniverse, universe.Type)
		assert.Equal(t, "Universe", universe.Name)
		assert.Equal(t, 1e23, universe.Radius())
		require.NotNil(t, universe.Material.Temperature)
		assert.Equal(t, cosmos.CosmicBackgroundTemperature, *universe.Material.Temperature)
	})

	t.Run("samples a radius when unset", func(t *testing.T) {
		universe, err := NewUniverse(2, UniverseParams{})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, universe.Radius(), 1e23)
		assert.LessOrEqual(t, universe.Radius(), 1e24)
	})

	t.Run("rejects a negative radius", func(t *testing.T) {
		_, err := NewUniverse(3, UniverseParams{Radius: -1})
		assert.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}

func TestNewGalaxy(t *testing.T) {
	t.Run("is deterministic for a seed", func(t *testing.T) {
		first, err := NewGalaxy(11, GalaxyParams{})
		require.NoError(t, err)
		second, err := NewGalaxy(11, GalaxyParams{})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Name, second.Name)
		assert.Equal(t, first.Material, second.Material)
	})

	t.Run("carries a supermassive core", func(t *testing.T) {
		galaxy, err := NewGalaxy(12, GalaxyParams{Name: "Messier 77"})
		require.NoError(t, err)

		children := galaxy.Children()
		require.Len(t, children, 1)
		core := children[0]
		assert.Equal(t, cosmos.StructureBlackHole, core.Type)
		assert.Equal(t, "Messier 77 A*", core.Name)
		assert.GreaterOrEqual(t, core.Mass(), 2e35)
	})

	t.Run("spiral disks are flat", func(t *testing.T) {
		galaxy, err := NewGalaxy(13, GalaxyParams{Kind: GalaxySpiral})
		require.NoError(t, err)

		shape := galaxy.Material.Shape
		assert.Equal(t, cosmos.ShapeSpheroid, shape.Kind)
		assert.Less(t, shape.C, shape.A*0.2)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		_, err := NewGalaxy(14, GalaxyParams{Kind: "ring"})
		assert.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}

func TestNewGlobularCluster(t *testing.T) {
	cluster, err := NewGlobularCluster(21, ClusterParams{Name: "NGC 104"})
	require.NoError(t, err)

	assert.Equal(t, cosmos.StructureGlobularCluster, cluster.Type)
	assert.Equal(t, cosmos.ShapeSphere, cluster.Material.Shape.Kind)
	assert.GreaterOrEqual(t, cluster.Mass(), 2e34)
	assert.LessOrEqual(t, cluster.Mass(), 4e36)

	t.Run("a minority host a central black hole", func(t *testing.T) {
		cored := 0
		for seed := int64(0); seed < 40; seed++ {
			cluster, err := NewGlobularCluster(seed, ClusterParams{})
			require.NoError(t, err)
			for _, child := range cluster.Children() {
				require.Equal(t, cosmos.StructureBlackHole, child.Type)
				cored++
			}
		}
		assert.Greater(t, cored, 0)
		assert.Less(t, cored, 40)
	})
}

func TestNewNebula(t *testing.T) {
	nebula, err := NewNebula(31, NebulaParams{})
	require.NoError(t, err)

	assert.Equal(t, cosmos.StructureNebula, nebula.Type)
	assert.Equal(t, cosmos.ShapeEllipsoid, nebula.Material.Shape.Kind)
	assert.NotEmpty(t, nebula.Name)
	require.NotNil(t, nebula.Material.Temperature)
	assert.GreaterOrEqual(t, *nebula.Material.Temperature, 10.0)
	assert.LessOrEqual(t, *nebula.Material.Temperature, 120.0)
}
