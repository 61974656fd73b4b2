package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
)

func flatten(root *cosmos.Location) []*cosmos.Location {
	var out []*cosmos.Location
	root.Walk(func(l *cosmos.Location) bool {
		out = append(out, l)
		return true
	})
	return out
}

func TestNewStarSystem(t *testing.T) {
	t.Run("same seed reproduces the identical system", func(t *testing.T) {
		a, err := NewStarSystem(99, SystemParams{})
		require.NoError(t, err)
		b, err := NewStarSystem(99, SystemParams{})
		require.NoError(t, err)

		fa, fb := flatten(a), flatten(b)
		require.Equal(t, len(fa), len(fb))
		for i := range fa {
			assert.Equal(t, fa[i].ID, fb[i].ID)
			assert.Equal(t, fa[i].Name, fb[i].Name)
			assert.Equal(t, fa[i].Type, fb[i].Type)
			assert.Equal(t, fa[i].Position, fb[i].Position)
		}
	})

	t.Run("the primary star sits at the origin", func(t *testing.T) {
		system, err := NewStarSystem(7, SystemParams{})
		require.NoError(t, err)

		children := system.Children()
		require.NotEmpty(t, children)
		assert.Equal(t, cosmos.StructureStar, children[0].Type)
		assert.True(t, children[0].Position.IsZero())
		assert.Contains(t, system.Name, " System")
	})

	t.Run("every orbiter resolves inside the system", func(t *testing.T) {
		for seed := int64(1); seed <= 5; seed++ {
			system, err := NewStarSystem(seed, SystemParams{})
			require.NoError(t, err)

			for _, child := range system.Children() {
				if child.Orbit == nil {
					continue
				}
				orbited := cosmos.FindByID(system, child.Orbit.OrbitedID)
				require.NotNil(t, orbited, "orbited body of %q missing", child.Name)
				assert.NotEqual(t, child.ID, orbited.ID)
			}
		}
	})

	t.Run("moons stay inside their planet's Hill sphere", func(t *testing.T) {
		for seed := int64(1); seed <= 5; seed++ {
			system, err := NewStarSystem(seed, SystemParams{})
			require.NoError(t, err)

			for _, child := range system.Children() {
				if child.Orbit == nil {
					continue
				}
				planet := cosmos.FindByID(system, child.Orbit.OrbitedID)
				require.NotNil(t, planet)
				if !planet.Type.IsPlanemo() {
					continue
				}

				dist, err := cosmos.DistanceBetween(child, planet)
				require.NoError(t, err)
				hill := planet.Orbit.HillRadius(planet.Mass())
				assert.LessOrEqual(t, dist, hill/3*1.01, "moon %q", child.Name)
				assert.GreaterOrEqual(t, dist, 3*planet.Radius()*0.99, "moon %q", child.Name)
			}
		}
	})

	t.Run("fixed star count letters the components", func(t *testing.T) {
		system, err := NewStarSystem(3, SystemParams{StarCount: 3, MaxPlanets: -1})
		require.NoError(t, err)

		var stars []*cosmos.Location
		for _, c := range system.Children() {
			if c.Type == cosmos.StructureStar {
				stars = append(stars, c)
			}
		}
		require.Len(t, stars, 3)
		assert.True(t, strings.HasSuffix(stars[0].Name, " A"))
		assert.True(t, strings.HasSuffix(stars[1].Name, " B"))
		assert.True(t, strings.HasSuffix(stars[2].Name, " C"))
		assert.GreaterOrEqual(t, stars[0].Mass(), stars[1].Mass())
		assert.GreaterOrEqual(t, stars[0].Mass(), stars[2].Mass())
	})

	t.Run("disabling planets leaves no planetary children", func(t *testing.T) {
		system, err := NewStarSystem(31, SystemParams{MaxPlanets: -1})
		require.NoError(t, err)
		for _, c := range system.Children() {
			assert.False(t, c.Type.IsPlanemo(), "unexpected %s %q", c.Type, c.Name)
		}
	})

	t.Run("system mass aggregates its members", func(t *testing.T) {
		system, err := NewStarSystem(23, SystemParams{})
		require.NoError(t, err)

		var sum float64
		for _, c := range system.Children() {
			sum += c.Mass()
		}
		assert.InEpsilon(t, sum, system.Mass(), 1e-12)
	})

	t.Run("negative star count is rejected", func(t *testing.T) {
		_, err := NewStarSystem(1, SystemParams{StarCount: -1})
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}
