package gen

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

func testEngine(parallel bool) *Engine {
	opts := DefaultOptions()
	opts.Parallel = parallel
	return NewEngine(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSampleCountsTracksExpectation(t *testing.T) {
	engine := testEngine(false)
	cloud := &cosmos.Location{
		Name: "shell", Type: cosmos.StructureOortCloud,
		Material: cosmos.Material{Shape: cosmos.HollowSphere(3e15, 7e15)},
	}

	defs := childDefinitionsFor(cloud)
	require.Len(t, defs, 1)

	expected := cloud.Volume() * defs[0].Density
	require.Greater(t, expected, 5.0)
	require.Less(t, expected, float64(DefaultOptions().MaxChildren))

	rng := randx.New(12345)
	const trials = 1500
	var sum float64
	for i := 0; i < trials; i++ {
		counts := engine.sampleCounts(cloud, defs, rng)
		sum += float64(counts[0])
	}
	mean := sum / trials

	tolerance := 3*math.Sqrt(expected/trials) + 0.1
	assert.InDelta(t, expected, mean, tolerance)
}

func TestPopulateStandaloneField(t *testing.T) {
	engine := testEngine(false)
	field, err := NewAsteroidField(5, FieldParams{OrbitDistance: 10 * cosmos.AU})
	require.NoError(t, err)

	children, err := engine.Populate(field, randx.New(9))
	require.NoError(t, err)
	require.NotEmpty(t, children)
	assert.LessOrEqual(t, len(children), DefaultOptions().MaxChildren)

	t.Run("members keep their exclusion space", func(t *testing.T) {
		for i := range children {
			for j := i + 1; j < len(children); j++ {
				dist := children[i].Position.DistanceTo(children[j].Position)
				assert.GreaterOrEqual(t, dist, 2e8*0.999)
			}
		}
	})

	t.Run("with no anchor, members stay in the field unorbited", func(t *testing.T) {
		for _, c := range children {
			assert.Same(t, field, c.Parent())
			assert.Nil(t, c.Orbit)
		}
	})
}

func TestPopulateParallelMatchesSerial(t *testing.T) {
	fieldA, err := NewAsteroidField(5, FieldParams{OrbitDistance: 10 * cosmos.AU})
	require.NoError(t, err)
	fieldB, err := NewAsteroidField(5, FieldParams{OrbitDistance: 10 * cosmos.AU})
	require.NoError(t, err)

	childrenA, err := testEngine(true).Populate(fieldA, randx.New(77))
	require.NoError(t, err)
	childrenB, err := testEngine(false).Populate(fieldB, randx.New(77))
	require.NoError(t, err)

	require.Equal(t, len(childrenA), len(childrenB))
	for i := range childrenA {
		assert.Equal(t, childrenA[i].ID, childrenB[i].ID)
		assert.Equal(t, childrenA[i].Name, childrenB[i].Name)
		assert.Equal(t, childrenA[i].Type, childrenB[i].Type)
		assert.Equal(t, childrenA[i].Position, childrenB[i].Position)
	}
}

func TestPopulateRehomesFieldMembers(t *testing.T) {
	system := &cosmos.Location{
		Name: "host system", Type: cosmos.StructureStarSystem,
		Material: cosmos.Material{Shape: cosmos.Sphere(1e13)},
	}
	star := sunlikeStar(t)
	system.AddChild(star)

	const beltRadius = 10 * cosmos.AU
	field, err := NewAsteroidField(21, FieldParams{Star: star, OrbitDistance: beltRadius})
	require.NoError(t, err)
	system.AddChild(field)

	children, err := testEngine(true).Populate(field, randx.New(4))
	require.NoError(t, err)
	require.NotEmpty(t, children)

	assert.Zero(t, field.ChildCount())
	for _, c := range children {
		assert.Same(t, system, c.Parent())
		require.NotNil(t, c.Orbit, "member %q should orbit the star", c.Name)
		assert.Equal(t, star.ID, c.Orbit.OrbitedID)

		dist, err := cosmos.DistanceBetween(c, star)
		require.NoError(t, err)
		assert.InDelta(t, beltRadius, dist, 0.2*beltRadius)
	}
}

func TestPopulateValidation(t *testing.T) {
	engine := testEngine(false)

	t.Run("nil parent", func(t *testing.T) {
		_, err := engine.Populate(nil, randx.New(1))
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})

	t.Run("non-region parent", func(t *testing.T) {
		star := sunlikeStar(t)
		_, err := engine.Populate(star, randx.New(1))
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}

func TestPlaceChildGivesUpWhenCrowded(t *testing.T) {
	engine := testEngine(false)
	region, err := NewOortCloud(2, CloudParams{})
	require.NoError(t, err)

	blocked := []placedChild{{pos: cosmos.Vector3{}, space: region.Radius() * 10}}
	def := ChildDefinition{Type: cosmos.StructureComet, Space: 1}
	_, ok := engine.placeChild(region, def, blocked, randx.New(1))
	assert.False(t, ok)
}

func TestPopulateTreeCascades(t *testing.T) {
	galaxy, err := NewGalaxy(6, GalaxyParams{Kind: GalaxySpiral})
	require.NoError(t, err)
	core := galaxy.Children()[0]
	require.Equal(t, cosmos.StructureBlackHole, core.Type)

	total, err := testEngine(true).PopulateTree(galaxy, randx.New(8))
	require.NoError(t, err)
	assert.Greater(t, total, 0)

	for _, child := range galaxy.Children() {
		if child.ID == core.ID || child.Orbit == nil {
			continue
		}
		assert.Equal(t, core.ID, child.Orbit.OrbitedID, "%q should circle the core", child.Name)
	}

	var systems int
	galaxy.Walk(func(l *cosmos.Location) bool {
		if l.Type == cosmos.StructureStarSystem {
			systems++
		}
		return true
	})
	assert.Greater(t, systems, 0)
}

func TestNew(t *testing.T) {
	t.Run("standalone star", func(t *testing.T) {
		star, err := New(3, cosmos.StructureStar, nil, cosmos.Vector3{})
		require.NoError(t, err)
		assert.Equal(t, cosmos.StructureStar, star.Type)
		assert.Nil(t, star.Parent())
	})

	t.Run("planet under a system orbits the primary", func(t *testing.T) {
		system := &cosmos.Location{
			Name: "host system", Type: cosmos.StructureStarSystem,
			Material: cosmos.Material{Shape: cosmos.Sphere(1e13)},
		}
		star := sunlikeStar(t)
		system.AddChild(star)

		planet, err := New(8, cosmos.StructurePlanet, system, cosmos.Vector3{X: 2 * cosmos.AU})
		require.NoError(t, err)

		assert.Same(t, system, planet.Parent())
		require.NotNil(t, planet.Orbit)
		assert.Equal(t, star.ID, planet.Orbit.OrbitedID)

		dist, err := cosmos.DistanceBetween(planet, star)
		require.NoError(t, err)
		assert.InEpsilon(t, 2*cosmos.AU, dist, 1e-6)
	})

	t.Run("same seed and site give the same body", func(t *testing.T) {
		a, err := New(14, cosmos.StructureComet, nil, cosmos.Vector3{})
		require.NoError(t, err)
		b, err := New(14, cosmos.StructureComet, nil, cosmos.Vector3{})
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, a.Name, b.Name)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := New(1, "teapot", nil, cosmos.Vector3{})
		require.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})
}
