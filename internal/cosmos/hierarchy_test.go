package cosmos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBody(name string, t StructureType, mass, radius float64) *Location {
	return &Location{
		ID:   uuid.New(),
		Name: name,
		Type: t,
		Material: Material{
			Mass:    mass,
			Shape:   Sphere(radius),
			Density: mass / Sphere(radius).Volume(),
		},
	}
}

// testSystem builds a system with a star at the origin, a planet at 1 AU
// on x, and a moon 4e8 m further out on x.
func testSystem() (system, star, planet, moon *Location) {
	system = testBody("system", StructureStarSystem, 0, 5e16)
	star = testBody("star", StructureStar, SolarMass, SolarRadius)
	planet = testBody("planet", StructurePlanet, EarthMass, EarthRadius)
	moon = testBody("moon", StructureDwarfPlanet, 7.3e22, 1.7e6)

	system.AddChild(star)
	system.AddChild(planet)
	system.AddChild(moon)
	planet.Position = Vector3{X: AU}
	moon.Position = Vector3{X: AU + 4e8}
	return system, star, planet, moon
}

func TestTreeOps(t *testing.T) {
	system, star, planet, moon := testSystem()

	t.Run("parent pointers stay consistent", func(t *testing.T) {
		require.Equal(t, system, star.Parent())
		require.Len(t, system.Children(), 3)

		other := testBody("other", StructureStarSystem, 0, 1e16)
		other.AddChild(moon)
		assert.Equal(t, other, moon.Parent())
		assert.Len(t, system.Children(), 2)

		system.AddChild(moon)
		moon.Position = Vector3{X: AU + 4e8}
	})

	t.Run("remove detaches the subtree intact", func(t *testing.T) {
		removed := system.RemoveChild(planet)
		require.True(t, removed)
		assert.Nil(t, planet.Parent())
		assert.False(t, system.RemoveChild(planet))

		system.AddChild(planet)
	})

	t.Run("find by id walks the whole tree", func(t *testing.T) {
		assert.Equal(t, moon, FindByID(system, moon.ID))
		assert.Nil(t, FindByID(system, uuid.New()))
	})

	t.Run("absolute position chain accumulates from the root", func(t *testing.T) {
		chain := moon.AbsolutePositionChain()
		require.Len(t, chain, 2)
		assert.Equal(t, Vector3{}, chain[0])
		assert.Equal(t, Vector3{X: AU + 4e8}, chain[1])
	})
}

func TestPositionInAndDistance(t *testing.T) {
	system, star, planet, moon := testSystem()

	t.Run("sibling distance", func(t *testing.T) {
		d, err := DistanceBetween(planet, star)
		require.NoError(t, err)
		assert.InDelta(t, AU, d, 1)
	})

	t.Run("position in a sibling frame", func(t *testing.T) {
		rel, err := PositionIn(moon, planet)
		require.NoError(t, err)
		assert.InDelta(t, 4e8, rel.X, 1e-3)
	})

	t.Run("identical node distance is zero", func(t *testing.T) {
		d, err := DistanceBetween(planet, planet)
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("nodes of unrelated trees are disjoint", func(t *testing.T) {
		stray := testBody("stray", StructureAsteroid, 1e15, 1e4)
		_, err := DistanceBetween(planet, stray)
		require.ErrorIs(t, err, ErrDisjointHierarchy)

		_, err = PositionIn(stray, system)
		require.ErrorIs(t, err, ErrDisjointHierarchy)
	})
}

func TestReparent(t *testing.T) {
	system, _, planet, moon := testSystem()
	galaxy := testBody("galaxy", StructureGalaxy, 1e42, 5e20)
	galaxy.AddChild(system)
	system.Position = Vector3{X: 3e17}

	t.Run("preserves absolute position", func(t *testing.T) {
		before := positionInAncestorFrame(moon, galaxy)
		require.NoError(t, Reparent(moon, galaxy))
		assert.Equal(t, galaxy, moon.Parent())
		after := positionInAncestorFrame(moon, galaxy)
		assert.InDelta(t, before.X, after.X, 1e-3)
		assert.InDelta(t, before.Y, after.Y, 1e-3)
		assert.InDelta(t, before.Z, after.Z, 1e-3)
	})

	t.Run("rejects cycles", func(t *testing.T) {
		err := Reparent(system, planet)
		require.Error(t, err)

		err = Reparent(galaxy, moon)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestAssignOrbit(t *testing.T) {
	t.Run("rebases the body onto the orbit", func(t *testing.T) {
		_, star, planet, _ := testSystem()
		o, err := CircularOrbit(planet.Mass(), star.Mass(), Vector3{X: AU})
		require.NoError(t, err)

		require.NoError(t, AssignOrbit(planet, star, o))
		assert.Equal(t, star.ID, planet.Orbit.OrbitedID)
		assert.InDelta(t, AU, planet.Position.Length(), 1e4)
		assert.Positive(t, planet.Velocity.Length())
	})

	t.Run("moon position composes with the planet position", func(t *testing.T) {
		_, _, planet, moon := testSystem()
		o, err := CircularOrbit(moon.Mass(), planet.Mass(), Vector3{X: 4e8})
		require.NoError(t, err)

		require.NoError(t, AssignOrbit(moon, planet, o))
		rel := moon.Position.Sub(planet.Position)
		assert.InDelta(t, 4e8, rel.Length(), 1)
	})

	t.Run("self orbit is rejected", func(t *testing.T) {
		_, star, _, _ := testSystem()
		o := &Orbit{OrbitedMass: SolarMass, SemiMajorAxis: AU, GravParam: G * SolarMass}
		require.ErrorIs(t, AssignOrbit(star, star, o), ErrInvalidConfiguration)
	})
}

func TestAdvanceOrbit(t *testing.T) {
	t.Run("without an orbit it is a validation error", func(t *testing.T) {
		_, _, planet, _ := testSystem()
		require.ErrorIs(t, AdvanceOrbit(planet, 3600), ErrInvalidConfiguration)
	})

	t.Run("advancing a full period returns to the start", func(t *testing.T) {
		_, star, planet, _ := testSystem()
		o, err := CircularOrbit(planet.Mass(), star.Mass(), Vector3{X: AU})
		require.NoError(t, err)
		require.NoError(t, AssignOrbit(planet, star, o))

		start := planet.Position
		require.NoError(t, AdvanceOrbit(planet, o.Period()))
		assert.InDelta(t, start.X, planet.Position.X, 1e-4*AU)
		assert.InDelta(t, start.Y, planet.Position.Y, 1e-4*AU)
	})

	t.Run("a moved primary rebases its satellites", func(t *testing.T) {
		_, _, planet, moon := testSystem()
		o, err := CircularOrbit(moon.Mass(), planet.Mass(), Vector3{X: 4e8})
		require.NoError(t, err)
		require.NoError(t, AssignOrbit(moon, planet, o))

		planet.Position = Vector3{Y: 2 * AU}
		require.NoError(t, AdvanceOrbit(moon, 0))
		rel := moon.Position.Sub(planet.Position)
		assert.InDelta(t, 4e8, rel.Length(), 1e3)
	})

	t.Run("orbit referencing a node outside the tree is disjoint", func(t *testing.T) {
		_, star, planet, _ := testSystem()
		o, err := CircularOrbit(planet.Mass(), star.Mass(), Vector3{X: AU})
		require.NoError(t, err)
		require.NoError(t, AssignOrbit(planet, star, o))

		planet.Orbit.OrbitedID = uuid.New()
		require.ErrorIs(t, AdvanceOrbit(planet, 3600), ErrDisjointHierarchy)
	})
}

func TestHillSphereRadius(t *testing.T) {
	t.Run("orbitless body has no orbital context", func(t *testing.T) {
		rogue := testBody("rogue", StructurePlanet, EarthMass, EarthRadius)
		_, err := HillSphereRadius(rogue)
		require.ErrorIs(t, err, ErrMissingOrbitalContext)
	})

	t.Run("orbiting body inherits the orbit's hill radius", func(t *testing.T) {
		_, star, planet, _ := testSystem()
		o, err := CircularOrbit(planet.Mass(), star.Mass(), Vector3{X: AU})
		require.NoError(t, err)
		require.NoError(t, AssignOrbit(planet, star, o))

		hill, err := HillSphereRadius(planet)
		require.NoError(t, err)
		assert.InEpsilon(t, o.HillRadius(planet.Mass()), hill, 1e-12)
	})
}

func TestIndex(t *testing.T) {
	system, _, planet, moon := testSystem()
	ix := NewIndex(system)

	t.Run("indexes every node", func(t *testing.T) {
		require.Equal(t, 4, ix.Len())
		found, ok := ix.Find(moon.ID)
		require.True(t, ok)
		assert.Equal(t, moon, found)
	})

	t.Run("attach registers the whole subtree", func(t *testing.T) {
		belt := testBody("belt", StructureAsteroidField, 3e21, 1e11)
		rock := testBody("rock", StructureAsteroid, 1e15, 1e4)
		belt.AddChild(rock)

		require.NoError(t, ix.Attach(planet, belt))
		_, ok := ix.Find(rock.ID)
		assert.True(t, ok)
		assert.Equal(t, 6, ix.Len())
	})

	t.Run("attach under a foreign parent fails", func(t *testing.T) {
		stranger := testBody("stranger", StructureStarSystem, 0, 1e16)
		err := ix.Attach(stranger, testBody("x", StructureAsteroid, 1, 1))
		require.ErrorIs(t, err, ErrDisjointHierarchy)
	})

	t.Run("detach unregisters the subtree", func(t *testing.T) {
		require.NoError(t, ix.Detach(moon))
		_, ok := ix.Find(moon.ID)
		assert.False(t, ok)
		assert.Nil(t, moon.Parent())
	})

	t.Run("root cannot be detached", func(t *testing.T) {
		require.ErrorIs(t, ix.Detach(system), ErrInvalidConfiguration)
	})
}
