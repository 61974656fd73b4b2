package gen

import (
	"fmt"
	"math"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// SpawnContext carries the surroundings of a body being generated:
// the node it will be attached to, the body it will orbit (nil when the
// region provides none), and its position in the parent's frame.
type SpawnContext struct {
	Parent   *cosmos.Location
	Anchor   *cosmos.Location
	Position cosmos.Vector3
}

// SpawnFunc builds one location from a seed and its surroundings.
type SpawnFunc func(seed int64, sc SpawnContext) (*cosmos.Location, error)

// ChildDefinition describes one kind of child a region hosts.
type ChildDefinition struct {
	Type cosmos.StructureType
	// Density is the expected number of children per cubic meter of
	// region volume, so counts track region size.
	Density float64
	// Space is the exclusion radius children of this kind claim during
	// placement.
	Space float64
	// Orbit shaping, used when the region provides an anchor.
	MinEccentricity float64
	MaxEccentricity float64
	MaxInclination  float64
	Spawn           SpawnFunc
}

// childDefinitionsFor returns what a region hosts. Star systems return
// nothing: they are laid out fully by their own generator.
func childDefinitionsFor(parent *cosmos.Location) []ChildDefinition {
	switch parent.Type {
	case cosmos.StructureUniverse:
		return []ChildDefinition{
			{Type: cosmos.StructureGalaxy, Density: 3e-71, Space: 2e22,
				Spawn: spawnerFor(cosmos.StructureGalaxy)},
		}
	case cosmos.StructureGalaxy:
		return []ChildDefinition{
			{Type: cosmos.StructureStarSystem, Density: 5e-61, Space: 4e16,
				MinEccentricity: 0.05, MaxEccentricity: 0.6, MaxInclination: 0.4,
				Spawn: spawnerFor(cosmos.StructureStarSystem)},
			{Type: cosmos.StructureGlobularCluster, Density: 5.5e-62, Space: 8e17,
				MinEccentricity: 0.2, MaxEccentricity: 0.8, MaxInclination: 1.2,
				Spawn: spawnerFor(cosmos.StructureGlobularCluster)},
			{Type: cosmos.StructureNebula, Density: 3.5e-62, Space: 8e17,
				MinEccentricity: 0.05, MaxEccentricity: 0.5, MaxInclination: 0.5,
				Spawn: spawnerFor(cosmos.StructureNebula)},
			{Type: cosmos.StructurePlanet, Density: 9e-62, Space: 1e13,
				MinEccentricity: 0, MaxEccentricity: 0.9, MaxInclination: 0.6,
				Spawn: spawnRoguePlanemo},
		}
	case cosmos.StructureGlobularCluster:
		return []ChildDefinition{
			{Type: cosmos.StructureStarSystem, Density: 1.8e-52, Space: 8e15,
				MinEccentricity: 0, MaxEccentricity: 0.7, MaxInclination: math.Pi,
				Spawn: spawnerFor(cosmos.StructureStarSystem)},
		}
	case cosmos.StructureNebula:
		return []ChildDefinition{
			{Type: cosmos.StructureStarSystem, Density: 8e-54, Space: 4e16,
				Spawn: spawnerFor(cosmos.StructureStarSystem)},
		}
	case cosmos.StructureAsteroidField:
		return []ChildDefinition{
			{Type: cosmos.StructureAsteroid, Density: 2.6e-33, Space: 2e8,
				MinEccentricity: 0, MaxEccentricity: 0.35, MaxInclination: 0.3,
				Spawn: spawnFieldAsteroid(AsteroidClassC)},
			{Type: cosmos.StructureAsteroid, Density: 5e-34, Space: 2e8,
				MinEccentricity: 0, MaxEccentricity: 0.35, MaxInclination: 0.3,
				Spawn: spawnFieldAsteroid(AsteroidClassS)},
			{Type: cosmos.StructureAsteroid, Density: 3.5e-34, Space: 2e8,
				MinEccentricity: 0, MaxEccentricity: 0.35, MaxInclination: 0.3,
				Spawn: spawnFieldAsteroid(AsteroidClassM)},
			{Type: cosmos.StructureComet, Density: 1.8e-34, Space: 2e8,
				MinEccentricity: 0.6, MaxEccentricity: 0.99, MaxInclination: 1.0,
				Spawn: spawnerFor(cosmos.StructureComet)},
		}
	case cosmos.StructureOortCloud:
		return []ChildDefinition{
			{Type: cosmos.StructureComet, Density: 1.7e-47, Space: 1e9,
				MinEccentricity: 0.1, MaxEccentricity: 0.9, MaxInclination: math.Pi,
				Spawn: spawnerFor(cosmos.StructureComet)},
		}
	}
	return nil
}

// orbitAnchor resolves the body the region's children should orbit.
// Galaxies and clusters anchor on their heaviest stellar member.
// Debris fields anchor on whatever the field itself orbits, falling
// back to the heaviest stellar body among their siblings. Universes and
// nebulae anchor nothing; their contents drift.
func orbitAnchor(parent *cosmos.Location) *cosmos.Location {
	switch parent.Type {
	case cosmos.StructureGalaxy, cosmos.StructureGlobularCluster, cosmos.StructureStarSystem:
		return heaviestStellarChild(parent)
	case cosmos.StructureAsteroidField, cosmos.StructureOortCloud:
		if parent.Orbit != nil {
			if n := cosmos.FindByID(parent.Root(), parent.Orbit.OrbitedID); n != nil {
				return n
			}
		}
		if p := parent.Parent(); p != nil {
			return heaviestStellarChild(p)
		}
	}
	return nil
}

func heaviestStellarChild(parent *cosmos.Location) *cosmos.Location {
	var best *cosmos.Location
	for _, child := range parent.Children() {
		if !child.Type.IsStellar() {
			continue
		}
		if best == nil || child.Mass() > best.Mass() {
			best = child
		}
	}
	return best
}

// anchorContext extracts the stellar context for a spawn: the anchor
// body and the spawn position's distance to it. Zero context when the
// region has no anchor.
func anchorContext(sc SpawnContext) (*cosmos.Location, float64) {
	if sc.Anchor == nil {
		return nil, 0
	}
	anchorPos, err := cosmos.PositionIn(sc.Anchor, sc.Parent)
	if err != nil {
		return sc.Anchor, 0
	}
	return sc.Anchor, sc.Position.DistanceTo(anchorPos)
}

// spawnerFor maps a structure type to its generator with default
// parameters, wiring in whatever stellar context the spawn site offers.
func spawnerFor(t cosmos.StructureType) SpawnFunc {
	switch t {
	case cosmos.StructureUniverse:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewUniverse(seed, UniverseParams{})
		}
	case cosmos.StructureGalaxy:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewGalaxy(seed, GalaxyParams{})
		}
	case cosmos.StructureGlobularCluster:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewGlobularCluster(seed, ClusterParams{})
		}
	case cosmos.StructureNebula:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewNebula(seed, NebulaParams{})
		}
	case cosmos.StructureStarSystem:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewStarSystem(seed, SystemParams{})
		}
	case cosmos.StructureStar:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewStar(seed, StarParams{})
		}
	case cosmos.StructureBlackHole:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			return NewBlackHole(seed, BlackHoleParams{})
		}
	case cosmos.StructurePlanet, cosmos.StructureGasGiant,
		cosmos.StructureIceGiant, cosmos.StructureDwarfPlanet:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			star, dist := anchorContext(sc)
			return NewPlanemo(seed, PlanemoParams{Kind: t, Star: star, OrbitDistance: dist})
		}
	case cosmos.StructureAsteroid:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			star, dist := anchorContext(sc)
			return NewAsteroid(seed, SmallBodyParams{Star: star, OrbitDistance: dist})
		}
	case cosmos.StructureComet:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			star, dist := anchorContext(sc)
			return NewComet(seed, SmallBodyParams{Star: star, OrbitDistance: dist})
		}
	case cosmos.StructureAsteroidField:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			star, dist := anchorContext(sc)
			return NewAsteroidField(seed, FieldParams{Star: star, OrbitDistance: dist})
		}
	case cosmos.StructureOortCloud:
		return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
			star, _ := anchorContext(sc)
			return NewOortCloud(seed, CloudParams{Star: star})
		}
	}
	return nil
}

// spawnFieldAsteroid pins the taxonomic class; abundance is expressed
// through the per-class densities instead of per-body sampling.
func spawnFieldAsteroid(class AsteroidClass) SpawnFunc {
	return func(seed int64, sc SpawnContext) (*cosmos.Location, error) {
		star, dist := anchorContext(sc)
		return NewAsteroid(seed, SmallBodyParams{Class: class, Star: star, OrbitDistance: dist})
	}
}

// spawnRoguePlanemo scatters starless planetary-mass bodies through a
// galaxy. The kind mix skews terrestrial, matching ejection odds.
func spawnRoguePlanemo(seed int64, sc SpawnContext) (*cosmos.Location, error) {
	rng := randx.New(seed)
	kinds := []cosmos.StructureType{
		cosmos.StructurePlanet, cosmos.StructureGasGiant,
		cosmos.StructureIceGiant, cosmos.StructureDwarfPlanet,
	}
	kind := kinds[rng.WeightedChoice([]float64{0.5, 0.2, 0.15, 0.15})]
	return NewPlanemo(rng.Int64(), PlanemoParams{Kind: kind})
}

// New generates a single location of the given type. With a parent, the
// location is attached at position (parent frame); when the parent
// offers an orbit anchor, the new body is also set orbiting it.
func New(seed int64, t cosmos.StructureType, parent *cosmos.Location, position cosmos.Vector3) (*cosmos.Location, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("structure type %q: %w", t, cosmos.ErrInvalidConfiguration)
	}
	spawn := spawnerFor(t)
	if spawn == nil {
		return nil, fmt.Errorf("no generator for %q: %w", t, cosmos.ErrInvalidConfiguration)
	}

	rng := randx.New(seed)
	sc := SpawnContext{Parent: parent, Position: position}
	if parent != nil {
		sc.Anchor = orbitAnchor(parent)
	}

	loc, err := spawn(rng.Int64(), sc)
	if err != nil {
		return nil, err
	}
	loc.Position = position
	if parent == nil {
		return loc, nil
	}
	parent.AddChild(loc)

	// Debris regions are distributions of member orbits rather than
	// orbiting bodies, so they stay where they were placed.
	if t == cosmos.StructureAsteroidField || t == cosmos.StructureOortCloud {
		return loc, nil
	}

	if sc.Anchor != nil && t.CanOrbit() {
		rel, err := cosmos.PositionIn(loc, sc.Anchor)
		if err == nil && !rel.IsZero() {
			orbit, err := cosmos.EccentricOrbit(rng, loc.Mass(), sc.Anchor.Mass(), rel, rng.Float64Between(0, 0.3), 0.2)
			if err != nil {
				return nil, err
			}
			if err := cosmos.AssignOrbit(loc, sc.Anchor, orbit); err != nil {
				return nil, err
			}
		}
	}
	return loc, nil
}
