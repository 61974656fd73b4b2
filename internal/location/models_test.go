package location

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/gen"
)

func simpleRow(parent *uuid.UUID, index int) Location {
	return Location{
		ID:         uuid.New(),
		ParentID:   parent,
		Type:       cosmos.StructureAsteroid,
		Name:       "rock",
		Mass:       1e10,
		Density:    2000,
		Shape:      cosmos.Sphere(1e3),
		ChildIndex: index,
	}
}

func TestFlattenTree(t *testing.T) {
	system, err := gen.NewStarSystem(21, gen.SystemParams{StarCount: 2})
	require.NoError(t, err)

	rows := FlattenTree(system)
	require.NotEmpty(t, rows)
	assert.Equal(t, system.ID, rows[0].ID)

	seen := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		if row.ParentID != nil {
			assert.True(t, seen[*row.ParentID], "%q should come after its parent", row.Name)
		}
		assert.Equal(t, system.ID, row.RootID)
		seen[row.ID] = true
	}
}

func TestBuildTreeRoundTrip(t *testing.T) {
	system, err := gen.NewStarSystem(21, gen.SystemParams{StarCount: 2})
	require.NoError(t, err)
	rows := FlattenTree(system)

	// Row order on disk is not guaranteed; rebuild from the worst case.
	reversed := make([]Location, len(rows))
	for i, row := range rows {
		reversed[len(rows)-1-i] = row
	}

	rebuilt, err := BuildTree(reversed)
	require.NoError(t, err)

	var wantIDs, gotIDs []uuid.UUID
	system.Walk(func(n *cosmos.Location) bool {
		wantIDs = append(wantIDs, n.ID)
		return true
	})
	rebuilt.Walk(func(n *cosmos.Location) bool {
		gotIDs = append(gotIDs, n.ID)
		return true
	})
	assert.Equal(t, wantIDs, gotIDs, "rebuilt walk should visit nodes in generation order")

	sample := cosmos.FindByID(system, rows[2].ID)
	require.NotNil(t, sample)
	twin := cosmos.FindByID(rebuilt, sample.ID)
	require.NotNil(t, twin)
	assert.Equal(t, sample.Name, twin.Name)
	assert.Equal(t, sample.Material.Mass, twin.Material.Mass)
	assert.Equal(t, sample.Position, twin.Position)

	var orbited *cosmos.Location
	system.Walk(func(n *cosmos.Location) bool {
		if n.Orbit != nil {
			orbited = n
			return false
		}
		return true
	})
	require.NotNil(t, orbited, "a binary system carries at least one orbit")

	rebuiltOrbit := cosmos.FindByID(rebuilt, orbited.ID).Orbit
	require.NotNil(t, rebuiltOrbit)
	assert.Equal(t, orbited.Orbit.OrbitedID, rebuiltOrbit.OrbitedID)
	assert.InEpsilon(t, orbited.Orbit.GravParam, rebuiltOrbit.GravParam, 1e-12,
		"gravitational parameter should be recomputed from the stored masses")
}

func TestBuildTreeValidation(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := BuildTree(nil)
		assert.ErrorIs(t, err, cosmos.ErrInvalidConfiguration)
	})

	t.Run("two roots", func(t *testing.T) {
		_, err := BuildTree([]Location{simpleRow(nil, 0), simpleRow(nil, 0)})
		assert.ErrorIs(t, err, cosmos.ErrDisjointHierarchy)
	})

	t.Run("orphan counts as a second root", func(t *testing.T) {
		missing := uuid.New()
		_, err := BuildTree([]Location{simpleRow(nil, 0), simpleRow(&missing, 0)})
		assert.ErrorIs(t, err, cosmos.ErrDisjointHierarchy)
	})

	t.Run("cycle without a root", func(t *testing.T) {
		a := simpleRow(nil, 0)
		b := simpleRow(&a.ID, 0)
		a.ParentID = &b.ID
		_, err := BuildTree([]Location{a, b})
		assert.ErrorIs(t, err, cosmos.ErrDisjointHierarchy)
	})

	t.Run("disconnected cycle", func(t *testing.T) {
		root := simpleRow(nil, 0)
		a := simpleRow(nil, 0)
		b := simpleRow(&a.ID, 0)
		a.ParentID = &b.ID
		_, err := BuildTree([]Location{root, a, b})
		assert.ErrorIs(t, err, cosmos.ErrDisjointHierarchy)
	})
}

func TestBuildTreeRestoresSiblingOrder(t *testing.T) {
	parent := simpleRow(nil, 0)
	first := simpleRow(&parent.ID, 0)
	second := simpleRow(&parent.ID, 1)
	third := simpleRow(&parent.ID, 2)

	root, err := BuildTree([]Location{third, parent, second, first})
	require.NoError(t, err)

	children := root.Children()
	require.Len(t, children, 3)
	assert.Equal(t, first.ID, children[0].ID)
	assert.Equal(t, second.ID, children[1].ID)
	assert.Equal(t, third.ID, children[2].ID)
}

func TestFromNode(t *testing.T) {
	parent := &cosmos.Location{
		ID:       uuid.New(),
		Name:     "field",
		Type:     cosmos.StructureAsteroidField,
		Material: cosmos.Material{Mass: 1e20, Shape: cosmos.Torus(1e11, 1e10)},
	}
	for range 3 {
		parent.AddChild(&cosmos.Location{
			ID:       uuid.New(),
			Type:     cosmos.StructureAsteroid,
			Material: cosmos.Material{Mass: 1e12, Shape: cosmos.Sphere(1e3)},
		})
	}

	view := FromNode(parent)
	assert.Nil(t, view.ParentID)
	assert.Equal(t, parent.ID, view.RootID)
	assert.Equal(t, 0, view.ChildIndex)
	assert.Equal(t, 3, view.ChildCount)

	last := parent.Children()[2]
	view = FromNode(last)
	require.NotNil(t, view.ParentID)
	assert.Equal(t, parent.ID, *view.ParentID)
	assert.Equal(t, 2, view.ChildIndex)
	assert.Equal(t, 0, view.ChildCount)
}

func TestToNodeRecomputesGravParam(t *testing.T) {
	temp := 160.0
	row := Location{
		ID:          uuid.New(),
		Type:        cosmos.StructurePlanet,
		Name:        "wanderer",
		Mass:        cosmos.EarthMass,
		Temperature: &temp,
		Shape:       cosmos.Sphere(cosmos.EarthRadius),
		Orbit: &cosmos.Orbit{
			OrbitedID:     uuid.New(),
			OrbitedMass:   cosmos.SolarMass,
			SemiMajorAxis: cosmos.AU,
		},
	}

	node := row.ToNode()
	require.NotNil(t, node.Orbit)
	assert.InEpsilon(t, cosmos.G*(cosmos.SolarMass+cosmos.EarthMass), node.Orbit.GravParam, 1e-12)

	// The temperature is a copy, not a shared pointer.
	*node.Material.Temperature = 9000
	assert.Equal(t, 160.0, temp)
}
