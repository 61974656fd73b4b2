package location

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"cosmos-server/internal/cosmos"
)

// Location is the persisted, wire-ready view of one hierarchy node.
// Position and Velocity are in the parent's frame, meters and meters
// per second.
type Location struct {
	ID       uuid.UUID            `json:"id"`
	ParentID *uuid.UUID           `json:"parent_id,omitempty"`
	RootID   uuid.UUID            `json:"root_id"`
	Type     cosmos.StructureType `json:"type"`
	Name     string               `json:"name"`

	Position cosmos.Vector3 `json:"position"`
	Velocity cosmos.Vector3 `json:"velocity"`

	// AbsolutePositions traces the node's path from the root in the
	// root frame, root first. Populated on single-node reads only.
	AbsolutePositions []cosmos.Vector3 `json:"absolute_positions,omitempty"`

	Mass        float64            `json:"mass"`
	Density     float64            `json:"density"`
	Temperature *float64           `json:"temperature,omitempty"`
	Albedo      float64            `json:"albedo"`
	Shape       cosmos.Shape       `json:"shape"`
	Composition []cosmos.Component `json:"composition,omitempty"`
	Layers      []cosmos.Layer     `json:"layers,omitempty"`
	Rings       []cosmos.Ring      `json:"rings,omitempty"`
	Orbit       *cosmos.Orbit      `json:"orbit,omitempty"`

	Seed int64 `json:"seed"`
	// ChildIndex is the node's position among its siblings, so trees
	// rebuild with the exact child order they were generated with.
	ChildIndex int       `json:"child_index"`
	ChildCount int       `json:"child_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FromNode flattens one tree node into its persisted view. Tree
// linkage becomes ParentID and RootID; children are not followed.
func FromNode(node *cosmos.Location) *Location {
	loc := &Location{
		ID:          node.ID,
		RootID:      node.Root().ID,
		Type:        node.Type,
		Name:        node.Name,
		Position:    node.Position,
		Velocity:    node.Velocity,
		Mass:        node.Material.Mass,
		Density:     node.Material.Density,
		Albedo:      node.Material.Albedo,
		Shape:       node.Material.Shape,
		Composition: node.Material.Composition,
		Layers:      node.Material.Layers,
		Rings:       node.Rings,
		Orbit:       node.Orbit,
		Seed:        node.Seed,
		ChildCount:  node.ChildCount(),
	}
	if parent := node.Parent(); parent != nil {
		id := parent.ID
		loc.ParentID = &id
		for i, sibling := range parent.Children() {
			if sibling == node {
				loc.ChildIndex = i
				break
			}
		}
	}
	if node.Material.Temperature != nil {
		t := *node.Material.Temperature
		loc.Temperature = &t
	}
	return loc
}

// ToNode rebuilds a detached hierarchy node from its persisted view.
// The orbit's gravitational parameter is not stored and is recomputed
// from the persisted masses.
func (l *Location) ToNode() *cosmos.Location {
	node := &cosmos.Location{
		ID:       l.ID,
		Name:     l.Name,
		Type:     l.Type,
		Position: l.Position,
		Velocity: l.Velocity,
		Material: cosmos.Material{
			Mass:        l.Mass,
			Shape:       l.Shape,
			Density:     l.Density,
			Albedo:      l.Albedo,
			Composition: l.Composition,
			Layers:      l.Layers,
		},
		Rings: l.Rings,
		Seed:  l.Seed,
	}
	if l.Temperature != nil {
		t := *l.Temperature
		node.Material.Temperature = &t
	}
	if l.Orbit != nil {
		orbit := *l.Orbit
		orbit.GravParam = cosmos.G * (orbit.OrbitedMass + l.Mass)
		node.Orbit = &orbit
	}
	return node
}

// BuildTree links persisted rows back into a hierarchy and returns its
// root. A row whose parent is not among the rows must be the single
// root of the set. Siblings attach in child index order regardless of
// row order.
func BuildTree(rows []Location) (*cosmos.Location, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to build a tree from: %w", cosmos.ErrInvalidConfiguration)
	}

	nodes := make(map[uuid.UUID]*cosmos.Location, len(rows))
	for i := range rows {
		nodes[rows[i].ID] = rows[i].ToNode()
	}

	byParent := make(map[uuid.UUID][]*Location)
	var root *cosmos.Location
	for i := range rows {
		row := &rows[i]
		if row.ParentID != nil {
			if _, ok := nodes[*row.ParentID]; ok {
				byParent[*row.ParentID] = append(byParent[*row.ParentID], row)
				continue
			}
		}
		if root != nil {
			return nil, fmt.Errorf("rows contain multiple roots: %w", cosmos.ErrDisjointHierarchy)
		}
		root = nodes[row.ID]
	}
	if root == nil {
		return nil, fmt.Errorf("rows form a cycle, no root found: %w", cosmos.ErrDisjointHierarchy)
	}

	queue := []uuid.UUID{root.ID}
	attached := 1
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]
		children := byParent[parentID]
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].ChildIndex < children[j].ChildIndex
		})
		parent := nodes[parentID]
		for _, row := range children {
			parent.AddChild(nodes[row.ID])
			attached++
			queue = append(queue, row.ID)
		}
	}
	if attached != len(rows) {
		return nil, fmt.Errorf("%d of %d rows unreachable from root %q: %w",
			len(rows)-attached, len(rows), root.Name, cosmos.ErrDisjointHierarchy)
	}
	return root, nil
}

// FlattenTree lists a subtree's nodes as persisted views in preorder,
// parents before children.
func FlattenTree(root *cosmos.Location) []Location {
	var out []Location
	root.Walk(func(n *cosmos.Location) bool {
		out = append(out, *FromNode(n))
		return true
	})
	return out
}

// GenerateRequest describes a region to generate.
type GenerateRequest struct {
	Type cosmos.StructureType `json:"type"`
	Name string               `json:"name,omitempty"`
	// Seed reproduces a previous generation exactly; sampled when nil.
	Seed *int64 `json:"seed,omitempty"`
	// Cascade populates the whole subtree instead of just the region.
	Cascade bool `json:"cascade"`
}

// GenerateResult reports a completed generation.
type GenerateResult struct {
	Root      *Location `json:"root"`
	NodeCount int       `json:"node_count"`
	Seed      int64     `json:"seed"`
}

// PopulateResult reports one population pass over an existing region.
type PopulateResult struct {
	Parent    *Location `json:"parent"`
	Added     int       `json:"added"`
	NodeCount int       `json:"node_count"`
	Seed      int64     `json:"seed"`
}

// DistanceResult is the separation between two node centers.
type DistanceResult struct {
	FromID uuid.UUID `json:"from_id"`
	ToID   uuid.UUID `json:"to_id"`
	Meters float64   `json:"meters"`
}

// AdvanceRequest moves a body along its orbit.
type AdvanceRequest struct {
	Seconds float64 `json:"seconds"`
}
