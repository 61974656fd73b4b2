package cosmos

import (
	"math"

	"github.com/google/uuid"
)

// StructureType classifies every node in a hierarchy, region and body
// alike.
type StructureType string

const (
	StructureUniverse        StructureType = "universe"
	StructureGalaxy          StructureType = "galaxy"
	StructureGlobularCluster StructureType = "globular_cluster"
	StructureNebula          StructureType = "nebula"
	StructureStarSystem      StructureType = "star_system"
	StructureStar            StructureType = "star"
	StructureBlackHole       StructureType = "black_hole"
	StructurePlanet          StructureType = "planet"
	StructureGasGiant        StructureType = "gas_giant"
	StructureIceGiant        StructureType = "ice_giant"
	StructureDwarfPlanet     StructureType = "dwarf_planet"
	StructureAsteroid        StructureType = "asteroid"
	StructureComet           StructureType = "comet"
	StructureAsteroidField   StructureType = "asteroid_field"
	StructureOortCloud       StructureType = "oort_cloud"
)

// StructureTypes lists every valid type, regions first.
var StructureTypes = []StructureType{
	StructureUniverse,
	StructureGalaxy,
	StructureGlobularCluster,
	StructureNebula,
	StructureStarSystem,
	StructureAsteroidField,
	StructureOortCloud,
	StructureStar,
	StructureBlackHole,
	StructurePlanet,
	StructureGasGiant,
	StructureIceGiant,
	StructureDwarfPlanet,
	StructureAsteroid,
	StructureComet,
}

func (t StructureType) Valid() bool {
	for _, known := range StructureTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsRegion reports whether the type is a container populated with
// children rather than a single body.
func (t StructureType) IsRegion() bool {
	switch t {
	case StructureUniverse, StructureGalaxy, StructureGlobularCluster,
		StructureNebula, StructureStarSystem, StructureAsteroidField,
		StructureOortCloud:
		return true
	}
	return false
}

// IsPlanemo reports whether the type is a planetary-mass object.
func (t StructureType) IsPlanemo() bool {
	switch t {
	case StructurePlanet, StructureGasGiant, StructureIceGiant, StructureDwarfPlanet:
		return true
	}
	return false
}

func (t StructureType) IsStellar() bool {
	return t == StructureStar || t == StructureBlackHole
}

// CanOrbit reports whether nodes of this type may carry an orbit.
// Universes have nothing to orbit and galaxies are treated as free
// floating.
func (t StructureType) CanOrbit() bool {
	return t != StructureUniverse && t != StructureGalaxy
}

type RingMaterial string

const (
	RingIcy   RingMaterial = "icy"
	RingRocky RingMaterial = "rocky"
)

// Ring is one annulus of a body's ring system, radii measured from the
// body center.
type Ring struct {
	InnerRadius float64      `json:"inner_radius"`
	OuterRadius float64      `json:"outer_radius"`
	Material    RingMaterial `json:"material"`
}

// Location is one node of a celestial hierarchy. Position and Velocity
// are expressed in the parent's frame; the root's are zero.
type Location struct {
	ID       uuid.UUID
	Name     string
	Type     StructureType
	Position Vector3
	Velocity Vector3

	// AbsolutePositions is the root-frame position of each node on the
	// path from the root down to this node. It is populated only when a
	// node is exported detached from its tree and is nil otherwise.
	AbsolutePositions []Vector3

	Orbit    *Orbit
	Material Material
	Rings    []Ring

	// Seed reproduces this node (and, for regions, its subtree) exactly.
	Seed int64

	parent   *Location
	children []*Location
}

func (l *Location) Parent() *Location {
	return l.parent
}

// Children returns a copy of the child list in insertion order.
func (l *Location) Children() []*Location {
	out := make([]*Location, len(l.children))
	copy(out, l.children)
	return out
}

func (l *Location) ChildCount() int {
	return len(l.children)
}

// AddChild attaches child to l, detaching it from any previous parent
// first so parent pointers stay consistent. The child's position is not
// translated; use Reparent for frame-preserving moves.
func (l *Location) AddChild(child *Location) {
	if child == nil || child == l {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = l
	l.children = append(l.children, child)
}

// RemoveChild detaches child from l and reports whether it was present.
// The detached subtree keeps its internal structure.
func (l *Location) RemoveChild(child *Location) bool {
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[:i], l.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Root walks parent pointers to the top of the tree.
func (l *Location) Root() *Location {
	node := l
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Depth returns the number of ancestors above this node.
func (l *Location) Depth() int {
	d := 0
	for node := l.parent; node != nil; node = node.parent {
		d++
	}
	return d
}

// Walk visits the subtree rooted at l in depth-first preorder. Returning
// false from fn stops the traversal.
func (l *Location) Walk(fn func(*Location) bool) {
	l.walk(fn)
}

func (l *Location) walk(fn func(*Location) bool) bool {
	if !fn(l) {
		return false
	}
	for _, child := range l.children {
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

func (l *Location) Mass() float64 {
	return l.Material.Mass
}

// Radius returns the containing radius of the body's shape.
func (l *Location) Radius() float64 {
	return l.Material.Shape.ContainingRadius()
}

func (l *Location) Volume() float64 {
	return l.Material.Shape.Volume()
}

// Luminosity returns the blackbody radiant power of the body's surface,
// zero when no temperature is set. Only meaningful for stars.
func (l *Location) Luminosity() float64 {
	if l.Material.Temperature == nil {
		return 0
	}
	t := *l.Material.Temperature
	r := l.Radius()
	return 4 * math.Pi * r * r * StefanBoltzmann * t * t * t * t
}

// AbsolutePositionChain returns the root-frame position of every node on
// the path from the root to l, in that order. The root contributes the
// zero vector.
func (l *Location) AbsolutePositionChain() []Vector3 {
	var path []*Location
	for node := l; node != nil; node = node.parent {
		path = append(path, node)
	}
	chain := make([]Vector3, len(path))
	var acc Vector3
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].parent != nil {
			acc = acc.Add(path[i].Position)
		}
		chain[len(path)-1-i] = acc
	}
	return chain
}
