package cosmos

import (
	"fmt"

	"github.com/google/uuid"
)

// lowestCommonAncestor returns the nearest shared ancestor of a and b,
// or nil when the nodes live in different trees.
func lowestCommonAncestor(a, b *Location) *Location {
	depthA, depthB := a.Depth(), b.Depth()
	for depthA > depthB {
		a = a.parent
		depthA--
	}
	for depthB > depthA {
		b = b.parent
		depthB--
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}

// positionInAncestorFrame sums parent-local positions from node up to,
// but excluding, ancestor.
func positionInAncestorFrame(node, ancestor *Location) Vector3 {
	var acc Vector3
	for n := node; n != ancestor; n = n.parent {
		acc = acc.Add(n.Position)
	}
	return acc
}

// PositionIn expresses node's center in frame's local frame. The two
// nodes must share a root.
func PositionIn(node, frame *Location) (Vector3, error) {
	if node == nil || frame == nil {
		return Vector3{}, fmt.Errorf("position query on nil location: %w", ErrInvalidConfiguration)
	}
	lca := lowestCommonAncestor(node, frame)
	if lca == nil {
		return Vector3{}, fmt.Errorf("%q and %q share no root: %w", node.Name, frame.Name, ErrDisjointHierarchy)
	}
	return positionInAncestorFrame(node, lca).Sub(positionInAncestorFrame(frame, lca)), nil
}

// DistanceBetween returns the straight-line distance between the centers
// of two nodes in the same tree.
func DistanceBetween(a, b *Location) (float64, error) {
	rel, err := PositionIn(a, b)
	if err != nil {
		return 0, err
	}
	return rel.Length(), nil
}

// Reparent moves node under newParent, translating its position so its
// absolute location is unchanged.
func Reparent(node, newParent *Location) error {
	if node == nil || newParent == nil {
		return fmt.Errorf("reparent needs node and parent: %w", ErrInvalidConfiguration)
	}
	for n := newParent; n != nil; n = n.parent {
		if n == node {
			return fmt.Errorf("reparenting %q under its own subtree: %w", node.Name, ErrInvalidConfiguration)
		}
	}
	pos, err := PositionIn(node, newParent)
	if err != nil {
		return err
	}
	newParent.AddChild(node)
	node.Position = pos
	return nil
}

// FindByID searches the subtree rooted at root for a node with the given
// id, returning nil when absent.
func FindByID(root *Location, id uuid.UUID) *Location {
	var found *Location
	root.Walk(func(n *Location) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// AssignOrbit attaches an orbit to body around orbited, re-basing the
// body's position and velocity to the orbit's epoch state. The body may
// still be detached; its position is then expressed in the orbit's frame
// and stays correct once attached there.
func AssignOrbit(body, orbited *Location, o *Orbit) error {
	if body == nil || orbited == nil || o == nil {
		return fmt.Errorf("orbit assignment needs body, primary, and orbit: %w", ErrInvalidConfiguration)
	}
	if body == orbited {
		return fmt.Errorf("%q cannot orbit itself: %w", body.Name, ErrInvalidConfiguration)
	}
	if !body.Type.CanOrbit() {
		return fmt.Errorf("%s cannot carry an orbit: %w", body.Type, ErrInvalidConfiguration)
	}

	o.OrbitedID = orbited.ID
	body.Orbit = o
	return rebaseToOrbit(body, orbited)
}

// AdvanceOrbit propagates body's orbit by elapsed seconds, updating the
// epoch anomaly and the body's position and velocity. The defining
// elements are untouched.
func AdvanceOrbit(body *Location, elapsed float64) error {
	if body == nil || body.Orbit == nil {
		return fmt.Errorf("location has no orbit to advance: %w", ErrInvalidConfiguration)
	}
	orbited := FindByID(body.Root(), body.Orbit.OrbitedID)
	if orbited == nil {
		return fmt.Errorf("orbited node %s not reachable from %q: %w", body.Orbit.OrbitedID, body.Name, ErrDisjointHierarchy)
	}
	body.Orbit.AdvanceBy(elapsed)
	return rebaseToOrbit(body, orbited)
}

// rebaseToOrbit recomputes body's position and velocity from its orbit's
// epoch state. Position composes the orbited node's current position with
// the orbit-relative offset; velocity is the orbit-relative velocity.
func rebaseToOrbit(body, orbited *Location) error {
	pos, vel := body.Orbit.StateVectorsAtTime(0)

	var base Vector3
	if body.parent != nil {
		b, err := PositionIn(orbited, body.parent)
		if err != nil {
			return err
		}
		base = b
	} else if orbited.parent != nil {
		base = orbited.Position
	}

	body.Position = base.Add(pos)
	body.Velocity = vel
	return nil
}

// HillSphereRadius returns the gravitational sphere of influence of an
// orbiting body. Bodies without an orbit have no defined Hill sphere.
func HillSphereRadius(body *Location) (float64, error) {
	if body.Orbit == nil {
		return 0, fmt.Errorf("hill sphere of %q: %w", body.Name, ErrMissingOrbitalContext)
	}
	return body.Orbit.HillRadius(body.Mass()), nil
}

// Index provides id lookup over one hierarchy tree.
type Index struct {
	root *Location
	byID map[uuid.UUID]*Location
}

// NewIndex builds an index over the tree rooted at root.
func NewIndex(root *Location) *Index {
	ix := &Index{root: root, byID: make(map[uuid.UUID]*Location)}
	root.Walk(func(n *Location) bool {
		ix.byID[n.ID] = n
		return true
	})
	return ix
}

func (ix *Index) Root() *Location {
	return ix.root
}

func (ix *Index) Len() int {
	return len(ix.byID)
}

func (ix *Index) Find(id uuid.UUID) (*Location, bool) {
	n, ok := ix.byID[id]
	return n, ok
}

// Attach adds a subtree under an indexed parent and registers every node
// of the subtree.
func (ix *Index) Attach(parent, child *Location) error {
	if indexed, ok := ix.byID[parent.ID]; !ok || indexed != parent {
		return fmt.Errorf("parent %q is not part of this tree: %w", parent.Name, ErrDisjointHierarchy)
	}
	parent.AddChild(child)
	child.Walk(func(n *Location) bool {
		ix.byID[n.ID] = n
		return true
	})
	return nil
}

// Detach removes a non-root subtree from the tree and unregisters it.
func (ix *Index) Detach(node *Location) error {
	if node == ix.root {
		return fmt.Errorf("cannot detach the root: %w", ErrInvalidConfiguration)
	}
	if indexed, ok := ix.byID[node.ID]; !ok || indexed != node {
		return fmt.Errorf("node %q is not part of this tree: %w", node.Name, ErrDisjointHierarchy)
	}
	if parent := node.Parent(); parent != nil {
		parent.RemoveChild(node)
	}
	node.Walk(func(n *Location) bool {
		delete(ix.byID, n.ID)
		return true
	})
	return nil
}
