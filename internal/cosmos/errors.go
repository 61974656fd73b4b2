package cosmos

import "errors"

// Sentinel errors for generation and hierarchy operations. Callers match
// these with errors.Is; raise sites wrap them with context.
var (
	// ErrInvalidConfiguration marks impossible generation parameters,
	// like an eccentricity outside [0, 1) or a zero-mass primary.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingOrbitalContext marks a physical-constraint query that
	// needs an orbit, or at least a provisional orbital distance, on a
	// body that has neither.
	ErrMissingOrbitalContext = errors.New("missing orbital context")

	// ErrDisjointHierarchy marks a distance or frame query spanning two
	// nodes that do not share a root.
	ErrDisjointHierarchy = errors.New("disjoint hierarchy")
)
