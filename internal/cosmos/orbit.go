package cosmos

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"cosmos-server/internal/randx"
)

// Kepler-solver bounds. Newton-Raphson from a good starter converges in
// a handful of steps for any bound orbit; on the rare non-converging
// input the last estimate is still a usable approximation.
const (
	keplerMaxIterations = 30
	keplerTolerance     = 1e-8
)

// Orbit is a bound Keplerian orbit around a single primary. Angles are
// radians, distances meters. The orbit is expressed in the frame of the
// orbited node's parent; state vectors are relative to the orbited node.
//
// TrueAnomaly is the anomaly at the orbit's epoch; propagation advances
// it in place and never touches the defining elements.
type Orbit struct {
	OrbitedID     uuid.UUID `json:"orbited_id"`
	OrbitedMass   float64   `json:"orbited_mass"`
	SemiMajorAxis float64   `json:"semi_major_axis"`
	Eccentricity  float64   `json:"eccentricity"`
	Inclination   float64   `json:"inclination"`
	AscendingNode float64   `json:"ascending_node"`
	ArgPeriapsis  float64   `json:"arg_periapsis"`
	TrueAnomaly   float64   `json:"true_anomaly"`

	// GravParam is G times the combined mass of body and primary,
	// captured at construction.
	GravParam float64 `json:"-"`
}

// CircularOrbit builds the circular orbit passing through a body at
// relative position rel from its primary, orbiting prograde in the plane
// spanned by rel and the primary's equator.
func CircularOrbit(bodyMass, primaryMass float64, rel Vector3) (*Orbit, error) {
	if primaryMass <= 0 {
		return nil, fmt.Errorf("circular orbit around massless primary: %w", ErrInvalidConfiguration)
	}
	if rel.IsZero() {
		return nil, fmt.Errorf("circular orbit at zero separation: %w", ErrInvalidConfiguration)
	}

	mu := G * (bodyMass + primaryMass)
	r := rel.Length()

	// Prograde velocity direction perpendicular to rel; for a body on
	// the polar axis any in-plane direction serves.
	vdir := Vector3{Z: 1}.Cross(rel)
	if vdir.Length() < 1e-9*r {
		vdir = rel.Cross(Vector3{X: 1})
	}
	vel := vdir.Normalize().Scale(math.Sqrt(mu / r))

	h := rel.Cross(vel)
	hmag := h.Length()
	inclination := math.Acos(clamp(h.Z/hmag, -1, 1))

	node := Vector3{Z: 1}.Cross(h)
	var ascendingNode, trueAnomaly float64
	if node.Length() > 1e-12*hmag {
		ascendingNode = normalizeAngle(math.Atan2(node.Y, node.X))
		trueAnomaly = signedAngle(node, rel, h)
	} else {
		// Equatorial orbit: measure the anomaly from the reference
		// x-axis instead of an undefined node line.
		trueAnomaly = signedAngle(Vector3{X: 1}, rel, h)
	}

	return &Orbit{
		OrbitedMass:   primaryMass,
		SemiMajorAxis: r,
		Eccentricity:  0,
		Inclination:   inclination,
		AscendingNode: ascendingNode,
		ArgPeriapsis:  0,
		TrueAnomaly:   trueAnomaly,
		GravParam:     mu,
	}, nil
}

// EccentricOrbit builds a randomized orbit of the given eccentricity for
// a body at relative position rel from its primary. The semi-major axis
// is chosen so the orbit passes through the body's current distance; the
// orientation angles are sampled, with inclination uniform in
// [0, maxInclination].
func EccentricOrbit(rng *randx.Source, bodyMass, primaryMass float64, rel Vector3, eccentricity, maxInclination float64) (*Orbit, error) {
	if primaryMass <= 0 {
		return nil, fmt.Errorf("orbit around massless primary: %w", ErrInvalidConfiguration)
	}
	if rel.IsZero() {
		return nil, fmt.Errorf("orbit at zero separation: %w", ErrInvalidConfiguration)
	}
	if eccentricity < 0 || eccentricity >= 1 {
		return nil, fmt.Errorf("eccentricity %v outside [0, 1): %w", eccentricity, ErrInvalidConfiguration)
	}

	r := rel.Length()
	nu := rng.Angle()
	a := r * (1 + eccentricity*math.Cos(nu)) / (1 - eccentricity*eccentricity)

	return &Orbit{
		OrbitedMass:   primaryMass,
		SemiMajorAxis: a,
		Eccentricity:  eccentricity,
		Inclination:   rng.Float64Between(0, math.Max(0, maxInclination)),
		AscendingNode: rng.Angle(),
		ArgPeriapsis:  rng.Angle(),
		TrueAnomaly:   nu,
		GravParam:     G * (bodyMass + primaryMass),
	}, nil
}

// Period returns the orbital period in seconds.
func (o *Orbit) Period() float64 {
	a := o.SemiMajorAxis
	return 2 * math.Pi * math.Sqrt(a*a*a/o.GravParam)
}

// MeanMotion returns the mean angular rate in radians per second.
func (o *Orbit) MeanMotion() float64 {
	a := o.SemiMajorAxis
	return math.Sqrt(o.GravParam / (a * a * a))
}

func (o *Orbit) Periapsis() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity)
}

func (o *Orbit) Apoapsis() float64 {
	return o.SemiMajorAxis * (1 + o.Eccentricity)
}

// HillRadius returns the radius within which a body of the given mass
// dominates its satellites against the primary's pull, evaluated at
// periapsis.
func (o *Orbit) HillRadius(bodyMass float64) float64 {
	if bodyMass <= 0 || o.OrbitedMass <= 0 {
		return 0
	}
	return o.Periapsis() * math.Cbrt(bodyMass/(3*o.OrbitedMass))
}

// StateVectorsAtTime returns position and velocity relative to the
// orbited node after elapsed seconds from the orbit's epoch. At elapsed
// zero it reproduces the epoch state.
func (o *Orbit) StateVectorsAtTime(elapsed float64) (Vector3, Vector3) {
	e := o.Eccentricity
	e0 := eccentricFromTrue(o.TrueAnomaly, e)
	m := e0 - e*math.Sin(e0) + o.MeanMotion()*elapsed
	ea := solveKepler(normalizeAngle(m), e)

	nu := trueFromEccentric(ea, e)
	r := o.SemiMajorAxis * (1 - e*math.Cos(ea))

	pos := Vector3{
		X: r * math.Cos(nu),
		Y: r * math.Sin(nu),
	}
	vscale := math.Sqrt(o.GravParam*o.SemiMajorAxis) / r
	vel := Vector3{
		X: -vscale * math.Sin(ea),
		Y: vscale * math.Sqrt(1-e*e) * math.Cos(ea),
	}

	return o.perifocalToFrame(pos), o.perifocalToFrame(vel)
}

// AdvanceBy propagates the orbit in place by elapsed seconds, updating
// the epoch anomaly, and returns the new relative state vectors.
func (o *Orbit) AdvanceBy(elapsed float64) (Vector3, Vector3) {
	e := o.Eccentricity
	e0 := eccentricFromTrue(o.TrueAnomaly, e)
	m := e0 - e*math.Sin(e0) + o.MeanMotion()*elapsed
	ea := solveKepler(normalizeAngle(m), e)
	o.TrueAnomaly = normalizeAngle(trueFromEccentric(ea, e))

	return o.StateVectorsAtTime(0)
}

// perifocalToFrame rotates a perifocal-plane vector into the orbit's
// containing frame: Rz(ascending node) · Rx(inclination) · Rz(arg of
// periapsis).
func (o *Orbit) perifocalToFrame(p Vector3) Vector3 {
	sinW, cosW := math.Sincos(o.ArgPeriapsis)
	sinI, cosI := math.Sincos(o.Inclination)
	sinN, cosN := math.Sincos(o.AscendingNode)

	x1 := p.X*cosW - p.Y*sinW
	y1 := p.X*sinW + p.Y*cosW

	y2 := y1 * cosI
	z2 := y1 * sinI

	return Vector3{
		X: x1*cosN - y2*sinN,
		Y: x1*sinN + y2*cosN,
		Z: z2,
	}
}

// solveKepler finds the eccentric anomaly for a mean anomaly via
// Newton-Raphson. Non-convergence within the iteration cap returns the
// last estimate rather than an error.
func solveKepler(meanAnomaly, e float64) float64 {
	var ea float64
	if e < 0.8 {
		ea = meanAnomaly + e*math.Sin(meanAnomaly)*(1+e*math.Cos(meanAnomaly))
	} else {
		ea = math.Pi
	}
	for i := 0; i < keplerMaxIterations; i++ {
		delta := (ea - e*math.Sin(ea) - meanAnomaly) / (1 - e*math.Cos(ea))
		ea -= delta
		if math.Abs(delta) <= keplerTolerance*math.Max(1, math.Abs(ea)) {
			break
		}
	}
	return ea
}

func eccentricFromTrue(nu, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1-e)*math.Sin(nu/2),
		math.Sqrt(1+e)*math.Cos(nu/2),
	)
}

func trueFromEccentric(ea, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(ea/2),
		math.Sqrt(1-e)*math.Cos(ea/2),
	)
}

// normalizeAngle wraps an angle into [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// signedAngle measures the angle from u to w around the axis n,
// normalized to [0, 2π).
func signedAngle(u, w, n Vector3) float64 {
	return normalizeAngle(math.Atan2(u.Cross(w).Dot(n.Normalize()), u.Dot(w)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
