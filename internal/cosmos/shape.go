package cosmos

import (
	"math"

	"cosmos-server/internal/randx"
)

type ShapeKind string

const (
	ShapeSphere       ShapeKind = "sphere"
	ShapeSpheroid     ShapeKind = "spheroid"
	ShapeEllipsoid    ShapeKind = "ellipsoid"
	ShapeHollowSphere ShapeKind = "hollow_sphere"
	ShapeTorus        ShapeKind = "torus"
)

// Shape is a tagged variant describing a body or region extent. The axis
// fields are interpreted per kind, all in meters:
//
//	sphere:        A radius
//	spheroid:      A equatorial radius, C polar radius
//	ellipsoid:     A, B, C semi-axes
//	hollow_sphere: A inner radius, B outer radius
//	torus:         A ring radius (center to tube center), B tube radius
type Shape struct {
	Kind ShapeKind `json:"kind"`
	A    float64   `json:"a"`
	B    float64   `json:"b,omitempty"`
	C    float64   `json:"c,omitempty"`
}

func Sphere(radius float64) Shape {
	return Shape{Kind: ShapeSphere, A: radius}
}

func Spheroid(equatorial, polar float64) Shape {
	return Shape{Kind: ShapeSpheroid, A: equatorial, C: polar}
}

func Ellipsoid(a, b, c float64) Shape {
	return Shape{Kind: ShapeEllipsoid, A: a, B: b, C: c}
}

func HollowSphere(inner, outer float64) Shape {
	return Shape{Kind: ShapeHollowSphere, A: inner, B: outer}
}

func Torus(ring, tube float64) Shape {
	return Shape{Kind: ShapeTorus, A: ring, B: tube}
}

// ContainingRadius returns the radius of the smallest origin-centered
// sphere that encloses the shape.
func (s Shape) ContainingRadius() float64 {
	switch s.Kind {
	case ShapeSpheroid:
		return math.Max(s.A, s.C)
	case ShapeEllipsoid:
		return math.Max(s.A, math.Max(s.B, s.C))
	case ShapeHollowSphere:
		return s.B
	case ShapeTorus:
		return s.A + s.B
	default:
		return s.A
	}
}

// Volume returns the enclosed volume in cubic meters.
func (s Shape) Volume() float64 {
	switch s.Kind {
	case ShapeSpheroid:
		return 4.0 / 3.0 * math.Pi * s.A * s.A * s.C
	case ShapeEllipsoid:
		return 4.0 / 3.0 * math.Pi * s.A * s.B * s.C
	case ShapeHollowSphere:
		return 4.0 / 3.0 * math.Pi * (s.B*s.B*s.B - s.A*s.A*s.A)
	case ShapeTorus:
		return 2 * math.Pi * math.Pi * s.A * s.B * s.B
	default:
		return 4.0 / 3.0 * math.Pi * s.A * s.A * s.A
	}
}

// RandomPointWithin samples a point uniformly inside the shape, in the
// shape's own frame (centered on its origin).
func (s Shape) RandomPointWithin(rng *randx.Source) Vector3 {
	switch s.Kind {
	case ShapeSpheroid:
		p := randomUnitBall(rng)
		return Vector3{p.X * s.A, p.Y * s.A, p.Z * s.C}
	case ShapeEllipsoid:
		p := randomUnitBall(rng)
		return Vector3{p.X * s.A, p.Y * s.B, p.Z * s.C}
	case ShapeHollowSphere:
		return s.randomPointInShell(rng)
	case ShapeTorus:
		return s.randomPointInTorus(rng)
	default:
		return randomUnitBall(rng).Scale(s.A)
	}
}

func (s Shape) randomPointInShell(rng *randx.Source) Vector3 {
	inner3 := s.A * s.A * s.A
	outer3 := s.B * s.B * s.B
	r := math.Cbrt(rng.Float64()*(outer3-inner3) + inner3)
	return randomUnitVector(rng).Scale(r)
}

func (s Shape) randomPointInTorus(rng *randx.Source) Vector3 {
	// Points sampled naively in tube coordinates over-represent the
	// inner edge, so reject proportionally to distance from the axis.
	const maxTries = 8
	var d, phi float64
	for i := 0; i < maxTries; i++ {
		d = s.B * math.Sqrt(rng.Float64())
		phi = rng.Angle()
		if rng.Float64()*(s.A+s.B) <= s.A+d*math.Cos(phi) {
			break
		}
	}
	theta := rng.Angle()
	axial := s.A + d*math.Cos(phi)
	return Vector3{
		X: axial * math.Cos(theta),
		Y: axial * math.Sin(theta),
		Z: d * math.Sin(phi),
	}
}

// randomUnitBall samples a point uniformly inside the unit sphere.
func randomUnitBall(rng *randx.Source) Vector3 {
	return randomUnitVector(rng).Scale(math.Cbrt(rng.Float64()))
}

// randomUnitVector samples a direction uniformly over the unit sphere.
func randomUnitVector(rng *randx.Source) Vector3 {
	for {
		v := Vector3{
			X: rng.Normal(0, 1),
			Y: rng.Normal(0, 1),
			Z: rng.Normal(0, 1),
		}
		if l := v.Length(); l > 1e-12 {
			return v.Scale(1 / l)
		}
	}
}
