// Package gen procedurally generates celestial hierarchies: stars,
// planetary systems, small bodies, and the regions that contain them.
// Every generator is a pure function of its seed, so identical calls
// reproduce identical output.
package gen

import (
	"fmt"
	"math"

	"cosmos-server/internal/cosmos"
)

const (
	// MinPlanemoRadius is the smallest radius at which rock and ice
	// relax into hydrostatic equilibrium, about 600 km.
	MinPlanemoRadius = 6.0e5

	// AsteroidMassLimit is where a small body graduates to dwarf
	// planet.
	AsteroidMassLimit = 3.4e20

	// Ring particle densities used for Roche limits.
	IcyRingDensity   = 300.0
	RockyRingDensity = 1380.0
)

// SternLevisonMass returns the minimum mass able to clear an orbital
// neighborhood at the given semi-major axis in meters. Bodies above the
// threshold are planets; bodies below are dwarfs at best.
func SternLevisonMass(semiMajorAxis float64) float64 {
	return math.Sqrt(math.Pow(semiMajorAxis, 1.5) / 2.5e-28)
}

// SternLevisonMassFor evaluates the clearing threshold for a body,
// preferring its assigned orbit and falling back to its provisional
// distance from the parent origin. A body with neither has no orbital
// context to evaluate against.
func SternLevisonMassFor(body *cosmos.Location) (float64, error) {
	switch {
	case body.Orbit != nil:
		return SternLevisonMass(body.Orbit.SemiMajorAxis), nil
	case body.Parent() != nil && !body.Position.IsZero():
		return SternLevisonMass(body.Position.Length()), nil
	default:
		return 0, fmt.Errorf("clearing threshold for %q: %w", body.Name, cosmos.ErrMissingOrbitalContext)
	}
}

// RocheRingLimit returns the distance from a primary's center inside
// which loose material of the given density cannot accrete, so rings
// survive there.
func RocheRingLimit(primaryRadius, primaryDensity, ringDensity float64) float64 {
	if ringDensity <= 0 {
		return 0
	}
	return 1.26 * primaryRadius * math.Cbrt(primaryDensity/ringDensity)
}

// EquilibriumTemperature returns the blackbody temperature of a body at
// the given distance from a source of the given luminosity, floored at
// the cosmic background.
func EquilibriumTemperature(luminosity, distance, albedo float64) float64 {
	if luminosity <= 0 || distance <= 0 {
		return cosmos.CosmicBackgroundTemperature
	}
	t := math.Pow(luminosity*(1-albedo)/(16*math.Pi*cosmos.StefanBoltzmann*distance*distance), 0.25)
	return math.Max(t, cosmos.CosmicBackgroundTemperature)
}

// SchwarzschildRadius returns the event horizon radius for a mass.
func SchwarzschildRadius(mass float64) float64 {
	return 2 * cosmos.G * mass / (cosmos.SpeedOfLight * cosmos.SpeedOfLight)
}

// SnowLine returns the distance beyond which volatiles stay frozen in a
// disc around a star of the given luminosity.
func SnowLine(luminosity float64) float64 {
	if luminosity <= 0 {
		return 0
	}
	return 2.7 * cosmos.AU * math.Sqrt(luminosity/cosmos.SolarLuminosity)
}

// RadiusForMass returns the radius of a sphere holding the given mass at
// the given density.
func RadiusForMass(mass, density float64) float64 {
	if density <= 0 {
		return 0
	}
	return math.Cbrt(3 * mass / (4 * math.Pi * density))
}

// MassForRadius returns the mass of a sphere of the given radius and
// density.
func MassForRadius(radius, density float64) float64 {
	return 4.0 / 3.0 * math.Pi * radius * radius * radius * density
}
