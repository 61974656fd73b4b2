package gen

import (
	"fmt"
	"math"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// PlanemoParams constrain planetary-mass generation. Zero values are
// sampled from the kind's profile.
type PlanemoParams struct {
	// Kind selects the profile; defaults to a terrestrial planet.
	Kind cosmos.StructureType
	Name string
	// Mass overrides sampling, still subject to the hydrostatic floor.
	Mass float64
	// Star and OrbitDistance give the stellar context used for the
	// equilibrium temperature and the neighborhood-clearing bounds.
	// Without them the body is treated as a rogue at the cosmic
	// background temperature.
	Star          *cosmos.Location
	OrbitDistance float64
}

type planemoProfile struct {
	meanMass, massSpread       float64
	minMass, maxMass           float64
	meanDensity, densitySpread float64
	minDensity, maxDensity     float64
	albedoMin, albedoMax       float64
	ringChance                 float64
	maxFlattening              float64
	differentiated             bool
}

var planemoProfiles = map[cosmos.StructureType]planemoProfile{
	cosmos.StructurePlanet: {
		meanMass: 3.0e24, massSpread: 2.5e24, minMass: 2.0e23, maxMass: 6.0e25,
		meanDensity: 4500, densitySpread: 700, minDensity: 3300, maxDensity: 6200,
		albedoMin: 0.1, albedoMax: 0.45, ringChance: 0.05, maxFlattening: 0.035,
		differentiated: true,
	},
	cosmos.StructureGasGiant: {
		meanMass: 8.0e26, massSpread: 6.0e26, minMass: 1.2e26, maxMass: 2.5e28,
		meanDensity: 1100, densitySpread: 300, minDensity: 600, maxDensity: 1900,
		albedoMin: 0.25, albedoMax: 0.55, ringChance: 0.65, maxFlattening: 0.1,
	},
	cosmos.StructureIceGiant: {
		meanMass: 9.0e25, massSpread: 4.0e25, minMass: 2.0e25, maxMass: 2.6e26,
		meanDensity: 1400, densitySpread: 250, minDensity: 1000, maxDensity: 2100,
		albedoMin: 0.25, albedoMax: 0.6, ringChance: 0.45, maxFlattening: 0.06,
	},
	cosmos.StructureDwarfPlanet: {
		meanMass: 1.5e21, massSpread: 1.2e21, minMass: AsteroidMassLimit, maxMass: 2.0e23,
		meanDensity: 2100, densitySpread: 400, minDensity: 1400, maxDensity: 3200,
		albedoMin: 0.1, albedoMax: 0.7, ringChance: 0.02, maxFlattening: 0.02,
		differentiated: true,
	},
}

// NewPlanemo generates a planetary-mass body: planet, gas giant, ice
// giant, or dwarf planet. With stellar context the mass bounds honor the
// neighborhood-clearing threshold for the kind, so planets can clear
// their orbit and dwarfs cannot.
func NewPlanemo(seed int64, p PlanemoParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	kind := p.Kind
	if kind == "" {
		kind = cosmos.StructurePlanet
	}
	profile, ok := planemoProfiles[kind]
	if !ok {
		return nil, fmt.Errorf("%q is not a planetary-mass kind: %w", kind, cosmos.ErrInvalidConfiguration)
	}
	if p.Mass < 0 {
		return nil, fmt.Errorf("planemo mass %v: %w", p.Mass, cosmos.ErrInvalidConfiguration)
	}

	minMass, maxMass := profile.minMass, profile.maxMass
	if p.Star != nil && p.OrbitDistance > 0 {
		clearing := SternLevisonMass(p.OrbitDistance)
		if kind == cosmos.StructureDwarfPlanet {
			maxMass = math.Min(maxMass, clearing*0.99)
		} else {
			minMass = math.Max(minMass, clearing)
		}
	}

	mass := p.Mass
	if mass == 0 {
		mass = clampFloat(rng.PositiveNormal(profile.meanMass, profile.massSpread), minMass, maxMass)
	}
	density := clampFloat(rng.PositiveNormal(profile.meanDensity, profile.densitySpread), profile.minDensity, profile.maxDensity)

	radius := RadiusForMass(mass, density)
	if radius < MinPlanemoRadius {
		radius = MinPlanemoRadius
		mass = MassForRadius(radius, density)
	}

	shape := planemoShape(rng, mass/density, profile.maxFlattening)

	albedo := rng.Float64Between(profile.albedoMin, profile.albedoMax)
	temp := cosmos.CosmicBackgroundTemperature
	if p.Star != nil && p.OrbitDistance > 0 {
		temp = EquilibriumTemperature(p.Star.Luminosity(), p.OrbitDistance, albedo)
	}

	var layers []cosmos.Layer
	switch {
	case profile.differentiated:
		layers = rockyLayers(rng, shape.ContainingRadius(), temp)
	case kind == cosmos.StructureGasGiant:
		layers = gasGiantLayers(rng)
	default:
		layers = iceGiantLayers(rng)
	}

	name := p.Name
	if name == "" {
		name = rogueName(rng)
	}

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: kind,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     density,
			Temperature: &temp,
			Albedo:      albedo,
			Composition: cosmos.FlattenLayers(layers),
			Layers:      layers,
		},
		Seed: seed,
	}, nil
}

// planemoShape flattens fast rotators into oblate spheroids while
// preserving the volume implied by mass and density.
func planemoShape(rng *randx.Source, volume, maxFlattening float64) cosmos.Shape {
	f := rng.Float64Between(0, maxFlattening)
	if f < 0.005 {
		return cosmos.Sphere(math.Cbrt(3 * volume / (4 * math.Pi)))
	}
	equatorial := math.Cbrt(3 * volume / (4 * math.Pi * (1 - f)))
	return cosmos.Spheroid(equatorial, equatorial*(1-f))
}

// rockyLayers differentiates a terrestrial interior. The crust share
// shrinks with radius; larger worlds bury proportionally more of their
// mass.
func rockyLayers(rng *randx.Source, radius, temp float64) []cosmos.Layer {
	coreFrac := clampFloat(rng.PositiveNormal(0.325, 0.06), 0.1, 0.6)
	crustFrac := math.Min(0.45, 5.3e8/math.Pow(radius, 1.6))
	crustFrac = math.Min(crustFrac, 0.9-coreFrac)
	mantleFrac := 1 - coreFrac - crustFrac

	iron := rng.Float64Between(0.85, 0.92)
	core := []cosmos.Component{
		{Substance: cosmos.SubstanceIron, Proportion: iron},
		{Substance: cosmos.SubstanceNickel, Proportion: 1 - iron},
	}

	mantleRock := rng.Float64Between(0.85, 0.95)
	if temp < 200 {
		mantleRock = rng.Float64Between(0.55, 0.75)
	}
	mantle := []cosmos.Component{
		{Substance: cosmos.SubstanceRock, Proportion: mantleRock},
		{Substance: cosmos.SubstanceWaterIce, Proportion: 1 - mantleRock},
	}

	silicate := rng.Float64Between(0.5, 0.75)
	crust := []cosmos.Component{
		{Substance: cosmos.SubstanceSilicate, Proportion: silicate},
		{Substance: cosmos.SubstanceRock, Proportion: 1 - silicate - 0.02},
		{Substance: cosmos.SubstanceIron, Proportion: 0.02},
	}

	return []cosmos.Layer{
		{Kind: cosmos.LayerCore, MassFraction: coreFrac, Components: core},
		{Kind: cosmos.LayerMantle, MassFraction: mantleFrac, Components: mantle},
		{Kind: cosmos.LayerCrust, MassFraction: crustFrac, Components: crust},
	}
}

func gasGiantLayers(rng *randx.Source) []cosmos.Layer {
	coreFrac := rng.Float64Between(0.02, 0.08)
	crustFrac := rng.Float64Between(0.03, 0.08)

	return []cosmos.Layer{
		{Kind: cosmos.LayerCore, MassFraction: coreFrac, Components: []cosmos.Component{
			{Substance: cosmos.SubstanceIron, Proportion: 0.4},
			{Substance: cosmos.SubstanceRock, Proportion: 0.6},
		}},
		{Kind: cosmos.LayerMantle, MassFraction: 1 - coreFrac - crustFrac, Components: []cosmos.Component{
			{Substance: cosmos.SubstanceHydrogen, Proportion: 0.9},
			{Substance: cosmos.SubstanceHelium, Proportion: 0.1},
		}},
		{Kind: cosmos.LayerCrust, MassFraction: crustFrac, Components: []cosmos.Component{
			{Substance: cosmos.SubstanceHydrogen, Proportion: 0.72},
			{Substance: cosmos.SubstanceHelium, Proportion: 0.24},
			{Substance: cosmos.SubstanceMethane, Proportion: 0.04},
		}},
	}
}

func iceGiantLayers(rng *randx.Source) []cosmos.Layer {
	coreFrac := rng.Float64Between(0.1, 0.25)
	crustFrac := rng.Float64Between(0.05, 0.15)

	return []cosmos.Layer{
		{Kind: cosmos.LayerCore, MassFraction: coreFrac, Components: []cosmos.Component{
			{Substance: cosmos.SubstanceIron, Proportion: 0.35},
			{Substance: cosmos.SubstanceRock, Proportion: 0.65},
		}},
		{Kind: cosmos.LayerMantle, MassFraction: 1 - coreFrac - crustFrac, Components: []cosmos.Component{
			{Substance: cosmos.SubstanceWaterIce, Proportion: 0.55},
			{Substance: cosmos.SubstanceAmmonia, Proportion: 0.25},
			{Substance: cosmos.SubstanceMethane, Proportion: 0.2},
		}},
		{Kind: cosmos.LayerCrust, MassFraction: crustFrac, Components: []cosmos.Component{
			{Substance: cosmos.SubstanceHydrogen, Proportion: 0.7},
			{Substance: cosmos.SubstanceHelium, Proportion: 0.25},
			{Substance: cosmos.SubstanceMethane, Proportion: 0.05},
		}},
	}
}

// rogueName labels planemos generated without a stellar context, in the
// style of sky-survey designations.
func rogueName(rng *randx.Source) string {
	return fmt.Sprintf("PSO J%03d.%d%+03d",
		rng.IntBetween(0, 359), rng.IntBetween(0, 9), rng.IntBetween(-89, 89))
}

// RingsFor generates a ring system for an orbiting body. Rings need the
// body's Hill sphere, so an unassigned orbit is a missing-context error.
func RingsFor(seed int64, body *cosmos.Location) ([]cosmos.Ring, error) {
	if body.Orbit == nil {
		return nil, fmt.Errorf("rings for %q: %w", body.Name, cosmos.ErrMissingOrbitalContext)
	}
	return generateRings(randx.New(seed), body), nil
}

// generateRings fills the band between the body's surface margin and the
// tighter of the icy Roche limit and a third of the Hill sphere. Ring
// material follows the local Roche limits: annuli outside the rocky
// limit can only be ice.
func generateRings(rng *randx.Source, body *cosmos.Location) []cosmos.Ring {
	radius := body.Radius()
	density := body.Material.Density
	hill := body.Orbit.HillRadius(body.Mass())

	icyLimit := RocheRingLimit(radius, density, IcyRingDensity)
	rockyLimit := RocheRingLimit(radius, density, RockyRingDensity)
	innermost := 1.2 * radius

	outer := math.Min(icyLimit, hill/3)
	var rings []cosmos.Ring
	for p := 1.0; rng.Bool(p) && outer > innermost*1.05; p /= 2 {
		ringOuter := outer * rng.Float64Between(0.94, 1.0)
		ringInner := math.Max(innermost, ringOuter*rng.Float64Between(0.55, 0.92))
		if ringInner >= ringOuter {
			break
		}
		material := cosmos.RingRocky
		if ringOuter > rockyLimit {
			material = cosmos.RingIcy
		}
		rings = append(rings, cosmos.Ring{
			InnerRadius: ringInner,
			OuterRadius: ringOuter,
			Material:    material,
		})
		outer = ringInner * rng.Float64Between(0.7, 0.95)
	}
	return rings
}
