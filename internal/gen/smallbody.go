package gen

import (
	"fmt"
	"math"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// AsteroidClass follows the taxonomic families: carbonaceous, silicate,
// and metallic.
type AsteroidClass string

const (
	AsteroidClassC AsteroidClass = "C"
	AsteroidClassS AsteroidClass = "S"
	AsteroidClassM AsteroidClass = "M"
)

// SmallBodyParams constrain asteroid and comet generation.
type SmallBodyParams struct {
	Name string
	// Class applies to asteroids only; sampled by abundance when empty.
	Class AsteroidClass
	// Mass overrides sampling.
	Mass float64
	// Star and OrbitDistance provide stellar context for the
	// equilibrium temperature.
	Star          *cosmos.Location
	OrbitDistance float64
}

type asteroidProfile struct {
	meanDensity, densitySpread float64
	minDensity, maxDensity     float64
	albedoMin, albedoMax       float64
	components                 []cosmos.Component
}

var asteroidProfiles = map[AsteroidClass]asteroidProfile{
	AsteroidClassC: {
		meanDensity: 1380, densitySpread: 150, minDensity: 900, maxDensity: 1900,
		albedoMin: 0.03, albedoMax: 0.1,
		components: []cosmos.Component{
			{Substance: cosmos.SubstanceRock, Proportion: 0.75},
			{Substance: cosmos.SubstanceWaterIce, Proportion: 0.15},
			{Substance: cosmos.SubstanceSilicate, Proportion: 0.08},
			{Substance: cosmos.SubstanceIron, Proportion: 0.02},
		},
	},
	AsteroidClassS: {
		meanDensity: 2710, densitySpread: 250, minDensity: 2000, maxDensity: 3400,
		albedoMin: 0.1, albedoMax: 0.25,
		components: []cosmos.Component{
			{Substance: cosmos.SubstanceSilicate, Proportion: 0.78},
			{Substance: cosmos.SubstanceRock, Proportion: 0.1},
			{Substance: cosmos.SubstanceIron, Proportion: 0.1},
			{Substance: cosmos.SubstanceNickel, Proportion: 0.02},
		},
	},
	AsteroidClassM: {
		meanDensity: 5320, densitySpread: 400, minDensity: 4200, maxDensity: 6500,
		albedoMin: 0.1, albedoMax: 0.2,
		components: []cosmos.Component{
			{Substance: cosmos.SubstanceIron, Proportion: 0.78},
			{Substance: cosmos.SubstanceNickel, Proportion: 0.15},
			{Substance: cosmos.SubstanceRock, Proportion: 0.07},
		},
	},
}

// NewAsteroid generates an asteroid. A body drawn above the asteroid
// mass limit is promoted and generated as a dwarf planet instead, so
// callers always receive a correctly classified location.
func NewAsteroid(seed int64, p SmallBodyParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	class := p.Class
	if class == "" {
		classes := []AsteroidClass{AsteroidClassC, AsteroidClassS, AsteroidClassM}
		class = classes[rng.WeightedChoice([]float64{0.74, 0.14, 0.10})]
	}
	profile, ok := asteroidProfiles[class]
	if !ok {
		return nil, fmt.Errorf("unknown asteroid class %q: %w", p.Class, cosmos.ErrInvalidConfiguration)
	}
	if p.Mass < 0 {
		return nil, fmt.Errorf("asteroid mass %v: %w", p.Mass, cosmos.ErrInvalidConfiguration)
	}

	name := p.Name
	if name == "" {
		name = AsteroidName(rng)
	}

	mass := p.Mass
	if mass == 0 {
		mass = clampFloat(rng.LogNormal(math.Log(5e15), 3.0), 1e9, 4.2e20)
	}
	if mass > AsteroidMassLimit {
		return NewPlanemo(seed, PlanemoParams{
			Kind:          cosmos.StructureDwarfPlanet,
			Name:          name,
			Mass:          mass,
			Star:          p.Star,
			OrbitDistance: p.OrbitDistance,
		})
	}

	density := clampFloat(rng.PositiveNormal(profile.meanDensity, profile.densitySpread), profile.minDensity, profile.maxDensity)
	shape := irregularShape(rng, mass/density, 0.55, 0.95)

	albedo := rng.Float64Between(profile.albedoMin, profile.albedoMax)
	temp := cosmos.CosmicBackgroundTemperature
	if p.Star != nil && p.OrbitDistance > 0 {
		temp = EquilibriumTemperature(p.Star.Luminosity(), p.OrbitDistance, albedo)
	}

	composition := jitterComponents(rng, profile.components)

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureAsteroid,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     density,
			Temperature: &temp,
			Albedo:      albedo,
			Composition: composition,
		},
		Seed: seed,
	}, nil
}

// NewComet generates a comet nucleus: a small, dark, icy body.
func NewComet(seed int64, p SmallBodyParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	if p.Mass < 0 {
		return nil, fmt.Errorf("comet mass %v: %w", p.Mass, cosmos.ErrInvalidConfiguration)
	}

	name := p.Name
	if name == "" {
		name = CometName(rng)
	}

	mass := p.Mass
	if mass == 0 {
		mass = clampFloat(rng.LogNormal(math.Log(5e13), 2.2), 1e8, 5e17)
	}

	density := clampFloat(rng.PositiveNormal(600, 150), 300, 1100)
	shape := irregularShape(rng, mass/density, 0.4, 0.8)

	albedo := rng.Float64Between(0.02, 0.06)
	temp := cosmos.CosmicBackgroundTemperature
	if p.Star != nil && p.OrbitDistance > 0 {
		temp = EquilibriumTemperature(p.Star.Luminosity(), p.OrbitDistance, albedo)
	}

	composition := jitterComponents(rng, []cosmos.Component{
		{Substance: cosmos.SubstanceWaterIce, Proportion: 0.5},
		{Substance: cosmos.SubstanceRock, Proportion: 0.25},
		{Substance: cosmos.SubstanceDust, Proportion: 0.12},
		{Substance: cosmos.SubstanceMethane, Proportion: 0.08},
		{Substance: cosmos.SubstanceAmmonia, Proportion: 0.05},
	})

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureComet,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     density,
			Temperature: &temp,
			Albedo:      albedo,
			Composition: composition,
		},
		Seed: seed,
	}, nil
}

// irregularShape builds a triaxial ellipsoid with the given volume.
// Bodies below hydrostatic equilibrium are lumpy, so the intermediate
// and minor axes shrink to random fractions of the major axis.
func irregularShape(rng *randx.Source, volume, minRatio, maxRatio float64) cosmos.Shape {
	rb := rng.Float64Between(minRatio, maxRatio)
	rc := rng.Float64Between(minRatio*0.7, rb)
	a := math.Cbrt(3 * volume / (4 * math.Pi * rb * rc))
	return cosmos.Ellipsoid(a, a*rb, a*rc)
}

// jitterComponents perturbs nominal proportions so no two bodies share
// an identical makeup, then renormalizes.
func jitterComponents(rng *randx.Source, nominal []cosmos.Component) []cosmos.Component {
	out := make([]cosmos.Component, len(nominal))
	for i, c := range nominal {
		out[i] = cosmos.Component{
			Substance:  c.Substance,
			Proportion: c.Proportion * rng.Float64Between(0.85, 1.15),
		}
	}
	cosmos.NormalizeComponents(out)
	return out
}
