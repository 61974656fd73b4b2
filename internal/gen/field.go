package gen

import (
	"fmt"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// FieldParams constrain asteroid field generation.
type FieldParams struct {
	Name string
	// Star and OrbitDistance locate the belt around its primary. The
	// torus ring radius is taken from OrbitDistance when set.
	Star          *cosmos.Location
	OrbitDistance float64
}

// NewAsteroidField generates an empty belt torus. Member asteroids and
// comets are added by the population engine.
func NewAsteroidField(seed int64, p FieldParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	if p.OrbitDistance < 0 {
		return nil, fmt.Errorf("belt distance %v: %w", p.OrbitDistance, cosmos.ErrInvalidConfiguration)
	}
	ringRadius := p.OrbitDistance
	if ringRadius == 0 {
		ringRadius = rng.Float64Between(2, 6) * cosmos.AU
	}
	tubeRadius := ringRadius * rng.Float64Between(0.04, 0.12)
	shape := cosmos.Torus(ringRadius, tubeRadius)

	name := p.Name
	if name == "" {
		if p.Star != nil {
			name = p.Star.Name + " Belt"
		} else {
			name = StarName(rng) + " Belt"
		}
	}

	mass := clampFloat(rng.PositiveNormal(3e21, 1.5e21), 1e20, 2e22)
	albedo := rng.Float64Between(0.05, 0.15)
	temp := cosmos.CosmicBackgroundTemperature
	if p.Star != nil {
		temp = EquilibriumTemperature(p.Star.Luminosity(), ringRadius, albedo)
	}

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureAsteroidField,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     mass / shape.Volume(),
			Temperature: &temp,
			Albedo:      albedo,
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceRock, Proportion: 0.5},
				{Substance: cosmos.SubstanceSilicate, Proportion: 0.25},
				{Substance: cosmos.SubstanceIron, Proportion: 0.15},
				{Substance: cosmos.SubstanceWaterIce, Proportion: 0.1},
			}),
		},
		Seed: seed,
	}, nil
}

// CloudParams constrain Oort cloud generation.
type CloudParams struct {
	Name string
	Star *cosmos.Location
}

// NewOortCloud generates an empty cometary shell enclosing a system.
// It is centered on the system barycenter and carries no orbit of its
// own; its members orbit the system primary individually.
func NewOortCloud(seed int64, p CloudParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	inner := rng.Float64Between(2.5e15, 4.5e15)
	outer := inner * rng.Float64Between(1.7, 2.5)
	shape := cosmos.HollowSphere(inner, outer)

	name := p.Name
	if name == "" {
		if p.Star != nil {
			name = p.Star.Name + " Cloud"
		} else {
			name = StarName(rng) + " Cloud"
		}
	}

	mass := clampFloat(rng.PositiveNormal(3e25, 1.5e25), 1e24, 1e26)
	temp := cosmos.CosmicBackgroundTemperature

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureOortCloud,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     mass / shape.Volume(),
			Albedo:      rng.Float64Between(0.02, 0.08),
			Temperature: &temp,
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceWaterIce, Proportion: 0.6},
				{Substance: cosmos.SubstanceRock, Proportion: 0.25},
				{Substance: cosmos.SubstanceMethane, Proportion: 0.08},
				{Substance: cosmos.SubstanceAmmonia, Proportion: 0.07},
			}),
		},
		Seed: seed,
	}, nil
}
