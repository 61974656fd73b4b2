package gen

import (
	"fmt"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// GalaxyKind is the broad morphological class of a galaxy.
type GalaxyKind string

const (
	GalaxySpiral     GalaxyKind = "spiral"
	GalaxyElliptical GalaxyKind = "elliptical"
	GalaxyIrregular  GalaxyKind = "irregular"
)

// UniverseParams constrain universe generation.
type UniverseParams struct {
	Name string
	// Radius of the generated patch in meters. Sampled when zero.
	Radius float64
}

// NewUniverse generates an empty universe region. Galaxies and other
// contents are added by the population engine.
func NewUniverse(seed int64, p UniverseParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	if p.Radius < 0 {
		return nil, fmt.Errorf("universe radius %v: %w", p.Radius, cosmos.ErrInvalidConfiguration)
	}
	radius := p.Radius
	if radius == 0 {
		radius = clampFloat(rng.PositiveNormal(5e23, 1e23), 1e23, 1e24)
	}

	name := p.Name
	if name == "" {
		name = "Universe"
	}

	temp := cosmos.CosmicBackgroundTemperature
	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureUniverse,
		Material: cosmos.Material{
			Shape:       cosmos.Sphere(radius),
			Temperature: &temp,
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceHydrogen, Proportion: 0.73},
				{Substance: cosmos.SubstanceHelium, Proportion: 0.25},
				{Substance: cosmos.SubstanceDust, Proportion: 0.02},
			}),
		},
		Seed: seed,
	}, nil
}

// GalaxyParams constrain galaxy generation.
type GalaxyParams struct {
	Name string
	// Kind is sampled by abundance when empty.
	Kind GalaxyKind
}

// NewGalaxy generates a galaxy with a supermassive black hole at its
// core. Star systems, clusters and nebulae are added by the population
// engine.
func NewGalaxy(seed int64, p GalaxyParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	kind := p.Kind
	if kind == "" {
		kinds := []GalaxyKind{GalaxySpiral, GalaxyElliptical, GalaxyIrregular}
		kind = kinds[rng.WeightedChoice([]float64{0.62, 0.23, 0.15})]
	}

	var shape cosmos.Shape
	switch kind {
	case GalaxySpiral:
		radius := clampFloat(rng.PositiveNormal(4.7e20, 1.5e20), 8e19, 1.2e21)
		shape = cosmos.Spheroid(radius, radius*rng.Float64Between(0.08, 0.18))
	case GalaxyElliptical:
		radius := clampFloat(rng.PositiveNormal(5.5e20, 2.5e20), 8e19, 1.8e21)
		shape = cosmos.Spheroid(radius, radius*rng.Float64Between(0.5, 0.9))
	case GalaxyIrregular:
		radius := clampFloat(rng.PositiveNormal(1.8e20, 8e19), 3e19, 5e20)
		shape = cosmos.Ellipsoid(radius, radius*rng.Float64Between(0.6, 0.9), radius*rng.Float64Between(0.3, 0.6))
	default:
		return nil, fmt.Errorf("unknown galaxy kind %q: %w", p.Kind, cosmos.ErrInvalidConfiguration)
	}

	name := p.Name
	if name == "" {
		name = GalaxyName(rng)
	}

	mass := clampFloat(rng.PositiveNormal(8e41, 4e41), 5e39, 4e42)
	galaxy := &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureGalaxy,
		Material: cosmos.Material{
			Mass:    mass,
			Shape:   shape,
			Density: mass / shape.Volume(),
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceHydrogen, Proportion: 0.70},
				{Substance: cosmos.SubstanceHelium, Proportion: 0.28},
				{Substance: cosmos.SubstanceDust, Proportion: 0.02},
			}),
		},
		Seed: seed,
	}

	core, err := NewBlackHole(rng.Int64(), BlackHoleParams{
		Name:         name + " A*",
		Supermassive: true,
	})
	if err != nil {
		return nil, err
	}
	galaxy.AddChild(core)

	return galaxy, nil
}

// ClusterParams constrain globular cluster generation.
type ClusterParams struct {
	Name string
}

// NewGlobularCluster generates a dense, old stellar cluster. A minority
// host an intermediate-mass black hole at the core.
func NewGlobularCluster(seed int64, p ClusterParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	radius := clampFloat(rng.PositiveNormal(2.5e17, 8e16), 5e16, 6e17)
	mass := clampFloat(rng.PositiveNormal(6e35, 3e35), 2e34, 4e36)

	name := p.Name
	if name == "" {
		name = ClusterName(rng)
	}

	cluster := &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureGlobularCluster,
		Material: cosmos.Material{
			Mass:    mass,
			Shape:   cosmos.Sphere(radius),
			Density: mass / cosmos.Sphere(radius).Volume(),
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceHydrogen, Proportion: 0.745},
				{Substance: cosmos.SubstanceHelium, Proportion: 0.25},
				{Substance: cosmos.SubstanceIron, Proportion: 0.005},
			}),
		},
		Seed: seed,
	}

	if rng.Bool(0.3) {
		core, err := NewBlackHole(rng.Int64(), BlackHoleParams{
			Name: name + " Core",
			Mass: clampFloat(rng.PositiveNormal(6e33, 3e33), 2e32, 4e34),
		})
		if err != nil {
			return nil, err
		}
		cluster.AddChild(core)
	}

	return cluster, nil
}

// NebulaParams constrain nebula generation.
type NebulaParams struct {
	Name string
}

// NewNebula generates a diffuse cloud of gas and dust.
func NewNebula(seed int64, p NebulaParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	a := clampFloat(rng.PositiveNormal(6e17, 2.5e17), 1e17, 1.5e18)
	shape := cosmos.Ellipsoid(a, a*rng.Float64Between(0.6, 1.0), a*rng.Float64Between(0.4, 0.9))
	mass := clampFloat(rng.PositiveNormal(4e33, 2e33), 2e32, 2e34)

	name := p.Name
	if name == "" {
		name = NebulaName(rng)
	}

	temp := rng.Float64Between(10, 120)
	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureNebula,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     mass / shape.Volume(),
			Temperature: &temp,
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceHydrogen, Proportion: 0.72},
				{Substance: cosmos.SubstanceHelium, Proportion: 0.26},
				{Substance: cosmos.SubstanceDust, Proportion: 0.02},
			}),
		},
		Seed: seed,
	}, nil
}
