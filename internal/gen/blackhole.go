package gen

import (
	"fmt"
	"math"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// BlackHoleParams constrain black hole generation. A zero Mass is
// sampled from the stellar-remnant range, or the supermassive range when
// Supermassive is set.
type BlackHoleParams struct {
	Name         string
	Supermassive bool
	Mass         float64
}

// NewBlackHole generates a black hole. The shape is the event horizon
// sphere, so the recorded density is the mean density inside the
// horizon.
func NewBlackHole(seed int64, p BlackHoleParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	if p.Mass < 0 {
		return nil, fmt.Errorf("black hole mass %v: %w", p.Mass, cosmos.ErrInvalidConfiguration)
	}

	mass := p.Mass
	if mass == 0 {
		if p.Supermassive {
			mass = clampFloat(rng.LogNormal(math.Log(4e36), 1.1), 2e35, 1e40)
		} else {
			mass = clampFloat(rng.PositiveNormal(2.4e31, 1.6e31), 6e30, 3e32)
		}
	}

	shape := cosmos.Sphere(SchwarzschildRadius(mass))

	name := p.Name
	if name == "" {
		name = BlackHoleName(rng)
	}

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureBlackHole,
		Material: cosmos.Material{
			Mass:    mass,
			Shape:   shape,
			Density: mass / shape.Volume(),
		},
		Seed: seed,
	}, nil
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
