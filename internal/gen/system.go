package gen

import (
	"fmt"
	"math"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// SystemParams constrain star system generation.
type SystemParams struct {
	Name string
	// StarCount fixes the number of stars; sampled when zero.
	StarCount int
	// MaxPlanets caps the planet ladder. Zero means the default cap,
	// negative disables planets entirely.
	MaxPlanets int
}

const defaultMaxPlanets = 10

var moonBudgets = map[cosmos.StructureType]int{
	cosmos.StructurePlanet:      2,
	cosmos.StructureGasGiant:    8,
	cosmos.StructureIceGiant:    5,
	cosmos.StructureDwarfPlanet: 1,
}

// NewStarSystem generates a complete system: a primary star with
// optional companions, a planet ladder spaced in rough geometric steps
// outward from the star, moons and rings around the planets, and
// occasionally an asteroid belt and a distant cometary cloud. Every
// child ends up attached to the system node itself; nesting is
// expressed through orbits, not through the tree.
func NewStarSystem(seed int64, p SystemParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	if p.StarCount < 0 || p.StarCount > 4 {
		return nil, fmt.Errorf("star count %d: %w", p.StarCount, cosmos.ErrInvalidConfiguration)
	}

	primary, err := NewStar(rng.Int64(), StarParams{})
	if err != nil {
		return nil, err
	}
	baseName := primary.Name

	name := p.Name
	if name == "" {
		name = baseName + " System"
	}

	radius := clampFloat(rng.PositiveNormal(2.5e16, 8e15), 6e15, 8e16)
	shape := cosmos.Sphere(radius)
	system := &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureStarSystem,
		Material: cosmos.Material{
			Shape: shape,
			Composition: jitterComponents(rng, []cosmos.Component{
				{Substance: cosmos.SubstanceHydrogen, Proportion: 0.73},
				{Substance: cosmos.SubstanceHelium, Proportion: 0.25},
				{Substance: cosmos.SubstanceDust, Proportion: 0.02},
			}),
		},
		Seed: seed,
	}
	system.AddChild(primary)

	starCount := p.StarCount
	if starCount == 0 {
		starCount = 1 + rng.WeightedChoice([]float64{0.69, 0.25, 0.06})
	}
	if starCount > 1 {
		primary.Name = baseName + " A"
	}

	// Companions are main-sequence stars no hotter than the primary, so
	// the primary stays the heaviest body in the system.
	primaryTemp := *primary.Material.Temperature
	closestCompanion := math.Inf(1)
	for i := 1; i < starCount; i++ {
		companion, err := NewStar(rng.Int64(), StarParams{
			Name:            fmt.Sprintf("%s %c", baseName, 'A'+i),
			Temperature:     rng.Float64Between(2400, primaryTemp),
			LuminosityClass: LuminosityV,
		})
		if err != nil {
			return nil, err
		}
		separation := clampFloat(rng.LogNormal(math.Log(75*cosmos.AU), 0.9), 20*cosmos.AU, 1.5e15)
		closestCompanion = math.Min(closestCompanion, separation)
		rel := scatterDirection(rng, 0.15).Scale(separation)
		orbit, err := cosmos.EccentricOrbit(rng, companion.Mass(), primary.Mass(), rel, rng.Float64Between(0.1, 0.6), 0.35)
		if err != nil {
			return nil, err
		}
		system.AddChild(companion)
		if err := cosmos.AssignOrbit(companion, primary, orbit); err != nil {
			return nil, err
		}
	}

	luminosity := primary.Luminosity()
	lumScale := math.Sqrt(luminosity / cosmos.SolarLuminosity)
	snow := SnowLine(luminosity)

	maxPlanets := p.MaxPlanets
	if maxPlanets == 0 {
		maxPlanets = defaultMaxPlanets
	}
	planetCount := 0
	if maxPlanets > 0 {
		planetCount = rng.IntBetween(0, maxPlanets)
	}

	// Planets stay well inside any stellar companion's orbit.
	outerLimit := math.Min(radius*0.01, closestCompanion/4)

	a := rng.Float64Between(0.25, 0.55) * cosmos.AU * lumScale
	var semiMajors []float64
	for i := 1; i <= planetCount && a < outerLimit; i++ {
		kind := planetKindFor(rng, a, snow)
		planet, err := NewPlanemo(rng.Int64(), PlanemoParams{
			Kind:          kind,
			Name:          PlanetName(baseName, i),
			Star:          primary,
			OrbitDistance: a,
		})
		if err != nil {
			return nil, err
		}

		rel := scatterDirection(rng, 0.01).Scale(a)
		ecc := clampFloat(rng.PositiveNormal(0.05, 0.04), 0, 0.3)
		orbit, err := cosmos.EccentricOrbit(rng, planet.Mass(), primary.Mass(), rel, ecc, 0.06)
		if err != nil {
			return nil, err
		}
		system.AddChild(planet)
		if err := cosmos.AssignOrbit(planet, primary, orbit); err != nil {
			return nil, err
		}

		if rng.Bool(planemoProfiles[kind].ringChance) {
			rings, err := RingsFor(rng.Int64(), planet)
			if err != nil {
				return nil, err
			}
			planet.Rings = rings
		}
		if err := generateMoons(rng, system, planet, primary); err != nil {
			return nil, err
		}

		semiMajors = append(semiMajors, a)
		a *= rng.Float64Between(1.4, 2.2)
	}

	if rng.Bool(0.5) {
		beltA := beltDistance(rng, semiMajors, lumScale)
		if beltA < outerLimit {
			field, err := NewAsteroidField(rng.Int64(), FieldParams{
				Name:          baseName + " Belt",
				Star:          primary,
				OrbitDistance: beltA,
			})
			if err != nil {
				return nil, err
			}
			// The torus annulus is centered on the star. The field is
			// a distribution of member orbits, not an orbiting body.
			system.AddChild(field)
		}
	}

	if rng.Bool(0.4) {
		cloud, err := NewOortCloud(rng.Int64(), CloudParams{
			Name: baseName + " Cloud",
			Star: primary,
		})
		if err != nil {
			return nil, err
		}
		// The shell sits on the system barycenter rather than orbiting.
		system.AddChild(cloud)
	}

	var total float64
	for _, child := range system.Children() {
		total += child.Mass()
	}
	system.Material.Mass = total
	system.Material.Density = total / shape.Volume()

	return system, nil
}

// planetKindFor buckets a planet's kind by where it sits relative to the
// snow line: rock inside, gas just beyond, ice and leftovers far out.
func planetKindFor(rng *randx.Source, a, snow float64) cosmos.StructureType {
	switch {
	case a < snow:
		if rng.Bool(0.08) {
			return cosmos.StructureDwarfPlanet
		}
		return cosmos.StructurePlanet
	case a < 3*snow:
		kinds := []cosmos.StructureType{
			cosmos.StructureGasGiant, cosmos.StructureIceGiant,
			cosmos.StructurePlanet, cosmos.StructureDwarfPlanet,
		}
		return kinds[rng.WeightedChoice([]float64{0.55, 0.2, 0.15, 0.1})]
	default:
		kinds := []cosmos.StructureType{
			cosmos.StructureIceGiant, cosmos.StructureGasGiant,
			cosmos.StructureDwarfPlanet,
		}
		return kinds[rng.WeightedChoice([]float64{0.45, 0.2, 0.35})]
	}
}

// generateMoons fills part of a planet's Hill sphere with satellites.
// Satellites heavy enough to pull themselves round are dwarf planets,
// the rest are captured asteroids. All are attached to the system node
// and orbit the planet.
func generateMoons(rng *randx.Source, system, planet, star *cosmos.Location) error {
	hill := planet.Orbit.HillRadius(planet.Mass())
	minA := 3 * planet.Radius()
	maxA := hill / 3
	if maxA <= minA*1.5 {
		return nil
	}

	count := rng.IntBetween(0, moonBudgets[planet.Type])
	for i := 1; i <= count; i++ {
		frac := clampFloat(rng.LogNormal(math.Log(1e-4), 1.4), 1e-8, 0.02)
		mass := frac * planet.Mass()
		name := MoonName(planet.Name, i)
		seed := rng.Int64()

		var moon *cosmos.Location
		var err error
		if mass > AsteroidMassLimit || RadiusForMass(mass, 2500) >= MinPlanemoRadius {
			moon, err = NewPlanemo(seed, PlanemoParams{
				Kind:          cosmos.StructureDwarfPlanet,
				Name:          name,
				Mass:          mass,
				Star:          star,
				OrbitDistance: planet.Orbit.SemiMajorAxis,
			})
		} else {
			moon, err = NewAsteroid(seed, SmallBodyParams{
				Name:          name,
				Mass:          mass,
				Star:          star,
				OrbitDistance: planet.Orbit.SemiMajorAxis,
			})
		}
		if err != nil {
			return err
		}

		rel := scatterDirection(rng, 0.02).Scale(rng.Float64Between(minA, maxA))
		orbit, err := cosmos.EccentricOrbit(rng, moon.Mass(), planet.Mass(), rel, rng.Float64Between(0, 0.05), 0.1)
		if err != nil {
			return err
		}
		system.AddChild(moon)
		if err := cosmos.AssignOrbit(moon, planet, orbit); err != nil {
			return err
		}
	}
	return nil
}

// beltDistance picks the widest gap in the planet ladder, or an
// arbitrary mid-system band when there is no ladder to slot into.
func beltDistance(rng *randx.Source, semiMajors []float64, lumScale float64) float64 {
	if len(semiMajors) < 2 {
		return rng.Float64Between(2, 6) * cosmos.AU * lumScale
	}
	best := 1
	bestRatio := 0.0
	for i := 1; i < len(semiMajors); i++ {
		if r := semiMajors[i] / semiMajors[i-1]; r > bestRatio {
			bestRatio = r
			best = i
		}
	}
	return math.Sqrt(semiMajors[best-1] * semiMajors[best])
}

// scatterDirection draws a unit vector close to the reference plane,
// with zSpread controlling how far bodies stray from it.
func scatterDirection(rng *randx.Source, zSpread float64) cosmos.Vector3 {
	theta := rng.Angle()
	v := cosmos.Vector3{X: math.Cos(theta), Y: math.Sin(theta), Z: rng.Normal(0, zSpread)}
	return v.Normalize()
}
