package gen

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

type SpectralClass string

const (
	SpectralO SpectralClass = "O"
	SpectralB SpectralClass = "B"
	SpectralA SpectralClass = "A"
	SpectralF SpectralClass = "F"
	SpectralG SpectralClass = "G"
	SpectralK SpectralClass = "K"
	SpectralM SpectralClass = "M"
)

type LuminosityClass string

const (
	LuminosityIa  LuminosityClass = "Ia"
	LuminosityIb  LuminosityClass = "Ib"
	LuminosityII  LuminosityClass = "II"
	LuminosityIII LuminosityClass = "III"
	LuminosityIV  LuminosityClass = "IV"
	LuminosityV   LuminosityClass = "V"
)

// spectralBands covers the main-sequence temperature ranges with
// abundance weights following the stellar initial mass function.
var spectralBands = []struct {
	class            SpectralClass
	minTemp, maxTemp float64
	weight           float64
}{
	{SpectralO, 30000, 52000, 0.00003},
	{SpectralB, 10000, 30000, 0.0012},
	{SpectralA, 7500, 10000, 0.0061},
	{SpectralF, 6000, 7500, 0.03},
	{SpectralG, 5200, 6000, 0.076},
	{SpectralK, 3700, 5200, 0.121},
	{SpectralM, 2400, 3700, 0.765},
}

// SpectralClassFor returns the class whose temperature band contains the
// given effective temperature.
func SpectralClassFor(tempK float64) SpectralClass {
	for _, band := range spectralBands {
		if tempK >= band.minTemp {
			return band.class
		}
	}
	return SpectralM
}

func validSpectralClass(c SpectralClass) bool {
	for _, band := range spectralBands {
		if band.class == c {
			return true
		}
	}
	return false
}

// luminosityClassWeights orders giants and dwarfs by how often surveys
// see them.
var luminosityClasses = []LuminosityClass{
	LuminosityV, LuminosityIV, LuminosityIII, LuminosityII, LuminosityIb, LuminosityIa,
}

var luminosityClassWeights = []float64{0.80, 0.06, 0.10, 0.02, 0.015, 0.005}

// StarParams constrain star generation. Zero values are sampled.
type StarParams struct {
	Name            string
	SpectralClass   SpectralClass
	LuminosityClass LuminosityClass
	// Temperature pins the effective temperature in Kelvin and, unless
	// a class is given, determines the spectral class.
	Temperature float64
}

// NewStar generates a star from a seed. Mass follows the main-sequence
// temperature relation, luminosity the mass-luminosity relation, and the
// radius comes from the Stefan-Boltzmann law, so the three stay
// physically consistent.
func NewStar(seed int64, p StarParams) (*cosmos.Location, error) {
	rng := randx.New(seed)

	if p.Temperature < 0 {
		return nil, fmt.Errorf("star temperature %v: %w", p.Temperature, cosmos.ErrInvalidConfiguration)
	}
	if p.SpectralClass != "" && !validSpectralClass(p.SpectralClass) {
		return nil, fmt.Errorf("unknown spectral class %q: %w", p.SpectralClass, cosmos.ErrInvalidConfiguration)
	}

	class := p.SpectralClass
	temp := p.Temperature
	switch {
	case temp > 0 && class == "":
		class = SpectralClassFor(temp)
	case temp == 0:
		if class == "" {
			class = sampleSpectralClass(rng)
		}
		temp = sampleTemperature(rng, class)
	}

	lumClass := p.LuminosityClass
	if lumClass == "" {
		lumClass = luminosityClasses[rng.WeightedChoice(luminosityClassWeights)]
	}

	mass := cosmos.SolarMass * math.Pow(temp/cosmos.SolarTemperature, 1.98)
	luminosity := cosmos.SolarLuminosity * math.Pow(mass/cosmos.SolarMass, 3.5)
	mass *= massFactor(rng, lumClass)
	luminosity *= luminosityFactor(rng, lumClass)

	radius := math.Sqrt(luminosity / (4 * math.Pi * cosmos.StefanBoltzmann * math.Pow(temp, 4)))
	shape := cosmos.Sphere(radius)

	name := p.Name
	if name == "" {
		name = StarName(rng)
	}

	hydrogen := rng.Float64Between(0.70, 0.75)
	helium := rng.Float64Between(0.23, 0.27)
	composition := []cosmos.Component{
		{Substance: cosmos.SubstanceHydrogen, Proportion: hydrogen},
		{Substance: cosmos.SubstanceHelium, Proportion: helium},
		{Substance: cosmos.SubstanceIron, Proportion: math.Max(0.001, 1-hydrogen-helium)},
	}
	cosmos.NormalizeComponents(composition)

	return &cosmos.Location{
		ID:   newID(rng),
		Name: name,
		Type: cosmos.StructureStar,
		Material: cosmos.Material{
			Mass:        mass,
			Shape:       shape,
			Density:     mass / shape.Volume(),
			Temperature: &temp,
			Composition: composition,
		},
		Seed: seed,
	}, nil
}

func sampleSpectralClass(rng *randx.Source) SpectralClass {
	weights := make([]float64, len(spectralBands))
	for i, band := range spectralBands {
		weights[i] = band.weight
	}
	return spectralBands[rng.WeightedChoice(weights)].class
}

func sampleTemperature(rng *randx.Source, class SpectralClass) float64 {
	for _, band := range spectralBands {
		if band.class == class {
			return rng.Float64Between(band.minTemp, band.maxTemp)
		}
	}
	return cosmos.SolarTemperature
}

// massFactor and luminosityFactor lift evolved stars off the main
// sequence.
func massFactor(rng *randx.Source, c LuminosityClass) float64 {
	switch c {
	case LuminosityIV:
		return rng.Float64Between(1.1, 1.6)
	case LuminosityIII:
		return rng.Float64Between(1.2, 3)
	case LuminosityII:
		return rng.Float64Between(3, 8)
	case LuminosityIb:
		return rng.Float64Between(8, 15)
	case LuminosityIa:
		return rng.Float64Between(12, 25)
	default:
		return 1
	}
}

func luminosityFactor(rng *randx.Source, c LuminosityClass) float64 {
	switch c {
	case LuminosityIV:
		return rng.Float64Between(2, 6)
	case LuminosityIII:
		return rng.Float64Between(10, 100)
	case LuminosityII:
		return rng.Float64Between(100, 1000)
	case LuminosityIb:
		return rng.Float64Between(1e3, 3e4)
	case LuminosityIa:
		return rng.Float64Between(3e4, 3e5)
	default:
		return 1
	}
}

// newID mints a deterministic uuid from the generation stream.
func newID(rng *randx.Source) uuid.UUID {
	id, _ := uuid.NewRandomFromReader(rng)
	return id
}
