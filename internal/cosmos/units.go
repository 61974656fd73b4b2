package cosmos

// Physical constants in SI units. Masses kg, distances m, power W,
// temperatures K.
const (
	// G is the gravitational constant, m³/(kg·s²).
	G = 6.67430e-11

	// StefanBoltzmann relates blackbody temperature to radiated power,
	// W/(m²·K⁴).
	StefanBoltzmann = 5.670374419e-8

	SpeedOfLight = 2.99792458e8

	AU        = 1.495978707e11
	LightYear = 9.4607304725808e15
	Parsec    = 3.0856775814913673e16

	SolarMass        = 1.98892e30
	SolarLuminosity  = 3.846e26
	SolarRadius      = 6.957e8
	SolarTemperature = 5778

	EarthMass   = 5.972e24
	EarthRadius = 6.371e6

	// CosmicBackgroundTemperature is the equilibrium floor for bodies
	// with no stellar context.
	CosmicBackgroundTemperature = 2.73
)
