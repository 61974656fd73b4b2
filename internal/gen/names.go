package gen

import (
	"fmt"

	"cosmos-server/internal/randx"
)

var properStarNames = []string{
	"Sirius", "Canopus", "Arcturus", "Vega", "Capella", "Rigel",
	"Procyon", "Achernar", "Betelgeuse", "Hadar", "Altair", "Acrux",
	"Aldebaran", "Antares", "Spica", "Pollux", "Fomalhaut", "Deneb",
	"Mimosa", "Regulus", "Adhara", "Castor", "Gacrux", "Shaula",
	"Bellatrix", "Elnath", "Miaplacidus", "Alnilam", "Alnair", "Alnitak",
	"Alioth", "Dubhe", "Mirfak", "Wezen", "Sargas", "Kaus Australis",
	"Avior", "Alkaid", "Menkalinan", "Atria", "Alhena", "Peacock",
	"Alsephina", "Mirzam", "Polaris", "Alphard", "Hamal", "Algieba",
	"Diphda", "Nunki", "Mizar", "Alpheratz", "Saiph", "Mirach",
	"Kochab", "Rasalhague", "Algol", "Denebola", "Naos", "Sadr",
	"Eltanin", "Schedar", "Caph", "Izar", "Alphecca", "Mintaka",
	"Suhail", "Almach", "Ankaa", "Tarazed", "Scheat", "Aludra",
}

var greekLetters = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta",
	"Theta", "Iota", "Kappa", "Lambda", "Mu", "Nu", "Xi", "Omicron",
	"Pi", "Rho", "Sigma", "Tau", "Upsilon", "Phi", "Chi", "Psi", "Omega",
}

var constellationGenitives = []string{
	"Centauri", "Orionis", "Lyrae", "Cygni", "Draconis", "Eridani",
	"Tauri", "Aquarii", "Persei", "Andromedae", "Cassiopeiae",
	"Scorpii", "Leonis", "Ursae Majoris", "Pegasi", "Carinae",
	"Velorum", "Ceti", "Aurigae", "Bootis", "Geminorum", "Herculis",
	"Ophiuchi", "Serpentis", "Virginis", "Aquilae", "Librae",
	"Sagittarii", "Capricorni", "Piscium", "Arietis", "Cancri",
	"Hydrae", "Crucis", "Gruis", "Pavonis", "Phoenicis", "Tucanae",
}

var properGalaxyNames = []string{
	"Andromeda", "Triangulum", "Whirlpool", "Sombrero", "Pinwheel",
	"Cartwheel", "Sunflower", "Tadpole", "Cigar", "Bode", "Sculptor",
	"Circinus", "Black Eye", "Needle", "Fireworks", "Antennae",
	"Hoag", "Medusa", "Condor", "Backward",
}

var properNebulaNames = []string{
	"Orion", "Carina", "Eagle", "Lagoon", "Trifid", "Ring", "Helix",
	"Crab", "Rosette", "Horsehead", "Tarantula", "Bubble", "Veil",
	"Pelican", "Flame", "Cone", "Butterfly", "Boomerang", "Omega",
	"Cocoon", "Iris", "Soul", "Heart", "Wizard", "Monkey Head",
}

// StarName picks a proper name, a Bayer designation, or a catalog
// number, weighted roughly like a real sky survey.
func StarName(rng *randx.Source) string {
	switch rng.WeightedChoice([]float64{0.3, 0.45, 0.25}) {
	case 0:
		return properStarNames[rng.Choice(len(properStarNames))]
	case 1:
		greek := greekLetters[rng.Choice(len(greekLetters))]
		constellation := constellationGenitives[rng.Choice(len(constellationGenitives))]
		return greek + " " + constellation
	default:
		return fmt.Sprintf("HD %d", rng.IntBetween(1000, 359999))
	}
}

func GalaxyName(rng *randx.Source) string {
	switch rng.WeightedChoice([]float64{0.25, 0.5, 0.25}) {
	case 0:
		return properGalaxyNames[rng.Choice(len(properGalaxyNames))] + " Galaxy"
	case 1:
		return fmt.Sprintf("NGC %d", rng.IntBetween(1, 7840))
	default:
		return fmt.Sprintf("UGC %d", rng.IntBetween(1, 12921))
	}
}

func ClusterName(rng *randx.Source) string {
	switch rng.WeightedChoice([]float64{0.4, 0.3, 0.3}) {
	case 0:
		return fmt.Sprintf("NGC %d", rng.IntBetween(1, 7840))
	case 1:
		return fmt.Sprintf("Palomar %d", rng.IntBetween(1, 15))
	default:
		return fmt.Sprintf("Terzan %d", rng.IntBetween(1, 12))
	}
}

func NebulaName(rng *randx.Source) string {
	switch rng.WeightedChoice([]float64{0.4, 0.35, 0.25}) {
	case 0:
		return properNebulaNames[rng.Choice(len(properNebulaNames))] + " Nebula"
	case 1:
		return fmt.Sprintf("IC %d", rng.IntBetween(1, 5386))
	default:
		return fmt.Sprintf("Sh2-%d", rng.IntBetween(1, 313))
	}
}

// AsteroidName produces a minor-planet style provisional designation,
// like "2047 KT12". The second letter skips I and Z per convention.
func AsteroidName(rng *randx.Source) string {
	halfMonth := asteroidLetter(rng, "ABCDEFGHJKLMNOPQRSTUVWXY")
	order := asteroidLetter(rng, "ABCDEFGHJKLMNOPQRSTUVWXY")
	return fmt.Sprintf("%d %c%c%d",
		rng.IntBetween(1900, 2400), halfMonth, order, rng.IntBetween(1, 99))
}

// CometName produces a comet designation; long-period comets get the
// C/ prefix, periodic ones P/.
func CometName(rng *randx.Source) string {
	prefix := "C"
	if rng.Bool(0.3) {
		prefix = "P"
	}
	letter := asteroidLetter(rng, "ABCDEFGHJKLMNOPQRSTUVWXY")
	return fmt.Sprintf("%s/%d %c%d",
		prefix, rng.IntBetween(1900, 2400), letter, rng.IntBetween(1, 20))
}

func asteroidLetter(rng *randx.Source, alphabet string) byte {
	return alphabet[rng.Choice(len(alphabet))]
}

// BlackHoleName produces an X-ray source style designation.
func BlackHoleName(rng *randx.Source) string {
	constellation := constellationGenitives[rng.Choice(len(constellationGenitives))]
	return fmt.Sprintf("%s X-%d", constellation, rng.IntBetween(1, 9))
}

// PlanetName numbers planets outward with Roman numerals, the way
// system surveys label them.
func PlanetName(system string, index int) string {
	return system + " " + RomanNumeral(index)
}

// MoonName letters satellites in discovery order.
func MoonName(planet string, index int) string {
	return fmt.Sprintf("%s %c", planet, 'a'+byte((index-1)%26))
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func RomanNumeral(n int) string {
	if n <= 0 {
		return "0"
	}
	out := ""
	for _, rv := range romanValues {
		for n >= rv.value {
			out += rv.symbol
			n -= rv.value
		}
	}
	return out
}
