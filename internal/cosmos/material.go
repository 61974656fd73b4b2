package cosmos

// Substance identifies a constituent of a body or region.
type Substance string

const (
	SubstanceHydrogen Substance = "hydrogen"
	SubstanceHelium   Substance = "helium"
	SubstanceRock     Substance = "rock"
	SubstanceSilicate Substance = "silicate"
	SubstanceIron     Substance = "iron"
	SubstanceNickel   Substance = "nickel"
	SubstanceWaterIce Substance = "water_ice"
	SubstanceMethane  Substance = "methane"
	SubstanceAmmonia  Substance = "ammonia"
	SubstanceDust     Substance = "dust"
)

// Component is one substance with its mass proportion. Proportions within
// a composition or a layer sum to 1.
type Component struct {
	Substance  Substance `json:"substance"`
	Proportion float64   `json:"proportion"`
}

type LayerKind string

const (
	LayerCore   LayerKind = "core"
	LayerMantle LayerKind = "mantle"
	LayerCrust  LayerKind = "crust"
)

// Layer is a differentiated shell of a body, ordered innermost first.
// MassFraction is the layer's share of the body's total mass.
type Layer struct {
	Kind         LayerKind   `json:"kind"`
	MassFraction float64     `json:"mass_fraction"`
	Components   []Component `json:"components"`
}

// Material carries the physical description shared by every location:
// how much matter, in what shape, at what density, and what it is made
// of. Temperature is nil for bodies where none was derived.
type Material struct {
	Mass        float64     `json:"mass"`
	Shape       Shape       `json:"shape"`
	Density     float64     `json:"density"`
	Temperature *float64    `json:"temperature,omitempty"`
	Albedo      float64     `json:"albedo"`
	Composition []Component `json:"composition,omitempty"`
	Layers      []Layer     `json:"layers,omitempty"`
}

// NormalizeComponents rescales proportions in place so they sum to 1.
// Empty or all-zero slices are left untouched.
func NormalizeComponents(components []Component) {
	var total float64
	for _, c := range components {
		total += c.Proportion
	}
	if total <= 0 {
		return
	}
	for i := range components {
		components[i].Proportion /= total
	}
}

// FlattenLayers collapses layered composition into a single bulk
// composition weighted by layer mass fractions.
func FlattenLayers(layers []Layer) []Component {
	totals := make(map[Substance]float64)
	var order []Substance
	for _, layer := range layers {
		for _, c := range layer.Components {
			if _, seen := totals[c.Substance]; !seen {
				order = append(order, c.Substance)
			}
			totals[c.Substance] += layer.MassFraction * c.Proportion
		}
	}
	components := make([]Component, 0, len(order))
	for _, s := range order {
		components = append(components, Component{Substance: s, Proportion: totals[s]})
	}
	NormalizeComponents(components)
	return components
}
