package cosmos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-server/internal/randx"
)

func TestShapeVolume(t *testing.T) {
	cases := []struct {
		name  string
		shape Shape
		want  float64
	}{
		{"sphere", Sphere(2), 4.0 / 3.0 * math.Pi * 8},
		{"spheroid", Spheroid(2, 1), 4.0 / 3.0 * math.Pi * 4},
		{"ellipsoid", Ellipsoid(1, 2, 3), 4.0 / 3.0 * math.Pi * 6},
		{"hollow sphere", HollowSphere(1, 2), 4.0 / 3.0 * math.Pi * 7},
		{"torus", Torus(3, 1), 2 * math.Pi * math.Pi * 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InEpsilon(t, tc.want, tc.shape.Volume(), 1e-12)
		})
	}
}

func TestShapeContainingRadius(t *testing.T) {
	assert.Equal(t, 2.0, Sphere(2).ContainingRadius())
	assert.Equal(t, 3.0, Spheroid(2, 3).ContainingRadius())
	assert.Equal(t, 5.0, Ellipsoid(4, 5, 3).ContainingRadius())
	assert.Equal(t, 7.0, HollowSphere(2, 7).ContainingRadius())
	assert.Equal(t, 4.5, Torus(3, 1.5).ContainingRadius())
}

func TestRandomPointWithin(t *testing.T) {
	rng := randx.New(31)

	t.Run("sphere", func(t *testing.T) {
		s := Sphere(10)
		for i := 0; i < 500; i++ {
			require.LessOrEqual(t, s.RandomPointWithin(rng).Length(), 10.0)
		}
	})

	t.Run("spheroid respects the polar axis", func(t *testing.T) {
		s := Spheroid(10, 2)
		for i := 0; i < 500; i++ {
			p := s.RandomPointWithin(rng)
			require.LessOrEqual(t, math.Abs(p.Z), 2.0)
			require.LessOrEqual(t, p.Length(), 10.0+1e-9)
		}
	})

	t.Run("hollow sphere avoids the cavity", func(t *testing.T) {
		s := HollowSphere(6, 9)
		for i := 0; i < 500; i++ {
			r := s.RandomPointWithin(rng).Length()
			require.GreaterOrEqual(t, r, 6.0-1e-9)
			require.LessOrEqual(t, r, 9.0+1e-9)
		}
	})

	t.Run("torus stays inside the tube", func(t *testing.T) {
		s := Torus(100, 10)
		for i := 0; i < 500; i++ {
			p := s.RandomPointWithin(rng)
			axial := math.Sqrt(p.X*p.X + p.Y*p.Y)
			d := math.Hypot(axial-100, p.Z)
			require.LessOrEqual(t, d, 10.0+1e-9)
		}
	})

	t.Run("sampling is deterministic per seed", func(t *testing.T) {
		a := Sphere(5).RandomPointWithin(randx.New(77))
		b := Sphere(5).RandomPointWithin(randx.New(77))
		assert.Equal(t, a, b)
	})
}

func TestMaterialComposition(t *testing.T) {
	t.Run("normalize rescales to one", func(t *testing.T) {
		c := []Component{
			{Substance: SubstanceRock, Proportion: 3},
			{Substance: SubstanceIron, Proportion: 1},
		}
		NormalizeComponents(c)
		assert.InEpsilon(t, 0.75, c[0].Proportion, 1e-12)
		assert.InEpsilon(t, 0.25, c[1].Proportion, 1e-12)
	})

	t.Run("flatten weighs layers by mass fraction", func(t *testing.T) {
		layers := []Layer{
			{Kind: LayerCore, MassFraction: 0.4, Components: []Component{
				{Substance: SubstanceIron, Proportion: 1},
			}},
			{Kind: LayerMantle, MassFraction: 0.6, Components: []Component{
				{Substance: SubstanceRock, Proportion: 0.5},
				{Substance: SubstanceIron, Proportion: 0.5},
			}},
		}
		flat := FlattenLayers(layers)
		require.Len(t, flat, 2)

		var total float64
		byName := map[Substance]float64{}
		for _, c := range flat {
			total += c.Proportion
			byName[c.Substance] = c.Proportion
		}
		assert.InEpsilon(t, 1.0, total, 1e-12)
		assert.InEpsilon(t, 0.7, byName[SubstanceIron], 1e-12)
		assert.InEpsilon(t, 0.3, byName[SubstanceRock], 1e-12)
	})
}
