package integral_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairdre/goscf/basis"
	"github.com/dairdre/goscf/integral"
)

func TestERIH2Reference(t *testing.T) {
	eng := h2Engine(t)

	cases := []struct {
		a, b, c, d int
		want       float64
	}{
		{0, 0, 0, 0, 0.7746},
		{1, 1, 1, 1, 0.7746},
		{0, 0, 1, 1, 0.5697},
		{1, 0, 0, 0, 0.4441},
		{1, 0, 1, 0, 0.2970},
	}
	for _, tc := range cases {
		block, err := eng.ERI(tc.a, tc.b, tc.c, tc.d)
		require.NoError(t, err)
		assert.InDeltaf(t, tc.want, block.At(0, 0, 0, 0), 5e-4,
			"(%d%d|%d%d)", tc.a, tc.b, tc.c, tc.d)
	}
}

// mixedEngine sets up four distinct centers carrying s, p, s, d shells so
// the permutation checks exercise angular blocks, not just scalars.
func mixedEngine(t *testing.T) *integral.Engine {
	t.Helper()
	specs := []struct {
		center [3]float64
		l      int
	}{
		{[3]float64{0, 0, 0}, 0},
		{[3]float64{1.1, 0.2, -0.3}, 1},
		{[3]float64{-0.4, 0.9, 0.5}, 0},
		{[3]float64{0.3, -0.8, 1.2}, 2},
	}
	shells := make([]*basis.Shell, len(specs))
	for i, sp := range specs {
		sh, err := basis.NewShell(sp.center, sp.l, []float64{1.1, 0.36}, []float64{0.7, 0.4})
		require.NoError(t, err)
		shells[i] = sh
	}
	return integral.NewEngine(basis.FromShells(shells), integral.Params{})
}

func TestERIPermutationalSymmetry(t *testing.T) {
	eng := mixedEngine(t)

	ref, err := eng.ERI(0, 1, 2, 3)
	require.NoError(t, err)

	swapped, err := eng.ERI(1, 0, 2, 3)
	require.NoError(t, err)
	ketSwapped, err := eng.ERI(0, 1, 3, 2)
	require.NoError(t, err)
	braKet, err := eng.ERI(2, 3, 0, 1)
	require.NoError(t, err)

	for a := 0; a < ref.Dims[0]; a++ {
		for b := 0; b < ref.Dims[1]; b++ {
			for c := 0; c < ref.Dims[2]; c++ {
				for d := 0; d < ref.Dims[3]; d++ {
					v := ref.At(a, b, c, d)
					assert.InDelta(t, v, swapped.At(b, a, c, d), 1e-10)
					assert.InDelta(t, v, ketSwapped.At(a, b, d, c), 1e-10)
					assert.InDelta(t, v, braKet.At(c, d, a, b), 1e-10)
				}
			}
		}
	}
}

func TestERIPositiveDiagonal(t *testing.T) {
	eng := mixedEngine(t)
	for i := 0; i < 4; i++ {
		block, err := eng.ERI(i, i, i, i)
		require.NoError(t, err)
		for a := 0; a < block.Dims[0]; a++ {
			for b := 0; b < block.Dims[1]; b++ {
				// (μν|μν) is a self-repulsion of the charge distribution μν.
				assert.Greater(t, block.At(a, b, a, b), 0.0)
			}
		}
	}
}

func TestERIDecaysWithDistance(t *testing.T) {
	mk := func(dist float64) float64 {
		s1, err := basis.NewShell([3]float64{0, 0, 0}, 0, []float64{1.0}, []float64{1})
		require.NoError(t, err)
		s2, err := basis.NewShell([3]float64{0, 0, dist}, 0, []float64{1.0}, []float64{1})
		require.NoError(t, err)
		eng := integral.NewEngine(basis.FromShells([]*basis.Shell{s1, s2}), integral.Params{})
		block, err := eng.ERI(0, 0, 1, 1)
		require.NoError(t, err)
		return block.At(0, 0, 0, 0)
	}

	near, far := mk(1.0), mk(8.0)
	assert.Greater(t, near, far)
	// At long range (00|11) tends to 1/R.
	assert.InDelta(t, 1.0/8.0, far, 1e-3)
	assert.False(t, math.IsNaN(near))
}
