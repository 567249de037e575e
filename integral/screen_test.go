package integral_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairdre/goscf/basis"
	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/integral"
)

// stretchedEngine places two H-like centers far apart so cross pairs carry
// tiny bounds and screening has something to discard.
func stretchedEngine(t *testing.T, threshold float64) *integral.Engine {
	t.Helper()
	mol := chem.NewMolecule(
		chem.Atom{Z: 1, Coord: [3]float64{0, 0, 0}},
		chem.Atom{Z: 1, Coord: [3]float64{25.0, 0, 0}},
	)
	reg, err := basis.Build(mol, "STO-3G")
	require.NoError(t, err)
	return integral.NewEngine(reg, integral.Params{ScreenThreshold: threshold})
}

func TestQuartetEnumerationCanonical(t *testing.T) {
	eng := stretchedEngine(t, 0)
	scr, err := integral.NewScreener(eng)
	require.NoError(t, err)

	qs := scr.Quartets()
	// 2 shells -> 3 pairs -> 6 canonical pairs of pairs.
	require.Len(t, qs, 6)

	seen := map[[4]int]bool{}
	totalWeight := 0.0
	for _, q := range qs {
		assert.GreaterOrEqual(t, q.A, q.B)
		assert.GreaterOrEqual(t, q.C, q.D)
		assert.False(t, seen[[4]int{q.A, q.B, q.C, q.D}])
		seen[[4]int{q.A, q.B, q.C, q.D}] = true
		totalWeight += q.Weight
	}
	// Weights must restore the full quartic count: 2^4 = 16 quartets.
	assert.InDelta(t, 16.0, totalWeight, 1e-14)
}

func TestZeroThresholdSkipsNothing(t *testing.T) {
	eng := stretchedEngine(t, 0)
	scr, err := integral.NewScreener(eng)
	require.NoError(t, err)
	assert.False(t, scr.Skipped(0, 0, 1, 1))
	assert.False(t, scr.Skipped(1, 0, 1, 0))
	assert.Len(t, scr.Quartets(), 6)
}

func TestScreeningSoundness(t *testing.T) {
	tau := 1e-8
	eng := stretchedEngine(t, tau)
	scr, err := integral.NewScreener(eng)
	require.NoError(t, err)

	n := eng.Registry().NShells()
	skippedAny := false
	for a := 0; a < n; a++ {
		for b := 0; b <= a; b++ {
			for c := 0; c <= a; c++ {
				for d := 0; d <= c; d++ {
					if !scr.Skipped(a, b, c, d) {
						continue
					}
					skippedAny = true
					block, err := eng.ERI(a, b, c, d)
					require.NoError(t, err)
					// Every discarded quartet must truly be below the cutoff.
					assert.LessOrEqual(t, block.MaxAbs(), tau)
				}
			}
		}
	}
	assert.True(t, skippedAny, "expected the stretched geometry to screen out cross pairs")
}

func TestPairBoundsSymmetric(t *testing.T) {
	eng := stretchedEngine(t, 0)
	scr, err := integral.NewScreener(eng)
	require.NoError(t, err)
	assert.Equal(t, scr.Bound(0, 1), scr.Bound(1, 0))
	assert.Greater(t, scr.Bound(0, 0), 0.0)
}

func TestForEachQuartetLazyStop(t *testing.T) {
	eng := stretchedEngine(t, 0)
	scr, err := integral.NewScreener(eng)
	require.NoError(t, err)

	calls := 0
	wantErr := assert.AnError
	err = scr.ForEachQuartet(func(integral.Quartet) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}
