package scf_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/errors"
	"github.com/dairdre/goscf/scf"
)

// h2ReferenceEnergy is the restricted Hartree-Fock energy of H2 in STO-3G
// at a bond length of 1.4 Bohr.
const h2ReferenceEnergy = -1.1167143

func h2(dist float64) *chem.Molecule {
	return chem.NewMolecule(
		chem.Atom{Z: 1, Label: "H1", Coord: [3]float64{0, 0, 0}},
		chem.Atom{Z: 1, Label: "H2", Coord: [3]float64{dist, 0, 0}},
	)
}

func TestH2ConvergesToReference(t *testing.T) {
	cfg := scf.DefaultConfig()
	cfg.ConvTol = 1e-9
	cfg.DIISSpace = 8

	drv, err := scf.NewDriver(h2(1.4), "STO-3G", cfg)
	require.NoError(t, err)

	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.Equal(t, scf.Converged, res.State)
	assert.Equal(t, scf.Converged, drv.State())
	assert.Less(t, res.Iterations, cfg.MaxCycle)
	assert.InDelta(t, h2ReferenceEnergy, res.Energy, 1e-6)
	assert.InDelta(t, 1.0/1.4, res.NuclearRepulsion, 1e-12)
	assert.NotEmpty(t, res.RunID)

	// Two orbitals: one bonding (occupied, negative), one antibonding.
	require.Len(t, res.Orbitals.Energies, 2)
	assert.Less(t, res.Orbitals.Energies[0], 0.0)
	assert.Greater(t, res.Orbitals.Energies[1], res.Orbitals.Energies[0])
}

func TestConvergedDensityIdempotent(t *testing.T) {
	drv, err := scf.NewDriver(h2(1.4), "STO-3G", scf.DefaultConfig())
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)

	d := res.Density
	s := drv.Overlap()
	n, _ := d.Dims()
	dsd := mat.NewDense(n, n, nil)
	dsd.Mul(d, s)
	dsd.Mul(dsd, d)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.InDelta(t, d.At(i, j), dsd.At(i, j), 1e-6)
		}
	}
}

func TestEnergyTranslationRotationInvariant(t *testing.T) {
	cfg := scf.DefaultConfig()
	run := func(mol *chem.Molecule) float64 {
		drv, err := scf.NewDriver(mol, "STO-3G", cfg)
		require.NoError(t, err)
		res, err := drv.Run(context.Background())
		require.NoError(t, err)
		require.True(t, res.Converged)
		return res.Energy
	}

	base := run(h2(1.4))
	assert.InDelta(t, base, run(h2(1.4).Translated([3]float64{3.2, -1.1, 0.7})), 1e-8)
	assert.InDelta(t, base, run(h2(1.4).Rotated(chem.RotationZ(0.83))), 1e-8)
}

func TestScreeningThresholdDoesNotChangeEnergy(t *testing.T) {
	run := func(threshold float64) float64 {
		cfg := scf.DefaultConfig()
		cfg.ScreenThreshold = threshold
		drv, err := scf.NewDriver(h2(1.4), "STO-3G", cfg)
		require.NoError(t, err)
		res, err := drv.Run(context.Background())
		require.NoError(t, err)
		return res.Energy
	}
	assert.InDelta(t, run(0), run(1e-10), 1e-9)
}

// hehCation is heteronuclear, so the core-Hamiltonian guess starts well
// away from the fixed point and the density keeps moving for several
// cycles. Symmetric H2 would converge trivially at cycle 2.
func hehCation(dist float64) *chem.Molecule {
	mol := chem.NewMolecule(
		chem.Atom{Z: 2, Label: "He", Coord: [3]float64{0, 0, 0}},
		chem.Atom{Z: 1, Label: "H", Coord: [3]float64{dist, 0, 0}},
	)
	mol.Charge = 1
	return mol
}

func TestMaxIterExceededReturnsPartialResult(t *testing.T) {
	cfg := scf.DefaultConfig()
	cfg.MaxCycle = 2
	cfg.ConvTol = 1e-15
	cfg.DensTol = 1e-15
	cfg.DIISSpace = 0 // no acceleration, so the tight tolerances stay out of reach

	drv, err := scf.NewDriver(hehCation(1.46), "STO-3G", cfg)
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err, "iteration-cap exhaustion is a result, not an error")
	assert.False(t, res.Converged)
	assert.Contains(t, []scf.State{scf.MaxIterExceeded, scf.Diverged}, res.State)
	assert.LessOrEqual(t, res.Iterations, cfg.MaxCycle)
	assert.NotNil(t, res.Density)
	assert.False(t, math.IsNaN(res.Energy))
}

func TestCancellationBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drv, err := scf.NewDriver(h2(1.4), "STO-3G", scf.DefaultConfig())
	require.NoError(t, err)
	_, err = drv.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.Canceled, errors.CodeOf(err))
}

func TestLevelShiftReachesSameMinimum(t *testing.T) {
	cfg := scf.DefaultConfig()
	cfg.LevelShift = 0.25
	cfg.MaxCycle = 100

	drv, err := scf.NewDriver(h2(1.4), "STO-3G", cfg)
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.InDelta(t, h2ReferenceEnergy, res.Energy, 1e-6)
}

func TestAtomicGuessConverges(t *testing.T) {
	cfg := scf.DefaultConfig()
	cfg.InitialGuess = scf.GuessAtomic

	drv, err := scf.NewDriver(h2(1.4), "STO-3G", cfg)
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.InDelta(t, h2ReferenceEnergy, res.Energy, 1e-6)
}

func TestUserGuess(t *testing.T) {
	cfg := scf.DefaultConfig()
	cfg.InitialGuess = scf.GuessUser

	// Missing density must be rejected up front.
	drv, err := scf.NewDriver(h2(1.4), "STO-3G", cfg)
	require.NoError(t, err)
	_, err = drv.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))

	guess := mat.NewSymDense(2, []float64{0.5, 0.3, 0.3, 0.5})
	drv, err = scf.NewDriver(h2(1.4), "STO-3G", cfg, scf.WithGuessDensity(guess))
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.InDelta(t, h2ReferenceEnergy, res.Energy, 1e-6)
}

func TestRestrictedInputValidation(t *testing.T) {
	// Odd electron count.
	mol := chem.NewMolecule(chem.Atom{Z: 1})
	_, err := scf.NewDriver(mol, "STO-3G", scf.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))

	// Unknown basis.
	_, err = scf.NewDriver(h2(1.4), "nope", scf.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, errors.InvalidBasisSpec, errors.CodeOf(err))

	// Broken config.
	bad := scf.DefaultConfig()
	bad.MaxCycle = 0
	_, err = scf.NewDriver(h2(1.4), "STO-3G", bad)
	require.Error(t, err)
}

func TestMullikenChargesH2(t *testing.T) {
	drv, err := scf.NewDriver(h2(1.4), "STO-3G", scf.DefaultConfig())
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)

	mol := h2(1.4)
	reg := drv.Registry()
	charges := scf.Mulliken(mol, reg, res.Density, drv.Overlap())
	require.Len(t, charges, 2)
	// Homonuclear: charges vanish and sum to the molecular charge.
	assert.InDelta(t, 0.0, charges[0], 1e-8)
	assert.InDelta(t, 0.0, charges[0]+charges[1], 1e-8)
}

func TestGradientAntisymmetricAlongBond(t *testing.T) {
	cfg := scf.DefaultConfig()
	grad, err := scf.Gradient(context.Background(), h2(1.4), "STO-3G", cfg, 1e-3)
	require.NoError(t, err)
	require.Len(t, grad, 2)

	// Stretched past the STO-3G equilibrium (~1.35 Bohr), so the energy
	// falls when the bond contracts.
	assert.Greater(t, grad[1][0], 0.0)
	assert.InDelta(t, -grad[0][0], grad[1][0], 1e-6)
	assert.InDelta(t, 0.0, grad[0][1], 1e-6)
	assert.InDelta(t, 0.0, grad[0][2], 1e-6)
}

type fixedDispersion struct{ value float64 }

func (f fixedDispersion) Correct(*chem.Molecule) (float64, error) { return f.value, nil }

func TestDispersionAppliedPostConvergence(t *testing.T) {
	drv, err := scf.NewDriver(h2(1.4), "STO-3G", scf.DefaultConfig(),
		scf.WithDispersion(fixedDispersion{value: -0.001}))
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.Equal(t, -0.001, res.DispersionEnergy)
	assert.InDelta(t, h2ReferenceEnergy-0.001, res.Energy, 1e-6)
}

type scaledExchange struct{ factor float64 }

func (s scaledExchange) Evaluate(*mat.SymDense) (float64, *mat.SymDense, error) {
	return 0, nil, nil
}
func (s scaledExchange) ExchangeFactor() float64 { return s.factor }

func TestFunctionalExchangeFactorFlowsThrough(t *testing.T) {
	// A functional with full exact exchange and no XC term is plain HF.
	drv, err := scf.NewDriver(h2(1.4), "STO-3G", scf.DefaultConfig(),
		scf.WithFunctional(scaledExchange{factor: 1.0}))
	require.NoError(t, err)
	res, err := drv.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.InDelta(t, h2ReferenceEnergy, res.Energy, 1e-6)
}
