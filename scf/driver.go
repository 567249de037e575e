// Package scf drives the self-consistent-field procedure: it builds the
// Fock matrix from screened two-electron integrals and the current density,
// accelerates convergence with DIIS, and iterates the generalized
// eigenproblem to self-consistency.
package scf

import (
	"context"
	"math"
	"runtime"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/basis"
	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/errors"
	"github.com/dairdre/goscf/integral"
	"github.com/dairdre/goscf/logging"
)

// Driver owns one restricted SCF calculation over a fixed geometry and
// basis. It mutates only its own iteration state; the registry and the
// integral engine stay read-only throughout.
type Driver struct {
	cfg  Config
	mol  *chem.Molecule
	eng  *integral.Engine
	fock *FockBuilder
	xc   Functional
	disp DispersionCorrector
	log  *logging.Logger

	guess *mat.SymDense

	runID string
	state State
	nocc  int
	enn   float64
	s, h  *mat.SymDense
	x     *mat.Dense
}

// Option adjusts driver construction.
type Option func(*Driver)

// WithLogger attaches a logger; default discards.
func WithLogger(l *logging.Logger) Option { return func(d *Driver) { d.log = l } }

// WithFunctional plugs in an exchange-correlation functional (Kohn-Sham);
// nil keeps pure Hartree-Fock.
func WithFunctional(f Functional) Option { return func(d *Driver) { d.xc = f } }

// WithDispersion attaches a post-SCF dispersion correction.
func WithDispersion(c DispersionCorrector) Option { return func(d *Driver) { d.disp = c } }

// WithGuessDensity supplies the starting density for initial_guess=user.
func WithGuessDensity(dm *mat.SymDense) Option { return func(d *Driver) { d.guess = dm } }

// NewDriver validates the inputs and builds everything that is fixed for
// the calculation's lifetime: the shell registry, the integral engine, the
// one-electron matrices, S^{-1/2}, and the screened quartet partition.
func NewDriver(mol *chem.Molecule, setName string, cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nelec := mol.NElectrons()
	if nelec <= 0 || nelec%2 != 0 || mol.Multiplicity != 1 {
		return nil, errors.Errorf(errors.InvalidInput,
			"restricted scf needs an even electron count and singlet multiplicity, got %d electrons, multiplicity %d",
			nelec, mol.Multiplicity)
	}

	reg, err := basis.Build(mol, setName)
	if err != nil {
		return nil, err
	}
	return newDriver(mol, reg, cfg, opts...)
}

// NewDriverWithRegistry is NewDriver for callers holding explicit shells.
func NewDriverWithRegistry(mol *chem.Molecule, reg *basis.Registry, cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newDriver(mol, reg, cfg, opts...)
}

func newDriver(mol *chem.Molecule, reg *basis.Registry, cfg Config, opts ...Option) (*Driver, error) {
	d := &Driver{
		cfg:   cfg,
		mol:   mol,
		log:   logging.Discard(),
		runID: uuid.NewString(),
		state: Initialized,
		nocc:  mol.NElectrons() / 2,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithFields(map[string]interface{}{"run_id": d.runID})

	d.eng = integral.NewEngine(reg, integral.Params{
		ScreenThreshold: cfg.ScreenThreshold,
		MaxWorkers:      cfg.MaxWorkers,
	})

	var err error
	if d.s, err = d.eng.OverlapMatrix(); err != nil {
		return nil, err
	}
	if d.h, err = d.eng.CoreHamiltonian(mol.Atoms); err != nil {
		return nil, err
	}
	if d.x, err = invSqrt(d.s); err != nil {
		return nil, err
	}
	d.enn = mol.NuclearRepulsion()

	scr, err := integral.NewScreener(d.eng)
	if err != nil {
		return nil, err
	}
	xf := 1.0
	if d.xc != nil {
		xf = d.xc.ExchangeFactor()
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	d.fock = NewFockBuilder(d.eng, scr, workers, xf)

	d.log.Info("scf driver initialized: %d shells, %d basis functions, %d occupied orbitals",
		reg.NShells(), reg.NBasis(), d.nocc)
	return d, nil
}

// State reports the driver's current lifecycle state.
func (d *Driver) State() State { return d.state }

// RunID is the calculation's unique identifier.
func (d *Driver) RunID() string { return d.runID }

// Overlap exposes the overlap matrix for analysis helpers.
func (d *Driver) Overlap() *mat.SymDense { return d.s }

// Registry exposes the shell registry backing the calculation.
func (d *Driver) Registry() *basis.Registry { return d.eng.Registry() }

// Run iterates to self-consistency. Cancellation is honored between
// iterations only, never inside an in-flight Fock build, so a canceled
// run never leaves a half-accumulated matrix behind. Convergence-related
// terminations come back as Result states; only numerically fatal
// conditions surface as errors.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	dens, err := d.initialDensity()
	if err != nil {
		return nil, err
	}

	// Keep at least one residual so dRMS tracking works with DIIS disabled.
	space := d.cfg.DIISSpace
	if space < 1 {
		space = 1
	}
	diis := NewDIIS(space, d.s, d.x)
	div := divergeDetector{threshold: d.cfg.DivergeThreshold}
	stabilized := d.cfg.LevelShift > 0 || d.cfg.Damping > 0

	var (
		energy   float64
		prevE    float64
		prevFock *mat.SymDense
		orbs     Orbitals
		exc      float64
	)

	d.state = Iterating
	for cycle := 1; cycle <= d.cfg.MaxCycle; cycle++ {
		select {
		case <-ctx.Done():
			d.log.Warn("scf canceled at cycle %d", cycle)
			return nil, errors.Wrap(ctx.Err(), errors.Canceled, "scf canceled")
		default:
		}

		f, xcE, err := d.fock.BuildFock(d.h, dens, d.xc)
		if err != nil {
			return nil, err
		}
		exc = xcE

		prevE = energy
		energy = electronicEnergy(dens, d.h, f) + d.enn + exc

		if d.cfg.Damping > 0 && cycle < d.cfg.DIISStartCycle && prevFock != nil {
			f = dampFock(f, prevFock, d.cfg.Damping)
		}
		prevFock = f

		diis.Push(f, dens)
		drms := diis.ErrNorm()

		feff := f
		if d.cfg.DIISSpace > 0 && cycle >= d.cfg.DIISStartCycle && diis.Len() > 1 {
			fx, err := diis.Extrapolate()
			switch {
			case err == nil:
				feff = fx
			case errors.HasCode(err, errors.SingularExtrapolation):
				d.log.Warn("cycle %d: %v; using unextrapolated fock matrix", cycle, err)
			default:
				return nil, err
			}
		}
		if d.cfg.LevelShift > 0 {
			feff = levelShift(feff, d.s, dens, d.cfg.LevelShift)
		}

		eps, c, err := eigensolve(feff, d.x)
		if err != nil {
			return nil, err
		}
		orbs = Orbitals{Energies: eps, Coeffs: c}
		dens = DensityMatrix(c, d.nocc)

		dE := energy - prevE
		d.log.Info("cycle %2d  E = %.12f  dE = %+.3e  dRMS = %.3e", cycle, energy, dE, drms)

		if cycle > 1 && math.Abs(dE) < d.cfg.ConvTol && drms < d.cfg.DensTol {
			d.state = Converged
			d.log.Info("scf converged after %d cycles", cycle)
			return d.finalize(energy, exc, cycle, dens, orbs)
		}
		if cycle > 1 && !stabilized && div.observe(dE) {
			d.state = Diverged
			d.log.Warn("scf diverged after %d cycles: energy rising without a configured remedy", cycle)
			return d.finalize(energy, exc, cycle, dens, orbs)
		}
	}

	d.state = MaxIterExceeded
	d.log.Warn("scf not converged within %d cycles", d.cfg.MaxCycle)
	return d.finalize(energy, exc, d.cfg.MaxCycle, dens, orbs)
}

// finalize assembles the structured result for any terminal state and
// applies the dispersion correction on converged runs.
func (d *Driver) finalize(energy, exc float64, cycles int, dens *mat.SymDense, orbs Orbitals) (*Result, error) {
	res := &Result{
		RunID:            d.runID,
		State:            d.state,
		Converged:        d.state == Converged,
		Iterations:       cycles,
		Energy:           energy,
		Electronic:       energy - d.enn,
		NuclearRepulsion: d.enn,
		XCEnergy:         exc,
		Density:          dens,
		Orbitals:         orbs,
	}
	if d.disp != nil && res.Converged {
		corr, err := d.disp.Correct(d.mol)
		if err != nil {
			return nil, err
		}
		res.DispersionEnergy = corr
		res.Energy += corr
	}
	return res, nil
}

func defaultWorkers() int { return runtime.GOMAXPROCS(-1) }

// divergeDetector flags two consecutive energy rises beyond the threshold.
type divergeDetector struct {
	threshold float64
	rising    int
}

func (dd *divergeDetector) observe(dE float64) bool {
	if dE > dd.threshold {
		dd.rising++
	} else {
		dd.rising = 0
	}
	return dd.rising >= 2
}
