package scf

import (
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/errors"
)

// initialDensity produces the starting density for the configured guess.
func (d *Driver) initialDensity() (*mat.SymDense, error) {
	switch d.cfg.InitialGuess {
	case GuessCore:
		_, c, err := eigensolve(d.h, d.x)
		if err != nil {
			return nil, err
		}
		return DensityMatrix(c, d.nocc), nil

	case GuessAtomic:
		return d.atomicDensity(), nil

	case GuessUser:
		if d.guess == nil {
			return nil, errors.New(errors.InvalidInput, "initial_guess=user but no density supplied")
		}
		n := d.eng.NBasis()
		gn, _ := d.guess.Dims()
		if gn != n {
			return nil, errors.Errorf(errors.InvalidInput,
				"guess density dimension %d, basis dimension %d", gn, n)
		}
		cp := mat.NewSymDense(n, nil)
		cp.CopySym(d.guess)
		return cp, nil

	default:
		return nil, errors.Errorf(errors.InvalidInput, "unknown initial guess %q", d.cfg.InitialGuess)
	}
}

// atomicDensity spreads each atom's electrons evenly over that atom's
// basis functions. Crude next to a true superposition of atomic densities,
// but charge-correct per center, which is all a starting point needs.
func (d *Driver) atomicDensity() *mat.SymDense {
	reg := d.eng.Registry()
	n := reg.NBasis()

	perAtomFns := map[int]int{}
	for _, sh := range reg.Shells {
		perAtomFns[sh.AtomIndex] += sh.NCart()
	}

	dm := mat.NewSymDense(n, nil)
	for i, sh := range reg.Shells {
		off := reg.Offset(i)
		atom := d.mol.Atoms[sh.AtomIndex]
		// Occupation-1 convention: half the electron count per center.
		occ := 0.5 * float64(atom.Z) / float64(perAtomFns[sh.AtomIndex])
		for c := 0; c < sh.NCart(); c++ {
			dm.SetSym(off+c, off+c, occ)
		}
	}
	return dm
}
