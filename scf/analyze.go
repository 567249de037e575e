package scf

import (
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/basis"
	"github.com/dairdre/goscf/chem"
)

// Mulliken computes Mulliken atomic charges from a converged density.
// The gross population of basis function μ is (P·S)_μμ with P the full
// (doubly occupied) density; the charge on atom A is Z_A minus the summed
// populations of A's functions.
func Mulliken(mol *chem.Molecule, reg *basis.Registry, dens, s *mat.SymDense) []float64 {
	n := reg.NBasis()
	ps := mat.NewDense(n, n, nil)
	ps.Mul(dens, s)

	pop := make([]float64, len(mol.Atoms))
	for i, sh := range reg.Shells {
		off := reg.Offset(i)
		for c := 0; c < sh.NCart(); c++ {
			pop[sh.AtomIndex] += 2 * ps.At(off+c, off+c)
		}
	}

	charges := make([]float64, len(mol.Atoms))
	for a, atom := range mol.Atoms {
		charges[a] = float64(atom.Z) - pop[a]
	}
	return charges
}
