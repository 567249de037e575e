package scf

import (
	"context"

	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/errors"
)

// DefaultGradientStep is the central-difference displacement in Bohr.
const DefaultGradientStep = 1e-4

// Energy runs a full calculation and returns the converged total energy.
// This is the black-box (geometry) -> energy function geometry optimizers
// consume.
func Energy(ctx context.Context, mol *chem.Molecule, setName string, cfg Config, opts ...Option) (float64, error) {
	drv, err := NewDriver(mol, setName, cfg, opts...)
	if err != nil {
		return 0, err
	}
	res, err := drv.Run(ctx)
	if err != nil {
		return 0, err
	}
	if !res.Converged {
		return res.Energy, errors.Errorf(errors.InvalidInput,
			"scf terminated %s after %d cycles", res.State, res.Iterations)
	}
	return res.Energy, nil
}

// Gradient computes the energy gradient with respect to nuclear Cartesian
// coordinates by central differences of the converged SCF energy, one
// full calculation per displacement. step <= 0 selects
// DefaultGradientStep. The result is indexed [atom][xyz], in Hartree/Bohr.
func Gradient(ctx context.Context, mol *chem.Molecule, setName string, cfg Config, step float64, opts ...Option) ([][3]float64, error) {
	if step <= 0 {
		step = DefaultGradientStep
	}

	grad := make([][3]float64, len(mol.Atoms))
	for a := range mol.Atoms {
		for k := 0; k < 3; k++ {
			var disp [3]float64
			disp[k] = step

			plus := displaced(mol, a, disp)
			ePlus, err := Energy(ctx, plus, setName, cfg, opts...)
			if err != nil {
				return nil, err
			}

			disp[k] = -step
			minus := displaced(mol, a, disp)
			eMinus, err := Energy(ctx, minus, setName, cfg, opts...)
			if err != nil {
				return nil, err
			}

			grad[a][k] = (ePlus - eMinus) / (2 * step)
		}
	}
	return grad, nil
}

// displaced copies the molecule with one atom shifted by d.
func displaced(mol *chem.Molecule, atom int, d [3]float64) *chem.Molecule {
	out := &chem.Molecule{Charge: mol.Charge, Multiplicity: mol.Multiplicity}
	out.Atoms = append([]chem.Atom(nil), mol.Atoms...)
	for k := 0; k < 3; k++ {
		out.Atoms[atom].Coord[k] += d[k]
	}
	return out
}
