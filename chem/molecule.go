// Package chem holds molecular geometry: atoms, unit conversion, nuclear
// repulsion, and the rigid transforms used to probe invariance of computed
// energies. Coordinates are stored in Bohr.
package chem

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/errors"
)

// BohrRadius is the Bohr radius in Angstrom.
const BohrRadius = 0.52917720859

// Unit labels accepted by ParseXYZ.
const (
	UnitBohr     = "bohr"
	UnitAngstrom = "angstrom"
)

// Atom is one nucleus: atomic number, a display label, and Cartesian
// coordinates in Bohr.
type Atom struct {
	Z     int
	Label string
	Coord [3]float64
}

// Molecule is a finite molecular system.
type Molecule struct {
	Atoms        []Atom
	Charge       int
	Multiplicity int
}

// NewMolecule builds a neutral singlet from atoms.
func NewMolecule(atoms ...Atom) *Molecule {
	return &Molecule{Atoms: atoms, Multiplicity: 1}
}

// NElectrons is the total electron count after applying the charge.
func (m *Molecule) NElectrons() int {
	n := -m.Charge
	for _, a := range m.Atoms {
		n += a.Z
	}
	return n
}

// NuclearRepulsion is the pairwise Coulomb energy of the nuclei in Hartree.
func (m *Molecule) NuclearRepulsion() float64 {
	res := 0.0
	for i := range m.Atoms {
		for j := 0; j < i; j++ {
			res += float64(m.Atoms[i].Z) * float64(m.Atoms[j].Z) / Distance(m.Atoms[i].Coord, m.Atoms[j].Coord)
		}
	}
	return res
}

// Distance is the Euclidean distance between two points.
func Distance(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Translated returns a copy with every atom shifted by d (Bohr).
func (m *Molecule) Translated(d [3]float64) *Molecule {
	out := &Molecule{Charge: m.Charge, Multiplicity: m.Multiplicity}
	out.Atoms = make([]Atom, len(m.Atoms))
	for i, a := range m.Atoms {
		a.Coord = [3]float64{a.Coord[0] + d[0], a.Coord[1] + d[1], a.Coord[2] + d[2]}
		out.Atoms[i] = a
	}
	return out
}

// Rotated returns a copy with every atom position multiplied by the 3x3
// rotation matrix r.
func (m *Molecule) Rotated(r *mat.Dense) *Molecule {
	out := &Molecule{Charge: m.Charge, Multiplicity: m.Multiplicity}
	out.Atoms = make([]Atom, len(m.Atoms))
	v := mat.NewVecDense(3, nil)
	for i, a := range m.Atoms {
		v.MulVec(r, mat.NewVecDense(3, []float64{a.Coord[0], a.Coord[1], a.Coord[2]}))
		a.Coord = [3]float64{v.AtVec(0), v.AtVec(1), v.AtVec(2)}
		out.Atoms[i] = a
	}
	return out
}

// RotationZ builds the rotation matrix about the z axis by angle theta.
func RotationZ(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// ParseXYZ reads a plain geometry block, one atom per line:
//
//	H  0.0 0.0 0.0
//	F  0.0 0.0 0.92
//
// Blank lines and lines starting with '#' are skipped. unit selects how the
// coordinates are interpreted; they are converted to Bohr on input.
func ParseXYZ(text, unit string) (*Molecule, error) {
	var scale float64
	switch strings.ToLower(unit) {
	case UnitBohr, "au", "a.u.":
		scale = 1.0
	case UnitAngstrom, "ang", "":
		scale = 1.0 / BohrRadius
	default:
		return nil, errors.Errorf(errors.InvalidInput, "unknown length unit %q", unit)
	}

	mol := &Molecule{Multiplicity: 1}
	count := map[string]int{}
	for ln, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 || strings.HasPrefix(words[0], "#") {
			continue
		}
		if len(words) < 4 {
			return nil, errors.Errorf(errors.InvalidInput,
				"line %d: incorrect coordinate format for atom %q", ln+1, words[0])
		}
		z, err := AtomicNumber(words[0])
		if err != nil {
			return nil, err
		}
		var xyz [3]float64
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(words[k+1], 64)
			if err != nil {
				return nil, errors.Wrap(err, errors.InvalidInput,
					fmt.Sprintf("line %d: bad coordinate %q", ln+1, words[k+1]))
			}
			xyz[k] = v * scale
		}
		count[words[0]]++
		mol.Atoms = append(mol.Atoms, Atom{
			Z:     z,
			Label: words[0] + strconv.Itoa(count[words[0]]),
			Coord: xyz,
		})
	}
	if len(mol.Atoms) == 0 {
		return nil, errors.New(errors.InvalidInput, "no atoms in geometry input")
	}
	return mol, nil
}
