package basis

import (
	"embed"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/errors"
)

//go:embed data/*.yaml
var setData embed.FS

// setFile is the on-disk layout of an embedded basis set.
type setFile struct {
	Name     string                `yaml:"name"`
	Elements map[string][]setShell `yaml:"elements"`
}

type setShell struct {
	L      int       `yaml:"l"`
	Exps   []float64 `yaml:"exps"`
	Coeffs []float64 `yaml:"coeffs"`
}

// Registry is the ordered shell list of one calculation plus the
// basis-function bookkeeping derived from it. Immutable after Build.
type Registry struct {
	Shells  []*Shell
	offsets []int
	nbasis  int
}

// Build constructs the registry for a molecule and a named basis set.
// Returns an InvalidBasisSpec error when the set is unknown or an atom has
// no entry in it.
func Build(mol *chem.Molecule, setName string) (*Registry, error) {
	raw, err := setData.ReadFile("data/" + strings.ToLower(setName) + ".yaml")
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidBasisSpec, "unknown basis set "+setName)
	}
	var set setFile
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, errors.Wrap(err, errors.InvalidBasisSpec, "malformed basis data "+setName)
	}

	var shells []*Shell
	for ai, atom := range mol.Atoms {
		entries, ok := set.Elements[chem.Symbol(atom.Z)]
		if !ok {
			return nil, errors.WithFields(
				errors.Errorf(errors.InvalidBasisSpec, "no %s entry for element %s", set.Name, chem.Symbol(atom.Z)),
				errors.Fields{"atom": atom.Label})
		}
		for _, e := range entries {
			sh, err := NewShell(atom.Coord, e.L, e.Exps, e.Coeffs)
			if err != nil {
				return nil, errors.Wrap(err, errors.InvalidBasisSpec, "bad shell for "+atom.Label)
			}
			sh.AtomIndex = ai
			shells = append(shells, sh)
		}
	}
	return FromShells(shells), nil
}

// FromShells builds a registry from explicit shell data, for callers that
// supply their own basis instead of a named set.
func FromShells(shells []*Shell) *Registry {
	reg := &Registry{Shells: shells, offsets: make([]int, len(shells))}
	for i, sh := range shells {
		reg.offsets[i] = reg.nbasis
		reg.nbasis += sh.NCart()
	}
	return reg
}

// NBasis is the total basis-function count over all shells.
func (r *Registry) NBasis() int { return r.nbasis }

// NShells is the shell count.
func (r *Registry) NShells() int { return len(r.Shells) }

// Offset is the index of the first basis function of shell i.
func (r *Registry) Offset(i int) int { return r.offsets[i] }
