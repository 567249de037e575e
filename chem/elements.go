package chem

import (
	"golang.org/x/exp/slices"

	"github.com/dairdre/goscf/errors"
)

// Mendeleev holds the element table as parallel slices indexed by atomic
// number. Index 0 is the dummy placeholder so Z doubles as the slice index.
type Mendeleev struct {
	Symb []string
	Name []string
	Mass []float64
}

var ElemData = Mendeleev{
	Symb: []string{"X",
		"H", "He",
		"Li", "Be", "B", "C", "N", "O", "F", "Ne",
		"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	},
	Name: []string{"Dummy",
		"Hydrogen", "Helium",
		"Lithium", "Beryllium", "Boron", "Carbon", "Nitrogen", "Oxygen", "Fluorine", "Neon",
		"Sodium", "Magnesium", "Aluminium", "Silicon", "Phosphorus", "Sulfur", "Chlorine", "Argon",
	},
	Mass: []float64{0,
		1.008, 4.0026,
		6.94, 9.0122, 10.81, 12.011, 14.007, 15.999, 18.998, 20.180,
		22.990, 24.305, 26.982, 28.085, 30.974, 32.06, 35.45, 39.948,
	},
}

// AtomicNumber resolves an element symbol to its atomic number.
func AtomicNumber(symbol string) (int, error) {
	z := slices.Index(ElemData.Symb, symbol)
	if z <= 0 {
		return 0, errors.Errorf(errors.InvalidInput, "unknown element symbol %q", symbol)
	}
	return z, nil
}

// Symbol returns the element symbol for an atomic number.
func Symbol(z int) string {
	if z <= 0 || z >= len(ElemData.Symb) {
		return "X"
	}
	return ElemData.Symb[z]
}
