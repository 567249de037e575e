// Package basis holds contracted Gaussian basis-function definitions: the
// Shell type, normalization, and the Registry that maps a molecular
// geometry plus a basis-set name onto an ordered shell list.
package basis

import (
	"math"

	"github.com/dairdre/goscf/errors"
)

// MaxL is the highest supported angular momentum (g functions).
const MaxL = 4

// Shell is one contracted Cartesian Gaussian on one center. Immutable once
// built; Norms folds the primitive normalization for the (ℓ,0,0) component
// together with the contracted normalization, so that every diagonal
// overlap integral equals 1.
type Shell struct {
	Center    [3]float64
	L         int
	Exps      []float64
	Coeffs    []float64
	Norms     []float64
	AtomIndex int
}

// NewShell validates and normalizes a contracted shell.
func NewShell(center [3]float64, l int, exps, coeffs []float64) (*Shell, error) {
	if l < 0 || l > MaxL {
		return nil, errors.Errorf(errors.InvalidBasisSpec, "angular momentum %d out of range [0,%d]", l, MaxL)
	}
	if len(exps) == 0 {
		return nil, errors.New(errors.InvalidBasisSpec, "empty contraction")
	}
	if len(exps) != len(coeffs) {
		return nil, errors.Errorf(errors.InvalidBasisSpec,
			"%d exponents vs %d coefficients", len(exps), len(coeffs))
	}
	for _, a := range exps {
		if a <= 0 {
			return nil, errors.Errorf(errors.InvalidBasisSpec, "non-positive exponent %g", a)
		}
	}

	sh := &Shell{
		Center: center,
		L:      l,
		Exps:   append([]float64(nil), exps...),
		Coeffs: append([]float64(nil), coeffs...),
	}
	sh.normalize()
	return sh, nil
}

// NCart is the number of Cartesian components of the shell.
func (s *Shell) NCart() int { return NCart(s.L) }

// NCart is (ℓ+1)(ℓ+2)/2.
func NCart(l int) int { return (l + 1) * (l + 2) / 2 }

// NSpherical is 2ℓ+1, kept for degeneracy accounting.
func NSpherical(l int) int { return 2*l + 1 }

// Cart is one Cartesian angular-momentum triple.
type Cart struct {
	X, Y, Z int
}

var cartTables [MaxL + 1][]Cart

func init() {
	for l := 0; l <= MaxL; l++ {
		for x := l; x >= 0; x-- {
			for y := l - x; y >= 0; y-- {
				cartTables[l] = append(cartTables[l], Cart{x, y, l - x - y})
			}
		}
	}
}

// CartList returns the component triples of angular momentum l in
// lexicographic order (x-major). The slice is shared; callers must not
// mutate it.
func CartList(l int) []Cart { return cartTables[l] }

// CompFactor is the per-component normalization ratio
// N(lx,ly,lz)/N(ℓ,0,0). It is exponent-independent, so it is resolved once
// per shell component rather than per primitive.
func CompFactor(c Cart) float64 {
	l := c.X + c.Y + c.Z
	return math.Sqrt(oddFactorial(2*l-1) /
		(oddFactorial(2*c.X-1) * oddFactorial(2*c.Y-1) * oddFactorial(2*c.Z-1)))
}

// PrimitiveNorm is the normalization constant of a single Cartesian
// primitive Gaussian x^lx y^ly z^lz exp(-α r²).
func PrimitiveNorm(alpha float64, c Cart) float64 {
	l := c.X + c.Y + c.Z
	return math.Pow(2*alpha/math.Pi, 0.75) * math.Pow(4*alpha, float64(l)/2) /
		math.Sqrt(oddFactorial(2*c.X-1)*oddFactorial(2*c.Y-1)*oddFactorial(2*c.Z-1))
}

// normalize fills Norms with the primitive (ℓ,0,0) norms scaled by the
// contracted self-overlap, so ⟨s|s⟩ = 1 on every component after the
// engine applies CompFactor.
func (s *Shell) normalize() {
	l := s.L
	ref := Cart{l, 0, 0}
	prim := make([]float64, len(s.Exps))
	for i, a := range s.Exps {
		prim[i] = PrimitiveNorm(a, ref)
	}

	// Raw contracted self-overlap of the reference component on a shared
	// center: (π/p)^{3/2} (2ℓ-1)!!/(2p)^ℓ per primitive pair.
	self := 0.0
	for i := range s.Exps {
		for j := range s.Exps {
			p := s.Exps[i] + s.Exps[j]
			ov := math.Pow(math.Pi/p, 1.5) * oddFactorial(2*l-1) / math.Pow(2*p, float64(l))
			self += s.Coeffs[i] * s.Coeffs[j] * prim[i] * prim[j] * ov
		}
	}

	scale := 1.0 / math.Sqrt(self)
	s.Norms = make([]float64, len(prim))
	for i := range prim {
		s.Norms[i] = prim[i] * scale
	}
}

// oddFactorial is (n)!! for odd n ≥ -1, with (-1)!! = 1, as a float to
// avoid int conversions in the hot paths.
func oddFactorial(n int) float64 {
	res := 1.0
	for k := n; k > 1; k -= 2 {
		res *= float64(k)
	}
	return res
}
