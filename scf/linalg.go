package scf

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/errors"
)

// invSqrt builds S^{-1/2} by symmetric eigendecomposition. Eigenvalues
// below linDepTol flag near-linear dependency of the basis.
const linDepTol = 1e-10

func invSqrt(s *mat.SymDense) (*mat.Dense, error) {
	n, _ := s.Dims()
	var eig mat.EigenSym
	if ok := eig.Factorize(s, true); !ok {
		return nil, errors.New(errors.InvalidInput, "overlap eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	inv := make([]float64, n)
	for i, v := range vals {
		if v < linDepTol {
			return nil, errors.Errorf(errors.InvalidInput,
				"overlap eigenvalue %g: basis nearly linearly dependent", v)
		}
		inv[i] = 1 / math.Sqrt(v)
	}

	out := mat.NewDense(n, n, nil)
	out.Mul(&vecs, mat.NewDiagDense(n, inv))
	out.Mul(out, vecs.T())
	return out, nil
}

// eigensolve diagonalizes the generalized problem F C = S C ε using the
// transformation F' = Xᵀ F X, C = X C'. Returns orbital energies ascending
// and coefficients by column.
func eigensolve(f *mat.SymDense, x *mat.Dense) ([]float64, *mat.Dense, error) {
	n, _ := f.Dims()
	fp := mat.NewDense(n, n, nil)
	fp.Mul(x, f)
	fp.Mul(fp, x)
	// X is symmetric, so XᵀFX and XFX agree; symmetrize against rounding.
	fsym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			fsym.SetSym(i, j, 0.5*(fp.At(i, j)+fp.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(fsym, true); !ok {
		return nil, nil, errors.New(errors.InvalidInput, "fock eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	c := mat.NewDense(n, n, nil)
	c.Mul(x, &vecs)
	return eig.Values(nil), c, nil
}

// DensityMatrix forms D = C_occ C_occᵀ from the lowest nocc orbital
// columns. The restricted double occupation is folded into the energy and
// Fock expressions, matching the occupation-1 convention used throughout.
func DensityMatrix(c *mat.Dense, nocc int) *mat.SymDense {
	n, _ := c.Dims()
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for o := 0; o < nocc; o++ {
				sum += c.At(i, o) * c.At(j, o)
			}
			d.SetSym(i, j, sum)
		}
	}
	return d
}

// electronicEnergy is E = Σ_{μν} D_{μν}(H_{μν} + F_{μν}).
func electronicEnergy(d, h, f *mat.SymDense) float64 {
	n, _ := d.Dims()
	e := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e += d.At(i, j) * (h.At(i, j) + f.At(i, j))
		}
	}
	return e
}

// levelShift raises the virtual orbital space: F + λ(S - S·D·S). The
// occupied block is untouched because Cᵀ(S·D·S)C equals the identity there.
func levelShift(f, s, d *mat.SymDense, shift float64) *mat.SymDense {
	n, _ := f.Dims()
	sds := mat.NewDense(n, n, nil)
	sds.Mul(s, d)
	sds.Mul(sds, s)

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, f.At(i, j)+shift*(s.At(i, j)-0.5*(sds.At(i, j)+sds.At(j, i))))
		}
	}
	return out
}

// dampFock mixes the previous Fock matrix in: (1-α)F + αF_prev.
func dampFock(f, prev *mat.SymDense, alpha float64) *mat.SymDense {
	n, _ := f.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, (1-alpha)*f.At(i, j)+alpha*prev.At(i, j))
		}
	}
	return out
}
