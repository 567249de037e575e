package scf

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/dairdre/goscf/errors"
)

// DIIS extrapolates a better Fock matrix from the iteration history. It
// owns a bounded FIFO of (Fock, residual) pairs; the residual is the
// orthonormalized orbital gradient X(FDS - SDF)X.
type DIIS struct {
	space int
	s     *mat.SymDense
	x     *mat.Dense
	focks []*mat.SymDense
	resid []*mat.Dense
}

// NewDIIS creates an accelerator with the given history window. s is the
// overlap matrix and x its inverse square root. The history starts empty;
// each calculation gets its own accelerator.
func NewDIIS(space int, s *mat.SymDense, x *mat.Dense) *DIIS {
	return &DIIS{space: space, s: s, x: x}
}

// Len is the current history depth.
func (d *DIIS) Len() int { return len(d.focks) }

// Reset drops the history.
func (d *DIIS) Reset() {
	d.focks = d.focks[:0]
	d.resid = d.resid[:0]
}

// Push appends the (Fock, density) pair's residual to the history,
// evicting the oldest entry when the window is full.
func (d *DIIS) Push(f, dens *mat.SymDense) {
	n, _ := f.Dims()
	fd := mat.NewDense(n, n, nil)
	sd := mat.NewDense(n, n, nil)
	fd.Mul(f, dens)
	fd.Mul(fd, d.s)
	sd.Mul(d.s, dens)
	sd.Mul(sd, f)
	fd.Sub(fd, sd)
	fd.Mul(d.x, fd)
	fd.Mul(fd, d.x)

	fcopy := mat.NewSymDense(n, nil)
	fcopy.CopySym(f)
	d.focks = append(d.focks, fcopy)
	d.resid = append(d.resid, fd)
	if len(d.focks) > d.space {
		d.focks = d.focks[1:]
		d.resid = d.resid[1:]
	}
}

// ErrNorm is the root-mean-square of the newest residual.
func (d *DIIS) ErrNorm() float64 {
	if len(d.resid) == 0 {
		return math.Inf(1)
	}
	last := d.resid[len(d.resid)-1]
	sq := mat.DenseCopyOf(last)
	sq.MulElem(sq, sq)
	return math.Sqrt(stat.Mean(sq.RawMatrix().Data, nil))
}

// Extrapolate solves the constrained least-squares system over the history
// and returns the combined Fock matrix. A numerically singular system
// (collinear residuals) yields a SingularExtrapolation error; the caller
// must fall back to its unextrapolated Fock matrix.
func (d *DIIS) Extrapolate() (*mat.SymDense, error) {
	m := len(d.focks)
	if m < 2 {
		return nil, errors.New(errors.SingularExtrapolation, "history too short to extrapolate")
	}

	// B_ij = <r_i, r_j>, bordered by the -1 constraint row/column.
	bdim := m + 1
	b := mat.NewDense(bdim, bdim, nil)
	for i := 0; i < m; i++ {
		b.Set(i, m, -1)
		b.Set(m, i, -1)
		for j := 0; j <= i; j++ {
			prod := mat.DenseCopyOf(d.resid[i])
			prod.MulElem(prod, d.resid[j])
			dot := mat.Sum(prod)
			b.Set(i, j, dot)
			b.Set(j, i, dot)
		}
	}

	rhs := mat.NewVecDense(bdim, nil)
	rhs.SetVec(m, -1)

	var lu mat.LU
	lu.Factorize(b)
	var coefs mat.VecDense
	if err := lu.SolveVecTo(&coefs, false, rhs); err != nil {
		return nil, errors.Wrap(err, errors.SingularExtrapolation, "diis system singular")
	}
	for i := 0; i < m; i++ {
		if c := coefs.AtVec(i); math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.New(errors.SingularExtrapolation, "non-finite diis coefficients")
		}
	}

	n, _ := d.focks[0].Dims()
	out := mat.NewSymDense(n, nil)
	for k := 0; k < m; k++ {
		c := coefs.AtVec(k)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				out.SetSym(i, j, out.At(i, j)+c*d.focks[k].At(i, j))
			}
		}
	}
	return out, nil
}
