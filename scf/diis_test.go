package scf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/errors"
	"github.com/dairdre/goscf/scf"
)

func eye(n int) (*mat.SymDense, *mat.Dense) {
	s := mat.NewSymDense(n, nil)
	x := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, 1)
		x.Set(i, i, 1)
	}
	return s, x
}

func TestDIISWindowEviction(t *testing.T) {
	s, x := eye(2)
	d := scf.NewDIIS(2, s, x)

	dens := mat.NewSymDense(2, []float64{1, 0, 0, 0})
	for k := 0; k < 5; k++ {
		f := mat.NewSymDense(2, []float64{float64(k), 0.3, 0.3, -float64(k)})
		d.Push(f, dens)
	}
	assert.Equal(t, 2, d.Len())

	d.Reset()
	assert.Equal(t, 0, d.Len())
}

func TestDIISSingularOnIdenticalResiduals(t *testing.T) {
	s, x := eye(2)
	d := scf.NewDIIS(8, s, x)

	f := mat.NewSymDense(2, []float64{0, 1, 1, 0})
	dens := mat.NewSymDense(2, []float64{1, 0, 0, 0})
	d.Push(f, dens)
	d.Push(f, dens)

	_, err := d.Extrapolate()
	require.Error(t, err)
	assert.Equal(t, errors.SingularExtrapolation, errors.CodeOf(err))
}

func TestDIISTooShortHistory(t *testing.T) {
	s, x := eye(2)
	d := scf.NewDIIS(8, s, x)
	d.Push(mat.NewSymDense(2, []float64{0, 1, 1, 0}), mat.NewSymDense(2, []float64{1, 0, 0, 0}))

	_, err := d.Extrapolate()
	assert.Equal(t, errors.SingularExtrapolation, errors.CodeOf(err))
}

func TestDIISExtrapolationCombinesHistory(t *testing.T) {
	s, x := eye(2)
	d := scf.NewDIIS(8, s, x)
	dens := mat.NewSymDense(2, []float64{1, 0, 0, 0})

	// Two Fock matrices whose residuals point in opposite directions;
	// the minimizer should land between them.
	f1 := mat.NewSymDense(2, []float64{0.5, 0.4, 0.4, -0.5})
	f2 := mat.NewSymDense(2, []float64{0.5, -0.2, -0.2, -0.5})
	d.Push(f1, dens)
	d.Push(f2, dens)

	fx, err := d.Extrapolate()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, fx.At(0, 0), 1e-12)
	// Off-diagonal between the two inputs.
	assert.Greater(t, fx.At(0, 1), -0.2)
	assert.Less(t, fx.At(0, 1), 0.4)
}

func TestDIISErrNorm(t *testing.T) {
	s, x := eye(2)
	d := scf.NewDIIS(8, s, x)
	assert.True(t, d.ErrNorm() > 1e100, "empty history reports infinite residual")

	// Commuting F and D give a zero residual.
	f := mat.NewSymDense(2, []float64{1, 0, 0, 2})
	dens := mat.NewSymDense(2, []float64{3, 0, 0, 4})
	d.Push(f, dens)
	assert.InDelta(t, 0, d.ErrNorm(), 1e-14)
}
