package scf

import (
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/integral"
)

// Functional is the exchange-correlation plug-in point. Implementations
// live outside this module; a nil Functional means pure Hartree-Fock.
type Functional interface {
	// Evaluate returns the XC energy contribution and potential matrix
	// for the given density.
	Evaluate(density *mat.SymDense) (float64, *mat.SymDense, error)
	// ExchangeFactor scales the exact-exchange contribution; 1 for
	// Hartree-Fock, the hybrid mixing fraction for hybrids, 0 for pure
	// functionals.
	ExchangeFactor() float64
}

// DispersionCorrector supplies a post-SCF dispersion energy correction.
type DispersionCorrector interface {
	Correct(mol *chem.Molecule) (float64, error)
}

// FockBuilder contracts screened two-electron integrals with a density
// matrix. It is a pure function of its inputs: the quartet partition is
// fixed at construction and each build accumulates into fresh per-worker
// buffers reduced in a fixed order, so identical inputs give bitwise
// identical Fock matrices.
type FockBuilder struct {
	eng     *integral.Engine
	batches [][]integral.Quartet
	xf      float64
}

// NewFockBuilder partitions the screener's retained quartets across
// workers. xf is the exact-exchange scaling factor.
func NewFockBuilder(eng *integral.Engine, scr *integral.Screener, workers int, xf float64) *FockBuilder {
	if workers < 1 {
		workers = 1
	}
	quartets := scr.Quartets()
	if len(quartets) < workers {
		workers = 1
	}
	batches := make([][]integral.Quartet, workers)
	chunk := (len(quartets) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(quartets) {
			hi = len(quartets)
		}
		if lo < hi {
			batches[w] = quartets[lo:hi]
		}
	}
	return &FockBuilder{eng: eng, batches: batches, xf: xf}
}

// BuildG computes the symmetrized two-electron matrix G = 2J - xf·K for
// the density D (occupation-1 convention). Each worker owns a private
// partial buffer; the reduction sums them in batch order.
func (fb *FockBuilder) BuildG(d *mat.SymDense) (*mat.SymDense, error) {
	n := fb.eng.NBasis()
	parts := make([]*mat.Dense, len(fb.batches))
	errs := make([]error, len(fb.batches))

	p := pool.New().WithMaxGoroutines(len(fb.batches))
	for w := range fb.batches {
		w := w
		p.Go(func() {
			parts[w] = mat.NewDense(n, n, nil)
			errs[w] = fb.accumulate(fb.batches[w], d, parts[w])
		})
	}
	p.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	raw := mat.NewDense(n, n, nil)
	for _, p := range parts {
		raw.Add(raw, p)
	}

	// Symmetrize: the scatter only touched canonical index orders.
	g := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			g.SetSym(i, j, 0.5*(raw.At(i, j)+raw.At(j, i)))
		}
	}
	return g, nil
}

// accumulate scatters the weighted Coulomb and exchange contributions of
// one quartet batch into a private buffer.
func (fb *FockBuilder) accumulate(batch []integral.Quartet, d *mat.SymDense, g *mat.Dense) error {
	reg := fb.eng.Registry()
	for _, q := range batch {
		block, err := fb.eng.ERI(q.A, q.B, q.C, q.D)
		if err != nil {
			return err
		}
		oa, ob, oc, od := reg.Offset(q.A), reg.Offset(q.B), reg.Offset(q.C), reg.Offset(q.D)
		for a := 0; a < block.Dims[0]; a++ {
			i := oa + a
			for b := 0; b < block.Dims[1]; b++ {
				j := ob + b
				for c := 0; c < block.Dims[2]; c++ {
					k := oc + c
					for dd := 0; dd < block.Dims[3]; dd++ {
						l := od + dd
						v := block.At(a, b, c, dd) * q.Weight
						if v == 0 {
							continue
						}
						g.Set(i, j, g.At(i, j)+d.At(k, l)*v)
						g.Set(k, l, g.At(k, l)+d.At(i, j)*v)
						x := 0.25 * fb.xf * v
						g.Set(i, k, g.At(i, k)-x*d.At(j, l))
						g.Set(j, l, g.At(j, l)-x*d.At(i, k))
						g.Set(i, l, g.At(i, l)-x*d.At(j, k))
						g.Set(j, k, g.At(j, k)-x*d.At(i, l))
					}
				}
			}
		}
	}
	return nil
}

// BuildFock assembles F = H + G(D) and, when a functional is supplied,
// adds its potential matrix. Returns the Fock matrix and the XC energy
// contribution.
func (fb *FockBuilder) BuildFock(h, d *mat.SymDense, xc Functional) (*mat.SymDense, float64, error) {
	g, err := fb.BuildG(d)
	if err != nil {
		return nil, 0, err
	}
	n := fb.eng.NBasis()
	f := mat.NewSymDense(n, nil)
	f.AddSym(h, g)

	exc := 0.0
	if xc != nil {
		var vxc *mat.SymDense
		exc, vxc, err = xc.Evaluate(d)
		if err != nil {
			return nil, 0, err
		}
		if vxc != nil {
			f.AddSym(f, vxc)
		}
	}
	return f, exc, nil
}
