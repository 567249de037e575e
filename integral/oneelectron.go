package integral

import (
	"math"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/dairdre/goscf/chem"
)

// Overlap computes the overlap block ⟨a|b⟩ between two shells, dimension
// NCart(a) x NCart(b).
func (e *Engine) Overlap(a, b int) (*mat.Dense, error) {
	sa, sb := &e.shells[a], &e.shells[b]
	la, lb := sa.sh.L, sb.sh.L
	block := mat.NewDense(len(sa.carts), len(sb.carts), nil)

	for ka, alpha := range sa.sh.Exps {
		for kb, beta := range sb.sh.Exps {
			p := alpha + beta
			cc := sa.coeffs[ka] * sb.coeffs[kb] * math.Pow(math.Pi/p, 1.5)
			ex, ey, ez := pairTables(sa.sh.Center, sb.sh.Center, alpha, beta, la, lb)

			for ca, ta := range sa.carts {
				for cb, tb := range sb.carts {
					s := ex.at(ta.X, tb.X, 0) * ey.at(ta.Y, tb.Y, 0) * ez.at(ta.Z, tb.Z, 0)
					block.Set(ca, cb, block.At(ca, cb)+cc*sa.fac[ca]*sb.fac[cb]*s)
				}
			}
		}
	}
	if err := checkFinite(block.RawMatrix().Data, "overlap"); err != nil {
		return nil, err
	}
	return block, nil
}

// Kinetic computes the kinetic-energy block ⟨a|-∇²/2|b⟩.
func (e *Engine) Kinetic(a, b int) (*mat.Dense, error) {
	sa, sb := &e.shells[a], &e.shells[b]
	la, lb := sa.sh.L, sb.sh.L
	block := mat.NewDense(len(sa.carts), len(sb.carts), nil)

	for ka, alpha := range sa.sh.Exps {
		for kb, beta := range sb.sh.Exps {
			p := alpha + beta
			cc := sa.coeffs[ka] * sb.coeffs[kb] * math.Pow(math.Pi/p, 1.5)
			// The b-side angular momentum is raised by 2 in the kinetic
			// decomposition, so the table carries jmax = lb+2.
			ex, ey, ez := pairTablesRaised(sa.sh.Center, sb.sh.Center, alpha, beta, la, lb+2)

			dims := [3]*etable{ex, ey, ez}
			for ca, ta := range sa.carts {
				ia := [3]int{ta.X, ta.Y, ta.Z}
				for cb, tb := range sb.carts {
					jb := [3]int{tb.X, tb.Y, tb.Z}

					var s, t [3]float64
					for d := 0; d < 3; d++ {
						i, j := ia[d], jb[d]
						s[d] = dims[d].at(i, j, 0)
						t[d] = -2 * beta * beta * dims[d].at(i, j+2, 0)
						t[d] += beta * float64(2*j+1) * dims[d].at(i, j, 0)
						if j >= 2 {
							t[d] -= 0.5 * float64(j*(j-1)) * dims[d].at(i, j-2, 0)
						}
					}
					kin := t[0]*s[1]*s[2] + s[0]*t[1]*s[2] + s[0]*s[1]*t[2]
					block.Set(ca, cb, block.At(ca, cb)+cc*sa.fac[ca]*sb.fac[cb]*kin)
				}
			}
		}
	}
	if err := checkFinite(block.RawMatrix().Data, "kinetic"); err != nil {
		return nil, err
	}
	return block, nil
}

// Nuclear computes the nuclear-attraction block ⟨a|Σ_C -Z_C/r_C|b⟩ over
// all atoms.
func (e *Engine) Nuclear(a, b int, atoms []chem.Atom) (*mat.Dense, error) {
	sa, sb := &e.shells[a], &e.shells[b]
	la, lb := sa.sh.L, sb.sh.L
	lsum := la + lb
	block := mat.NewDense(len(sa.carts), len(sb.carts), nil)

	for ka, alpha := range sa.sh.Exps {
		for kb, beta := range sb.sh.Exps {
			p := alpha + beta
			cc := sa.coeffs[ka] * sb.coeffs[kb] * 2 * math.Pi / p
			var pc [3]float64
			P := combinedCenter(alpha, beta, sa.sh.Center, sb.sh.Center)
			ex, ey, ez := pairTables(sa.sh.Center, sb.sh.Center, alpha, beta, la, lb)

			for _, at := range atoms {
				pc[0] = P[0] - at.Coord[0]
				pc[1] = P[1] - at.Coord[1]
				pc[2] = P[2] - at.Coord[2]
				rt := hermiteR(lsum, lsum, lsum, p, pc)

				for ca, ta := range sa.carts {
					for cb, tb := range sb.carts {
						sum := 0.0
						for t := 0; t <= ta.X+tb.X; t++ {
							etx := ex.at(ta.X, tb.X, t)
							for u := 0; u <= ta.Y+tb.Y; u++ {
								ety := ey.at(ta.Y, tb.Y, u)
								for v := 0; v <= ta.Z+tb.Z; v++ {
									sum += etx * ety * ez.at(ta.Z, tb.Z, v) * rt.at(t, u, v)
								}
							}
						}
						block.Set(ca, cb, block.At(ca, cb)-float64(at.Z)*cc*sa.fac[ca]*sb.fac[cb]*sum)
					}
				}
			}
		}
	}
	if err := checkFinite(block.RawMatrix().Data, "nuclear attraction"); err != nil {
		return nil, err
	}
	return block, nil
}

// pairTables builds the three per-dimension E tables of a primitive pair.
func pairTables(A, B [3]float64, alpha, beta float64, imax, jmax int) (ex, ey, ez *etable) {
	return pairTablesRaised(A, B, alpha, beta, imax, jmax)
}

func pairTablesRaised(A, B [3]float64, alpha, beta float64, imax, jmax int) (ex, ey, ez *etable) {
	P := combinedCenter(alpha, beta, A, B)
	ex = hermiteE(imax, jmax, alpha, beta, A[0]-B[0], P[0]-A[0], P[0]-B[0])
	ey = hermiteE(imax, jmax, alpha, beta, A[1]-B[1], P[1]-A[1], P[1]-B[1])
	ez = hermiteE(imax, jmax, alpha, beta, A[2]-B[2], P[2]-A[2], P[2]-B[2])
	return ex, ey, ez
}

// combinedCenter is the Gaussian product center (αA+βB)/(α+β).
func combinedCenter(alpha, beta float64, A, B [3]float64) [3]float64 {
	p := alpha + beta
	return [3]float64{
		(alpha*A[0] + beta*B[0]) / p,
		(alpha*A[1] + beta*B[1]) / p,
		(alpha*A[2] + beta*B[2]) / p,
	}
}

type oneElectronBlock func(i, j int) (*mat.Dense, error)

// buildSymMatrix assembles a full symmetric matrix from shell blocks over a
// bounded worker pool. Each unique shell pair writes its own block and the
// mirrored transpose; pairs touch disjoint regions, so no locking is
// needed.
func (e *Engine) buildSymMatrix(f oneElectronBlock) (*mat.SymDense, error) {
	n := e.reg.NBasis()
	out := mat.NewDense(n, n, nil)

	p := pool.New().WithErrors().WithMaxGoroutines(e.params.MaxWorkers)
	for i := 0; i < e.reg.NShells(); i++ {
		for j := 0; j <= i; j++ {
			i, j := i, j
			p.Go(func() error {
				block, err := f(i, j)
				if err != nil {
					return err
				}
				oi, oj := e.reg.Offset(i), e.reg.Offset(j)
				r, c := block.Dims()
				for a := 0; a < r; a++ {
					for b := 0; b < c; b++ {
						out.Set(oi+a, oj+b, block.At(a, b))
						out.Set(oj+b, oi+a, block.At(a, b))
					}
				}
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, out.At(i, j))
		}
	}
	return sym, nil
}

// OverlapMatrix builds the full overlap matrix S.
func (e *Engine) OverlapMatrix() (*mat.SymDense, error) {
	return e.buildSymMatrix(e.Overlap)
}

// KineticMatrix builds the full kinetic-energy matrix T.
func (e *Engine) KineticMatrix() (*mat.SymDense, error) {
	return e.buildSymMatrix(e.Kinetic)
}

// NuclearMatrix builds the full nuclear-attraction matrix V for the given
// nuclei.
func (e *Engine) NuclearMatrix(atoms []chem.Atom) (*mat.SymDense, error) {
	return e.buildSymMatrix(func(i, j int) (*mat.Dense, error) {
		return e.Nuclear(i, j, atoms)
	})
}

// CoreHamiltonian builds H = T + V.
func (e *Engine) CoreHamiltonian(atoms []chem.Atom) (*mat.SymDense, error) {
	t, err := e.KineticMatrix()
	if err != nil {
		return nil, err
	}
	v, err := e.NuclearMatrix(atoms)
	if err != nil {
		return nil, err
	}
	n := e.reg.NBasis()
	h := mat.NewSymDense(n, nil)
	h.AddSym(t, v)
	return h, nil
}
