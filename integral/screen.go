package integral

import (
	"math"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"
)

// Quartet identifies one canonical shell quartet (A B | C D) together with
// the number of equivalent quartets it stands for under the 8-fold
// permutational symmetry of real two-electron integrals.
type Quartet struct {
	A, B, C, D int
	Weight     float64
}

// Screener owns the Schwarz pair bounds and enumerates the shell quartets
// worth evaluating. Bounds are computed once per shell pair and reused for
// every quartet sharing that pair, so the precomputation cost is quadratic
// while the enumeration it prunes is quartic.
type Screener struct {
	eng       *Engine
	bounds    *mat.SymDense
	threshold float64
}

// NewScreener evaluates the diagonal quantities (ab|ab) for all shell
// pairs and stores Q_ab = sqrt(max_{μν} (μν|μν)).
func NewScreener(eng *Engine) (*Screener, error) {
	n := eng.reg.NShells()
	s := &Screener{
		eng:       eng,
		bounds:    mat.NewSymDense(n, nil),
		threshold: eng.params.ScreenThreshold,
	}

	p := pool.New().WithErrors().WithMaxGoroutines(eng.params.MaxWorkers)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			i, j := i, j
			p.Go(func() error {
				block, err := eng.ERI(i, j, i, j)
				if err != nil {
					return err
				}
				qmax := 0.0
				for a := 0; a < block.Dims[0]; a++ {
					for b := 0; b < block.Dims[1]; b++ {
						if v := math.Abs(block.At(a, b, a, b)); v > qmax {
							qmax = v
						}
					}
				}
				s.bounds.SetSym(i, j, math.Sqrt(qmax))
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// Bound returns the cached Schwarz pair bound Q_ab.
func (s *Screener) Bound(a, b int) float64 { return s.bounds.At(a, b) }

// Skipped reports whether the quartet (ab|cd) falls under the cutoff.
// A zero threshold never skips.
func (s *Screener) Skipped(a, b, c, d int) bool {
	return s.bounds.At(a, b)*s.bounds.At(c, d) < s.threshold
}

// ForEachQuartet walks the canonical shell quartets (a ≥ b, c ≥ d,
// pair(ab) ≥ pair(cd)) lazily, invoking fn with the permutation weight for
// each retained quartet. Enumeration stops on the first error.
func (s *Screener) ForEachQuartet(fn func(Quartet) error) error {
	n := s.eng.reg.NShells()
	for a := 0; a < n; a++ {
		for b := 0; b <= a; b++ {
			pab := pairIndex(a, b)
			for c := 0; c <= a; c++ {
				for d := 0; d <= c; d++ {
					if pairIndex(c, d) > pab {
						continue
					}
					if s.Skipped(a, b, c, d) {
						continue
					}
					if err := fn(s.quartet(a, b, c, d)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// Quartets materializes the retained canonical quartet list, in the same
// deterministic order ForEachQuartet produces.
func (s *Screener) Quartets() []Quartet {
	var out []Quartet
	_ = s.ForEachQuartet(func(q Quartet) error {
		out = append(out, q)
		return nil
	})
	return out
}

func (s *Screener) quartet(a, b, c, d int) Quartet {
	w := 1.0
	if a != b {
		w *= 2
	}
	if c != d {
		w *= 2
	}
	if pairIndex(a, b) != pairIndex(c, d) {
		w *= 2
	}
	return Quartet{A: a, B: b, C: c, D: d, Weight: w}
}

// pairIndex is the canonical triangular index of an ordered shell pair.
func pairIndex(i, j int) int {
	if i < j {
		i, j = j, i
	}
	return i*(i+1)/2 + j
}
