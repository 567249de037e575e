// Package integral evaluates one- and two-electron integrals over
// contracted Cartesian Gaussian shells with McMurchie-Davidson Hermite
// recurrences, and provides the Schwarz screening pass that decides which
// shell quartets are worth evaluating.
package integral

import (
	"math"
	"runtime"

	"github.com/dairdre/goscf/basis"
	"github.com/dairdre/goscf/errors"
)

// Params configures an Engine. All knobs are explicit; there is no
// process-wide state.
type Params struct {
	// ScreenThreshold is the Schwarz cutoff. Zero disables skipping.
	ScreenThreshold float64
	// MaxWorkers bounds the worker pool for whole-matrix builds.
	// Zero means GOMAXPROCS.
	MaxWorkers int
}

// shellData is the per-shell view the hot loops run on: component triples
// and normalization resolved once per shell, never per integral call.
type shellData struct {
	sh     *basis.Shell
	carts  []basis.Cart
	fac    []float64 // per-component normalization factors
	coeffs []float64 // contraction coefficient times primitive norm
}

// Engine computes integral blocks over a fixed shell registry.
type Engine struct {
	reg    *basis.Registry
	shells []shellData
	params Params
}

// NewEngine prepares an engine for the registry.
func NewEngine(reg *basis.Registry, params Params) *Engine {
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = runtime.GOMAXPROCS(-1)
	}
	eng := &Engine{reg: reg, params: params}
	eng.shells = make([]shellData, reg.NShells())
	for i, sh := range reg.Shells {
		carts := basis.CartList(sh.L)
		fac := make([]float64, len(carts))
		for c, cart := range carts {
			fac[c] = basis.CompFactor(cart)
		}
		coeffs := make([]float64, len(sh.Exps))
		for k := range sh.Exps {
			coeffs[k] = sh.Coeffs[k] * sh.Norms[k]
		}
		eng.shells[i] = shellData{sh: sh, carts: carts, fac: fac, coeffs: coeffs}
	}
	return eng
}

// Registry returns the shell registry the engine operates on.
func (e *Engine) Registry() *basis.Registry { return e.reg }

// NBasis is the basis dimension of all whole-matrix results.
func (e *Engine) NBasis() int { return e.reg.NBasis() }

// checkFinite guards a computed block against overflow in the recurrences.
func checkFinite(vals []float64, context string) error {
	for _, v := range vals {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return errors.New(errors.IntegralOverflow,
				"non-finite intermediate in "+context)
		}
	}
	return nil
}
