package integral

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// boys evaluates the Boys function F_n(x) through the regularized lower
// incomplete gamma function. The x→0 limit is 1/(2n+1).
func boys(x float64, n int) float64 {
	nf := float64(n)
	if x < 1e-14 {
		return 1.0 / (2.0*nf + 1.0)
	}
	return mathext.GammaIncReg(nf+0.5, x) * math.Gamma(nf+0.5) / (2.0 * math.Pow(x, nf+0.5))
}

// boysArray fills F_0..F_nmax(x). The highest order comes from the gamma
// expression and the rest by stable downward recursion
// F_{n}(x) = (2x F_{n+1}(x) + e^{-x}) / (2n+1).
func boysArray(x float64, nmax int) []float64 {
	res := make([]float64, nmax+1)
	if x < 1e-14 {
		for n := 0; n <= nmax; n++ {
			res[n] = 1.0 / (2.0*float64(n) + 1.0)
		}
		return res
	}
	res[nmax] = boys(x, nmax)
	ex := math.Exp(-x)
	for n := nmax - 1; n >= 0; n-- {
		res[n] = (2.0*x*res[n+1] + ex) / (2.0*float64(n) + 1.0)
	}
	return res
}
