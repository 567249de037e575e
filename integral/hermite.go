package integral

import "math"

// etable holds the Hermite expansion coefficients E_t^{ij} of one Cartesian
// direction of one primitive pair: the product of Gaussians with angular
// factors x_A^i x_B^j expanded over Hermite polynomials Λ_t centered at the
// combined center P. Stored as a flat arena indexed by (i, j, t), filled
// iteratively so no recursion depth depends on the angular momenta.
type etable struct {
	imax, jmax int
	data       []float64
}

func (e *etable) at(i, j, t int) float64 {
	if t < 0 || t > i+j {
		return 0
	}
	return e.data[(i*(e.jmax+1)+j)*(e.imax+e.jmax+1)+t]
}

func (e *etable) set(i, j, t int, v float64) {
	e.data[(i*(e.jmax+1)+j)*(e.imax+e.jmax+1)+t] = v
}

// hermiteE builds the E table for angular momenta up to (imax, jmax) in one
// dimension. a, b are the exponents, ab = A_x - B_x the center separation
// in this dimension, pa = P_x - A_x, pb = P_x - B_x.
func hermiteE(imax, jmax int, a, b, ab, pa, pb float64) *etable {
	p := a + b
	mu := a * b / p
	e := &etable{
		imax: imax,
		jmax: jmax,
		data: make([]float64, (imax+1)*(jmax+1)*(imax+jmax+1)),
	}
	e.set(0, 0, 0, math.Exp(-mu*ab*ab))

	// Raise i at j = 0.
	for i := 1; i <= imax; i++ {
		for t := 0; t <= i; t++ {
			v := pa * e.at(i-1, 0, t)
			if t > 0 {
				v += e.at(i-1, 0, t-1) / (2 * p)
			}
			v += float64(t+1) * e.at(i-1, 0, t+1)
			e.set(i, 0, t, v)
		}
	}

	// Raise j at every i.
	for j := 1; j <= jmax; j++ {
		for i := 0; i <= imax; i++ {
			for t := 0; t <= i+j; t++ {
				v := pb * e.at(i, j-1, t)
				if t > 0 {
					v += e.at(i, j-1, t-1) / (2 * p)
				}
				v += float64(t+1) * e.at(i, j-1, t+1)
				e.set(i, j, t, v)
			}
		}
	}
	return e
}

// rtable holds the Hermite Coulomb integrals R_{tuv} = R^0_{tuv}(p, PC).
// The auxiliary order n is consumed during construction; only the n = 0
// layer is retained.
type rtable struct {
	tmax, umax, vmax int
	data             []float64
}

func (r *rtable) at(t, u, v int) float64 {
	return r.data[(t*(r.umax+1)+u)*(r.vmax+1)+v]
}

// hermiteR builds the R table for a given total exponent p and field point
// displacement pc = P - C, for Hermite orders up to (tmax, umax, vmax).
// The recurrence runs over an explicit (n, t, u, v) arena from the Boys
// seeds downward in n.
func hermiteR(tmax, umax, vmax int, p float64, pc [3]float64) *rtable {
	ntot := tmax + umax + vmax
	r2 := pc[0]*pc[0] + pc[1]*pc[1] + pc[2]*pc[2]
	fn := boysArray(p*r2, ntot)

	dim := (tmax + 1) * (umax + 1) * (vmax + 1)
	idx := func(t, u, v int) int { return (t*(umax+1)+u)*(vmax+1) + v }

	// layers[n] holds R^n_{tuv}; layer n is built entirely from layer n+1.
	prev := make([]float64, dim)
	cur := make([]float64, dim)
	for n := ntot; n >= 0; n-- {
		cur, prev = prev, cur
		for t := 0; t <= tmax; t++ {
			for u := 0; u <= umax; u++ {
				for v := 0; v <= vmax; v++ {
					switch {
					case t == 0 && u == 0 && v == 0:
						cur[idx(0, 0, 0)] = math.Pow(-2*p, float64(n)) * fn[n]
					case t > 0:
						val := pc[0] * prev[idx(t-1, u, v)]
						if t > 1 {
							val += float64(t-1) * prev[idx(t-2, u, v)]
						}
						cur[idx(t, u, v)] = val
					case u > 0:
						val := pc[1] * prev[idx(t, u-1, v)]
						if u > 1 {
							val += float64(u-1) * prev[idx(t, u-2, v)]
						}
						cur[idx(t, u, v)] = val
					default:
						val := pc[2] * prev[idx(t, u, v-1)]
						if v > 1 {
							val += float64(v-1) * prev[idx(t, u, v-2)]
						}
						cur[idx(t, u, v)] = val
					}
				}
			}
		}
	}

	return &rtable{tmax: tmax, umax: umax, vmax: vmax, data: cur}
}
