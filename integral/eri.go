package integral

import (
	"math"

	"github.com/dairdre/goscf/errors"
)

// Block is the dense result of one two-electron shell-quartet evaluation,
// indexed by the Cartesian component indices of the four shells.
type Block struct {
	Dims [4]int
	Data []float64
}

// At returns element (i,j,k,l) of the block.
func (b *Block) At(i, j, k, l int) float64 {
	return b.Data[((i*b.Dims[1]+j)*b.Dims[2]+k)*b.Dims[3]+l]
}

func (b *Block) add(i, j, k, l int, v float64) {
	b.Data[((i*b.Dims[1]+j)*b.Dims[2]+k)*b.Dims[3]+l] += v
}

// MaxAbs is the largest magnitude in the block.
func (b *Block) MaxAbs() float64 {
	m := 0.0
	for _, v := range b.Data {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// ketPair caches the Hermite E tables and Gaussian-product quantities of
// one ket-side primitive pair, so they are built once per ERI call rather
// than once per bra primitive pair.
type ketPair struct {
	q          float64
	Q          [3]float64
	coeff      float64
	kx, ky, kz *etable
}

// ERI computes the electron-repulsion block (ab|cd) over four shells.
// Auxiliary Hermite tables are shared across the whole quartet: the bra
// and ket E tables are built once per primitive pair and the R table once
// per primitive quartet, so nothing inside one call is recomputed.
func (e *Engine) ERI(a, b, c, d int) (*Block, error) {
	sa, sb, sc, sd := &e.shells[a], &e.shells[b], &e.shells[c], &e.shells[d]
	la, lb, lc, ld := sa.sh.L, sb.sh.L, sc.sh.L, sd.sh.L
	lbra, lket := la+lb, lc+ld

	block := &Block{
		Dims: [4]int{len(sa.carts), len(sb.carts), len(sc.carts), len(sd.carts)},
		Data: make([]float64, len(sa.carts)*len(sb.carts)*len(sc.carts)*len(sd.carts)),
	}

	kets := make([]ketPair, 0, len(sc.sh.Exps)*len(sd.sh.Exps))
	for kc, gamma := range sc.sh.Exps {
		for kd, delta := range sd.sh.Exps {
			kx, ky, kz := pairTables(sc.sh.Center, sd.sh.Center, gamma, delta, lc, ld)
			kets = append(kets, ketPair{
				q:     gamma + delta,
				Q:     combinedCenter(gamma, delta, sc.sh.Center, sd.sh.Center),
				coeff: sc.coeffs[kc] * sd.coeffs[kd],
				kx:    kx, ky: ky, kz: kz,
			})
		}
	}

	for ka, alpha := range sa.sh.Exps {
		for kb, beta := range sb.sh.Exps {
			p := alpha + beta
			P := combinedCenter(alpha, beta, sa.sh.Center, sb.sh.Center)
			bx, by, bz := pairTables(sa.sh.Center, sb.sh.Center, alpha, beta, la, lb)
			cab := sa.coeffs[ka] * sb.coeffs[kb]

			for _, kp := range kets {
				q, Q := kp.q, kp.Q
				kx, ky, kz := kp.kx, kp.ky, kp.kz

				rho := p * q / (p + q)
				pq := [3]float64{P[0] - Q[0], P[1] - Q[1], P[2] - Q[2]}
				rt := hermiteR(lbra+lket, lbra+lket, lbra+lket, rho, pq)

				pref := cab * kp.coeff *
					2 * math.Pow(math.Pi, 2.5) / (p * q * math.Sqrt(p+q))

				for ca, ta := range sa.carts {
					for cb, tb := range sb.carts {
						for cc, tc := range sc.carts {
							for cd, td := range sd.carts {
								sum := 0.0
								for t := 0; t <= ta.X+tb.X; t++ {
									ebx := bx.at(ta.X, tb.X, t)
									for u := 0; u <= ta.Y+tb.Y; u++ {
										eby := by.at(ta.Y, tb.Y, u)
										for v := 0; v <= ta.Z+tb.Z; v++ {
											ebra := ebx * eby * bz.at(ta.Z, tb.Z, v)
											if ebra == 0 {
												continue
											}
											for tau := 0; tau <= tc.X+td.X; tau++ {
												ekx := kx.at(tc.X, td.X, tau)
												for nu := 0; nu <= tc.Y+td.Y; nu++ {
													eky := ky.at(tc.Y, td.Y, nu)
													for phi := 0; phi <= tc.Z+td.Z; phi++ {
														eket := ekx * eky * kz.at(tc.Z, td.Z, phi)
														if (tau+nu+phi)&1 == 1 {
															eket = -eket
														}
														sum += ebra * eket * rt.at(t+tau, u+nu, v+phi)
													}
												}
											}
										}
									}
								}
								w := pref * sa.fac[ca] * sb.fac[cb] * sc.fac[cc] * sd.fac[cd]
								block.add(ca, cb, cc, cd, w*sum)
							}
						}
					}
				}
			}
		}
	}
	if err := checkFinite(block.Data, "electron repulsion"); err != nil {
		return nil, errors.WithFields(err, errors.Fields{"quartet": [4]int{a, b, c, d}})
	}
	return block, nil
}
