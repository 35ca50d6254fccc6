package s2grid

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LegendreTable holds p̄_l^m(cos β_i) for 0 <= m <= l <= LMax, normalized so
// that (1/2)∫_{-1}^{1} p̄_l^m(x)² dx = 1. No Condon-Shortley phase is applied.
type LegendreTable struct {
	lmax  int
	nodes int
	// orders[m] is nodes × (lmax+1-m); column k holds degree l = m+k.
	orders []*mat.Dense
}

// Legendre evaluates the normalized associated Legendre functions at cos β
// for each β in betas.
func Legendre(lmax int, betas []float64) *LegendreTable {
	t := &LegendreTable{
		lmax:   lmax,
		nodes:  len(betas),
		orders: make([]*mat.Dense, lmax+1),
	}
	for m := 0; m <= lmax; m++ {
		t.orders[m] = mat.NewDense(len(betas), lmax+1-m, nil)
	}

	col := make([]float64, lmax+1)
	for i, beta := range betas {
		x, s := math.Cos(beta), math.Sin(beta)
		pmm := 1.0
		for m := 0; m <= lmax; m++ {
			if m > 0 {
				pmm *= s * math.Sqrt(float64(2*m+1)/float64(2*m))
			}
			legendreColumn(col[:lmax+1-m], m, x, pmm)
			t.orders[m].SetRow(i, col[:lmax+1-m])
		}
	}
	return t
}

// legendreColumn fills dst[k] = p̄_{m+k}^m(x) starting from p̄_m^m = pmm.
func legendreColumn(dst []float64, m int, x, pmm float64) {
	dst[0] = pmm
	if len(dst) == 1 {
		return
	}
	dst[1] = x * math.Sqrt(float64(2*m+3)) * pmm
	for k := 2; k < len(dst); k++ {
		l := float64(m + k)
		mf := float64(m)
		a := math.Sqrt((4*l*l - 1) / (l*l - mf*mf))
		b := math.Sqrt(((l-1)*(l-1) - mf*mf) / (4*(l-1)*(l-1) - 1))
		dst[k] = a * (x*dst[k-1] - b*dst[k-2])
	}
}

// LMax returns the largest degree in the table.
func (t *LegendreTable) LMax() int {
	return t.lmax
}

// NumNodes returns the number of colatitudes.
func (t *LegendreTable) NumNodes() int {
	return t.nodes
}

// At returns p̄_l^|m|(cos β_i).
func (t *LegendreTable) At(i, l, m int) float64 {
	if m < 0 {
		m = -m
	}
	return t.orders[m].At(i, l-m)
}

// Order returns the nodes × (lmax+1-m) matrix for order |m|.
// WARNING: The matrix is shared; treat it as read-only.
func (t *LegendreTable) Order(m int) *mat.Dense {
	if m < 0 {
		m = -m
	}
	return t.orders[m]
}
