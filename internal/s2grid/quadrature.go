// Package s2grid converts between spherical-harmonic coefficients and
// functions sampled on a (colatitude, longitude) grid of the sphere.
//
// The longitude direction is expanded in a real Fourier basis
//
//	f_0 = 1, f_m = √2 cos(mα), f_-m = √2 sin(mα)
//
// and the colatitude direction in normalized associated Legendre functions,
// so that p̄_l^|m|(cos β) f_m(α) is orthonormal on the sphere with respect to
// the mean over the surface.
package s2grid

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate/quad"
)

// Sentinel errors.
var (
	// ErrInvalidConfig reports an unknown quadrature scheme.
	ErrInvalidConfig = errors.New("s2grid: invalid configuration")
	// ErrInvalidInput reports irreps, shapes or resolutions the transform cannot handle.
	ErrInvalidInput = errors.New("s2grid: invalid input")
)

// Quadrature names a colatitude node/weight scheme.
type Quadrature string

const (
	// Soft uses uniformly spaced colatitudes with Fejér weights.
	// Exact for lmax when resBeta >= 2·lmax+1.
	Soft Quadrature = "soft"
	// GaussLegendre uses Gauss-Legendre nodes on cos β.
	// Exact for lmax when resBeta >= lmax+1.
	GaussLegendre Quadrature = "gausslegendre"
)

// ParseQuadrature validates a quadrature name.
func ParseQuadrature(s string) (Quadrature, error) {
	switch q := Quadrature(s); q {
	case Soft, GaussLegendre:
		return q, nil
	default:
		return "", errors.Wrapf(ErrInvalidConfig, "quadrature must be %q or %q, got %q", Soft, GaussLegendre, s)
	}
}

// MinResBeta returns the smallest colatitude resolution at which q
// integrates products of degree-lmax functions exactly.
func (q Quadrature) MinResBeta(lmax int) int {
	if q == Soft {
		return 2*lmax + 1
	}
	return lmax + 1
}

// Grid returns the colatitudes (ascending), the longitudes and the
// colatitude weights of the sampling grid. Weights integrate over cos β and
// sum to 2.
func Grid(resBeta, resAlpha int, q Quadrature) (betas, alphas, weights []float64, err error) {
	if resBeta < 1 || resAlpha < 1 {
		return nil, nil, nil, errors.Wrapf(ErrInvalidInput, "resolution must be positive, got res_beta=%d res_alpha=%d",
			resBeta, resAlpha)
	}
	switch q {
	case Soft:
		betas, weights = softNodes(resBeta)
	case GaussLegendre:
		betas, weights = gaussLegendreNodes(resBeta)
	default:
		_, err := ParseQuadrature(string(q))
		return nil, nil, nil, err
	}

	alphas = make([]float64, resAlpha)
	for k := range alphas {
		alphas[k] = 2 * math.Pi * float64(k) / float64(resAlpha)
	}
	return betas, alphas, weights, nil
}

// softNodes returns the Fejér nodes β_j = π(2j+1)/(2n) and their weights
//
//	w_j = (2/n) (1 - 2 Σ_{k=1}^{⌊n/2⌋} cos(2kβ_j) / (4k²-1)).
func softNodes(n int) (betas, weights []float64) {
	betas = make([]float64, n)
	weights = make([]float64, n)
	for j := 0; j < n; j++ {
		beta := math.Pi * float64(2*j+1) / float64(2*n)
		s := 0.0
		for k := 1; k <= n/2; k++ {
			s += math.Cos(2*float64(k)*beta) / float64(4*k*k-1)
		}
		betas[j] = beta
		weights[j] = 2 / float64(n) * (1 - 2*s)
	}
	return betas, weights
}

func gaussLegendreNodes(n int) (betas, weights []float64) {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)

	type node struct{ beta, w float64 }
	nodes := make([]node, n)
	for i := range x {
		nodes[i] = node{beta: math.Acos(x[i]), w: w[i]}
	}
	slices.SortFunc(nodes, func(a, b node) int {
		switch {
		case a.beta < b.beta:
			return -1
		case a.beta > b.beta:
			return 1
		}
		return 0
	})

	betas = make([]float64, n)
	weights = make([]float64, n)
	for i, nd := range nodes {
		betas[i], weights[i] = nd.beta, nd.w
	}
	return betas, weights
}
