package cg

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-12

func TestCoupled(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Coupled(1, 1))
	assert.Equal(t, []int{1, 2, 3}, Coupled(1, 2))
	assert.Equal(t, []int{3}, Coupled(3, 0))
}

func TestTriangle(t *testing.T) {
	assert.True(t, Triangle(1, 1, 2))
	assert.True(t, Triangle(2, 3, 1))
	assert.False(t, Triangle(1, 1, 3))
	assert.False(t, Triangle(3, 1, 1))
	assert.False(t, Triangle(-1, 1, 0))
}

func TestClebschGordan_InvalidDegrees(t *testing.T) {
	_, err := ClebschGordan(1, 1, 3)
	assert.True(t, errors.Is(err, ErrInvalidDegrees))
}

func TestClebschGordan_Orthogonality(t *testing.T) {
	for l1 := 0; l1 <= 3; l1++ {
		for l2 := 0; l2 <= 3; l2++ {
			for _, l3 := range Coupled(l1, l2) {
				c, err := ClebschGordan(l1, l2, l3)
				require.NoError(t, err)

				d1, d2, d3 := 2*l1+1, 2*l2+1, 2*l3+1
				require.Equal(t, []int{d1, d2, d3}, []int(c.Shape()))

				var norm float64
				for _, v := range c.Data() {
					norm += v * v
				}
				assert.InDelta(t, 1.0, norm, tol, "(%d,%d,%d) norm", l1, l2, l3)

				// Σ_ij C[i,j,k] C[i,j,k'] = δ_kk' / (2l3+1)
				for k := 0; k < d3; k++ {
					for k2 := 0; k2 < d3; k2++ {
						var g float64
						for i := 0; i < d1; i++ {
							for j := 0; j < d2; j++ {
								g += c.At(i, j, k) * c.At(i, j, k2)
							}
						}
						want := 0.0
						if k == k2 {
							want = 1 / float64(d3)
						}
						assert.InDelta(t, want, g, tol, "(%d,%d,%d) gram[%d,%d]", l1, l2, l3, k, k2)
					}
				}
			}
		}
	}
}

func TestClebschGordan_Completeness(t *testing.T) {
	// The rescaled couplings sqrt(2l+1)·C form an orthogonal change of basis.
	l1, l2 := 2, 1
	d1, d2 := 2*l1+1, 2*l2+1
	gram := make([]float64, (d1*d2)*(d1*d2))
	for _, l3 := range Coupled(l1, l2) {
		c, err := ClebschGordan(l1, l2, l3)
		require.NoError(t, err)
		scale := float64(2*l3 + 1)
		for a := 0; a < d1*d2; a++ {
			for b := 0; b < d1*d2; b++ {
				for k := 0; k < 2*l3+1; k++ {
					gram[a*d1*d2+b] += scale * c.At(a/d2, a%d2, k) * c.At(b/d2, b%d2, k)
				}
			}
		}
	}
	for a := 0; a < d1*d2; a++ {
		for b := 0; b < d1*d2; b++ {
			want := 0.0
			if a == b {
				want = 1
			}
			assert.InDelta(t, want, gram[a*d1*d2+b], tol)
		}
	}
}

func TestClebschGordan_ScalarCouplingIsIdentity(t *testing.T) {
	for l := 0; l <= 4; l++ {
		d := 2*l + 1
		inv := 1 / math.Sqrt(float64(d))

		c, err := ClebschGordan(l, l, 0)
		require.NoError(t, err)
		c2, err := ClebschGordan(0, l, l)
		require.NoError(t, err)

		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				want := 0.0
				if i == j {
					want = inv
				}
				assert.InDelta(t, want, c.At(i, j, 0), tol)
				assert.InDelta(t, want, c2.At(0, i, j), tol)
			}
		}
	}
}

func TestClebschGordan_VectorCrossProduct(t *testing.T) {
	c, err := ClebschGordan(1, 1, 1)
	require.NoError(t, err)

	levi := func(i, j, k int) float64 {
		return float64((i - j) * (j - k) * (k - i) / 2)
	}
	s := 1 / math.Sqrt(6)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				assert.InDelta(t, levi(i, j, k)*s, c.At(i, j, k), tol, "[%d,%d,%d]", i, j, k)
			}
		}
	}
}

func TestClebschGordan_ReturnsCopies(t *testing.T) {
	a, err := ClebschGordan(1, 1, 0)
	require.NoError(t, err)
	a.Data()[0] = 100

	b, err := ClebschGordan(1, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt(3), b.Data()[0], tol)
}

func TestSU2_KnownValues(t *testing.T) {
	// <1 1 1 -1 | 0 0> = 1/sqrt(3)
	assert.InDelta(t, 1/math.Sqrt(3), su2(1, 1, 1, -1, 0, 0), tol)
	// <1 0 1 0 | 2 0> = sqrt(2/3)
	assert.InDelta(t, math.Sqrt(2.0/3), su2(1, 0, 1, 0, 2, 0), tol)
	// <1 1 1 0 | 1 1> = 1/sqrt(2)
	assert.InDelta(t, 1/math.Sqrt2, su2(1, 1, 1, 0, 1, 1), tol)
	assert.Equal(t, 0.0, su2(1, 1, 1, 1, 2, 0))
}
