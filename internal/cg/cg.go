// Package cg computes real-basis Clebsch-Gordan coefficients, the coupling
// tensors that decompose the tensor product of two irreps of degree l1 and
// l2 into irreps of degree l3.
package cg

import (
	"math"
	"math/big"
	"math/cmplx"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/equivariant/internal/tensor"
)

// Sentinel errors.
var (
	// ErrInvalidDegrees reports degrees that violate the triangle rule.
	ErrInvalidDegrees = errors.New("cg: invalid degrees")
	// ErrInternal reports a coupling tensor that failed its consistency check.
	ErrInternal = errors.New("cg: internal consistency")
)

// Coupled returns the degrees reachable by coupling l1 and l2:
// |l1-l2| .. l1+l2.
func Coupled(l1, l2 int) []int {
	lmin := l1 - l2
	if lmin < 0 {
		lmin = -lmin
	}
	out := make([]int, 0, l1+l2-lmin+1)
	for l := lmin; l <= l1+l2; l++ {
		out = append(out, l)
	}
	return out
}

// Triangle reports whether (l1, l2, l3) satisfies the triangle rule.
func Triangle(l1, l2, l3 int) bool {
	if l1 < 0 || l2 < 0 || l3 < 0 {
		return false
	}
	d := l1 - l2
	if d < 0 {
		d = -d
	}
	return d <= l3 && l3 <= l1+l2
}

var table = struct {
	sync.Mutex
	entries map[[3]int]*tensor.RawTensor
}{entries: make(map[[3]int]*tensor.RawTensor)}

// ClebschGordan returns the real-basis coupling tensor of shape
// (2l1+1, 2l2+1, 2l3+1) with Frobenius norm 1.
//
// Results are memoized; each call returns a fresh copy.
func ClebschGordan(l1, l2, l3 int) (*tensor.RawTensor, error) {
	if !Triangle(l1, l2, l3) {
		return nil, errors.Wrapf(ErrInvalidDegrees, "(%d, %d, %d) violates the triangle rule", l1, l2, l3)
	}
	key := [3]int{l1, l2, l3}

	table.Lock()
	defer table.Unlock()
	if c, ok := table.entries[key]; ok {
		return c.Clone(), nil
	}
	c, err := realClebschGordan(l1, l2, l3)
	if err != nil {
		return nil, err
	}
	table.entries[key] = c
	return c.Clone(), nil
}

// realClebschGordan changes the complex-basis coefficients into the real
// basis: C[j,l,m] = Σ Q1[i,j] Q2[k,l] conj(Q3[n,m]) C_su2[i,k,n].
func realClebschGordan(l1, l2, l3 int) (*tensor.RawTensor, error) {
	d1, d2, d3 := 2*l1+1, 2*l2+1, 2*l3+1
	q1, q2, q3 := realToComplex(l1), realToComplex(l2), realToComplex(l3)

	acc := make([]complex128, d1*d2*d3)
	for m1 := -l1; m1 <= l1; m1++ {
		for m2 := -l2; m2 <= l2; m2++ {
			m3 := m1 + m2
			if m3 < -l3 || m3 > l3 {
				continue
			}
			c := su2(l1, m1, l2, m2, l3, m3)
			if c == 0 {
				continue
			}
			i, k, n := l1+m1, l2+m2, l3+m3
			for _, e1 := range q1[i] {
				for _, e2 := range q2[k] {
					for _, e3 := range q3[n] {
						v := e1.val * e2.val * cmplx.Conj(e3.val) * complex(c, 0)
						acc[(e1.col*d2+e2.col)*d3+e3.col] += v
					}
				}
			}
		}
	}

	out := tensor.Zeros(tensor.Shape{d1, d2, d3})
	data := out.Data()
	var norm float64
	for idx, v := range acc {
		if math.Abs(imag(v)) > 1e-10 {
			return nil, errors.Wrapf(ErrInternal, "(%d, %d, %d) has imaginary coefficient %g", l1, l2, l3, imag(v))
		}
		data[idx] = real(v)
		norm += real(v) * real(v)
	}
	if norm == 0 {
		return nil, errors.Wrapf(ErrInternal, "(%d, %d, %d) coupling vanishes", l1, l2, l3)
	}
	norm = math.Sqrt(norm)
	for idx := range data {
		data[idx] /= norm
	}
	return out, nil
}

// entry is a non-zero element of a sparse row.
type entry struct {
	col int
	val complex128
}

// realToComplex returns the rows of the matrix Q with Y_complex = Q · Y_real,
// including the (-i)^l phase that makes the coupling tensors real.
// Each row has at most two non-zero entries.
func realToComplex(l int) [][]entry {
	phase := [4]complex128{1, -1i, -1, 1i}[l%4] // (-i)^l
	s := complex(1/math.Sqrt2, 0)

	rows := make([][]entry, 2*l+1)
	for m := -l; m < 0; m++ {
		rows[l+m] = []entry{
			{col: l - m, val: phase * s},
			{col: l + m, val: phase * complex(0, -1) * s},
		}
	}
	rows[l] = []entry{{col: l, val: phase}}
	for m := 1; m <= l; m++ {
		sign := complex(float64(1-2*(m%2)), 0) // (-1)^m
		rows[l+m] = []entry{
			{col: l + m, val: phase * sign * s},
			{col: l - m, val: phase * complex(0, 1) * sign * s},
		}
	}
	return rows
}

// su2 returns the complex-basis coefficient <j1 m1 j2 m2 | j3 m3> via the
// Racah formula, evaluated in exact rational arithmetic.
func su2(j1, m1, j2, m2, j3, m3 int) float64 {
	if m3 != m1+m2 {
		return 0
	}
	vmin := max(-j1+j2+m3, -j1+m1, 0)
	vmax := min(j2+j3+m1, j3-j1+j2, j3+m3)

	pre := new(big.Rat).SetFrac(
		prodFact(j3+j1-j2, j3-j1+j2, j1+j2-j3, j3+m3, j3-m3),
		prodFact(j1+j2+j3+1, j1-m1, j1+m1, j2-m2, j2+m2),
	)
	pre.Mul(pre, new(big.Rat).SetInt64(int64(2*j3+1)))

	sum := new(big.Rat)
	for v := vmin; v <= vmax; v++ {
		term := new(big.Rat).SetFrac(
			prodFact(j2+j3+m1-v, j1-m1+v),
			prodFact(v, j3-j1+j2-v, j3+m3-v, v+j1-j2-m3),
		)
		if (v+j2+m2)%2 != 0 {
			term.Neg(term)
		}
		sum.Add(sum, term)
	}

	p, _ := pre.Float64()
	s, _ := sum.Float64()
	return math.Sqrt(p) * s
}

// prodFact returns Π n_i!.
func prodFact(ns ...int) *big.Int {
	out := big.NewInt(1)
	for _, n := range ns {
		out.Mul(out, new(big.Int).MulRange(1, int64(n)))
	}
	return out
}
