// Package activation applies scalar nonlinearities to the scalar blocks of
// an irrep tensor while keeping track of the resulting parity.
package activation

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/parallel"
	"github.com/born-ml/equivariant/internal/tensor"
)

// ErrInvalidInput reports activations that cannot be applied to the given irreps.
var ErrInvalidInput = errors.New("activation: invalid input")

const (
	// DefaultSeed seeds the normal samples used by Normalize.
	DefaultSeed uint64 = 0
	// DefaultSamples is the number of normal samples used by Normalize.
	DefaultSamples = 1_000_000

	parityPoints    = 256
	parityRange     = 10.0
	parityTolerance = 1e-5
)

// Func is a scalar nonlinearity. A nil Func leaves its block unchanged.
type Func func(float64) float64

// Parity reports whether phi is even (+1), odd (-1) or neither (0) on
// 256 evenly spaced points of [0, 10] and their negatives.
func Parity(phi Func) int {
	x := floats.Span(make([]float64, parityPoints), 0, parityRange)
	pos := make([]float64, len(x))
	neg := make([]float64, len(x))
	for i, v := range x {
		pos[i], neg[i] = phi(v), phi(-v)
	}

	if floats.Distance(pos, neg, math.Inf(1)) < parityTolerance {
		return irreps.Even
	}
	floats.Add(neg, pos)
	if floats.Norm(neg, math.Inf(1)) < parityTolerance {
		return irreps.Odd
	}
	return 0
}

// SecondMoment returns sqrt(E[phi(x)²]) for x ~ N(0, 1), estimated from n
// samples drawn from a PCG source seeded with seed.
func SecondMoment(phi Func, seed uint64, n int) float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed)}
	sq := make([]float64, n)
	for i := range sq {
		y := phi(normal.Rand())
		sq[i] = y * y
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

// Normalize returns phi / SecondMoment(phi, seed, n), whose output has unit
// second moment on a standard normal input.
func Normalize(phi Func, seed uint64, n int) Func {
	return scaled(phi, SecondMoment(phi, seed, n))
}

func scaled(phi Func, c float64) Func {
	return func(x float64) float64 {
		return phi(x) / c
	}
}

// Activation applies one normalized nonlinearity per scalar block.
// It is immutable and safe for concurrent use.
type Activation struct {
	irrepsIn  irreps.Irreps
	irrepsOut irreps.Irreps
	acts      []Func
	parallel  parallel.Config
}

// New builds an Activation for irrepsIn with one entry of acts per
// descriptor. Each non-nil function must act on a scalar block; on odd
// scalars it must itself be even or odd.
func New(irrepsIn irreps.Irreps, acts []Func) (*Activation, error) {
	if len(irrepsIn) != len(acts) {
		return nil, errors.Wrapf(ErrInvalidInput, "%d activations for %d irreps %s", len(acts), len(irrepsIn), irrepsIn)
	}

	out := make(irreps.Irreps, len(irrepsIn))
	normalized := make([]Func, len(acts))
	for i, mi := range irrepsIn {
		phi := acts[i]
		if phi == nil {
			out[i] = mi
			continue
		}
		if !mi.Ir.IsScalar() {
			return nil, errors.Wrapf(ErrInvalidInput, "cannot apply an activation to a non-scalar block %s at position %d", mi, i)
		}

		p := mi.Ir.P
		if p == irreps.Odd {
			p = Parity(phi)
		}
		if p == 0 {
			return nil, errors.Wrapf(ErrInvalidInput,
				"parity violated at position %d: input %s is odd but activation is neither even nor odd", i, mi)
		}

		c := SecondMoment(phi, DefaultSeed, DefaultSamples)
		if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.Wrapf(ErrInvalidInput, "activation at position %d has second moment %g", i, c)
		}
		normalized[i] = scaled(phi, c)
		out[i] = irreps.MulIrrep{Mul: mi.Mul, Ir: irreps.Irrep{L: 0, P: p}}
	}

	return &Activation{
		irrepsIn:  append(irreps.Irreps(nil), irrepsIn...),
		irrepsOut: out,
		acts:      normalized,
		parallel:  parallel.DefaultConfig(),
	}, nil
}

// IrrepsIn returns the irreps the activation accepts.
func (a *Activation) IrrepsIn() irreps.Irreps {
	return a.irrepsIn
}

// IrrepsOut returns the irreps the activation produces.
func (a *Activation) IrrepsOut() irreps.Irreps {
	return a.irrepsOut
}

// Apply maps each block through its nonlinearity. Blocks must end in
// (mul, dim) of the matching input descriptor. The inputs are not modified;
// every returned block is fresh.
func (a *Activation) Apply(blocks []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(blocks) != len(a.irrepsIn) {
		return nil, errors.Wrapf(ErrInvalidInput, "%d blocks for irreps %s", len(blocks), a.irrepsIn)
	}
	for i, mi := range a.irrepsIn {
		if blocks[i] == nil {
			return nil, errors.Wrapf(ErrInvalidInput, "block %d is nil", i)
		}
		shape := blocks[i].Shape()
		n := len(shape)
		if n < 2 || shape[n-2] != mi.Mul || shape[n-1] != mi.Ir.Dim() {
			return nil, errors.Wrapf(ErrInvalidInput, "block %d has shape %v, want (..., %d, %d) for %s",
				i, shape, mi.Mul, mi.Ir.Dim(), mi)
		}
	}

	out := make([]*tensor.RawTensor, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
		phi := a.acts[i]
		if phi == nil {
			continue
		}
		data := out[i].Data()
		parallel.ForRange(len(data), func(start, end int) {
			for j := start; j < end; j++ {
				data[j] = phi(data[j])
			}
		}, a.parallel)
	}
	return out, nil
}

// ApplyArray is Apply on an irrep tensor whose irreps equal IrrepsIn.
func (a *Activation) ApplyArray(x *irreps.Array) (*irreps.Array, error) {
	if !x.Irreps().Equal(a.irrepsIn) {
		return nil, errors.Wrapf(ErrInvalidInput, "irreps %s do not match %s", x.Irreps(), a.irrepsIn)
	}
	blocks, err := a.Apply(x.List())
	if err != nil {
		return nil, err
	}
	return irreps.FromList(a.irrepsOut, blocks, x.LeadingShape())
}
