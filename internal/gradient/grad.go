// Package gradient differentiates functions between irrep tensors and
// returns the derivative decomposed into irreducible blocks.
package gradient

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/equivariant/internal/autodiff"
	"github.com/born-ml/equivariant/internal/cg"
	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/parallel"
	"github.com/born-ml/equivariant/internal/tensor"
)

// ErrInternal reports a Jacobian that does not match the irreps it was
// computed for. It signals a bug rather than bad input.
var ErrInternal = errors.New("gradient: internal consistency")

// Fn is a function between irrep tensors. Every numeric operation on x must go
// through b so that the differentiator can trace it.
type Fn func(b tensor.Backend, x *irreps.Array) (*irreps.Array, error)

// Option configures Grad.
type Option func(*options)

type options struct {
	diff     autodiff.Differentiator
	parallel parallel.Config
}

// WithDifferentiator sets the Jacobian engine. Defaults to autodiff.ReverseMode.
func WithDifferentiator(d autodiff.Differentiator) Option {
	return func(o *options) {
		o.diff = d
	}
}

// WithParallel sets how (output batch, input batch) pairs are spread over
// goroutines while coupling.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.parallel = cfg
	}
}

// outputInfo travels through the differentiator's side channel.
type outputInfo struct {
	irreps  irreps.Irreps
	leading tensor.Shape
}

// Grad returns the equivariant gradient of fun.
//
// For every (output block, input block) pair and every degree l in
// l_out ⊗ l_in, the result holds one block of multiplicity mul_out·mul_in:
//
//	g[a, b, u, v, k] = Σ_ij J[a, u, i, b, v, j] · sqrt(2l+1) · C[i, j, k]
//
// where J is the Jacobian and C the Clebsch-Gordan tensor for
// (l_out, l_in, l). The leading shape is the output leading shape followed
// by the input leading shape.
//
// Example:
//
//	g := gradient.Grad(func(b tensor.Backend, x *irreps.Array) (*irreps.Array, error) { return x, nil })
//	y, _ := g(x) // x of irreps "1o" gives y of irreps "0e+1e+2e"
func Grad(fun Fn, opts ...Option) func(x *irreps.Array) (*irreps.Array, error) {
	o := &options{
		diff:     autodiff.ReverseMode{},
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(x *irreps.Array) (*irreps.Array, error) {
		irrepsIn := x.Irreps()
		leadingIn := x.LeadingShape()

		naked := func(b tensor.Backend, xs []*tensor.RawTensor) ([]*tensor.RawTensor, any, error) {
			in, err := irreps.FromList(irrepsIn, xs, leadingIn)
			if err != nil {
				return nil, nil, err
			}
			y, err := fun(b, in)
			if err != nil {
				return nil, nil, err
			}
			if y == nil {
				return nil, nil, errors.New("function returned a nil irrep tensor")
			}
			return y.List(), outputInfo{irreps: y.Irreps(), leading: y.LeadingShape().Clone()}, nil
		}

		jac, aux, err := o.diff.Jacobian(naked, x.List())
		if err != nil {
			return nil, errors.Wrap(err, "gradient: jacobian")
		}
		info, ok := aux.(outputInfo)
		if !ok {
			return nil, errors.Wrapf(ErrInternal, "differentiator returned auxiliary output of type %T", aux)
		}
		return couple(jac, info.irreps, info.leading, irrepsIn, leadingIn, o.parallel)
	}
}

// couple changes every Jacobian slice into the irreducible basis.
func couple(
	jac *autodiff.Jacobian,
	irrepsOut irreps.Irreps, leadingOut tensor.Shape,
	irrepsIn irreps.Irreps, leadingIn tensor.Shape,
	cfg parallel.Config,
) (*irreps.Array, error) {
	if jac.NumOutputs() != len(irrepsOut) || jac.NumInputs() != len(irrepsIn) {
		return nil, errors.Wrapf(ErrInternal, "jacobian has %d×%d slices for %s and %s",
			jac.NumOutputs(), jac.NumInputs(), irrepsOut, irrepsIn)
	}
	batchOut := leadingOut.NumElements()
	batchIn := leadingIn.NumElements()
	leading := leadingOut.Concat(leadingIn)

	var (
		irs    irreps.Irreps
		blocks []*tensor.RawTensor
	)
	for i, mo := range irrepsOut {
		for j, mi := range irrepsIn {
			z := jac.Block(i, j)
			want := leadingOut.Concat(tensor.Shape{mo.Mul, mo.Ir.Dim()}, leadingIn, tensor.Shape{mi.Mul, mi.Ir.Dim()})
			if !z.Shape().Equal(want) {
				return nil, errors.Wrapf(ErrInternal, "jacobian slice (%d, %d) has shape %v, want %v",
					i, j, z.Shape(), want)
			}

			s := slice{
				data:     z.Data(),
				batchIn:  batchIn,
				mulOut:   mo.Mul,
				dimOut:   mo.Ir.Dim(),
				mulIn:    mi.Mul,
				dimIn:    mi.Ir.Dim(),
				parallel: cfg,
			}
			for _, ir := range mo.Ir.Mul(mi.Ir) {
				c, err := cg.ClebschGordan(mo.Ir.L, mi.Ir.L, ir.L)
				if err != nil {
					return nil, errors.Wrapf(ErrInternal, "coupling %s ⊗ %s → %s: %v", mo.Ir, mi.Ir, ir, err)
				}
				block := tensor.Zeros(leading.Concat(tensor.Shape{mo.Mul * mi.Mul, ir.Dim()}))
				s.contract(block.Data(), batchOut, c.Data(), ir.Dim())

				irs = append(irs, irreps.MulIrrep{Mul: mo.Mul * mi.Mul, Ir: ir})
				blocks = append(blocks, block)
			}
		}
	}
	return irreps.FromList(irs, blocks, leading)
}

// slice is one Jacobian block viewed as (A, mulOut, dimOut, B, mulIn, dimIn).
type slice struct {
	data           []float64
	batchIn        int
	mulOut, dimOut int
	mulIn, dimIn   int
	parallel       parallel.Config
}

// contract writes dst[a, b, u, v, k] = Σ_ij z[a, u, i, b, v, j] · sqrt(d)·c[i, j, k]
// for a coupling tensor c of shape (dimOut, dimIn, d).
func (s slice) contract(dst []float64, batchOut int, c []float64, d int) {
	scale := math.Sqrt(float64(d))
	mulPairs := s.mulOut * s.mulIn

	parallel.ForRows(batchOut, s.batchIn, func(a, b int) {
		for u := 0; u < s.mulOut; u++ {
			for v := 0; v < s.mulIn; v++ {
				out := dst[((a*s.batchIn+b)*mulPairs+u*s.mulIn+v)*d:][:d]
				for i := 0; i < s.dimOut; i++ {
					row := ((a*s.mulOut+u)*s.dimOut + i) * s.batchIn
					for j := 0; j < s.dimIn; j++ {
						zv := s.data[((row+b)*s.mulIn+v)*s.dimIn+j]
						if zv == 0 {
							continue
						}
						cij := c[(i*s.dimIn+j)*d:][:d]
						for k := range out {
							out[k] += zv * scale * cij[k]
						}
					}
				}
			}
		}
	}, s.parallel)
}
