package autodiff

import (
	"github.com/pkg/errors"

	"github.com/born-ml/equivariant/internal/backend/cpu"
	"github.com/born-ml/equivariant/internal/tensor"
)

// ErrInvalidFunc is returned when the differentiated function misbehaves:
// it fails, returns nil outputs, or changes its output shapes between calls.
var ErrInvalidFunc = errors.New("autodiff: invalid function")

// Func is a function over a flattened list of tensors.
//
// It must perform every numeric operation on its inputs through b so that
// any engine can trace it. The second return value is an auxiliary side
// channel that engines hand back to the caller untouched.
type Func func(b tensor.Backend, xs []*tensor.RawTensor) ([]*tensor.RawTensor, any, error)

// Differentiator computes the full block-pairwise Jacobian of a Func.
type Differentiator interface {
	Jacobian(fn Func, xs []*tensor.RawTensor) (*Jacobian, any, error)
}

// Jacobian holds ∂outputs[i]/∂inputs[j] for every pair.
// Block(i, j) has shape outputs[i].Shape ++ inputs[j].Shape.
type Jacobian struct {
	outputShapes []tensor.Shape
	inputShapes  []tensor.Shape
	blocks       [][]*tensor.RawTensor
}

func newJacobian(outputs, inputs []*tensor.RawTensor) *Jacobian {
	j := &Jacobian{
		outputShapes: make([]tensor.Shape, len(outputs)),
		inputShapes:  make([]tensor.Shape, len(inputs)),
		blocks:       make([][]*tensor.RawTensor, len(outputs)),
	}
	for k, in := range inputs {
		j.inputShapes[k] = in.Shape().Clone()
	}
	for i, out := range outputs {
		j.outputShapes[i] = out.Shape().Clone()
		j.blocks[i] = make([]*tensor.RawTensor, len(inputs))
		for k := range inputs {
			j.blocks[i][k] = tensor.Zeros(j.outputShapes[i].Concat(j.inputShapes[k]))
		}
	}
	return j
}

// NumOutputs returns the number of output tensors.
func (j *Jacobian) NumOutputs() int { return len(j.outputShapes) }

// NumInputs returns the number of input tensors.
func (j *Jacobian) NumInputs() int { return len(j.inputShapes) }

// OutputShape returns the shape of output i.
func (j *Jacobian) OutputShape(i int) tensor.Shape { return j.outputShapes[i] }

// InputShape returns the shape of input k.
func (j *Jacobian) InputShape(k int) tensor.Shape { return j.inputShapes[k] }

// Block returns ∂outputs[i]/∂inputs[k].
func (j *Jacobian) Block(i, k int) *tensor.RawTensor { return j.blocks[i][k] }

// ReverseMode computes Jacobians by recording the function once on a
// gradient tape and running one backward sweep per output element.
type ReverseMode struct {
	// Base is the backend wrapped by the tape. Defaults to the CPU backend.
	Base tensor.Backend
}

// Jacobian implements Differentiator.
func (r ReverseMode) Jacobian(fn Func, xs []*tensor.RawTensor) (*Jacobian, any, error) {
	base := r.Base
	if base == nil {
		base = cpu.New()
	}
	backend := New(base)

	inputs := cloneAll(xs)

	backend.Tape().StartRecording()
	outputs, aux, err := fn(backend, inputs)
	backend.Tape().StopRecording()
	if err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidFunc, "evaluation failed: %v", err)
	}
	if err := checkOutputs(outputs); err != nil {
		return nil, nil, err
	}

	jac := newJacobian(outputs, inputs)
	for i, out := range outputs {
		for e := 0; e < out.NumElements(); e++ {
			seed := tensor.Zeros(out.Shape())
			seed.Data()[e] = 1

			grads := backend.Tape().Backward(map[*tensor.RawTensor]*tensor.RawTensor{out: seed}, base)
			for k, in := range inputs {
				g, ok := grads[in]
				if !ok {
					continue // output does not depend on this input
				}
				n := in.NumElements()
				copy(jac.blocks[i][k].Data()[e*n:(e+1)*n], g.Data())
			}
		}
	}

	return jac, aux, nil
}

// FiniteDifference computes Jacobians with central differences through the
// plain CPU backend. It treats the function as a black box, so it also works
// for functions that bypass the backend.
type FiniteDifference struct {
	// Step is the perturbation size. Defaults to 1e-5.
	Step float64
}

// Jacobian implements Differentiator.
func (f FiniteDifference) Jacobian(fn Func, xs []*tensor.RawTensor) (*Jacobian, any, error) {
	h := f.Step
	if h <= 0 {
		h = 1e-5
	}
	backend := cpu.New()

	outputs, aux, err := fn(backend, cloneAll(xs))
	if err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidFunc, "evaluation failed: %v", err)
	}
	if err := checkOutputs(outputs); err != nil {
		return nil, nil, err
	}

	jac := newJacobian(outputs, xs)
	for k, x := range xs {
		n := x.NumElements()
		for c := 0; c < n; c++ {
			plus, minus := cloneAll(xs), cloneAll(xs)
			plus[k].Data()[c] += h
			minus[k].Data()[c] -= h

			fp, err := evalShaped(fn, backend, plus, jac.outputShapes)
			if err != nil {
				return nil, nil, err
			}
			fm, err := evalShaped(fn, backend, minus, jac.outputShapes)
			if err != nil {
				return nil, nil, err
			}

			for i := range fp {
				dst := jac.blocks[i][k].Data()
				pd, md := fp[i].Data(), fm[i].Data()
				for e := range pd {
					dst[e*n+c] = (pd[e] - md[e]) / (2 * h)
				}
			}
		}
	}

	return jac, aux, nil
}

// evalShaped evaluates fn and checks that its outputs keep the given shapes.
func evalShaped(fn Func, b tensor.Backend, xs []*tensor.RawTensor, shapes []tensor.Shape) ([]*tensor.RawTensor, error) {
	outputs, _, err := fn(b, xs)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFunc, "evaluation failed: %v", err)
	}
	if len(outputs) != len(shapes) {
		return nil, errors.Wrapf(ErrInvalidFunc, "output count changed from %d to %d", len(shapes), len(outputs))
	}
	for i, out := range outputs {
		if out == nil || !out.Shape().Equal(shapes[i]) {
			return nil, errors.Wrapf(ErrInvalidFunc, "output %d changed shape", i)
		}
	}
	return outputs, nil
}

func checkOutputs(outputs []*tensor.RawTensor) error {
	for i, out := range outputs {
		if out == nil {
			return errors.Wrapf(ErrInvalidFunc, "output %d is nil", i)
		}
	}
	return nil
}

func cloneAll(xs []*tensor.RawTensor) []*tensor.RawTensor {
	out := make([]*tensor.RawTensor, len(xs))
	for i, x := range xs {
		out[i] = x.Clone()
	}
	return out
}
