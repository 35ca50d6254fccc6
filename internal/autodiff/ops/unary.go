package ops

import "github.com/born-ml/equivariant/internal/tensor"

// unaryOp holds the input and output of a single-input operation.
type unaryOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensor [x].
func (op *unaryOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *unaryOp) Output() *tensor.RawTensor { return op.output }

// NegOp represents negation: y = -x.
type NegOp struct{ unaryOp }

// NewNegOp creates a new NegOp.
func NewNegOp(input, output *tensor.RawTensor) *NegOp {
	return &NegOp{unaryOp{input, output}}
}

// Backward computes grad_input = -grad_output.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(outputGrad)}
}

// ExpOp represents the exponential operation: y = exp(x).
//
// Backward pass:
//   - d(exp(x))/dx = exp(x) = y
//   - grad_input = grad_output * output
type ExpOp struct{ unaryOp }

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input, output}}
}

// Backward computes input gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// SinOp represents the sine operation: y = sin(x).
//
// Backward pass:
//   - grad_input = grad_output * cos(input)
type SinOp struct{ unaryOp }

// NewSinOp creates a new SinOp.
func NewSinOp(input, output *tensor.RawTensor) *SinOp {
	return &SinOp{unaryOp{input, output}}
}

// Backward computes input gradient for sin.
func (op *SinOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Cos(op.input))}
}

// CosOp represents the cosine operation: y = cos(x).
//
// Backward pass:
//   - grad_input = -grad_output * sin(input)
type CosOp struct{ unaryOp }

// NewCosOp creates a new CosOp.
func NewCosOp(input, output *tensor.RawTensor) *CosOp {
	return &CosOp{unaryOp{input, output}}
}

// Backward computes input gradient for cos.
func (op *CosOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(backend.Mul(outputGrad, backend.Sin(op.input)))}
}

// TanhOp represents the hyperbolic tangent: y = tanh(x).
//
// Backward pass:
//   - grad_input = grad_output * (1 - y²)
type TanhOp struct{ unaryOp }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input, output}}
}

// Backward computes input gradient for tanh.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	oneMinusY2 := backend.AddScalar(backend.Neg(backend.Square(op.output)), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, oneMinusY2)}
}

// SquareOp represents y = x².
//
// Backward pass:
//   - grad_input = 2 * x * grad_output
type SquareOp struct{ unaryOp }

// NewSquareOp creates a new SquareOp.
func NewSquareOp(input, output *tensor.RawTensor) *SquareOp {
	return &SquareOp{unaryOp{input, output}}
}

// Backward computes input gradient for square.
func (op *SquareOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.MulScalar(op.input, 2))}
}

// MulScalarOp represents y = c * x for a constant c.
type MulScalarOp struct {
	unaryOp
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{unaryOp{input, output}, scalar}
}

// Backward computes grad_input = c * grad_output.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// AddScalarOp represents y = x + c for a constant c.
type AddScalarOp struct{ unaryOp }

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{unaryOp{input, output}}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}
