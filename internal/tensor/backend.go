package tensor

// Backend defines the operations differentiable functions are written against.
// Backends handle the actual computation; decorators (autodiff) record it.
//
// Binary operations accept operands of equal shape, or one operand holding a
// single element that is broadcast over the other. Shape violations panic
// with an op-prefixed message.
//
// Implementations:
//   - CPU: internal/backend/cpu
//   - Autodiff: internal/autodiff decorator over any Backend
type Backend interface {
	// Element-wise binary operations
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor

	// Math operations (element-wise)
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Square(x *RawTensor) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) *RawTensor // total sum, shape {1}

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Metadata
	Name() string
}
