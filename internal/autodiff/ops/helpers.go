package ops

import "github.com/born-ml/equivariant/internal/tensor"

// reduceBroadcast reduces a gradient tensor to match the target shape.
// Binary ops only broadcast single-element operands, so the reduction is
// either a copy (shapes match) or a total sum reshaped to the target.
//
// Example:
//
//	Forward: a[1] * b[3,4] -> c[3,4]  (a was broadcast)
//	Backward: grad_c[3,4] -> grad_a[1] (sum of all elements)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}
	summed := backend.Sum(grad)
	if summed.Shape().Equal(targetShape) {
		return summed
	}
	return backend.Reshape(summed, targetShape)
}
