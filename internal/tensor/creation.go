package tensor

import "fmt"

// Zeros creates a tensor filled with zeros.
// Panics on an invalid shape.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4})
func Zeros(shape Shape) *RawTensor {
	raw, err := NewRaw(shape)
	if err != nil {
		panic(err) // Callers pass shapes derived from validated tensors
	}
	return raw
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *RawTensor {
	raw := Zeros(shape)
	for i := range raw.data {
		raw.data[i] = value
	}
	return raw
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *RawTensor {
	return Full(shape, 1)
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	copy(raw.data, data)

	return raw, nil
}

// MustFromSlice is FromSlice that panics on error. Intended for tests and
// literals whose shape is known to be right.
func MustFromSlice(data []float64, shape Shape) *RawTensor {
	raw, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return raw
}
