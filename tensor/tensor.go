// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/equivariant/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// RawTensor is a dense row-major float64 array.
type RawTensor = tensor.RawTensor

// Backend is the set of element-wise and reduction ops differentiable
// functions are written against.
type Backend = tensor.Backend

// NewRaw creates a zero-filled tensor, validating the shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4})
func Zeros(shape Shape) *RawTensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *RawTensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *RawTensor {
	return tensor.Full(shape, value)
}

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	t, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice(data []float64, shape Shape) *RawTensor {
	return tensor.MustFromSlice(data, shape)
}
