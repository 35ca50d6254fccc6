// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the Jacobian engines used by the equivariant
// gradient.
//
// A differentiable function is written against tensor.Backend. ReverseMode
// records it on a gradient tape through an autodiff backend and runs one
// backward sweep per output element; FiniteDifference treats it as a black
// box and uses central differences.
//
// Example:
//
//	import (
//	    "github.com/born-ml/equivariant/autodiff"
//	    "github.com/born-ml/equivariant/tensor"
//	)
//
//	func main() {
//	    square := func(b tensor.Backend, xs []*tensor.RawTensor) ([]*tensor.RawTensor, any, error) {
//	        return []*tensor.RawTensor{b.Square(xs[0])}, nil, nil
//	    }
//	    x := tensor.MustFromSlice([]float64{1, 2}, tensor.Shape{2})
//	    jac, _, err := autodiff.ReverseMode{}.Jacobian(square, []*tensor.RawTensor{x})
//	    // jac.Block(0, 0) = [[2, 0], [0, 4]]
//	}
package autodiff

import (
	"github.com/born-ml/equivariant/internal/autodiff"
	"github.com/born-ml/equivariant/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// Func is a function over a flattened list of tensors with an auxiliary
// side channel.
type Func = autodiff.Func

// Differentiator computes the block-pairwise Jacobian of a Func.
type Differentiator = autodiff.Differentiator

// Jacobian holds ∂outputs[i]/∂inputs[k] for every pair.
type Jacobian = autodiff.Jacobian

// ReverseMode computes Jacobians with a gradient tape.
type ReverseMode = autodiff.ReverseMode

// FiniteDifference computes Jacobians with central differences.
type FiniteDifference = autodiff.FiniteDifference

// ErrInvalidFunc is returned when the differentiated function fails or
// changes its output shapes.
var ErrInvalidFunc = autodiff.ErrInvalidFunc
