// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/equivariant/internal/activation"
	"github.com/born-ml/equivariant/internal/autodiff"
	"github.com/born-ml/equivariant/internal/gradient"
	"github.com/born-ml/equivariant/internal/irreps"
)

// ActivationFunc is a scalar nonlinearity. A nil ActivationFunc leaves its
// block unchanged.
type ActivationFunc = activation.Func

// Activation applies one normalized nonlinearity per scalar block.
type Activation = activation.Activation

// Normalization defaults.
const (
	DefaultSeed    = activation.DefaultSeed
	DefaultSamples = activation.DefaultSamples
)

// ErrInvalidActivation reports activations that cannot be applied to the
// given irreps.
var ErrInvalidActivation = activation.ErrInvalidInput

// NewActivation builds an Activation with one entry of acts per descriptor.
//
// Example:
//
//	act, err := nn.NewActivation(irreps.MustParse("0o+1e"), []nn.ActivationFunc{math.Sin, nil})
func NewActivation(irrepsIn irreps.Irreps, acts []ActivationFunc) (*Activation, error) {
	return activation.New(irrepsIn, acts)
}

// Parity reports whether phi is even (+1), odd (-1) or neither (0).
func Parity(phi ActivationFunc) int {
	return activation.Parity(phi)
}

// Normalize rescales phi to unit second moment on n standard normal samples
// drawn with seed.
func Normalize(phi ActivationFunc, seed uint64, n int) ActivationFunc {
	return activation.Normalize(phi, seed, n)
}

// LookupActivation returns a registered nonlinearity by name ("tanh",
// "silu", "none", ...).
func LookupActivation(name string) (ActivationFunc, error) {
	return activation.Lookup(name)
}

// GradFn is a function between irrep tensors written against a backend.
type GradFn = gradient.Fn

// GradOption configures Grad.
type GradOption = gradient.Option

// ErrGradInternal reports a Jacobian inconsistent with its irreps.
var ErrGradInternal = gradient.ErrInternal

// Grad returns the equivariant gradient of fun.
func Grad(fun GradFn, opts ...GradOption) func(x *irreps.Array) (*irreps.Array, error) {
	return gradient.Grad(fun, opts...)
}

// WithFiniteDifference makes Grad use central differences with the given
// step instead of the gradient tape.
func WithFiniteDifference(step float64) GradOption {
	return gradient.WithDifferentiator(autodiff.FiniteDifference{Step: step})
}

// WithDifferentiator sets the Jacobian engine used by Grad.
func WithDifferentiator(d autodiff.Differentiator) GradOption {
	return gradient.WithDifferentiator(d)
}
