// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package irreps describes tensors that transform under rotations and
// inversion as a direct sum of irreducible representations.
//
// An Irrep is a degree l and a parity p, written "1o" (l=1, odd) or "2e"
// (l=2, even). Irreps is an ordered list of multiplicities times irreps,
// written "2x0e+1o". An Array pairs Irreps with one block of shape
// (leading…, mul, 2l+1) per descriptor.
//
// Example:
//
//	irs := irreps.MustParse("2x0e+1o")
//	x, err := irreps.FromArray(irs, tensor.MustFromSlice([]float64{1, 2, 3, 4, 5}, tensor.Shape{5}))
//	// x.Block(0) has shape (2, 1), x.Block(1) has shape (1, 3)
package irreps

import (
	"github.com/born-ml/equivariant/internal/cg"
	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/tensor"
)

// Parity values.
const (
	Even = irreps.Even
	Odd  = irreps.Odd
)

// Irrep is one irreducible representation.
type Irrep = irreps.Irrep

// MulIrrep is Mul stacked copies of one irrep.
type MulIrrep = irreps.MulIrrep

// Irreps is an ordered list of irrep descriptors.
type Irreps = irreps.Irreps

// Array is an irrep tensor.
type Array = irreps.Array

// Slice is a half-open range along the concatenated last axis.
type Slice = irreps.Slice

// Sentinel errors.
var (
	ErrInvalidIrreps = irreps.ErrInvalidIrreps
	ErrShapeMismatch = irreps.ErrShapeMismatch
	// ErrInvalidDegrees reports Clebsch-Gordan degrees that violate the triangle rule.
	ErrInvalidDegrees = cg.ErrInvalidDegrees
)

// NewIrrep validates and returns an irrep.
func NewIrrep(l, p int) (Irrep, error) {
	return irreps.NewIrrep(l, p)
}

// ParseIrrep parses "1o", "2e" or "3y" (parity (-1)^l).
func ParseIrrep(s string) (Irrep, error) {
	return irreps.ParseIrrep(s)
}

// New validates the descriptors and returns them as an Irreps.
func New(mis ...MulIrrep) (Irreps, error) {
	return irreps.New(mis...)
}

// Parse parses an irreps string such as "2x0e + 1o".
func Parse(s string) (Irreps, error) {
	return irreps.Parse(s)
}

// MustParse is Parse that panics on error.
func MustParse(s string) Irreps {
	return irreps.MustParse(s)
}

// SphericalHarmonics returns 1x0+1x1+…+1xlmax with parity pVal·pArg^l.
func SphericalHarmonics(lmax, pVal, pArg int) (Irreps, error) {
	return irreps.SphericalHarmonics(lmax, pVal, pArg)
}

// FromList builds an Array from one block per descriptor. The Array takes
// ownership of the blocks.
func FromList(irs Irreps, blocks []*tensor.RawTensor, leading tensor.Shape) (*Array, error) {
	return irreps.FromList(irs, blocks, leading)
}

// FromArray splits a (leading…, irs.Dim()) tensor into blocks.
func FromArray(irs Irreps, flat *tensor.RawTensor) (*Array, error) {
	return irreps.FromArray(irs, flat)
}

// Zeros returns an Array of zeros.
func Zeros(irs Irreps, leading tensor.Shape) *Array {
	return irreps.Zeros(irs, leading)
}

// ClebschGordan returns the real-basis coupling tensor of shape
// (2l1+1, 2l2+1, 2l3+1) with Frobenius norm 1.
func ClebschGordan(l1, l2, l3 int) (*tensor.RawTensor, error) {
	return cg.ClebschGordan(l1, l2, l3)
}

// Coupled returns the degrees |l1-l2| .. l1+l2.
func Coupled(l1, l2 int) []int {
	return cg.Coupled(l1, l2)
}
