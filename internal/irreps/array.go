package irreps

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/equivariant/internal/tensor"
)

// Array is an irrep tensor: an ordered list of descriptors, each paired with
// one block of shape (leading…, mul, 2l+1).
//
// The block list belongs to the Array. FromList takes ownership of the
// blocks it is given; the caller must not modify them afterwards.
type Array struct {
	irreps  Irreps
	leading tensor.Shape
	blocks  []*tensor.RawTensor
}

// FromList builds an Array from one block per descriptor.
// Every block must have shape leading ++ (mul, dim) of its descriptor.
func FromList(irs Irreps, blocks []*tensor.RawTensor, leading tensor.Shape) (*Array, error) {
	if len(blocks) != len(irs) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d blocks for %d irreps %s", len(blocks), len(irs), irs)
	}
	for i, mi := range irs {
		want := leading.Concat(tensor.Shape{mi.Mul, mi.Ir.Dim()})
		if blocks[i] == nil {
			return nil, errors.Wrapf(ErrShapeMismatch, "block %d (%s) is nil", i, mi)
		}
		if !blocks[i].Shape().Equal(want) {
			return nil, errors.Wrapf(ErrShapeMismatch, "block %d (%s) has shape %v, want %v",
				i, mi, blocks[i].Shape(), want)
		}
	}
	return &Array{
		irreps:  append(Irreps(nil), irs...),
		leading: leading.Clone(),
		blocks:  append([]*tensor.RawTensor(nil), blocks...),
	}, nil
}

// FromArray splits a tensor of shape (leading…, irs.Dim()) into blocks.
func FromArray(irs Irreps, flat *tensor.RawTensor) (*Array, error) {
	shape := flat.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != irs.Dim() {
		return nil, errors.Wrapf(ErrShapeMismatch, "last axis of %v does not match dimension %d of %s",
			shape, irs.Dim(), irs)
	}
	leading := shape[:len(shape)-1].Clone()
	batch := leading.NumElements()
	dim := irs.Dim()
	src := flat.Data()

	blocks := make([]*tensor.RawTensor, len(irs))
	for i, sl := range irs.Slices() {
		mi := irs[i]
		block := tensor.Zeros(leading.Concat(tensor.Shape{mi.Mul, mi.Ir.Dim()}))
		width := sl.Stop - sl.Start
		dst := block.Data()
		for b := 0; b < batch; b++ {
			copy(dst[b*width:(b+1)*width], src[b*dim+sl.Start:b*dim+sl.Stop])
		}
		blocks[i] = block
	}
	return FromList(irs, blocks, leading)
}

// Zeros returns an Array of zeros.
func Zeros(irs Irreps, leading tensor.Shape) *Array {
	blocks := make([]*tensor.RawTensor, len(irs))
	for i, mi := range irs {
		blocks[i] = tensor.Zeros(leading.Concat(tensor.Shape{mi.Mul, mi.Ir.Dim()}))
	}
	return &Array{irreps: append(Irreps(nil), irs...), leading: leading.Clone(), blocks: blocks}
}

// Irreps returns the descriptor list.
func (a *Array) Irreps() Irreps {
	return a.irreps
}

// LeadingShape returns the batch shape shared by all blocks.
func (a *Array) LeadingShape() tensor.Shape {
	return a.leading
}

// Len returns the number of blocks.
func (a *Array) Len() int {
	return len(a.blocks)
}

// Block returns block i.
// WARNING: The block is not copied; treat it as read-only.
func (a *Array) Block(i int) *tensor.RawTensor {
	return a.blocks[i]
}

// List returns the blocks in descriptor order. The slice is fresh, the
// blocks are not copied.
func (a *Array) List() []*tensor.RawTensor {
	return append([]*tensor.RawTensor(nil), a.blocks...)
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	blocks := make([]*tensor.RawTensor, len(a.blocks))
	for i, b := range a.blocks {
		blocks[i] = b.Clone()
	}
	return &Array{irreps: append(Irreps(nil), a.irreps...), leading: a.leading.Clone(), blocks: blocks}
}

// Concat returns all blocks laid side by side: shape (leading…, Dim).
func (a *Array) Concat() *tensor.RawTensor {
	dim := a.irreps.Dim()
	batch := a.leading.NumElements()
	if dim == 0 {
		return nil // no valid tensor shape has a zero-sized axis
	}
	out := tensor.Zeros(a.leading.Concat(tensor.Shape{dim}))
	dst := out.Data()
	for i, sl := range a.irreps.Slices() {
		width := sl.Stop - sl.Start
		src := a.blocks[i].Data()
		for b := 0; b < batch; b++ {
			copy(dst[b*dim+sl.Start:b*dim+sl.Stop], src[b*width:(b+1)*width])
		}
	}
	return out
}

// String returns a short description such as "IrrepsArray[0e+1o](2,)".
func (a *Array) String() string {
	return fmt.Sprintf("IrrepsArray[%s]%v", a.irreps, a.leading)
}
