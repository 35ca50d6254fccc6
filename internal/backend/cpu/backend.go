// Package cpu implements the reference CPU backend in pure Go.
package cpu

import (
	"fmt"

	"github.com/born-ml/equivariant/internal/parallel"
	"github.com/born-ml/equivariant/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
// Wide element-wise loops are split across goroutines according to cfg.
type CPUBackend struct {
	cfg parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return &CPUBackend{cfg: defaultConfig()}
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{cfg: cfg}
}

func defaultConfig() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 4096 // element-wise kernels are cheap
	return cfg
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float64) float64 { return x / y })
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unary("mulscalar", x, func(v float64) float64 { return v * scalar })
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unary("addscalar", x, func(v float64) float64 { return v + scalar })
}

// Sum reduces all elements to a tensor of shape {1}.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.Zeros(tensor.Shape{1})
	var sum float64
	for _, v := range x.Data() {
		sum += v
	}
	result.Data()[0] = sum
	return result
}

// Reshape returns a copy of t with a new shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.Reshape(newShape)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// binary applies f element-wise. Operands must have equal shapes, or one of
// them must hold a single element which is broadcast over the other.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	ad, bd := a.Data(), b.Data()

	switch {
	case a.Shape().Equal(b.Shape()):
		result := newResult(name, a.Shape())
		dst := result.Data()
		parallel.ForRange(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f(ad[i], bd[i])
			}
		}, cpu.cfg)
		return result
	case b.NumElements() == 1:
		result := newResult(name, a.Shape())
		dst, y := result.Data(), bd[0]
		parallel.ForRange(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f(ad[i], y)
			}
		}, cpu.cfg)
		return result
	case a.NumElements() == 1:
		result := newResult(name, b.Shape())
		dst, x := result.Data(), ad[0]
		parallel.ForRange(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f(x, bd[i])
			}
		}, cpu.cfg)
		return result
	default:
		panic(fmt.Sprintf("%s: shapes not compatible: %v vs %v", name, a.Shape(), b.Shape()))
	}
}

// unary applies f element-wise into a new tensor.
func (cpu *CPUBackend) unary(name string, x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	result := newResult(name, x.Shape())
	src, dst := x.Data(), result.Data()
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	}, cpu.cfg)
	return result
}

func newResult(name string, shape tensor.Shape) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}
	return result
}
