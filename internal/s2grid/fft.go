package s2grid

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/born-ml/equivariant/internal/tensor"
)

// FourierIndex returns the position of order m in the [0, 1, …, l, -l, …, -1]
// layout of width 2l+1.
func FourierIndex(m, l int) int {
	if m >= 0 {
		return m
	}
	return 2*l + 1 + m
}

// RFFT projects the last axis of x (length n >= 2l+1) onto the real Fourier
// basis of orders -l..l. The result replaces that axis with 2l+1
// coefficients in the [0, 1, …, l, -l, …, -1] layout, normalized so that
// IRFFT reproduces band-limited samples exactly.
func RFFT(x *tensor.RawTensor, l int) (*tensor.RawTensor, error) {
	shape := x.Shape()
	if l < 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "rfft: degree must be non-negative, got %d", l)
	}
	if len(shape) == 0 || shape[len(shape)-1] < 2*l+1 {
		return nil, errors.Wrapf(ErrInvalidInput, "rfft: last axis of %v must have at least %d samples", shape, 2*l+1)
	}
	n := shape[len(shape)-1]
	width := 2*l + 1
	rows := x.NumElements() / n

	out := tensor.Zeros(shape[:len(shape)-1].Concat(tensor.Shape{width}))
	src, dst := x.Data(), out.Data()

	fft := fourier.NewFFT(n)
	coeff := make([]complex128, n/2+1)
	scale := 1 / float64(n)
	for r := 0; r < rows; r++ {
		coeff = fft.Coefficients(coeff, src[r*n:(r+1)*n])
		row := dst[r*width : (r+1)*width]
		row[0] = real(coeff[0]) * scale
		for m := 1; m <= l; m++ {
			row[FourierIndex(m, l)] = math.Sqrt2 * real(coeff[m]) * scale
			row[FourierIndex(-m, l)] = -math.Sqrt2 * imag(coeff[m]) * scale
		}
	}
	return out, nil
}

// IRFFT synthesizes n uniformly spaced samples from the last axis of x, which
// holds 2l+1 coefficients in the layout produced by RFFT. n must be at
// least 2l+1.
func IRFFT(x *tensor.RawTensor, n int) (*tensor.RawTensor, error) {
	shape := x.Shape()
	if len(shape) == 0 || shape[len(shape)-1]%2 == 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "irfft: last axis of %v must have odd length 2l+1", shape)
	}
	width := shape[len(shape)-1]
	l := (width - 1) / 2
	if n < width {
		return nil, errors.Wrapf(ErrInvalidInput, "irfft: %d samples cannot hold degree %d, need at least %d", n, l, width)
	}
	rows := x.NumElements() / width

	out := tensor.Zeros(shape[:len(shape)-1].Concat(tensor.Shape{n}))
	src, dst := x.Data(), out.Data()

	fft := fourier.NewFFT(n)
	coeff := make([]complex128, n/2+1)
	seq := make([]float64, n)
	fn := float64(n)
	for r := 0; r < rows; r++ {
		row := src[r*width : (r+1)*width]
		clear(coeff)
		coeff[0] = complex(fn*row[0], 0)
		for m := 1; m <= l; m++ {
			coeff[m] = complex(fn*row[FourierIndex(m, l)], -fn*row[FourierIndex(-m, l)]) / math.Sqrt2
		}
		seq = fft.Sequence(seq, coeff)
		for k, v := range seq {
			dst[r*n+k] = v / fn
		}
	}
	return out, nil
}
