package s2grid

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/parallel"
	"github.com/born-ml/equivariant/internal/tensor"
)

// Option configures a transform.
type Option func(*options)

type options struct {
	parallel parallel.Config
}

// WithParallel sets how the independent Fourier orders are spread over
// goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.parallel = cfg
	}
}

func newOptions(opts []Option) *options {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1 // one order is already a full matrix product
	o := &options{parallel: cfg}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ToFourier evaluates the coefficients x at the colatitude nodes of q, keeping
// the longitude direction in the real Fourier basis.
//
// x must hold 1x0+1x1+…+1xlmax with parity p_val·p_arg^l. The result has
// shape (leading…, resBeta, 2·lmax+1), orders laid out as in RFFT.
func ToFourier(x *irreps.Array, resBeta int, q Quadrature, opts ...Option) (*tensor.RawTensor, error) {
	lmax, err := checkSphericalHarmonics(x.Irreps())
	if err != nil {
		return nil, err
	}
	betas, _, _, err := Grid(resBeta, 1, q)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)

	tab := Legendre(lmax, betas)
	leading := x.LeadingShape()
	batch := leading.NumElements()
	width := 2*lmax + 1

	out := tensor.Zeros(leading.Concat(tensor.Shape{resBeta, width}))
	dst := out.Data()

	parallel.For(width, func(idx int) {
		m := orderAt(idx, lmax)
		am := abs(m)

		coeffs := mat.NewDense(lmax+1-am, batch, nil)
		for l := am; l <= lmax; l++ {
			block := x.Block(l).Data()
			for b := 0; b < batch; b++ {
				coeffs.Set(l-am, b, block[b*(2*l+1)+l+m])
			}
		}

		var f mat.Dense
		f.Mul(tab.Order(am), coeffs)
		for b := 0; b < batch; b++ {
			for i := 0; i < resBeta; i++ {
				dst[(b*resBeta+i)*width+idx] = f.At(i, b)
			}
		}
	}, o.parallel)

	return out, nil
}

// ToGrid samples the coefficients x on the resBeta × resAlpha grid of q.
// The result has shape (leading…, resBeta, resAlpha). resAlpha must be at
// least 2·lmax+1.
func ToGrid(x *irreps.Array, resBeta, resAlpha int, q Quadrature, opts ...Option) (*tensor.RawTensor, error) {
	if lmax := x.Irreps().LMax(); resAlpha < 2*lmax+1 {
		return nil, errors.Wrapf(ErrInvalidInput, "res_alpha=%d is too small for lmax=%d, need at least %d",
			resAlpha, lmax, 2*lmax+1)
	}
	f, err := ToFourier(x, resBeta, q, opts...)
	if err != nil {
		return nil, err
	}
	return IRFFT(f, resAlpha)
}

// FromFourier projects a (leading…, resBeta, 2l+1) Fourier-domain signal onto
// the spherical harmonics of degree 0..lmax. Orders beyond l are taken as
// zero; orders beyond lmax are dropped.
func FromFourier(f *tensor.RawTensor, lmax, pVal, pArg int, q Quadrature, opts ...Option) (*irreps.Array, error) {
	shape := f.Shape()
	if len(shape) < 2 || shape[len(shape)-1]%2 == 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "fourier signal must have shape (..., res_beta, 2l+1), got %v", shape)
	}
	irs, err := irreps.SphericalHarmonics(lmax, pVal, pArg)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "%v", err)
	}
	resBeta := shape[len(shape)-2]
	betas, _, weights, err := Grid(resBeta, 1, q)
	if err != nil {
		return nil, err
	}
	if need := q.MinResBeta(lmax); resBeta < need {
		return nil, errors.Wrapf(ErrInvalidInput, "res_beta=%d is too small for lmax=%d with %s quadrature, need at least %d",
			resBeta, lmax, q, need)
	}
	o := newOptions(opts)

	tab := Legendre(lmax, betas)
	inWidth := shape[len(shape)-1]
	lf := (inWidth - 1) / 2
	leading := shape[:len(shape)-2].Clone()
	batch := leading.NumElements()
	src := f.Data()

	blocks := make([]*tensor.RawTensor, lmax+1)
	for l := range blocks {
		blocks[l] = tensor.Zeros(leading.Concat(tensor.Shape{1, 2*l + 1}))
	}

	parallel.For(2*lmax+1, func(idx int) {
		m := orderAt(idx, lmax)
		am := abs(m)
		if am > lf {
			return
		}
		col := FourierIndex(m, lf)

		weighted := mat.NewDense(resBeta, batch, nil)
		for b := 0; b < batch; b++ {
			for i := 0; i < resBeta; i++ {
				weighted.Set(i, b, weights[i]/2*src[(b*resBeta+i)*inWidth+col])
			}
		}

		var c mat.Dense
		c.Mul(tab.Order(am).T(), weighted)
		for l := am; l <= lmax; l++ {
			block := blocks[l].Data()
			for b := 0; b < batch; b++ {
				block[b*(2*l+1)+l+m] = c.At(l-am, b)
			}
		}
	}, o.parallel)

	return irreps.FromList(irs, blocks, leading)
}

// FromGrid recovers the coefficients of degree 0..lmax from samples of shape
// (leading…, resBeta, resAlpha) on the grid of q.
func FromGrid(g *tensor.RawTensor, lmax, pVal, pArg int, q Quadrature, opts ...Option) (*irreps.Array, error) {
	if len(g.Shape()) < 2 {
		return nil, errors.Wrapf(ErrInvalidInput, "grid signal must have shape (..., res_beta, res_alpha), got %v", g.Shape())
	}
	if lmax < 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "lmax must be non-negative, got %d", lmax)
	}
	f, err := RFFT(g, lmax)
	if err != nil {
		return nil, err
	}
	return FromFourier(f, lmax, pVal, pArg, q, opts...)
}

// To samples x on the grid when fft is true and stops in the Fourier domain
// otherwise.
func To(x *irreps.Array, resBeta, resAlpha int, q Quadrature, fft bool, opts ...Option) (*tensor.RawTensor, error) {
	if fft {
		return ToGrid(x, resBeta, resAlpha, q, opts...)
	}
	return ToFourier(x, resBeta, q, opts...)
}

// From is the inverse of To with the same fft flag.
func From(s *tensor.RawTensor, lmax, pVal, pArg int, q Quadrature, fft bool, opts ...Option) (*irreps.Array, error) {
	if fft {
		return FromGrid(s, lmax, pVal, pArg, q, opts...)
	}
	return FromFourier(s, lmax, pVal, pArg, q, opts...)
}

// checkSphericalHarmonics returns lmax if irs is 1x0+1x1+…+1xlmax with
// parity p_val·p_arg^l.
func checkSphericalHarmonics(irs irreps.Irreps) (int, error) {
	if irs.Len() == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "irreps must not be empty")
	}
	lmax := irs.Len() - 1
	pVal := irs[0].Ir.P
	pArg := 1
	if lmax > 0 {
		pArg = irs[1].Ir.P * pVal
	}
	want, err := irreps.SphericalHarmonics(lmax, pVal, pArg)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidInput, "%v", err)
	}
	if !irs.Equal(want) {
		return 0, errors.Wrapf(ErrInvalidInput, "irreps %s are not spherical harmonics degree 0..%d, expected e.g. %s",
			irs, lmax, want)
	}
	return lmax, nil
}

// orderAt inverts FourierIndex.
func orderAt(idx, l int) int {
	if idx <= l {
		return idx
	}
	return idx - (2*l + 1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
