package gradient

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/equivariant/internal/autodiff"
	"github.com/born-ml/equivariant/internal/cg"
	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/parallel"
	"github.com/born-ml/equivariant/internal/tensor"
)

func identity(_ tensor.Backend, x *irreps.Array) (*irreps.Array, error) {
	return x, nil
}

func randomArray(t *testing.T, rng *rand.Rand, irs string, leading tensor.Shape) *irreps.Array {
	t.Helper()
	ir := irreps.MustParse(irs)
	flat := tensor.Zeros(leading.Concat(tensor.Shape{ir.Dim()}))
	for i := range flat.Data() {
		flat.Data()[i] = rng.NormFloat64()
	}
	x, err := irreps.FromArray(ir, flat)
	require.NoError(t, err)
	return x
}

// mix maps 2x0e+1o to 1o+2x0e: (v·Σs², sin s).
func mix(b tensor.Backend, x *irreps.Array) (*irreps.Array, error) {
	s, v := x.Block(0), x.Block(1)
	y0 := b.Mul(v, b.Sum(b.Square(s)))
	y1 := b.Sin(s)
	return irreps.FromList(irreps.MustParse("1o+2x0e"), []*tensor.RawTensor{y0, y1}, tensor.Shape{})
}

func TestGrad_IdentityVector(t *testing.T) {
	x, err := irreps.FromArray(irreps.MustParse("1o"), tensor.MustFromSlice([]float64{1, 2, 3}, tensor.Shape{3}))
	require.NoError(t, err)

	g, err := Grad(identity)(x)
	require.NoError(t, err)

	assert.Equal(t, "0e+1e+2e", g.Irreps().String())
	assert.Equal(t, tensor.Shape{}, g.LeadingShape())

	// The identity Jacobian only has a trace part.
	assert.InDelta(t, math.Sqrt(3), g.Block(0).At(0, 0), 1e-12)
	assert.True(t, floats.EqualApprox(make([]float64, 3), g.Block(1).Data(), 1e-12))
	assert.True(t, floats.EqualApprox(make([]float64, 5), g.Block(2).Data(), 1e-12))
}

func TestGrad_ScaleWithLeadingShape(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	x := randomArray(t, rng, "1o", tensor.Shape{2})

	double := func(b tensor.Backend, x *irreps.Array) (*irreps.Array, error) {
		return irreps.FromList(x.Irreps(), []*tensor.RawTensor{b.MulScalar(x.Block(0), 2)}, x.LeadingShape())
	}
	g, err := Grad(double)(x)
	require.NoError(t, err)

	assert.Equal(t, "0e+1e+2e", g.Irreps().String())
	assert.Equal(t, tensor.Shape{2, 2}, g.LeadingShape())

	for l := 0; l <= 2; l++ {
		c, err := cg.ClebschGordan(1, 1, l)
		require.NoError(t, err)
		block := g.Block(l)
		require.Equal(t, tensor.Shape{2, 2, 1, 2*l + 1}, block.Shape())
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				for k := 0; k <= 2*l; k++ {
					want := 0.0
					if a == b {
						for i := 0; i < 3; i++ {
							want += 2 * math.Sqrt(float64(2*l+1)) * c.At(i, i, k)
						}
					}
					assert.InDelta(t, want, block.At(a, b, 0, k), 1e-12, "l=%d a=%d b=%d k=%d", l, a, b, k)
				}
			}
		}
	}
}

func TestGrad_ScalarTimesVector(t *testing.T) {
	w := []float64{0.5, -1, 2}
	scaleVector := func(b tensor.Backend, x *irreps.Array) (*irreps.Array, error) {
		y := b.Mul(x.Block(0), tensor.MustFromSlice(w, tensor.Shape{1, 3}))
		return irreps.FromList(irreps.MustParse("1o"), []*tensor.RawTensor{y}, tensor.Shape{})
	}
	x, err := irreps.FromArray(irreps.MustParse("0e"), tensor.MustFromSlice([]float64{3}, tensor.Shape{1}))
	require.NoError(t, err)

	g, err := Grad(scaleVector)(x)
	require.NoError(t, err)
	assert.Equal(t, "1o", g.Irreps().String())
	assert.True(t, floats.EqualApprox(w, g.Block(0).Data(), 1e-12), "%v", g.Block(0).Data())
}

func TestGrad_Irreps(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	x := randomArray(t, rng, "2x0e+1o", tensor.Shape{})

	g, err := Grad(mix)(x)
	require.NoError(t, err)
	assert.Equal(t, "2x1o+0e+1e+2e+4x0e+2x1o", g.Irreps().String())
	for i, mi := range g.Irreps() {
		assert.Equal(t, tensor.Shape{mi.Mul, mi.Ir.Dim()}, g.Block(i).Shape())
	}
}

func TestGrad_PreservesNorm(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	x := randomArray(t, rng, "2x0e+1o", tensor.Shape{})

	g, err := Grad(mix)(x)
	require.NoError(t, err)

	naked := func(b tensor.Backend, xs []*tensor.RawTensor) ([]*tensor.RawTensor, any, error) {
		in, err := irreps.FromList(x.Irreps(), xs, x.LeadingShape())
		if err != nil {
			return nil, nil, err
		}
		y, err := mix(b, in)
		if err != nil {
			return nil, nil, err
		}
		return y.List(), nil, nil
	}
	jac, _, err := autodiff.ReverseMode{}.Jacobian(naked, x.List())
	require.NoError(t, err)

	var dense, coupled float64
	for i := 0; i < jac.NumOutputs(); i++ {
		for j := 0; j < jac.NumInputs(); j++ {
			d := jac.Block(i, j).Data()
			dense += floats.Dot(d, d)
		}
	}
	for _, block := range g.List() {
		coupled += floats.Dot(block.Data(), block.Data())
	}
	assert.Greater(t, dense, 0.0)
	assert.InDelta(t, dense, coupled, 1e-10)
}

func TestGrad_DifferentiatorsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	x := randomArray(t, rng, "2x0e+1o", tensor.Shape{})

	reverse, err := Grad(mix, WithParallel(parallel.Sequential()))(x)
	require.NoError(t, err)
	numeric, err := Grad(mix, WithDifferentiator(autodiff.FiniteDifference{}))(x)
	require.NoError(t, err)

	require.True(t, reverse.Irreps().Equal(numeric.Irreps()))
	for i := 0; i < reverse.Len(); i++ {
		assert.True(t, floats.EqualApprox(reverse.Block(i).Data(), numeric.Block(i).Data(), 1e-6), "block %d", i)
	}
}

func TestGrad_Errors(t *testing.T) {
	x := irreps.Zeros(irreps.MustParse("0e"), tensor.Shape{})

	boom := errors.New("boom")
	_, err := Grad(func(tensor.Backend, *irreps.Array) (*irreps.Array, error) { return nil, boom })(x)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autodiff.ErrInvalidFunc))
	assert.Contains(t, err.Error(), "boom")

	_, err = Grad(func(tensor.Backend, *irreps.Array) (*irreps.Array, error) { return nil, nil })(x)
	assert.True(t, errors.Is(err, autodiff.ErrInvalidFunc))

	_, err = Grad(identity, WithDifferentiator(badAux{}))(x)
	assert.True(t, errors.Is(err, ErrInternal))

	_, err = Grad(identity, WithDifferentiator(badShape{}))(x)
	assert.True(t, errors.Is(err, ErrInternal))
}

// badAux drops the auxiliary output.
type badAux struct{}

func (badAux) Jacobian(fn autodiff.Func, xs []*tensor.RawTensor) (*autodiff.Jacobian, any, error) {
	jac, _, err := autodiff.ReverseMode{}.Jacobian(fn, xs)
	return jac, nil, err
}

// badShape reports an output leading shape the Jacobian does not have.
type badShape struct{}

func (badShape) Jacobian(fn autodiff.Func, xs []*tensor.RawTensor) (*autodiff.Jacobian, any, error) {
	jac, aux, err := autodiff.ReverseMode{}.Jacobian(fn, xs)
	if err != nil {
		return nil, nil, err
	}
	info := aux.(outputInfo)
	info.leading = tensor.Shape{2}
	return jac, info, nil
}
