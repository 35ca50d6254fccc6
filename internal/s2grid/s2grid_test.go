package s2grid

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/parallel"
	"github.com/born-ml/equivariant/internal/tensor"
)

func randomTensor(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	t := tensor.Zeros(shape)
	for i := range t.Data() {
		t.Data()[i] = rng.Float64()
	}
	return t
}

func randomCoefficients(t *testing.T, rng *rand.Rand, lmax, pVal, pArg int, leading tensor.Shape) *irreps.Array {
	t.Helper()
	irs, err := irreps.SphericalHarmonics(lmax, pVal, pArg)
	require.NoError(t, err)
	x, err := irreps.FromArray(irs, randomTensor(rng, leading.Concat(tensor.Shape{irs.Dim()})))
	require.NoError(t, err)
	return x
}

func TestParseQuadrature(t *testing.T) {
	q, err := ParseQuadrature("soft")
	require.NoError(t, err)
	assert.Equal(t, Soft, q)

	q, err = ParseQuadrature("gausslegendre")
	require.NoError(t, err)
	assert.Equal(t, GaussLegendre, q)

	_, err = ParseQuadrature("clenshaw")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestGrid(t *testing.T) {
	for _, q := range []Quadrature{Soft, GaussLegendre} {
		for _, n := range []int{2, 7, 30} {
			t.Run(fmt.Sprintf("%s/%d", q, n), func(t *testing.T) {
				betas, alphas, weights, err := Grid(n, 5, q)
				require.NoError(t, err)
				require.Len(t, betas, n)
				require.Len(t, weights, n)
				assert.InDelta(t, 2.0, floats.Sum(weights), 1e-12)
				for i, b := range betas {
					assert.Greater(t, b, 0.0)
					assert.Less(t, b, math.Pi)
					if i > 0 {
						assert.Greater(t, b, betas[i-1])
					}
				}
				assert.True(t, floats.EqualApprox([]float64{0, 2 * math.Pi / 5, 4 * math.Pi / 5, 6 * math.Pi / 5, 8 * math.Pi / 5}, alphas, 1e-15))
			})
		}
	}

	_, _, _, err := Grid(4, 4, Quadrature("uniform"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, _, _, err = Grid(0, 4, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSoftNodesAreUniform(t *testing.T) {
	betas, _, _, err := Grid(4, 1, Soft)
	require.NoError(t, err)
	assert.True(t, floats.EqualApprox([]float64{math.Pi / 8, 3 * math.Pi / 8, 5 * math.Pi / 8, 7 * math.Pi / 8}, betas, 1e-15))
}

func TestLegendre_Orthonormal(t *testing.T) {
	const lmax = 8
	for _, q := range []Quadrature{Soft, GaussLegendre} {
		t.Run(string(q), func(t *testing.T) {
			betas, _, weights, err := Grid(q.MinResBeta(lmax), 1, q)
			require.NoError(t, err)
			tab := Legendre(lmax, betas)
			assert.Equal(t, lmax, tab.LMax())
			assert.Equal(t, len(betas), tab.NumNodes())

			for m := 0; m <= lmax; m++ {
				for l1 := m; l1 <= lmax; l1++ {
					for l2 := m; l2 <= lmax; l2++ {
						var dot float64
						for i, w := range weights {
							dot += w / 2 * tab.At(i, l1, m) * tab.At(i, l2, -m)
						}
						want := 0.0
						if l1 == l2 {
							want = 1
						}
						assert.InDelta(t, want, dot, 1e-10, "m=%d l1=%d l2=%d", m, l1, l2)
					}
				}
			}
		})
	}
}

func TestLegendre_LowDegrees(t *testing.T) {
	beta := 0.7
	x, s := math.Cos(beta), math.Sin(beta)
	tab := Legendre(2, []float64{beta})

	assert.InDelta(t, 1.0, tab.At(0, 0, 0), 1e-15)
	assert.InDelta(t, math.Sqrt(3)*x, tab.At(0, 1, 0), 1e-15)
	assert.InDelta(t, math.Sqrt(1.5)*s, tab.At(0, 1, 1), 1e-15)
	assert.InDelta(t, math.Sqrt(5)*(3*x*x-1)/2, tab.At(0, 2, 0), 1e-14)
	assert.InDelta(t, math.Sqrt(7.5)*x*s, tab.At(0, 2, 1), 1e-14)
	assert.InDelta(t, math.Sqrt(15.0/8)*s*s, tab.At(0, 2, 2), 1e-14)
}

func TestFFT_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const l = 5

	for _, n := range []int{11, 12, 20} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			coeffs := randomTensor(rng, tensor.Shape{8, 2*l + 1})
			samples, err := IRFFT(coeffs, n)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{8, n}, samples.Shape())

			back, err := RFFT(samples, l)
			require.NoError(t, err)
			assert.True(t, floats.EqualApprox(coeffs.Data(), back.Data(), 1e-12))

			again, err := IRFFT(back, n)
			require.NoError(t, err)
			assert.True(t, floats.EqualApprox(samples.Data(), again.Data(), 1e-12))
		})
	}

	// 2l+1 samples determine a degree-l signal uniquely.
	x := randomTensor(rng, tensor.Shape{8, 2*l + 1})
	xt, err := RFFT(x, l)
	require.NoError(t, err)
	xp, err := IRFFT(xt, 2*l+1)
	require.NoError(t, err)
	assert.True(t, floats.EqualApprox(x.Data(), xp.Data(), 1e-10))
}

func TestRFFT_Basis(t *testing.T) {
	const n, l = 9, 2
	samples := tensor.Zeros(tensor.Shape{n})
	for k := 0; k < n; k++ {
		a := 2 * math.Pi * float64(k) / n
		samples.Data()[k] = 3 + 0.5*math.Sqrt2*math.Cos(a) - 2*math.Sqrt2*math.Sin(2*a)
	}
	got, err := RFFT(samples, l)
	require.NoError(t, err)
	// [0, 1, 2, -2, -1]
	assert.True(t, floats.EqualApprox([]float64{3, 0.5, 0, -2, 0}, got.Data(), 1e-12), "%v", got.Data())
}

func TestFFT_InvalidInput(t *testing.T) {
	_, err := RFFT(tensor.Zeros(tensor.Shape{2, 4}), 2)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = RFFT(tensor.Zeros(tensor.Shape{5}), -1)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = IRFFT(tensor.Zeros(tensor.Shape{2, 4}), 8)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = IRFFT(tensor.Zeros(tensor.Shape{2, 5}), 4)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTransforms_RoundTrip(t *testing.T) {
	const (
		resAlpha = 51
		resBeta  = 30
		lmax     = 10
		pVal     = 1
		pArg     = -1
	)
	rng := rand.New(rand.NewPCG(3, 4))

	to := map[string]func(x *irreps.Array, q Quadrature) (*tensor.RawTensor, error){
		"grid": func(x *irreps.Array, q Quadrature) (*tensor.RawTensor, error) {
			return ToGrid(x, resBeta, resAlpha, q)
		},
		"fourier": func(x *irreps.Array, q Quadrature) (*tensor.RawTensor, error) {
			f, err := ToFourier(x, resBeta, q)
			if err != nil {
				return nil, err
			}
			return IRFFT(f, resAlpha)
		},
	}
	from := map[string]func(g *tensor.RawTensor, q Quadrature) (*irreps.Array, error){
		"grid": func(g *tensor.RawTensor, q Quadrature) (*irreps.Array, error) {
			return FromGrid(g, lmax, pVal, pArg, q)
		},
		"fourier": func(g *tensor.RawTensor, q Quadrature) (*irreps.Array, error) {
			f, err := RFFT(g, lmax)
			if err != nil {
				return nil, err
			}
			return FromFourier(f, lmax, pVal, pArg, q)
		},
	}

	for _, q := range []Quadrature{Soft, GaussLegendre} {
		for toName, toFn := range to {
			for fromName, fromFn := range from {
				t.Run(fmt.Sprintf("%s/%s-%s", q, toName, fromName), func(t *testing.T) {
					c := randomCoefficients(t, rng, lmax, pVal, pArg, tensor.Shape{1})

					g, err := toFn(c, q)
					require.NoError(t, err)
					assert.Equal(t, tensor.Shape{1, resBeta, resAlpha}, g.Shape())

					out, err := fromFn(g, q)
					require.NoError(t, err)
					assert.True(t, c.Irreps().Equal(out.Irreps()))

					want, got := c.Concat().Data(), out.Concat().Data()
					for i := range want {
						assert.InDelta(t, want[i], got[i], 1e-5+1e-5*math.Abs(want[i]))
					}
				})
			}
		}
	}
}

func TestTransforms_AllDegrees(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, q := range []Quadrature{Soft, GaussLegendre} {
		for lmax := 0; lmax <= 10; lmax++ {
			for _, fft := range []bool{false, true} {
				t.Run(fmt.Sprintf("%s/l=%d/fft=%v", q, lmax, fft), func(t *testing.T) {
					c := randomCoefficients(t, rng, lmax, -1, 1, tensor.Shape{2, 3})

					resBeta, resAlpha := q.MinResBeta(lmax), max(2*lmax+1, 2)
					s, err := To(c, resBeta, resAlpha, q, fft)
					require.NoError(t, err)
					if fft {
						assert.Equal(t, tensor.Shape{2, 3, resBeta, resAlpha}, s.Shape())
					} else {
						assert.Equal(t, tensor.Shape{2, 3, resBeta, 2*lmax + 1}, s.Shape())
					}

					out, err := From(s, lmax, -1, 1, q, fft)
					require.NoError(t, err)
					assert.Equal(t, tensor.Shape{2, 3}, out.LeadingShape())
					assert.True(t, floats.EqualApprox(c.Concat().Data(), out.Concat().Data(), 1e-9))
				})
			}
		}
	}
}

func TestToFourier_MatchesDirectSum(t *testing.T) {
	const lmax, resBeta = 3, 5
	rng := rand.New(rand.NewPCG(7, 8))
	c := randomCoefficients(t, rng, lmax, 1, -1, tensor.Shape{})

	f, err := ToFourier(c, resBeta, GaussLegendre, WithParallel(parallel.Sequential()))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{resBeta, 2*lmax + 1}, f.Shape())

	betas, _, _, err := Grid(resBeta, 1, GaussLegendre)
	require.NoError(t, err)
	tab := Legendre(lmax, betas)
	for i := 0; i < resBeta; i++ {
		for m := -lmax; m <= lmax; m++ {
			var want float64
			for l := abs(m); l <= lmax; l++ {
				want += c.Block(l).At(0, l+m) * tab.At(i, l, m)
			}
			assert.InDelta(t, want, f.At(i, FourierIndex(m, lmax)), 1e-12)
		}
	}
}

func TestFromFourier_TruncatesAndPads(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	c := randomCoefficients(t, rng, 4, 1, 1, tensor.Shape{})
	f, err := ToFourier(c, 9, Soft)
	require.NoError(t, err)

	// Asking for fewer degrees keeps the low ones.
	low, err := FromFourier(f, 2, 1, 1, Soft)
	require.NoError(t, err)
	for l := 0; l <= 2; l++ {
		assert.True(t, floats.EqualApprox(c.Block(l).Data(), low.Block(l).Data(), 1e-10))
	}

	// Asking for more degrees yields zeros above the band limit.
	f2, err := ToFourier(c, 13, Soft)
	require.NoError(t, err)
	high, err := FromFourier(f2, 6, 1, 1, Soft)
	require.NoError(t, err)
	for l := 0; l <= 4; l++ {
		assert.True(t, floats.EqualApprox(c.Block(l).Data(), high.Block(l).Data(), 1e-10))
	}
	for l := 5; l <= 6; l++ {
		assert.True(t, floats.EqualApprox(make([]float64, 2*l+1), high.Block(l).Data(), 1e-10))
	}
}

func TestTransforms_InvalidInput(t *testing.T) {
	bad := irreps.Zeros(irreps.MustParse("0e+2e"), tensor.Shape{})
	_, err := ToFourier(bad, 10, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	mul := irreps.Zeros(irreps.MustParse("2x0e+1o"), tensor.Shape{})
	_, err = ToFourier(mul, 10, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	parity := irreps.Zeros(irreps.MustParse("0e+1o+2o"), tensor.Shape{})
	_, err = ToFourier(parity, 10, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	good := irreps.Zeros(irreps.MustParse("0e+1o+2e"), tensor.Shape{})
	_, err = ToFourier(good, 10, Quadrature("trapezoid"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ToGrid(good, 10, 4, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = FromGrid(tensor.Zeros(tensor.Shape{4, 5}), 2, 1, -1, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput), "soft needs res_beta >= 5")

	_, err = FromGrid(tensor.Zeros(tensor.Shape{3, 4}), 2, 1, -1, GaussLegendre)
	assert.True(t, errors.Is(err, ErrInvalidInput), "res_alpha must be >= 5")

	_, err = FromFourier(tensor.Zeros(tensor.Shape{5}), 1, 1, 1, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = FromFourier(tensor.Zeros(tensor.Shape{5, 3}), 1, 1, 2, Soft)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
