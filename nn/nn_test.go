package nn_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/equivariant/irreps"
	"github.com/born-ml/equivariant/nn"
	"github.com/born-ml/equivariant/tensor"
)

func TestActivation(t *testing.T) {
	square, err := nn.LookupActivation("square")
	require.NoError(t, err)

	act, err := nn.NewActivation(irreps.MustParse("0o+0o+1o"), []nn.ActivationFunc{square, math.Tanh, nil})
	require.NoError(t, err)
	assert.Equal(t, "0e+0o+1o", act.IrrepsOut().String())

	_, err = nn.NewActivation(irreps.MustParse("1o"), []nn.ActivationFunc{math.Tanh})
	assert.True(t, errors.Is(err, nn.ErrInvalidActivation))

	assert.Equal(t, irreps.Even, nn.Parity(square))
	assert.Equal(t, irreps.Odd, nn.Parity(math.Sin))
}

func TestGrad(t *testing.T) {
	x, err := irreps.FromArray(irreps.MustParse("1o"), tensor.MustFromSlice([]float64{1, 2, 3}, tensor.Shape{3}))
	require.NoError(t, err)

	identity := func(_ tensor.Backend, x *irreps.Array) (*irreps.Array, error) { return x, nil }

	for _, g := range []func(*irreps.Array) (*irreps.Array, error){
		nn.Grad(identity),
		nn.Grad(identity, nn.WithFiniteDifference(1e-4)),
	} {
		y, err := g(x)
		require.NoError(t, err)
		assert.Equal(t, "0e+1e+2e", y.Irreps().String())
		assert.InDelta(t, math.Sqrt(3), y.Block(0).Data()[0], 1e-8)
	}
}
