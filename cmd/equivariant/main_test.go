package main

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "equivariant "+version+"\n", out)
}

var maxErr = regexp.MustCompile(`max abs error: (\S+)`)

func TestRoundtrip(t *testing.T) {
	for _, args := range [][]string{
		{"roundtrip"},
		{"roundtrip", "--fourier", "--quadrature", "gausslegendre", "--lmax", "4", "--res-beta", "5", "--batch", "3"},
	} {
		out, err := run(t, args...)
		require.NoError(t, err, args)

		m := maxErr.FindStringSubmatch(out)
		require.Len(t, m, 2, out)
		e, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		assert.Less(t, e, 1e-9)
	}
}

func TestRoundtrip_FromEnv(t *testing.T) {
	t.Setenv("EQUIVARIANT_QUADRATURE", "trapezoid")
	_, err := run(t, "roundtrip")
	assert.ErrorContains(t, err, "quadrature")
}

func TestGrid(t *testing.T) {
	out, err := run(t, "grid", "--res-beta", "4", "--quadrature", "soft")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6) // header, 4 nodes, sum
	assert.Contains(t, lines[5], "2.000000000000")
}

func TestActivation(t *testing.T) {
	out, err := run(t, "activation", "--irreps", "0o+0o+1o", "--act", "square, tanh, none")
	require.NoError(t, err)
	assert.Equal(t, "0o+0o+1o -> 0e+0o+1o\n", out)

	_, err = run(t, "activation", "--irreps", "1o", "--act", "tanh")
	assert.ErrorContains(t, err, "non-scalar")
}

func TestGrad(t *testing.T) {
	out, err := run(t, "grad", "--irreps", "1o")
	require.NoError(t, err)
	assert.Equal(t, "0e+1e+2e\n", out)

	out, err = run(t, "grad", "--irreps", "2x0e", "--differentiator", "finite")
	require.NoError(t, err)
	assert.Equal(t, "4x0e\n", out)

	_, err = run(t, "grad", "--differentiator", "forward")
	assert.Error(t, err)
}
