package activation

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

var named = map[string]Func{
	"none":     nil,
	"tanh":     math.Tanh,
	"sin":      math.Sin,
	"abs":      math.Abs,
	"square":   func(x float64) float64 { return x * x },
	"sigmoid":  sigmoid,
	"silu":     func(x float64) float64 { return x * sigmoid(x) },
	"relu":     func(x float64) float64 { return math.Max(x, 0) },
	"softplus": softplus,
	"gelu":     gelu,
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softplus(x float64) float64 {
	return math.Log1p(math.Exp(-math.Abs(x))) + math.Max(x, 0)
}

func gelu(x float64) float64 {
	return 0.5 * x * (1 + math.Erf(x/math.Sqrt2))
}

// Lookup returns the nonlinearity registered under name. "none" yields the
// nil pass-through.
func Lookup(name string) (Func, error) {
	phi, ok := named[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "unknown activation %q, known: %v", name, Names())
	}
	return phi, nil
}

// Names lists the registered nonlinearities in lexical order.
func Names() []string {
	out := make([]string, 0, len(named))
	for name := range named {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
