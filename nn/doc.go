// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides equivariant building blocks for networks on irrep
// tensors.
//
// # Overview
//
// This package contains:
//   - Activation: scalar nonlinearities on degree-0 blocks with parity tracking
//   - Grad: the gradient of an irreps-to-irreps function, decomposed into
//     irreducible blocks through Clebsch-Gordan coupling
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/equivariant/irreps"
//	    "github.com/born-ml/equivariant/nn"
//	)
//
//	func main() {
//	    act, err := nn.NewActivation(irreps.MustParse("16x0o+8x1o"), []nn.ActivationFunc{math.Tanh, nil})
//	    // act.IrrepsOut() == "16x0o+8x1o"
//
//	    g := nn.Grad(func(b tensor.Backend, x *irreps.Array) (*irreps.Array, error) { return x, nil })
//	    y, err := g(x) // "1o" in, "0e+1e+2e" out
//	}
//
// # Activations
//
// Every kept nonlinearity is rescaled to unit second moment on a standard
// normal input. On an odd scalar the output parity is inferred: even
// functions give even scalars, odd functions keep odd scalars, anything else
// is rejected.
package nn
