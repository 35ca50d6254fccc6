// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 arrays every transform in this
// module consumes and produces.
//
// # Overview
//
// A RawTensor owns a row-major []float64 together with its Shape. The
// Backend interface is the op set that differentiable functions are written
// against, so that the same function can be evaluated on the plain CPU
// backend or traced by an autodiff backend.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/equivariant/backend/cpu"
//	    "github.com/born-ml/equivariant/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.MustFromSlice([]float64{1, 2, 3}, tensor.Shape{3})
//	    y := backend.MulScalar(backend.Sin(x), 2)
//	    fmt.Println(y.Data())
//	}
//
// # Thread Safety
//
// Tensors are not synchronized. Backend operations never modify their inputs,
// so tensors may be shared read-only between goroutines.
package tensor
