// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference backend for tensor operations.
//
// # Overview
//
// The backend implements every op of tensor.Backend element-wise. Binary ops
// accept operands of equal shape or a single-element operand broadcast to the
// other one. Incompatible shapes panic with an op-prefixed message.
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
//	    x := tensor.Ones(tensor.Shape{2, 3})
//	    y := backend.Add(x, x)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
