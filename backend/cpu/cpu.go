// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/equivariant/internal/backend/cpu"
	"github.com/born-ml/equivariant/tensor"
)

// Backend represents the CPU backend implementation.
//
// Wide element-wise loops are split across goroutines.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	y := backend.Tanh(tensor.Ones(tensor.Shape{4}))
func New() *Backend {
	return internalcpu.New()
}
