// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package s2grid converts between spherical-harmonic coefficients and
// samples of a function on the sphere.
//
// # Overview
//
// Coefficients are an irrep tensor with irreps 1x0+1x1+…+1xlmax and parity
// p_val·p_arg^l. Samples live on a resBeta × resAlpha grid of colatitudes
// and longitudes. Two colatitude quadratures are available:
//   - Soft: uniform colatitudes with Fejér weights, exact for resBeta >= 2·lmax+1
//   - GaussLegendre: Gauss-Legendre nodes on cos β, exact for resBeta >= lmax+1
//
// ToGrid and FromGrid work on explicit samples. ToFourier and FromFourier
// keep the longitude direction as 2·lmax+1 real Fourier coefficients.
//
// # Basic Usage
//
//	irs, _ := irreps.SphericalHarmonics(10, 1, -1)
//	x, _ := irreps.FromArray(irs, coeffs)
//
//	grid, err := s2grid.ToGrid(x, 30, 51, s2grid.Soft)
//	back, err := s2grid.FromGrid(grid, 10, 1, -1, s2grid.Soft)
package s2grid

import (
	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/s2grid"
	"github.com/born-ml/equivariant/internal/tensor"
)

// Quadrature names a colatitude node/weight scheme.
type Quadrature = s2grid.Quadrature

// Quadrature schemes.
const (
	Soft          = s2grid.Soft
	GaussLegendre = s2grid.GaussLegendre
)

// Sentinel errors.
var (
	ErrInvalidConfig = s2grid.ErrInvalidConfig
	ErrInvalidInput  = s2grid.ErrInvalidInput
)

// LegendreTable holds normalized associated Legendre values at grid nodes.
type LegendreTable = s2grid.LegendreTable

// Option configures a transform.
type Option = s2grid.Option

// ParseQuadrature validates a quadrature name.
func ParseQuadrature(s string) (Quadrature, error) {
	return s2grid.ParseQuadrature(s)
}

// Grid returns the colatitudes, longitudes and colatitude weights of a grid.
func Grid(resBeta, resAlpha int, q Quadrature) (betas, alphas, weights []float64, err error) {
	return s2grid.Grid(resBeta, resAlpha, q)
}

// Legendre evaluates the normalized associated Legendre functions up to lmax.
func Legendre(lmax int, betas []float64) *LegendreTable {
	return s2grid.Legendre(lmax, betas)
}

// RFFT projects the last axis onto real Fourier orders -l..l.
func RFFT(x *tensor.RawTensor, l int) (*tensor.RawTensor, error) {
	return s2grid.RFFT(x, l)
}

// IRFFT synthesizes n samples from real Fourier coefficients.
func IRFFT(x *tensor.RawTensor, n int) (*tensor.RawTensor, error) {
	return s2grid.IRFFT(x, n)
}

// ToGrid samples coefficients on the grid.
func ToGrid(x *irreps.Array, resBeta, resAlpha int, q Quadrature, opts ...Option) (*tensor.RawTensor, error) {
	return s2grid.ToGrid(x, resBeta, resAlpha, q, opts...)
}

// ToFourier evaluates coefficients at the colatitude nodes, keeping the
// longitude direction in the Fourier domain.
func ToFourier(x *irreps.Array, resBeta int, q Quadrature, opts ...Option) (*tensor.RawTensor, error) {
	return s2grid.ToFourier(x, resBeta, q, opts...)
}

// FromGrid recovers coefficients up to lmax from grid samples.
func FromGrid(g *tensor.RawTensor, lmax, pVal, pArg int, q Quadrature, opts ...Option) (*irreps.Array, error) {
	return s2grid.FromGrid(g, lmax, pVal, pArg, q, opts...)
}

// FromFourier recovers coefficients up to lmax from a Fourier-domain signal.
func FromFourier(f *tensor.RawTensor, lmax, pVal, pArg int, q Quadrature, opts ...Option) (*irreps.Array, error) {
	return s2grid.FromFourier(f, lmax, pVal, pArg, q, opts...)
}

// To is ToGrid when fft is true and ToFourier otherwise.
func To(x *irreps.Array, resBeta, resAlpha int, q Quadrature, fft bool, opts ...Option) (*tensor.RawTensor, error) {
	return s2grid.To(x, resBeta, resAlpha, q, fft, opts...)
}

// From is FromGrid when fft is true and FromFourier otherwise.
func From(s *tensor.RawTensor, lmax, pVal, pArg int, q Quadrature, fft bool, opts ...Option) (*irreps.Array, error) {
	return s2grid.From(s, lmax, pVal, pArg, q, fft, opts...)
}
