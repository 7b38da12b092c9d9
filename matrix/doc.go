// SPDX-License-Identifier: MIT

// Package matrix provides the dense numeric substrate shared by the TNTP codec,
// the perturbation engine and the gravity synthesizer.
//
// The package provides:
//
//   - Dense: a row-major float64 matrix with safe At/Set accessors and an
//     optional finite-only numeric policy.
//   - Mask: a boolean matrix of the same layout, used to select the entries a
//     stochastic perturbation may touch.
//   - Validators: square, symmetric, zero-diagonal, non-negative and finite checks
//     returning package sentinels.
//   - Element-wise kernels: Hadamard products, row/column broadcasts, clamping,
//     rounding, row/column sums and AllClose comparisons.
//   - FloydWarshall: dense all-pairs shortest paths used to derive zone impedances.
//   - A bridge to gonum's *mat.Dense for kernels that benefit from BLAS-backed routines.
//
// Indices are zero-based everywhere in this package. Callers that speak in
// one-based zone identifiers (TNTP files) translate at their own boundary.
package matrix
