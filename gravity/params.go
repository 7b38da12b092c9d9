// SPDX-License-Identifier: MIT

// Package gravity synthesizes a doubly-constrained demand matrix from a flat
// vector of pairwise friction coefficients by iterative proportional fitting
// (IPF) against production totals S, attraction totals E and an impedance
// term LInv.
//
// Entry model, for balancing factors A (one per destination column):
//
//	M[i][j] = S[i] · A[j]·E[j]·LInv[i][j]·F[i][j] / Σ_k A[k]·E[k]·LInv[i][k]·F[i][k]
//
// so every row sums to S[i]; A is then rescaled by E / colsum(M) until the
// column sums meet E or the iteration cap is hit.
package gravity

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/odsynth/matrix"
)

var (
	// ErrInputValidation is the umbrella for every rejected input.
	ErrInputValidation = errors.New("gravity: invalid input")

	// ErrParamCount: the friction vector length is not N(N−1)/2.
	ErrParamCount = fmt.Errorf("%w: parameter count", ErrInputValidation)

	// ErrNonPositiveParam: a friction coefficient is ≤ 0 or not finite.
	ErrNonPositiveParam = fmt.Errorf("%w: parameters must be strictly positive", ErrInputValidation)

	// ErrShape: S, E and LInv disagree on the zone count.
	ErrShape = fmt.Errorf("%w: shape mismatch", ErrInputValidation)

	// ErrNegativeInput: S, E or LInv holds a negative or non-finite value.
	ErrNegativeInput = fmt.Errorf("%w: totals and impedances must be finite and non-negative", ErrInputValidation)
)

// PairCount is C(n, 2), the number of unordered zone pairs.
func PairCount(n int) int { return n * (n - 1) / 2 }

// ValidateParams checks a friction vector for n zones.
func ValidateParams(n int, params []float64) error {
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 zones, got %d", ErrShape, n)
	}
	if want := PairCount(n); len(params) != want {
		return fmt.Errorf("%w: got %d, want %d for %d zones", ErrParamCount, len(params), want, n)
	}
	for k, v := range params {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: params[%d]=%g", ErrNonPositiveParam, k, v)
		}
	}
	return nil
}

// UnpackFriction validates params and lays them out as a symmetric,
// zero-diagonal n×n matrix: the strict upper triangle is filled row-major
// (row 0 takes n−1 values, row 1 takes n−2, …) and mirrored.
func UnpackFriction(n int, params []float64) (*matrix.Dense, error) {
	if err := ValidateParams(n, params); err != nil {
		return nil, err
	}
	f, err := matrix.NewSquare(n)
	if err != nil {
		return nil, err
	}
	raw := f.RawData()
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			raw[i*n+j] = params[k]
			raw[j*n+i] = params[k]
			k++
		}
	}
	if err = matrix.ValidateSymmetric(f, 0); err != nil {
		return nil, fmt.Errorf("gravity: friction layout: %w", err)
	}
	if err = matrix.ValidateZeroDiagonal(f, 0); err != nil {
		return nil, fmt.Errorf("gravity: friction layout: %w", err)
	}
	return f, nil
}

// Parameters are the fixed inputs of a synthesis run.
type Parameters struct {
	S    []float64     // production totals, one per origin
	E    []float64     // attraction totals, one per destination
	LInv *matrix.Dense // impedance term, N×N
}

// N is the zone count implied by S.
func (p Parameters) N() int { return len(p.S) }

// Validate checks shapes and that every value is finite and non-negative.
func (p Parameters) Validate() error {
	n := len(p.S)
	if n < 2 || len(p.E) != n {
		return fmt.Errorf("%w: len(S)=%d len(E)=%d", ErrShape, len(p.S), len(p.E))
	}
	if p.LInv == nil || p.LInv.Rows() != n || p.LInv.Cols() != n {
		return fmt.Errorf("%w: LInv must be %d×%d", ErrShape, n, n)
	}
	if err := matrix.ValidateVecNonNegative(p.S); err != nil {
		return fmt.Errorf("%w: S: %v", ErrNegativeInput, err)
	}
	if err := matrix.ValidateVecNonNegative(p.E); err != nil {
		return fmt.Errorf("%w: E: %v", ErrNegativeInput, err)
	}
	if err := matrix.ValidateNonNegative(p.LInv); err != nil {
		return fmt.Errorf("%w: LInv: %v", ErrNegativeInput, err)
	}
	return nil
}
