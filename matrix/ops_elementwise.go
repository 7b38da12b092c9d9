// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Element-wise and broadcast kernels used by the demand engines:
//     Hadamard products, row/column scaling, clamping, rounding and reductions.
//   - Keep all loops deterministic and cache-friendly with Dense fast-paths.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1).
//   - Reductions delegate to gonum/floats over row slices of the flat buffer.
//   - In-place variants (…InPlace) allocate nothing.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Operation name constants for unified error wrapping.
const (
	opHadamard  = "Hadamard"
	opScaleRows = "ScaleRows"
	opScaleCols = "ScaleCols"
	opClampMin  = "ClampMin"
	opRowSums   = "RowSums"
	opColSums   = "ColSums"
	opSum       = "Sum"
	opAllClose  = "AllClose"
)

// matrixErrorf wraps an underlying error with the given operation tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Hadamard returns the element-wise product a ⊙ b as a new Dense.
// Complexity: O(r*c) time and space.
func Hadamard(a, b *Dense) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	out := a.Copy()
	floats.Mul(out.data, b.data)

	return out, nil
}

// ScaleRowsInPlace computes m[i,j] *= scale[i].
// Complexity: O(r*c).
func ScaleRowsInPlace(m *Dense, scale []float64) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf(opScaleRows, err)
	}
	if err := ValidateVecLen(scale, m.r); err != nil {
		return matrixErrorf(opScaleRows, err)
	}
	for i := 0; i < m.r; i++ {
		floats.Scale(scale[i], m.data[i*m.c:(i+1)*m.c])
	}

	return nil
}

// ScaleColsInPlace computes m[i,j] *= scale[j].
// Complexity: O(r*c).
func ScaleColsInPlace(m *Dense, scale []float64) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf(opScaleCols, err)
	}
	if err := ValidateVecLen(scale, m.c); err != nil {
		return matrixErrorf(opScaleCols, err)
	}
	for i := 0; i < m.r; i++ {
		floats.Mul(m.data[i*m.c:(i+1)*m.c], scale)
	}

	return nil
}

// ClampMinInPlace replaces every entry below lo with lo. Returns the number
// of entries that were clamped. lo must be finite.
func ClampMinInPlace(m *Dense, lo float64) (int, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opClampMin, err)
	}
	if math.IsNaN(lo) || math.IsInf(lo, 0) {
		return 0, matrixErrorf(opClampMin, ErrNaNInf)
	}
	clamped := 0
	for idx, v := range m.data {
		if v < lo {
			m.data[idx] = lo
			clamped++
		}
	}

	return clamped, nil
}

// Round rounds v half away from zero to the given number of decimal places.
// A negative precision returns v unchanged.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow(10, float64(precision))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // normalize -0
	}

	return r
}

// RowSums returns r where r[i] = Σ_j m[i,j].
// Complexity: O(r*c).
func RowSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRowSums, err)
	}
	out := make([]float64, m.Rows())
	if d, ok := m.(*Dense); ok {
		for i := 0; i < d.r; i++ {
			out[i] = floats.Sum(d.data[i*d.c : (i+1)*d.c])
		}
		return out, nil
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, matrixErrorf(opRowSums, err)
			}
			out[i] += v
		}
	}

	return out, nil
}

// ColSums returns c where c[j] = Σ_i m[i,j].
// Complexity: O(r*c).
func ColSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColSums, err)
	}
	out := make([]float64, m.Cols())
	if d, ok := m.(*Dense); ok {
		for i := 0; i < d.r; i++ {
			floats.Add(out, d.data[i*d.c:(i+1)*d.c])
		}
		return out, nil
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, matrixErrorf(opColSums, err)
			}
			out[j] += v
		}
	}

	return out, nil
}

// Sum returns Σ_{i,j} m[i,j].
func Sum(m Matrix) (float64, error) {
	if d, ok := m.(*Dense); ok && d != nil {
		return floats.Sum(d.data), nil
	}
	rs, err := RowSums(m)
	if err != nil {
		return 0, matrixErrorf(opSum, err)
	}

	return floats.Sum(rs), nil
}

// AllClose checks |a-b| ≤ atol + rtol*|b| element-wise for identical shapes.
// NaN never compares close. Negative tolerances are taken by absolute value.
// Complexity: O(r*c) time, O(1) space.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	var av, bv float64
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ = a.At(i, j)
			bv, _ = b.At(i, j)
			if !closeEnough(av, bv, rtol, atol) {
				return false, nil
			}
		}
	}

	return true, nil
}

// VecAllClose is the vector form of AllClose. Lengths must match.
func VecAllClose(a, b []float64, rtol, atol float64) (bool, error) {
	if len(a) != len(b) {
		return false, matrixErrorf(opAllClose, ErrDimensionMismatch)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	for i := range a {
		if !closeEnough(a[i], b[i], rtol, atol) {
			return false, nil
		}
	}

	return true, nil
}

// closeEnough is the shared scalar predicate; +Inf equals +Inf.
func closeEnough(a, b, rtol, atol float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}

	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}
