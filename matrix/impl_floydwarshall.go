// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Dense APSP (Floyd–Warshall) with deterministic loop order.
//   - Used to turn link travel times into zone-to-zone shortest-path impedances.
//
// Contract:
//   - Square matrix; +Inf means “no path”; diagonal must be 0 before calling.

package matrix

import (
	"fmt"
	"math"
)

const opFloydWarshall = "FloydWarshall"

// NewDistanceMatrix returns an n×n matrix with a zero diagonal and +Inf elsewhere,
// ready to receive direct link costs before FloydWarshall. The returned matrix
// tolerates +Inf in Set (the finite-only policy is off).
// Complexity: O(n²).
func NewDistanceMatrix(n int) (*Dense, error) {
	d, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	d.allowInf = true
	inf := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				d.data[i*n+j] = inf
			}
		}
	}

	return d, nil
}

// RelaxEdge lowers d[i,j] to w when w is smaller (parallel links keep the cheapest).
// w must be finite and non-negative.
func RelaxEdge(d *Dense, i, j int, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return denseErrorf("RelaxEdge", i, j, ErrNaNInf)
	}
	if w < 0 {
		return denseErrorf("RelaxEdge", i, j, ErrNegative)
	}
	off, ok := d.offset(i, j)
	if !ok {
		return denseErrorf("RelaxEdge", i, j, ErrOutOfRange)
	}
	if i != j && w < d.data[off] {
		d.data[off] = w
	}

	return nil
}

// floydWarshallInPlace runs the APSP closure on a square *Dense in-place,
// admitting only vertices k >= from as intermediates.
// Loop order is fixed (k → i → j); strict improvement only.
// Time: O(n^3); Extra space: O(1).
func floydWarshallInPlace(d *Dense, from int) {
	n := d.r
	data := d.data

	var (
		k, i, j      int
		baseK, baseI int
		ik, kj, cand float64
	)
	for k = from; k < n; k++ {
		baseK = k * n
		for i = 0; i < n; i++ {
			ik = data[i*n+k]
			if math.IsInf(ik, 1) {
				continue
			}
			baseI = i * n
			for j = 0; j < n; j++ {
				kj = data[baseK+j]
				if math.IsInf(kj, 1) {
					continue
				}
				cand = ik + kj
				if cand < data[baseI+j] {
					data[baseI+j] = cand
				}
			}
		}
	}
}

// FloydWarshall computes all-pairs shortest paths in-place on d.
//
// Contract:
//   - d must be square with a zero diagonal; +Inf denotes “no edge”.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrNonZeroDiagonal.
// Complexity: Time O(n^3), Extra space O(1).
func FloydWarshall(d *Dense) error {
	return FloydWarshallFrom(d, 0)
}

// FloydWarshallFrom is FloydWarshall restricted to paths whose intermediate
// vertices all have index >= from. Vertices below from can still start or
// end a path; this models zone centroids that traffic may not pass through.
// from <= 0 is the unrestricted closure; from >= n only keeps direct edges.
func FloydWarshallFrom(d *Dense, from int) error {
	if err := ValidateZeroDiagonal(d, 0); err != nil {
		return fmt.Errorf("%s: %w", opFloydWarshall, err)
	}
	if from < 0 {
		from = 0
	}
	floydWarshallInPlace(d, from)

	return nil
}
