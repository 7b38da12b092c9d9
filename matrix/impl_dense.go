// SPDX-License-Identifier: MIT

// Package matrix - Dense, the row-major float64 buffer behind every demand,
// friction and impedance matrix.
//
// Entry (i, j) lives at offset i*cols + j. Accessors bounds-check and return
// errors; loops run in fixed row-major order so results are reproducible.
// Matrices are finite-only unless built by NewDistanceMatrix, which needs +Inf
// for "no path yet".

package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	ctxAt    = "At"
	ctxSet   = "Set"
	ctxApply = "Apply"
	ctxFrom  = "NewDenseFrom"
)

// denseErrorf produces "Dense.<method>(row,col): <err>" keeping err matchable.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major rows×cols matrix.
type Dense struct {
	r, c     int
	data     []float64
	allowInf bool // distance matrices only
}

var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

func nonFinite(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// NewDense allocates a zeroed rows×cols matrix. Both dimensions must be
// positive, otherwise ErrInvalidDimensions.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom copies data (row-major, len rows*cols) into a new matrix.
// NaN and ±Inf are rejected with the offending coordinates.
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%s: got %d values for %dx%d: %w", ctxFrom, len(data), rows, cols, ErrDimensionMismatch)
	}
	for off, v := range data {
		if nonFinite(v) {
			return nil, denseErrorf(ctxFrom, off/cols, off%cols, ErrNaNInf)
		}
	}
	copy(m.data, data)
	return m, nil
}

// NewSquare allocates a zeroed n×n matrix, the shape of every zone matrix.
func NewSquare(n int) (*Dense, error) { return NewDense(n, n) }

func (m *Dense) Rows() int { return m.r }

func (m *Dense) Cols() int { return m.c }

func (m *Dense) offset(row, col int) (int, bool) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, false
	}
	return row*m.c + col, true
}

// At reads (row, col); ErrOutOfRange outside the shape.
func (m *Dense) At(row, col int) (float64, error) {
	off, ok := m.offset(row, col)
	if !ok {
		return 0, denseErrorf(ctxAt, row, col, ErrOutOfRange)
	}
	return m.data[off], nil
}

// Set writes v at (row, col). Non-finite values fail with ErrNaNInf, except
// +Inf on a distance matrix.
func (m *Dense) Set(row, col int, v float64) error {
	off, ok := m.offset(row, col)
	if !ok {
		return denseErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	if !m.accepts(v) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v
	return nil
}

func (m *Dense) accepts(v float64) bool {
	if m.allowInf {
		return !math.IsNaN(v)
	}
	return !nonFinite(v)
}

// Clone satisfies Matrix; see Copy.
func (m *Dense) Clone() Matrix { return m.Copy() }

// Copy returns an independent copy carrying the same numeric policy.
func (m *Dense) Copy() *Dense {
	return &Dense{r: m.r, c: m.c, data: append([]float64(nil), m.data...), allowInf: m.allowInf}
}

// RawRow aliases row i of the backing buffer (nil when out of range). Writes
// through it skip validation.
func (m *Dense) RawRow(i int) []float64 {
	if i < 0 || i >= m.r {
		return nil
	}
	return m.data[i*m.c : (i+1)*m.c : (i+1)*m.c]
}

// RawData aliases the whole backing buffer.
func (m *Dense) RawData() []float64 { return m.data }

// String prints one bracketed, comma-separated line per row.
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		b.WriteByte('[')
		for j, v := range m.RawRow(i) {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteString("]\n")
	}
	return b.String()
}

// Apply overwrites every entry with f(i, j, v) in row-major order. The first
// rejected value stops the walk with ErrNaNInf; earlier writes stay.
func (m *Dense) Apply(f func(i, j int, v float64) float64) error {
	for off, v := range m.data {
		i, j := off/m.c, off%m.c
		nv := f(i, j, v)
		if !m.accepts(nv) {
			return denseErrorf(ctxApply, i, j, ErrNaNInf)
		}
		m.data[off] = nv
	}
	return nil
}
