// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"strings"
)

// Mask is a row-major boolean matrix selecting entries of a same-shaped Dense.
type Mask struct {
	r, c int
	bits []bool
}

// NewMask returns an r×c mask with every entry set to fill.
func NewMask(rows, cols int, fill bool) (*Mask, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	bits := make([]bool, rows*cols)
	if fill {
		for idx := range bits {
			bits[idx] = true
		}
	}

	return &Mask{r: rows, c: cols, bits: bits}, nil
}

// Rows returns the row count.
func (m *Mask) Rows() int { return m.r }

// Cols returns the column count.
func (m *Mask) Cols() int { return m.c }

// At reports whether (i,j) is selected. Out-of-range indices report false.
func (m *Mask) At(i, j int) bool {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return false
	}

	return m.bits[i*m.c+j]
}

// Set marks (i,j) as selected or not.
func (m *Mask) Set(i, j int, v bool) error {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return fmt.Errorf("Mask.Set(%d,%d): %w", i, j, ErrOutOfRange)
	}
	m.bits[i*m.c+j] = v

	return nil
}

// SetRow selects (or clears) the whole row i.
func (m *Mask) SetRow(i int, v bool) error {
	if i < 0 || i >= m.r {
		return fmt.Errorf("Mask.SetRow(%d): %w", i, ErrOutOfRange)
	}
	for j := 0; j < m.c; j++ {
		m.bits[i*m.c+j] = v
	}

	return nil
}

// SetCol selects (or clears) the whole column j.
func (m *Mask) SetCol(j int, v bool) error {
	if j < 0 || j >= m.c {
		return fmt.Errorf("Mask.SetCol(%d): %w", j, ErrOutOfRange)
	}
	for i := 0; i < m.r; i++ {
		m.bits[i*m.c+j] = v
	}

	return nil
}

// Count returns the number of selected entries.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}

	return n
}

// All reports whether every entry is selected.
func (m *Mask) All() bool { return m.Count() == len(m.bits) }

// None reports whether no entry is selected.
func (m *Mask) None() bool { return m.Count() == 0 }

// Fits reports whether the mask has the same shape as d.
func (m *Mask) Fits(d *Dense) bool {
	return m != nil && d != nil && m.r == d.r && m.c == d.c
}

// String renders the mask as rows of 0/1 for diagnostics.
func (m *Mask) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		for j := 0; j < m.c; j++ {
			if m.bits[i*m.c+j] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// ApplyMasked replaces d[i,j] with f(i,j,d[i,j]) wherever mask is set.
// Unselected entries are never read or written.
//
// Errors: ErrDimensionMismatch when shapes differ; ErrNaNInf when f produces
// a non-finite value under the numeric policy.
// Complexity: O(r*c).
func ApplyMasked(d *Dense, mask *Mask, f func(i, j int, v float64) float64) error {
	if err := ValidateNotNil(d); err != nil {
		return matrixErrorf("ApplyMasked", err)
	}
	if !mask.Fits(d) {
		return matrixErrorf("ApplyMasked", ErrDimensionMismatch)
	}

	return d.Apply(func(i, j int, v float64) float64 {
		if !mask.bits[i*mask.c+j] {
			return v
		}
		return f(i, j, v)
	})
}
