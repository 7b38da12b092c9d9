// SPDX-License-Identifier: MIT

package tntp

import (
	"fmt"

	"github.com/katalvlaran/odsynth/matrix"
)

// DemandMatrix is an N×N origin–destination flow table addressed by 1-based
// zone ids. Every entry is finite and non-negative; NumZones never changes.
type DemandMatrix struct {
	NumZones int
	Metadata Metadata
	// Warnings collects non-fatal consistency findings from the reader.
	Warnings []string

	data *matrix.Dense
}

// NewDemandMatrix returns an all-zero n×n matrix.
func NewDemandMatrix(n int) (*DemandMatrix, error) {
	d, err := matrix.NewSquare(n)
	if err != nil {
		return nil, fmt.Errorf("tntp: new demand matrix: %w", err)
	}
	return &DemandMatrix{NumZones: n, Metadata: Metadata{Tags: map[string]string{}, EndLine: -1}, data: d}, nil
}

// DemandFromDense adopts d (no copy) after checking it is square, finite and
// non-negative.
func DemandFromDense(d *matrix.Dense) (*DemandMatrix, error) {
	if err := matrix.ValidateSquare(d); err != nil {
		return nil, fmt.Errorf("tntp: demand from dense: %w", err)
	}
	if err := matrix.ValidateNonNegative(d); err != nil {
		return nil, fmt.Errorf("tntp: demand from dense: %w", err)
	}
	return &DemandMatrix{NumZones: d.Rows(), Metadata: Metadata{Tags: map[string]string{}, EndLine: -1}, data: d}, nil
}

func (m *DemandMatrix) check(orig, dest int) error {
	if orig < 1 || orig > m.NumZones || dest < 1 || dest > m.NumZones {
		return fmt.Errorf("(%d,%d) with %d zones: %w", orig, dest, m.NumZones, ErrUnknownZone)
	}
	return nil
}

// At returns the flow from orig to dest.
func (m *DemandMatrix) At(orig, dest int) (float64, error) {
	if err := m.check(orig, dest); err != nil {
		return 0, err
	}
	return m.data.At(orig-1, dest-1)
}

// Set stores a finite, non-negative flow from orig to dest.
func (m *DemandMatrix) Set(orig, dest int, v float64) error {
	if err := m.check(orig, dest); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("(%d,%d)=%g: %w", orig, dest, v, ErrNegativeDemand)
	}
	return m.data.Set(orig-1, dest-1, v)
}

// Total returns the sum of all entries.
func (m *DemandMatrix) Total() float64 {
	s, _ := matrix.Sum(m.data)
	return s
}

// Row returns a copy of the flows leaving orig.
func (m *DemandMatrix) Row(orig int) ([]float64, error) {
	if err := m.check(orig, 1); err != nil {
		return nil, err
	}
	return append([]float64(nil), m.data.RawRow(orig-1)...), nil
}

// Dense exposes the 0-based backing matrix. Writes through it must keep
// entries finite and non-negative.
func (m *DemandMatrix) Dense() *matrix.Dense { return m.data }

// Clone deep-copies the matrix, its metadata tags and warnings.
func (m *DemandMatrix) Clone() *DemandMatrix {
	tags := make(map[string]string, len(m.Metadata.Tags))
	for k, v := range m.Metadata.Tags {
		tags[k] = v
	}
	md := m.Metadata
	md.Tags = tags

	return &DemandMatrix{
		NumZones: m.NumZones,
		Metadata: md,
		Warnings: append([]string(nil), m.Warnings...),
		data:     m.data.Copy(),
	}
}

// Equal reports entrywise equality within tol (tol = 0 means exact).
func (m *DemandMatrix) Equal(other *DemandMatrix, tol float64) bool {
	if other == nil || m.NumZones != other.NumZones {
		return false
	}
	ok, err := matrix.AllClose(m.data, other.data, 0, tol)
	return ok && err == nil
}
