// SPDX-License-Identifier: MIT

package perturb

import (
	"fmt"

	"github.com/katalvlaran/odsynth/geo"
	"github.com/katalvlaran/odsynth/matrix"
)

// MaskMode names the two ways of choosing perturbed entries.
type MaskMode int

const (
	// NodeSet perturbs every entry whose origin is in Always ∪ IfOrigin OR
	// whose destination is in Always ∪ IfDest (full rows and full columns).
	NodeSet MaskMode = iota
	// Geography perturbs an entry only when BOTH endpoints lie in the region.
	Geography
)

func (m MaskMode) String() string {
	switch m {
	case NodeSet:
		return "node-set"
	case Geography:
		return "geography"
	default:
		return fmt.Sprintf("MaskMode(%d)", int(m))
	}
}

// NodeSetMask builds the OR mask over rows and columns for an n-zone matrix.
// Ids are 1-based. With all three sets empty every entry is selected.
func NodeSetMask(n int, always, ifOrigin, ifDest []int) (*matrix.Mask, error) {
	if len(always) == 0 && len(ifOrigin) == 0 && len(ifDest) == 0 {
		return matrix.NewMask(n, n, true)
	}
	mask, err := matrix.NewMask(n, n, false)
	if err != nil {
		return nil, err
	}

	for _, set := range []struct {
		ids       []int
		row, col  bool
		set, what string
	}{
		{always, true, true, "always", "node"},
		{ifOrigin, true, false, "if-origin", "origin"},
		{ifDest, false, true, "if-dest", "destination"},
	} {
		for _, id := range set.ids {
			if id < 1 || id > n {
				return nil, fmt.Errorf("%w: %s %d in %s set (zones 1..%d)", ErrUnknownNode, set.what, id, set.set, n)
			}
			if set.row {
				_ = mask.SetRow(id-1, true)
			}
			if set.col {
				_ = mask.SetCol(id-1, true)
			}
		}
	}
	return mask, nil
}

// GeographyMask builds the AND mask: (i,j) is selected iff zones i and j are
// both located in t and both satisfy pred. Unlocated zones never qualify.
func GeographyMask(n int, t *geo.Table, pred geo.Predicate) (*matrix.Mask, error) {
	if t == nil || pred == nil {
		return nil, ErrNoGeography
	}
	mask, err := matrix.NewMask(n, n, false)
	if err != nil {
		return nil, err
	}

	var inside []int
	for _, id := range t.Select(pred) {
		if id >= 1 && id <= n {
			inside = append(inside, id-1)
		}
	}
	for _, i := range inside {
		for _, j := range inside {
			_ = mask.Set(i, j, true)
		}
	}
	return mask, nil
}
