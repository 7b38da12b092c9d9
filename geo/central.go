// SPDX-License-Identifier: MIT

package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Mode selects how CentralNodes ranks centrality.
type Mode int

const (
	// TrimBox trims (0.5 − p/2) of each axis extent from both sides of the
	// bounding box and keeps the nodes strictly inside what remains.
	TrimBox Mode = iota
	// Centroid keeps the max(1, round(p·n)) nodes closest to the centroid.
	Centroid
)

func (m Mode) String() string {
	switch m {
	case TrimBox:
		return "trim-box"
	case Centroid:
		return "centroid"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "trim-box"/"box" and "centroid" (any case).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trim-box", "box", "":
		return TrimBox, nil
	case "centroid":
		return Centroid, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// CentralNodes returns, ascending, the ids of the most central p-share of the
// located nodes. p must lie strictly between 0 and 0.5.
func CentralNodes(t *Table, p float64, mode Mode) ([]int, error) {
	if !(p > 0 && p < 0.5) {
		return nil, fmt.Errorf("%w: got %g", ErrBadProportion, p)
	}
	if t == nil || t.Len() == 0 {
		return nil, ErrEmptyTable
	}

	switch mode {
	case TrimBox:
		return t.Select(trimmedBox(t.Bound(), p)), nil
	case Centroid:
		return closestToCentroid(t, p), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
}

// trimmedBox shrinks b by (0.5 − p/2) of its extent on every side; the
// resulting predicate is strict (boundary points excluded).
func trimmedBox(b orb.Bound, p float64) Predicate {
	f := 0.5 - p/2
	dx := f * (b.Max.X() - b.Min.X())
	dy := f * (b.Max.Y() - b.Min.Y())
	xmin, xmax := b.Min.X()+dx, b.Max.X()-dx
	ymin, ymax := b.Min.Y()+dy, b.Max.Y()-dy

	return func(q orb.Point) bool {
		return q.X() > xmin && q.X() < xmax && q.Y() > ymin && q.Y() < ymax
	}
}

func closestToCentroid(t *Table, p float64) []int {
	c, _ := planar.CentroidArea(t.MultiPoint())
	ids := t.IDs()
	dist := make(map[int]float64, len(ids))
	for _, id := range ids {
		dist[id] = planar.Distance(c, t.points[id])
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return dist[ids[a]] < dist[ids[b]] // stable on ascending ids
	})

	k := int(math.Round(p * float64(len(ids))))
	if k < 1 {
		k = 1
	}
	out := ids[:k]
	sort.Ints(out)
	return out
}
