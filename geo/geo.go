// SPDX-License-Identifier: MIT

// Package geo holds the node geography table (zone id → planar point) and the
// spatial rules that turn it into node sets: bounding predicates for
// geography-driven perturbation masks and the central-node selector.
package geo

import (
	"errors"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/katalvlaran/odsynth/tntp"
)

var (
	// ErrBadProportion is returned by CentralNodes for p outside (0, 0.5).
	ErrBadProportion = errors.New("geo: proportion must be in (0, 0.5)")

	// ErrEmptyTable is returned when a selector needs at least one located node.
	ErrEmptyTable = errors.New("geo: no located nodes")

	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("geo: unknown central-node mode")

	// ErrBadRegion is returned for inverted boxes, negative radii or NaN bounds.
	ErrBadRegion = errors.New("geo: invalid region")
)

// Table maps node ids to coordinates. Ids without a row are "unlocated".
type Table struct {
	points map[int]orb.Point
	ids    []int // ascending
}

// NewTable indexes nodes; later duplicates win.
func NewTable(nodes []tntp.Node) *Table {
	t := &Table{points: make(map[int]orb.Point, len(nodes))}
	for _, n := range nodes {
		if _, seen := t.points[n.ID]; !seen {
			t.ids = append(t.ids, n.ID)
		}
		t.points[n.ID] = n.Point
	}
	sort.Ints(t.ids)
	return t
}

// Point returns the coordinates of id.
func (t *Table) Point(id int) (orb.Point, bool) {
	p, ok := t.points[id]
	return p, ok
}

// IDs returns the located ids in ascending order.
func (t *Table) IDs() []int { return append([]int(nil), t.ids...) }

// Len is the number of located nodes.
func (t *Table) Len() int { return len(t.ids) }

// MultiPoint returns the located points in id order.
func (t *Table) MultiPoint() orb.MultiPoint {
	mp := make(orb.MultiPoint, len(t.ids))
	for i, id := range t.ids {
		mp[i] = t.points[id]
	}
	return mp
}

// Bound is the smallest box covering every located node.
func (t *Table) Bound() orb.Bound { return t.MultiPoint().Bound() }

// Select returns, in ascending order, the ids whose point satisfies pred.
func (t *Table) Select(pred Predicate) []int {
	var out []int
	for _, id := range t.ids {
		if pred(t.points[id]) {
			out = append(out, id)
		}
	}
	return out
}

// Predicate decides whether a point lies in a region.
type Predicate func(orb.Point) bool

// BoundingBox accepts points with xmin ≤ x ≤ xmax and ymin ≤ y ≤ ymax.
func BoundingBox(xmin, xmax, ymin, ymax float64) (Predicate, error) {
	if anyNaN(xmin, xmax, ymin, ymax) || xmin > xmax || ymin > ymax {
		return nil, ErrBadRegion
	}
	b := orb.Bound{Min: orb.Point{xmin, ymin}, Max: orb.Point{xmax, ymax}}
	return b.Contains, nil
}

// BoundingCircle accepts points within planar distance r of (cx, cy), boundary included.
func BoundingCircle(cx, cy, r float64) (Predicate, error) {
	if anyNaN(cx, cy, r) || r < 0 {
		return nil, ErrBadRegion
	}
	center := orb.Point{cx, cy}
	return func(p orb.Point) bool {
		return planar.Distance(center, p) <= r
	}, nil
}

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
