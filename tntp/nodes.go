// SPDX-License-Identifier: MIT

package tntp

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/katalvlaran/odsynth/internal/logging"
)

// Node is one row of a TNTP node file: a 1-based id and planar coordinates.
type Node struct {
	ID    int
	Point orb.Point
}

// ReadNodes parses a node coordinate table. Lines whose first token contains
// "node" (any case) are headers. Rows are "<id> <x> <y>" with an optional
// fourth column (usually ';'). Ids above numZones are skipped; numZones <= 0
// keeps every id. Later rows for the same id win.
func ReadNodes(r io.Reader, numZones int, opts ...Option) ([]Node, error) {
	o := newOptions(opts)
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var (
		nodes   []Node
		index   = make(map[int]int)
		skipped int
	)
	for idx, raw := range lines {
		line := stripComment(raw)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if strings.Contains(strings.ToLower(fields[0]), "node") {
			continue
		}
		if len(fields) != 3 && len(fields) != 4 {
			return nil, formatErrorf(idx+1, raw, "node row must have 3 or 4 columns, got %d", len(fields))
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 1 {
			return nil, formatErrorf(idx+1, raw, "invalid node id %q", fields[0])
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(strings.TrimSuffix(fields[2], semicolon), 64)
		if errX != nil || errY != nil || !finite(x) || !finite(y) {
			return nil, formatErrorf(idx+1, raw, "invalid coordinates")
		}
		if numZones > 0 && id > numZones {
			skipped++
			continue
		}

		n := Node{ID: id, Point: orb.Point{x, y}}
		if at, ok := index[id]; ok {
			nodes[at] = n
			continue
		}
		index[id] = len(nodes)
		nodes = append(nodes, n)
	}
	if skipped > 0 {
		o.log.Debug("nodes beyond zone count ignored", logging.Int("skipped", skipped), logging.Int("zones", numZones))
	}

	return nodes, nil
}

// ReadNodesFile opens path and delegates to ReadNodes.
func ReadNodesFile(path string, numZones int, opts ...Option) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	nodes, err := ReadNodes(f, numZones, opts...)
	if err != nil {
		return nil, withPath(err, path)
	}
	return nodes, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
