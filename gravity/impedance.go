// SPDX-License-Identifier: MIT

package gravity

import (
	"fmt"
	"math"

	"github.com/katalvlaran/odsynth/matrix"
	"github.com/katalvlaran/odsynth/tntp"
)

// ImpedanceFromNetwork derives LInv for the first numZones nodes of net:
// shortest free-flow travel times by Floyd–Warshall (zones below
// FIRST THRU NODE are never used as intermediates), inverted entrywise.
// The diagonal, unreachable pairs and zero-time pairs get 0.
func ImpedanceFromNetwork(net *tntp.Network, numZones int) (*matrix.Dense, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: nil network", ErrShape)
	}
	if numZones <= 0 {
		numZones = net.NumZones
	}
	nodes := net.NumNodes
	for _, l := range net.Links {
		nodes = max(nodes, l.Init, l.Term)
	}
	if numZones < 2 || numZones > nodes {
		return nil, fmt.Errorf("%w: %d zones in a network of %d nodes", ErrShape, numZones, nodes)
	}

	dist, err := matrix.NewDistanceMatrix(nodes)
	if err != nil {
		return nil, err
	}
	for _, l := range net.Links {
		if err = matrix.RelaxEdge(dist, l.Init-1, l.Term-1, l.FreeFlowTime); err != nil {
			return nil, fmt.Errorf("%w: link %s: %v", ErrNegativeInput, tntp.LinkKey(l.Init, l.Term), err)
		}
	}
	if err = matrix.FloydWarshallFrom(dist, net.FirstThruNode-1); err != nil {
		return nil, err
	}

	linv, err := matrix.NewSquare(numZones)
	if err != nil {
		return nil, err
	}
	out := linv.RawData()
	for i := 0; i < numZones; i++ {
		row := dist.RawRow(i)
		for j := 0; j < numZones; j++ {
			if d := row[j]; i != j && d > 0 && !math.IsInf(d, 1) {
				out[i*numZones+j] = 1 / d
			}
		}
	}
	return linv, nil
}

// ParametersFromDemand takes S from the row sums and E from the column sums
// of a base demand matrix, pairing them with linv.
func ParametersFromDemand(m *tntp.DemandMatrix, linv *matrix.Dense) (Parameters, error) {
	if m == nil {
		return Parameters{}, fmt.Errorf("%w: nil demand", ErrShape)
	}
	s, err := matrix.RowSums(m.Dense())
	if err != nil {
		return Parameters{}, err
	}
	e, err := matrix.ColSums(m.Dense())
	if err != nil {
		return Parameters{}, err
	}
	p := Parameters{S: s, E: e, LInv: linv}
	if err = p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}
