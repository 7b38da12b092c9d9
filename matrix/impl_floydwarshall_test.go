package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/odsynth/matrix"
)

// TestFloydWarshall_Chain checks closure on a directed chain 0→1→2 plus a costly shortcut.
func TestFloydWarshall_Chain(t *testing.T) {
	d, err := matrix.NewDistanceMatrix(3)
	require.NoError(t, err)

	require.NoError(t, matrix.RelaxEdge(d, 0, 1, 2))
	require.NoError(t, matrix.RelaxEdge(d, 1, 2, 3))
	require.NoError(t, matrix.RelaxEdge(d, 0, 2, 10))
	require.NoError(t, matrix.RelaxEdge(d, 0, 2, 9)) // parallel link keeps the cheaper cost

	require.NoError(t, matrix.FloydWarshall(d))

	v, _ := d.At(0, 2)
	require.Equal(t, 5.0, v) // via 1: 2 + 3
	v, _ = d.At(2, 0)
	require.True(t, math.IsInf(v, 1)) // unreachable stays +Inf
	v, _ = d.At(1, 1)
	require.Equal(t, 0.0, v)
}

func TestFloydWarshall_Guards(t *testing.T) {
	m, _ := matrix.NewDenseFrom(2, 2, []float64{1, 0, 0, 0})
	require.ErrorIs(t, matrix.FloydWarshall(m), matrix.ErrNonZeroDiagonal)

	r, _ := matrix.NewDense(2, 3)
	require.ErrorIs(t, matrix.FloydWarshall(r), matrix.ErrNonSquare)

	d, _ := matrix.NewDistanceMatrix(2)
	require.ErrorIs(t, matrix.RelaxEdge(d, 0, 1, -1), matrix.ErrNegative)
	require.ErrorIs(t, matrix.RelaxEdge(d, 0, 5, 1), matrix.ErrOutOfRange)
}

// TestFloydWarshallFrom_NoThroughZones forbids routing through vertex 0.
func TestFloydWarshallFrom_NoThroughZones(t *testing.T) {
	build := func() *matrix.Dense {
		d, err := matrix.NewDistanceMatrix(3)
		require.NoError(t, err)
		require.NoError(t, matrix.RelaxEdge(d, 1, 0, 1))
		require.NoError(t, matrix.RelaxEdge(d, 0, 2, 1))
		require.NoError(t, matrix.RelaxEdge(d, 1, 2, 7))
		return d
	}

	open := build()
	require.NoError(t, matrix.FloydWarshall(open))
	v, _ := open.At(1, 2)
	require.Equal(t, 2.0, v) // 1 → 0 → 2

	restricted := build()
	require.NoError(t, matrix.FloydWarshallFrom(restricted, 1))
	v, _ = restricted.At(1, 2)
	require.Equal(t, 7.0, v) // direct link only
}
