package geo_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/odsynth/geo"
	"github.com/katalvlaran/odsynth/tntp"
)

// grid returns a 5×5 lattice of nodes 1..25 on [0,4]², row-major from the origin.
func grid() *geo.Table {
	var nodes []tntp.Node
	for i := 0; i < 25; i++ {
		nodes = append(nodes, tntp.Node{ID: i + 1, Point: orb.Point{float64(i % 5), float64(i / 5)}})
	}
	return geo.NewTable(nodes)
}

func TestTable(t *testing.T) {
	tb := geo.NewTable([]tntp.Node{
		{ID: 3, Point: orb.Point{1, 1}},
		{ID: 1, Point: orb.Point{0, 0}},
		{ID: 3, Point: orb.Point{2, 2}}, // later duplicate wins
	})
	assert.Equal(t, []int{1, 3}, tb.IDs())
	p, ok := tb.Point(3)
	require.True(t, ok)
	assert.Equal(t, orb.Point{2, 2}, p)
	_, ok = tb.Point(2)
	assert.False(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}, tb.Bound())
}

func TestBoundingPredicates(t *testing.T) {
	tb := grid()

	box, err := geo.BoundingBox(1, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, tb.Select(box)) // boundary inclusive

	circle, err := geo.BoundingCircle(2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 12, 13, 14, 18}, tb.Select(circle))

	none, err := geo.BoundingBox(10, 11, 10, 11)
	require.NoError(t, err)
	assert.Empty(t, tb.Select(none))

	_, err = geo.BoundingBox(2, 1, 0, 0)
	require.ErrorIs(t, err, geo.ErrBadRegion)
	_, err = geo.BoundingCircle(0, 0, -1)
	require.ErrorIs(t, err, geo.ErrBadRegion)
	_, err = geo.BoundingCircle(math.NaN(), 0, 1)
	require.ErrorIs(t, err, geo.ErrBadRegion)
}

func TestCentralNodes_TrimBox(t *testing.T) {
	// p = 0.4 trims 0.3·4 = 1.2 from each side: open box (1.2, 2.8)².
	ids, err := geo.CentralNodes(grid(), 0.4, geo.TrimBox)
	require.NoError(t, err)
	assert.Equal(t, []int{13}, ids)
}

func TestCentralNodes_Centroid(t *testing.T) {
	ids, err := geo.CentralNodes(grid(), 0.2, geo.Centroid)
	require.NoError(t, err)
	// k = round(0.2·25) = 5: the centre plus its four axis neighbours.
	assert.Equal(t, []int{8, 12, 13, 14, 18}, ids)

	ids, err = geo.CentralNodes(grid(), 0.01, geo.Centroid)
	require.NoError(t, err)
	assert.Equal(t, []int{13}, ids) // at least one node
}

func TestCentralNodes_Errors(t *testing.T) {
	for _, p := range []float64{0, 0.5, -0.1, 0.7, math.NaN()} {
		_, err := geo.CentralNodes(grid(), p, geo.TrimBox)
		require.ErrorIs(t, err, geo.ErrBadProportion, "p=%v", p)
	}
	_, err := geo.CentralNodes(geo.NewTable(nil), 0.25, geo.Centroid)
	require.ErrorIs(t, err, geo.ErrEmptyTable)
	_, err = geo.CentralNodes(grid(), 0.25, geo.Mode(9))
	require.ErrorIs(t, err, geo.ErrUnknownMode)
}

func TestParseMode(t *testing.T) {
	m, err := geo.ParseMode("Centroid")
	require.NoError(t, err)
	assert.Equal(t, geo.Centroid, m)
	m, err = geo.ParseMode("box")
	require.NoError(t, err)
	assert.Equal(t, "trim-box", m.String())
	_, err = geo.ParseMode("ring")
	require.ErrorIs(t, err, geo.ErrUnknownMode)
}
