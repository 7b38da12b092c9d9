package perturb_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/odsynth/geo"
	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/matrix"
	"github.com/katalvlaran/odsynth/perturb"
	"github.com/katalvlaran/odsynth/tntp"
)

// demand3 is a 3-zone matrix with distinct, non-round entries.
func demand3(t *testing.T) *tntp.DemandMatrix {
	t.Helper()
	d, err := matrix.NewDenseFrom(3, 3, []float64{
		1.25, 2.5, 3.75,
		4.125, 5.5, 6.0625,
		7.3, 8.8, 9.9,
	})
	require.NoError(t, err)
	m, err := tntp.DemandFromDense(d)
	require.NoError(t, err)
	return m
}

func TestNodeSetMask_AlwaysTwo(t *testing.T) {
	mask, err := perturb.NodeSetMask(3, []int{2}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "010\n111\n010\n", mask.String())
}

func TestNodeSetMask_OriginAndDest(t *testing.T) {
	mask, err := perturb.NodeSetMask(4, nil, []int{1, 1}, []int{4})
	require.NoError(t, err)
	// row 1 OR column 4
	assert.Equal(t, "1111\n0001\n0001\n0001\n", mask.String())

	all, err := perturb.NodeSetMask(2, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, all.All())

	_, err = perturb.NodeSetMask(3, nil, []int{4}, nil)
	require.ErrorIs(t, err, perturb.ErrUnknownNode)
	_, err = perturb.NodeSetMask(3, []int{0}, nil, nil)
	require.ErrorIs(t, err, perturb.ErrUnknownNode)
}

func TestPerturb_NodeSetTwoOnThreeZones(t *testing.T) {
	in := demand3(t)
	mask, err := perturb.NodeSetMask(3, []int{2}, nil, nil)
	require.NoError(t, err)

	out, err := perturb.Perturb(in, mask, perturb.Normal{Mean: 2, StdDev: 0}, perturb.NewRand(42), 3)
	require.NoError(t, err)

	perturbed := map[[2]int]bool{{2, 1}: true, {2, 2}: true, {2, 3}: true, {1, 2}: true, {3, 2}: true}
	for i := 1; i <= 3; i++ {
		for j := 1; j <= 3; j++ {
			before, _ := in.At(i, j)
			after, _ := out.At(i, j)
			if perturbed[[2]int{i, j}] {
				assert.Equal(t, matrix.Round(2*before, 3), after, "(%d,%d)", i, j)
			} else {
				assert.Equal(t, before, after, "(%d,%d) must be untouched", i, j)
			}
		}
	}
	assert.InDelta(t, out.Total(), sum(out), 1e-12)
	// input is never modified
	v, _ := in.At(2, 2)
	assert.Equal(t, 5.5, v)
}

func TestPerturb_UnmaskedIdenticalUnderRealNoise(t *testing.T) {
	in := demand3(t)
	mask, err := perturb.NodeSetMask(3, nil, []int{3}, nil)
	require.NoError(t, err)

	out, err := perturb.Perturb(in, mask, perturb.DefaultNormal, perturb.NewRand(7), perturb.DefaultPrecision)
	require.NoError(t, err)
	for i := 1; i <= 2; i++ {
		for j := 1; j <= 3; j++ {
			before, _ := in.At(i, j)
			after, _ := out.At(i, j)
			assert.Equal(t, math.Float64bits(before), math.Float64bits(after))
		}
	}
	for j := 1; j <= 3; j++ {
		after, _ := out.At(3, j)
		assert.Equal(t, matrix.Round(after, 1), after) // rounded to one decimal
	}
}

func TestPerturb_NonNegative(t *testing.T) {
	in := demand3(t)
	mask, _ := matrix.NewMask(3, 3, true)
	for _, dist := range []perturb.Distribution{
		perturb.Normal{Mean: -5, StdDev: 1},
		perturb.Uniform{Low: -10, High: -1},
		perturb.Normal{Mean: 0, StdDev: 50},
	} {
		out, err := perturb.Perturb(in, mask, dist, perturb.NewRand(3), 1)
		require.NoError(t, err)
		require.NoError(t, matrix.ValidateNonNegative(out.Dense()), "%v", dist)
		for _, v := range out.Dense().RawData() {
			assert.False(t, math.Signbit(v), "no negative zero")
		}
	}
}

func TestGeographyMask(t *testing.T) {
	table := geo.NewTable([]tntp.Node{
		{ID: 1, Point: orb.Point{0, 0}},
		{ID: 2, Point: orb.Point{1, 1}},
		{ID: 3, Point: orb.Point{5, 5}},
	})

	none, _ := geo.BoundingBox(10, 20, 10, 20)
	mask, err := perturb.GeographyMask(3, table, none)
	require.NoError(t, err)
	assert.True(t, mask.None())

	everywhere, _ := geo.BoundingCircle(0, 0, 100)
	mask, err = perturb.GeographyMask(3, table, everywhere)
	require.NoError(t, err)
	assert.True(t, mask.All())

	lowerLeft, _ := geo.BoundingBox(-1, 2, -1, 2)
	mask, err = perturb.GeographyMask(4, table, lowerLeft) // zone 4 unlocated
	require.NoError(t, err)
	assert.Equal(t, "1100\n1100\n0000\n0000\n", mask.String()) // AND, not OR

	_, err = perturb.GeographyMask(3, nil, none)
	require.ErrorIs(t, err, perturb.ErrNoGeography)
}

func TestEngine_SeedDeterminism(t *testing.T) {
	in := demand3(t)
	spec := perturb.DefaultSpec()
	spec.Dist = perturb.DefaultUniform
	spec.Seed = 99

	run := func(seed uint64) *tntp.DemandMatrix {
		s := spec
		s.Seed = seed
		e, err := perturb.NewEngine(s, perturb.WithLogger(logging.NewNopLogger()))
		require.NoError(t, err)
		out, err := e.Run(in)
		require.NoError(t, err)
		assert.Equal(t, 9, out.Selected)
		return out.Matrix
	}

	a, b := run(99), run(99)
	assert.True(t, a.Equal(b, 0))
	assert.False(t, a.Equal(run(100), 0))
	assert.True(t, run(0).Equal(run(perturb.DefaultSeed), 0))
}

func TestEngine_GeographyAndLogging(t *testing.T) {
	table := geo.NewTable([]tntp.Node{{ID: 1, Point: orb.Point{0, 0}}, {ID: 3, Point: orb.Point{0, 1}}})
	region, _ := geo.BoundingBox(-1, 1, -1, 1)

	spec := perturb.Spec{
		Dist:      perturb.Uniform{Low: 0, High: 0},
		Mode:      perturb.Geography,
		Geography: table,
		Region:    region,
		Precision: 1,
	}
	core, logs := observer.New(zapcore.InfoLevel)
	e, err := perturb.NewEngine(spec, perturb.WithLogger(logging.NewLoggerFromCore(core)))
	require.NoError(t, err)

	out, err := e.Run(demand3(t))
	require.NoError(t, err)
	assert.Equal(t, 4, out.Selected) // (1,1) (1,3) (3,1) (3,3)
	v, _ := out.Matrix.At(1, 3)
	assert.Equal(t, 0.0, v)
	v, _ = out.Matrix.At(2, 2)
	assert.Equal(t, 5.5, v)
	assert.Equal(t, tntp.FormatValue(out.Matrix.Total(), -1), out.Matrix.Metadata.Tags[tntp.TagTotalODFlow])

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "geography", logs.All()[0].ContextMap()["mode"])
}

func TestSpecValidation(t *testing.T) {
	_, err := perturb.NewEngine(perturb.Spec{})
	require.ErrorIs(t, err, perturb.ErrInvalidDistribution)

	_, err = perturb.NewEngine(perturb.Spec{Dist: perturb.Normal{Mean: 1, StdDev: -1}})
	require.ErrorIs(t, err, perturb.ErrInvalidDistribution)

	_, err = perturb.NewEngine(perturb.Spec{Dist: perturb.Uniform{Low: 2, High: 1}})
	require.ErrorIs(t, err, perturb.ErrInvalidDistribution)

	_, err = perturb.NewEngine(perturb.Spec{Dist: perturb.DefaultNormal, Mode: perturb.Geography})
	require.ErrorIs(t, err, perturb.ErrNoGeography)

	e, err := perturb.NewEngine(perturb.Spec{Dist: perturb.DefaultNormal, Always: []int{5}})
	require.NoError(t, err)
	_, err = e.Run(demand3(t))
	require.ErrorIs(t, err, perturb.ErrUnknownNode)

	_, err = perturb.Perturb(nil, nil, perturb.DefaultNormal, nil, 1)
	require.ErrorIs(t, err, perturb.ErrNilInput)
}

func TestParseDistribution(t *testing.T) {
	d, err := perturb.ParseDistribution("Normal", 1, 0.2)
	require.NoError(t, err)
	assert.Equal(t, perturb.Normal{Mean: 1, StdDev: 0.2}, d)

	d, err = perturb.ParseDistribution("uniform", 0.8, 1.2)
	require.NoError(t, err)
	assert.Equal(t, "uniform", d.Kind())

	_, err = perturb.ParseDistribution("cauchy", 0, 1)
	require.ErrorIs(t, err, perturb.ErrInvalidDistribution)
	_, err = perturb.ParseDistribution("normal", math.Inf(1), 1)
	require.ErrorIs(t, err, perturb.ErrInvalidDistribution)
}

func TestDeriveRand(t *testing.T) {
	a, b := perturb.DeriveRand(5, 1), perturb.DeriveRand(5, 1)
	assert.Equal(t, a.Uint64(), b.Uint64())
	assert.NotEqual(t, perturb.DeriveRand(5, 1).Uint64(), perturb.DeriveRand(5, 2).Uint64())
}

func sum(m *tntp.DemandMatrix) float64 {
	var s float64
	for _, v := range m.Dense().RawData() {
		s += v
	}
	return s
}
