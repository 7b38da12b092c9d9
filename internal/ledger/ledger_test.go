package ledger_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/odsynth/internal/ledger"
)

func TestLedger_RecordAndList(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "trials.db")
	l, err := ledger.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	at := time.Unix(1_700_000_000, 123)
	id1, err := l.Record(ctx, ledger.Trial{
		StartedAt: at, Kind: "normal", Seed: math.MaxUint64, Selected: 9,
		TotalDemand: 100, TSTT: 1234.5, WeightedVC: 0.25, DemandPath: "a.tntp",
	})
	require.NoError(t, err)
	id2, err := l.Record(ctx, ledger.Trial{Kind: "uniform", Seed: 7, Stream: 3, TSTT: 1, WeightedVC: math.NaN(), DemandPath: "b.tntp"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	all, err := l.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	assert.True(t, at.Equal(all[0].StartedAt))
	assert.Equal(t, uint64(math.MaxUint64), all[0].Seed)
	assert.Equal(t, 0.25, all[0].WeightedVC)
	assert.True(t, math.IsNaN(all[1].WeightedVC))
	assert.False(t, all[1].StartedAt.IsZero())

	uni, err := l.List(ctx, "uniform", 0)
	require.NoError(t, err)
	require.Len(t, uni, 1)
	assert.Equal(t, "b.tntp", uni[0].DemandPath)
	assert.Equal(t, uint64(3), uni[0].Stream)

	one, err := l.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestLedger_ReopenAndClose(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trials.db")

	l, err := ledger.Open(path)
	require.NoError(t, err)
	_, err = l.Record(ctx, ledger.Trial{Kind: "normal", DemandPath: "x"})
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err = l.Record(ctx, ledger.Trial{})
	require.ErrorIs(t, err, ledger.ErrClosed)
	_, err = l.List(ctx, "", 0)
	require.ErrorIs(t, err, ledger.ErrClosed)

	l, err = ledger.Open(path)
	require.NoError(t, err)
	defer l.Close()
	got, err := l.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, path, l.Path())
}
