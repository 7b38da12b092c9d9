package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/odsynth/internal/metrics"
)

func TestMetrics_Recording(t *testing.T) {
	m := metrics.New()
	m.MatrixWritten("gravity")
	m.MatrixWritten("gravity")
	m.MatrixWritten("perturb")
	m.ConsistencyWarnings(2)
	m.ConsistencyWarnings(0)
	m.Perturbed(9)
	m.ObserveSynthesis(1000, 3.5, false)
	m.ObserveSolver(1500 * time.Millisecond)
	m.TrialDone(metrics.OutcomeOK, 42)
	m.TrialDone(metrics.OutcomeFailed, 99)

	expected := `
# HELP odsynth_matrices_written_total Demand matrices written, by producer.
# TYPE odsynth_matrices_written_total counter
odsynth_matrices_written_total{source="gravity"} 2
odsynth_matrices_written_total{source="perturb"} 1
# HELP odsynth_consistency_warnings_total Non-fatal consistency findings raised while reading TNTP files.
# TYPE odsynth_consistency_warnings_total counter
odsynth_consistency_warnings_total 2
# HELP odsynth_ipf_residual Largest column-sum deviation of the last gravity-model run.
# TYPE odsynth_ipf_residual gauge
odsynth_ipf_residual 3.5
# HELP odsynth_ipf_exhausted_total Gravity-model runs that hit the iteration cap.
# TYPE odsynth_ipf_exhausted_total counter
odsynth_ipf_exhausted_total 1
# HELP odsynth_trial_tstt Total system travel time of the last successful trial.
# TYPE odsynth_trial_tstt gauge
odsynth_trial_tstt 42
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"odsynth_matrices_written_total",
		"odsynth_consistency_warnings_total",
		"odsynth_ipf_residual",
		"odsynth_ipf_exhausted_total",
		"odsynth_trial_tstt",
	))

	n, err := testutil.GatherAndCount(m.Registry(), "odsynth_trials_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(m.Registry(), "odsynth_ipf_iterations")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.MatrixWritten("x")
		m.ConsistencyWarnings(1)
		m.Perturbed(1)
		m.ObserveSynthesis(1, 0, true)
		m.ObserveSolver(time.Second)
		m.TrialDone(metrics.OutcomeOK, 1)
	})
	assert.Nil(t, m.Registry())
	require.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := metrics.New()
	m.MatrixWritten("trial")
	path := filepath.Join(t.TempDir(), "odsynth.prom")
	require.NoError(t, m.WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `odsynth_matrices_written_total{source="trial"} 1`)

	require.NoError(t, m.WriteTextfile(""))
	require.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}
