// SPDX-License-Identifier: MIT

// Package metrics holds the run counters of odsynth on a private prometheus
// registry. A batch tool has no scrape endpoint, so the registry is dumped
// in text exposition format with WriteTextfile (node_exporter textfile
// collector layout).
//
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "odsynth"

// Outcome labels for trials.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics is a registry with the odsynth collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	matricesWritten  *prometheus.CounterVec
	warnings         prometheus.Counter
	perturbedEntries prometheus.Counter
	ipfIterations    prometheus.Histogram
	ipfResidual      prometheus.Gauge
	ipfExhausted     prometheus.Counter
	trials           *prometheus.CounterVec
	trialTSTT        prometheus.Gauge
	solverSeconds    prometheus.Histogram
}

// New builds a fresh registry. Instances never share state.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		matricesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrices_written_total",
			Help:      "Demand matrices written, by producer.",
		}, []string{"source"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_warnings_total",
			Help:      "Non-fatal consistency findings raised while reading TNTP files.",
		}),
		perturbedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "perturbed_entries_total",
			Help:      "Demand entries multiplied by a noise draw.",
		}),
		ipfIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ipf_iterations",
			Help:      "Matrix evaluations per gravity-model run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		ipfResidual: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ipf_residual",
			Help:      "Largest column-sum deviation of the last gravity-model run.",
		}),
		ipfExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ipf_exhausted_total",
			Help:      "Gravity-model runs that hit the iteration cap.",
		}),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Perturb-and-solve trials, by outcome.",
		}, []string{"outcome"}),
		trialTSTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trial_tstt",
			Help:      "Total system travel time of the last successful trial.",
		}),
		solverSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_duration_seconds",
			Help:      "Wall time of external solver runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	m.registry.MustRegister(
		m.matricesWritten, m.warnings, m.perturbedEntries,
		m.ipfIterations, m.ipfResidual, m.ipfExhausted,
		m.trials, m.trialTSTT, m.solverSeconds,
	)
	return m
}

// Registry exposes the underlying registry, e.g. for testutil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// MatrixWritten counts one written matrix for source ("perturb", "gravity", "trial").
func (m *Metrics) MatrixWritten(source string) {
	if m == nil {
		return
	}
	m.matricesWritten.WithLabelValues(source).Inc()
}

// ConsistencyWarnings adds n reader warnings.
func (m *Metrics) ConsistencyWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.warnings.Add(float64(n))
}

// Perturbed adds n perturbed entries.
func (m *Metrics) Perturbed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.perturbedEntries.Add(float64(n))
}

// ObserveSynthesis records one gravity-model run.
func (m *Metrics) ObserveSynthesis(iterations int, residual float64, converged bool) {
	if m == nil {
		return
	}
	m.ipfIterations.Observe(float64(iterations))
	m.ipfResidual.Set(residual)
	if !converged {
		m.ipfExhausted.Inc()
	}
}

// ObserveSolver records the wall time of one solver run.
func (m *Metrics) ObserveSolver(d time.Duration) {
	if m == nil {
		return
	}
	m.solverSeconds.Observe(d.Seconds())
}

// TrialDone counts a trial; tstt is kept only for OutcomeOK.
func (m *Metrics) TrialDone(outcome string, tstt float64) {
	if m == nil {
		return
	}
	m.trials.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.trialTSTT.Set(tstt)
	}
}

// WriteTextfile writes the registry to path atomically. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
