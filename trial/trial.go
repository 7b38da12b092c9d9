// SPDX-License-Identifier: MIT

// Package trial runs perturb → write → solve → read rounds over a base
// demand matrix and records what each round cost the network.
package trial

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/katalvlaran/odsynth/internal/ledger"
	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/internal/metrics"
	"github.com/katalvlaran/odsynth/perturb"
	"github.com/katalvlaran/odsynth/solver"
	"github.com/katalvlaran/odsynth/tntp"
)

// ErrNoSolver is returned by Run when the Runner has no solver.
var ErrNoSolver = errors.New("trial: no solver configured")

// Solver runs the external assignment and returns its link-log path.
type Solver interface {
	Run(ctx context.Context, networkFile, demandFile string) (string, error)
}

// Recorder persists finished trials.
type Recorder interface {
	Record(ctx context.Context, t ledger.Trial) (int64, error)
}

// Config describes a batch of trials.
type Config struct {
	NetworkFile string
	DemandFile  string
	Demand      *tntp.DemandMatrix // already-read DemandFile; nil reads it
	OutputDir   string             // "" means next to DemandFile
	Spec        perturb.Spec
	Count       int // < 1 means 1
	Precision   int // codec precision for the perturbed file
}

// Result is one finished trial.
type Result struct {
	Stream      uint64
	DemandPath  string
	Selected    int
	TotalDemand float64
	TSTT        float64
	WeightedVC  float64 // NaN when no link had a capacity
	Flows       []solver.LinkFlow
	LedgerID    int64
}

// Runner wires the collaborators of a trial. Only Solver is required.
type Runner struct {
	Solver  Solver
	Ledger  Recorder
	Metrics *metrics.Metrics
	Log     logging.Logger
}

// PerturbedPath names the perturbed copy of demandFile:
// <dir>/<base>_perturbed_<kind>.tntp, with _<k+1> appended inside batches.
func PerturbedPath(dir, demandFile, kind string, k, count int) string {
	if dir == "" {
		dir = filepath.Dir(demandFile)
	}
	base := strings.TrimSuffix(filepath.Base(demandFile), filepath.Ext(demandFile))
	name := base + "_perturbed_" + kind
	if count > 1 {
		name += fmt.Sprintf("_%d", k+1)
	}
	return filepath.Join(dir, name+".tntp")
}

// Run executes cfg.Count trials. Trial k draws from perturb.DeriveRand(seed, k),
// so any single trial can be replayed alone. The first failure stops the
// batch; results gathered so far are returned with it.
func (r *Runner) Run(ctx context.Context, cfg Config) ([]Result, error) {
	if r.Solver == nil {
		return nil, ErrNoSolver
	}
	log := r.Log
	if log == nil {
		log = logging.Default().Named("trial")
	}
	count := max(cfg.Count, 1)

	codecOpts := []tntp.Option{tntp.WithLogger(log.Named("tntp")), tntp.WithPrecision(cfg.Precision)}
	base := cfg.Demand
	if base == nil {
		var err error
		if base, err = tntp.ReadDemandFile(cfg.DemandFile, codecOpts...); err != nil {
			return nil, err
		}
		r.Metrics.ConsistencyWarnings(len(base.Warnings))
	}

	net, err := tntp.ReadNetworkFile(cfg.NetworkFile, codecOpts...)
	if err != nil {
		return nil, err
	}
	caps := net.Capacities()

	results := make([]Result, 0, count)
	for k := 0; k < count; k++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.one(ctx, cfg, base, caps, uint64(k), count, codecOpts, log)
		if err != nil {
			r.Metrics.TrialDone(metrics.OutcomeFailed, 0)
			return results, fmt.Errorf("trial %d: %w", k+1, err)
		}
		r.Metrics.TrialDone(metrics.OutcomeOK, res.TSTT)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) one(ctx context.Context, cfg Config, base *tntp.DemandMatrix, caps map[string]float64,
	k uint64, count int, codecOpts []tntp.Option, log logging.Logger) (Result, error) {
	engine, err := perturb.NewEngine(cfg.Spec,
		perturb.WithRand(perturb.DeriveRand(cfg.Spec.Seed, k)),
		perturb.WithLogger(log.Named("perturb")))
	if err != nil {
		return Result{}, err
	}
	started := time.Now()
	out, err := engine.Run(base)
	if err != nil {
		return Result{}, err
	}
	r.Metrics.Perturbed(out.Selected)

	kind := cfg.Spec.Dist.Kind()
	path := PerturbedPath(cfg.OutputDir, cfg.DemandFile, kind, int(k), count)
	if err = tntp.WriteDemandFile(path, out.Matrix, codecOpts...); err != nil {
		return Result{}, err
	}
	r.Metrics.MatrixWritten("trial")

	solveStart := time.Now()
	logPath, err := r.Solver.Run(ctx, cfg.NetworkFile, path)
	r.Metrics.ObserveSolver(time.Since(solveStart))
	if err != nil {
		return Result{}, err
	}
	flows, err := solver.ReadLinkFlowsFile(logPath)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Stream:      k,
		DemandPath:  path,
		Selected:    out.Selected,
		TotalDemand: out.Matrix.Total(),
		TSTT:        solver.TSTT(flows),
		Flows:       flows,
	}
	res.WeightedVC, err = solver.WeightedVC(flows, caps)
	if err != nil {
		log.Warn("weighted v/c unavailable", logging.String("log", logPath), logging.Err(err))
		res.WeightedVC = math.NaN()
	}

	if r.Ledger != nil {
		res.LedgerID, err = r.Ledger.Record(ctx, ledger.Trial{
			StartedAt:   started,
			Kind:        kind,
			Seed:        cfg.Spec.Seed,
			Stream:      k,
			Selected:    res.Selected,
			TotalDemand: res.TotalDemand,
			TSTT:        res.TSTT,
			WeightedVC:  res.WeightedVC,
			DemandPath:  path,
		})
		if err != nil {
			return Result{}, err
		}
	}

	log.Info("trial finished",
		logging.Int("trial", int(k)+1),
		logging.String("demand", path),
		logging.Float64("total_demand", res.TotalDemand),
		logging.Float64("tstt", res.TSTT),
		logging.Float64("weighted_vc", res.WeightedVC))
	return res, nil
}
