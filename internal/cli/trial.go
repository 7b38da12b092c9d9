// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/odsynth/internal/ledger"
	"github.com/katalvlaran/odsynth/solver"
	"github.com/katalvlaran/odsynth/tntp"
	"github.com/katalvlaran/odsynth/trial"
)

func newTrialCmd() *cobra.Command {
	var (
		network, demand, outDir string
		solverBin, ledgerPath   string
		count                   int
		noise                   noiseFlags
	)
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Perturb a demand matrix, run the assignment solver and record the TSTT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if network == "" || demand == "" {
				return usageErrorf("--network and --demand are required")
			}
			if err = noise.merge(cmd, app.Config); err != nil {
				return err
			}
			cfg := app.Config
			if cmd.Flags().Changed("solver") {
				cfg.Solver.Binary = solverBin
			}
			if cmd.Flags().Changed("ledger") {
				cfg.Ledger.Path = ledgerPath
			}
			log := app.Logger

			// Zone count is needed up front for geography node filtering.
			base, err := tntp.ReadDemandFile(demand, tntp.WithLogger(log.Named("tntp")))
			if err != nil {
				return err
			}
			app.Metrics.ConsistencyWarnings(len(base.Warnings))
			spec, err := buildSpec(cfg.Perturb, base.NumZones, log)
			if err != nil {
				return err
			}

			runner := &trial.Runner{
				Solver: &solver.Runner{
					Binary:  cfg.Solver.Binary,
					Dir:     cfg.Solver.Dir,
					LogFile: cfg.Solver.LogFile,
					Timeout: cfg.Solver.Timeout,
					Log:     log.Named("solver"),
				},
				Metrics: app.Metrics,
				Log:     log.Named("trial"),
			}
			if cfg.Ledger.Path != "" {
				l, err := ledger.Open(cfg.Ledger.Path)
				if err != nil {
					return err
				}
				defer l.Close()
				runner.Ledger = l
			}

			results, err := runner.Run(cmd.Context(), trial.Config{
				NetworkFile: network,
				DemandFile:  demand,
				Demand:      base,
				OutputDir:   outDir,
				Spec:        spec,
				Count:       count,
				Precision:   cfg.Codec.Precision,
			})
			for _, r := range results {
				vc := "n/a"
				if !math.IsNaN(r.WeightedVC) {
					vc = fmt.Sprintf("%.6g", r.WeightedVC)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\ttotal=%s\ttstt=%.6g\tweighted_vc=%s\n",
					r.Stream+1, r.DemandPath, tntp.FormatValue(r.TotalDemand, tntp.DefaultPrecision), r.TSTT, vc)
			}
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&network, "network", "", "TNTP network file passed to the solver")
	fs.StringVar(&demand, "demand", "", "base TNTP demand file")
	fs.StringVar(&outDir, "out-dir", "", "directory for perturbed files (default: next to --demand)")
	fs.StringVar(&solverBin, "solver", "", "solver binary (overrides solver.binary)")
	fs.StringVar(&ledgerPath, "ledger", "", "SQLite ledger path (overrides ledger.path)")
	fs.IntVar(&count, "count", 1, "number of trials; trial k uses stream k of --seed")
	noise.register(fs)
	return cmd
}
