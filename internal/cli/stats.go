// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/odsynth/internal/ledger"
)

func newStatsCmd() *cobra.Command {
	var (
		path, kind string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded trials from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if path == "" {
				path = app.Config.Ledger.Path
			}
			if path == "" {
				return usageErrorf("no ledger: set --ledger or ledger.path")
			}
			l, err := ledger.Open(path)
			if err != nil {
				return err
			}
			defer l.Close()

			trials, err := l.List(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tKIND\tSEED\tSTREAM\tSELECTED\tTOTAL\tTSTT\tWEIGHTED_VC\tDEMAND")
			var sum float64
			for _, t := range trials {
				vc := "-"
				if !math.IsNaN(t.WeightedVC) {
					vc = fmt.Sprintf("%.6g", t.WeightedVC)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%.6g\t%.6g\t%s\t%s\n",
					t.ID, t.StartedAt.UTC().Format(time.RFC3339), t.Kind, t.Seed, t.Stream,
					t.Selected, t.TotalDemand, t.TSTT, vc, t.DemandPath)
				sum += t.TSTT
			}
			if err = w.Flush(); err != nil {
				return err
			}
			if len(trials) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d trials, mean TSTT %.6g\n", len(trials), sum/float64(len(trials)))
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&path, "ledger", "", "SQLite ledger path (default ledger.path)")
	fs.StringVar(&kind, "kind", "", "only trials with this noise kind")
	fs.IntVar(&limit, "limit", 0, "show at most this many trials (0 = all)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "odsynth %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
