// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/odsynth/gravity"
	"github.com/katalvlaran/odsynth/tntp"
)

func newGravityCmd() *cobra.Command {
	var (
		params, demand, network, out string
		maxIter                      int
		tol                          float64
	)
	cmd := &cobra.Command{
		Use:   "gravity",
		Short: "Synthesize a demand matrix from pairwise friction parameters",
		Long: "gravity balances a doubly-constrained gravity model by iterative proportional\n" +
			"fitting. Production and attraction totals come from the row and column sums of\n" +
			"--demand; the impedance term is the inverse free-flow shortest-path time over\n" +
			"--network. --params holds the C(N,2) friction coefficients of the upper triangle.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if params == "" || demand == "" || network == "" || out == "" {
				return usageErrorf("--params, --demand, --network and --out are required")
			}
			gc := app.Config.Gravity
			if cmd.Flags().Changed("max-iterations") {
				gc.MaxIterations = maxIter
			}
			if cmd.Flags().Changed("tolerance") {
				gc.Tolerance = tol
			}
			log := app.Logger
			codec := tntp.WithLogger(log.Named("tntp"))

			vec, err := tntp.ReadParametersFile(params)
			if err != nil {
				return err
			}
			base, err := tntp.ReadDemandFile(demand, codec)
			if err != nil {
				return err
			}
			app.Metrics.ConsistencyWarnings(len(base.Warnings))
			net, err := tntp.ReadNetworkFile(network, codec)
			if err != nil {
				return err
			}
			linv, err := gravity.ImpedanceFromNetwork(net, base.NumZones)
			if err != nil {
				return err
			}
			p, err := gravity.ParametersFromDemand(base, linv)
			if err != nil {
				return err
			}

			res, err := gravity.Synthesize(p, vec,
				gravity.WithMaxIterations(gc.MaxIterations),
				gravity.WithTolerance(gc.Tolerance),
				gravity.WithLogger(log.Named("gravity")))
			if err != nil {
				return err
			}
			app.Metrics.ObserveSynthesis(res.Iterations, res.Residual, res.Converged)

			if err = tntp.WriteDemandFile(out, res.Matrix, codec, tntp.WithPrecision(app.Config.Codec.Precision)); err != nil {
				return err
			}
			app.Metrics.MatrixWritten("gravity")

			status := "converged"
			if !res.Converged {
				status = "iteration cap reached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s after %d iterations, residual %g\n",
				out, status, res.Iterations, res.Residual)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&params, "params", "", "friction parameter vector file")
	fs.StringVar(&demand, "demand", "", "base TNTP demand file (production/attraction totals)")
	fs.StringVar(&network, "network", "", "TNTP network file (impedance)")
	fs.StringVarP(&out, "out", "o", "", "output TNTP demand file")
	fs.IntVar(&maxIter, "max-iterations", gravity.DefaultMaxIterations, "IPF evaluation cap")
	fs.Float64Var(&tol, "tolerance", gravity.DefaultTolerance, "absolute column-sum tolerance")
	return cmd
}
