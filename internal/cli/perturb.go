// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/perturb"
	"github.com/katalvlaran/odsynth/tntp"
	"github.com/katalvlaran/odsynth/trial"
)

func newPerturbCmd() *cobra.Command {
	var (
		demand, out string
		noise       noiseFlags
	)
	cmd := &cobra.Command{
		Use:   "perturb",
		Short: "Apply seeded multiplicative noise to selected demand entries",
		Example: "  odsynth perturb --demand trips.tntp --kind uniform --low 0.8 --high 1.2 --always 3,7\n" +
			"  odsynth perturb --demand trips.tntp --mode geography --nodes node.tntp --box 0,10,0,10",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if demand == "" {
				return usageErrorf("--demand is required")
			}
			if err = noise.merge(cmd, app.Config); err != nil {
				return err
			}
			log := app.Logger

			m, err := tntp.ReadDemandFile(demand, tntp.WithLogger(log.Named("tntp")))
			if err != nil {
				return err
			}
			app.Metrics.ConsistencyWarnings(len(m.Warnings))

			spec, err := buildSpec(app.Config.Perturb, m.NumZones, log)
			if err != nil {
				return err
			}
			engine, err := perturb.NewEngine(spec, perturb.WithLogger(log.Named("perturb")))
			if err != nil {
				return err
			}
			res, err := engine.Run(m)
			if err != nil {
				return err
			}
			app.Metrics.Perturbed(res.Selected)

			if out == "" {
				out = trial.PerturbedPath("", demand, spec.Dist.Kind(), 0, 1)
			}
			if err = tntp.WriteDemandFile(out, res.Matrix,
				tntp.WithLogger(log.Named("tntp")),
				tntp.WithPrecision(app.Config.Codec.Precision)); err != nil {
				return err
			}
			app.Metrics.MatrixWritten("perturb")
			log.Debug("perturbed matrix written", logging.String("path", out))

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d entries perturbed (%d clamped), total %s -> %s\n",
				out, res.Selected, m.NumZones*m.NumZones, res.Clamped,
				tntp.FormatValue(m.Total(), tntp.DefaultPrecision),
				tntp.FormatValue(res.Matrix.Total(), tntp.DefaultPrecision))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&demand, "demand", "", "TNTP demand file to perturb")
	fs.StringVarP(&out, "out", "o", "", "output file (default <demand>_perturbed_<kind>.tntp)")
	noise.register(fs)
	return cmd
}
