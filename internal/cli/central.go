// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/odsynth/geo"
	"github.com/katalvlaran/odsynth/tntp"
)

func newCentralNodesCmd() *cobra.Command {
	var (
		nodes, mode string
		zones       int
		proportion  float64
	)
	cmd := &cobra.Command{
		Use:   "central-nodes",
		Short: "List the most central zones of a node coordinate table",
		Long: "central-nodes prints, comma separated and ascending, the zones in the central\n" +
			"--proportion of the network: either the trimmed bounding box (trim-box) or the\n" +
			"zones closest to the centroid (centroid). The list can be fed to --always.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if nodes == "" {
				return usageErrorf("--nodes is required")
			}
			m, err := geo.ParseMode(mode)
			if err != nil {
				return err
			}
			rows, err := tntp.ReadNodesFile(nodes, zones, tntp.WithLogger(app.Logger.Named("tntp")))
			if err != nil {
				return err
			}
			ids, err := geo.CentralNodes(geo.NewTable(rows), proportion, m)
			if err != nil {
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.Itoa(id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, ","))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&nodes, "nodes", "", "TNTP node file")
	fs.IntVar(&zones, "zones", 0, "ignore node ids above this (0 keeps all)")
	fs.Float64Var(&proportion, "proportion", 0.25, "share of the network to keep, in (0, 0.5)")
	fs.StringVar(&mode, "mode", geo.TrimBox.String(), "selection rule (trim-box, centroid)")
	return cmd
}
