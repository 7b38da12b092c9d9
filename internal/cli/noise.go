// SPDX-License-Identifier: MIT

package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/odsynth/geo"
	"github.com/katalvlaran/odsynth/internal/config"
	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/perturb"
	"github.com/katalvlaran/odsynth/tntp"
)

// noiseFlags mirrors config.PerturbConfig; only flags the user set override
// the loaded configuration.
type noiseFlags struct {
	pc config.PerturbConfig
}

func (n *noiseFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&n.pc.Kind, "kind", "", "noise distribution (normal, uniform)")
	fs.Float64Var(&n.pc.Mean, "mean", 0, "normal mean")
	fs.Float64Var(&n.pc.StdDev, "stddev", 0, "normal standard deviation")
	fs.Float64Var(&n.pc.Low, "low", 0, "uniform lower bound")
	fs.Float64Var(&n.pc.High, "high", 0, "uniform upper bound")
	fs.Uint64Var(&n.pc.Seed, "seed", 0, "random seed (0 uses the fixed default seed)")
	fs.IntVar(&n.pc.Precision, "round", 0, "decimals kept on perturbed entries (-1 keeps full precision)")
	fs.StringVar(&n.pc.Mode, "mode", "", "selection mode (nodeset, geography)")
	fs.IntSliceVar(&n.pc.Always, "always", nil, "zones perturbed as origin or destination")
	fs.IntSliceVar(&n.pc.IfOrigin, "if-origin", nil, "zones perturbed as origin")
	fs.IntSliceVar(&n.pc.IfDest, "if-dest", nil, "zones perturbed as destination")
	fs.StringVar(&n.pc.NodeFile, "nodes", "", "TNTP node file for geography mode")
	fs.Float64SliceVar(&n.pc.Box, "box", nil, "geography box xmin,xmax,ymin,ymax")
	fs.Float64SliceVar(&n.pc.Circle, "circle", nil, "geography circle cx,cy,r")
}

// merge overlays the changed flags onto base and revalidates.
func (n *noiseFlags) merge(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	p := &cfg.Perturb
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("kind", func() { p.Kind = strings.ToLower(n.pc.Kind) })
	set("mean", func() { p.Mean = n.pc.Mean })
	set("stddev", func() { p.StdDev = n.pc.StdDev })
	set("low", func() { p.Low = n.pc.Low })
	set("high", func() { p.High = n.pc.High })
	set("seed", func() { p.Seed = n.pc.Seed })
	set("round", func() { p.Precision = n.pc.Precision })
	set("mode", func() { p.Mode = strings.ToLower(n.pc.Mode) })
	set("always", func() { p.Always = n.pc.Always })
	set("if-origin", func() { p.IfOrigin = n.pc.IfOrigin })
	set("if-dest", func() { p.IfDest = n.pc.IfDest })
	set("nodes", func() { p.NodeFile = n.pc.NodeFile })
	set("box", func() { p.Box, p.Circle = n.pc.Box, nil })
	set("circle", func() { p.Circle, p.Box = n.pc.Circle, nil })

	if err := cfg.Validate(); err != nil {
		return usageErrorf("%v", err)
	}
	return nil
}

// buildSpec turns the perturb section into a perturb.Spec for a matrix of
// numZones zones, loading the node table in geography mode.
func buildSpec(pc config.PerturbConfig, numZones int, log logging.Logger) (perturb.Spec, error) {
	a, b := pc.Mean, pc.StdDev
	if strings.ToLower(pc.Kind) == config.KindUniform {
		a, b = pc.Low, pc.High
	}
	dist, err := perturb.ParseDistribution(pc.Kind, a, b)
	if err != nil {
		return perturb.Spec{}, err
	}
	spec := perturb.Spec{
		Dist:      dist,
		Mode:      perturb.NodeSet,
		Always:    pc.Always,
		IfOrigin:  pc.IfOrigin,
		IfDest:    pc.IfDest,
		Seed:      pc.Seed,
		Precision: pc.Precision,
	}
	if strings.ToLower(pc.Mode) != config.ModeGeography {
		return spec, nil
	}

	nodes, err := tntp.ReadNodesFile(pc.NodeFile, numZones, tntp.WithLogger(log.Named("tntp")))
	if err != nil {
		return perturb.Spec{}, err
	}
	spec.Mode = perturb.Geography
	spec.Geography = geo.NewTable(nodes)
	if len(pc.Box) == 4 {
		spec.Region, err = geo.BoundingBox(pc.Box[0], pc.Box[1], pc.Box[2], pc.Box[3])
	} else {
		spec.Region, err = geo.BoundingCircle(pc.Circle[0], pc.Circle[1], pc.Circle[2])
	}
	if err != nil {
		return perturb.Spec{}, err
	}
	return spec, nil
}
