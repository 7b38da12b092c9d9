// SPDX-License-Identifier: MIT

// Package config provides configuration loading, defaults, and validation
// for odsynth.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/katalvlaran/odsynth/internal/logging"
)

// Config is the root configuration object.
type Config struct {
	Log     logging.LogConfig `mapstructure:"log"`
	Codec   CodecConfig       `mapstructure:"codec"`
	Perturb PerturbConfig     `mapstructure:"perturb"`
	Gravity GravityConfig     `mapstructure:"gravity"`
	Solver  SolverConfig      `mapstructure:"solver"`
	Ledger  LedgerConfig      `mapstructure:"ledger"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
}

// CodecConfig controls TNTP output.
type CodecConfig struct {
	// Precision is the number of decimals written; -1 writes the shortest exact value.
	Precision int `mapstructure:"precision"`
}

// PerturbConfig is the noise recipe.
type PerturbConfig struct {
	Kind      string  `mapstructure:"kind"` // normal | uniform
	Mean      float64 `mapstructure:"mean"`
	StdDev    float64 `mapstructure:"stddev"`
	Low       float64 `mapstructure:"low"`
	High      float64 `mapstructure:"high"`
	Seed      uint64  `mapstructure:"seed"`
	Precision int     `mapstructure:"precision"`

	Mode     string `mapstructure:"mode"` // nodeset | geography
	Always   []int  `mapstructure:"always"`
	IfOrigin []int  `mapstructure:"if_origin"`
	IfDest   []int  `mapstructure:"if_dest"`

	// Geography mode: node file plus exactly one region.
	NodeFile string    `mapstructure:"node_file"`
	Box      []float64 `mapstructure:"box"`    // xmin, xmax, ymin, ymax
	Circle   []float64 `mapstructure:"circle"` // cx, cy, r
}

// GravityConfig bounds the IPF loop.
type GravityConfig struct {
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"` // 0 means the default
}

// SolverConfig locates the external assignment program.
type SolverConfig struct {
	Binary  string        `mapstructure:"binary"`
	Dir     string        `mapstructure:"dir"`
	LogFile string        `mapstructure:"log_file"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LedgerConfig locates the trial database. An empty path disables the ledger.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig locates the textfile export. An empty path disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Codec
	if c.Codec.Precision < -1 || c.Codec.Precision > 15 {
		return fmt.Errorf("config: codec.precision %d is out of range [-1, 15]", c.Codec.Precision)
	}

	// Perturb
	p := c.Perturb
	for name, v := range map[string]float64{"mean": p.Mean, "stddev": p.StdDev, "low": p.Low, "high": p.High} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("config: perturb.%s must be finite", name)
		}
	}
	switch strings.ToLower(p.Kind) {
	case KindNormal:
		if p.StdDev < 0 {
			return fmt.Errorf("config: perturb.stddev must be ≥ 0, got %g", p.StdDev)
		}
	case KindUniform:
		if p.Low > p.High {
			return fmt.Errorf("config: perturb.low %g exceeds perturb.high %g", p.Low, p.High)
		}
	default:
		return fmt.Errorf("config: perturb.kind %q is invalid; expected normal|uniform", p.Kind)
	}
	if p.Precision < -1 || p.Precision > 15 {
		return fmt.Errorf("config: perturb.precision %d is out of range [-1, 15]", p.Precision)
	}
	switch strings.ToLower(p.Mode) {
	case ModeNodeSet:
	case ModeGeography:
		if p.NodeFile == "" {
			return fmt.Errorf("config: perturb.node_file is required in geography mode")
		}
		if (len(p.Box) == 0) == (len(p.Circle) == 0) {
			return fmt.Errorf("config: geography mode needs exactly one of perturb.box or perturb.circle")
		}
	default:
		return fmt.Errorf("config: perturb.mode %q is invalid; expected nodeset|geography", p.Mode)
	}
	if n := len(p.Box); n != 0 && n != 4 {
		return fmt.Errorf("config: perturb.box needs 4 values (xmin, xmax, ymin, ymax), got %d", n)
	}
	if n := len(p.Circle); n != 0 && n != 3 {
		return fmt.Errorf("config: perturb.circle needs 3 values (cx, cy, r), got %d", n)
	}

	// Gravity
	if c.Gravity.MaxIterations < 1 {
		return fmt.Errorf("config: gravity.max_iterations must be ≥ 1, got %d", c.Gravity.MaxIterations)
	}
	if !(c.Gravity.Tolerance >= 0) || math.IsInf(c.Gravity.Tolerance, 0) {
		return fmt.Errorf("config: gravity.tolerance must be finite and ≥ 0, got %g", c.Gravity.Tolerance)
	}

	// Solver
	if c.Solver.Timeout <= 0 {
		return fmt.Errorf("config: solver.timeout must be positive, got %s", c.Solver.Timeout)
	}

	return nil
}
