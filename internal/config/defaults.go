// SPDX-License-Identifier: MIT

package config

import (
	"time"

	"github.com/katalvlaran/odsynth/internal/logging"
)

// Accepted enum values.
const (
	KindNormal  = "normal"
	KindUniform = "uniform"

	ModeNodeSet   = "nodeset"
	ModeGeography = "geography"
)

// Default values, matching the library defaults of each package.
const (
	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = logging.FormatConsole

	DefaultCodecPrecision = -1

	DefaultPerturbKind      = KindNormal
	DefaultPerturbMean      = 1.0
	DefaultPerturbStdDev    = 0.1
	DefaultPerturbLow       = 0.9
	DefaultPerturbHigh      = 1.1
	DefaultPerturbPrecision = 1
	DefaultPerturbMode      = ModeNodeSet

	DefaultGravityMaxIterations = 1000
	DefaultGravityTolerance     = 1e-8

	DefaultSolverBinary  = "tap"
	DefaultSolverLogFile = "full_log.txt"
	DefaultSolverTimeout = 10 * time.Minute
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{
		Codec:   CodecConfig{Precision: DefaultCodecPrecision},
		Perturb: PerturbConfig{Precision: DefaultPerturbPrecision},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields. Fields whose zero value is also a
// legal setting (precisions, seed, distribution parameters) are left alone
// here; the loader seeds those through viper defaults instead.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Perturb ───────────────────────────────────────────────────────────────
	if cfg.Perturb.Kind == "" {
		cfg.Perturb.Kind = DefaultPerturbKind
		if cfg.Perturb.Mean == 0 && cfg.Perturb.StdDev == 0 {
			cfg.Perturb.Mean, cfg.Perturb.StdDev = DefaultPerturbMean, DefaultPerturbStdDev
		}
		if cfg.Perturb.Low == 0 && cfg.Perturb.High == 0 {
			cfg.Perturb.Low, cfg.Perturb.High = DefaultPerturbLow, DefaultPerturbHigh
		}
	}
	if cfg.Perturb.Mode == "" {
		cfg.Perturb.Mode = DefaultPerturbMode
	}

	// ── Gravity ───────────────────────────────────────────────────────────────
	if cfg.Gravity.MaxIterations == 0 {
		cfg.Gravity.MaxIterations = DefaultGravityMaxIterations
	}
	if cfg.Gravity.Tolerance == 0 {
		cfg.Gravity.Tolerance = DefaultGravityTolerance
	}

	// ── Solver ────────────────────────────────────────────────────────────────
	if cfg.Solver.Binary == "" {
		cfg.Solver.Binary = DefaultSolverBinary
	}
	if cfg.Solver.LogFile == "" {
		cfg.Solver.LogFile = DefaultSolverLogFile
	}
	if cfg.Solver.Timeout == 0 {
		cfg.Solver.Timeout = DefaultSolverTimeout
	}
}
