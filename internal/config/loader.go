// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all odsynth settings.
const envPrefix = "ODSYNTH"

// newViper builds a viper instance with the standard settings: YAML file
// type, ODSYNTH_ env prefix, automatic env binding, a "." → "_" key replacer
// (perturb.stddev ⇒ ODSYNTH_PERTURB_STDDEV) and every key registered with
// its default so env overrides reach Unmarshal even without a file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{})

	v.SetDefault("codec.precision", DefaultCodecPrecision)

	v.SetDefault("perturb.kind", DefaultPerturbKind)
	v.SetDefault("perturb.mean", DefaultPerturbMean)
	v.SetDefault("perturb.stddev", DefaultPerturbStdDev)
	v.SetDefault("perturb.low", DefaultPerturbLow)
	v.SetDefault("perturb.high", DefaultPerturbHigh)
	v.SetDefault("perturb.seed", 0)
	v.SetDefault("perturb.precision", DefaultPerturbPrecision)
	v.SetDefault("perturb.mode", DefaultPerturbMode)
	v.SetDefault("perturb.always", []int{})
	v.SetDefault("perturb.if_origin", []int{})
	v.SetDefault("perturb.if_dest", []int{})
	v.SetDefault("perturb.node_file", "")
	v.SetDefault("perturb.box", []float64{})
	v.SetDefault("perturb.circle", []float64{})

	v.SetDefault("gravity.max_iterations", DefaultGravityMaxIterations)
	v.SetDefault("gravity.tolerance", DefaultGravityTolerance)

	v.SetDefault("solver.binary", DefaultSolverBinary)
	v.SetDefault("solver.dir", "")
	v.SetDefault("solver.log_file", DefaultSolverLogFile)
	v.SetDefault("solver.timeout", DefaultSolverTimeout)

	v.SetDefault("ledger.path", "")
	v.SetDefault("metrics.textfile", "")
}

// Load reads the YAML file at configPath (skipped when empty), merges any
// ODSYNTH_* environment overrides, applies defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from ODSYNTH_* environment variables and
// defaults alone.
//
//	ODSYNTH_<SECTION>_<FIELD>   e.g.  ODSYNTH_PERTURB_KIND, ODSYNTH_SOLVER_TIMEOUT
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
