// SPDX-License-Identifier: MIT

// Package cli wires the odsynth command tree: configuration, logging and
// metrics are initialised once in the root command and handed to every
// subcommand through the command context.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/odsynth/internal/config"
	"github.com/katalvlaran/odsynth/internal/logging"
	"github.com/katalvlaran/odsynth/internal/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// App carries initialised dependencies through the command tree.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.Metrics
}

type appKey struct{}

// NewRootCommand creates the root command with its global flags and subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(new(*App))
}

// newRootCommand stores the initialised App in *slot so Execute can flush
// metrics whether or not the command succeeded.
func newRootCommand(slot **App) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "odsynth",
		Short: "Synthesize and perturb TNTP travel-demand matrices",
		Long: "odsynth reads and writes TNTP origin-destination demand matrices, applies\n" +
			"seeded multiplicative noise to selected zone pairs, synthesizes matrices with a\n" +
			"doubly-constrained gravity model and drives an external assignment solver.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := persistentPreRun(cmd, opts)
			*slot = app
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML); ODSYNTH_* env vars override it")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format (console, json)")

	cmd.AddCommand(
		newPerturbCmd(),
		newGravityCmd(),
		newCentralNodesCmd(),
		newTrialCmd(),
		newStatsCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config, builds the logger and metrics, then stores the App.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, usageErrorf("%v", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, usageErrorf("logger initialization failed: %v", err)
	}
	logging.SetDefault(logger)

	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, app))
	return app, nil
}

func appFrom(cmd *cobra.Command) (*App, error) {
	if ctx := cmd.Context(); ctx != nil {
		if app, ok := ctx.Value(appKey{}).(*App); ok && app != nil {
			return app, nil
		}
	}
	return nil, fmt.Errorf("cli: command %q ran without initialisation", cmd.Name())
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var app *App
	root := newRootCommand(&app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if app != nil {
		// Failed runs still export their counters.
		if werr := app.Metrics.WriteTextfile(app.Config.Metrics.Textfile); werr != nil {
			if err == nil {
				err = werr
			} else {
				app.Logger.Error("metrics textfile not written", logging.Err(werr))
			}
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitCode(err)
	}
	return ExitOK
}
