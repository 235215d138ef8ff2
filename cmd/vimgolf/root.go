package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/vimgolf/internal/config"
	"github.com/pdrpinto/vimgolf/internal/ctxlog"
	"github.com/pdrpinto/vimgolf/internal/puzzle"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	errW       io.Writer
}

func newRootCmd(outW, errW io.Writer) *cobra.Command {
	flags := &globalFlags{errW: errW}

	root := &cobra.Command{
		Use:   "vimgolf",
		Short: "Find the shortest key sequence that turns one buffer into another",
		Long: `vimgolf searches for the shortest sequence of vim keystrokes that transforms
a puzzle's start buffer into its target buffer. Puzzles are described in HCL
files; engine, cache, logging and metrics settings come from an optional YAML
configuration file and can be overridden with flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%v\n\n%s", err, cmd.UsageString())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML configuration file.")
	pf.StringVar(&flags.logLevel, "log-level", "", "Logging level: debug, info, warn, error.")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log output format: text or json.")

	root.AddCommand(
		newSolveCmd(flags),
		newReplayCmd(flags),
		newKeysCmd(),
	)
	return root
}

// load reads the configuration file and applies the global flag overrides.
// Callers apply their own overrides and then call setup.
func (f *globalFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, usageError("%v", err)
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	return cfg, nil
}

// setup validates cfg and returns a context carrying the configured logger.
func (f *globalFlags) setup(ctx context.Context, cfg config.Config) (context.Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, usageError("invalid configuration: %v", err)
	}
	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format, f.errW)
	if err != nil {
		return nil, usageError("invalid configuration: %v", err)
	}
	return ctxlog.WithLogger(ctx, logger), nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError("%v\n\n%s", err, cmd.UsageString())
		}
		return nil
	}
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return usageError("%v\n\n%s", err, cmd.UsageString())
		}
		return nil
	}
}

func loadPuzzle(path, name string) (puzzle.Puzzle, error) {
	puzzles, err := puzzle.Load(path)
	if err != nil {
		return puzzle.Puzzle{}, usageError("%v", err)
	}
	p, err := puzzle.Select(puzzles, name)
	if err != nil {
		return puzzle.Puzzle{}, usageError("%s: %v", path, err)
	}
	return p, nil
}
