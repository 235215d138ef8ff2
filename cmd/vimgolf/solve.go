package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/vimgolf"
	"github.com/pdrpinto/vimgolf/cache"
	"github.com/pdrpinto/vimgolf/internal/config"
	"github.com/pdrpinto/vimgolf/internal/ctxlog"
	"github.com/pdrpinto/vimgolf/internal/editor"
	"github.com/pdrpinto/vimgolf/internal/metrics"
)

type solveFlags struct {
	puzzle      string
	timeout     time.Duration
	concurrency int
	verbose     bool
	closedSet   bool
	heuristic   string
	noCache     bool
	cacheSize   int
	metricsAddr string
}

func newSolveCmd(global *globalFlags) *cobra.Command {
	flags := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve PUZZLE.hcl",
		Short: "Search for the shortest key sequence solving a puzzle",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			ctx, err := global.setup(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			p, err := loadPuzzle(args[0], flags.puzzle)
			if err != nil {
				return err
			}
			return solve(ctx, cmd.OutOrStdout(), cfg, p.Name, p.Start, p.Target, p.Alphabet())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.puzzle, "puzzle", "", "Name of the puzzle to solve when the file defines several.")
	f.DurationVar(&flags.timeout, "timeout", 0, "Wall-clock budget for the search.")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Number of nodes expanded in parallel.")
	f.BoolVar(&flags.verbose, "verbose", false, "Log every dispatched node at info level.")
	f.BoolVar(&flags.closedSet, "closed-set", false, "Skip states already expanded at an equal or lower cost.")
	f.StringVar(&flags.heuristic, "heuristic", "", "Heuristic: chardiff or zero.")
	f.BoolVar(&flags.noCache, "no-cache", false, "Disable the shared oracle result cache.")
	f.IntVar(&flags.cacheSize, "cache-size", 0, "Maximum number of cached oracle results.")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address.")
	return cmd
}

// apply copies every flag the user set over the configuration file values.
func (f *solveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("timeout") {
		cfg.Search.Timeout = f.timeout
	}
	if changed("concurrency") {
		cfg.Search.Concurrency = f.concurrency
	}
	if changed("verbose") {
		cfg.Search.Verbose = f.verbose
	}
	if changed("closed-set") {
		cfg.Search.ClosedSet = f.closedSet
	}
	if changed("heuristic") {
		cfg.Search.Heuristic = f.heuristic
	}
	if changed("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if changed("cache-size") {
		cfg.Cache.Size = f.cacheSize
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
}

func solve(
	ctx context.Context,
	outW io.Writer,
	cfg config.Config,
	name string,
	start, target vimgolf.EditorState,
	alphabet vimgolf.Alphabet,
) error {
	logger := ctxlog.FromContext(ctx).With("puzzle", name)
	ctx = ctxlog.WithLogger(ctx, logger)

	oracles := editor.NewFactory(start, cfg.Cache.Snapshots)
	var results *cache.Oracle
	if cfg.Cache.Enabled {
		results = cache.NewOracle(oracles, cfg.Cache.Size)
		oracles = results.Factory()
	}

	options := []vimgolf.Option{
		vimgolf.WithTimeout(cfg.Search.Timeout),
		vimgolf.WithConcurrency(cfg.Search.Concurrency),
		vimgolf.WithVerbose(cfg.Search.Verbose),
		vimgolf.WithClosedSet(cfg.Search.ClosedSet),
		vimgolf.WithHeuristic(heuristicFor(cfg.Search.Heuristic)),
		vimgolf.WithPruning(pruningFor(cfg.Search)),
		vimgolf.WithNeighbors(alphabet),
	}

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		options = append(options, vimgolf.WithRecorder(metrics.New(reg)))
		srv, err := metrics.Listen(ctx, cfg.Metrics.Addr, reg)
		if err != nil {
			return failure("%v", err)
		}
		logger.Info("Serving metrics.", "addr", srv.Addr())
		go func() {
			if err := srv.Serve(); err != nil {
				logger.Error("Metrics server stopped.", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	result, err := vimgolf.Search(ctx, oracles, start, target, options...)
	if results != nil {
		stats := results.Stats()
		logger.Debug("Oracle cache statistics.", "hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	}
	switch {
	case errors.Is(err, vimgolf.ErrTimeout):
		return failure("no solution within %s (expanded %d nodes)", cfg.Search.Timeout, result.ExpandedNodes)
	case errors.Is(err, vimgolf.ErrNoPathFound):
		return failure("puzzle %q has no solution with the available keys", name)
	case errors.Is(err, context.Canceled):
		return failure("search interrupted")
	case err != nil:
		return failure("search failed: %v", err)
	}

	fmt.Fprintf(outW, "keys:     %s\n", result.Path)
	fmt.Fprintf(outW, "length:   %d\n", len(result.Path))
	fmt.Fprintf(outW, "optimal:  %t\n", result.Optimal)
	fmt.Fprintf(outW, "expanded: %d\n", result.ExpandedNodes)
	fmt.Fprintf(outW, "elapsed:  %s\n", result.Elapsed.Round(time.Millisecond))
	return nil
}

func heuristicFor(name string) vimgolf.Heuristic {
	if name == config.HeuristicZero {
		return vimgolf.Zero{}
	}
	return vimgolf.CharDiff{}
}

func pruningFor(cfg config.SearchConfig) vimgolf.Pruning {
	if cfg.MaxExtraChars < 0 && cfg.MaxExtraLines < 0 {
		return vimgolf.BoundPruning{}
	}
	return vimgolf.GrowthPruning{MaxExtra: cfg.MaxExtraChars, MaxExtraLines: cfg.MaxExtraLines}
}
