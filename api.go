package vimgolf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdrpinto/vimgolf/internal/ctxlog"
)

var (
	// ErrTimeout is returned when the search exceeds its wall-clock budget.
	ErrTimeout = errors.New("search timed out")
	// ErrNoPathFound is returned when the open set is exhausted with nothing
	// in flight and no complete path was ever found.
	ErrNoPathFound = errors.New("no path found")
	// ErrNoOracle is returned when Search is called without an oracle factory.
	ErrNoOracle = errors.New("no oracle factory")
)

// Result contains the outcome of a search.
type Result struct {
	Path             Path
	Cost             float64
	ExpandedNodes    int
	PrunedCandidates int
	Found            bool
	// Optimal reports that no shorter path exists under the configured
	// heuristic and pruning. Every successful Search sets it.
	Optimal bool
	Elapsed time.Duration

	goal *Node
}

// Trail returns the states visited by Path, root first. It is empty when no
// path was found.
func (r Result) Trail() []EditorState {
	if r.goal == nil {
		return nil
	}
	return r.goal.Trail()
}

// Options defines parameters for the search.
type Options struct {
	Timeout     time.Duration
	Concurrency int
	Verbose     bool
	Heuristic   Heuristic
	Pruning     Pruning
	Neighbors   Neighbors
	Goal        GoalTest
	// ClosedSet skips states that were already expanded at an equal or lower
	// cost. Off by default: termination then rests on bound pruning alone.
	ClosedSet bool
	Observer  Observer
	Recorder  Recorder
}

// DefaultOptions returns the options Search starts from before applying any
// Option.
func DefaultOptions() Options {
	return Options{
		Timeout:     60 * time.Second,
		Concurrency: 4,
		Heuristic:   CharDiff{},
		Pruning:     BoundPruning{},
		Neighbors:   Alphabet(DefaultAlphabet()),
		Goal:        BufferAndMode,
		Recorder:    nopRecorder{},
	}
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithTimeout bounds the wall-clock time of the search. A value <= 0 fails the
// search with ErrTimeout before any expansion.
func WithTimeout(timeout time.Duration) Option {
	return func(options *Options) { options.Timeout = timeout }
}

// WithConcurrency sets how many expansions may run at once. Values below one
// are treated as one.
func WithConcurrency(n int) Option {
	return func(options *Options) { options.Concurrency = n }
}

// WithVerbose logs dispatcher and worker progress at Info instead of Debug.
func WithVerbose(verbose bool) Option {
	return func(options *Options) { options.Verbose = verbose }
}

// WithHeuristic sets the remaining-cost estimate used to order the open set.
func WithHeuristic(h Heuristic) Option {
	return func(options *Options) { options.Heuristic = h }
}

// WithPruning sets the policy that discards candidates by bound or by state.
func WithPruning(p Pruning) Option {
	return func(options *Options) { options.Pruning = p }
}

// WithNeighbors sets the commands tried from each expanded state.
func WithNeighbors(n Neighbors) Option {
	return func(options *Options) { options.Neighbors = n }
}

// WithGoal sets the test deciding whether a state satisfies the target.
func WithGoal(goal GoalTest) Option {
	return func(options *Options) { options.Goal = goal }
}

// WithClosedSet skips nodes whose key was already expanded at an equal or
// lower cost.
func WithClosedSet(enabled bool) Option {
	return func(options *Options) { options.ClosedSet = enabled }
}

// WithObserver calls observer with a Snapshot on every dispatcher pop.
func WithObserver(observer Observer) Option {
	return func(options *Options) { options.Observer = observer }
}

// WithRecorder sends search telemetry to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(options *Options) { options.Recorder = recorder }
}

func (o *Options) normalize() {
	defaults := DefaultOptions()
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Heuristic == nil {
		o.Heuristic = defaults.Heuristic
	}
	if o.Pruning == nil {
		o.Pruning = defaults.Pruning
	}
	if o.Neighbors == nil {
		o.Neighbors = defaults.Neighbors
	}
	if o.Goal == nil {
		o.Goal = defaults.Goal
	}
	if o.Recorder == nil {
		o.Recorder = defaults.Recorder
	}
}

// search is the state shared between the dispatcher and its workers.
type search struct {
	opts      Options
	target    EditorState
	oracles   OracleFactory
	open      *OpenSet
	incumbent *Incumbent
	logger    *slog.Logger
	level     slog.Level

	// finished receives a value whenever a worker completes an expansion.
	finished chan struct{}
	pruned   atomic.Int64
}

// Search runs a best-first search from initial to target. Up to
// Options.Concurrency nodes are expanded speculatively in parallel, each by a
// worker holding its own oracle session. The search stops once an incumbent
// exists, nothing is in flight, and no open node has a lower priority than the
// incumbent's length (an empty open set included).
func Search(
	ctx context.Context,
	oracles OracleFactory,
	initial EditorState,
	target EditorState,
	options ...Option,
) (Result, error) {
	// --- Apply options ---
	searchOptions := DefaultOptions()
	for _, option := range options {
		option(&searchOptions)
	}
	searchOptions.normalize()

	if oracles == nil {
		return Result{}, ErrNoOracle
	}

	started := time.Now()
	ctx = ctxlog.With(ctx, "search_id", uuid.NewString())
	s := &search{
		opts:      searchOptions,
		target:    target,
		oracles:   oracles,
		open:      NewOpenSet(),
		incumbent: &Incumbent{},
		logger:    ctxlog.FromContext(ctx),
		level:     slog.LevelDebug,
		finished:  make(chan struct{}, 1),
	}
	if searchOptions.Verbose {
		s.level = slog.LevelInfo
	}
	s.logger.Info("Search started.",
		"lines", initial.LineCount(), "concurrency", searchOptions.Concurrency, "timeout", searchOptions.Timeout)

	deadline := started.Add(searchOptions.Timeout)
	if !time.Now().Before(deadline) {
		return s.finish(Result{}, started, OutcomeTimeout, ErrTimeout)
	}

	searchCtx, cancel := context.WithDeadline(ctx, deadline)
	group, groupCtx := errgroup.WithContext(searchCtx)
	tasks := make(chan ExpandTask)

	// --- Start worker pool ---
	for i := 0; i < searchOptions.Concurrency; i++ {
		workerID := i
		group.Go(func() error { return s.runWorker(groupCtx, workerID, tasks) })
	}
	shutdown := func(wait bool) {
		cancel()
		if wait {
			_ = group.Wait()
			return
		}
		// In-flight expansions may still be inside the oracle; let them
		// drain without holding up the caller.
		go func() { _ = group.Wait() }()
	}

	root := NewNode(initial, Path{}, 0, searchOptions.Heuristic.Estimate(initial, target), nil)
	s.open.Add(root)

	var closed map[string]float64
	if searchOptions.ClosedSet {
		closed = make(map[string]float64)
	}

	// --- Dispatcher loop ---
	expanded := 0
	step := 0
	for {
		if groupCtx.Err() != nil {
			stats := Result{ExpandedNodes: expanded}
			switch {
			case ctx.Err() != nil:
				shutdown(false)
				return s.finish(stats, started, OutcomeCancelled, ctx.Err())
			case errors.Is(searchCtx.Err(), context.DeadlineExceeded):
				shutdown(false)
				return s.finish(stats, started, OutcomeTimeout, ErrTimeout)
			default:
				err := group.Wait()
				cancel()
				return s.finish(stats, started, OutcomeFailed, fmt.Errorf("expansion workers stopped: %w", err))
			}
		}

		if s.proven() {
			shutdown(true)
			return s.finish(s.incumbentResult(expanded), started, OutcomeOptimal, nil)
		}

		if s.incumbent.InFlight() >= searchOptions.Concurrency {
			s.wait(groupCtx)
			continue
		}

		current, ok := s.open.Pop()
		if !ok {
			if s.incumbent.InFlight() == 0 {
				shutdown(true)
				// Every candidate shorter than the incumbent has been
				// expanded or pruned, which is as strong as the peek test.
				if _, _, found := s.incumbent.Path(); found {
					s.logger.Log(groupCtx, s.level, "Open set exhausted; incumbent is shortest.")
					return s.finish(s.incumbentResult(expanded), started, OutcomeOptimal, nil)
				}
				return s.finish(Result{ExpandedNodes: expanded}, started, OutcomeNoPath, ErrNoPathFound)
			}
			s.wait(groupCtx)
			continue
		}
		step++
		if searchOptions.Observer != nil {
			searchOptions.Observer(s.snapshot(step, current))
		}

		if closed != nil {
			if cost, seen := closed[current.key]; seen && cost <= current.costSoFar {
				continue
			}
			closed[current.key] = current.costSoFar
		}

		if searchOptions.Goal(current.state, target) {
			if s.incumbent.ConsiderNode(current) {
				s.improved(current)
			}
			continue
		}

		s.incumbent.Inc()
		select {
		case tasks <- ExpandTask{Node: current, Step: step}:
			expanded++
			searchOptions.Recorder.NodeExpanded()
			s.logger.Log(groupCtx, s.level, "Dispatched node.",
				"step", step, "cost", current.costSoFar, "priority", current.priority,
				"open", s.open.Count(), "path", current.path.String())
		case <-groupCtx.Done():
			s.incumbent.Dec()
		}
	}
}

// proven is the termination test. The in-flight count is read before the open
// set: only the dispatcher increments it, and workers finish adding before they
// decrement, so once it reads zero the open set can no longer change under us.
// An empty open set is left to the exhaustion branch of the dispatcher.
func (s *search) proven() bool {
	if s.incumbent.InFlight() != 0 {
		return false
	}
	bound, ok := s.incumbent.Bound()
	if !ok {
		return false
	}
	if bound == 0 {
		// nothing is shorter than the empty path
		return true
	}
	best, hasOpen := s.open.Peek()
	return hasOpen && best.priority >= bound
}

// wait blocks until a worker finishes, a node is added, or ctx ends.
func (s *search) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-s.finished:
	case <-s.open.Changed():
	}
}

func (s *search) improved(goal *Node) {
	s.opts.Recorder.IncumbentImproved(len(goal.path))
	s.logger.Log(context.Background(), s.level, "Incumbent improved.",
		"length", len(goal.path), "path", goal.path.String())
}

func (s *search) incumbentResult(expanded int) Result {
	path, goal, _ := s.incumbent.Path()
	return Result{
		Path:          path,
		Cost:          float64(len(path)),
		ExpandedNodes: expanded,
		Found:         true,
		Optimal:       true,
		goal:          goal,
	}
}

func (s *search) finish(result Result, started time.Time, outcome Outcome, err error) (Result, error) {
	result.Elapsed = time.Since(started)
	result.PrunedCandidates = int(s.pruned.Load())
	s.opts.Recorder.SearchFinished(outcome, result.Elapsed)

	attrs := []any{
		"outcome", string(outcome), "elapsed", result.Elapsed,
		"expanded", result.ExpandedNodes, "pruned", result.PrunedCandidates,
	}
	if err != nil {
		s.logger.Info("Search failed.", append(attrs, "error", err)...)
		return result, err
	}
	s.logger.Info("Search finished.", append(attrs, "length", len(result.Path), "path", result.Path.String())...)
	return result, nil
}
