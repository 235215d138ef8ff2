package vimgolf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ExpandTask represents a request from the dispatcher to the workers.
type ExpandTask struct {
	Node *Node
	Step int
}

// runWorker opens one oracle session and expands tasks with it until ctx ends.
// A session that cannot be opened stops the whole pool.
func (s *search) runWorker(ctx context.Context, workerID int, tasks <-chan ExpandTask) error {
	logger := s.logger.With("worker_id", workerID)

	oracle, err := s.oracles(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("open oracle session for worker %d: %w", workerID, err)
	}
	if closer, ok := oracle.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close oracle session.", "error", err)
			}
		}()
	}
	logger.Debug("Worker started.")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Worker finished.")
			return nil
		case task := <-tasks:
			s.expand(ctx, logger, oracle, task)
		}
	}
}

// expand generates the successors of one popped node. The in-flight counter is
// decremented exactly once on every exit path, after the last Add.
func (s *search) expand(ctx context.Context, logger *slog.Logger, oracle Oracle, task ExpandTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Expansion panicked.", "step", task.Step, "panic", r)
		}
		s.incumbent.Dec()
		select {
		case s.finished <- struct{}{}:
		default:
		}
	}()

	node := task.Node
	logger = logger.With("step", task.Step)
	for _, cmd := range s.opts.Neighbors.Get(node.state, s.target) {
		if ctx.Err() != nil {
			return
		}

		tentativeG := node.costSoFar + 1
		bound, hasBound := s.incumbent.Bound()
		if s.opts.Pruning.ShouldPruneByBound(tentativeG, bound, hasBound) {
			s.prune(PruneBound)
			continue
		}

		path := node.path.Append(cmd)
		started := time.Now()
		state, err := oracle.ApplyCommands(ctx, path)
		s.opts.Recorder.OracleCall(time.Since(started), err)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("Oracle failed; skipping candidate.", "path", path.String(), "error", err)
			s.prune(PruneOracleError)
			continue
		}

		if s.opts.Pruning.ShouldPruneByDomain(state, s.target) {
			s.prune(PruneDomain)
			continue
		}

		key := state.Key()
		if fp, ok := oracle.(Fingerprinter); ok {
			key = fp.Fingerprint()
		}
		child := newNode(state, key, path, tentativeG, s.opts.Heuristic.Estimate(state, s.target), node)
		if s.opts.Goal(state, s.target) && s.incumbent.ConsiderNode(child) {
			s.improved(child)
		}
		if !s.open.Add(child) {
			s.opts.Recorder.CandidatePruned(PruneDuplicate)
		}
	}
}

func (s *search) prune(reason PruneReason) {
	s.pruned.Add(1)
	s.opts.Recorder.CandidatePruned(reason)
}
