package vimgolf

import "time"

// PruneReason labels why a candidate command was not added to the open set.
type PruneReason string

const (
	PruneBound       PruneReason = "bound"
	PruneDomain      PruneReason = "domain"
	PruneOracleError PruneReason = "oracle_error"
	PruneDuplicate   PruneReason = "duplicate"
)

// Outcome labels how a search ended.
type Outcome string

const (
	OutcomeOptimal   Outcome = "optimal"
	OutcomeNoPath    Outcome = "no_path"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Recorder receives search telemetry. Implementations must be safe for
// concurrent use; workers call them from their own goroutines.
type Recorder interface {
	NodeExpanded()
	CandidatePruned(reason PruneReason)
	OracleCall(elapsed time.Duration, err error)
	IncumbentImproved(length int)
	SearchFinished(outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) NodeExpanded()                         {}
func (nopRecorder) CandidatePruned(PruneReason)           {}
func (nopRecorder) OracleCall(time.Duration, error)       {}
func (nopRecorder) IncumbentImproved(int)                 {}
func (nopRecorder) SearchFinished(Outcome, time.Duration) {}
