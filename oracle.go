package vimgolf

import (
	"context"
	"errors"
	"fmt"
)

// Oracle is one session of the external state transition process. A session
// is not assumed to be safe for concurrent use; the search opens one session
// per worker.
type Oracle interface {
	// ApplyCommands replays path from the session's initial state and returns
	// the state after the final command.
	ApplyCommands(ctx context.Context, path Path) (EditorState, error)
	// State returns the session's current state without changing it.
	State(ctx context.Context) (EditorState, error)
}

// Fingerprinter is implemented by sessions whose state is not fully visible
// in EditorState, such as a pending count, operator or register. Fingerprint
// identifies the state reached by the last successful ApplyCommands; two
// paths with equal fingerprints must behave the same under any continuation.
// A session that is in no hidden state should return the EditorState's Key,
// so its states deduplicate against ones built without an oracle.
type Fingerprinter interface {
	Fingerprint() string
}

// OracleFactory opens a new session positioned at the search's initial state.
// Sessions that also implement io.Closer are closed when their worker exits.
type OracleFactory func(ctx context.Context) (Oracle, error)

// OracleErrorKind classifies oracle failures.
type OracleErrorKind int

const (
	OracleNotRunning OracleErrorKind = iota + 1
	OracleCommunicationFailure
	OracleTimeout
	OracleInvalidResponse
)

func (k OracleErrorKind) String() string {
	switch k {
	case OracleNotRunning:
		return "not running"
	case OracleCommunicationFailure:
		return "communication failure"
	case OracleTimeout:
		return "timeout"
	case OracleInvalidResponse:
		return "invalid response"
	}
	return "unknown"
}

var (
	ErrOracleNotRunning      = errors.New("oracle not running")
	ErrOracleCommunication   = errors.New("oracle communication failure")
	ErrOracleTimeout         = errors.New("oracle timeout")
	ErrOracleInvalidResponse = errors.New("oracle invalid response")
)

var oracleSentinels = map[OracleErrorKind]error{
	OracleNotRunning:           ErrOracleNotRunning,
	OracleCommunicationFailure: ErrOracleCommunication,
	OracleTimeout:              ErrOracleTimeout,
	OracleInvalidResponse:      ErrOracleInvalidResponse,
}

// OracleError reports a failed ApplyCommands or State call.
type OracleError struct {
	Kind OracleErrorKind
	Path Path
	Err  error
}

func (e *OracleError) Error() string {
	msg := "oracle " + e.Kind.String()
	if e.Path != nil {
		msg += fmt.Sprintf(" applying %q", e.Path.String())
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OracleError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so callers can write
// errors.Is(err, ErrOracleTimeout).
func (e *OracleError) Is(target error) bool {
	return oracleSentinels[e.Kind] == target
}

// NewOracleError is a convenience constructor for oracle implementations.
func NewOracleError(kind OracleErrorKind, path Path, err error) *OracleError {
	return &OracleError{Kind: kind, Path: path, Err: err}
}
