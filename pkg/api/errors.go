package api

import (
	"errors"
	"fmt"
)

// ErrOutputConflict is returned when a stage attempts to commit under a
// key already committed by a different stage (or seeded at run start).
var ErrOutputConflict = errors.New("output key already committed by another stage")

// CallError is the typed transient failure returned by generator and
// checker backends. The code is matched against RetryPolicy.RetryableCodes
// to decide whether the call is retried; codes outside the set, and errors
// of any other type, are fatal on first occurrence.
type CallError struct {
	Code    int
	Message string
}

// NewCallError returns a CallError with the given code and message.
func NewCallError(code int, message string) *CallError {
	return &CallError{Code: code, Message: message}
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call failed (code %d): %s", e.Code, e.Message)
}

// CallCode extracts the failure code if err is (or wraps) a CallError.
func CallCode(err error) (int, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}

// FailureKind classifies why a stage (and therefore its run) failed.
type FailureKind string

const (
	// FailureMissingInput: a declared input key was absent from the
	// workflow state. A configuration/ordering bug; never retried.
	FailureMissingInput FailureKind = "missing_input"

	// FailureGeneratorCall: a generate or revise call failed after
	// exhausting its retry budget.
	FailureGeneratorCall FailureKind = "generator_call"

	// FailureCheckerCall: a checker call failed after exhausting its
	// retry budget. A failed checker is never treated as an implicit
	// approval or rejection.
	FailureCheckerCall FailureKind = "checker_call"

	// FailureNonConvergence: the refinement loop exhausted its iteration
	// budget and the engine is configured with FailExhausted. Under the
	// default AcceptExhausted policy this kind is never produced.
	FailureNonConvergence FailureKind = "non_convergence"

	// FailureOutputConflict: the stage's output key was already committed
	// by another stage or seeded at run start. A configuration bug.
	FailureOutputConflict FailureKind = "output_conflict"
)

// MissingInputError reports an input key a stage declared but the
// workflow state does not hold. It is detected before any generator call.
type MissingInputError struct {
	Stage string
	Key   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("stage %s: missing input key %q", e.Stage, e.Key)
}

// StageError is the fatal failure that aborts a pipeline run. It names
// the stage and classifies the failure so callers can report diagnostics
// against the partial workflow state.
type StageError struct {
	Stage string
	Kind  FailureKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
