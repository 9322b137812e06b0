package api

// Status represents the lifecycle state of a pipeline run.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// LoopOutcome is the terminal state of one stage's refinement loop. Both
// outcomes are valid, non-error results: the stage commits the carried
// artifact either way (unless the engine is configured with
// FailExhausted).
type LoopOutcome string

const (
	// OutcomeConverged: the checker panel unanimously approved.
	OutcomeConverged LoopOutcome = "CONVERGED"

	// OutcomeExhausted: the iteration budget was spent without unanimous
	// approval; the last-produced artifact is carried.
	OutcomeExhausted LoopOutcome = "EXHAUSTED"
)

// ExhaustedPolicy decides what a stage does when its refinement loop ends
// Exhausted. This is an application-level choice; the engine defaults to
// accepting the artifact.
type ExhaustedPolicy int

const (
	// AcceptExhausted commits the last-produced artifact and proceeds.
	AcceptExhausted ExhaustedPolicy = iota

	// FailExhausted turns exhaustion into a fatal stage failure of kind
	// FailureNonConvergence.
	FailExhausted
)

// StageResult reports how one stage's refinement loop went. Callers that
// want to treat exhaustion as a soft failure inspect Outcome here.
type StageResult struct {
	Stage string

	// Outcome is the loop's terminal state.
	Outcome LoopOutcome

	// Revisions is the number of revise calls performed (0 when the
	// first critique pass approved, or when no checkers are configured).
	Revisions int

	// Rounds holds the complete verdict set of every critique pass, in
	// order. Empty when the stage has no checkers.
	Rounds []VerdictSet
}

// LastVerdicts returns the verdict set of the final critique pass, or nil
// when the stage has no checkers.
func (r StageResult) LastVerdicts() VerdictSet {
	if len(r.Rounds) == 0 {
		return nil
	}
	return r.Rounds[len(r.Rounds)-1]
}

// RunResult holds the outcome of one pipeline run. On failure, State is
// the partially populated workflow state (stages committed before the
// failure) and Err identifies the failing stage and failure kind; no
// partial artifact of the failing stage is ever committed.
type RunResult struct {
	ID       string
	Pipeline string
	Status   Status
	State    *WorkflowState
	Stages   []StageResult
	Err      error
}
