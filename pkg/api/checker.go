package api

import "context"

// EvaluateRequest carries one candidate artifact to one checker: the
// artifact itself, the stage's task instructions for reference, and the
// CheckerSpec that parameterizes the evaluation.
type EvaluateRequest struct {
	Pipeline     string
	Stage        string
	Instructions string
	Spec         CheckerSpec

	// Artifact is a deep copy of the current candidate; checkers must be
	// side-effect-free and cannot reach the workflow state.
	Artifact Artifact

	// Tools is the checker's filtered view of the engine's tool catalog,
	// per Spec.Tools. Usually empty.
	Tools ToolCatalog
}

// Checker evaluates one candidate artifact against one concern and
// returns a verdict. There is a single checker implementation per engine,
// parameterized by CheckerSpec values; checkers differ by data, never by
// code path. Each evaluation must be independent of other checkers and of
// execution order.
//
// An error return is a failed call, not a verdict: the engine retries it
// under the retry policy and fails the stage if retries are exhausted.
type Checker interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (Verdict, error)
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context, req EvaluateRequest) (Verdict, error)

func (f CheckerFunc) Evaluate(ctx context.Context, req EvaluateRequest) (Verdict, error) {
	return f(ctx, req)
}
