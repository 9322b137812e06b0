package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jkoskel/refino/pkg/api"
)

// loopResult carries the terminal state of one stage's refinement loop.
type loopResult struct {
	artifact  api.Artifact
	outcome   api.LoopOutcome
	revisions int
	rounds    []api.VerdictSet
}

// converge runs the bounded critique/refine cycle for one stage: fan the
// current artifact out to the full checker panel, and on any rejection
// hand the collected reasons to the generator's revise call, until the
// panel approves unanimously or the iteration budget is spent. The
// initial generation happened before entry and does not count against the
// budget.
func (e *engineImpl) converge(ctx context.Context, run *api.RunResult, policy api.RetryPolicy, spec api.StageSpec, snapshot map[string]api.Artifact, artifact api.Artifact) (loopResult, error) {
	res := loopResult{artifact: artifact}

	// No panel configured: the initial artifact stands.
	if len(spec.Checkers) == 0 {
		res.outcome = api.OutcomeConverged
		return res, nil
	}

	for {
		verdicts, err := e.critique(ctx, run, policy, spec, res.artifact)
		if err != nil {
			return loopResult{}, err
		}
		res.rounds = append(res.rounds, verdicts)
		e.observer.OnCritique(ctx, run, spec.Name, res.revisions, verdicts)
		e.recordEvent(ctx, run, api.EventCritiqueCompleted, spec.Name, res.revisions, critiqueDetail(verdicts))

		if verdicts.Unanimous() {
			res.outcome = api.OutcomeConverged
			return res, nil
		}

		// A zero budget still gets the single critique pass above, so we
		// know to flag exhaustion, but never revises.
		if spec.MaxIterations == 0 {
			res.outcome = api.OutcomeExhausted
			return res, nil
		}

		reasons := verdicts.Reasons()
		revised, err := callWithRetry(ctx, policy, e.callTimeout, func(ctx context.Context) (api.Artifact, error) {
			return e.generator.Revise(ctx, api.ReviseRequest{
				GenerateRequest: e.generateRequest(run, spec, snapshot),
				Previous:        res.artifact.Clone(),
				Reasons:         reasons,
			})
		})
		if err != nil {
			return loopResult{}, &api.StageError{Stage: spec.Name, Kind: api.FailureGeneratorCall, Err: fmt.Errorf("revise: %w", err)}
		}

		res.artifact = revised
		res.revisions++
		e.observer.OnRevise(ctx, run, spec.Name, res.revisions, reasons)
		e.recordEvent(ctx, run, api.EventReviseCompleted, spec.Name, res.revisions, fmt.Sprintf("%d reasons addressed", len(reasons)))

		if res.revisions >= spec.MaxIterations {
			res.outcome = api.OutcomeExhausted
			return res, nil
		}
	}
}

// critique fans the artifact out to every checker in the panel
// concurrently and waits for the complete verdict set. Verdicts are
// written index-aligned with the stage's checker specs, so completion
// order never affects the aggregate. A checker call that fails after
// retries fails the whole pass; remaining calls are cancelled.
func (e *engineImpl) critique(ctx context.Context, run *api.RunResult, policy api.RetryPolicy, spec api.StageSpec, artifact api.Artifact) (api.VerdictSet, error) {
	verdicts := make(api.VerdictSet, len(spec.Checkers))

	g, gctx := errgroup.WithContext(ctx)
	for i, cs := range spec.Checkers {
		i, cs := i, cs
		g.Go(func() error {
			v, err := callWithRetry(gctx, policy, e.callTimeout, func(ctx context.Context) (api.Verdict, error) {
				return e.checker.Evaluate(ctx, api.EvaluateRequest{
					Pipeline:     run.Pipeline,
					Stage:        spec.Name,
					Instructions: spec.Instructions,
					Spec:         cs,
					Artifact:     artifact.Clone(),
					Tools:        e.tools.Filter(cs.Tools...),
				})
			})
			if err != nil {
				return &api.StageError{
					Stage: spec.Name,
					Kind:  api.FailureCheckerCall,
					Err:   fmt.Errorf("checker %s: %w", cs.Label, err),
				}
			}
			verdicts[i] = api.CheckerVerdict{Checker: cs.Label, Verdict: v}
			return nil
		})
	}

	// Fan-in barrier: refinement never starts on partial results.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return verdicts, nil
}

func critiqueDetail(verdicts api.VerdictSet) string {
	approved := 0
	for _, cv := range verdicts {
		if cv.Verdict.Approved {
			approved++
		}
	}
	return fmt.Sprintf("%d/%d approved", approved, len(verdicts))
}
