package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jkoskel/refino/internal/persistence"
	"github.com/jkoskel/refino/pkg/api"
)

// engineImpl is a synchronous, in-process pipeline engine: stages run
// strictly in order over one workflow state per run, and only the checker
// panel within a stage fans out concurrently.
type engineImpl struct {
	pipelines *pipelineRegistry

	generator api.Generator
	checker   api.Checker
	observer  api.Observer
	memory    api.MemoryStore
	events    api.EventStore
	tools     api.ToolCatalog

	retry       api.RetryPolicy
	callTimeout time.Duration
	exhausted   api.ExhaustedPolicy
	scope       api.MemoryScope
}

// Config describes how to construct an engine. External callers use the
// constructors in the root refino package.
type Config struct {
	// Generator is required: the external capability producing and
	// revising artifacts.
	Generator api.Generator

	// Checker evaluates artifacts against checker specs. Required only
	// when a registered pipeline configures checkers.
	Checker api.Checker

	// Observer receives lifecycle callbacks; nil means NoopObserver.
	Observer api.Observer

	// Memory, if set, ingests every successfully completed run.
	Memory api.MemoryStore

	// Events, if set, records the append-only run history (best-effort).
	Events api.EventStore

	// Tools is the engine-wide catalog; stages and checkers see filtered
	// views per their spec.
	Tools api.ToolCatalog

	// Retry applies to every external generator/checker call unless a
	// pipeline spec overrides it. Nil means api.DefaultRetryPolicy.
	Retry *api.RetryPolicy

	// CallTimeout bounds each external call attempt. Zero means no
	// per-attempt timeout.
	CallTimeout time.Duration

	// Exhausted decides whether a stage that spends its iteration budget
	// commits its last artifact (default) or fails the run.
	Exhausted api.ExhaustedPolicy

	// Scope tags memory ingestion with the embedding application and
	// user.
	Scope api.MemoryScope
}

// New constructs an engine from the given configuration.
func New(cfg Config) api.Engine {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	retry := api.DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	return &engineImpl{
		pipelines:   newPipelineRegistry(),
		generator:   cfg.Generator,
		checker:     cfg.Checker,
		observer:    obs,
		memory:      cfg.Memory,
		events:      cfg.Events,
		tools:       cfg.Tools,
		retry:       retry,
		callTimeout: cfg.CallTimeout,
		exhausted:   cfg.Exhausted,
		scope:       cfg.Scope,
	}
}

func (e *engineImpl) RegisterPipeline(spec api.PipelineSpec) error {
	if e.generator == nil {
		return fmt.Errorf("pipeline %s: engine has no generator", spec.Name)
	}
	if e.checker == nil {
		for _, s := range spec.Stages {
			if len(s.Checkers) > 0 {
				return fmt.Errorf("pipeline %s: stage %s configures checkers but engine has no checker", spec.Name, s.Name)
			}
		}
	}
	return e.pipelines.Register(spec)
}

func (e *engineImpl) Memory() api.MemoryStore {
	return e.memory
}

func (e *engineImpl) Events() api.EventStore {
	return e.events
}

func (e *engineImpl) Run(ctx context.Context, name string, seed map[string]api.Artifact) (*api.RunResult, error) {
	spec, err := e.pipelines.Get(name)
	if err != nil {
		return nil, err
	}

	policy := e.retry
	if spec.Retry != nil {
		policy = *spec.Retry
	}

	run := &api.RunResult{
		ID:       uuid.NewString(),
		Pipeline: spec.Name,
		Status:   api.StatusRunning,
		State:    api.NewWorkflowState(seed),
	}

	e.observer.OnRunStart(ctx, run)
	e.recordEvent(ctx, run, api.EventRunStarted, "", 0, "")

	fail := func(stage string, err error) (*api.RunResult, error) {
		run.Status = api.StatusFailed
		run.Err = err
		e.observer.OnRunFailed(ctx, run, err)
		e.recordEvent(ctx, run, api.EventRunFailed, stage, 0, err.Error())
		return run, err
	}

	for i, stage := range spec.Stages {
		select {
		case <-ctx.Done():
			return fail(stage.Name, ctx.Err())
		default:
		}

		e.observer.OnStageStart(ctx, run, stage.Name, i)
		e.recordEvent(ctx, run, api.EventStageStarted, stage.Name, 0, "")

		start := time.Now()
		result, err := e.runStage(ctx, run, policy, stage)
		e.observer.OnStageCompleted(ctx, run, stage.Name, i, result, err, time.Since(start))

		if err != nil {
			return fail(stage.Name, err)
		}

		run.Stages = append(run.Stages, result)
		e.recordEvent(ctx, run, api.EventStageCompleted, stage.Name, result.Revisions, string(result.Outcome))
	}

	run.Status = api.StatusCompleted
	e.observer.OnRunCompleted(ctx, run)
	e.recordEvent(ctx, run, api.EventRunCompleted, "", 0, "")

	// Long-term memory is consumed only at successful completion; an
	// ingest failure does not retract a completed run.
	if e.memory != nil {
		_ = e.memory.Append(ctx, e.runRecord(run, spec))
	}

	return run, nil
}

// runStage executes one stage: missing-input check, one initial
// generation, the convergence loop, then the single commit into the
// workflow state. Nothing is committed on failure or cancellation.
func (e *engineImpl) runStage(ctx context.Context, run *api.RunResult, policy api.RetryPolicy, spec api.StageSpec) (api.StageResult, error) {
	// A missing input key is a configuration/ordering bug; it is caught
	// before any generator call and never retried.
	snapshot, missing := run.State.Snapshot(spec.InputKeys)
	if missing != "" {
		return api.StageResult{}, &api.StageError{
			Stage: spec.Name,
			Kind:  api.FailureMissingInput,
			Err:   &api.MissingInputError{Stage: spec.Name, Key: missing},
		}
	}

	req := e.generateRequest(run, spec, snapshot)
	artifact, err := callWithRetry(ctx, policy, e.callTimeout, func(ctx context.Context) (api.Artifact, error) {
		return e.generator.Generate(ctx, req)
	})
	if err != nil {
		return api.StageResult{}, &api.StageError{Stage: spec.Name, Kind: api.FailureGeneratorCall, Err: fmt.Errorf("generate: %w", err)}
	}

	loop, err := e.converge(ctx, run, policy, spec, snapshot, artifact)
	if err != nil {
		return api.StageResult{}, err
	}

	if loop.outcome == api.OutcomeExhausted && e.exhausted == api.FailExhausted {
		return api.StageResult{}, &api.StageError{
			Stage: spec.Name,
			Kind:  api.FailureNonConvergence,
			Err:   fmt.Errorf("no unanimous approval after %d revisions", loop.revisions),
		}
	}

	if err := run.State.Commit(spec.Name, spec.OutputKey, loop.artifact); err != nil {
		return api.StageResult{}, &api.StageError{Stage: spec.Name, Kind: api.FailureOutputConflict, Err: err}
	}

	return api.StageResult{
		Stage:     spec.Name,
		Outcome:   loop.outcome,
		Revisions: loop.revisions,
		Rounds:    loop.rounds,
	}, nil
}

func (e *engineImpl) generateRequest(run *api.RunResult, spec api.StageSpec, snapshot map[string]api.Artifact) api.GenerateRequest {
	return api.GenerateRequest{
		Pipeline:     run.Pipeline,
		Stage:        spec.Name,
		Instructions: spec.Instructions,
		Context:      snapshot,
		Tools:        e.tools.Filter(spec.Tools...),
	}
}

func (e *engineImpl) runRecord(run *api.RunResult, spec api.PipelineSpec) api.RunRecord {
	now := time.Now().UTC()
	rec := api.RunRecord{
		Scope:       e.scope,
		RunID:       run.ID,
		Pipeline:    run.Pipeline,
		CompletedAt: now,
	}
	for _, stage := range spec.Stages {
		artifact, ok := run.State.Get(stage.OutputKey)
		if !ok {
			continue
		}
		content, err := persistence.EncodeArtifact(artifact)
		if err != nil || content == "" {
			continue
		}
		rec.Entries = append(rec.Entries, api.MemoryEntry{
			RunID:     run.ID,
			Pipeline:  run.Pipeline,
			Stage:     stage.Name,
			Content:   content,
			CreatedAt: now,
		})
	}
	return rec
}

func (e *engineImpl) recordEvent(ctx context.Context, run *api.RunResult, typ api.EventType, stage string, iteration int, detail string) {
	if e.events == nil {
		return
	}
	_ = e.events.AppendEvent(ctx, api.RunEvent{
		RunID:     run.ID,
		At:        time.Now().UTC(),
		Type:      typ,
		Pipeline:  run.Pipeline,
		Stage:     stage,
		Iteration: iteration,
		Detail:    detail,
	})
}
