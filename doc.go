// Package refino provides a lightweight, embeddable refinement-pipeline
// engine for Go.
//
// Refino coordinates multi-stage pipelines in which each stage produces a
// structured artifact and then iteratively improves it: a panel of
// independent checkers critiques the candidate in parallel, and a single
// reviser addresses the collected rejections, until the panel unanimously
// approves or a bounded iteration budget is exhausted. It runs fully in
// Go, keeps the generative backend behind a small interface, and
// integrates cleanly into existing codebases.
//
// # Core Concepts
//
// The refino programming model is intentionally small and idiomatic:
//
//  1. Engine
//  2. PipelineBuilder / StageBuilder
//  3. Generator and Checker
//  4. WorkflowState
//  5. MemoryStore
//
// These components form a complete refinement system with deterministic
// orchestration, bounded convergence, and a clear mental model.
//
// # Engine
//
// The Engine registers pipeline specifications and runs them. A run
// executes stages strictly in order over one fresh WorkflowState; within
// a stage, the checker panel fans out concurrently and the refine step is
// strictly serialized behind the fan-in barrier. Engines are safe for
// concurrent runs: every run owns its own state.
//
// Long-term memory and run history can be backed by different storage:
//
//   - In-memory (non-durable, best for tests)
//   - SQLite (embedded durability)
//
// # PipelineBuilder
//
// PipelineBuilder provides the ergonomic, declarative API used to define
// pipelines, and StageBuilder the per-stage configuration:
//
//	flow := refino.NewPipeline("valuation").
//	    Stage(refino.NewStage("scoping", scopingInstructions).
//	        Inputs("user_request").
//	        Output("scoping_result").
//	        MaxIterations(5).
//	        Check("format", "output format", formatRules).
//	        Spec())
//
//	if err := flow.Register(engine); err != nil {
//	    log.Fatal(err)
//	}
//
// Pipeline specifications can also be loaded from YAML files via
// LoadPipelineSpec, since stages and checkers are configuration data,
// not code.
//
// # Generator and Checker
//
// A Generator is the external capability that produces and revises
// artifacts, typically a hosted generative model; a Checker evaluates one
// candidate against one concern, parameterized entirely by CheckerSpec
// values. Both are potentially slow, remote, and transiently failing, so
// the engine wraps every call in a RetryPolicy with per-attempt timeouts.
// Failure after retry exhaustion is fatal to the enclosing stage and
// aborts the run, returning the partially populated state for
// diagnostics.
//
// # WorkflowState
//
// WorkflowState is the shared key/value workspace of one run: each stage
// reads its declared input keys and commits exactly one output key.
// Committed artifacts are immutable, and a stage can never overwrite
// another stage's output.
//
// # MemoryStore
//
// MemoryStore is the append-only long-term memory collaborator: every
// successfully completed run is ingested, and prior runs can be searched
// by substring within an application/user scope, most recent first.
//
// # Summary
//
// Refino's goal is to give Go developers a refinement engine that feels
// like Go: easy to embed, easy to test, deterministic, and without
// operational overhead. Engines orchestrate stages, builders define
// pipelines, Generators and Checkers contain the generative behavior,
// and WorkflowState carries the data.
//
// For runnable programs, see the /examples directory.
package refino
