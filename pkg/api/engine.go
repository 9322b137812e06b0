package api

import "context"

// Engine registers pipeline specifications and runs them. A run executes
// stages strictly sequentially over a fresh workflow state; within a
// stage, the checker panel fans out concurrently. Engines are safe for
// concurrent Run calls: every run owns an independent workflow state.
type Engine interface {
	// RegisterPipeline registers a validated spec by name. Registering
	// the same name twice is an error.
	RegisterPipeline(spec PipelineSpec) error

	// Run executes the named pipeline over a fresh workflow state seeded
	// with the given artifacts. It aborts on the first stage failure,
	// returning the partially populated result together with the
	// triggering error. Cancelling ctx aborts in-flight calls and unwinds
	// without committing the in-progress stage's artifact.
	Run(ctx context.Context, name string, seed map[string]Artifact) (*RunResult, error)

	// Memory returns the configured long-term memory store, or nil.
	Memory() MemoryStore

	// Events returns the configured run-event store, or nil.
	Events() EventStore
}
