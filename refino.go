package refino

import (
	"context"
	"database/sql"
	"time"

	"github.com/jkoskel/refino/internal/engine"
	"github.com/jkoskel/refino/internal/persistence"
	"github.com/jkoskel/refino/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	Artifact             = api.Artifact
	Verdict              = api.Verdict
	CheckerVerdict       = api.CheckerVerdict
	VerdictSet           = api.VerdictSet
	CheckerSpec          = api.CheckerSpec
	StageSpec            = api.StageSpec
	PipelineSpec         = api.PipelineSpec
	WorkflowState        = api.WorkflowState
	RetryPolicy          = api.RetryPolicy
	Generator            = api.Generator
	GeneratorFuncs       = api.GeneratorFuncs
	GenerateRequest      = api.GenerateRequest
	ReviseRequest        = api.ReviseRequest
	Checker              = api.Checker
	CheckerFunc          = api.CheckerFunc
	EvaluateRequest      = api.EvaluateRequest
	Tool                 = api.Tool
	ToolCatalog          = api.ToolCatalog
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	MemoryStore          = api.MemoryStore
	MemoryScope          = api.MemoryScope
	MemoryEntry          = api.MemoryEntry
	RunRecord            = api.RunRecord
	EventStore           = api.EventStore
	RunEvent             = api.RunEvent
	RunResult            = api.RunResult
	StageResult          = api.StageResult
	Status               = api.Status
	LoopOutcome          = api.LoopOutcome
	ExhaustedPolicy      = api.ExhaustedPolicy
	CallError            = api.CallError
	StageError           = api.StageError
	MissingInputError    = api.MissingInputError
	FailureKind          = api.FailureKind
)

// Re-export common helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	NewToolCatalog       = api.NewToolCatalog
	NewWorkflowState     = api.NewWorkflowState
	NewCallError         = api.NewCallError
	ParseVerdict         = api.ParseVerdict
	Approve              = api.Approve
	Reject               = api.Reject
	DefaultRetryPolicy   = api.DefaultRetryPolicy

	// ErrOutputConflict is returned when two stages try to commit the
	// same output key within one run.
	ErrOutputConflict = api.ErrOutputConflict
)

// Re-export status and outcome values for convenience.

const (
	MaxMemorySearchResults = api.MaxMemorySearchResults

	StatusRunning   = api.StatusRunning
	StatusCompleted = api.StatusCompleted
	StatusFailed    = api.StatusFailed

	OutcomeConverged = api.OutcomeConverged
	OutcomeExhausted = api.OutcomeExhausted

	AcceptExhausted = api.AcceptExhausted
	FailExhausted   = api.FailExhausted

	EventRunStarted   = api.EventRunStarted
	EventRunCompleted = api.EventRunCompleted

	FailureMissingInput   = api.FailureMissingInput
	FailureGeneratorCall  = api.FailureGeneratorCall
	FailureCheckerCall    = api.FailureCheckerCall
	FailureNonConvergence = api.FailureNonConvergence
	FailureOutputConflict = api.FailureOutputConflict
)

// DefaultCallTimeout bounds every external generator/checker call attempt
// unless Options.CallTimeout overrides it.
const DefaultCallTimeout = 60 * time.Second

// Options customizes an engine beyond its generator and checker. The zero
// value gives a no-op observer, no memory or event store, the default
// retry policy, the default call timeout, and the accept-on-exhaustion
// policy.
type Options struct {
	Observer Observer
	Memory   MemoryStore
	Events   EventStore
	Tools    ToolCatalog

	// Retry applies to every external call unless a pipeline overrides it.
	Retry *RetryPolicy

	// CallTimeout bounds each call attempt. Zero selects
	// DefaultCallTimeout; a negative value disables the per-attempt
	// timeout entirely.
	CallTimeout time.Duration

	// Exhausted decides whether an exhausted refinement loop commits its
	// last artifact (default) or fails the run.
	Exhausted ExhaustedPolicy

	// Scope tags memory ingestion with the embedding application and user.
	Scope MemoryScope
}

// Engine constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewEngine returns an Engine with default options: no-op observer, no
// long-term memory, default retry policy and call timeout.
func NewEngine(gen Generator, chk Checker) Engine {
	return NewEngineWithOptions(gen, chk, Options{})
}

// NewEngineWithOptions returns an Engine customized by opts.
func NewEngineWithOptions(gen Generator, chk Checker, opts Options) Engine {
	timeout := opts.CallTimeout
	switch {
	case timeout == 0:
		timeout = DefaultCallTimeout
	case timeout < 0:
		timeout = 0
	}
	return engine.New(engine.Config{
		Generator:   gen,
		Checker:     chk,
		Observer:    opts.Observer,
		Memory:      opts.Memory,
		Events:      opts.Events,
		Tools:       opts.Tools,
		Retry:       opts.Retry,
		CallTimeout: timeout,
		Exhausted:   opts.Exhausted,
		Scope:       opts.Scope,
	})
}

// NewSQLiteEngine returns an Engine whose long-term memory and run-event
// history are persisted in the given SQLite database. The caller imports
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
//	db, _ := sql.Open("sqlite", "file:refino.db?_journal=WAL")
//	eng, err := refino.NewSQLiteEngine(gen, chk, db)
func NewSQLiteEngine(gen Generator, chk Checker, db *sql.DB) (Engine, error) {
	return NewSQLiteEngineWithOptions(gen, chk, db, Options{})
}

// NewSQLiteEngineWithOptions is NewSQLiteEngine with further options.
// Any Memory or Events already set in opts take precedence over the
// SQLite-backed stores.
func NewSQLiteEngineWithOptions(gen Generator, chk Checker, db *sql.DB, opts Options) (Engine, error) {
	if opts.Memory == nil {
		mem, err := persistence.NewSQLiteMemoryStore(db)
		if err != nil {
			return nil, err
		}
		opts.Memory = mem
	}
	if opts.Events == nil {
		events, err := persistence.NewSQLiteEventStore(db)
		if err != nil {
			return nil, err
		}
		opts.Events = events
	}
	return NewEngineWithOptions(gen, chk, opts), nil
}

// Store constructors.

// NewInMemoryStore returns a non-durable store implementing both
// MemoryStore and EventStore. Best for tests and development.
func NewInMemoryStore() *persistence.InMemoryStore {
	return persistence.NewInMemoryStore()
}

// NewSQLiteMemoryStore returns a MemoryStore persisted in the given
// SQLite database.
func NewSQLiteMemoryStore(db *sql.DB) (MemoryStore, error) {
	return persistence.NewSQLiteMemoryStore(db)
}

// NewSQLiteEventStore returns an EventStore persisted in the given
// SQLite database.
func NewSQLiteEventStore(db *sql.DB) (EventStore, error) {
	return persistence.NewSQLiteEventStore(db)
}

// Convenience helpers that just forward to the underlying Engine.

// Run runs a registered pipeline synchronously.
func Run(ctx context.Context, eng Engine, name string, seed map[string]Artifact) (*RunResult, error) {
	return eng.Run(ctx, name, seed)
}

// SearchMemory searches the engine's long-term memory, if configured.
func SearchMemory(ctx context.Context, eng Engine, scope MemoryScope, query string) ([]MemoryEntry, error) {
	mem := eng.Memory()
	if mem == nil {
		return nil, nil
	}
	return mem.Search(ctx, scope, query)
}
