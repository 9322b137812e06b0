package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the pipeline engine for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay pipeline execution.
type Observer interface {
	// OnRunStart is called once when a pipeline run starts, before the
	// first stage is executed.
	OnRunStart(ctx context.Context, run *RunResult)

	// OnRunCompleted is called when a run successfully reaches
	// StatusCompleted.
	OnRunCompleted(ctx context.Context, run *RunResult)

	// OnRunFailed is called when a run transitions to StatusFailed.
	OnRunFailed(ctx context.Context, run *RunResult, err error)

	// OnStageStart is called before a stage's initial generation.
	// stageIndex is the 0-based index into PipelineSpec.Stages.
	OnStageStart(ctx context.Context, run *RunResult, stage string, stageIndex int)

	// OnStageCompleted is called after a stage finishes, for both
	// successes and failures (err != nil). On success, result carries the
	// loop outcome and verdict history.
	OnStageCompleted(ctx context.Context, run *RunResult, stage string, stageIndex int, result StageResult, err error, duration time.Duration)

	// OnCritique is called after each completed critique pass with the
	// full verdict set. iteration counts revise calls performed so far.
	OnCritique(ctx context.Context, run *RunResult, stage string, iteration int, verdicts VerdictSet)

	// OnRevise is called after each completed revise call with the
	// reasons it was asked to address. iteration is 1-based.
	OnRevise(ctx context.Context, run *RunResult, stage string, iteration int, reasons []string)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, run *RunResult)                 {}
func (NoopObserver) OnRunCompleted(ctx context.Context, run *RunResult)             {}
func (NoopObserver) OnRunFailed(ctx context.Context, run *RunResult, err error)     {}
func (NoopObserver) OnStageStart(ctx context.Context, run *RunResult, stage string, idx int) {
}
func (NoopObserver) OnStageCompleted(ctx context.Context, run *RunResult, stage string, idx int, result StageResult, err error, d time.Duration) {
}
func (NoopObserver) OnCritique(ctx context.Context, run *RunResult, stage string, iteration int, verdicts VerdictSet) {
}
func (NoopObserver) OnRevise(ctx context.Context, run *RunResult, stage string, iteration int, reasons []string) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, run *RunResult) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, run)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, run *RunResult) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, run)
	}
}

func (c *CompositeObserver) OnRunFailed(ctx context.Context, run *RunResult, err error) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, run, err)
	}
}

func (c *CompositeObserver) OnStageStart(ctx context.Context, run *RunResult, stage string, idx int) {
	for _, o := range c.observers {
		o.OnStageStart(ctx, run, stage, idx)
	}
}

func (c *CompositeObserver) OnStageCompleted(ctx context.Context, run *RunResult, stage string, idx int, result StageResult, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnStageCompleted(ctx, run, stage, idx, result, err, d)
	}
}

func (c *CompositeObserver) OnCritique(ctx context.Context, run *RunResult, stage string, iteration int, verdicts VerdictSet) {
	for _, o := range c.observers {
		o.OnCritique(ctx, run, stage, iteration, verdicts)
	}
}

func (c *CompositeObserver) OnRevise(ctx context.Context, run *RunResult, stage string, iteration int, reasons []string) {
	for _, o := range c.observers {
		o.OnRevise(ctx, run, stage, iteration, reasons)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs run / stage / loop
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, run *RunResult) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, run *RunResult) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
	)
}

func (o *LoggingObserver) OnRunFailed(ctx context.Context, run *RunResult, err error) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStageStart(ctx context.Context, run *RunResult, stage string, idx int) {
	o.Logger.DebugContext(ctx, "stage_start",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
		slog.String("stage", stage),
		slog.Int("stage_index", idx),
	)
}

func (o *LoggingObserver) OnStageCompleted(ctx context.Context, run *RunResult, stage string, idx int, result StageResult, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "stage_completed",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
		slog.String("stage", stage),
		slog.Int("stage_index", idx),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("revisions", result.Revisions),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnCritique(ctx context.Context, run *RunResult, stage string, iteration int, verdicts VerdictSet) {
	o.Logger.DebugContext(ctx, "critique_completed",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
		slog.String("stage", stage),
		slog.Int("iteration", iteration),
		slog.Bool("unanimous", verdicts.Unanimous()),
		slog.Int("rejections", len(verdicts.Reasons())),
	)
}

func (o *LoggingObserver) OnRevise(ctx context.Context, run *RunResult, stage string, iteration int, reasons []string) {
	o.Logger.DebugContext(ctx, "revise_completed",
		slog.String("pipeline", run.Pipeline),
		slog.String("run_id", run.ID),
		slog.String("stage", stage),
		slog.Int("iteration", iteration),
		slog.Int("reasons", len(reasons)),
	)
}

// BasicMetrics collects simple counters and aggregate stage durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted   atomic.Int64
	runsCompleted atomic.Int64
	runsFailed    atomic.Int64

	stagesConverged atomic.Int64
	stagesExhausted atomic.Int64
	critiques       atomic.Int64
	revisions       atomic.Int64

	totalStageDuration atomic.Int64 // nanoseconds
	stagesCompleted    atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	PendingRuns   int64

	StagesConverged  int64
	StagesExhausted  int64
	Critiques        int64
	Revisions        int64
	AvgStageDuration time.Duration
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, run *RunResult) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunCompleted(ctx context.Context, run *RunResult) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnRunFailed(ctx context.Context, run *RunResult, err error) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnStageCompleted(ctx context.Context, run *RunResult, stage string, idx int, result StageResult, err error, d time.Duration) {
	// Only count successful stages for convergence and average duration.
	if err != nil {
		return
	}
	switch result.Outcome {
	case OutcomeConverged:
		m.stagesConverged.Add(1)
	case OutcomeExhausted:
		m.stagesExhausted.Add(1)
	}
	m.stagesCompleted.Add(1)
	m.totalStageDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnCritique(ctx context.Context, run *RunResult, stage string, iteration int, verdicts VerdictSet) {
	m.critiques.Add(1)
}

func (m *BasicMetrics) OnRevise(ctx context.Context, run *RunResult, stage string, iteration int, reasons []string) {
	m.revisions.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	stages := m.stagesCompleted.Load()
	totalNs := m.totalStageDuration.Load()

	var avg time.Duration
	if stages > 0 {
		avg = time.Duration(totalNs / stages)
	}

	return BasicMetricsSnapshot{
		RunsStarted:      started,
		RunsCompleted:    completed,
		RunsFailed:       failed,
		PendingRuns:      started - completed - failed,
		StagesConverged:  m.stagesConverged.Load(),
		StagesExhausted:  m.stagesExhausted.Load(),
		Critiques:        m.critiques.Load(),
		Revisions:        m.revisions.Load(),
		AvgStageDuration: avg,
	}
}
