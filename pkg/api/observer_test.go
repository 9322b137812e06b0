package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// countingObserver records how often each callback fires.
type countingObserver struct {
	mu sync.Mutex

	runStarts     int
	runCompletes  int
	runFails      int
	stageStarts   int
	stageComplete int
	critiques     int
	revises       int
}

func (o *countingObserver) OnRunStart(ctx context.Context, run *RunResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runStarts++
}

func (o *countingObserver) OnRunCompleted(ctx context.Context, run *RunResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runCompletes++
}

func (o *countingObserver) OnRunFailed(ctx context.Context, run *RunResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runFails++
}

func (o *countingObserver) OnStageStart(ctx context.Context, run *RunResult, stage string, idx int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stageStarts++
}

func (o *countingObserver) OnStageCompleted(ctx context.Context, run *RunResult, stage string, idx int, result StageResult, err error, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stageComplete++
}

func (o *countingObserver) OnCritique(ctx context.Context, run *RunResult, stage string, iteration int, verdicts VerdictSet) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.critiques++
}

func (o *countingObserver) OnRevise(ctx context.Context, run *RunResult, stage string, iteration int, reasons []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.revises++
}

func TestCompositeObserver_FansOutToAll(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	obs := NewCompositeObserver(a, nil, b)

	ctx := context.Background()
	run := &RunResult{ID: "r1", Pipeline: "p"}

	obs.OnRunStart(ctx, run)
	obs.OnStageStart(ctx, run, "draft", 0)
	obs.OnCritique(ctx, run, "draft", 0, VerdictSet{{Checker: "format", Verdict: Approve()}})
	obs.OnRevise(ctx, run, "draft", 1, []string{"format: bad"})
	obs.OnStageCompleted(ctx, run, "draft", 0, StageResult{}, nil, time.Millisecond)
	obs.OnRunCompleted(ctx, run)
	obs.OnRunFailed(ctx, run, errors.New("x"))

	for _, o := range []*countingObserver{a, b} {
		if o.runStarts != 1 || o.runCompletes != 1 || o.runFails != 1 {
			t.Fatalf("run callbacks not forwarded: %+v", o)
		}
		if o.stageStarts != 1 || o.stageComplete != 1 {
			t.Fatalf("stage callbacks not forwarded: %+v", o)
		}
		if o.critiques != 1 || o.revises != 1 {
			t.Fatalf("loop callbacks not forwarded: %+v", o)
		}
	}
}

func TestNewCompositeObserver_Degenerate(t *testing.T) {
	if _, ok := NewCompositeObserver().(NoopObserver); !ok {
		t.Fatalf("empty composite should be a NoopObserver")
	}
	if _, ok := NewCompositeObserver(nil, nil).(NoopObserver); !ok {
		t.Fatalf("all-nil composite should be a NoopObserver")
	}

	single := &countingObserver{}
	if got := NewCompositeObserver(single); got != Observer(single) {
		t.Fatalf("single-observer composite should return the observer itself")
	}
}

func TestLoggingObserver_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := NewLoggingObserver(logger)

	ctx := context.Background()
	run := &RunResult{ID: "r42", Pipeline: "valuation"}

	obs.OnRunStart(ctx, run)
	obs.OnStageStart(ctx, run, "forecast", 3)
	obs.OnStageCompleted(ctx, run, "forecast", 3, StageResult{Outcome: OutcomeConverged, Revisions: 2}, nil, 5*time.Millisecond)
	obs.OnRunFailed(ctx, run, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{
		"run_start", "stage_start", "stage_completed", "run_failed",
		"pipeline=valuation", "run_id=r42", "stage=forecast",
		"outcome=CONVERGED", "revisions=2", "error=boom",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestBasicMetrics_Snapshot(t *testing.T) {
	m := &BasicMetrics{}
	ctx := context.Background()
	run := &RunResult{ID: "r1", Pipeline: "p"}

	m.OnRunStart(ctx, run)
	m.OnRunStart(ctx, run)
	m.OnRunCompleted(ctx, run)
	m.OnRunFailed(ctx, run, errors.New("x"))

	m.OnCritique(ctx, run, "draft", 0, nil)
	m.OnRevise(ctx, run, "draft", 1, nil)
	m.OnCritique(ctx, run, "draft", 1, nil)

	m.OnStageCompleted(ctx, run, "draft", 0, StageResult{Outcome: OutcomeConverged}, nil, 10*time.Millisecond)
	m.OnStageCompleted(ctx, run, "dcf", 1, StageResult{Outcome: OutcomeExhausted}, nil, 30*time.Millisecond)
	// Failed stages do not count towards convergence or duration.
	m.OnStageCompleted(ctx, run, "report", 2, StageResult{}, errors.New("x"), time.Second)

	s := m.Snapshot()
	if s.RunsStarted != 2 || s.RunsCompleted != 1 || s.RunsFailed != 1 {
		t.Fatalf("unexpected run counters: %+v", s)
	}
	if s.PendingRuns != 0 {
		t.Fatalf("expected 0 pending, got %d", s.PendingRuns)
	}
	if s.StagesConverged != 1 || s.StagesExhausted != 1 {
		t.Fatalf("unexpected stage counters: %+v", s)
	}
	if s.Critiques != 2 || s.Revisions != 1 {
		t.Fatalf("unexpected loop counters: %+v", s)
	}
	if s.AvgStageDuration != 20*time.Millisecond {
		t.Fatalf("expected 20ms average, got %v", s.AvgStageDuration)
	}
}
