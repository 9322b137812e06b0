package api

import (
	"context"
	"time"
)

// EventType identifies a run history event.
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"

	EventStageStarted   EventType = "stage.started"
	EventStageCompleted EventType = "stage.completed"

	EventCritiqueCompleted EventType = "critique.completed"
	EventReviseCompleted   EventType = "revise.completed"
)

// RunEvent is a minimal append-only history record for audit/debugging.
// It is intentionally small and stable; richer history can be layered
// later.
type RunEvent struct {
	RunID string
	At    time.Time
	Type  EventType

	// Optional context.
	Pipeline  string
	Stage     string
	Iteration int

	// Small, human-oriented details (e.g. verdict summary, error string).
	// Keep this low-volume: do NOT dump artifacts here.
	Detail string
}

// EventStore records run events. The engine appends best-effort: a
// failing event store never fails a run.
type EventStore interface {
	AppendEvent(ctx context.Context, ev RunEvent) error
	ListEvents(ctx context.Context, runID string) ([]RunEvent, error)
}
