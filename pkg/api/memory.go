package api

import (
	"context"
	"time"
)

// MaxMemorySearchResults caps the number of entries a memory search
// returns.
const MaxMemorySearchResults = 20

// MemoryScope identifies whose memory a record belongs to: an embedding
// application and a user within it.
type MemoryScope struct {
	App  string
	User string
}

// MemoryEntry is one searchable line of long-term memory: the textual
// content of one stage output of one completed run.
type MemoryEntry struct {
	RunID     string
	Pipeline  string
	Stage     string
	Content   string
	CreatedAt time.Time
}

// RunRecord is the unit of ingestion into long-term memory: every stage
// output of one completed pipeline run, under one scope.
type RunRecord struct {
	Scope       MemoryScope
	RunID       string
	Pipeline    string
	CompletedAt time.Time
	Entries     []MemoryEntry
}

// MemoryStore is the append-only long-term memory collaborator. The
// engine consumes it only at successful run completion; search is for the
// embedding application. Implementations must return search results
// most-recent-first, matched by case-insensitive substring within the
// given scope, capped at MaxMemorySearchResults.
type MemoryStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Search(ctx context.Context, scope MemoryScope, query string) ([]MemoryEntry, error)
}
