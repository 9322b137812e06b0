package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/jkoskel/refino/pkg/api"
)

// SQLiteEventStore is an api.EventStore backed by SQLite, sharing the
// caller's database with the memory store.
type SQLiteEventStore struct {
	db *sql.DB
}

var _ api.EventStore = (*SQLiteEventStore)(nil)

// NewSQLiteEventStore initializes the required schema in the given
// database and returns a new SQLiteEventStore.
func NewSQLiteEventStore(db *sql.DB) (*SQLiteEventStore, error) {
	s := &SQLiteEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			at TEXT NOT NULL,
			type TEXT NOT NULL,
			pipeline TEXT,
			stage TEXT,
			iteration INTEGER NOT NULL,
			detail TEXT
		);`,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_run_events_run
		ON run_events (run_id);`,
	)
	return err
}

func (s *SQLiteEventStore) AppendEvent(ctx context.Context, ev api.RunEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_events (run_id, at, type, pipeline, stage, iteration, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID,
		ev.At.UTC().Format(time.RFC3339Nano),
		string(ev.Type),
		ev.Pipeline,
		ev.Stage,
		ev.Iteration,
		ev.Detail,
	)
	return err
}

func (s *SQLiteEventStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, at, type, pipeline, stage, iteration, detail
		FROM run_events
		WHERE run_id = ?
		ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.RunEvent
	for rows.Next() {
		var ev api.RunEvent
		var at, typ string
		if err := rows.Scan(&ev.RunID, &at, &typ, &ev.Pipeline, &ev.Stage, &ev.Iteration, &ev.Detail); err != nil {
			return nil, err
		}
		ev.Type = api.EventType(typ)
		if ts, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			ev.At = ts
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
