package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/jkoskel/refino/pkg/api"
)

// SQLiteMemoryStore is an api.MemoryStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteMemoryStore struct {
	db *sql.DB
}

// Ensure SQLiteMemoryStore implements MemoryStore.
var _ api.MemoryStore = (*SQLiteMemoryStore)(nil)

// NewSQLiteMemoryStore initializes the required schema in the given
// database and returns a new SQLiteMemoryStore.
func NewSQLiteMemoryStore(db *sql.DB) (*SQLiteMemoryStore, error) {
	s := &SQLiteMemoryStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteMemoryStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memory_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			app_name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			pipeline TEXT NOT NULL,
			stage TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_memory_app_user
		ON memory_entries (app_name, user_id);`,
	)
	return err
}

func (s *SQLiteMemoryStore) Append(ctx context.Context, rec api.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range rec.Entries {
		created := e.CreatedAt
		if created.IsZero() {
			created = rec.CompletedAt
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO memory_entries (app_name, user_id, run_id, pipeline, stage, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.Scope.App,
			rec.Scope.User,
			e.RunID,
			e.Pipeline,
			e.Stage,
			e.Content,
			created.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteMemoryStore) Search(ctx context.Context, scope api.MemoryScope, query string) ([]api.MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, pipeline, stage, content, created_at
		FROM memory_entries
		WHERE app_name = ? AND user_id = ? AND content LIKE '%' || ? || '%'
		ORDER BY id DESC
		LIMIT ?`,
		scope.App,
		scope.User,
		query,
		api.MaxMemorySearchResults,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.MemoryEntry
	for rows.Next() {
		var e api.MemoryEntry
		var created string
		if err := rows.Scan(&e.RunID, &e.Pipeline, &e.Stage, &e.Content, &created); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
