package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MayaFlux/MayaFlux-sub002/internal/sched"
)

//go:embed schema.sql
var schemaSQL string

// Store persists trace sessions in SQLite with WAL mode, so a separate
// inspector process can read while the drain goroutine writes.
type Store struct {
	db *sql.DB
}

// Open creates or opens the trace database at the given path.
// Idempotent: pragmas and schema are applied on every open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection so
	// the drain goroutine never trips over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Consume implements Sink: one transaction per drained batch.
func (s *Store) Consume(session string, evs []sched.TraceEvent) error {
	return s.WriteEvents(context.Background(), session, evs)
}

// WriteEvents appends a batch of records for a session, creating the
// session row on first write.
func (s *Store) WriteEvents(ctx context.Context, session string, evs []sched.TraceEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (token) VALUES (?) ON CONFLICT(token) DO NOTHING`,
		session,
	); err != nil {
		return fmt.Errorf("write session %s: %w", session, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (session, op, task, samples, frames) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, ev := range evs {
		if _, err := stmt.ExecContext(ctx,
			session, string(ev.Op), ev.Task, int64(ev.Samples), int64(ev.Frames),
		); err != nil {
			return fmt.Errorf("write event %s/%s: %w", ev.Op, ev.Task, err)
		}
	}
	return tx.Commit()
}

// Sessions lists recorded session tokens, oldest first. UUIDv7 tokens
// sort by creation time.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM sessions ORDER BY token`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// ReadSession returns a session's records in write order.
func (s *Store) ReadSession(ctx context.Context, session string) ([]sched.TraceEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT op, task, samples, frames FROM events WHERE session = ? ORDER BY id`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", session, err)
	}
	defer rows.Close()

	var evs []sched.TraceEvent
	for rows.Next() {
		var op, taskName string
		var samples, frames int64
		if err := rows.Scan(&op, &taskName, &samples, &frames); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evs = append(evs, sched.TraceEvent{
			Op:      sched.TraceOp(op),
			Task:    taskName,
			Samples: uint64(samples),
			Frames:  uint32(frames),
		})
	}
	return evs, rows.Err()
}
