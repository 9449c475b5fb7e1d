package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// migrations are applied in order; PRAGMA user_version records how many already ran.
var migrations = []string{
	`CREATE TABLE runs (
		id          TEXT PRIMARY KEY,
		session     TEXT NOT NULL,
		started_at  INTEGER NOT NULL,
		source_root TEXT NOT NULL,
		modules     INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	)`,
	`CREATE TABLE diagnostics (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq     INTEGER NOT NULL,
		module  TEXT NOT NULL,
		span    TEXT NOT NULL,
		code    TEXT NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE INDEX runs_started_at ON runs (started_at DESC)`,
}

// Run is one recorded checking run.
type Run struct {
	ID          uuid.UUID
	Session     uuid.UUID
	StartedAt   time.Time
	SourceRoot  string
	Modules     int
	Diagnostics int
	Duration    time.Duration
}

// Store is the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// One connection keeps the pragmas below in effect for every statement.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than this binary (%d)", version, len(migrations))
	}
	for i := version; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run with its diagnostics. A zero run ID is replaced by a new one, and
// Diagnostics is set from diags.
func (s *Store) RecordRun(ctx context.Context, run *Run, diags []*diagnostics.DiagnosticError) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Diagnostics = len(diags)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, session, started_at, source_root, modules, diagnostics, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Session.String(), run.StartedAt.UnixNano(), run.SourceRoot,
		run.Modules, run.Diagnostics, int64(run.Duration))
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO diagnostics (run_id, seq, module, span, code, message) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, d := range diags {
		if _, err := stmt.ExecContext(ctx, run.ID.String(), i, d.Module.String(), d.Range.String(), string(d.Code), d.Message); err != nil {
			return fmt.Errorf("record diagnostic of run %s: %w", run.ID, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, started_at, source_root, modules, diagnostics, duration_ns
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id, session    string
			startedAt, dur int64
			run            Run
		)
		if err := rows.Scan(&id, &session, &startedAt, &run.SourceRoot, &run.Modules, &run.Diagnostics, &dur); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if run.Session, err = uuid.Parse(session); err != nil {
			return nil, fmt.Errorf("session id %q: %w", session, err)
		}
		run.StartedAt = time.Unix(0, startedAt).UTC()
		run.Duration = time.Duration(dur)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunDiagnostics returns the diagnostics recorded for a run, in recording order.
func (s *Store) RunDiagnostics(ctx context.Context, id uuid.UUID) ([]*diagnostics.DiagnosticError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module, span, code, message FROM diagnostics WHERE run_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*diagnostics.DiagnosticError
	for rows.Next() {
		var module, rng, code, message string
		if err := rows.Scan(&module, &rng, &code, &message); err != nil {
			return nil, err
		}
		parsed, err := token.ParseRange(rng)
		if err != nil {
			return nil, err
		}
		result = append(result, &diagnostics.DiagnosticError{
			Code:    diagnostics.ErrorCode(code),
			Module:  typesystem.ParseModuleReference(module),
			Range:   parsed,
			Message: message,
		})
	}
	return result, rows.Err()
}
