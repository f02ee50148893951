// Package storage is the SQLite journal of status transitions. It is an
// audit trail; business records live upstream.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"obra/internal/core"
)

// Mirror states of a journal row.
const (
	MirrorPending = "pending"
	MirrorDone    = "mirrored"
	MirrorError   = "error"
)

const (
	defaultListLimit  = 50
	maxListLimit      = 500
	maxMirrorAttempts = 10

	// Fixed width so that text order is time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrNotFound = errors.New("transition not found")

// Transition is a journal row.
type Transition struct {
	core.TransitionEvent
	RecordedAt     time.Time `json:"recorded_at"`
	MirrorStatus   string    `json:"mirror_status"`
	MirrorAttempts int       `json:"mirror_attempts"`
}

type SQLiteRepository struct {
	db            *sql.DB
	now           func() time.Time
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateJournal(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now, schemaVersion: version}, nil
}

// SchemaVersion is the migration version the journal was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the journal database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RecordTransition stores ev. Recording the same event id twice is a no-op
// and reports inserted=false.
func (r *SQLiteRepository) RecordTransition(ctx context.Context, ev core.TransitionEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO transitions (id, page_id, field, value, source, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.PageID, ev.Field, ev.Value, ev.Source,
		ev.OccurredAt.UTC().Format(timeLayout), r.now().UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("insert transition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert transition: %w", err)
	}
	return n == 1, nil
}

// GetTransition returns one journal row.
func (r *SQLiteRepository) GetTransition(ctx context.Context, id string) (Transition, error) {
	row := r.db.QueryRowContext(ctx, selectTransition+` WHERE id = ?`, id)
	t, err := scanTransition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transition{}, ErrNotFound
	}
	return t, err
}

// ListTransitions returns the most recent rows first, optionally only for
// one record.
func (r *SQLiteRepository) ListTransitions(ctx context.Context, pageID string, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	query := selectTransition
	args := []any{}
	if pageID != "" {
		query += ` WHERE page_id = ?`
		args = append(args, pageID)
	}
	query += ` ORDER BY occurred_at DESC, recorded_at DESC LIMIT ?`
	args = append(args, limit)

	return r.queryTransitions(ctx, query, args...)
}

// PendingMirror returns rows not yet copied to the mirror, oldest first,
// including failed rows that have attempts left.
func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]Transition, error) {
	return r.queryTransitions(ctx,
		selectTransition+` WHERE mirror_status IN (?, ?) AND mirror_attempts < ? ORDER BY occurred_at ASC LIMIT ?`,
		MirrorPending, MirrorError, maxMirrorAttempts, limit)
}

func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id string) error {
	return r.setMirror(ctx, id, MirrorDone)
}

func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id string) error {
	return r.setMirror(ctx, id, MirrorError)
}

func (r *SQLiteRepository) setMirror(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transitions SET mirror_status = ?, mirror_attempts = mirror_attempts + 1 WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("mark transition %s %s: %w", id, status, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectTransition = `
	SELECT id, page_id, field, value, source, occurred_at, recorded_at, mirror_status, mirror_attempts
	FROM transitions`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransition(s scanner) (Transition, error) {
	var t Transition
	var occurred, recorded string
	if err := s.Scan(&t.ID, &t.PageID, &t.Field, &t.Value, &t.Source,
		&occurred, &recorded, &t.MirrorStatus, &t.MirrorAttempts); err != nil {
		return Transition{}, err
	}
	var err error
	if t.OccurredAt, err = time.Parse(timeLayout, occurred); err != nil {
		return Transition{}, fmt.Errorf("parse occurred_at: %w", err)
	}
	if t.RecordedAt, err = time.Parse(timeLayout, recorded); err != nil {
		return Transition{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) queryTransitions(ctx context.Context, query string, args ...any) ([]Transition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
