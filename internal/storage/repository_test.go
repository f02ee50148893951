package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"obra/internal/core"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "journal", "obra.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func event(id, page string, at time.Time) core.TransitionEvent {
	return core.TransitionEvent{
		ID: id, PageID: page, Field: "Status", Value: "Reimbursed",
		Source: "dashboard", OccurredAt: at,
	}
}

func TestRecordTransitionIdempotent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	inserted, err := repo.RecordTransition(ctx, event("e1", "p1", at))
	if err != nil || !inserted {
		t.Fatalf("first insert = %v, %v", inserted, err)
	}
	inserted, err = repo.RecordTransition(ctx, event("e1", "p1", at))
	if err != nil || inserted {
		t.Fatalf("duplicate insert = %v, %v", inserted, err)
	}

	got, err := repo.GetTransition(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.OccurredAt.Equal(at) || got.MirrorStatus != MirrorPending || got.Value != "Reimbursed" {
		t.Fatalf("row = %+v", got)
	}
	if _, err := repo.GetTransition(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListTransitions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Sub-second offsets check that ordering is by time, not string length.
	_, _ = repo.RecordTransition(ctx, event("e1", "p1", base))
	_, _ = repo.RecordTransition(ctx, event("e2", "p2", base.Add(500*time.Millisecond)))
	_, _ = repo.RecordTransition(ctx, event("e3", "p1", base.Add(2*time.Second)))

	all, err := repo.ListTransitions(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "e3" || all[1].ID != "e2" || all[2].ID != "e1" {
		t.Fatalf("order = %v", ids(all))
	}

	p1, _ := repo.ListTransitions(ctx, "p1", 1)
	if len(p1) != 1 || p1[0].ID != "e3" {
		t.Fatalf("filtered = %v", ids(p1))
	}
}

func TestMirrorBookkeeping(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	_, _ = repo.RecordTransition(ctx, event("e1", "p1", base))
	_, _ = repo.RecordTransition(ctx, event("e2", "p1", base.Add(time.Minute)))

	if err := repo.MarkMirrored(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkMirrorError(ctx, "e2"); err != nil {
		t.Fatal(err)
	}
	pending, err := repo.PendingMirror(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != "e2" || pending[0].MirrorAttempts != 1 {
		t.Fatalf("pending = %+v", pending)
	}

	for i := 1; i < maxMirrorAttempts; i++ {
		_ = repo.MarkMirrorError(ctx, "e2")
	}
	if pending, _ := repo.PendingMirror(ctx, 10); len(pending) != 0 {
		t.Fatalf("exhausted row still pending: %+v", pending)
	}
	if err := repo.MarkMirrored(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func ids(ts []Transition) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obra.db")

	first, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if got := first.SchemaVersion(); got != 1 {
		t.Errorf("fresh journal version = %d, want 1", got)
	}
	first.Close()

	// Reopening finds nothing to apply and reports the same version.
	again, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	if got := again.SchemaVersion(); got != 1 {
		t.Errorf("reopened journal version = %d, want 1", got)
	}
}
