package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/sheets/memory"
	"obra/internal/storage"
)

func newJournal(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func event(id string, minute int) core.TransitionEvent {
	return core.TransitionEvent{
		ID:         id,
		PageID:     "1f2e3d4c-5b6a-7980-1a2b-3c4d5e6f7a8b",
		Field:      "Status",
		Value:      "Reimbursed",
		Source:     "dashboard",
		OccurredAt: time.Date(2024, 5, 1, 10, minute, 0, 0, time.UTC),
	}
}

func TestHandleTransition_JournalsAndMirrors(t *testing.T) {
	ctx := context.Background()
	repo := newJournal(t)
	mirror := memory.New()
	w := NewJournalWorker(repo, mirror, 10)

	if err := w.HandleTransition(ctx, amqp.NewTransitionMessage(event("ev-1", 0))); err != nil {
		t.Fatal(err)
	}
	// Redelivery of the same event.
	if err := w.HandleTransition(ctx, amqp.NewTransitionMessage(event("ev-1", 0))); err != nil {
		t.Fatal(err)
	}

	if got := len(mirror.Rows()); got != 1 {
		t.Errorf("mirrored rows = %d, want 1", got)
	}
	row, err := repo.GetTransition(ctx, "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if row.MirrorStatus != storage.MirrorDone {
		t.Errorf("mirror status = %q", row.MirrorStatus)
	}
}

func TestRecord_MirrorFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	repo := newJournal(t)
	mirror := memory.New()
	mirror.Fail(errors.New("quota exceeded"))
	w := NewJournalWorker(repo, mirror, 10)

	if err := w.Record(ctx, event("ev-1", 0)); err != nil {
		t.Fatalf("mirror failure should not fail Record: %v", err)
	}
	if err := w.Record(ctx, event("ev-2", 1)); err != nil {
		t.Fatal(err)
	}
	row, _ := repo.GetTransition(ctx, "ev-1")
	if row.MirrorStatus != storage.MirrorError {
		t.Fatalf("mirror status = %q, want error", row.MirrorStatus)
	}

	mirror.Fail(nil)
	n, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("mirrored = %d, want 2", n)
	}
	rows := mirror.Rows()
	if len(rows) != 2 || rows[0][0] != "ev-1" || rows[1][0] != "ev-2" {
		t.Errorf("rows = %v", rows)
	}

	n, err = w.ProcessPending(ctx)
	if err != nil || n != 0 {
		t.Errorf("second pass = %d, %v", n, err)
	}
}

func TestRecord_WithoutMirror(t *testing.T) {
	ctx := context.Background()
	repo := newJournal(t)
	w := NewJournalWorker(repo, nil, 0)

	if err := w.Record(ctx, event("ev-1", 0)); err != nil {
		t.Fatal(err)
	}
	if n, err := w.ProcessPending(ctx); n != 0 || err != nil {
		t.Errorf("ProcessPending = %d, %v", n, err)
	}
	list, err := repo.ListTransitions(ctx, "", 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
}

type failingJournal struct{ Journal }

func (failingJournal) RecordTransition(context.Context, core.TransitionEvent) (bool, error) {
	return false, errors.New("disk I/O error")
}

func TestRecord_JournalFailureRequeues(t *testing.T) {
	w := NewJournalWorker(failingJournal{}, memory.New(), 10)
	if err := w.HandleTransition(context.Background(), amqp.NewTransitionMessage(event("ev-1", 0))); err == nil {
		t.Fatal("expected error so the message is redelivered")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := newJournal(t)
	w := NewJournalWorker(repo, memory.New(), 10)

	done := make(chan struct{})
	go func() {
		w.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
