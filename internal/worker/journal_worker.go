// Package worker records transition events in the journal and copies them
// to the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"
	"time"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/log"
	"obra/internal/sheets"
	"obra/internal/storage"
)

// Journal is the part of the SQLite journal the worker needs.
type Journal interface {
	RecordTransition(ctx context.Context, ev core.TransitionEvent) (bool, error)
	PendingMirror(ctx context.Context, limit int) ([]storage.Transition, error)
	MarkMirrored(ctx context.Context, id string) error
	MarkMirrorError(ctx context.Context, id string) error
}

type JournalWorker struct {
	journal   Journal
	mirror    sheets.TransitionMirror
	batchSize int
	logger    *log.Logger
}

// NewJournalWorker creates a worker. mirror may be nil, in which case rows
// are only journaled.
func NewJournalWorker(journal Journal, mirror sheets.TransitionMirror, batchSize int) *JournalWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &JournalWorker{
		journal:   journal,
		mirror:    mirror,
		batchSize: batchSize,
		logger:    log.WithComponent(log.ComponentWorker),
	}
}

// HandleTransition processes one message from the queue. An error means the
// event was not journaled and the message should be redelivered.
func (w *JournalWorker) HandleTransition(ctx context.Context, msg *amqp.TransitionMessage) error {
	return w.Record(ctx, msg.TransitionEvent)
}

// Record journals ev and mirrors it once. Duplicate events are ignored.
// A mirror failure is left for ProcessPending and does not fail the call.
func (w *JournalWorker) Record(ctx context.Context, ev core.TransitionEvent) error {
	inserted, err := w.journal.RecordTransition(ctx, ev)
	if err != nil {
		return fmt.Errorf("record transition %s: %w", ev.ID, err)
	}
	if !inserted {
		w.logger.DebugContext(ctx, "Duplicate transition ignored", log.FieldEventID, ev.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Transition journaled",
		log.FieldEventID, ev.ID,
		log.FieldPageID, ev.PageID,
		log.FieldField, ev.Field,
		log.FieldValue, ev.Value)

	if w.mirror != nil {
		w.mirrorOne(ctx, ev)
	}
	return nil
}

// ProcessPending retries the mirror for rows that were not copied yet and
// returns how many succeeded. It is the backup path for lost mirror writes.
func (w *JournalWorker) ProcessPending(ctx context.Context) (int, error) {
	if w.mirror == nil {
		return 0, nil
	}
	pending, err := w.journal.PendingMirror(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending transitions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Mirroring pending transitions", log.FieldCount, len(pending))

	mirrored := 0
	for _, t := range pending {
		if ctx.Err() != nil {
			break
		}
		if w.mirrorOne(ctx, t.TransitionEvent) {
			mirrored++
		}
	}
	return mirrored, nil
}

// Run calls ProcessPending every interval until ctx is done.
func (w *JournalWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessPending(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Pending mirror pass failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *JournalWorker) mirrorOne(ctx context.Context, ev core.TransitionEvent) bool {
	ref, err := w.mirror.AppendTransition(ctx, ev)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror transition",
			log.FieldEventID, ev.ID,
			log.FieldError, err)
		if markErr := w.journal.MarkMirrorError(ctx, ev.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark mirror error", log.FieldEventID, ev.ID, log.FieldError, markErr)
		}
		return false
	}

	// The row is in the sheet; a failed mark only causes a duplicate later.
	if err := w.journal.MarkMirrored(ctx, ev.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as mirrored", log.FieldEventID, ev.ID, log.FieldError, err)
	}
	w.logger.DebugContext(ctx, "Transition mirrored", log.FieldEventID, ev.ID, "sheets_ref", ref)
	return true
}
