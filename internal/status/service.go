package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"obra/internal/core"
	"obra/internal/log"
	"obra/internal/records"
)

// MaxBatch is the largest number of records one batch may touch.
const MaxBatch = 50

var (
	ErrEmptyBatch    = errors.New("no page ids")
	ErrBatchTooLarge = fmt.Errorf("more than %d page ids", MaxBatch)
)

// Publisher receives an event for every applied transition.
type Publisher interface {
	PublishTransition(ctx context.Context, ev core.TransitionEvent) error
}

type Service struct {
	store     records.Updater
	publisher Publisher
	now       func() time.Time
	logger    *log.Logger
}

// NewService creates the service. publisher may be nil.
func NewService(store records.Updater, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		logger:    log.WithComponent(log.ComponentStatus),
	}
}

// Apply sets a single record to t. Exactly one upstream update is made.
func (s *Service) Apply(ctx context.Context, pageID string, t Transition) error {
	id, err := records.NormalizePageID(pageID)
	if err != nil {
		return err
	}
	if err := s.store.SetSelect(ctx, id, t.Field(), t.Value()); err != nil {
		return fmt.Errorf("apply %s=%q: %w", t.Field(), t.Value(), err)
	}
	s.logger.Transition(ctx, id, t.Field(), t.Value())
	s.publish(ctx, id, t)
	return nil
}

// ApplyBatch applies t to every id concurrently and reports how many
// updates succeeded. Blank ids are skipped. Failures do not stop the other
// updates, and updates run to completion even if ctx is cancelled.
func (s *Service) ApplyBatch(ctx context.Context, pageIDs []string, t Transition) (int, error) {
	if len(pageIDs) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(pageIDs) > MaxBatch {
		return 0, ErrBatchTooLarge
	}

	detached := context.WithoutCancel(ctx)
	var g errgroup.Group
	var updated atomic.Int64
	for _, pageID := range pageIDs {
		if strings.TrimSpace(pageID) == "" {
			continue
		}
		g.Go(func() error {
			if err := s.Apply(detached, pageID, t); err != nil {
				s.logger.WarnContext(ctx, "Batch update failed",
					log.FieldPageID, pageID,
					log.FieldField, t.Field(),
					log.FieldError, err)
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(updated.Load())
	s.logger.InfoContext(ctx, "Batch status update finished",
		log.FieldField, t.Field(),
		log.FieldValue, t.Value(),
		log.FieldCount, n,
		log.FieldRequested, len(pageIDs))
	return n, nil
}

func (s *Service) publish(ctx context.Context, pageID string, t Transition) {
	if s.publisher == nil {
		return
	}
	ev := core.TransitionEvent{
		ID:         uuid.NewString(),
		PageID:     pageID,
		Field:      t.Field(),
		Value:      t.Value(),
		Source:     "dashboard",
		OccurredAt: s.now().UTC(),
	}
	// The record is already updated; a lost event only affects the journal.
	if err := s.publisher.PublishTransition(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transition event",
			log.FieldPageID, pageID,
			log.FieldError, err)
	}
}
