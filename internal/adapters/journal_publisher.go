// Package adapters connects the status service to the transition journal
// when no message broker is configured.
package adapters

import (
	"context"

	"obra/internal/core"
	"obra/internal/status"
)

// Recorder journals one transition event.
type Recorder interface {
	Record(ctx context.Context, ev core.TransitionEvent) error
}

// JournalPublisher implements status.Publisher by writing events straight
// into the journal in-process.
type JournalPublisher struct {
	recorder Recorder
}

var _ status.Publisher = (*JournalPublisher)(nil)

func NewJournalPublisher(recorder Recorder) *JournalPublisher {
	return &JournalPublisher{recorder: recorder}
}

// PublishTransition records ev. The journal write outlives request
// cancellation.
func (p *JournalPublisher) PublishTransition(ctx context.Context, ev core.TransitionEvent) error {
	return p.recorder.Record(context.WithoutCancel(ctx), ev)
}
