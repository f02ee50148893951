// Package sheets mirrors journaled status transitions to a spreadsheet so
// the accountant can follow them without access to the service.
package sheets

import (
	"context"
	"time"

	"obra/internal/core"
)

// Ports for outbound adapters.
type (
	TransitionMirror interface {
		// AppendTransition appends one row and returns a reference to it.
		AppendTransition(ctx context.Context, ev core.TransitionEvent) (rowRef string, err error)
	}
)

// Header is the column layout written by every mirror.
var Header = []string{"Event", "Occurred", "Page", "Field", "Value", "Source"}

// Row renders an event in Header order. Times are written in UTC.
func Row(ev core.TransitionEvent) []string {
	return []string{
		ev.ID,
		ev.OccurredAt.UTC().Format(time.RFC3339),
		ev.PageID,
		ev.Field,
		ev.Value,
		ev.Source,
	}
}
