package core

import "time"

// TransitionEvent records one status change applied to a record.
type TransitionEvent struct {
	ID         string    `json:"id"`
	PageID     string    `json:"page_id"`
	Field      string    `json:"field"`
	Value      string    `json:"value"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}
