package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"obra/internal/core"
)

// MessageVersion is bumped when TransitionMessage changes shape.
const MessageVersion = 1

// TransitionMessage carries one applied status transition to the journal
// worker. The event id makes redeliveries idempotent.
type TransitionMessage struct {
	core.TransitionEvent
	Version     int       `json:"version"`
	PublishedAt time.Time `json:"published_at"`
}

func NewTransitionMessage(ev core.TransitionEvent) *TransitionMessage {
	return &TransitionMessage{
		TransitionEvent: ev,
		Version:         MessageVersion,
		PublishedAt:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransitionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransitionMessageFromJSON decodes and checks a message body.
func TransitionMessageFromJSON(data []byte) (*TransitionMessage, error) {
	var msg TransitionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.PageID == "" || msg.Field == "" {
		return nil, errors.New("transition message missing id, page_id or field")
	}
	return &msg, nil
}
