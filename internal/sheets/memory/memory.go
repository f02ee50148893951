package memory

import (
	"context"
	"fmt"
	"sync"

	"obra/internal/core"
	"obra/internal/sheets"
)

// Mirror keeps appended rows in memory. Fail makes the next appends error.
type Mirror struct {
	mu   sync.Mutex
	rows [][]string
	fail error
}

var _ sheets.TransitionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// AppendTransition stores the row and returns a synthetic row reference.
func (m *Mirror) AppendTransition(_ context.Context, ev core.TransitionEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	m.rows = append(m.rows, sheets.Row(ev))
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Fail sets the error returned by subsequent appends; nil clears it.
func (m *Mirror) Fail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Rows returns a copy of the appended rows.
func (m *Mirror) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
