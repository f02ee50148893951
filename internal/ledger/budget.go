package ledger

import (
	"math"

	"obra/internal/core"
)

// Progress is how much of a fixed-cost project budget has been consumed.
type Progress struct {
	Budget  core.Money `json:"budget"`
	Pending core.Money `json:"pending"`
	Spent   core.Money `json:"spent"`
	Percent int        `json:"percent"`
	Display int        `json:"display"` // Percent clamped to 0..100
}

// Budget computes progress from the total budget and the pending amount
// reported by the record store. Negative pending counts as zero.
func Budget(total, pending core.Money) Progress {
	p := Progress{Budget: total, Pending: pending}
	if pending.Cents < 0 {
		pending = core.Money{}
	}
	p.Spent = total.Sub(pending)
	if total.Cents > 0 {
		p.Percent = int(math.Round(float64(p.Spent.Cents) / float64(total.Cents) * 100))
	}
	p.Display = min(max(p.Percent, 0), 100)
	return p
}
