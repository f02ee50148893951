// Package ledger holds the pure aggregation folds behind the money views:
// per-key running balances, the client/project rollup and budget progress.
package ledger

import (
	"strings"

	"obra/internal/core"
)

// Unassigned is the group for entries whose key is empty.
const Unassigned = "Sin Asignar"

type (
	// Running is an entry with the group balance after it.
	Running[T any] struct {
		Entry   T
		Balance core.Money
	}

	Group[T any] struct {
		Key           string
		Entries       []Running[T]
		TotalPositive core.Money
		TotalNegative core.Money
	}

	// Groups keeps groups in the order their key was first seen.
	Groups[T any] struct {
		Keys  []string
		ByKey map[string]*Group[T]
	}
)

// Net returns TotalPositive - TotalNegative, which equals the balance of
// the last entry.
func (g *Group[T]) Net() core.Money {
	return g.TotalPositive.Sub(g.TotalNegative)
}

// GroupRunning partitions entries by key, keeping input order inside each
// group, and computes a running balance per group. Entries are expected to
// be sorted already, typically by date ascending.
func GroupRunning[T any](entries []T, key func(T) string, plus, minus func(T) core.Money) Groups[T] {
	out := Groups[T]{ByKey: make(map[string]*Group[T])}
	for _, e := range entries {
		k := strings.TrimSpace(key(e))
		if k == "" {
			k = Unassigned
		}
		g, ok := out.ByKey[k]
		if !ok {
			g = &Group[T]{Key: k}
			out.ByKey[k] = g
			out.Keys = append(out.Keys, k)
		}
		p, m := plus(e), minus(e)
		g.TotalPositive = g.TotalPositive.Add(p)
		g.TotalNegative = g.TotalNegative.Add(m)
		g.Entries = append(g.Entries, Running[T]{Entry: e, Balance: g.Net()})
	}
	return out
}

// Ordered returns the groups in first-seen key order.
func (gs Groups[T]) Ordered() []*Group[T] {
	out := make([]*Group[T], 0, len(gs.Keys))
	for _, k := range gs.Keys {
		out = append(out, gs.ByKey[k])
	}
	return out
}

type Totals struct {
	Positive core.Money `json:"debit"`
	Negative core.Money `json:"credit"`
	Net      core.Money `json:"net"`
}

// Totals sums every group.
func (gs Groups[T]) Totals() Totals {
	var t Totals
	for _, g := range gs.ByKey {
		t.Positive = t.Positive.Add(g.TotalPositive)
		t.Negative = t.Negative.Add(g.TotalNegative)
	}
	t.Net = t.Positive.Sub(t.Negative)
	return t
}
