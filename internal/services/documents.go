package services

import (
	"obra/internal/core"
	"obra/internal/ledger"
)

// Rows shared by several views.
type (
	ExpenseRow struct {
		ID          string     `json:"id"`
		Description string     `json:"description"`
		Amount      core.Money `json:"amount"`
		Date        string     `json:"date"`
		Status      string     `json:"status"`
		Category    string     `json:"category"`
		PaidFrom    string     `json:"paidFrom,omitempty"`
		Client      string     `json:"client"`
		Project     string     `json:"project"`
		URL         string     `json:"url,omitempty"`
	}

	TimesheetRow struct {
		ID            string     `json:"id"`
		Task          string     `json:"task"`
		Hours         float64    `json:"hours"`
		Amount        core.Money `json:"amount"`
		Date          string     `json:"date"`
		Status        string     `json:"status"`
		PaymentStatus string     `json:"paymentStatus"`
		Worker        string     `json:"worker"`
		Client        string     `json:"client"`
		Project       string     `json:"project"`
	}

	ProjectCard struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Status    string     `json:"status"`
		Type      string     `json:"type,omitempty"`
		Progress  float64    `json:"progress"`
		Budget    core.Money `json:"budget"`
		Contract  core.Money `json:"contract"`
		Committed core.Money `json:"committed"`
		Start     string     `json:"start,omitempty"`
		End       string     `json:"end,omitempty"`
	}

	FixedCostCard struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Status   string          `json:"status"`
		Start    string          `json:"start,omitempty"`
		Progress ledger.Progress `json:"progress"`
	}

	// ClientItems is a flat per-client list with its total.
	ClientItems struct {
		Client string        `json:"client"`
		Total  core.Money    `json:"total"`
		Items  []ledger.Item `json:"items"`
	}

	// Check is one inspection point of a maintenance log.
	Check struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
)

func (n names) expenseRow(t core.Transaction) ExpenseRow {
	return ExpenseRow{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.Date,
		Status:      string(t.Status),
		Category:    t.Category,
		PaidFrom:    t.PaidFrom,
		Client:      n.clients.Name(t.ClientRef, ""),
		Project:     n.projects.Name(t.ProjectRef, ""),
		URL:         t.AttachmentURL,
	}
}

func (n names) timesheetRow(t core.Transaction) TimesheetRow {
	return TimesheetRow{
		ID:            t.ID,
		Task:          t.Description,
		Hours:         t.Hours,
		Amount:        t.Amount,
		Date:          t.Date,
		Status:        string(t.Status),
		PaymentStatus: string(t.PaymentStatus),
		Worker:        n.people.Name(t.WorkerRef, ""),
		Client:        n.clients.Name(t.ClientRef, ""),
		Project:       n.projects.Name(t.ProjectRef, ""),
	}
}

func fixedCostCard(b core.ProjectBudget) FixedCostCard {
	return FixedCostCard{
		ID:       b.ID,
		Name:     b.Name,
		Status:   b.Status,
		Start:    b.Start,
		Progress: ledger.Budget(b.TotalBudget, b.Pending),
	}
}

// byClient groups items by client, largest total first. Items keep their
// input order within a client.
func byClient(items []ledger.Item) []ClientItems {
	groups := ledger.GroupRunning(items,
		func(it ledger.Item) string { return it.Client },
		func(it ledger.Item) core.Money { return it.Amount },
		func(ledger.Item) core.Money { return core.Money{} })

	out := make([]ClientItems, 0, len(groups.Keys))
	for _, g := range groups.Ordered() {
		ci := ClientItems{Client: g.Key, Total: g.Net(), Items: make([]ledger.Item, 0, len(g.Entries))}
		for _, e := range g.Entries {
			ci.Items = append(ci.Items, e.Entry)
		}
		out = append(out, ci)
	}
	sortDesc(out, func(c ClientItems) int64 { return c.Total.Cents })
	return out
}
