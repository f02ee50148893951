package services

import (
	"context"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/ledger"
	"obra/internal/records"
)

type (
	ClientCard struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Phone        string     `json:"phone"`
		Email        string     `json:"email"`
		Priority     string     `json:"priority"`
		BillingTerms string     `json:"billingTerms"`
		Outstanding  core.Money `json:"outstanding"`
	}

	Clients struct {
		Clients []ClientCard `json:"clients"`
		Debt    ledger.Tree  `json:"debt"`
	}
)

// Clients lists the clients and what each owes: expenses and timesheets
// pending reimbursement, plus advances the owner paid on fixed-cost
// projects that are still open.
func (v *Views) Clients(ctx context.Context) Clients {
	owner := v.ws.OwnerLabel()
	var clients, people, projects, expenses, timesheets, fixed, advances []notionapi.Page
	v.load(ctx, "clients", append(nameSources(&clients, &people, &projects),
		where(config.DBExpenses, records.SelectEquals(propStatus, string(core.StatusPendingReimbursement)), &expenses),
		where(config.DBTimesheets, records.SelectEquals(propStatus, string(core.StatusPendingReimbursement)), &timesheets),
		all(config.DBTodoCosto, &fixed),
		where(config.DBTodoCostoAvances, records.SelectEquals(propPagadoPor, owner), &advances),
	)...)
	n := namesOf(clients, people, projects)

	var items []ledger.Item
	for _, p := range expenses {
		e := expenseOf(p)
		items = append(items, ledger.Item{
			Client:      n.clients.Name(e.ClientRef, ""),
			Project:     n.projects.Name(e.ProjectRef, ""),
			Type:        core.ItemExpense,
			Description: e.Description,
			Amount:      e.Amount,
			Date:        e.Date,
			Category:    e.Category,
			PageID:      e.ID,
		})
	}
	for _, p := range timesheets {
		t := timesheetOf(p)
		items = append(items, ledger.Item{
			Client:      n.clients.Name(t.ClientRef, ""),
			Project:     n.projects.Name(t.ProjectRef, ""),
			Type:        core.ItemTimesheet,
			Description: t.Description,
			Amount:      billedAmount(p),
			Date:        t.Date,
			Worker:      n.people.Name(t.WorkerRef, ""),
			Hours:       t.Hours,
			PageID:      t.ID,
		})
	}

	open := map[string]core.ProjectBudget{}
	for _, p := range fixed {
		if b := budgetOf(p); b.Status != closedBudget {
			open[b.ID] = b
		}
	}
	for _, p := range advances {
		a := advanceOf(p, owner)
		b, ok := open[a.ProjectRef]
		if !ok || a.Payer != core.PayerSelf {
			continue
		}
		items = append(items, ledger.Item{
			Client:      n.clients.Name(b.ClientRef, ""),
			Project:     b.Name,
			Type:        core.ItemAdvance,
			Description: a.Description,
			Amount:      a.Amount,
			Date:        a.Date,
			PaidBy:      owner,
			PageID:      a.ID,
		})
	}

	out := Clients{Debt: ledger.Rollup(items)}
	for _, p := range clients {
		card := ClientCard{
			ID:           p.ID.String(),
			Name:         records.Title(p),
			Phone:        records.Text(p, propPhone),
			Email:        records.Text(p, propEmail),
			Priority:     records.Select(p, propPriority),
			BillingTerms: records.Select(p, propBilling),
		}
		if node, ok := out.Debt.Client(card.Name); ok {
			card.Outstanding = node.Subtotal
		}
		out.Clients = append(out.Clients, card)
	}
	return out
}
