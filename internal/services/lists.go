package services

import (
	"context"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/records"
)

type (
	Expenses struct {
		Expenses []ExpenseRow    `json:"expenses"`
		Total    core.Money      `json:"total"`
		Pending  core.Money      `json:"pending"`
		Count    int             `json:"count"`
		Clients  []string        `json:"clients"`
		Projects []string        `json:"projects"`
		Branding config.Branding `json:"branding"`
	}

	Timesheets struct {
		Timesheets []TimesheetRow  `json:"timesheets"`
		TotalHours float64         `json:"totalHours"`
		Total      core.Money      `json:"total"`
		Unpaid     core.Money      `json:"unpaid"`
		Count      int             `json:"count"`
		Workers    []string        `json:"workers"`
		Branding   config.Branding `json:"branding"`
	}
)

// noWorker labels a timesheet without an employee.
const noWorker = "—"

// Expenses lists every expense, newest first.
func (v *Views) Expenses(ctx context.Context) Expenses {
	var clients, people, projects, pages []notionapi.Page
	v.load(ctx, "expenses", append(nameSources(&clients, &people, &projects),
		all(config.DBExpenses, &pages, records.Descending(propDate)))...)
	n := namesOf(clients, people, projects)

	out := Expenses{
		Expenses: make([]ExpenseRow, 0, len(pages)),
		Branding: v.ws.Branding(),
	}
	seenClient, seenProject := map[string]bool{}, map[string]bool{}
	for _, t := range mapPages(pages, expenseOf) {
		row := n.expenseRow(t)
		out.Expenses = append(out.Expenses, row)
		out.Total = out.Total.Add(t.Amount)
		if t.Status == core.StatusPendingReimbursement {
			out.Pending = out.Pending.Add(t.Amount)
		}
		out.Clients = appendNew(out.Clients, seenClient, row.Client)
		out.Projects = appendNew(out.Projects, seenProject, row.Project)
	}
	out.Count = len(out.Expenses)
	return out
}

// Timesheets lists every timesheet, newest first.
func (v *Views) Timesheets(ctx context.Context) Timesheets {
	var clients, people, projects, pages []notionapi.Page
	v.load(ctx, "timesheets", append(nameSources(&clients, &people, &projects),
		all(config.DBTimesheets, &pages, records.Descending(propDate)))...)
	n := namesOf(clients, people, projects)

	out := Timesheets{
		Timesheets: make([]TimesheetRow, 0, len(pages)),
		Branding:   v.ws.Branding(),
	}
	seen := map[string]bool{}
	for _, t := range mapPages(pages, timesheetOf) {
		row := n.timesheetRow(t)
		if row.Worker == "" {
			row.Worker = noWorker
		}
		out.Timesheets = append(out.Timesheets, row)
		out.TotalHours += t.Hours
		out.Total = out.Total.Add(t.Amount)
		if t.PaymentStatus == core.PaymentNotPaid {
			out.Unpaid = out.Unpaid.Add(t.Amount)
		}
		out.Workers = appendNew(out.Workers, seen, row.Worker)
	}
	out.Count = len(out.Timesheets)
	return out
}

// appendNew appends s once, skipping empty values.
func appendNew(list []string, seen map[string]bool, s string) []string {
	if s == "" || seen[s] {
		return list
	}
	seen[s] = true
	return append(list, s)
}
