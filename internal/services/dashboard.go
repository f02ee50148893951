package services

import (
	"context"
	"slices"
	"sort"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/ledger"
	"obra/internal/records"
)

const (
	recentExpenseLimit = 8
	otherCategory      = "Other"
	unnamedWorker      = "Sin Nombre"
	timesheetCategory  = "Timesheet"
)

var activeStatuses = []string{"Active", "On Site", "Mobilizing"}

type (
	CategoryTotal struct {
		Category string     `json:"category"`
		Total    core.Money `json:"total"`
	}

	Dashboard struct {
		Today    string          `json:"today"`
		Branding config.Branding `json:"branding"`

		PendingReimbursement   core.Money `json:"pendingReimbursement"`
		PendingExpenseCount    int        `json:"pendingExpenseCount"`
		PendingTimesheetCount  int        `json:"pendingTimesheetCount"`
		PendingTimesheetAmount core.Money `json:"pendingTimesheetAmount"`

		UnpaidWorkers     core.Money `json:"unpaidWorkers"`
		UnpaidCount       int        `json:"unpaidCount"`
		MonthExpenses     core.Money `json:"monthExpenses"`
		MonthExpenseCount int        `json:"monthExpenseCount"`
		WeekHours         float64    `json:"weekHours"`
		WeekTimesheets    int        `json:"weekTimesheets"`
		WeekExpenses      int        `json:"weekExpenses"`

		ActiveProjects []ProjectCard `json:"activeProjects"`
		ProjectCount   int           `json:"projectCount"`
		OnSiteCount    int           `json:"onSiteCount"`

		FixedCost        []FixedCostCard `json:"fixedCost"`
		FixedCostPending core.Money      `json:"fixedCostPending"`

		Vehicle *VehicleStatus `json:"vehicle"`

		RecentExpenses         []ExpenseRow      `json:"recentExpenses"`
		Categories             []CategoryTotal   `json:"categories"`
		UnpaidByClient         []ledger.TopGroup `json:"unpaidByClient"`
		ReimbursementsByClient []ClientItems     `json:"reimbursementsByClient"`
	}
)

func (v *Views) Dashboard(ctx context.Context) Dashboard {
	var clients, people, projectPages, expensePages, timesheetPages, fixedPages, vehiclePages []notionapi.Page
	v.load(ctx, "dashboard", append(nameSources(&clients, &people, &projectPages),
		all(config.DBExpenses, &expensePages),
		all(config.DBTimesheets, &timesheetPages),
		all(config.DBTodoCosto, &fixedPages),
		all(config.DBMantCamioneta, &vehiclePages, records.Descending(propFecha)),
	)...)
	n := namesOf(clients, people, projectPages)

	today := v.Today()
	weekAgo := core.AddDays(today, -7)
	monthStart := core.MonthStart(today)

	d := Dashboard{Today: today, Branding: v.ws.Branding()}

	expenses := mapPages(expensePages, expenseOf)
	timesheets := mapPages(timesheetPages, timesheetOf)

	var reimbursements, unpaid []ledger.Item
	categories := map[string]core.Money{}
	var categoryOrder []string
	for _, e := range expenses {
		if e.Status == core.StatusPendingReimbursement {
			d.PendingReimbursement = d.PendingReimbursement.Add(e.Amount)
			d.PendingExpenseCount++
			reimbursements = append(reimbursements, ledger.Item{
				Client:      n.clients.Name(e.ClientRef, ledger.UnassignedClient),
				Type:        core.ItemExpense,
				Description: e.Description,
				Amount:      e.Amount,
				Date:        e.Date,
				Category:    e.Category,
				PageID:      e.ID,
			})
		}
		if e.Date >= monthStart {
			d.MonthExpenses = d.MonthExpenses.Add(e.Amount)
			d.MonthExpenseCount++
			cat := e.Category
			if cat == "" {
				cat = otherCategory
			}
			if _, ok := categories[cat]; !ok {
				categoryOrder = append(categoryOrder, cat)
			}
			categories[cat] = categories[cat].Add(e.Amount)
		}
		if e.Date >= weekAgo {
			d.WeekExpenses++
			d.RecentExpenses = append(d.RecentExpenses, n.expenseRow(e))
		}
	}

	for _, t := range timesheets {
		worker := n.people.Name(t.WorkerRef, "")
		if t.PaymentStatus == core.PaymentNotPaid {
			d.UnpaidWorkers = d.UnpaidWorkers.Add(t.Amount)
			d.UnpaidCount++
			unpaid = append(unpaid, ledger.Item{
				Client:      n.clients.Name(t.ClientRef, ""),
				Project:     n.projects.Name(t.ProjectRef, ""),
				Type:        core.ItemTimesheet,
				Description: t.Description,
				Amount:      t.Amount,
				Date:        t.Date,
				Worker:      worker,
				Hours:       t.Hours,
				PageID:      t.ID,
			})
		}
		if t.Status == core.StatusPendingReimbursement {
			d.PendingTimesheetAmount = d.PendingTimesheetAmount.Add(t.Amount)
			d.PendingTimesheetCount++
			reimbursements = append(reimbursements, ledger.Item{
				Client:      n.clients.Name(t.ClientRef, ledger.UnassignedClient),
				Type:        core.ItemTimesheet,
				Description: t.Description,
				Amount:      t.Amount,
				Date:        t.Date,
				Category:    timesheetCategory,
				Worker:      worker,
				PageID:      t.ID,
			})
		}
		if t.Date >= weekAgo {
			d.WeekHours += t.Hours
			d.WeekTimesheets++
		}
	}
	d.PendingReimbursement = d.PendingReimbursement.Add(d.PendingTimesheetAmount)

	sort.SliceStable(d.RecentExpenses, func(i, j int) bool {
		return d.RecentExpenses[i].Date > d.RecentExpenses[j].Date
	})
	if len(d.RecentExpenses) > recentExpenseLimit {
		d.RecentExpenses = d.RecentExpenses[:recentExpenseLimit]
	}

	for _, c := range categoryOrder {
		d.Categories = append(d.Categories, CategoryTotal{Category: c, Total: categories[c]})
	}
	sortDesc(d.Categories, func(c CategoryTotal) int64 { return c.Total.Cents })

	d.UnpaidByClient = ledger.GroupTwoLevel(unpaid,
		func(it ledger.Item) string { return it.Client },
		func(it ledger.Item) string { return it.Worker },
		ledger.UnassignedClient, unnamedWorker)
	d.ReimbursementsByClient = byClient(reimbursements)

	for _, p := range projectPages {
		card := projectCard(p)
		d.ProjectCount++
		if card.Status == "On Site" {
			d.OnSiteCount++
		}
		if slices.Contains(activeStatuses, card.Status) {
			d.ActiveProjects = append(d.ActiveProjects, card)
		}
	}

	for _, b := range mapPages(fixedPages, budgetOf) {
		d.FixedCost = append(d.FixedCost, fixedCostCard(b))
		if b.Pending.Cents > 0 {
			d.FixedCostPending = d.FixedCostPending.Add(b.Pending)
		}
	}

	if vehicles := vehicleStatuses(vehiclePages); len(vehicles) > 0 {
		d.Vehicle = &vehicles[0]
	}
	return d
}

func projectCard(p notionapi.Page) ProjectCard {
	return ProjectCard{
		ID:        p.ID.String(),
		Name:      records.Title(p),
		Status:    records.Select(p, propStatus),
		Type:      records.Select(p, propProjectType),
		Progress:  records.Number(p, propProgress),
		Budget:    records.Amount(p, propEstimatedBudget),
		Contract:  records.Amount(p, propContractValue),
		Committed: records.Amount(p, propCommitted),
		Start:     records.Date(p, propStartDate),
		End:       records.Date(p, propEndDate),
	}
}

// sortDesc orders s by key, largest first, keeping ties in input order.
func sortDesc[T any](s []T, key func(T) int64) {
	sort.SliceStable(s, func(i, j int) bool { return key(s[i]) > key(s[j]) })
}
