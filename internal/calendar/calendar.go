// Package calendar turns maintenance logs, project dates, timesheets and
// expenses into dated events, and lays them out for display.
package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"obra/internal/core"
)

type Kind string

const (
	KindMaintenance Kind = "maintenance"
	KindProject     Kind = "project"
	KindTimesheet   Kind = "timesheet"
	KindExpense     Kind = "expense"
)

type Color string

const (
	Red   Color = "red"
	Blue  Color = "blue"
	Green Color = "green"
	Gold  Color = "gold"
)

type (
	Event struct {
		Date  string     `json:"date"`
		Title string     `json:"title"`
		Kind  Kind       `json:"type"`
		Color Color      `json:"color"`
		Total core.Money `json:"total,omitempty"`
		Hours float64    `json:"hours,omitempty"`
		Count int        `json:"count,omitempty"`
	}

	MaintenanceLog struct {
		Asset      string
		Date       string
		NextDate   string
		NextAction string
	}

	ProjectDates struct {
		Name   string
		Status string
		Start  string
		End    string
	}

	HoursEntry struct {
		Date   string
		Worker string
		Hours  float64
	}

	ExpenseEntry struct {
		Date   string
		Amount core.Money
	}

	Sources struct {
		VehicleLogs []MaintenanceLog
		PlantLogs   []MaintenanceLog
		Projects    []ProjectDates
		Hours       []HoursEntry
		Expenses    []ExpenseEntry
		Currency    string
	}
)

var (
	deadlineStatuses = []string{"Active", "On Site", "Mobilizing", "Punch List"}
	startStatuses    = []string{"Active", "On Site", "Mobilizing"}
)

// Synthesize builds the event list, sorted by date. Events on the same date
// keep the order they were produced in.
func Synthesize(src Sources) []Event {
	var events []Event

	for _, log := range latestPerAsset(src.VehicleLogs) {
		if log.NextDate == "" {
			continue
		}
		asset := log.Asset
		if asset == "" {
			asset = "Camioneta"
		}
		events = append(events, Event{
			Date: core.DateOf(log.NextDate), Title: asset + " Service",
			Kind: KindMaintenance, Color: Red,
		})
	}

	for _, p := range src.Projects {
		if p.End != "" && contains(deadlineStatuses, p.Status) {
			events = append(events, Event{
				Date: core.DateOf(p.End), Title: p.Name + " — Deadline",
				Kind: KindProject, Color: Blue,
			})
		}
		if p.Start != "" && contains(startStatuses, p.Status) {
			events = append(events, Event{
				Date: core.DateOf(p.Start), Title: p.Name + " — Start",
				Kind: KindProject, Color: Green,
			})
		}
	}

	for _, log := range src.PlantLogs {
		if log.Date == "" {
			continue
		}
		title := log.Asset
		if log.NextAction != "" {
			title += ": " + log.NextAction
		}
		events = append(events, Event{
			Date: core.DateOf(log.Date), Title: title,
			Kind: KindMaintenance, Color: Green,
		})
	}

	events = append(events, hoursByDate(src.Hours)...)
	events = append(events, expensesByDate(src.Expenses, src.Currency)...)

	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events
}

// latestPerAsset keeps the most recent log of each asset, in first-seen
// asset order.
func latestPerAsset(logs []MaintenanceLog) []MaintenanceLog {
	idx := make(map[string]int)
	var out []MaintenanceLog
	for _, l := range logs {
		i, ok := idx[l.Asset]
		if !ok {
			idx[l.Asset] = len(out)
			out = append(out, l)
			continue
		}
		if core.DateOf(l.Date) > core.DateOf(out[i].Date) {
			out[i] = l
		}
	}
	return out
}

func hoursByDate(entries []HoursEntry) []Event {
	type day struct {
		hours   float64
		workers []string
		seen    map[string]bool
	}
	days := make(map[string]*day)
	var order []string
	for _, e := range entries {
		if e.Date == "" {
			continue
		}
		d := core.DateOf(e.Date)
		acc, ok := days[d]
		if !ok {
			acc = &day{seen: make(map[string]bool)}
			days[d] = acc
			order = append(order, d)
		}
		acc.hours += e.Hours
		if e.Worker != "" && !acc.seen[e.Worker] {
			acc.seen[e.Worker] = true
			acc.workers = append(acc.workers, e.Worker)
		}
	}

	events := make([]Event, 0, len(order))
	for _, d := range order {
		acc := days[d]
		events = append(events, Event{
			Date:  d,
			Title: fmt.Sprintf("%sh — %s", strconv.FormatFloat(acc.hours, 'f', -1, 64), strings.Join(acc.workers, ", ")),
			Kind:  KindTimesheet,
			Color: Gold,
			Hours: acc.hours,
			Count: len(acc.workers),
		})
	}
	return events
}

func expensesByDate(entries []ExpenseEntry, currency string) []Event {
	type day struct {
		total core.Money
		count int
	}
	days := make(map[string]*day)
	var order []string
	for _, e := range entries {
		if e.Date == "" {
			continue
		}
		d := core.DateOf(e.Date)
		acc, ok := days[d]
		if !ok {
			acc = &day{}
			days[d] = acc
			order = append(order, d)
		}
		acc.total = acc.total.Add(e.Amount)
		acc.count++
	}

	events := make([]Event, 0, len(order))
	for _, d := range order {
		acc := days[d]
		title := Whole(acc.total)
		if currency != "" {
			title += " " + currency
		}
		events = append(events, Event{
			Date:  d,
			Title: fmt.Sprintf("%s (%d)", title, acc.count),
			Kind:  KindExpense,
			Color: Red,
			Total: acc.total,
			Count: acc.count,
		})
	}
	return events
}

// Whole formats an amount rounded to whole units with thousands separators.
func Whole(m core.Money) string {
	units := (m.Cents + 50) / 100
	if m.Cents < 0 {
		units = (m.Cents - 50) / 100
	}
	neg := units < 0
	if neg {
		units = -units
	}
	s := strconv.FormatInt(units, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
