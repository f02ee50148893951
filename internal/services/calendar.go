package services

import (
	"context"

	"github.com/jomei/notionapi"

	"obra/internal/calendar"
	"obra/internal/config"
	"obra/internal/records"
)

// Calendar window: last week plus the next four.
const (
	calendarFromWeek = -1
	calendarWeeks    = 6
	calendarRecent   = 30
)

type Calendar struct {
	Today  string           `json:"today"`
	Weeks  []calendar.Week  `json:"weeks"`
	Recent []calendar.Event `json:"recent"`
}

func (v *Views) Calendar(ctx context.Context) Calendar {
	var people, expenses, timesheets, vehicles, plants, projects []notionapi.Page
	v.load(ctx, "calendar",
		all(config.DBPeople, &people),
		all(config.DBProjects, &projects),
		all(config.DBExpenses, &expenses, records.Descending(propDate)),
		all(config.DBTimesheets, &timesheets, records.Descending(propDate)),
		all(config.DBMantCamioneta, &vehicles, records.Descending(propFecha)),
		all(config.DBMantPlantas, &plants, records.Descending(propFecha)),
	)
	workers := records.Index(people)

	src := calendar.Sources{Currency: v.ws.Branding().Currency}
	for _, p := range vehicles {
		src.VehicleLogs = append(src.VehicleLogs, calendar.MaintenanceLog{
			Asset:    records.Select(p, propVehicle),
			Date:     records.Date(p, propFecha),
			NextDate: records.Date(p, propNextReview),
		})
	}
	for _, p := range plants {
		src.PlantLogs = append(src.PlantLogs, calendar.MaintenanceLog{
			Asset:      records.Select(p, propPlant),
			Date:       records.Date(p, propFecha),
			NextAction: records.Text(p, propNextAction),
		})
	}
	for _, p := range projects {
		src.Projects = append(src.Projects, calendar.ProjectDates{
			Name:   records.Title(p),
			Status: records.Select(p, propStatus),
			Start:  records.Date(p, propStartDate),
			End:    records.Date(p, propEndDate),
		})
	}
	for _, t := range mapPages(timesheets, timesheetOf) {
		src.Hours = append(src.Hours, calendar.HoursEntry{
			Date:   t.Date,
			Worker: workers.Name(t.WorkerRef, ""),
			Hours:  t.Hours,
		})
	}
	for _, e := range mapPages(expenses, expenseOf) {
		src.Expenses = append(src.Expenses, calendar.ExpenseEntry{Date: e.Date, Amount: e.Amount})
	}

	events := calendar.Synthesize(src)
	today := v.Today()
	return Calendar{
		Today:  today,
		Weeks:  calendar.WeekGrid(events, today, calendarFromWeek, calendarWeeks),
		Recent: calendar.Recent(events, calendarRecent),
	}
}
