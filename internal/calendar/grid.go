package calendar

import (
	"fmt"
	"time"

	"obra/internal/core"
)

type (
	Day struct {
		Date    string  `json:"date"`
		DayNum  int     `json:"dayNum"`
		Weekday string  `json:"dayName"`
		Month   string  `json:"monthName"`
		IsToday bool    `json:"isToday"`
		IsPast  bool    `json:"isPast"`
		Events  []Event `json:"events"`
	}

	Week struct {
		Label string `json:"label"`
		Days  []Day  `json:"days"`
	}
)

// WeekGrid lays events out in Monday-start weeks. from is the offset of the
// first week relative to the week containing today (-1 is last week).
// An invalid today yields no weeks.
func WeekGrid(events []Event, today string, from, weeks int) []Week {
	t, err := time.Parse(core.DateLayout, today)
	if err != nil || weeks <= 0 {
		return nil
	}
	byDate := make(map[string][]Event)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	monday := t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
	out := make([]Week, 0, weeks)
	for w := from; w < from+weeks; w++ {
		start := monday.AddDate(0, 0, 7*w)
		week := Week{Label: weekLabel(w), Days: make([]Day, 0, 7)}
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, d)
			date := day.Format(core.DateLayout)
			dayEvents := byDate[date]
			if dayEvents == nil {
				dayEvents = []Event{}
			}
			week.Days = append(week.Days, Day{
				Date:    date,
				DayNum:  day.Day(),
				Weekday: day.Format("Mon"),
				Month:   day.Format("Jan"),
				IsToday: date == today,
				IsPast:  date < today,
				Events:  dayEvents,
			})
		}
		out = append(out, week)
	}
	return out
}

func weekLabel(offset int) string {
	switch {
	case offset == -1:
		return "Last Week"
	case offset == 0:
		return "This Week"
	case offset == 1:
		return "Next Week"
	case offset > 1:
		return fmt.Sprintf("Week +%d", offset)
	}
	return fmt.Sprintf("Week %d", offset)
}

// Recent returns the last n events of a date-sorted slice, newest first.
func Recent(events []Event, n int) []Event {
	if n <= 0 {
		return nil
	}
	out := make([]Event, 0, min(n, len(events)))
	for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, events[i])
	}
	return out
}
