package services

import (
	"context"
	"slices"
	"sort"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/records"
)

// statusOrder is the display order of project statuses. Unknown statuses
// sort after all of these.
var statusOrder = []string{
	"On Site", "Active", "Mobilizing", "Paused", "Punch List",
	"Bidding", "Prospect", "Completed", "Closed",
}

type Projects struct {
	Projects  []ProjectCard   `json:"projects"`
	FixedCost []FixedCostCard `json:"fixedCost"`
}

func (v *Views) Projects(ctx context.Context) Projects {
	var projects, fixed []notionapi.Page
	v.load(ctx, "projects",
		all(config.DBProjects, &projects),
		all(config.DBTodoCosto, &fixed, records.Ascending(propFechaInicio)),
	)

	out := Projects{
		Projects:  mapPages(projects, projectCard),
		FixedCost: make([]FixedCostCard, 0, len(fixed)),
	}
	SortByStatus(out.Projects)
	for _, b := range mapPages(fixed, budgetOf) {
		out.FixedCost = append(out.FixedCost, fixedCostCard(b))
	}
	return out
}

// SortByStatus orders cards by statusOrder, keeping input order within a
// status.
func SortByStatus(cards []ProjectCard) {
	rank := func(s string) int {
		if i := slices.Index(statusOrder, s); i >= 0 {
			return i
		}
		return len(statusOrder)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return rank(cards[i].Status) < rank(cards[j].Status)
	})
}
