package services

import (
	"context"
	"sort"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/records"
)

var (
	ExpenseCategories = []string{
		"Materials", "Labor", "Equipment", "Utilities", "Transport",
		"Supplies", "Food/Meals", "Professional Services", "Other",
	}
	ProjectTypes = []string{"Renovation", "Construction", "Maintenance", "Design", "Consulting", "Other"}
)

type (
	Option struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status,omitempty"`
	}

	Lookup struct {
		People            []Option        `json:"people"`
		Projects          []Option        `json:"projects"`
		Clients           []Option        `json:"clients"`
		ExpenseCategories []string        `json:"expenseCategories"`
		ProjectTypes      []string        `json:"projectTypes"`
		Branding          config.Branding `json:"branding"`
	}
)

// Lookup returns the choices offered by the entry forms.
func (v *Views) Lookup(ctx context.Context) Lookup {
	var people, projects, clients []notionapi.Page
	v.load(ctx, "lookup", nameSources(&clients, &people, &projects)...)

	return Lookup{
		People:            options(people, false),
		Projects:          options(projects, true),
		Clients:           options(clients, false),
		ExpenseCategories: ExpenseCategories,
		ProjectTypes:      ProjectTypes,
		Branding:          v.ws.Branding(),
	}
}

// options lists named records sorted by name. Records without a name are
// left out.
func options(pages []notionapi.Page, withStatus bool) []Option {
	out := make([]Option, 0, len(pages))
	for _, p := range pages {
		o := Option{ID: p.ID.String(), Name: records.Title(p)}
		if o.Name == "" {
			continue
		}
		if withStatus {
			o.Status = records.Select(p, propStatus)
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
