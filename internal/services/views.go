// Package services builds the view documents served by the HTTP surface.
//
// Every view re-reads what it needs from the record store. Independent
// collections are fetched concurrently and a collection that cannot be read
// is treated as empty, so a view degrades instead of failing.
package services

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/sync/errgroup"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/log"
	"obra/internal/records"
	"obra/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

type Views struct {
	store  records.Store
	ws     config.Workspace
	loc    *time.Location
	now    func() time.Time
	logger *log.Logger
}

func NewViews(store records.Store, ws config.Workspace, loc *time.Location) *Views {
	if loc == nil {
		loc = time.UTC
	}
	return &Views{
		store:  store,
		ws:     ws,
		loc:    loc,
		now:    time.Now,
		logger: log.WithComponent(log.ComponentViews),
	}
}

// Branding returns the workspace branding.
func (v *Views) Branding() config.Branding {
	return v.ws.Branding()
}

// Today is the current calendar date in the workspace time zone.
func (v *Views) Today() string {
	return core.Today(v.now(), v.loc)
}

// fetch reads one workspace collection into dst.
type fetch struct {
	db    string
	query records.Query
	dst   *[]notionapi.Page
}

func all(db string, dst *[]notionapi.Page, sorts ...notionapi.SortObject) fetch {
	return fetch{db: db, query: records.Query{Sorts: sorts}, dst: dst}
}

func where(db string, filter notionapi.Filter, dst *[]notionapi.Page) fetch {
	return fetch{db: db, query: records.Query{Filter: filter}, dst: dst}
}

// load runs the fetches concurrently. Failed fetches leave dst empty.
func (v *Views) load(ctx context.Context, view string, fetches ...fetch) {
	ctx, span := telemetry.Start(ctx, "views."+view, attribute.Int("fetches", len(fetches)))
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range fetches {
		g.Go(func() error {
			pages, err := v.store.Query(gctx, v.ws.DB(f.db), f.query)
			if err != nil {
				v.logger.WarnContext(ctx, "Collection unavailable, showing it empty",
					log.FieldView, view,
					log.FieldDatabase, f.db,
					log.FieldError, err,
					log.FieldErrorType, log.ErrorTypeNetwork)
				return nil
			}
			*f.dst = pages
			return nil
		})
	}
	_ = g.Wait()
}

// names holds the display names of the relation targets of one request.
type names struct {
	clients, people, projects records.NameMap
}

func (n names) client(p notionapi.Page) string {
	return n.clients.Name(records.RelationID(p, propClient), "")
}

func (n names) project(p notionapi.Page) string {
	return n.projects.Name(records.RelationID(p, propProject), "")
}

func (n names) worker(p notionapi.Page) string {
	return n.people.Name(records.RelationID(p, propEmployee), "")
}

// nameSources returns the fetches that feed a names value.
func nameSources(clients, people, projects *[]notionapi.Page) []fetch {
	return []fetch{
		all(config.DBClients, clients),
		all(config.DBPeople, people),
		all(config.DBProjects, projects),
	}
}

func namesOf(clients, people, projects []notionapi.Page) names {
	return names{
		clients:  records.Index(clients),
		people:   records.Index(people),
		projects: records.Index(projects),
	}
}
