package services

import (
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/records"
	"obra/internal/records/memory"
)

// testNow is a Wednesday.
var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type prop struct {
	key string
	val notionapi.Property
}

func page(id string, props ...prop) notionapi.Page {
	p := notionapi.Page{ID: notionapi.ObjectID(id), Properties: notionapi.Properties{}}
	for _, pr := range props {
		p.Properties[pr.key] = pr.val
	}
	return p
}

func title(s string) prop          { return prop{"Name", records.TitleProp(s)} }
func sel(k, v string) prop         { return prop{k, records.SelectProp(v)} }
func num(k string, v float64) prop { return prop{k, records.NumberProp(v)} }
func day(k, d string) prop         { return prop{k, records.DateProp(d)} }
func rel(k, id string) prop        { return prop{k, records.RelationProp(id)} }
func text(k, s string) prop        { return prop{k, records.TextProp(s)} }
func link(k, u string) prop        { return prop{k, &notionapi.URLProperty{URL: u}} }

func formula(k string, v float64) prop {
	return prop{k, &notionapi.FormulaProperty{Formula: notionapi.Formula{Type: "number", Number: v}}}
}

func testWorkspace() config.Workspace {
	dbs := map[string]string{}
	for _, k := range []string{
		config.DBExpenses, config.DBTimesheets, config.DBProjects, config.DBClients,
		config.DBPeople, config.DBTodoCosto, config.DBTodoCostoAvances,
		config.DBMantCamioneta, config.DBMantPlantas, config.DBMantGasolina,
		config.DBPersonalLedger,
	} {
		dbs[k] = k
	}
	return config.Workspace{Databases: dbs, Currency: "DOP"}
}

func newTestViews(t *testing.T) (*Views, *memory.Store) {
	t.Helper()
	store := memory.New()
	v := NewViews(store, testWorkspace(), time.UTC)
	v.now = func() time.Time { return testNow }
	return v, store
}

// seedNames adds one client, one worker and one project.
func seedNames(store *memory.Store) {
	store.Put(config.DBClients, page("c1", title("Acme"), text("Phone", "809-555-0100"), sel("Priority", "High")))
	store.Put(config.DBPeople, page("w1", title("Ana")))
	store.Put(config.DBProjects, page("p1", title("Torre"), sel("Status", "Active")))
}
