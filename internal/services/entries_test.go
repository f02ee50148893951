package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/records"
	"obra/internal/records/memory"
)

func TestCreateEntry(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		check    func(t *testing.T, store *memory.Store, id string)
	}{
		{
			name: "timesheet starts pending",
			body: `{"type":"timesheet","task":"Vaciado losa","date":"2024-05-14","hours":"8","amount":1500,"employeeId":"w1","projectId":"p1"}`,
			check: func(t *testing.T, store *memory.Store, id string) {
				p, err := store.Get(context.Background(), id)
				if err != nil {
					t.Fatal(err)
				}
				got := []string{
					records.Title(p),
					records.Select(p, propStatus),
					records.Date(p, propDate),
					records.Amount(p, propFixedAmount).String(),
					records.RelationID(p, propEmployee),
					records.RelationID(p, propProject),
					records.RelationID(p, propClient),
				}
				want := []string{"Vaciado losa", "Pending Reimbursement", "2024-05-14", "1500.00", "w1", "p1", ""}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("timesheet (-want +got):\n%s", diff)
				}
				if h := records.Number(p, propHours); h != 8 {
					t.Errorf("hours = %v, want 8", h)
				}
			},
		},
		{
			name: "expense defaults to pending",
			body: `{"type":"expense","description":"Cemento","amount":"250.50","date":"2024-05-14","category":"Materials"}`,
			check: func(t *testing.T, store *memory.Store, id string) {
				p, _ := store.Get(context.Background(), id)
				if s := records.Select(p, propStatus); s != string(core.StatusPendingReimbursement) {
					t.Errorf("status = %q", s)
				}
				if a := records.Amount(p, propAmount); a != core.Cents(25050) {
					t.Errorf("amount = %v", a)
				}
			},
		},
		{
			name: "expense keeps explicit status",
			body: `{"type":"expense","description":"Factura","amount":10,"date":"2024-05-14","status":"Para Contador"}`,
			check: func(t *testing.T, store *memory.Store, id string) {
				p, _ := store.Get(context.Background(), id)
				if s := records.Select(p, propStatus); s != "Para Contador" {
					t.Errorf("status = %q", s)
				}
			},
		},
		{
			name:     "client echoes name",
			body:     `{"type":"client","name":"Acme","phone":"809-555-0100","email":"ops@acme.do"}`,
			wantName: "Acme",
			check: func(t *testing.T, store *memory.Store, id string) {
				p, _ := store.Get(context.Background(), id)
				if records.Text(p, propPhone) != "809-555-0100" || records.Text(p, propEmail) != "ops@acme.do" {
					t.Errorf("contact = %v", p.Properties)
				}
			},
		},
		{
			name:     "project",
			body:     `{"type":"project","name":"Torre","projectType":"Construction","startDate":"2024-06-01","clientId":"c1"}`,
			wantName: "Torre",
			check: func(t *testing.T, store *memory.Store, id string) {
				p, _ := store.Get(context.Background(), id)
				if records.Select(p, propProjectKind) != "Construction" || records.RelationID(p, propClient) != "c1" {
					t.Errorf("project = %v", p.Properties)
				}
			},
		},
		{
			name:     "person",
			body:     `{"type":"person","name":"Ana","rate":"350"}`,
			wantName: "Ana",
			check: func(t *testing.T, store *memory.Store, id string) {
				p, _ := store.Get(context.Background(), id)
				if r := records.Number(p, propHourlyRate); r != 350 {
					t.Errorf("rate = %v", r)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			e := NewEntries(store, testWorkspace())

			req, err := DecodeEntry([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			res, err := e.Create(context.Background(), req)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if !res.OK || res.ID == "" || res.Name != tt.wantName {
				t.Fatalf("result = %+v", res)
			}
			tt.check(t, store, res.ID)
		})
	}
}

func TestCreateEntryRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown type", `{"type":"invoice"}`, core.ErrUnknownEntryType},
		{"missing task", `{"type":"timesheet","date":"2024-05-14"}`, core.ErrEmptyDescription},
		{"bad date", `{"type":"timesheet","task":"x","date":"14/05/2024"}`, core.ErrInvalidDate},
		{"too many hours", `{"type":"timesheet","task":"x","date":"2024-05-14","hours":30}`, core.ErrInvalidHours},
		{"zero expense", `{"type":"expense","description":"x","amount":0,"date":"2024-05-14"}`, core.ErrInvalidAmount},
		{"blank client", `{"type":"client","name":"  "}`, core.ErrEmptyName},
		{"bad amount text", `{"type":"expense","description":"x","amount":"mucho","date":"2024-05-14"}`, core.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			e := NewEntries(store, testWorkspace())

			req, err := DecodeEntry([]byte(tt.body))
			if err == nil {
				_, err = e.Create(context.Background(), req)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want a validation error", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateEntryUpstreamFailure(t *testing.T) {
	ws := testWorkspace()
	delete(ws.Databases, config.DBClients)
	e := NewEntries(memory.New(), ws)

	_, err := e.Create(context.Background(), EntryRequest{Type: "client", Name: "Acme"})

	var verr *ValidationError
	if err == nil || errors.As(err, &verr) {
		t.Fatalf("error = %v, want an upstream error", err)
	}
	if !errors.Is(err, records.ErrNotFound) {
		t.Errorf("error = %v, want records.ErrNotFound", err)
	}
}
