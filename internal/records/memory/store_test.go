package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jomei/notionapi"

	"obra/internal/records"
)

func expense(title, status, date string) notionapi.Page {
	return notionapi.Page{Properties: notionapi.Properties{
		"Name":   records.TitleProp(title),
		"Status": records.SelectProp(status),
		"Date":   records.DateProp(date),
	}}
}

func titles(pages []notionapi.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, records.Title(p))
	}
	return out
}

func TestQueryFilterAndSort(t *testing.T) {
	s := New()
	s.Put("exp",
		expense("a", "Pending Reimbursement", "2024-05-02"),
		expense("b", "Reimbursed", "2024-05-01"),
		expense("c", "Pending Reimbursement", "2024-05-03"),
	)
	ctx := context.Background()

	got, err := s.Query(ctx, "exp", records.Query{
		Filter: records.SelectEquals("Status", "Pending Reimbursement"),
		Sorts:  []notionapi.SortObject{records.Descending("Date")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if g := titles(got); len(g) != 2 || g[0] != "c" || g[1] != "a" {
		t.Fatalf("titles = %v, want [c a]", g)
	}

	got, _ = s.Query(ctx, "exp", records.Query{
		Filter: records.And(
			records.SelectEquals("Status", "Pending Reimbursement"),
			records.SelectEquals("Status", "Reimbursed"),
		),
	})
	if len(got) != 0 {
		t.Fatalf("contradictory AND matched %v", titles(got))
	}

	got, _ = s.Query(ctx, "exp", records.Query{Sorts: []notionapi.SortObject{records.Ascending("Date")}})
	if g := titles(got); g[0] != "b" || g[2] != "c" {
		t.Fatalf("ascending = %v", g)
	}
}

func TestSetSelect(t *testing.T) {
	s := New()
	s.Put("exp", notionapi.Page{ID: "p1", Properties: notionapi.Properties{"Status": records.SelectProp("Pending Reimbursement")}})
	ctx := context.Background()

	if err := s.SetSelect(ctx, "p1", "Status", "Reimbursed"); err != nil {
		t.Fatal(err)
	}
	p, _ := s.Get(ctx, "p1")
	if got := records.Select(p, "Status"); got != "Reimbursed" {
		t.Fatalf("Status = %q", got)
	}

	if err := s.SetSelect(ctx, "nope", "Status", "Reimbursed"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	boom := errors.New("boom")
	s.FailUpdate("p1", boom)
	if err := s.SetSelect(ctx, "p1", "Status", "Pending Reimbursement"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}
	if got := s.UpdateCalls(); got != 3 {
		t.Fatalf("UpdateCalls = %d, want 3", got)
	}
}

func TestCreateAndQueryIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, err := s.Create(ctx, "clients", notionapi.Properties{"Name": records.TitleProp("Acme")})
	if err != nil || id == "" {
		t.Fatalf("Create = %q, %v", id, err)
	}
	got, _ := s.Query(ctx, "clients", records.Query{})
	got[0].Properties["Name"] = records.TitleProp("mutated")

	p, err := s.Get(ctx, id)
	if err != nil || records.Title(p) != "Acme" {
		t.Fatalf("stored record changed through query result: %q, %v", records.Title(p), err)
	}
	if _, err := s.Create(ctx, "", nil); err == nil {
		t.Fatal("create without database should fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{"people":[{"object":"page","id":"w1","properties":{"Name":{"id":"title","type":"title","title":[{"type":"text","text":{"content":"Ana"},"plain_text":"Ana"}]}}}]}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.Get(context.Background(), "w1")
	if err != nil || records.Title(p) != "Ana" {
		t.Fatalf("got %q, %v", records.Title(p), err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
