package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"obra/internal/core"
)

type line struct {
	person        string
	debit, credit int64
}

func groupLines(lines []line) Groups[line] {
	return GroupRunning(lines,
		func(l line) string { return l.person },
		func(l line) core.Money { return core.Cents(l.debit) },
		func(l line) core.Money { return core.Cents(l.credit) },
	)
}

func TestGroupRunningBalances(t *testing.T) {
	gs := groupLines([]line{
		{"Ana", 1000, 0},
		{"Luis", 0, 300},
		{"Ana", 0, 250},
		{"Ana", 500, 100},
		{"Luis", 200, 0},
	})

	if diff := cmp.Diff([]string{"Ana", "Luis"}, gs.Keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}

	var balances []int64
	for _, r := range gs.ByKey["Ana"].Entries {
		balances = append(balances, r.Balance.Cents)
	}
	if diff := cmp.Diff([]int64{1000, 750, 1150}, balances); diff != "" {
		t.Errorf("Ana balances (-want +got):\n%s", diff)
	}

	for _, g := range gs.Ordered() {
		last := g.Entries[len(g.Entries)-1].Balance
		if last != g.Net() {
			t.Errorf("%s: last balance %v != net %v", g.Key, last, g.Net())
		}
	}

	tot := gs.Totals()
	if tot.Positive.Cents != 1700 || tot.Negative.Cents != 650 || tot.Net.Cents != 1050 {
		t.Errorf("totals = %+v", tot)
	}
}

func TestGroupRunningEmptyKeys(t *testing.T) {
	gs := groupLines([]line{{"", 100, 0}, {"   ", 0, 40}, {"Ana", 1, 0}, {"", 5, 0}})

	if len(gs.Keys) != 2 || gs.Keys[0] != Unassigned {
		t.Fatalf("keys = %v, want [%s Ana]", gs.Keys, Unassigned)
	}
	g := gs.ByKey[Unassigned]
	if len(g.Entries) != 3 || g.Net().Cents != 65 {
		t.Fatalf("sentinel group has %d entries, net %v", len(g.Entries), g.Net())
	}
}

func TestGroupRunningNoEntries(t *testing.T) {
	gs := groupLines(nil)
	if len(gs.Keys) != 0 || len(gs.Ordered()) != 0 || gs.Totals().Net.Cents != 0 {
		t.Fatalf("unexpected groups %+v", gs)
	}
}

func TestRollup(t *testing.T) {
	tree := Rollup([]Item{
		{Client: "X", Project: "P", Type: core.ItemExpense, Description: "A", Amount: core.Cents(10000)},
		{Client: "X", Project: "P", Type: core.ItemTimesheet, Description: "B", Amount: core.Cents(5000)},
	})

	x, ok := tree.Client("X")
	if !ok {
		t.Fatal("client X missing")
	}
	p, ok := x.Project("P")
	if !ok {
		t.Fatal("project P missing")
	}
	if p.Subtotal.Cents != 15000 || x.Subtotal.Cents != 15000 || tree.GrandTotal.Cents != 15000 {
		t.Fatalf("P=%v X=%v grand=%v, want 150 each", p.Subtotal, x.Subtotal, tree.GrandTotal)
	}
	if diff := cmp.Diff([]core.ItemType{core.ItemExpense, core.ItemTimesheet}, p.Types); diff != "" {
		t.Errorf("types (-want +got):\n%s", diff)
	}
	if p.ByType[core.ItemTimesheet].Subtotal.Cents != 5000 {
		t.Errorf("timesheet subtotal = %v", p.ByType[core.ItemTimesheet].Subtotal)
	}
}

func TestRollupOrderingAndLabels(t *testing.T) {
	tree := Rollup([]Item{
		{Client: "Small", Project: "S1", Type: core.ItemExpense, Amount: core.Cents(100)},
		{Client: "", Project: "", Type: core.ItemExpense, Amount: core.Cents(700)},
		{Client: "Big", Project: "B1", Type: core.ItemExpense, Amount: core.Cents(300)},
		{Client: "Big", Project: "B2", Type: core.ItemAdvance, Amount: core.Cents(800)},
		{Client: "Tie", Project: "T1", Type: core.ItemExpense, Amount: core.Cents(100)},
	})

	var names []string
	var sum int64
	for _, c := range tree.Clients {
		names = append(names, c.Name)
		var projects int64
		for _, p := range c.Projects {
			projects += p.Subtotal.Cents
		}
		if projects != c.Subtotal.Cents {
			t.Errorf("%s: projects sum %d != subtotal %d", c.Name, projects, c.Subtotal.Cents)
		}
		sum += c.Subtotal.Cents
	}
	if diff := cmp.Diff([]string{"Big", UnassignedClient, "Small", "Tie"}, names); diff != "" {
		t.Errorf("client order (-want +got):\n%s", diff)
	}
	if sum != tree.GrandTotal.Cents {
		t.Errorf("grand total %d != clients sum %d", tree.GrandTotal.Cents, sum)
	}

	big, _ := tree.Client("Big")
	if big.Projects[0].Name != "B2" {
		t.Errorf("first project of Big = %q, want B2", big.Projects[0].Name)
	}
	un, _ := tree.Client(UnassignedClient)
	if un.Projects[0].Name != GeneralProject {
		t.Errorf("project label = %q, want %q", un.Projects[0].Name, GeneralProject)
	}
}

func TestKeysAreTrimmed(t *testing.T) {
	items := []Item{
		{Client: "Acme", Project: "Torre", Worker: "Ana", Amount: core.Cents(100)},
		{Client: "Acme ", Project: " Torre", Worker: "Ana ", Amount: core.Cents(50)},
		{Client: "  ", Project: "\t", Amount: core.Cents(10)},
	}

	tree := Rollup(items)
	var clients []string
	for _, c := range tree.Clients {
		clients = append(clients, c.Name)
	}
	if diff := cmp.Diff([]string{"Acme", UnassignedClient}, clients); diff != "" {
		t.Errorf("rollup clients (-want +got):\n%s", diff)
	}
	acme, _ := tree.Client("Acme")
	if len(acme.Projects) != 1 || acme.Subtotal.Cents != 150 {
		t.Errorf("acme = %+v", acme)
	}

	groups := GroupTwoLevel(items,
		func(it Item) string { return it.Client },
		func(it Item) string { return it.Worker },
		UnassignedClient, "Sin Nombre")
	if len(groups) != 2 || len(groups[0].Groups) != 1 || groups[0].Subtotal.Cents != 150 {
		t.Errorf("two-level groups = %+v", groups)
	}

	running := GroupRunning(items,
		func(it Item) string { return it.Client },
		func(it Item) core.Money { return it.Amount },
		func(Item) core.Money { return core.Money{} })
	if diff := cmp.Diff([]string{"Acme", Unassigned}, running.Keys); diff != "" {
		t.Errorf("grouper keys (-want +got):\n%s", diff)
	}
}

func TestGroupTwoLevel(t *testing.T) {
	items := []Item{
		{Client: "Acme", Worker: "Ana", Amount: core.Cents(100), Hours: 2},
		{Client: "Acme", Worker: "Luis", Amount: core.Cents(500), Hours: 8},
		{Client: "", Worker: "", Amount: core.Cents(50)},
		{Client: "Acme", Worker: "Ana", Amount: core.Cents(100), Hours: 2},
	}
	got := GroupTwoLevel(items,
		func(it Item) string { return it.Client },
		func(it Item) string { return it.Worker },
		"Sin Cliente", "Sin Nombre")

	if len(got) != 2 || got[0].Name != "Acme" || got[1].Name != "Sin Cliente" {
		t.Fatalf("top groups = %+v", got)
	}
	acme := got[0]
	if acme.Subtotal.Cents != 700 || acme.Groups[0].Name != "Luis" || acme.Groups[1].Hours != 4 {
		t.Errorf("acme = %+v", acme)
	}
	if got[1].Groups[0].Name != "Sin Nombre" {
		t.Errorf("empty worker label = %q", got[1].Groups[0].Name)
	}
}

func TestBudget(t *testing.T) {
	tests := []struct {
		name           string
		total, pending int64
		want           Progress
	}{
		{"eighty percent spent", 100000, 20000, Progress{Budget: core.Cents(100000), Pending: core.Cents(20000), Spent: core.Cents(80000), Percent: 80, Display: 80}},
		{"zero budget", 0, 0, Progress{}},
		{"negative pending", 1000, -500, Progress{Budget: core.Cents(1000), Pending: core.Cents(-500), Spent: core.Cents(1000), Percent: 100, Display: 100}},
		{"over budget", 1000, 1500, Progress{Budget: core.Cents(1000), Pending: core.Cents(1500), Spent: core.Cents(-500), Percent: -50, Display: 0}},
		{"rounding", 300, 200, Progress{Budget: core.Cents(300), Pending: core.Cents(200), Spent: core.Cents(100), Percent: 33, Display: 33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Budget(core.Cents(tt.total), core.Cents(tt.pending))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
