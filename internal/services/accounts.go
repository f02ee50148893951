package services

import (
	"context"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/ledger"
	"obra/internal/records"
)

type (
	AccountLine struct {
		Description string     `json:"description"`
		Date        string     `json:"date"`
		Type        string     `json:"type"`
		Debit       core.Money `json:"debit"`
		Credit      core.Money `json:"credit"`
		Method      string     `json:"method"`
		Notes       string     `json:"notes,omitempty"`
		Balance     core.Money `json:"balance"`
	}

	PersonAccount struct {
		Person  string        `json:"person"`
		Lines   []AccountLine `json:"lines"`
		Debit   core.Money    `json:"debit"`
		Credit  core.Money    `json:"credit"`
		Balance core.Money    `json:"balance"`
	}

	Accounts struct {
		People []PersonAccount `json:"people"`
		Totals ledger.Totals   `json:"totals"`
	}
)

// Accounts is the personal ledger with a running balance per person.
// Entries without a person are gathered under ledger.Unassigned.
func (v *Views) Accounts(ctx context.Context) Accounts {
	var pages []notionapi.Page
	v.load(ctx, "accounts", all(config.DBPersonalLedger, &pages, records.Ascending(propDate)))

	groups := ledger.GroupRunning(mapPages(pages, ledgerEntryOf),
		func(e core.LedgerEntry) string { return e.Person },
		func(e core.LedgerEntry) core.Money { return e.Debit },
		func(e core.LedgerEntry) core.Money { return e.Credit })

	out := Accounts{Totals: groups.Totals()}
	for _, g := range groups.Ordered() {
		acc := PersonAccount{
			Person:  g.Key,
			Debit:   g.TotalPositive,
			Credit:  g.TotalNegative,
			Balance: g.Net(),
		}
		for _, r := range g.Entries {
			acc.Lines = append(acc.Lines, AccountLine{
				Description: r.Entry.Description,
				Date:        r.Entry.Date,
				Type:        r.Entry.Kind,
				Debit:       r.Entry.Debit,
				Credit:      r.Entry.Credit,
				Method:      r.Entry.Method,
				Notes:       r.Entry.Notes,
				Balance:     r.Balance,
			})
		}
		out.People = append(out.People, acc)
	}
	return out
}
