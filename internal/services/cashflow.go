package services

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/log"
	"obra/internal/records"
)

const (
	noClientName  = "Sin cliente"
	noProjectName = "Sin proyecto"
	unknownName   = "?"
	vendorSep     = "—"
)

type (
	NamedAmount struct {
		Name   string     `json:"name"`
		Amount core.Money `json:"amount"`
	}

	SupplierItem struct {
		Vendor    string     `json:"vendor"`
		Products  string     `json:"products"`
		Client    string     `json:"client"`
		Category  string     `json:"category"`
		Amount    core.Money `json:"amount"`
		KDriveURL *string    `json:"kdriveUrl"`
	}

	Cashflow struct {
		TotalOwed         core.Money     `json:"totalOwed"`
		SupplierDebt      core.Money     `json:"supplierDebt"`
		ClientBreakdown   []NamedAmount  `json:"clientBreakdown"`
		SupplierBreakdown []SupplierItem `json:"supplierBreakdown"`
	}
)

// Cashflow is what clients owe against what is owed to suppliers. Related
// names are resolved one record at a time through a cache scoped to this
// call.
func (v *Views) Cashflow(ctx context.Context) Cashflow {
	owner := v.ws.OwnerLabel()
	var expenses, timesheets, advances, contador []notionapi.Page
	v.load(ctx, "cashflow",
		where(config.DBExpenses, records.SelectEquals(propStatus, string(core.StatusPendingReimbursement)), &expenses),
		where(config.DBTimesheets, records.SelectEquals(propStatus, string(core.StatusPendingReimbursement)), &timesheets),
		where(config.DBTodoCostoAvances, records.And(
			records.SelectEquals(propPagadoPor, owner),
			records.SelectEquals(propReembolso, pendingAdvance),
		), &advances),
		where(config.DBExpenses, records.SelectEquals(propStatus, string(core.StatusParaContador)), &contador),
	)

	cache := records.NewNameCache(v.store)
	resolve := func(p notionapi.Page, prop, fallback string) string {
		id := records.RelationID(p, prop)
		if id == "" {
			return fallback
		}
		name, err := cache.Resolve(ctx, id)
		if err != nil || name == "" {
			v.logger.WarnContext(ctx, "Name lookup failed",
				log.FieldPageID, id,
				log.FieldError, err)
			return unknownName
		}
		return name
	}

	var owed []NamedAmount
	index := map[string]int{}
	add := func(name string, m core.Money) {
		i, ok := index[name]
		if !ok {
			i = len(owed)
			index[name] = i
			owed = append(owed, NamedAmount{Name: name})
		}
		owed[i].Amount = owed[i].Amount.Add(m)
	}

	var out Cashflow
	for _, p := range expenses {
		add(resolve(p, propClient, noClientName), records.Amount(p, propAmount))
	}
	for _, p := range timesheets {
		add(resolve(p, propClient, noClientName), billedAmount(p))
	}
	for _, p := range advances {
		add(resolve(p, propTodoCosto, noProjectName), records.Amount(p, propMonto))
	}
	for _, a := range owed {
		out.TotalOwed = out.TotalOwed.Add(a.Amount)
	}
	sortDesc(owed, func(a NamedAmount) int64 { return a.Amount.Cents })
	out.ClientBreakdown = owed
	if out.ClientBreakdown == nil {
		out.ClientBreakdown = []NamedAmount{}
	}

	out.SupplierBreakdown = make([]SupplierItem, 0, len(contador))
	for _, p := range contador {
		title := records.Title(p)
		if title == "" {
			title = unknownName
		}
		vendor, products := SplitVendor(title)
		item := SupplierItem{
			Vendor:   vendor,
			Products: products,
			Client:   resolve(p, propClient, ""),
			Category: records.Select(p, propCategory),
			Amount:   records.Amount(p, propAmount),
		}
		if u := records.URL(p, propKDrive); u != "" {
			item.KDriveURL = &u
		}
		out.SupplierDebt = out.SupplierDebt.Add(item.Amount)
		out.SupplierBreakdown = append(out.SupplierBreakdown, item)
	}
	return out
}

// SplitVendor splits "Vendor — Products" on the first dash. A title that
// starts with the dash, or has none, is all vendor.
func SplitVendor(title string) (vendor, products string) {
	i := strings.Index(title, vendorSep)
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+len(vendorSep):])
}
