package services

import (
	"github.com/jomei/notionapi"

	"obra/internal/core"
	"obra/internal/records"
)

// Property names of the upstream collections.
const (
	propDate          = "Date"
	propStatus        = "Status"
	propAmount        = "Amount"
	propFixedAmount   = "Fixed Amount"
	propCategory      = "Category"
	propPaidFrom      = "Paid From"
	propClient        = "Client"
	propProject       = "Project"
	propEmployee      = "Employee"
	propHours         = "Hours"
	propPaymentStatus = "Employee payment status"
	propKDrive        = "kDrive"

	propProgress        = "Progress %"
	propEstimatedBudget = "Estimated Budget"
	propContractValue   = "Contract Value"
	propCommitted       = "Committed Budget"
	propStartDate       = "Start Date"
	propEndDate         = "End Date"
	propProjectType     = "Project Type"

	propPhone    = "Phone"
	propEmail    = "Email"
	propPriority = "Priority"
	propBilling  = "Billing Terms"

	propLedgerPerson = "Person"
	propLedgerType   = "Type"
	propDebit        = "Debit"
	propCredit       = "Credit"
	propMethod       = "Method"
	propNotes        = "Notes"

	propTotalBudget = "Presupuesto Total"
	propPending     = "Pendiente"
	propEstado      = "Estado"
	propCliente     = "Cliente"
	propFechaInicio = "Fecha inicio"

	propMonto      = "Monto"
	propFecha      = "Fecha"
	propPagadoPor  = "Pagado por"
	propReembolso  = "Reembolsado"
	propTodoCosto  = "Todo Costo"
	pendingAdvance = "Pendiente"
	closedBudget   = "Pagado"
)

// Maintenance log properties.
const (
	propVehicle      = "Vehículo"
	propOdometer     = "Odómetro (km)"
	propNextKm       = "Próximo km"
	propNextReview   = "Próxima Revisión"
	propPlant        = "Planta"
	propEquipment    = "Equipo"
	propNextAction   = "Próxima Acción"
	propObservations = "Observaciones"
	propTotalHours   = "Horas totales"
	propFuel         = "Combustible"
)

// vehicleChecks and engineChecks are the select properties of an inspection,
// in display order.
var (
	vehicleChecks = []string{"Aceite motor", "Nivel Aceite", "Color Aceite", "Refrigerante", "Aspecto General", "Filtro Aire", "Filtro Aceite", "Frenos", "Llantas"}
	engineChecks  = []string{"Aceite", "Filtro Aire", "Filtro Aceite"}
)

func expenseOf(p notionapi.Page) core.Transaction {
	return core.Transaction{
		ID:            p.ID.String(),
		Kind:          core.ItemExpense,
		Description:   records.Title(p),
		Amount:        records.Amount(p, propAmount),
		Date:          records.Date(p, propDate),
		Status:        core.Status(records.Select(p, propStatus)),
		Category:      records.Select(p, propCategory),
		PaidFrom:      records.Select(p, propPaidFrom),
		ClientRef:     records.RelationID(p, propClient),
		ProjectRef:    records.RelationID(p, propProject),
		AttachmentURL: records.URL(p, propKDrive),
	}
}

// timesheetOf reads a timesheet. The charge is the fixed amount agreed with
// the worker.
func timesheetOf(p notionapi.Page) core.Transaction {
	return core.Transaction{
		ID:            p.ID.String(),
		Kind:          core.ItemTimesheet,
		Description:   records.Title(p),
		Amount:        records.Amount(p, propFixedAmount),
		Date:          records.Date(p, propDate),
		Status:        core.Status(records.Select(p, propStatus)),
		PaymentStatus: core.PaymentStatus(records.Select(p, propPaymentStatus)),
		Hours:         records.Number(p, propHours),
		ClientRef:     records.RelationID(p, propClient),
		ProjectRef:    records.RelationID(p, propProject),
		WorkerRef:     records.RelationID(p, propEmployee),
	}
}

// billedAmount is what a client owes for a timesheet: the computed Amount
// when present, else the fixed amount.
func billedAmount(p notionapi.Page) core.Money {
	if m := records.Amount(p, propAmount); !m.IsZero() {
		return m
	}
	return records.Amount(p, propFixedAmount)
}

func ledgerEntryOf(p notionapi.Page) core.LedgerEntry {
	return core.LedgerEntry{
		Description: records.Title(p),
		Date:        records.Date(p, propDate),
		Person:      records.Select(p, propLedgerPerson),
		Kind:        records.Select(p, propLedgerType),
		Debit:       records.Amount(p, propDebit),
		Credit:      records.Amount(p, propCredit),
		Method:      records.Select(p, propMethod),
		Notes:       records.Text(p, propNotes),
	}
}

func budgetOf(p notionapi.Page) core.ProjectBudget {
	return core.ProjectBudget{
		ID:          p.ID.String(),
		Name:        records.Title(p),
		TotalBudget: records.Amount(p, propTotalBudget),
		Pending:     records.Amount(p, propPending),
		Status:      records.Select(p, propEstado),
		ClientRef:   records.RelationID(p, propCliente),
		Start:       records.Date(p, propFechaInicio),
	}
}

func advanceOf(p notionapi.Page, owner string) core.Advance {
	return core.Advance{
		ID:          p.ID.String(),
		Description: records.Title(p),
		Amount:      records.Amount(p, propMonto),
		Date:        records.Date(p, propFecha),
		Payer:       core.ParsePayer(records.Select(p, propPagadoPor), owner),
		Reimbursed:  core.ParseAdvanceState(records.Select(p, propReembolso)),
		ProjectRef:  records.RelationID(p, propTodoCosto),
	}
}

func mapPages[T any](pages []notionapi.Page, f func(notionapi.Page) T) []T {
	out := make([]T, 0, len(pages))
	for _, p := range pages {
		out = append(out, f(p))
	}
	return out
}
