package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the record store.
const DateLayout = "2006-01-02"

// Reimbursement workflow labels as stored in the "Status" select.
const (
	StatusPendingReimbursement Status = "Pending Reimbursement"
	StatusReimbursed           Status = "Reimbursed"
	StatusParaContador         Status = "Para Contador"
	StatusPaid                 Status = "Paid"
)

// Worker payment labels as stored in the "Employee payment status" select.
const (
	PaymentNotPaid PaymentStatus = "Not Paid"
	PaymentPaid    PaymentStatus = "Paid"
)

const (
	ItemExpense   ItemType = "expense"
	ItemTimesheet ItemType = "timesheet"
	ItemAdvance   ItemType = "advance"
)

const (
	PayerSelf   Payer = "self"
	PayerClient Payer = "client"
	PayerOther  Payer = "other"
)

const (
	AdvancePending    AdvanceState = "pending"
	AdvanceReimbursed AdvanceState = "reimbursed"
)

type (
	Status        string
	PaymentStatus string
	ItemType      string
	Payer         string
	AdvanceState  string

	Money struct {
		Cents int64
	}

	// Transaction is an expense or a timesheet-derived charge.
	Transaction struct {
		ID            string
		Kind          ItemType
		Description   string
		Amount        Money
		Date          string
		Status        Status
		PaymentStatus PaymentStatus
		Category      string
		PaidFrom      string
		Hours         float64
		ClientRef     string
		ProjectRef    string
		WorkerRef     string
		AttachmentURL string
	}

	// LedgerEntry is a line of the personal account book.
	LedgerEntry struct {
		Description string
		Date        string
		Person      string
		Kind        string
		Debit       Money
		Credit      Money
		Method      string
		Notes       string
	}

	// ProjectBudget is a fixed-cost project with an externally computed
	// pending amount.
	ProjectBudget struct {
		ID          string
		Name        string
		TotalBudget Money
		Pending     Money
		Status      string
		ClientRef   string
		Start       string
	}

	Advance struct {
		ID          string
		Description string
		Amount      Money
		Date        string
		Payer       Payer
		Reimbursed  AdvanceState
		ProjectRef  string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidHours     = errors.New("invalid hours")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

// Known reports whether s is one of the workflow labels this system knows.
// Anything else is treated as "other".
func (s Status) Known() bool {
	switch s {
	case StatusPendingReimbursement, StatusReimbursed, StatusParaContador, StatusPaid:
		return true
	}
	return false
}

// ParsePayer maps the "Pagado por" select of an advance. The company owner's
// own label is configured by the caller.
func ParsePayer(label, self string) Payer {
	switch {
	case label == "":
		return PayerOther
	case strings.EqualFold(label, self):
		return PayerSelf
	case strings.EqualFold(label, "Cliente"), strings.EqualFold(label, "Client"):
		return PayerClient
	}
	return PayerOther
}

// ParseAdvanceState maps the "Reembolsado" select of an advance.
func ParseAdvanceState(label string) AdvanceState {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "reembolsado", "reimbursed", "si", "sí":
		return AdvanceReimbursed
	}
	return AdvancePending
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DateOf returns the calendar date portion of a record date, which may carry
// a time and offset ("2024-05-01T10:00:00.000-04:00"). The date is taken as
// written, never converted to another zone.
func DateOf(s string) string {
	if len(s) >= len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n days. Invalid input is returned as is.
func AddDays(date string, n int) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// MonthStart returns the first day of the month of a YYYY-MM-DD date.
func MonthStart(date string) string {
	if len(date) < 8 {
		return date
	}
	return date[:8] + "01"
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
