// Package status applies the reversible status changes the dashboard
// allows on expenses and timesheets.
package status

import (
	"errors"

	"obra/internal/core"
)

// Fields that may be changed.
const (
	FieldPayment       = "Employee payment status"
	FieldReimbursement = "Status"
)

var ErrNotAllowed = errors.New("field/value not allowed")

// Transition is a permitted status change. The only implementations are
// Payment and Reimbursement.
type Transition interface {
	Field() string
	Value() string
	sealed()
}

// Payment moves a timesheet between "Not Paid" and "Paid".
type Payment struct{ Paid bool }

func (Payment) Field() string { return FieldPayment }

func (p Payment) Value() string {
	if p.Paid {
		return string(core.PaymentPaid)
	}
	return string(core.PaymentNotPaid)
}

func (Payment) sealed() {}

// Reimbursement moves an expense or timesheet between "Pending
// Reimbursement" and "Reimbursed".
type Reimbursement struct{ Reimbursed bool }

func (Reimbursement) Field() string { return FieldReimbursement }

func (r Reimbursement) Value() string {
	if r.Reimbursed {
		return string(core.StatusReimbursed)
	}
	return string(core.StatusPendingReimbursement)
}

func (Reimbursement) sealed() {}

// Parse maps a field/value pair to a transition. Any pair outside the four
// allowed ones returns ErrNotAllowed.
func Parse(field, value string) (Transition, error) {
	switch field {
	case FieldPayment:
		switch core.PaymentStatus(value) {
		case core.PaymentPaid:
			return Payment{Paid: true}, nil
		case core.PaymentNotPaid:
			return Payment{Paid: false}, nil
		}
	case FieldReimbursement:
		switch core.Status(value) {
		case core.StatusReimbursed:
			return Reimbursement{Reimbursed: true}, nil
		case core.StatusPendingReimbursement:
			return Reimbursement{Reimbursed: false}, nil
		}
	}
	return nil, ErrNotAllowed
}
