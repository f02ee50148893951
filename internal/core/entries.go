package core

import (
	"errors"
	"strings"
)

// EntryType selects the target collection and property mapping of a new record.
type EntryType string

const (
	EntryTimesheet EntryType = "timesheet"
	EntryExpense   EntryType = "expense"
	EntryClient    EntryType = "client"
	EntryProject   EntryType = "project"
	EntryPerson    EntryType = "person"
)

var ErrUnknownEntryType = errors.New("unknown entry type")

const maxTitleLength = 200

type (
	TimesheetInput struct {
		Task       string
		Date       string
		Hours      float64
		Amount     Money
		EmployeeID string
		ProjectID  string
		ClientID   string
	}

	ExpenseInput struct {
		Description string
		Amount      Money
		Date        string
		Status      Status
		Category    string
		ProjectID   string
		ClientID    string
	}

	ClientInput struct {
		Name  string
		Phone string
		Email string
	}

	ProjectInput struct {
		Name        string
		ProjectType string
		StartDate   string
		ClientID    string
	}

	PersonInput struct {
		Name       string
		HourlyRate Money
	}
)

// ParseEntryType validates the discriminator of a creation request.
func ParseEntryType(s string) (EntryType, error) {
	switch t := EntryType(strings.TrimSpace(s)); t {
	case EntryTimesheet, EntryExpense, EntryClient, EntryProject, EntryPerson:
		return t, nil
	}
	return "", ErrUnknownEntryType
}

func (in TimesheetInput) Validate() error {
	if err := validateTitle(in.Task, ErrEmptyDescription); err != nil {
		return err
	}
	if !ValidDate(in.Date) {
		return ErrInvalidDate
	}
	if in.Hours < 0 || in.Hours > 24 {
		return ErrInvalidHours
	}
	if in.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (in ExpenseInput) Validate() error {
	if err := validateTitle(in.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !ValidDate(in.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (in ClientInput) Validate() error {
	return validateTitle(in.Name, ErrEmptyName)
}

func (in ProjectInput) Validate() error {
	if err := validateTitle(in.Name, ErrEmptyName); err != nil {
		return err
	}
	if in.StartDate != "" && !ValidDate(in.StartDate) {
		return ErrInvalidDate
	}
	return nil
}

func (in PersonInput) Validate() error {
	if err := validateTitle(in.Name, ErrEmptyName); err != nil {
		return err
	}
	if in.HourlyRate.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validateTitle(s string, empty error) error {
	if strings.TrimSpace(s) == "" {
		return empty
	}
	if len(s) > maxTitleLength {
		return errors.New("title too long (max 200 characters)")
	}
	return nil
}
