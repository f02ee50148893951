package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/log"
	"obra/internal/records"
	"obra/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// Title property of each creatable collection.
const (
	titleTimesheet = "Task/Activity"
	titleExpense   = "Description"
	titleClient    = "Client Name"
	titleProject   = "Project Name"
	titlePerson    = "Person Name"

	propProjectKind = "Type"
	propHourlyRate  = "Hourly Rate"
)

// Decimal is a JSON number that also accepts a numeric string, as sent by
// HTML forms. Empty means zero.
type Decimal float64

func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, core.ErrInvalidAmount)
	}
	*d = Decimal(f)
	return nil
}

// EntryRequest is the body of a record creation. Which fields apply
// depends on Type.
type EntryRequest struct {
	Type        string  `json:"type"`
	Task        string  `json:"task"`
	Description string  `json:"description"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Hours       Decimal `json:"hours"`
	Amount      Decimal `json:"amount"`
	Rate        Decimal `json:"rate"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
	EmployeeID  string  `json:"employeeId"`
	ProjectID   string  `json:"projectId"`
	ClientID    string  `json:"clientId"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	ProjectType string  `json:"projectType"`
	StartDate   string  `json:"startDate"`
}

type EntryResult struct {
	OK   bool   `json:"ok"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ValidationError marks a request that was rejected before reaching the
// record store.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

type Entries struct {
	store  records.Creator
	ws     config.Workspace
	logger *log.Logger
}

func NewEntries(store records.Creator, ws config.Workspace) *Entries {
	return &Entries{store: store, ws: ws, logger: log.WithComponent(log.ComponentEntries)}
}

// Create validates req and writes a new record to the collection named by
// req.Type. Validation failures are returned as *ValidationError.
func (e *Entries) Create(ctx context.Context, req EntryRequest) (EntryResult, error) {
	typ, err := core.ParseEntryType(req.Type)
	if err != nil {
		return EntryResult{}, &ValidationError{Err: err}
	}

	ctx, span := telemetry.Start(ctx, "entries.create", attribute.String("entry.type", string(typ)))
	defer span.End()

	db, props, name, err := e.build(typ, req)
	if err != nil {
		return EntryResult{}, &ValidationError{Err: err}
	}

	id, err := e.store.Create(ctx, e.ws.DB(db), props)
	if err != nil {
		telemetry.Fail(span, err)
		e.logger.ErrorContext(ctx, "Failed to create record",
			log.FieldEntryType, typ,
			log.FieldDatabase, db,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork)
		return EntryResult{}, fmt.Errorf("create %s: %w", typ, err)
	}

	e.logger.InfoContext(ctx, "Record created",
		log.FieldEntryType, typ,
		log.FieldPageID, id)
	return EntryResult{OK: true, ID: id, Name: name}, nil
}

// build maps a request to the target collection and its properties. The
// returned name is echoed back for the types that create a named record.
func (e *Entries) build(typ core.EntryType, req EntryRequest) (string, notionapi.Properties, string, error) {
	switch typ {
	case core.EntryTimesheet:
		in := core.TimesheetInput{
			Task:       strings.TrimSpace(req.Task),
			Date:       req.Date,
			Hours:      float64(req.Hours),
			Amount:     core.FromFloat(float64(req.Amount)),
			EmployeeID: req.EmployeeID,
			ProjectID:  req.ProjectID,
			ClientID:   req.ClientID,
		}
		if err := in.Validate(); err != nil {
			return "", nil, "", err
		}
		props := notionapi.Properties{
			titleTimesheet: records.TitleProp(in.Task),
			propStatus:     records.SelectProp(string(core.StatusPendingReimbursement)),
			propDate:       records.DateProp(in.Date),
		}
		if in.Hours > 0 {
			props[propHours] = records.NumberProp(in.Hours)
		}
		if !in.Amount.IsZero() {
			props[propFixedAmount] = records.NumberProp(in.Amount.Float())
		}
		relate(props, propEmployee, in.EmployeeID)
		relate(props, propProject, in.ProjectID)
		relate(props, propClient, in.ClientID)
		return config.DBTimesheets, props, "", nil

	case core.EntryExpense:
		in := core.ExpenseInput{
			Description: strings.TrimSpace(req.Description),
			Amount:      core.FromFloat(float64(req.Amount)),
			Date:        req.Date,
			Status:      core.Status(req.Status),
			Category:    req.Category,
			ProjectID:   req.ProjectID,
			ClientID:    req.ClientID,
		}
		if in.Status == "" {
			in.Status = core.StatusPendingReimbursement
		}
		if err := in.Validate(); err != nil {
			return "", nil, "", err
		}
		props := notionapi.Properties{
			titleExpense: records.TitleProp(in.Description),
			propAmount:   records.NumberProp(in.Amount.Float()),
			propDate:     records.DateProp(in.Date),
			propStatus:   records.SelectProp(string(in.Status)),
		}
		if in.Category != "" {
			props[propCategory] = records.SelectProp(in.Category)
		}
		relate(props, propProject, in.ProjectID)
		relate(props, propClient, in.ClientID)
		return config.DBExpenses, props, "", nil

	case core.EntryClient:
		in := core.ClientInput{Name: strings.TrimSpace(req.Name), Phone: req.Phone, Email: req.Email}
		if err := in.Validate(); err != nil {
			return "", nil, "", err
		}
		props := notionapi.Properties{titleClient: records.TitleProp(in.Name)}
		if in.Phone != "" {
			props[propPhone] = records.PhoneProp(in.Phone)
		}
		if in.Email != "" {
			props[propEmail] = records.EmailProp(in.Email)
		}
		return config.DBClients, props, in.Name, nil

	case core.EntryProject:
		in := core.ProjectInput{
			Name:        strings.TrimSpace(req.Name),
			ProjectType: req.ProjectType,
			StartDate:   req.StartDate,
			ClientID:    req.ClientID,
		}
		if err := in.Validate(); err != nil {
			return "", nil, "", err
		}
		props := notionapi.Properties{titleProject: records.TitleProp(in.Name)}
		if in.ProjectType != "" {
			props[propProjectKind] = records.SelectProp(in.ProjectType)
		}
		if in.StartDate != "" {
			props[propStartDate] = records.DateProp(in.StartDate)
		}
		relate(props, propClient, in.ClientID)
		return config.DBProjects, props, in.Name, nil

	case core.EntryPerson:
		in := core.PersonInput{Name: strings.TrimSpace(req.Name), HourlyRate: core.FromFloat(float64(req.Rate))}
		if err := in.Validate(); err != nil {
			return "", nil, "", err
		}
		props := notionapi.Properties{titlePerson: records.TitleProp(in.Name)}
		if !in.HourlyRate.IsZero() {
			props[propHourlyRate] = records.NumberProp(in.HourlyRate.Float())
		}
		return config.DBPeople, props, in.Name, nil
	}
	return "", nil, "", core.ErrUnknownEntryType
}

func relate(props notionapi.Properties, key, id string) {
	if id != "" {
		props[key] = records.RelationProp(id)
	}
}

// DecodeEntry reads an EntryRequest, reporting malformed bodies as
// validation failures.
func DecodeEntry(data []byte) (EntryRequest, error) {
	var req EntryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return EntryRequest{}, &ValidationError{Err: fmt.Errorf("invalid request body: %w", err)}
	}
	return req, nil
}
