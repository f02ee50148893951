package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Database keys of the workspace configuration.
const (
	DBExpenses         = "expenses"
	DBTimesheets       = "timesheets"
	DBProjects         = "projects"
	DBClients          = "clients"
	DBPeople           = "people"
	DBTodoCosto        = "todoCosto"
	DBTodoCostoAvances = "todoCostoAvances"
	DBMantCamioneta    = "mantCamioneta"
	DBMantPlantas      = "mantPlantas"
	DBMantGasolina     = "mantGasolina"
	DBPersonalLedger   = "personalLedger"
)

const (
	DefaultName     = "Construction OS 2.0"
	DefaultCurrency = "DOP"
	DefaultOwner    = "Jeff"
)

// Workspace maps logical collections to upstream database ids and carries
// the branding shown by clients.
type Workspace struct {
	Databases map[string]string `json:"databases"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	Logo      string            `json:"logo"`
	// Owner is the "Pagado por" label of advances paid by the company owner.
	Owner string `json:"owner"`
}

type Branding struct {
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Logo     *string `json:"logo"`
}

// LoadWorkspace reads the workspace from the raw JSON value when it parses,
// else from file. It always returns a usable workspace; the error reports
// why the configured sources could not be used.
func LoadWorkspace(raw, file string) (Workspace, error) {
	var errs []error
	if raw != "" {
		var w Workspace
		err := json.Unmarshal([]byte(raw), &w)
		if err == nil {
			return w, nil
		}
		errs = append(errs, fmt.Errorf("CONSTRUCTION_CONFIG: %w", err))
	}
	if file != "" {
		b, err := os.ReadFile(file)
		switch {
		case err == nil:
			var w Workspace
			if err := json.Unmarshal(b, &w); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
				break
			}
			return w, errors.Join(errs...)
		case !os.IsNotExist(err):
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
	}
	return Workspace{}, errors.Join(errs...)
}

// DB returns the database id for key, or "" when not configured.
func (w Workspace) DB(key string) string {
	return w.Databases[key]
}

func (w Workspace) Branding() Branding {
	b := Branding{Name: w.Name, Currency: w.Currency}
	if b.Name == "" {
		b.Name = DefaultName
	}
	if b.Currency == "" {
		b.Currency = DefaultCurrency
	}
	if w.Logo != "" {
		logo := w.Logo
		b.Logo = &logo
	}
	return b
}

// OwnerLabel returns Owner or DefaultOwner.
func (w Workspace) OwnerLabel() string {
	if w.Owner == "" {
		return DefaultOwner
	}
	return w.Owner
}
