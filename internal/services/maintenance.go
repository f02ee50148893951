package services

import (
	"context"
	"time"

	"github.com/jomei/notionapi"

	"obra/internal/config"
	"obra/internal/core"
	"obra/internal/records"
)

// Kilometres before the next service at which a vehicle is flagged.
const serviceWarningKm = 1000

// Vehicle service states.
const (
	ServiceOK      = "ok"
	ServiceWarning = "warning"
	ServiceOverdue = "overdue"
)

type (
	MaintenanceEntry struct {
		ID           string  `json:"id"`
		Entry        string  `json:"entry"`
		Date         string  `json:"date"`
		Asset        string  `json:"asset"`
		State        string  `json:"state,omitempty"`
		Hours        float64 `json:"hours,omitempty"`
		Fuel         string  `json:"fuel,omitempty"`
		Checks       []Check `json:"checks"`
		Observations string  `json:"observations,omitempty"`
		NextAction   string  `json:"nextAction,omitempty"`
	}

	// AssetHistory is the latest log of one asset and all of its logs,
	// newest first.
	AssetHistory struct {
		Asset   string             `json:"asset"`
		Latest  MaintenanceEntry   `json:"latest"`
		History []MaintenanceEntry `json:"history"`
	}

	VehicleStatus struct {
		Vehicle      string  `json:"vehicle"`
		Date         string  `json:"date"`
		Odometer     float64 `json:"odometer"`
		NextKm       float64 `json:"nextKm"`
		KmRemaining  float64 `json:"kmRemaining"`
		Alert        bool    `json:"alert"`
		State        string  `json:"state"`
		NextDate     string  `json:"nextDate,omitempty"`
		Checks       []Check `json:"checks"`
		Observations string  `json:"observations,omitempty"`
	}

	Maintenance struct {
		Today        string          `json:"today"`
		NextSaturday string          `json:"nextSaturday"`
		Vehicles     []VehicleStatus `json:"vehicles"`
		VehicleLogs  []VehicleStatus `json:"vehicleLogs"`
		Plants       []AssetHistory  `json:"plants"`
		Gasoline     []AssetHistory  `json:"gasoline"`
	}
)

func (v *Views) Maintenance(ctx context.Context) Maintenance {
	var vehicles, plants, gasoline []notionapi.Page
	v.load(ctx, "maintenance",
		all(config.DBMantCamioneta, &vehicles, records.Descending(propFecha)),
		all(config.DBMantPlantas, &plants, records.Descending(propFecha)),
		all(config.DBMantGasolina, &gasoline, records.Descending(propFecha)),
	)

	today := v.Today()
	m := Maintenance{
		Today:        today,
		NextSaturday: NextSaturday(today),
		Vehicles:     vehicleStatuses(vehicles),
		Plants:       histories(plants, propPlant, false),
		Gasoline:     histories(gasoline, propEquipment, true),
	}
	for _, p := range vehicles {
		m.VehicleLogs = append(m.VehicleLogs, vehicleStatus(p))
	}
	return m
}

// NextSaturday returns the first Saturday strictly after date. An invalid
// date is returned unchanged.
func NextSaturday(date string) string {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return date
	}
	days := (int(time.Saturday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days).Format(core.DateLayout)
}

// vehicleStatuses returns the latest log of each vehicle. logs must be
// sorted newest first; the result keeps that order.
func vehicleStatuses(logs []notionapi.Page) []VehicleStatus {
	var out []VehicleStatus
	seen := map[string]bool{}
	for _, p := range logs {
		vehicle := records.Select(p, propVehicle)
		if seen[vehicle] {
			continue
		}
		seen[vehicle] = true
		out = append(out, vehicleStatus(p))
	}
	return out
}

func vehicleStatus(p notionapi.Page) VehicleStatus {
	s := VehicleStatus{
		Vehicle:      records.Select(p, propVehicle),
		Date:         records.Date(p, propFecha),
		Odometer:     records.Number(p, propOdometer),
		NextKm:       records.Number(p, propNextKm),
		NextDate:     records.Date(p, propNextReview),
		Checks:       checks(p, vehicleChecks),
		Observations: records.Text(p, propObservations),
	}
	s.KmRemaining = s.NextKm - s.Odometer
	s.Alert = s.KmRemaining <= serviceWarningKm
	switch {
	case s.KmRemaining <= 0:
		s.State = ServiceOverdue
	case s.Alert:
		s.State = ServiceWarning
	default:
		s.State = ServiceOK
	}
	return s
}

// histories groups logs sorted newest first by asset, in order of each
// asset's most recent log.
func histories(logs []notionapi.Page, assetProp string, withFuel bool) []AssetHistory {
	var out []AssetHistory
	idx := map[string]int{}
	for _, p := range logs {
		e := MaintenanceEntry{
			ID:           p.ID.String(),
			Entry:        records.Title(p),
			Date:         records.Date(p, propFecha),
			Asset:        records.Select(p, assetProp),
			State:        records.Select(p, propEstado),
			Hours:        records.Number(p, propTotalHours),
			Checks:       checks(p, engineChecks),
			Observations: records.Text(p, propObservations),
			NextAction:   records.Text(p, propNextAction),
		}
		if withFuel {
			e.Fuel = records.Select(p, propFuel)
		}
		i, ok := idx[e.Asset]
		if !ok {
			i = len(out)
			idx[e.Asset] = i
			out = append(out, AssetHistory{Asset: e.Asset, Latest: e})
		}
		out[i].History = append(out[i].History, e)
	}
	return out
}

func checks(p notionapi.Page, props []string) []Check {
	out := make([]Check, 0, len(props))
	for _, name := range props {
		out = append(out, Check{Name: name, Value: records.Select(p, name)})
	}
	return out
}
