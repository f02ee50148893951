package http

import (
	"errors"
	"net/http"

	"obra/internal/log"
	"obra/internal/todoist"
)

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := s.deps.Views
	var doc any
	switch r.PathValue("view") {
	case "dashboard":
		doc = v.Dashboard(ctx)
	case "clients":
		doc = v.Clients(ctx)
	case "accounts":
		doc = v.Accounts(ctx)
	case "calendar":
		doc = v.Calendar(ctx)
	case "maintenance":
		doc = v.Maintenance(ctx)
	case "projects":
		doc = v.Projects(ctx)
	case "expenses":
		doc = v.Expenses(ctx)
	case "timesheets":
		doc = v.Timesheets(ctx)
	default:
		writeErrorMessage(w, http.StatusNotFound, "unknown view")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Views.Lookup(r.Context()))
}

func (s *Server) handleCashflow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Views.Cashflow(r.Context()))
}

type tasksResponse struct {
	Tasks []todoist.Task `json:"tasks"`
	Today string         `json:"today"`
	Error string         `json:"error,omitempty"`
}

// handleTodoist always answers 200 with a task list. When the provider is
// missing or fails the list is empty and carries the reason.
func (s *Server) handleTodoist(w http.ResponseWriter, r *http.Request) {
	today := s.deps.Views.Today()
	resp := tasksResponse{Tasks: []todoist.Task{}, Today: today}
	if s.deps.Tasks == nil {
		resp.Error = todoist.ErrNoToken.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	tasks, err := s.deps.Tasks.Tasks(r.Context(), today)
	if err != nil {
		if !errors.Is(err, todoist.ErrNoToken) {
			s.logger.WarnContext(r.Context(), "Task list unavailable",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeNetwork)
		}
		resp.Error = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if tasks != nil {
		resp.Tasks = tasks
	}
	writeJSON(w, http.StatusOK, resp)
}
