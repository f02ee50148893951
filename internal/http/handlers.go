package http

import (
	"net/http"

	"obra/internal/log"
	"obra/internal/middleware/session"
	"obra/internal/services"
	"obra/internal/status"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if !s.gate.Check(sanitizeInput(body.PIN)) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected",
			log.FieldErrorType, log.ErrorTypeAuth)
		writeErrorMessage(w, http.StatusUnauthorized, "Invalid PIN")
		return
	}
	http.SetCookie(w, s.gate.Cookie(r.TLS != nil))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.ClearCookie())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := services.DecodeEntry(b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.deps.Entries.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type successResponse struct {
	Success bool `json:"success"`
	Updated *int `json:"updated,omitempty"`
}

func (s *Server) handleReverseStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PageID string `json:"pageId"`
		Field  string `json:"field"`
		Value  string `json:"value"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.PageID == "" || body.Field == "" || body.Value == "" {
		writeErrorMessage(w, http.StatusBadRequest, "pageId, field, value required")
		return
	}
	t, err := status.Parse(body.Field, body.Value)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid field/value")
		return
	}
	if err := s.deps.Status.Apply(r.Context(), body.PageID, t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleMarkReimbursed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PageID string `json:"pageId"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.PageID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "pageId required")
		return
	}
	if err := s.deps.Status.Apply(r.Context(), body.PageID, status.Reimbursement{Reimbursed: true}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handlePayWorker(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PageIDs []string `json:"pageIds"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	switch {
	case len(body.PageIDs) == 0:
		writeErrorMessage(w, http.StatusBadRequest, "pageIds must be a non-empty array")
		return
	case len(body.PageIDs) > status.MaxBatch:
		writeErrorMessage(w, http.StatusBadRequest, "Too many pages")
		return
	}
	n, err := s.deps.Status.ApplyBatch(r.Context(), body.PageIDs, status.Payment{Paid: true})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Updated: &n})
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeErrorMessage(w, http.StatusNotFound, "transition journal not configured")
		return
	}
	rows, err := s.deps.Journal.ListTransitions(r.Context(), r.URL.Query().Get("pageId"), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transitions": rows})
}
