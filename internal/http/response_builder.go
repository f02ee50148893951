package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"obra/internal/log"
	"obra/internal/records"
	"obra/internal/services"
	"obra/internal/status"
	"obra/internal/todoist"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// writeError maps err to a status code and logs failures that are not the
// caller's fault.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	if code >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork)
	}
	writeErrorMessage(w, code, err.Error())
}

func errorStatus(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, errBadRequest),
		errors.Is(err, status.ErrNotAllowed),
		errors.Is(err, status.ErrEmptyBatch),
		errors.Is(err, status.ErrBatchTooLarge),
		errors.Is(err, records.ErrInvalidPageID):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, todoist.ErrNoToken):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
