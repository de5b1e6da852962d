package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kwm/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error    string          `json:"error" validate:"required"`
	Severity apperr.Severity `json:"severity,omitempty" example:"warning"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps err to a status code. Domain errors carrying a severity
// become 422 with their message. Unrecognised errors are logged and hidden
// behind a 500.
func writeError(w http.ResponseWriter, op string, err error) {
	if sev, ok := apperr.SeverityOf(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{Error: domainMessage(err), Severity: sev})
		return
	}
	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody(verr.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// domainMessage returns the message of the innermost severity-typed error
// so wrapping context is not shown to users.
func domainMessage(err error) string {
	var sev apperr.Severe
	if errors.As(err, &sev) {
		return sev.Error()
	}
	return err.Error()
}
