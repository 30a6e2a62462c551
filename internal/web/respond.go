// Package web holds the HTTP response conventions shared by all module
// controllers: a JSON error envelope and the mapping from service error
// kinds to statuses.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/loanmath"
)

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    errorEnvelopeMeta `json:"meta"`
}

type errorEnvelopeMeta struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Code:    code,
		Message: message,
		Meta: errorEnvelopeMeta{
			Path:   r.URL.Path,
			Method: r.Method,
		},
	})
}

// WriteServiceError maps a service-layer error onto a status and code.
// Unrecognized errors become an opaque 500; their detail stays in the
// server log, not the response.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case loanmath.IsInvalidTerms(err):
		WriteError(w, r, http.StatusBadRequest, "invalid_terms", err.Error())
	case httperr.IsBadRequest(err):
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	case httperr.IsNotFound(err):
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case httperr.IsConflict(err):
		WriteError(w, r, http.StatusConflict, "conflict", err.Error())
	case IsPgInvalidInput(err):
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "invalid input")
	case IsPgUniqueViolation(err):
		WriteError(w, r, http.StatusConflict, "conflict", "already exists")
	case IsPgForeignKeyViolation(err):
		WriteError(w, r, http.StatusConflict, "conflict", "referenced by other records")
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal", "request failed")
	}
}
