package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bank-ledger/pkg/store"
)

// ErrUnauthorized is returned by the owner guard when the caller identity
// does not match the account owner.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError rejects a request body before it reaches the ledger.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// validationf builds a ValidationError.
func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps an error to its HTTP status: not-found to 404,
// validation to 400, the owner guard to 403, anything else (persistence
// failures included) to 500.
func writeError(w http.ResponseWriter, err error) {
	var validation *ValidationError

	switch {
	case store.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
