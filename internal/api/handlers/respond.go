package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/divvyup/divvy/internal/auth"
	"github.com/divvyup/divvy/internal/service"
)

// writeJSON marshals v to the response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError translates a service failure kind into a transport status.
// Kinds keep their generic messages; anything unrecognized is an internal
// failure and its details stay out of the response.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrJoinCredentialsInvalid):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInviteInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrMembershipCreationFailed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrExpenseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrLedgerValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	default:
		slog.Error("Internal failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode reads the request body into v, rejecting unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
