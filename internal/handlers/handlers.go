// Package handlers contains the HTTP layer: request decoding, ownership
// checks and status mapping. Business rules live in services.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/auth"
	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/services"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// requireIdentity fetches the authenticated caller or writes a 401.
// Routes are wrapped in auth.RequireAuth, so the miss case is a guard
// against wiring mistakes rather than an expected path.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return id, ok
}

// serviceError maps domain errors to HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvoiceLocked):
		httpx.JSONError(w, http.StatusConflict, "invoice_locked", nil)
	case errors.Is(err, services.ErrNumberConflict):
		httpx.JSONError(w, http.StatusConflict, "number_conflict", nil)
	case errors.Is(err, services.ErrItemInUse):
		httpx.JSONError(w, http.StatusConflict, "item_in_use", err.Error())
	case errors.Is(err, services.ErrMissingRecipient):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "missing_recipient", nil)
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		httpx.JSONError(w, http.StatusConflict, "duplicate", nil)
	default:
		log.Error().Err(err).Msg("request failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	httpx.JSONError(w, http.StatusBadRequest, msg, nil)
}

func forbidden(w http.ResponseWriter) {
	httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
