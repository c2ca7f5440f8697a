// Package handler exposes the mirror and the master control console as a
// local JSON API for the festival views.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mpower/youthopia/internal/admin"
	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/controller"
	"github.com/mpower/youthopia/internal/middleware"
	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/redemption"
	"github.com/mpower/youthopia/internal/spin"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// statusOf maps a domain error to a response status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, mirror.ErrNoSession),
		errors.Is(err, controller.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, admin.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, mirror.ErrUnknownEvent),
		errors.Is(err, mirror.ErrUnknownUser),
		errors.Is(err, mirror.ErrUnknownItem),
		errors.Is(err, admin.ErrUnknownStudent):
		return http.StatusNotFound
	case errors.Is(err, spin.ErrIncomplete),
		errors.Is(err, redemption.ErrInsufficientPoints):
		return http.StatusUnprocessableEntity
	case errors.Is(err, spin.ErrNoPendingSpin),
		errors.Is(err, spin.ErrBusy),
		errors.Is(err, redemption.ErrInProgress),
		errors.Is(err, admin.ErrInFlight):
		return http.StatusConflict
	}
	if api.StatusOf(err) != 0 {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusOf(err), err.Error())
}

// viewer is the signed-in user placed in the context by the session
// middleware.
func viewer(r *http.Request) *model.User {
	return middleware.UserFrom(r.Context())
}
