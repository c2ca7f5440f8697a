package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mpower/youthopia/internal/admin"
	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/model"
)

// AdminHandler serves master control. Admins must unlock an event with
// its passcode before working on it; executives are never gated.
type AdminHandler struct {
	mirror  *mirror.Mirror
	console *admin.Console
	logger  *slog.Logger
}

func NewAdminHandler(m *mirror.Mirror, console *admin.Console, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{mirror: m, console: console, logger: logger}
}

type adminEvent struct {
	model.Event
	Authorized bool `json:"authorized"`
}

func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	u := viewer(r)
	events := admin.VisibleEvents(u, h.mirror.Snapshot().Events, r.URL.Query().Get("q"))
	out := make([]adminEvent, 0, len(events))
	for _, e := range events {
		out = append(out, adminEvent{Event: e, Authorized: h.unlocked(u, e.ID)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) unlocked(u *model.User, eventID string) bool {
	return u.Role == model.RoleExecutive || h.console.Authorized(u.Email, eventID)
}

// event resolves the path event for the viewer. It writes the error
// response and returns nil when the event is hidden or locked.
func (h *AdminHandler) event(w http.ResponseWriter, r *http.Request, needUnlock bool) *model.Event {
	u := viewer(r)
	id := r.PathValue("id")
	for _, e := range admin.VisibleEvents(u, h.mirror.Snapshot().Events, "") {
		if e.ID != id {
			continue
		}
		if needUnlock && !h.unlocked(u, id) {
			writeErr(w, admin.ErrUnauthorized)
			return nil
		}
		return &e
	}
	writeErr(w, mirror.ErrUnknownEvent)
	return nil
}

type authorizeRequest struct {
	Code string `json:"code"`
}

func (h *AdminHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	e := h.event(w, r, false)
	if e == nil {
		return
	}
	if !h.console.Authorize(viewer(r).Email, e.ID, req.Code) {
		writeError(w, http.StatusForbidden, "Invalid passcode")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": e.ID, "authorized": true})
}

func (h *AdminHandler) Roster(w http.ResponseWriter, r *http.Request) {
	e := h.event(w, r, true)
	if e == nil {
		return
	}
	s := h.mirror.Snapshot()
	writeJSON(w, http.StatusOK, admin.Roster(e, s.Users, s.Feedback))
}

type grantRequest struct {
	Email string `json:"email"`
}

func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	e := h.event(w, r, true)
	if e == nil {
		return
	}

	if err := h.console.GrantBonus(r.Context(), e, h.mirror.Snapshot().Users, req.Email); err != nil {
		writeErr(w, err)
		return
	}
	h.refresh(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

func (h *AdminHandler) GrantAll(w http.ResponseWriter, r *http.Request) {
	e := h.event(w, r, true)
	if e == nil {
		return
	}
	s := h.mirror.Snapshot()
	res := h.console.GrantAll(r.Context(), e, s.Users, s.Feedback)
	if len(res.Granted) > 0 {
		h.refresh(r)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) refresh(r *http.Request) {
	if err := h.mirror.Refresh(r.Context()); err != nil {
		h.logger.Warn("refresh after grant", "error", err)
	}
}

func (h *AdminHandler) Passcodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.console.Passcodes(h.mirror.Snapshot().Events))
}

func (h *AdminHandler) Log(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.console.Log().Lines())
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.mirror.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pointsRequest struct {
	Amount int `json:"amount"`
}

func (h *AdminHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "amount must not be zero")
		return
	}
	if err := h.mirror.AdjustPoints(r.Context(), r.PathValue("id"), req.Amount); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": r.PathValue("id"), "amount": req.Amount})
}
