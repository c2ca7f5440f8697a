package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mpower/youthopia/internal/admin"
	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/spin"
)

type SessionHandler struct {
	mirror  *mirror.Mirror
	console *admin.Console
	logger  *slog.Logger
}

func NewSessionHandler(m *mirror.Mirror, console *admin.Console, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{mirror: m, console: console, logger: logger}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Identifier == "" {
		req.Identifier = req.Email
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	u, err := h.mirror.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Info("login failed", "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if u := h.mirror.Session(); u != nil {
		h.console.Revoke(u.Email)
	}
	if err := h.mirror.Logout(); err != nil {
		h.logger.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" || req.Mobile == 0 {
		writeError(w, http.StatusBadRequest, "name, mobile and password are required")
		return
	}
	if err := h.mirror.Register(r.Context(), req); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type meResponse struct {
	User        *model.User   `json:"user"`
	Progress    spin.Progress `json:"progress"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := viewer(r)
	writeJSON(w, http.StatusOK, meResponse{
		User:        u,
		Progress:    h.mirror.Progress(u),
		RefreshedAt: h.mirror.RefreshedAt(),
	})
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mirror.Snapshot())
}
