package handler

import (
	"log/slog"
	"net/http"

	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/spin"
)

type SpinHandler struct {
	mirror *mirror.Mirror
	logger *slog.Logger
}

func NewSpinHandler(m *mirror.Mirror, logger *slog.Logger) *SpinHandler {
	return &SpinHandler{mirror: m, logger: logger}
}

func (h *SpinHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.mirror.SpinStatus()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Spin blocks for the wheel animation. With no spin available, or one
// already running, the current status is returned unchanged.
func (h *SpinHandler) Spin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.mirror.Spin(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	h.Status(w, r)
}

type submitRequest struct {
	Answers spin.Answers `json:"answers"`
}

func (h *SpinHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	out, err := h.mirror.SubmitSpin(r.Context(), req.Answers)
	if err != nil {
		if status := statusOf(err); status >= http.StatusInternalServerError {
			h.logger.Error("submit spin feedback", "error", err)
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
