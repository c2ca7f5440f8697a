package handler

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/stats"
)

type EventHandler struct {
	mirror *mirror.Mirror
	logger *slog.Logger
}

func NewEventHandler(m *mirror.Mirror, logger *slog.Logger) *EventHandler {
	return &EventHandler{mirror: m, logger: logger}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mirror.Snapshot().Events)
}

type joinRequest struct {
	Team []model.TeamMember `json:"team"`
}

func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	e, err := h.mirror.Event(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if e.IsTeamEvent {
		size := len(req.Team) + 1
		if (e.MinMembers > 0 && size < e.MinMembers) || (e.MaxMembers > 0 && size > e.MaxMembers) {
			writeError(w, http.StatusBadRequest, "team size outside the event's limits")
			return
		}
	}

	if err := h.mirror.Join(r.Context(), id, req.Team); err != nil {
		h.logger.Error("join event", "event_id", id, "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event_id": id,
		"progress": h.mirror.Progress(h.mirror.Session()),
	})
}

type feedbackRequest struct {
	EventID string `json:"event_id"`
	Emoji   string `json:"emoji"`
}

func (h *EventHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.EventID == "" || !knownEmoji(req.Emoji) {
		writeError(w, http.StatusBadRequest, "event_id and a rating emoji are required")
		return
	}

	f, err := h.mirror.AddFeedback(r.Context(), req.EventID, req.Emoji)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func knownEmoji(e string) bool {
	return slices.Contains(stats.Emojis, e)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e model.Event
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := h.mirror.CreateEvent(r.Context(), &e); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.mirror.Event(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	// Decoding reuses slice and map storage, so detach them from the
	// snapshot first.
	e := *existing
	e.Rules = slices.Clone(e.Rules)
	e.Prizes = slices.Clone(e.Prizes)
	e.Registered = slices.Clone(e.Registered)
	e.Completed = slices.Clone(e.Completed)
	e.RawRegistered = maps.Clone(e.RawRegistered)
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	e.ID = id
	if err := h.mirror.UpdateEvent(r.Context(), &e); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.mirror.Event(id); err != nil {
		writeErr(w, err)
		return
	}
	if err := h.mirror.DeleteEvent(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
