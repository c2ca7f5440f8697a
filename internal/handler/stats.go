package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mpower/youthopia/internal/college"
	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/stats"
)

type StatsHandler struct {
	mirror *mirror.Mirror
	logger *slog.Logger
}

func NewStatsHandler(m *mirror.Mirror, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{mirror: m, logger: logger}
}

// Colleges groups students by college. ?event= narrows to one event's
// registrants, ?q= filters by college name and ?detail=1 lists students.
func (h *StatsHandler) Colleges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := college.Options{
		EventID: q.Get("event"),
		Search:  q.Get("q"),
		Detail:  q.Get("detail") == "1" || q.Get("detail") == "true",
	}
	writeJSON(w, http.StatusOK, college.DistributionRules.Distribute(h.mirror.Snapshot().Users, opts))
}

func (h *StatsHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	s := h.mirror.Snapshot()
	writeJSON(w, http.StatusOK, college.EventDistribution(s.Users, s.Events, r.URL.Query().Get("q")))
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.mirror.Snapshot()
	writeJSON(w, http.StatusOK, stats.Compute(s.Users, s.Events, s.Feedback, s.SpinFeedback))
}

// Leaderboard ranks students by points. ?limit= caps the list; the
// viewer's own standing is included when they are ranked.
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	users := h.mirror.Snapshot().Users
	resp := map[string]any{"entries": stats.Leaderboard(users, limit)}
	if u := viewer(r); u != nil {
		if me, ok := stats.Standing(users, u.Key()); ok {
			resp["me"] = me
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stats.ExportFilename))
	if err := stats.ExportStudents(w, h.mirror.Snapshot().Users); err != nil {
		h.logger.Error("export students", "error", err)
	}
}
