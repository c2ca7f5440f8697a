package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
	"github.com/mpower/youthopia/internal/redemption"
)

type RedemptionHandler struct {
	mirror *mirror.Mirror
	logger *slog.Logger
}

func NewRedemptionHandler(m *mirror.Mirror, logger *slog.Logger) *RedemptionHandler {
	return &RedemptionHandler{mirror: m, logger: logger}
}

func (h *RedemptionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mirror.Catalog())
}

type redemptionList struct {
	Requests []model.RedemptionRequest `json:"requests"`
	Summary  redemption.Summary        `json:"summary"`
}

// List filters redemptions by ?status= and ?user=. Students only ever see
// their own history.
func (h *RedemptionHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.mirror.Snapshot().Redemptions
	u := viewer(r)

	if u.IsStudent() {
		mine := redemption.ForUser(all, u)
		writeJSON(w, http.StatusOK, redemptionList{Requests: mine, Summary: redemption.Summarize(mine)})
		return
	}

	reqs := redemption.ByStatus(all, parseStatus(r.URL.Query().Get("status")))
	if key := r.URL.Query().Get("user"); key != "" {
		target := normalize.FindUser(h.mirror.Snapshot().Users, key)
		if target == nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		reqs = redemption.ForUser(reqs, target)
	}
	writeJSON(w, http.StatusOK, redemptionList{Requests: reqs, Summary: redemption.Summarize(all)})
}

func parseStatus(s string) model.RedemptionStatus {
	switch strings.ToLower(s) {
	case "pending":
		return model.RedemptionPending
	case "approved":
		return model.RedemptionApproved
	case "rejected":
		return model.RedemptionRejected
	}
	return ""
}

type redeemRequest struct {
	Item string `json:"item"`
}

// Redeem always answers with the claim panel so the view can render the
// error state with a retry.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Item) == "" {
		writeError(w, http.StatusBadRequest, "item is required")
		return
	}

	panel, err := h.mirror.Redeem(r.Context(), req.Item)
	if err != nil {
		if panel.Status == "" {
			writeErr(w, err)
			return
		}
		writeJSON(w, statusOf(err), panel)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (h *RedemptionHandler) Panel(w http.ResponseWriter, r *http.Request) {
	panel, err := h.mirror.RedeemPanel()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (h *RedemptionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.mirror.ResetRedeem()
	w.WriteHeader(http.StatusNoContent)
}

type decisionRequest struct {
	GoodieID string `json:"goodie_id"`
}

func (h *RedemptionHandler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	key := redemption.Key{TransactionID: r.PathValue("id"), GoodieID: req.GoodieID}

	var err error
	action := "rejected"
	if approve {
		action = "approved"
		err = h.mirror.Approve(r.Context(), key)
	} else {
		err = h.mirror.Reject(r.Context(), key)
	}
	if err != nil {
		h.logger.Error("decide redemption", "transaction_id", key.TransactionID, "action", action, "error", err)
		writeErr(w, err)
		return
	}
	h.logger.Info("redemption decided", "transaction_id", key.TransactionID, "action", action, "by", viewer(r).Email)
	writeJSON(w, http.StatusOK, map[string]string{"status": action})
}

func (h *RedemptionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *RedemptionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}
