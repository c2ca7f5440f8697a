package normalize

import (
	"sort"

	"github.com/mpower/youthopia/internal/model"
)

const (
	unknownUser = "Unknown User"
	unknownItem = "Unknown Item"
)

type goodieRecord struct {
	MongoID      string `mapstructure:"_id"`
	ID           string `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	Points       int    `mapstructure:"points"`
	Images       any    `mapstructure:"images"`
	Image        string `mapstructure:"image"`
	Transactions any    `mapstructure:"transactions"`
	Approved     any    `mapstructure:"approved"`
	Rejected     any    `mapstructure:"rejected"`
}

type redemptionRecord struct {
	MongoID   string `mapstructure:"_id"`
	User      any    `mapstructure:"user"`
	Points    int    `mapstructure:"points"`
	Status    string `mapstructure:"status"`
	CreatedAt string `mapstructure:"createdAt"`
}

type userRef struct {
	Name    string `mapstructure:"name"`
	Yid     string `mapstructure:"Yid"`
	ID      string `mapstructure:"id"`
	MongoID string `mapstructure:"_id"`
}

// Redemptions maps the /redeem catalog into catalog items and the flat list
// of redemption requests nested under each goodie.
func Redemptions(raw []map[string]any) ([]model.RedemptionItem, []model.RedemptionRequest) {
	items := make([]model.RedemptionItem, 0, len(raw))
	var requests []model.RedemptionRequest

	for _, r := range raw {
		var g goodieRecord
		_ = decode(r, &g)
		goodieID := firstNonEmpty(g.MongoID, g.ID)
		if goodieID == "" {
			continue
		}
		name := firstNonEmpty(g.Name, unknownItem)
		items = append(items, model.RedemptionItem{
			ID:    goodieID,
			Name:  name,
			Cost:  abs(g.Points),
			Image: firstNonEmpty(firstString(g.Images), g.Image),
		})

		requests = appendRequests(requests, g.Transactions, goodieID, name, model.RedemptionPending)
		requests = appendRequests(requests, g.Approved, goodieID, name, model.RedemptionApproved)
		requests = appendRequests(requests, g.Rejected, goodieID, name, model.RedemptionRejected)
	}
	if requests == nil {
		requests = []model.RedemptionRequest{}
	}
	return items, requests
}

func appendRequests(dst []model.RedemptionRequest, raw any, goodieID, item string, status model.RedemptionStatus) []model.RedemptionRequest {
	for _, v := range entries(raw) {
		if _, ok := v.(map[string]any); !ok {
			continue
		}
		var rec redemptionRecord
		_ = decode(v, &rec)
		if rec.MongoID == "" {
			continue
		}

		req := model.RedemptionRequest{
			ID:       rec.MongoID,
			User:     unknownUser,
			GoodieID: goodieID,
			Item:     item,
			Cost:     abs(rec.Points),
			Status:   status,
			Time:     parseTime(rec.CreatedAt),
		}
		switch u := rec.User.(type) {
		case string:
			req.UserID = u
		case map[string]any:
			var ref userRef
			_ = decode(u, &ref)
			req.User = firstNonEmpty(ref.Name, unknownUser)
			req.UserID = firstNonEmpty(ref.Yid, ref.ID, ref.MongoID)
		}
		if rec.Status == string(model.RedemptionRejected) {
			req.Status = model.RedemptionRejected
		}
		dst = append(dst, req)
	}
	return dst
}

// entries returns the values of a keyed object in key order, or the
// elements of an array.
func entries(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(v))
		for _, k := range keys {
			out = append(out, v[k])
		}
		return out
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
