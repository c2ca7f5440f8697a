// Package redemption implements the student claim flow and the staff
// approval queues over the polled redemption collection.
package redemption

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mpower/youthopia/internal/model"
)

// DefaultItems is the goodie catalog used until the server supplies one.
var DefaultItems = []model.RedemptionItem{
	{ID: "693e7b4c47c3a159b04db138", Name: "Diary", Cost: 750},
	{ID: "693ea07fbe44c513834f77b5", Name: "Sipper", Cost: 550},
	{ID: "693ea20ca1825e0de8d94c2f", Name: "Keychain", Cost: 350},
	{ID: "693ea2894e50bc7eb4baf4f4", Name: "Badge", Cost: 150},
}

// Catalog returns the server catalog, or the defaults when it is empty,
// most expensive first.
func Catalog(items []model.RedemptionItem) []model.RedemptionItem {
	if len(items) == 0 {
		return byCost(DefaultItems)
	}
	return byCost(items)
}

// FindItem looks an item up by id or case-insensitive name.
func FindItem(items []model.RedemptionItem, key string) (model.RedemptionItem, bool) {
	for _, it := range items {
		if it.ID == key || strings.EqualFold(it.Name, key) {
			return it, true
		}
	}
	return model.RedemptionItem{}, false
}

// Pending is the staff approval queue, oldest first.
func Pending(reqs []model.RedemptionRequest) []model.RedemptionRequest {
	out := filter(reqs, func(r model.RedemptionRequest) bool { return r.Status == model.RedemptionPending })
	slices.SortStableFunc(out, func(a, b model.RedemptionRequest) int { return a.Time.Compare(b.Time) })
	return out
}

// History is every processed request, newest first.
func History(reqs []model.RedemptionRequest) []model.RedemptionRequest {
	out := filter(reqs, func(r model.RedemptionRequest) bool { return r.Status != model.RedemptionPending })
	slices.SortStableFunc(out, func(a, b model.RedemptionRequest) int { return b.Time.Compare(a.Time) })
	return out
}

// ByStatus filters by status; an empty status keeps everything.
func ByStatus(reqs []model.RedemptionRequest, status model.RedemptionStatus) []model.RedemptionRequest {
	if status == "" {
		return slices.Clone(reqs)
	}
	return filter(reqs, func(r model.RedemptionRequest) bool { return r.Status == status })
}

// ForUser is a student's own redemption history, newest first.
func ForUser(reqs []model.RedemptionRequest, u *model.User) []model.RedemptionRequest {
	if u == nil {
		return []model.RedemptionRequest{}
	}
	out := filter(reqs, func(r model.RedemptionRequest) bool {
		return r.UserID != "" && (r.UserID == u.Yid || r.UserID == u.ID || strings.EqualFold(r.UserID, u.Email))
	})
	slices.SortStableFunc(out, func(a, b model.RedemptionRequest) int { return b.Time.Compare(a.Time) })
	return out
}

// Summary counts requests per status.
type Summary struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Points   int `json:"points_redeemed"`
}

func Summarize(reqs []model.RedemptionRequest) Summary {
	var s Summary
	for _, r := range reqs {
		switch r.Status {
		case model.RedemptionPending:
			s.Pending++
		case model.RedemptionApproved:
			s.Approved++
			s.Points += r.Cost
		case model.RedemptionRejected:
			s.Rejected++
		}
	}
	return s
}

// Without returns reqs minus the request addressed by key.
func Without(reqs []model.RedemptionRequest, key Key) []model.RedemptionRequest {
	return filter(reqs, func(r model.RedemptionRequest) bool { return !key.Matches(r) })
}

func filter(reqs []model.RedemptionRequest, keep func(model.RedemptionRequest) bool) []model.RedemptionRequest {
	out := make([]model.RedemptionRequest, 0, len(reqs))
	for _, r := range reqs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Key addresses a redemption: the transaction id alone is not unique
// across goodies.
type Key struct {
	TransactionID string `json:"transaction_id"`
	GoodieID      string `json:"goodie_id"`
}

func (k Key) Matches(r model.RedemptionRequest) bool {
	return r.ID == k.TransactionID && (k.GoodieID == "" || r.GoodieID == k.GoodieID)
}

// Resolve fills in a missing goodie id from the request list.
func (k Key) Resolve(reqs []model.RedemptionRequest) Key {
	if k.GoodieID != "" {
		return k
	}
	for _, r := range reqs {
		if r.ID == k.TransactionID {
			k.GoodieID = r.GoodieID
			return k
		}
	}
	return k
}

func byCost(items []model.RedemptionItem) []model.RedemptionItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.RedemptionItem) int { return cmp.Compare(b.Cost, a.Cost) })
	return out
}
