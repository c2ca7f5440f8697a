package model

import "time"

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "Pending"
	RedemptionApproved RedemptionStatus = "Approved"
	RedemptionRejected RedemptionStatus = "Rejected"
)

// RedemptionItem is a catalog entry a student can claim with points.
type RedemptionItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Image string `json:"image,omitempty"`
}

// RedemptionRequest is addressed by the pair (ID, GoodieID): ID is the
// transaction id nested under the goodie.
type RedemptionRequest struct {
	ID       string           `json:"id"`
	User     string           `json:"user"`
	UserID   string           `json:"user_id"`
	GoodieID string           `json:"goodie_id"`
	Item     string           `json:"item"`
	Cost     int              `json:"cost"`
	Status   RedemptionStatus `json:"status"`
	Time     time.Time        `json:"time"`
}
