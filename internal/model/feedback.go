package model

import "time"

type FeedbackItem struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
	Emoji     string    `json:"emoji"`
	Timestamp time.Time `json:"timestamp"`
}

// SpinFeedbackResponse is the survey answered after a spin. Responses maps a
// question id to its answer: a string, a []string, or a map of row to column.
type SpinFeedbackResponse struct {
	ID          string         `json:"id"`
	UserEmail   string         `json:"user_email"`
	UserName    string         `json:"user_name"`
	UserYid     string         `json:"user_yid"`
	Timestamp   time.Time      `json:"timestamp"`
	PrizeAmount int            `json:"prize_amount"`
	Category    string         `json:"category"`
	Responses   map[string]any `json:"responses"`
}
