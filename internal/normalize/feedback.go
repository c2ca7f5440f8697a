package normalize

import (
	"time"

	"github.com/mpower/youthopia/internal/model"
)

type eventFeedbackRecord struct {
	MongoID   string `mapstructure:"_id"`
	ID        string `mapstructure:"id"`
	EventID   string `mapstructure:"eventId"`
	EventName string `mapstructure:"eventName"`
	UserEmail string `mapstructure:"userEmail"`
	UserName  string `mapstructure:"userName"`
	Emoji     string `mapstructure:"emoji"`
	Timestamp string `mapstructure:"timestamp"`
	CreatedAt string `mapstructure:"createdAt"`
}

type spinFeedbackRecord struct {
	MongoID     string         `mapstructure:"_id"`
	ID          string         `mapstructure:"id"`
	UserEmail   string         `mapstructure:"userEmail"`
	UserName    string         `mapstructure:"userName"`
	Yid         string         `mapstructure:"Yid"`
	Timestamp   string         `mapstructure:"timestamp"`
	CreatedAt   string         `mapstructure:"createdAt"`
	PrizeAmount int            `mapstructure:"prizeAmount"`
	Category    string         `mapstructure:"category"`
	Responses   map[string]any `mapstructure:"responses"`
}

func EventFeedback(raw []map[string]any) []model.FeedbackItem {
	out := make([]model.FeedbackItem, 0, len(raw))
	for _, r := range raw {
		var rec eventFeedbackRecord
		_ = decode(r, &rec)
		if rec.EventID == "" || rec.Emoji == "" {
			continue
		}
		out = append(out, model.FeedbackItem{
			ID:        firstNonEmpty(rec.MongoID, rec.ID),
			EventID:   rec.EventID,
			EventName: rec.EventName,
			UserEmail: rec.UserEmail,
			UserName:  rec.UserName,
			Emoji:     rec.Emoji,
			Timestamp: parseTime(firstNonEmpty(rec.Timestamp, rec.CreatedAt)),
		})
	}
	return out
}

func SpinFeedback(raw []map[string]any) []model.SpinFeedbackResponse {
	out := make([]model.SpinFeedbackResponse, 0, len(raw))
	for _, r := range raw {
		var rec spinFeedbackRecord
		_ = decode(r, &rec)
		out = append(out, model.SpinFeedbackResponse{
			ID:          firstNonEmpty(rec.MongoID, rec.ID),
			UserEmail:   rec.UserEmail,
			UserName:    rec.UserName,
			UserYid:     rec.Yid,
			Timestamp:   parseTime(firstNonEmpty(rec.Timestamp, rec.CreatedAt)),
			PrizeAmount: rec.PrizeAmount,
			Category:    rec.Category,
			Responses:   rec.Responses,
		})
	}
	return out
}

// parseTime accepts RFC 3339 timestamps with or without fractional seconds.
// Unparseable input yields the zero time so repeated polls stay identical.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
