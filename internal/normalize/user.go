package normalize

import (
	"strings"

	"github.com/mpower/youthopia/internal/model"
)

type userRecord struct {
	MongoID        string `mapstructure:"_id"`
	ID             string `mapstructure:"id"`
	Yid            string `mapstructure:"Yid"`
	Name           string `mapstructure:"name"`
	Email          string `mapstructure:"email"`
	Mobile         string `mapstructure:"mobile"`
	Phone          string `mapstructure:"phone"`
	Institute      string `mapstructure:"institute"`
	Stream         string `mapstructure:"stream"`
	Class          string `mapstructure:"class"`
	Gender         string `mapstructure:"gender"`
	Age            int    `mapstructure:"age"`
	Role           string `mapstructure:"role"`
	Points         int    `mapstructure:"points"`
	SpinsAvailable *int   `mapstructure:"spinsAvailable"`
	Spins          *int   `mapstructure:"spins"`
	Spin           *int   `mapstructure:"spin"`
	Registered     any    `mapstructure:"registered"`
	Completed      any    `mapstructure:"completed"`
	EventAssigned  string `mapstructure:"eventAssigned"`
	Transactions   []any  `mapstructure:"transactions"`
	History        []any  `mapstructure:"history"`
}

type transactionRecord struct {
	MongoID   string `mapstructure:"_id"`
	ID        string `mapstructure:"id"`
	Event     string `mapstructure:"event"`
	Reason    string `mapstructure:"reason"`
	Points    int    `mapstructure:"points"`
	Amount    int    `mapstructure:"amount"`
	Admin     string `mapstructure:"admin"`
	CreatedAt string `mapstructure:"createdAt"`
	Timestamp string `mapstructure:"timestamp"`
}

// User maps a raw user record. ok is false when the record carries no id.
func User(raw map[string]any) (model.User, bool) {
	// Field-level decode errors leave that field zero; the rest still maps.
	var rec userRecord
	_ = decode(raw, &rec)

	u := model.User{
		ID:            firstNonEmpty(rec.MongoID, rec.ID),
		Yid:           rec.Yid,
		Name:          rec.Name,
		Email:         rec.Email,
		Phone:         firstNonEmpty(rec.Mobile, rec.Phone),
		Institute:     rec.Institute,
		Stream:        rec.Stream,
		Class:         rec.Class,
		Gender:        rec.Gender,
		Age:           rec.Age,
		Role:          strings.ToLower(rec.Role),
		Points:        max(rec.Points, 0),
		Registered:    IDs(rec.Registered),
		Completed:     IDs(rec.Completed),
		EventAssigned: rec.EventAssigned,
	}
	if u.Role == "" {
		u.Role = model.RoleStudent
	}

	u.SpinsReported = rec.SpinsAvailable != nil || rec.Spins != nil || rec.Spin != nil
	switch {
	case rec.SpinsAvailable != nil:
		u.SpinsAvailable = *rec.SpinsAvailable
	case rec.Spins != nil:
		u.SpinsAvailable = *rec.Spins
	case rec.Spin != nil:
		u.SpinsAvailable = *rec.Spin
	}
	u.SpinsAvailable = max(u.SpinsAvailable, 0)

	history := rec.Transactions
	if len(history) == 0 {
		history = rec.History
	}
	for _, t := range history {
		var tr transactionRecord
		if _, ok := t.(map[string]any); !ok {
			continue
		}
		_ = decode(t, &tr)
		points := tr.Points
		if points == 0 {
			points = tr.Amount
		}
		u.Transactions = append(u.Transactions, model.Transaction{
			ID:        firstNonEmpty(tr.MongoID, tr.ID),
			Event:     firstNonEmpty(tr.Event, tr.Reason),
			Points:    points,
			Admin:     tr.Admin,
			CreatedAt: parseTime(firstNonEmpty(tr.CreatedAt, tr.Timestamp)),
		})
	}

	return u, u.ID != "" || u.Yid != ""
}

// Users maps a list of raw user records, dropping records without an id.
func Users(raw []map[string]any) []model.User {
	out := make([]model.User, 0, len(raw))
	for _, r := range raw {
		if u, ok := User(r); ok {
			out = append(out, u)
		}
	}
	return out
}

// LeaderboardUsers maps leaderboard rows into partial user records. Rows
// without an email get a placeholder address derived from their id.
func LeaderboardUsers(raw []map[string]any) []model.User {
	out := make([]model.User, 0, len(raw))
	for _, r := range raw {
		var rec userRecord
		_ = decode(r, &rec)
		id := firstNonEmpty(rec.MongoID, rec.ID)
		if id == "" && rec.Yid == "" {
			continue
		}
		email := rec.Email
		if email == "" {
			email = "missing_" + id + "@example.com"
		}
		out = append(out, model.User{
			ID:     id,
			Yid:    rec.Yid,
			Name:   rec.Name,
			Email:  email,
			Gender: "Other",
			Role:   model.RoleStudent,
			Points: max(rec.Points, 0),
		})
	}
	return out
}

// Matches reports whether key identifies u by Yid, id or email.
func Matches(u *model.User, key string) bool {
	if u == nil || key == "" {
		return false
	}
	return u.Yid == key || u.ID == key || (u.Email != "" && strings.EqualFold(u.Email, key))
}

// FindUser returns the first user identified by key, or nil.
func FindUser(users []model.User, key string) *model.User {
	for i := range users {
		if Matches(&users[i], key) {
			return &users[i]
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
