// Package admin implements the per-event master control: passcode gated
// rosters and bonus grants.
package admin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mpower/youthopia/internal/model"
)

const (
	StatusCompleted  = "Completed"
	StatusRegistered = "Registered"
)

// Student is one roster row. ID is the student's email.
type Student struct {
	ID       string `json:"id"`
	Yid      string `json:"yid"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	School   string `json:"school"`
	Details  string `json:"details"`
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
}

// Roster resolves an event's registered identifiers to users, one row per
// email, in registration order. Identifiers that match no user, or a user
// without an email, are dropped.
func Roster(e *model.Event, users []model.User, feedback []model.FeedbackItem) []Student {
	out := []Student{}
	if e == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, regID := range e.Registered {
		u := findByAny(users, regID)
		if u == nil || u.Email == "" || seen[u.Email] {
			continue
		}
		seen[u.Email] = true

		s := Student{
			ID:      u.Email,
			Yid:     u.Yid,
			Name:    u.Name,
			Phone:   orNA(u.Phone),
			School:  orNA(u.Institute),
			Details: fmt.Sprintf("%s - %s", u.Class, u.Stream),
			Status:  StatusRegistered,
		}
		if completed(e, u) {
			s.Status = StatusCompleted
		}
		for _, f := range feedback {
			if f.EventID == e.ID && f.UserEmail == u.Email {
				s.Feedback = f.Emoji
				break
			}
		}
		out = append(out, s)
	}
	return out
}

func findByAny(users []model.User, id string) *model.User {
	if id == "" {
		return nil
	}
	for i := range users {
		u := &users[i]
		if u.Yid == id || u.ID == id || u.Email == id {
			return u
		}
	}
	return nil
}

func findByEmail(users []model.User, email string) *model.User {
	for i := range users {
		if users[i].Email != "" && users[i].Email == email {
			return &users[i]
		}
	}
	return nil
}

func completed(e *model.Event, u *model.User) bool {
	return slices.Contains(u.Completed, e.ID) ||
		e.IsCompleted(u.Yid) || e.IsCompleted(u.ID) || e.IsCompleted(u.Email)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// VisibleEvents returns the events viewer may manage matching query
// against title or category. An admin assigned to one event (by title)
// sees only that event.
func VisibleEvents(viewer *model.User, events []model.Event, query string) []model.Event {
	q := strings.ToLower(query)
	out := []model.Event{}
	for _, e := range events {
		if viewer != nil && viewer.Role == model.RoleAdmin &&
			viewer.EventAssigned != "" && viewer.EventAssigned != "all" &&
			e.Title != viewer.EventAssigned {
			continue
		}
		if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Category), q) {
			out = append(out, e)
		}
	}
	return out
}
