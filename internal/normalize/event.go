package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mpower/youthopia/internal/model"
)

const (
	defaultCategory = "General"
	unscheduled     = "TBD"
)

type eventRecord struct {
	MongoID     string `mapstructure:"_id"`
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Location    string `mapstructure:"location"`
	Loc         string `mapstructure:"loc"`
	Date        string `mapstructure:"date"`
	Time        string `mapstructure:"time"`
	Schedule    struct {
		Start string `mapstructure:"start"`
	} `mapstructure:"schedule"`
	Category     string   `mapstructure:"category"`
	Points       int      `mapstructure:"points"`
	Rules        []string `mapstructure:"rules"`
	Prizes       any      `mapstructure:"prizes"`
	Images       any      `mapstructure:"images"`
	Image        string   `mapstructure:"image"`
	IsTeamEvent  bool     `mapstructure:"isTeamEvent"`
	MinMembers   int      `mapstructure:"minMembers"`
	MaxMembers   int      `mapstructure:"maxMembers"`
	Registered   any      `mapstructure:"registered"`
	Completed    any      `mapstructure:"completed"`
	Participants any      `mapstructure:"participants"`
	Teams        any      `mapstructure:"teams"`
}

// Event maps a raw event record. ok is false when the record carries no id.
func Event(raw map[string]any) (model.Event, bool) {
	var rec eventRecord
	_ = decode(raw, &rec)

	date, clock := rec.Date, rec.Time
	if start := rec.Schedule.Start; start != "" {
		d, t, _ := strings.Cut(start, "T")
		if date == "" {
			date = d
		}
		if clock == "" && len(t) >= 5 {
			clock = t[:5]
		}
	}
	if date == "" {
		date = unscheduled
	}
	if clock == "" {
		clock = unscheduled
	}

	e := model.Event{
		ID:            firstNonEmpty(rec.MongoID, rec.ID),
		Title:         firstNonEmpty(rec.Name, rec.Title),
		Description:   rec.Description,
		Location:      firstNonEmpty(rec.Location, rec.Loc),
		Date:          date,
		Time:          clock,
		Category:      firstNonEmpty(rec.Category, defaultCategory),
		Points:        rec.Points,
		Rules:         rec.Rules,
		Prizes:        prizes(rec.Prizes),
		Image:         firstNonEmpty(firstString(rec.Images), rec.Image),
		IsTeamEvent:   rec.IsTeamEvent,
		MinMembers:    rec.MinMembers,
		MaxMembers:    rec.MaxMembers,
		Registered:    EventMembers(rec.Registered, rec.Participants, rec.Teams),
		Completed:     IDs(rec.Completed),
		RawRegistered: Registrations(rec.Registered),
	}
	return e, e.ID != ""
}

// Events maps a list of raw event records, dropping records without an id.
func Events(raw []map[string]any) []model.Event {
	out := make([]model.Event, 0, len(raw))
	for _, r := range raw {
		if e, ok := Event(r); ok {
			out = append(out, e)
		}
	}
	return out
}

// prizes flattens a prize object ({"first": "500"}) or list into strings.
func prizes(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, p := range v {
			out = append(out, fmt.Sprint(p))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(v))
		for _, k := range keys {
			out = append(out, fmt.Sprintf("%s: %v", k, v[k]))
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

func firstString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
