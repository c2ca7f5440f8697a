// Package stats computes the dashboard figures shown to staff.
package stats

import (
	"math"
	"slices"
	"strings"

	"github.com/mpower/youthopia/internal/model"
)

type Overview struct {
	TotalStudents      int `json:"total_students"`
	TotalEvents        int `json:"total_events"`
	TotalRegistrations int `json:"total_registrations"`
	TotalPoints        int `json:"total_points"`
	EngagementRate     int `json:"engagement_rate"`
}

// ComputeOverview counts registrations from the events' member lists and
// points from the students' balances.
func ComputeOverview(users []model.User, events []model.Event) Overview {
	o := Overview{TotalEvents: len(events)}
	for _, e := range events {
		o.TotalRegistrations += len(e.Registered)
	}

	engaged := 0
	for i := range users {
		u := &users[i]
		if !u.IsStudent() {
			continue
		}
		o.TotalStudents++
		o.TotalPoints += u.Points
		if len(u.Registered) > 0 || registeredAnywhere(u, events) {
			engaged++
		}
	}
	o.EngagementRate = percent(engaged, o.TotalStudents)
	return o
}

func registeredAnywhere(u *model.User, events []model.Event) bool {
	for i := range events {
		if events[i].IsRegistered(u.Yid) || events[i].IsRegistered(u.ID) {
			return true
		}
	}
	return false
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}

// Emojis are the feedback reactions, most positive first.
var Emojis = []string{"🔥", "🤩", "😀", "🙂", "😐"}

const (
	neutralEmoji = "😐"
	maxTags      = 10
	maxRecent    = 5
)

var defaultTags = []string{"General", "Events", "Organization"}

type Sentiment struct {
	Total    int                  `json:"total"`
	Counts   map[string]int       `json:"counts"`
	Positive int                  `json:"positive"`
	Label    string               `json:"label"`
	TopEmoji string               `json:"top_emoji"`
	Tags     []string             `json:"tags"`
	Recent   []model.FeedbackItem `json:"recent"`
}

// Label names a positive percentage.
func Label(positive int) string {
	switch {
	case positive >= 80:
		return "Excellent"
	case positive >= 60:
		return "Good"
	case positive < 40:
		return "Needs Attention"
	default:
		return "Neutral"
	}
}

// ComputeSentiment summarises event feedback. The top emoji is the most
// frequent one; on a tie the one first given later wins.
func ComputeSentiment(items []model.FeedbackItem) Sentiment {
	s := Sentiment{
		Total:    len(items),
		Counts:   make(map[string]int),
		TopEmoji: neutralEmoji,
		Tags:     tags(items),
		Recent:   recent(items),
	}
	if len(items) == 0 {
		s.Label = "Neutral"
		return s
	}

	var order []string
	positive := 0
	for _, f := range items {
		if _, ok := s.Counts[f.Emoji]; !ok {
			order = append(order, f.Emoji)
		}
		s.Counts[f.Emoji]++
		if slices.Contains(Emojis[:4], f.Emoji) {
			positive++
		}
	}
	for _, e := range order {
		if s.Counts[s.TopEmoji] <= s.Counts[e] {
			s.TopEmoji = e
		}
	}

	s.Positive = percent(positive, len(items))
	s.Label = Label(s.Positive)
	return s
}

func tags(items []model.FeedbackItem) []string {
	var out []string
	for _, f := range items {
		word, _, _ := strings.Cut(f.EventName, " ")
		if slices.Contains(out, word) {
			continue
		}
		out = append(out, word)
		if len(out) == maxTags {
			break
		}
	}
	if len(out) == 0 {
		return slices.Clone(defaultTags)
	}
	return out
}

func recent(items []model.FeedbackItem) []model.FeedbackItem {
	out := make([]model.FeedbackItem, 0, maxRecent)
	for i := len(items) - 1; i >= 0 && len(out) < maxRecent; i-- {
		out = append(out, items[i])
	}
	return out
}

// CategoryCount is the spin survey tally for one question set.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Prizes   int    `json:"prizes"`
}

type SpinSummary struct {
	Total      int             `json:"total"`
	Prizes     int             `json:"prizes"`
	Categories []CategoryCount `json:"categories"`
}

// SummarizeSpins tallies spin feedback per category, busiest first.
func SummarizeSpins(responses []model.SpinFeedbackResponse) SpinSummary {
	sum := SpinSummary{Total: len(responses), Categories: []CategoryCount{}}
	index := make(map[string]int)
	for _, r := range responses {
		sum.Prizes += r.PrizeAmount
		i, ok := index[r.Category]
		if !ok {
			i = len(sum.Categories)
			index[r.Category] = i
			sum.Categories = append(sum.Categories, CategoryCount{Category: r.Category})
		}
		sum.Categories[i].Count++
		sum.Categories[i].Prizes += r.PrizeAmount
	}
	slices.SortStableFunc(sum.Categories, func(a, b CategoryCount) int { return b.Count - a.Count })
	return sum
}

// Dashboard bundles every figure for the stats endpoint.
type Dashboard struct {
	Overview  Overview    `json:"overview"`
	Sentiment Sentiment   `json:"sentiment"`
	Spins     SpinSummary `json:"spins"`
}

func Compute(users []model.User, events []model.Event, feedback []model.FeedbackItem, spins []model.SpinFeedbackResponse) Dashboard {
	return Dashboard{
		Overview:  ComputeOverview(users, events),
		Sentiment: ComputeSentiment(feedback),
		Spins:     SummarizeSpins(spins),
	}
}
