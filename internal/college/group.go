package college

import (
	"regexp"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"

	"github.com/mpower/youthopia/internal/model"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	folder     = cases.Fold()
)

// Group is one college and the students counted under it.
type Group struct {
	Key      string       `json:"key"`
	Slug     string       `json:"slug"`
	Name     string       `json:"name"`
	Count    int          `json:"count"`
	Students []model.User `json:"students,omitempty"`
}

// Classify returns the group key and display name for an institute, and
// false when the rules exclude it.
func (r Rules) Classify(institute string) (key, display string, ok bool) {
	raw := strings.TrimSpace(institute)
	if raw == "" {
		raw = unknownInstitute
	}
	lower := strings.ToLower(unidecode.Unidecode(raw))

	for _, kw := range r.Excluded {
		if strings.Contains(lower, kw) {
			return "", "", false
		}
	}

	for _, g := range r.Groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.ID, g.Label, true
			}
		}
	}

	clean := whitespace.ReplaceAllString(nonWord.ReplaceAllString(lower, " "), " ")
	var core []string
	for _, w := range strings.Split(clean, " ") {
		if len(w) <= 2 || slices.Contains(r.Ignored, w) {
			continue
		}
		core = append(core, w)
	}
	if len(core) == 0 {
		return OtherKey, raw, true
	}
	return strings.Join(core, "_"), raw, true
}

// Options narrow a distribution.
type Options struct {
	// EventID keeps only students registered for the event.
	EventID string
	// Search keeps groups whose name contains it, ignoring case.
	Search string
	// Detail includes the students of each group.
	Detail bool
}

// Distribute groups the students among users. Groups are ordered by size,
// largest first; ties keep first-seen order. The display name of a
// core-word group is the first raw name seen for it.
func (r Rules) Distribute(users []model.User, opts Options) []Group {
	index := make(map[string]int)
	var groups []Group

	for i := range users {
		u := &users[i]
		if !u.IsStudent() {
			continue
		}
		if opts.EventID != "" && !u.HasRegistered(opts.EventID) {
			continue
		}
		key, display, ok := r.Classify(u.Institute)
		if !ok {
			continue
		}

		gi, seen := index[key]
		if !seen {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, Group{Key: key, Slug: slug.Make(display), Name: display})
		}
		groups[gi].Count++
		if opts.Detail {
			groups[gi].Students = append(groups[gi].Students, *u)
		}
	}

	slices.SortStableFunc(groups, func(a, b Group) int { return b.Count - a.Count })

	if opts.Search != "" {
		needle := folder.String(opts.Search)
		filtered := groups[:0]
		for _, g := range groups {
			if strings.Contains(folder.String(g.Name), needle) {
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

// EventBreakdown is one event's participants by college.
type EventBreakdown struct {
	EventID  string  `json:"event_id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Total    int     `json:"total_participants"`
	Colleges []Group `json:"colleges"`
}

// EventDistribution breaks every event down by college using EventRules,
// busiest event first. search filters events by title, ignoring case.
func EventDistribution(users []model.User, events []model.Event, search string) []EventBreakdown {
	needle := folder.String(search)
	out := make([]EventBreakdown, 0, len(events))
	for _, e := range events {
		colleges := EventRules.Distribute(users, Options{EventID: e.ID})
		total := 0
		for _, c := range colleges {
			total += c.Count
		}
		out = append(out, EventBreakdown{
			EventID:  e.ID,
			Title:    e.Title,
			Category: e.Category,
			Total:    total,
			Colleges: colleges,
		})
	}
	slices.SortStableFunc(out, func(a, b EventBreakdown) int { return b.Total - a.Total })

	if needle == "" {
		return out
	}
	filtered := out[:0]
	for _, b := range out {
		if strings.Contains(folder.String(b.Title), needle) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
