package spin

import (
	"strings"

	"github.com/mpower/youthopia/internal/model"
)

// DefaultThreshold is the number of engagement registrations per spin.
const DefaultThreshold = 4

// EligibleSpins returns how many spins count engagement registrations earn.
func EligibleSpins(count, threshold int) int {
	if threshold <= 0 || count <= 0 {
		return 0
	}
	return count / threshold
}

// Progress describes advancement towards the next spin.
type Progress struct {
	Registrations int `json:"registrations"`
	Earned        int `json:"earned"`
	Completed     int `json:"completed"`
	Threshold     int `json:"threshold"`
	Remaining     int `json:"remaining"`
}

func ProgressFor(count, threshold int) Progress {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	count = max(count, 0)
	done := count % threshold
	return Progress{
		Registrations: count,
		Earned:        EligibleSpins(count, threshold),
		Completed:     done,
		Threshold:     threshold,
		Remaining:     threshold - done,
	}
}

// EngagementRegistrations counts the engagement events u is registered for,
// per either the user's own list or the event's member list.
func EngagementRegistrations(u *model.User, events []model.Event) int {
	if u == nil {
		return 0
	}
	n := 0
	for i := range events {
		e := &events[i]
		if !strings.EqualFold(e.Category, model.CategoryEngagement) {
			continue
		}
		if u.HasRegistered(e.ID) || e.IsRegistered(u.Yid) || e.IsRegistered(u.ID) {
			n++
		}
	}
	return n
}
