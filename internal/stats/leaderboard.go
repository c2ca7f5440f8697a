package stats

import (
	"cmp"
	"slices"

	"github.com/mpower/youthopia/internal/model"
)

// Leaderboard ranks students by points, highest first, breaking ties by
// name. Tied balances share a rank and the next rank skips accordingly.
// limit <= 0 returns every student.
func Leaderboard(users []model.User, limit int) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i := range users {
		u := &users[i]
		if !u.IsStudent() {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			ID:        u.Key(),
			Name:      u.Name,
			Institute: u.Institute,
			Points:    u.Points,
		})
	}
	slices.SortStableFunc(entries, func(a, b model.LeaderboardEntry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Standing returns key's entry in the full ranking, if the user is a
// ranked student.
func Standing(users []model.User, key string) (model.LeaderboardEntry, bool) {
	for _, e := range Leaderboard(users, 0) {
		if e.ID == key {
			return e, true
		}
	}
	return model.LeaderboardEntry{}, false
}
