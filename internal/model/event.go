package model

// CategoryEngagement marks events whose registrations unlock spins.
const CategoryEngagement = "Engagement"

type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Category    string   `json:"category"`
	Points      int      `json:"points"`
	Rules       []string `json:"rules,omitempty"`
	Prizes      []string `json:"prizes,omitempty"`
	Image       string   `json:"image,omitempty"`
	IsTeamEvent bool     `json:"is_team_event"`
	MinMembers  int      `json:"min_members,omitempty"`
	MaxMembers  int      `json:"max_members,omitempty"`
	Registered  []string `json:"registered"`
	Completed   []string `json:"completed"`

	// RawRegistered keeps the server's registration map (keyed by leader
	// Yid) so team membership can be recovered when granting bonuses.
	RawRegistered map[string]Registration `json:"raw_registered,omitempty"`
}

// Registration is one entry of an event's keyed registration map.
type Registration struct {
	Yid  string       `json:"yid"`
	Name string       `json:"name,omitempty"`
	Team []TeamMember `json:"team,omitempty"`
}

type TeamMember struct {
	Yid  string `json:"yid"`
	Name string `json:"name,omitempty"`
}

func (e *Event) IsRegistered(id string) bool {
	return contains(e.Registered, id)
}

func (e *Event) IsCompleted(id string) bool {
	return contains(e.Completed, id)
}

// TeamOf returns the team entry containing yid, either as the leader key or
// as a member. The zero Registration is returned when yid is not on a team.
func (e *Event) TeamOf(yid string) Registration {
	if reg, ok := e.RawRegistered[yid]; ok {
		return reg
	}
	for _, reg := range e.RawRegistered {
		for _, m := range reg.Team {
			if m.Yid == yid {
				return reg
			}
		}
	}
	return Registration{}
}

func contains(list []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
