package model

// Role values carried on a User.
const (
	RoleStudent   = "student"
	RoleAdmin     = "admin"
	RoleExecutive = "executive"
)

type User struct {
	ID             string        `json:"id"`
	Yid            string        `json:"yid"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Institute      string        `json:"institute"`
	Stream         string        `json:"stream"`
	Class          string        `json:"class"`
	Gender         string        `json:"gender"`
	Age            int           `json:"age"`
	Role           string        `json:"role"`
	Points         int           `json:"points"`
	SpinsAvailable int           `json:"spins_available"`
	SpinsReported  bool          `json:"spins_reported"`
	Registered     []string      `json:"registered"`
	Completed      []string      `json:"completed"`
	EventAssigned  string        `json:"event_assigned,omitempty"`
	Transactions   []Transaction `json:"transactions,omitempty"`
}

// Key returns the identifier the user-scoped endpoints expect.
func (u *User) Key() string {
	if u.Yid != "" {
		return u.Yid
	}
	return u.ID
}

func (u *User) IsStudent() bool {
	return u.Role == "" || u.Role == RoleStudent
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleExecutive
}

// HasRegistered reports whether eventID is in the user's registered list.
func (u *User) HasRegistered(eventID string) bool {
	for _, id := range u.Registered {
		if id == eventID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to another goroutine.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Registered = append([]string(nil), u.Registered...)
	c.Completed = append([]string(nil), u.Completed...)
	c.Transactions = append([]Transaction(nil), u.Transactions...)
	return &c
}

// LeaderboardEntry is one ranked student. Equal balances share a rank.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Institute string `json:"institute"`
	Points    int    `json:"points"`
}
