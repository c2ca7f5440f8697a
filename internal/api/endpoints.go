package api

import "net/url"

// Paths of the festival API. User-scoped paths take the user's Yid.

func UserDataPath(yid string) string   { return "/user/data/" + url.PathEscape(yid) }
func UserPointsPath(yid string) string { return "/user/points/" + url.PathEscape(yid) }
func UserSpinPath(yid string) string   { return "/user/spin/" + url.PathEscape(yid) }
func UserRedeemPath(yid string) string { return "/user/redeem/" + url.PathEscape(yid) }
func UserPath(id string) string        { return "/user/" + url.PathEscape(id) }

func EventPath(id string) string            { return "/event/" + url.PathEscape(id) }
func EventParticipatePath(id string) string { return EventPath(id) + "/participate" }
func EventCompletePath(id string) string    { return EventPath(id) + "/complete" }

func RedeemPath(id string) string        { return "/redeem/" + url.PathEscape(id) }
func RedeemApprovePath(id string) string { return RedeemPath(id) + "/approve" }

const (
	PathUsers         = "/user"
	PathRegister      = "/user/register"
	PathLogin         = "/user/login"
	PathLeaderboard   = "/leaderboard"
	PathEvents        = "/event"
	PathTransaction   = "/transaction"
	PathRedeem        = "/redeem"
	PathEventFeedback = "/feedback/event"
	PathSpinFeedback  = "/feedback/spin"
)

// Request bodies.

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Institute string `json:"institute"`
	Mobile    int64  `json:"mobile"`
	Class     string `json:"class"`
	Stream    string `json:"stream"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Mobile   int64  `json:"mobile,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type MemberRef struct {
	Yid  string `json:"Yid"`
	Name string `json:"name,omitempty"`
}

type ParticipateRequest struct {
	Yid  string      `json:"Yid"`
	Name string      `json:"name"`
	ID   string      `json:"_id"`
	Team []MemberRef `json:"team,omitempty"`
}

// CompleteRequest.Team is the member list of the student's team, or an empty
// object when the student registered alone.
type CompleteRequest struct {
	Yid  string `json:"Yid"`
	Name string `json:"name"`
	ID   string `json:"_id"`
	Team any    `json:"team"`
}

type SpinRequest struct {
	Spins  int `json:"spins"`
	Points int `json:"points"`
}

type RedeemRequest struct {
	Item   string `json:"item"`
	Points int    `json:"points"`
}

type TransactionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TransactionRequest struct {
	Event  string          `json:"event"`
	User   TransactionUser `json:"user"`
	Points int             `json:"points"`
	Admin  string          `json:"admin"`
}

type ApproveRequest struct {
	TransactionID string `json:"transactionId"`
}

type RedemptionUpdateRequest struct {
	Status   string `json:"status"`
	GoodieID string `json:"goodieId"`
}

type Schedule struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EventRequest struct {
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Location         string         `json:"location"`
	ParticipantCount *int           `json:"participant_count,omitempty"`
	Completed        *int           `json:"completed,omitempty"`
	Points           int            `json:"points"`
	Prizes           map[string]any `json:"prizes,omitempty"`
	Category         string         `json:"category,omitempty"`
	Schedule         Schedule       `json:"schedule"`
	Images           string         `json:"images,omitempty"`
}

type EventFeedbackRequest struct {
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	Emoji     string `json:"emoji"`
	Timestamp string `json:"timestamp"`
}

type SpinFeedbackRequest struct {
	ID          string         `json:"id"`
	UserEmail   string         `json:"userEmail"`
	UserName    string         `json:"userName"`
	Yid         string         `json:"Yid,omitempty"`
	Timestamp   string         `json:"timestamp"`
	PrizeAmount int            `json:"prizeAmount"`
	Category    string         `json:"category"`
	Responses   map[string]any `json:"responses"`
}
