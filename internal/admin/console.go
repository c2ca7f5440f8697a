package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/puzpuzpuz/xsync"

	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/passcode"
)

var (
	ErrUnauthorized   = errors.New("event not authorized")
	ErrUnknownStudent = errors.New("student not found")
	ErrInFlight       = errors.New("grant already in progress")
)

// Completer marks a student's event as completed on the server, which
// credits the event's bonus.
type Completer interface {
	Complete(ctx context.Context, eventID string, u *model.User, team []model.TeamMember) error
}

// Console holds the master control state shared by all operators.
type Console struct {
	codes      *passcode.Generator
	completer  Completer
	log        *Log
	authorized *xsync.MapOf[string, struct{}]
	inflight   *xsync.MapOf[string, struct{}]
	logger     *slog.Logger
}

func NewConsole(codes *passcode.Generator, completer Completer, log *Log, logger *slog.Logger) *Console {
	return &Console{
		codes:      codes,
		completer:  completer,
		log:        log,
		authorized: xsync.NewMapOf[struct{}](),
		inflight:   xsync.NewMapOf[struct{}](),
		logger:     logger,
	}
}

func (c *Console) Log() *Log {
	return c.log
}

func authKey(operator, eventID string) string {
	return operator + "\x00" + eventID
}

// Authorize unlocks eventID for operator when code is the event's passcode
// or the event id itself.
func (c *Console) Authorize(operator, eventID, code string) bool {
	if !c.codes.Verify(eventID, code) {
		c.log.Add("Failed authorization attempt for Event ID %s", eventID)
		c.logger.Warn("authorization failed", "event_id", eventID, "operator", operator)
		return false
	}
	c.authorized.Store(authKey(operator, eventID), struct{}{})
	c.log.Add("Admin authorized access for Event ID %s", eventID)
	return true
}

func (c *Console) Authorized(operator, eventID string) bool {
	_, ok := c.authorized.Load(authKey(operator, eventID))
	return ok
}

// Revoke forgets every event operator unlocked.
func (c *Console) Revoke(operator string) {
	c.authorized.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, operator+"\x00") {
			c.authorized.Delete(key)
		}
		return true
	})
}

// GrantBonus completes e for the student with email. A student on a team
// is sent with the team's members.
func (c *Console) GrantBonus(ctx context.Context, e *model.Event, users []model.User, email string) error {
	u := findByEmail(users, email)
	if u == nil || e == nil {
		c.log.Add("Error: Could not find user or event details for %s", email)
		return ErrUnknownStudent
	}

	key := e.ID + "\x00" + email
	if _, busy := c.inflight.LoadOrStore(key, struct{}{}); busy {
		return ErrInFlight
	}
	defer c.inflight.Delete(key)

	var team []model.TeamMember
	if u.Yid != "" {
		team = e.TeamOf(u.Yid).Team
	}
	if err := c.completer.Complete(ctx, e.ID, u, team); err != nil {
		c.log.Add("Error: bonus grant failed for %s: %v", email, err)
		return fmt.Errorf("grant bonus: %w", err)
	}

	c.log.Add("Bonus grant request sent for %s (Event %s).", email, e.ID)
	c.logger.Info("bonus granted", "event_id", e.ID, "email", email, "team_size", len(team))
	return nil
}

// GrantResult lists the outcome per student email.
type GrantResult struct {
	Granted []string `json:"granted"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
}

// GrantAll grants every roster student not yet completed, one at a time.
// Students with a grant already running are skipped.
func (c *Console) GrantAll(ctx context.Context, e *model.Event, users []model.User, feedback []model.FeedbackItem) GrantResult {
	res := GrantResult{Granted: []string{}, Skipped: []string{}, Failed: []string{}}
	if e == nil {
		return res
	}
	c.log.Add("Bulk bonus grant initiated for Event %s.", e.ID)

	for _, s := range Roster(e, users, feedback) {
		if s.Status == StatusCompleted {
			res.Skipped = append(res.Skipped, s.ID)
			continue
		}
		if ctx.Err() != nil {
			res.Failed = append(res.Failed, s.ID)
			continue
		}
		switch err := c.GrantBonus(ctx, e, users, s.ID); {
		case err == nil:
			res.Granted = append(res.Granted, s.ID)
		case errors.Is(err, ErrInFlight):
			res.Skipped = append(res.Skipped, s.ID)
		default:
			res.Failed = append(res.Failed, s.ID)
		}
	}

	c.logger.Info("bulk grant finished",
		"event_id", e.ID,
		"granted", len(res.Granted),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
	)
	return res
}

type EventCode struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Code    string `json:"code"`
}

// Passcodes lists each event's passcode and writes them to the log.
func (c *Console) Passcodes(events []model.Event) []EventCode {
	out := make([]EventCode, 0, len(events))
	c.log.Add("=== EVENT PASSCODES ===")
	for _, e := range events {
		code := c.codes.Code(e.ID)
		out = append(out, EventCode{EventID: e.ID, Title: e.Title, Code: code})
		c.log.Add("%s: %s", e.Title, code)
	}
	c.log.Add("=======================")
	return out
}
