package mirror

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
	"github.com/mpower/youthopia/internal/points"
	"github.com/mpower/youthopia/internal/websocket"
)

var (
	ErrUnknownEvent = errors.New("event not found")
	ErrUnknownUser  = errors.New("user not found")
)

// Login authenticates and makes the result the current session.
func (m *Mirror) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := m.ctl.Auth.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = u.Clone()
	m.mu.Unlock()

	if err := m.sessions.Save(u); err != nil {
		m.logger.Warn("persist session", "error", err)
	}
	m.logger.Info("signed in", "user", u.Key(), "role", u.Role)
	m.notify(websocket.EntitySession, "login", u.Key(), map[string]any{"role": u.Role})
	m.refreshAfter(ctx, "login")
	return m.Session(), nil
}

func (m *Mirror) Logout() error {
	m.mu.Lock()
	u := m.session
	m.session = nil
	m.mu.Unlock()

	if u != nil {
		m.flow.Reset(u.Key())
		m.machinesMu.Lock()
		delete(m.machines, u.Key())
		m.machinesMu.Unlock()
	}
	if err := m.sessions.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.notify(websocket.EntitySession, "logout", "", nil)
	return nil
}

func (m *Mirror) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := m.ctl.Auth.Register(ctx, req); err != nil {
		return err
	}
	m.refreshAfter(ctx, "register")
	return nil
}

func (m *Mirror) findEvent(id string) (*model.Event, error) {
	for _, e := range m.Snapshot().Events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, ErrUnknownEvent
}

// Event returns the event with id from the last refresh.
func (m *Mirror) Event(id string) (*model.Event, error) {
	return m.findEvent(id)
}

// Join registers the signed-in user for an event, with teammates for a
// team event.
func (m *Mirror) Join(ctx context.Context, eventID string, team []model.TeamMember) error {
	u, err := m.requireSession()
	if err != nil {
		return err
	}
	if err := m.ctl.Events.Join(ctx, eventID, u, team); err != nil {
		return err
	}
	m.notify(websocket.EntityEvent, "joined", eventID, map[string]any{"user": u.Key()})
	m.refreshAfter(ctx, "join")
	return nil
}

// AddFeedback records the signed-in user's emoji reaction to an event.
func (m *Mirror) AddFeedback(ctx context.Context, eventID, emoji string) (*model.FeedbackItem, error) {
	u, err := m.requireSession()
	if err != nil {
		return nil, err
	}
	e, err := m.findEvent(eventID)
	if err != nil {
		return nil, err
	}

	f := &model.FeedbackItem{
		ID:        uuid.NewString(),
		EventID:   e.ID,
		EventName: e.Title,
		UserEmail: u.Email,
		UserName:  u.Name,
		Emoji:     emoji,
		Timestamp: time.Now().UTC(),
	}
	if err := m.ctl.Feedback.AddEvent(ctx, f); err != nil {
		return nil, err
	}
	m.notify(websocket.EntityFeedback, "created", f.ID, map[string]any{"event_id": e.ID})
	m.refreshAfter(ctx, "feedback")
	return f, nil
}

func (m *Mirror) CreateEvent(ctx context.Context, e *model.Event) error {
	if err := m.ctl.Events.Create(ctx, e); err != nil {
		return err
	}
	m.notify(websocket.EntityEvent, "created", e.ID, nil)
	m.refreshAfter(ctx, "create event")
	return nil
}

func (m *Mirror) UpdateEvent(ctx context.Context, e *model.Event) error {
	if err := m.ctl.Events.Update(ctx, e); err != nil {
		return err
	}
	m.notify(websocket.EntityEvent, "updated", e.ID, nil)
	m.refreshAfter(ctx, "update event")
	return nil
}

func (m *Mirror) DeleteEvent(ctx context.Context, id string) error {
	if err := m.ctl.Events.Delete(ctx, id); err != nil {
		return err
	}
	m.notify(websocket.EntityEvent, "deleted", id, nil)
	m.refreshAfter(ctx, "delete event")
	return nil
}

func (m *Mirror) DeleteUser(ctx context.Context, id string) error {
	if err := m.ctl.Users.Delete(ctx, id); err != nil {
		return err
	}
	m.notify(websocket.EntityUser, "deleted", id, nil)
	m.refreshAfter(ctx, "delete user")
	return nil
}

// AdjustPoints records a manual bonus (or deduction) for the user
// identified by key.
func (m *Mirror) AdjustPoints(ctx context.Context, key string, amount int) error {
	u := normalize.FindUser(m.Snapshot().Users, key)
	if u == nil {
		return ErrUnknownUser
	}
	if err := m.ctl.Users.AdjustPoints(ctx, u, amount); err != nil {
		return err
	}
	m.ledger.Record(points.Delta{UserKey: u.Key(), Amount: amount, Reason: points.ReasonManualBonus})
	m.update(u.Key(), func(u *model.User) { u.Points = points.Apply(u.Points, amount) })
	m.notify(websocket.EntityUser, "updated", u.Key(), map[string]any{"reason": string(points.ReasonManualBonus)})
	m.refreshAfter(ctx, "adjust points")
	return nil
}

// Complete marks a student's event completed, which credits the bonus on
// the server. It satisfies admin.Completer.
func (m *Mirror) Complete(ctx context.Context, eventID string, u *model.User, team []model.TeamMember) error {
	if err := m.ctl.Events.Complete(ctx, eventID, u, team); err != nil {
		return err
	}
	bonus := 0
	if e, err := m.findEvent(eventID); err == nil {
		bonus = e.Points
	}
	if bonus > 0 {
		m.ledger.Record(points.Delta{UserKey: u.Key(), Amount: bonus, Reason: points.ReasonEventBonus})
	}
	m.update(u.Key(), func(u *model.User) {
		u.Points = points.Apply(u.Points, bonus)
		if !slices.Contains(u.Completed, eventID) {
			u.Completed = append(u.Completed, eventID)
		}
	})
	m.notify(websocket.EntityAdmin, "bonus_granted", eventID, map[string]any{"user": u.Key(), "points": bonus})
	return nil
}
