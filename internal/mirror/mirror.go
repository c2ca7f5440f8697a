// Package mirror holds the client's copy of the festival backend's state.
// A refresh replaces every collection at once; actions send a mutation to
// the backend and then re-fetch. Between refreshes the only local changes
// are optimistic deltas that the next refresh overwrites.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpower/youthopia/internal/controller"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/points"
	"github.com/mpower/youthopia/internal/redemption"
	"github.com/mpower/youthopia/internal/spin"
	"github.com/mpower/youthopia/internal/websocket"
)

// ErrNoSession is returned by actions that need a signed-in user.
var ErrNoSession = errors.New("not signed in")

// State is one consistent view of the backend. A State obtained from
// Snapshot must be treated as read-only.
type State struct {
	Users        []model.User                 `json:"users"`
	Events       []model.Event                `json:"events"`
	Items        []model.RedemptionItem       `json:"items"`
	Redemptions  []model.RedemptionRequest    `json:"redemptions"`
	Feedback     []model.FeedbackItem         `json:"feedback"`
	SpinFeedback []model.SpinFeedbackResponse `json:"spin_feedback"`
}

// Controllers are the backend collaborators.
type Controllers struct {
	Auth        *controller.AuthController
	Users       *controller.UserController
	Events      *controller.EventController
	Redemptions *controller.RedemptionController
	Feedback    *controller.FeedbackController
}

type SessionStore interface {
	Save(u *model.User) error
	Load() (*model.User, error)
	Clear() error
}

// Notifier receives change notifications.
type Notifier interface {
	Notify(entity, action, id string, extra map[string]any)
}

type Options struct {
	Spin      spin.Config
	Attempts  spin.AttemptStore
	Threshold int
}

type Mirror struct {
	mu          sync.RWMutex
	state       State
	session     *model.User
	refreshedAt time.Time

	ctl      Controllers
	sessions SessionStore
	notifier Notifier
	ledger   *points.Ledger
	flow     *redemption.Flow
	opts     Options

	machinesMu sync.Mutex
	machines   map[string]*spin.Machine

	logger *slog.Logger
}

func New(ctl Controllers, sessions SessionStore, notifier Notifier, opts Options, logger *slog.Logger) *Mirror {
	m := &Mirror{
		state:    emptyState(),
		ctl:      ctl,
		sessions: sessions,
		notifier: notifier,
		ledger:   points.NewLedger(),
		opts:     opts,
		machines: make(map[string]*spin.Machine),
		logger:   logger,
	}
	m.flow = redemption.NewFlow(m, m.logger)
	return m
}

func emptyState() State {
	return State{
		Users:        []model.User{},
		Events:       []model.Event{},
		Items:        []model.RedemptionItem{},
		Redemptions:  []model.RedemptionRequest{},
		Feedback:     []model.FeedbackItem{},
		SpinFeedback: []model.SpinFeedbackResponse{},
	}
}

// Restore loads the persisted session, if any.
func (m *Mirror) Restore() error {
	u, err := m.sessions.Load()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	m.mu.Lock()
	m.session = u
	m.mu.Unlock()
	if u != nil {
		m.logger.Info("session restored", "user", u.Key(), "role", u.Role)
	}
	return nil
}

func (m *Mirror) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Session returns a copy of the signed-in user, or nil.
func (m *Mirror) Session() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Clone()
}

func (m *Mirror) RefreshedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshedAt
}

func (m *Mirror) requireSession() (*model.User, error) {
	u := m.Session()
	if u == nil {
		return nil, ErrNoSession
	}
	return u, nil
}

// Refresh fetches every collection concurrently and swaps them in together.
// Reads that fail come back empty, so a refresh only fails when ctx ends
// before the cycle completes; the previous state is then kept.
func (m *Mirror) Refresh(ctx context.Context) error {
	next := emptyState()
	session := m.Session()
	var fresh *model.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		next.Users = m.ctl.Users.List(gctx)
		return nil
	})
	g.Go(func() error {
		next.Events = m.ctl.Events.List(gctx)
		return nil
	})
	g.Go(func() error {
		next.Items, next.Redemptions = m.ctl.Redemptions.List(gctx)
		return nil
	})
	g.Go(func() error {
		next.Feedback = m.ctl.Feedback.ListEvent(gctx)
		return nil
	})
	g.Go(func() error {
		next.SpinFeedback = m.ctl.Feedback.ListSpin(gctx)
		return nil
	})
	if session != nil && session.Yid != "" {
		g.Go(func() error {
			fresh = m.ctl.Users.Get(gctx, session.Yid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	m.mu.Lock()
	local := balances(m.state.Users, m.session)
	var updated *model.User
	if fresh != nil && m.session != nil && m.session.Yid == session.Yid {
		m.session = fresh
		updated = fresh.Clone()
	}
	drifts := m.ledger.Settle(local, balances(next.Users, updated))
	m.state = next
	m.refreshedAt = time.Now()
	m.mu.Unlock()

	for _, d := range drifts {
		if d.Drift == 0 {
			continue
		}
		m.logger.Debug("points reconciled", "user", d.UserKey, "drift", d.Drift, "pending", d.Pending)
		m.notify(websocket.EntityUser, "reconciled", d.UserKey, map[string]any{"drift": d.Drift})
	}

	if updated != nil {
		if err := m.sessions.Save(updated); err != nil {
			m.logger.Warn("persist session", "error", err)
		}
		m.notify(websocket.EntityUser, "updated", updated.Key(), map[string]any{
			"points":          updated.Points,
			"spins_available": updated.SpinsAvailable,
		})
	}
	m.notify(websocket.EntityState, "refreshed", "", nil)
	return nil
}

// balances maps user keys to points. The session, when given, overrides the
// listed record.
func balances(users []model.User, session *model.User) map[string]int {
	out := make(map[string]int, len(users)+1)
	for i := range users {
		out[users[i].Key()] = users[i].Points
	}
	if session != nil {
		out[session.Key()] = session.Points
	}
	return out
}

func (m *Mirror) notify(entity, action, id string, extra map[string]any) {
	if m.notifier != nil {
		m.notifier.Notify(entity, action, id, extra)
	}
}

// refreshAfter re-fetches after a successful mutation. A failed refresh is
// only logged; the poller catches up.
func (m *Mirror) refreshAfter(ctx context.Context, action string) {
	if err := m.Refresh(ctx); err != nil {
		m.logger.Warn("refresh after mutation", "action", action, "error", err)
	}
}

// update applies fn to the session and the matching user record, replacing
// both rather than mutating shared slices.
func (m *Mirror) update(userKey string, fn func(u *model.User)) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changed *model.User
	if m.session != nil && m.session.Key() == userKey {
		s := m.session.Clone()
		fn(s)
		m.session = s
		changed = s.Clone()
	}
	for i := range m.state.Users {
		if m.state.Users[i].Key() != userKey {
			continue
		}
		users := make([]model.User, len(m.state.Users))
		copy(users, m.state.Users)
		u := users[i].Clone()
		fn(u)
		users[i] = *u
		m.state.Users = users
		if changed == nil {
			changed = u.Clone()
		}
		break
	}
	return changed
}
