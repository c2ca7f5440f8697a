package mirror

import (
	"context"

	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/points"
	"github.com/mpower/youthopia/internal/spin"
	"github.com/mpower/youthopia/internal/websocket"
)

// machine returns the spin machine for u, creating it on first use. Its
// question rotation follows the spins u already gave feedback for, as of
// the latest poll.
func (m *Mirror) machine(u *model.User) *spin.Machine {
	key := u.Key()
	resolved := m.resolvedSpins(u)
	m.machinesMu.Lock()
	defer m.machinesMu.Unlock()
	if mc, ok := m.machines[key]; ok {
		mc.Observe(resolved)
		return mc
	}

	player := spin.Player{Key: key, Name: u.Name, Email: u.Email}
	mc := spin.NewMachine(m.opts.Spin, player, resolved, m, m.opts.Attempts, m.logger.With("user", key))
	m.machines[key] = mc
	return mc
}

func (m *Mirror) resolvedSpins(u *model.User) int {
	n := 0
	for _, r := range m.Snapshot().SpinFeedback {
		if r.UserYid == u.Key() || (u.Email != "" && r.UserEmail == u.Email) {
			n++
		}
	}
	return n
}

// SpinStatus describes the signed-in user's wheel.
type SpinStatus struct {
	spin.Snapshot
	Available int           `json:"spins_available"`
	Progress  spin.Progress `json:"progress"`
}

func (m *Mirror) SpinStatus() (SpinStatus, error) {
	u, err := m.requireSession()
	if err != nil {
		return SpinStatus{}, err
	}
	return SpinStatus{
		Snapshot:  m.machine(u).Snapshot(),
		Available: m.availableSpins(u),
		Progress:  m.Progress(u),
	}, nil
}

// Progress reports advancement towards the next spin from u's engagement
// registrations.
func (m *Mirror) Progress(u *model.User) spin.Progress {
	n := spin.EngagementRegistrations(u, m.Snapshot().Events)
	return spin.ProgressFor(n, m.opts.Threshold)
}

// availableSpins is the server's count when it sent one. Otherwise the
// spins earned from engagement registrations, less those already resolved.
func (m *Mirror) availableSpins(u *model.User) int {
	if u.SpinsReported {
		return u.SpinsAvailable
	}
	return max(m.Progress(u).Earned-m.resolvedSpins(u), 0)
}

// Spin spins the wheel for the signed-in user. It blocks for the
// animation and returns the attempt awaiting feedback, or nil when there
// was nothing to spin.
func (m *Mirror) Spin(ctx context.Context) (*model.SpinAttempt, error) {
	u, err := m.requireSession()
	if err != nil {
		return nil, err
	}
	a, started := m.machine(u).Spin(ctx, m.availableSpins(u))
	if started {
		m.notify(websocket.EntitySpin, "landed", a.ID, map[string]any{"prize": a.Prize})
	}
	return a, nil
}

// SubmitSpin submits the survey for the pending attempt.
func (m *Mirror) SubmitSpin(ctx context.Context, answers spin.Answers) (spin.Outcome, error) {
	u, err := m.requireSession()
	if err != nil {
		return spin.Outcome{}, err
	}
	out, err := m.machine(u).Submit(ctx, answers)
	if err != nil {
		return spin.Outcome{}, err
	}
	m.notify(websocket.EntitySpin, "resolved", u.Key(), map[string]any{"prize": out.Prize})
	m.refreshAfter(ctx, "spin")
	return out, nil
}

func (m *Mirror) SubmitSpinFeedback(ctx context.Context, resp *model.SpinFeedbackResponse) error {
	return m.ctl.Feedback.AddSpin(ctx, resp)
}

func (m *Mirror) ConsumeSpin(ctx context.Context, userKey string, prize int) error {
	return m.ctl.Users.ConsumeSpin(ctx, userKey, prize)
}

// CreditSpin applies a resolved spin locally until the next refresh.
func (m *Mirror) CreditSpin(userKey string, prize int) {
	m.ledger.Record(points.Delta{UserKey: userKey, Amount: prize, Reason: points.ReasonSpinPrize})
	u := m.update(userKey, func(u *model.User) {
		u.SpinsAvailable = max(u.SpinsAvailable-1, 0)
		u.Points = points.Apply(u.Points, prize)
	})
	if u != nil {
		m.notify(websocket.EntityUser, "updated", userKey, map[string]any{
			"points":          u.Points,
			"spins_available": u.SpinsAvailable,
		})
	}
}
