package spin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpower/youthopia/internal/model"
)

// DefaultAnimationDelay is how long the wheel spins before the prize lands.
const DefaultAnimationDelay = 2500 * time.Millisecond

type State string

const (
	StateIdle            State = "idle"
	StateSpinning        State = "spinning"
	StatePendingFeedback State = "pending_feedback"
	StateResolved        State = "resolved"
)

var (
	ErrNoPendingSpin = errors.New("no spin awaiting feedback")
	ErrBusy          = errors.New("feedback submission already in progress")
)

// Backend performs the server side of a submission and the optimistic local
// credit once the server has accepted it.
type Backend interface {
	SubmitSpinFeedback(ctx context.Context, resp *model.SpinFeedbackResponse) error
	ConsumeSpin(ctx context.Context, userKey string, prize int) error
	CreditSpin(userKey string, prize int)
}

// AttemptStore persists the attempt waiting on feedback.
type AttemptStore interface {
	SavePending(a *model.SpinAttempt) error
	LoadPending(userKey string) (*model.SpinAttempt, error)
	ClearPending(userKey string) error
}

// Player identifies who is spinning.
type Player struct {
	Key   string
	Name  string
	Email string
}

type Config struct {
	AnimationDelay time.Duration
	Sets           []QuestionSet
	Wheel          *Wheel
}

// Outcome is returned by a successful submission.
type Outcome struct {
	Prize        int    `json:"prize"`
	Message      string `json:"message"`
	RedeemPrompt bool   `json:"redeem_prompt"`
}

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	State   State              `json:"state"`
	Attempt *model.SpinAttempt `json:"attempt,omitempty"`
	Set     *QuestionSet       `json:"question_set,omitempty"`
}

// Machine drives one player's spin attempts through
// idle -> spinning -> pending_feedback -> resolved.
type Machine struct {
	mu         sync.Mutex
	cfg        Config
	player     Player
	backend    Backend
	store      AttemptStore
	logger     *slog.Logger
	state      State
	attempt    *model.SpinAttempt
	ordinal    int
	submitting bool
	now        func() time.Time
}

// NewMachine creates a machine for player. ordinal is the number of spins
// the player has already resolved; it selects the first question set. A
// pending attempt found in store is restored.
func NewMachine(cfg Config, player Player, ordinal int, backend Backend, store AttemptStore, logger *slog.Logger) *Machine {
	if len(cfg.Sets) == 0 {
		cfg.Sets = DefaultSets
	}
	if cfg.Wheel == nil {
		cfg.Wheel = NewWheel(nil, nil)
	}
	m := &Machine{
		cfg:     cfg,
		player:  player,
		backend: backend,
		store:   store,
		logger:  logger,
		state:   StateIdle,
		ordinal: ordinal,
		now:     time.Now,
	}

	if store != nil {
		a, err := store.LoadPending(player.Key)
		if err != nil {
			logger.Warn("restore pending spin", "user", player.Key, "error", err)
		}
		if a != nil {
			m.attempt = a
			m.state = StatePendingFeedback
		}
	}
	return m
}

// Observe records that the server knows of resolved spins for the player.
// The question rotation only moves forward.
func (m *Machine) Observe(resolved int) {
	m.mu.Lock()
	m.ordinal = max(m.ordinal, resolved)
	m.mu.Unlock()
}

func (m *Machine) Player() Player {
	return m.player
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{State: m.state}
	if m.attempt != nil {
		a := *m.attempt
		s.Attempt = &a
		set := m.cfg.Sets[SetIndex(a.QuestionSet, len(m.cfg.Sets))]
		s.Set = &set
	}
	return s
}

// Spin starts an attempt when available > 0 and nothing is in flight, then
// blocks for the animation. It returns the attempt awaiting feedback and
// whether this call started it. When an attempt is already pending it is
// returned unchanged; a spin already in motion or no spins available is a
// no-op. Cancelling ctx during the animation abandons the draw.
func (m *Machine) Spin(ctx context.Context, available int) (*model.SpinAttempt, bool) {
	m.mu.Lock()
	switch {
	case m.state == StatePendingFeedback:
		a := *m.attempt
		m.mu.Unlock()
		return &a, false
	case m.state == StateSpinning, available <= 0:
		m.mu.Unlock()
		return nil, false
	}
	m.state = StateSpinning
	m.mu.Unlock()

	if m.cfg.AnimationDelay > 0 {
		timer := time.NewTimer(m.cfg.AnimationDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			m.mu.Lock()
			m.state = StateIdle
			m.mu.Unlock()
			return nil, false
		}
	}

	_, prize := m.cfg.Wheel.Draw()

	m.mu.Lock()
	defer m.mu.Unlock()
	a := &model.SpinAttempt{
		ID:          uuid.NewString(),
		UserKey:     m.player.Key,
		Prize:       prize,
		QuestionSet: SetIndex(m.ordinal, len(m.cfg.Sets)),
		StartedAt:   m.now().UTC(),
	}
	m.attempt = a
	m.state = StatePendingFeedback
	m.persist(a)

	m.logger.Info("spin landed", "user", m.player.Key, "prize", prize, "question_set", a.QuestionSet)
	out := *a
	return &out, true
}

// Submit validates answers for the pending attempt and, when complete,
// saves the feedback, consumes the spin on the server and credits the prize
// locally. On any server failure the attempt stays pending.
func (m *Machine) Submit(ctx context.Context, answers Answers) (Outcome, error) {
	m.mu.Lock()
	if m.state != StatePendingFeedback || m.attempt == nil {
		m.mu.Unlock()
		return Outcome{}, ErrNoPendingSpin
	}
	if m.submitting {
		m.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	set := m.cfg.Sets[SetIndex(m.attempt.QuestionSet, len(m.cfg.Sets))]
	responses, err := Validate(set, answers)
	if err != nil {
		m.mu.Unlock()
		return Outcome{}, err
	}
	m.submitting = true
	a := *m.attempt
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.submitting = false
		m.mu.Unlock()
	}()

	if !a.FeedbackSaved {
		resp := &model.SpinFeedbackResponse{
			ID:          a.ID,
			UserEmail:   m.player.Email,
			UserName:    m.player.Name,
			UserYid:     m.player.Key,
			Timestamp:   m.now().UTC(),
			PrizeAmount: a.Prize,
			Category:    set.Category,
			Responses:   responses,
		}
		if err := m.backend.SubmitSpinFeedback(ctx, resp); err != nil {
			m.logger.Error("submit spin feedback", "user", a.UserKey, "error", err)
			return Outcome{}, fmt.Errorf("submit spin feedback: %w", err)
		}
		a.FeedbackSaved = true
		m.mu.Lock()
		m.attempt.FeedbackSaved = true
		m.persist(m.attempt)
		m.mu.Unlock()
	}

	if err := m.backend.ConsumeSpin(ctx, a.UserKey, a.Prize); err != nil {
		m.logger.Error("consume spin", "user", a.UserKey, "error", err)
		return Outcome{}, fmt.Errorf("consume spin: %w", err)
	}

	m.backend.CreditSpin(a.UserKey, a.Prize)

	m.mu.Lock()
	m.state = StateResolved
	m.attempt = nil
	m.ordinal++
	if m.store != nil {
		if err := m.store.ClearPending(a.UserKey); err != nil {
			m.logger.Warn("clear pending spin", "user", a.UserKey, "error", err)
		}
	}
	m.mu.Unlock()

	m.logger.Info("spin resolved", "user", a.UserKey, "prize", a.Prize)
	return Outcome{
		Prize:        a.Prize,
		Message:      fmt.Sprintf("Hooray! You won %d Bonus Points!", a.Prize),
		RedeemPrompt: true,
	}, nil
}

// persist must be called with m.mu held.
func (m *Machine) persist(a *model.SpinAttempt) {
	if m.store == nil {
		return
	}
	if err := m.store.SavePending(a); err != nil {
		m.logger.Warn("persist pending spin", "user", a.UserKey, "error", err)
	}
}
