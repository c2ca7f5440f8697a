package redemption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/points"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInProgress         = errors.New("redemption already in progress")
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Panel is what the claim view renders for a user.
type Panel struct {
	Status  Status `json:"status"`
	Item    string `json:"item,omitempty"`
	Cost    int    `json:"cost,omitempty"`
	Message string `json:"message,omitempty"`
}

// Claimer submits a claim to the server and applies the local debit.
type Claimer interface {
	ClaimRedemption(ctx context.Context, userKey string, item model.RedemptionItem) error
}

// Flow tracks one claim panel per user.
type Flow struct {
	mu      sync.Mutex
	claimer Claimer
	panels  map[string]Panel
	logger  *slog.Logger
}

func NewFlow(claimer Claimer, logger *slog.Logger) *Flow {
	return &Flow{
		claimer: claimer,
		panels:  make(map[string]Panel),
		logger:  logger,
	}
}

// Panel returns the user's current panel, idle when nothing was attempted.
func (f *Flow) Panel(userKey string) Panel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.panels[userKey]; ok {
		return p
	}
	return Panel{Status: StatusIdle}
}

// Reset returns the user's panel to idle so a failed claim can be retried.
func (f *Flow) Reset(userKey string) {
	f.mu.Lock()
	delete(f.panels, userKey)
	f.mu.Unlock()
}

// Redeem claims item for the user holding balance. Affordability is checked
// before any request is made.
func (f *Flow) Redeem(ctx context.Context, userKey string, balance int, item model.RedemptionItem) (Panel, error) {
	f.mu.Lock()
	if f.panels[userKey].Status == StatusLoading {
		f.mu.Unlock()
		return Panel{Status: StatusLoading, Item: item.Name}, ErrInProgress
	}
	if !points.CanAfford(balance, item.Cost) {
		p := Panel{
			Status:  StatusError,
			Item:    item.Name,
			Cost:    item.Cost,
			Message: fmt.Sprintf("You need %d more points to redeem %s.", item.Cost-balance, item.Name),
		}
		f.panels[userKey] = p
		f.mu.Unlock()
		return p, ErrInsufficientPoints
	}
	f.panels[userKey] = Panel{Status: StatusLoading, Item: item.Name, Cost: item.Cost}
	f.mu.Unlock()

	err := f.claimer.ClaimRedemption(ctx, userKey, item)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.logger.Error("redeem", "user", userKey, "item", item.Name, "error", err)
		p := Panel{Status: StatusError, Item: item.Name, Cost: item.Cost, Message: err.Error()}
		f.panels[userKey] = p
		return p, err
	}
	p := Panel{
		Status:  StatusSuccess,
		Item:    item.Name,
		Cost:    item.Cost,
		Message: fmt.Sprintf("%s requested. Collect it once staff approve your request.", item.Name),
	}
	f.panels[userKey] = p
	f.logger.Info("redeemed", "user", userKey, "item", item.Name, "cost", item.Cost)
	return p, nil
}
