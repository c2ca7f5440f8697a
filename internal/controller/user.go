package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
)

// ManualUpdateEvent tags admin point adjustments in the transaction log.
const ManualUpdateEvent = "manual_update"

type UserController struct {
	api    Transport
	logger *slog.Logger
}

func NewUserController(t Transport, logger *slog.Logger) *UserController {
	return &UserController{api: t, logger: logger}
}

// List returns every user. When the user listing is unavailable the
// leaderboard is used instead, which yields partial records.
func (c *UserController) List(ctx context.Context) []model.User {
	var raw any
	err := c.api.Get(ctx, api.PathUsers, &raw)
	if err == nil {
		if list := unwrapList(raw); list != nil {
			return normalize.Users(list)
		}
		return []model.User{}
	}
	c.logger.Warn("list users failed, falling back to leaderboard", "error", err)

	raw = nil
	if err := c.api.Get(ctx, api.PathLeaderboard, &raw); err != nil {
		c.logger.Error("list leaderboard", "error", err)
		return []model.User{}
	}
	return normalize.LeaderboardUsers(unwrapList(raw))
}

// Get fetches one user's full record, or nil when unavailable.
func (c *UserController) Get(ctx context.Context, yid string) *model.User {
	if yid == "" {
		return nil
	}
	var resp map[string]any
	if err := c.api.Get(ctx, api.UserDataPath(yid), &resp); err != nil {
		c.logger.Warn("get user data", "yid", yid, "error", err)
		return nil
	}
	u, ok := normalize.User(unwrapRecord(resp))
	if !ok {
		return nil
	}
	return &u
}

// Points returns the server balance for yid. ok is false when unavailable.
func (c *UserController) Points(ctx context.Context, yid string) (int, bool) {
	var resp struct {
		Points *int `json:"points"`
	}
	if err := c.api.Get(ctx, api.UserPointsPath(yid), &resp); err != nil {
		c.logger.Warn("get user points", "yid", yid, "error", err)
		return 0, false
	}
	if resp.Points == nil {
		return 0, false
	}
	return *resp.Points, true
}

// ConsumeSpin decrements one spin on the server and credits prize points.
func (c *UserController) ConsumeSpin(ctx context.Context, yid string, prize int) error {
	if err := c.api.Post(ctx, api.UserSpinPath(yid), api.SpinRequest{Spins: 1, Points: prize}, nil); err != nil {
		return fmt.Errorf("consume spin: %w", err)
	}
	return nil
}

// Redeem claims item for cost points on behalf of yid.
func (c *UserController) Redeem(ctx context.Context, yid, item string, cost int) error {
	if err := c.api.Put(ctx, api.UserRedeemPath(yid), api.RedeemRequest{Item: item, Points: cost}, nil); err != nil {
		return fmt.Errorf("redeem item: %w", err)
	}
	return nil
}

// AdjustPoints records a manual points transaction for u.
func (c *UserController) AdjustPoints(ctx context.Context, u *model.User, amount int) error {
	req := api.TransactionRequest{
		Event:  ManualUpdateEvent,
		User:   api.TransactionUser{ID: u.ID, Name: u.Name},
		Points: amount,
		Admin:  "system",
	}
	if err := c.api.Post(ctx, api.PathTransaction, req, nil); err != nil {
		return fmt.Errorf("adjust points: %w", err)
	}
	return nil
}

func (c *UserController) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := c.api.Delete(ctx, api.UserPath(id), nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
