package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
)

type FeedbackController struct {
	api    Transport
	logger *slog.Logger
}

func NewFeedbackController(t Transport, logger *slog.Logger) *FeedbackController {
	return &FeedbackController{api: t, logger: logger}
}

func (c *FeedbackController) ListEvent(ctx context.Context) []model.FeedbackItem {
	var raw any
	if err := c.api.Get(ctx, api.PathEventFeedback, &raw); err != nil {
		c.logger.Error("list event feedback", "error", err)
		return []model.FeedbackItem{}
	}
	return normalize.EventFeedback(unwrapList(raw))
}

func (c *FeedbackController) AddEvent(ctx context.Context, f *model.FeedbackItem) error {
	req := api.EventFeedbackRequest{
		EventID:   f.EventID,
		EventName: f.EventName,
		UserEmail: f.UserEmail,
		UserName:  f.UserName,
		Emoji:     f.Emoji,
		Timestamp: f.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := c.api.Post(ctx, api.PathEventFeedback, req, nil); err != nil {
		return fmt.Errorf("add event feedback: %w", err)
	}
	return nil
}

func (c *FeedbackController) ListSpin(ctx context.Context) []model.SpinFeedbackResponse {
	var raw any
	if err := c.api.Get(ctx, api.PathSpinFeedback, &raw); err != nil {
		c.logger.Error("list spin feedback", "error", err)
		return []model.SpinFeedbackResponse{}
	}
	return normalize.SpinFeedback(unwrapList(raw))
}

func (c *FeedbackController) AddSpin(ctx context.Context, r *model.SpinFeedbackResponse) error {
	req := api.SpinFeedbackRequest{
		ID:          r.ID,
		UserEmail:   r.UserEmail,
		UserName:    r.UserName,
		Yid:         r.UserYid,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
		PrizeAmount: r.PrizeAmount,
		Category:    r.Category,
		Responses:   r.Responses,
	}
	if err := c.api.Post(ctx, api.PathSpinFeedback, req, nil); err != nil {
		return fmt.Errorf("add spin feedback: %w", err)
	}
	return nil
}
