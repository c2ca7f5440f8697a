package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
)

type RedemptionController struct {
	api    Transport
	logger *slog.Logger
}

func NewRedemptionController(t Transport, logger *slog.Logger) *RedemptionController {
	return &RedemptionController{api: t, logger: logger}
}

// List returns the goodie catalog and every redemption request nested in it.
func (c *RedemptionController) List(ctx context.Context) ([]model.RedemptionItem, []model.RedemptionRequest) {
	var raw any
	if err := c.api.Get(ctx, api.PathRedeem, &raw); err != nil {
		c.logger.Error("list redemptions", "error", err)
		return []model.RedemptionItem{}, []model.RedemptionRequest{}
	}
	return normalize.Redemptions(unwrapList(raw))
}

// Approve approves the transaction nested under goodieID.
func (c *RedemptionController) Approve(ctx context.Context, transactionID, goodieID string) error {
	if goodieID == "" {
		return fmt.Errorf("approve redemption %s: missing goodie id", transactionID)
	}
	if err := c.api.Post(ctx, api.RedeemApprovePath(goodieID), api.ApproveRequest{TransactionID: transactionID}, nil); err != nil {
		return fmt.Errorf("approve redemption: %w", err)
	}
	return nil
}

// Reject marks the transaction as rejected.
func (c *RedemptionController) Reject(ctx context.Context, transactionID, goodieID string) error {
	req := api.RedemptionUpdateRequest{Status: string(model.RedemptionRejected), GoodieID: goodieID}
	if err := c.api.Patch(ctx, api.RedeemPath(transactionID), req, nil); err != nil {
		return fmt.Errorf("reject redemption: %w", err)
	}
	return nil
}
