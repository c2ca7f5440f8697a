package mirror

import (
	"context"
	"errors"

	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/points"
	"github.com/mpower/youthopia/internal/redemption"
	"github.com/mpower/youthopia/internal/websocket"
)

var ErrUnknownItem = errors.New("redemption item not found")

// Catalog is the redeemable goodies, most expensive first.
func (m *Mirror) Catalog() []model.RedemptionItem {
	return redemption.Catalog(m.Snapshot().Items)
}

// Redeem claims the catalog item named by itemKey (id or name) for the
// signed-in user.
func (m *Mirror) Redeem(ctx context.Context, itemKey string) (redemption.Panel, error) {
	u, err := m.requireSession()
	if err != nil {
		return redemption.Panel{}, err
	}
	item, ok := redemption.FindItem(m.Catalog(), itemKey)
	if !ok {
		return redemption.Panel{}, ErrUnknownItem
	}
	return m.flow.Redeem(ctx, u.Key(), u.Points, item)
}

// RedeemPanel returns the signed-in user's claim panel.
func (m *Mirror) RedeemPanel() (redemption.Panel, error) {
	u, err := m.requireSession()
	if err != nil {
		return redemption.Panel{}, err
	}
	return m.flow.Panel(u.Key()), nil
}

func (m *Mirror) ResetRedeem() {
	if u := m.Session(); u != nil {
		m.flow.Reset(u.Key())
	}
}

// ClaimRedemption submits the claim and debits the balance locally.
func (m *Mirror) ClaimRedemption(ctx context.Context, userKey string, item model.RedemptionItem) error {
	if err := m.ctl.Users.Redeem(ctx, userKey, item.Name, item.Cost); err != nil {
		return err
	}
	m.ledger.Record(points.Delta{UserKey: userKey, Amount: -item.Cost, Reason: points.ReasonRedemption})
	m.update(userKey, func(u *model.User) { u.Points = points.Apply(u.Points, -item.Cost) })
	m.notify(websocket.EntityRedemption, "requested", userKey, map[string]any{"item": item.Name, "cost": item.Cost})
	m.refreshAfter(ctx, "redeem")
	return nil
}

func (m *Mirror) Approve(ctx context.Context, key redemption.Key) error {
	key = key.Resolve(m.Snapshot().Redemptions)
	if err := m.ctl.Redemptions.Approve(ctx, key.TransactionID, key.GoodieID); err != nil {
		return err
	}
	m.drop(key)
	m.notify(websocket.EntityRedemption, "approved", key.TransactionID, map[string]any{"goodie_id": key.GoodieID})
	return nil
}

func (m *Mirror) Reject(ctx context.Context, key redemption.Key) error {
	key = key.Resolve(m.Snapshot().Redemptions)
	if err := m.ctl.Redemptions.Reject(ctx, key.TransactionID, key.GoodieID); err != nil {
		return err
	}
	m.drop(key)
	m.notify(websocket.EntityRedemption, "rejected", key.TransactionID, map[string]any{"goodie_id": key.GoodieID})
	return nil
}

// drop removes a decided request from the local queue until the next
// refresh brings back its new status.
func (m *Mirror) drop(key redemption.Key) {
	m.mu.Lock()
	m.state.Redemptions = redemption.Without(m.state.Redemptions, key)
	m.mu.Unlock()
}
