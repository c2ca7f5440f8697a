// Package points holds the client side of points reconciliation. The server
// balance is authoritative; local deltas only bridge the gap until the next
// poll replaces them.
package points

import (
	"slices"
	"strings"
	"sync"
	"time"
)

type Reason string

const (
	ReasonSpinPrize   Reason = "spin_prize"
	ReasonRedemption  Reason = "redemption"
	ReasonManualBonus Reason = "manual_update"
	ReasonEventBonus  Reason = "event_complete"
)

// Delta is an optimistic change applied locally after the server accepted
// the corresponding request.
type Delta struct {
	UserKey string    `json:"user_key"`
	Amount  int       `json:"amount"`
	Reason  Reason    `json:"reason"`
	At      time.Time `json:"at"`
}

// Apply adds delta to balance. Balances never go below zero.
func Apply(balance, delta int) int {
	return max(balance+delta, 0)
}

// CanAfford reports whether a redemption of cost may be attempted.
func CanAfford(balance, cost int) bool {
	return cost >= 0 && balance >= cost
}

// Ledger records optimistic deltas per user until a poll supersedes them.
type Ledger struct {
	mu      sync.Mutex
	pending map[string][]Delta
}

func NewLedger() *Ledger {
	return &Ledger{pending: make(map[string][]Delta)}
}

func (l *Ledger) Record(d Delta) {
	if d.At.IsZero() {
		d.At = time.Now()
	}
	l.mu.Lock()
	l.pending[d.UserKey] = append(l.pending[d.UserKey], d)
	l.mu.Unlock()
}

// Pending returns the deltas applied to userKey since the last poll.
func (l *Ledger) Pending(userKey string) []Delta {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Delta(nil), l.pending[userKey]...)
}

// Drift is the gap between a user's optimistic balance and the balance a
// poll reported.
type Drift struct {
	UserKey string `json:"user_key"`
	Pending int    `json:"pending"`
	Drift   int    `json:"drift"`
}

// Settle drops every pending delta in favour of a completed poll. For each
// user that had pending deltas and appears in server, the drift between
// local and server balances is reported. Users absent from the poll lose
// their deltas without a report.
func (l *Ledger) Settle(local, server map[string]int) []Drift {
	l.mu.Lock()
	pending := l.pending
	l.pending = make(map[string][]Delta)
	l.mu.Unlock()

	var out []Drift
	for key, deltas := range pending {
		balance, ok := server[key]
		if !ok {
			continue
		}
		out = append(out, Drift{UserKey: key, Pending: len(deltas), Drift: balance - local[key]})
	}
	slices.SortFunc(out, func(a, b Drift) int { return strings.Compare(a.UserKey, b.UserKey) })
	return out
}
