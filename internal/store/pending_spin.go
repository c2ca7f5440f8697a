package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mpower/youthopia/internal/model"
)

// PendingSpinStore persists spin attempts that are waiting on feedback so a
// drawn prize survives restarts.
type PendingSpinStore struct {
	db *sql.DB
}

func NewPendingSpinStore(db *sql.DB) *PendingSpinStore {
	return &PendingSpinStore{db: db}
}

func (s *PendingSpinStore) SavePending(a *model.SpinAttempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO pending_spins (user_key, attempt_id, data) VALUES (?, ?, ?)
		 ON CONFLICT(user_key) DO UPDATE SET attempt_id = excluded.attempt_id, data = excluded.data`,
		a.UserKey, a.ID, string(data),
	)
	if err != nil {
		return fmt.Errorf("save pending spin: %w", err)
	}
	return nil
}

// LoadPending returns the user's pending attempt, or nil if there is none.
func (s *PendingSpinStore) LoadPending(userKey string) (*model.SpinAttempt, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM pending_spins WHERE user_key = ?`, userKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending spin: %w", err)
	}

	var a model.SpinAttempt
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("decode pending spin: %w", err)
	}
	return &a, nil
}

func (s *PendingSpinStore) ClearPending(userKey string) error {
	if _, err := s.db.Exec(`DELETE FROM pending_spins WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("clear pending spin: %w", err)
	}
	return nil
}
