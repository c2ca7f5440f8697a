package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mpower/youthopia/internal/model"
)

// SessionKey is the fixed key the signed-in user is stored under.
const SessionKey = "yth_session"

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save persists u as the current session, replacing any previous one.
func (s *SessionStore) Save(u *model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		SessionKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the persisted session user, or nil if nobody is signed in.
func (s *SessionStore) Load() (*model.User, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE key = ?`, SessionKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var u model.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &u, nil
}

func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE key = ?`, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
