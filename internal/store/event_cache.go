package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mpower/youthopia/internal/model"
)

// EventCacheStore keeps the last non-empty event catalog.
type EventCacheStore struct {
	db *sql.DB
}

func NewEventCacheStore(db *sql.DB) *EventCacheStore {
	return &EventCacheStore{db: db}
}

// SaveEvents replaces the cached catalog with events.
func (s *EventCacheStore) SaveEvents(events []model.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM event_cache`); err != nil {
		return fmt.Errorf("clear event cache: %w", err)
	}
	for i, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO event_cache (id, position, data) VALUES (?, ?, ?)`,
			e.ID, i, string(data),
		); err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// LoadEvents returns the cached catalog in its original order.
func (s *EventCacheStore) LoadEvents() ([]model.Event, error) {
	rows, err := s.db.Query(`SELECT data FROM event_cache ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list cached events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan cached event: %w", err)
		}
		var e model.Event
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("decode cached event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
