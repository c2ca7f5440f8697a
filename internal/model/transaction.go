package model

import "time"

type Transaction struct {
	ID        string    `json:"id,omitempty"`
	Event     string    `json:"event"`
	Points    int       `json:"points"`
	Admin     string    `json:"admin,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
