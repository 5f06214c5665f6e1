package models

import "time"

// Activity is an append-only log entry recording a mutation against one of
// the entity stores.
type Activity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}
