package models

import (
	"time"

	"github.com/google/uuid"
)

// Recognized action types. Anything else is rejected at the tracking boundary.
const (
	ActionRate         = "rate"
	ActionWatchTime    = "watchTime"
	ActionAddWatchlist = "add_watchlist"
	ActionView         = "view"
	ActionClick        = "click"
)

// ActionMetadata carries the item attributes known at event time. All fields
// are optional; scorers treat a missing attribute as unknown, not disliked.
type ActionMetadata struct {
	Genres      []string `json:"genres,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Actors      []string `json:"actors,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`      // minutes
	ReleaseYear int      `json:"release_year,omitempty"`
}

// Action is an immutable record of a single user event.
type Action struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id" validate:"required"`
	ItemID    int64           `json:"item_id" db:"item_id" validate:"required"`
	Type      string          `json:"action_type" db:"action_type" validate:"required,oneof=rate watchTime add_watchlist view click"`
	Value     float64         `json:"value" db:"value"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	SessionID uuid.UUID       `json:"session_id,omitempty" db:"session_id"`
	Metadata  *ActionMetadata `json:"metadata,omitempty" db:"metadata"`
}

// ActionRequest is the ingest payload before validation. Pointer fields
// distinguish "absent" from zero values so the validator can reject
// incomplete events.
type ActionRequest struct {
	UserID    string          `json:"user_id"`
	ItemID    *int64          `json:"item_id"`
	Type      string          `json:"action_type"`
	Value     *float64        `json:"value"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Metadata  *ActionMetadata `json:"metadata,omitempty"`
}
