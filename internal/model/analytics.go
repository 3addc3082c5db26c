package model

import "time"

// ViewEvent is one successful document view. Rows are append-only; the
// service never updates or deletes them (retention is an external job).
type ViewEvent struct {
	ID              string    `json:"id"`
	DocumentID      string    `json:"document_id"`
	ShareKey        string    `json:"share_key,omitempty"`
	ViewerEmail     string    `json:"viewer_email,omitempty"`
	IP              string    `json:"ip,omitempty"`
	UserAgent       string    `json:"user_agent,omitempty"`
	Country         *string   `json:"country,omitempty"`
	City            *string   `json:"city,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
