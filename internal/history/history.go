// Package history records answered questions for audit and the recent-history
// API.
package history

import (
	"context"
	"time"
)

type Entry struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	SQL         string    `json:"sql"`
	Source      string    `json:"source"`
	DisplayType string    `json:"display_type"`
	RowCount    int       `json:"row_count"`
	DurationMs  float64   `json:"duration_ms"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
