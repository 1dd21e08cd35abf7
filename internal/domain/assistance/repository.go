package assistance

import (
	"context"
	"time"
)

// Repository defines storage operations for assistance logs.
type Repository interface {
	// Create persists a new log entry.
	Create(ctx context.Context, l *Log) error

	// GetByID returns a log entry by ID.
	// Returns ErrLogNotFound if the entry does not exist.
	GetByID(ctx context.Context, id string) (*Log, error)

	// SaveAnswer persists the answer of an entry.
	SaveAnswer(ctx context.Context, l *Log) error

	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Log, error)

	// ListUnanswered returns all entries still waiting for an answer.
	ListUnanswered(ctx context.Context) ([]*Log, error)

	// CountRecentByUser returns how many queries the user made at or after
	// since.
	CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error)
}

// QueryLimiter bounds how many assistance queries a user may make per window.
// Implementations live in infrastructure (redis sliding window).
type QueryLimiter interface {
	// Allow reports whether the user may make another query right now and,
	// when allowed, consumes one slot.
	Allow(ctx context.Context, userID string) (bool, error)
}
