// Package assistance contains the AI-assistance query log: per-user question
// records with knowledge-point tags and an hourly query quota.
package assistance

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"
)

// Log is one assistance query and, once available, its answer.
type Log struct {
	ID             string
	UserID         string
	Question       string
	Answer         *string
	Answered       bool
	KnowledgePoint string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetAnswer records the answer and marks the log answered.
func (l *Log) SetAnswer(answer string, now time.Time) {
	l.Answer = &answer
	l.Answered = true
	l.UpdatedAt = now
}

// Domain errors.
var (
	ErrLogNotFound = shared.NewDomainError("assistance", "Find", shared.ErrNotFound, "assistance log not found")

	// ErrQuotaExceeded rejects a query over the user's hourly quota.
	ErrQuotaExceeded = shared.NewDomainError("assistance", "RecordQuery", shared.ErrRateLimited, "assistance query quota exceeded")
)
