// Package quiz contains the assessment domain model: quizzes, questions, and
// the attempt lifecycle with its scoring rules.
//
// An attempt has exactly two states: started and completed. Completion is
// terminal. There is no cancel or abandon state.
package quiz

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrQuizNotFound     = shared.NewDomainError("quiz", "Find", shared.ErrNotFound, "quiz not found")
	ErrQuestionNotFound = shared.NewDomainError("quiz", "FindQuestion", shared.ErrNotFound, "question not found")
	ErrAttemptNotFound  = shared.NewDomainError("quiz", "FindAttempt", shared.ErrNotFound, "attempt not found")

	// ErrAttemptCompleted rejects any mutation of a completed attempt.
	ErrAttemptCompleted = shared.NewDomainError("quiz", "Complete", shared.ErrInvalidState, "attempt already completed")

	// ErrNoQuestions rejects scoring an attempt over a zero-question quiz.
	ErrNoQuestions = shared.NewDomainError("quiz", "Complete", shared.ErrDivisionByZero, "quiz has no questions")

	// ErrNotAttemptOwner rejects cross-user access to an attempt.
	ErrNotAttemptOwner = shared.NewDomainError("quiz", "Complete", shared.ErrUnauthorized, "attempt belongs to another user")
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Quiz is an assessment attached to a course.
type Quiz struct {
	ID            string
	CourseID      string
	Title         string
	Description   string
	QuestionCount int
	Difficulty    course.Difficulty
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks quiz invariants.
func (q *Quiz) Validate() error {
	if q.ID == "" {
		return shared.NewDomainError("quiz", "Validate", shared.ErrInvalidID, "quiz ID is required")
	}
	if q.QuestionCount < 0 {
		return shared.NewDomainError("quiz", "Validate", shared.ErrNegativeValue, "question count cannot be negative")
	}
	if !q.Difficulty.IsValid() {
		return shared.NewDomainError("quiz", "Validate", shared.ErrInvalidEnum, "unknown difficulty: "+string(q.Difficulty))
	}
	return nil
}

// Question is a single question of a quiz.
type Question struct {
	ID             string
	QuizID         string
	Prompt         string
	KnowledgePoint string
	Difficulty     course.Difficulty
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT
// ══════════════════════════════════════════════════════════════════════════════

// Attempt is one timed run of a quiz by a user, scored once on completion.
//
// Invariants: CorrectAnswers <= TotalQuestions; Score is set only after
// completion and equals CorrectAnswers/TotalQuestions*100. A completed
// attempt is never mutated again.
type Attempt struct {
	ID               string
	UserID           string
	QuizID           string
	StartedAt        time.Time
	CompletedAt      *time.Time
	Score            *float64
	CorrectAnswers   int
	TotalQuestions   int
	TimeSpentSeconds int
	Answers          []Answer
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Answer is a submitted answer within an attempt. Answers are owned
// exclusively by their attempt and are created only as part of completion.
// The correctness flag arrives pre-computed from the caller; the engine does
// not grade free-text answers itself.
type Answer struct {
	ID               string
	AttemptID        string
	QuestionID       string
	Submitted        string
	Correct          bool
	TimeSpentSeconds int
}

// NewAttempt starts a new attempt for a user over the given quiz.
// TotalQuestions is fixed at start from the quiz's question count.
func NewAttempt(id, userID string, q *Quiz, now time.Time) *Attempt {
	return &Attempt{
		ID:             id,
		UserID:         userID,
		QuizID:         q.ID,
		StartedAt:      now,
		TotalQuestions: q.QuestionCount,
		CorrectAnswers: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsCompleted reports whether the attempt has reached its terminal state.
func (a *Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// Complete scores the attempt and moves it to its terminal state.
//
// Returns ErrAttemptCompleted if the attempt already has an end time and
// ErrNoQuestions if the quiz had zero questions. On success the answer set is
// replaced with the submitted answers, each bound to this attempt.
func (a *Attempt) Complete(answers []Answer, now time.Time) error {
	if a.IsCompleted() {
		return ErrAttemptCompleted
	}
	if a.TotalQuestions == 0 {
		return ErrNoQuestions
	}

	correct := 0
	bound := make([]Answer, len(answers))
	for i, ans := range answers {
		ans.AttemptID = a.ID
		bound[i] = ans
		if ans.Correct {
			correct++
		}
	}
	if correct > a.TotalQuestions {
		return shared.NewDomainError("quiz", "Complete", shared.ErrInvalidInput, "more correct answers than questions")
	}

	completedAt := now
	score := float64(correct) / float64(a.TotalQuestions) * 100

	a.CompletedAt = &completedAt
	a.TimeSpentSeconds = int(completedAt.Sub(a.StartedAt).Seconds())
	a.Answers = bound
	a.CorrectAnswers = correct
	a.Score = &score
	a.UpdatedAt = now

	return nil
}

// OwnedBy reports whether the attempt belongs to the given user.
func (a *Attempt) OwnedBy(userID string) bool {
	return a.UserID == userID
}

// LowScoreThreshold is the score below which an attempt counts as low.
const LowScoreThreshold = 60.0

// IsLowScore reports whether a completed attempt scored below the threshold.
func (a *Attempt) IsLowScore() bool {
	return a.Score != nil && *a.Score < LowScoreThreshold
}
