package model

import "time"

// Result is the immutable outcome of a finished attempt. Results are
// append-only: one row per submission or forced early exit, never updated.
type Result struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	Module         Module    `json:"module"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Scorable       int       `json:"scorable"`
	Percentage     int       `json:"percentage"`
	XPAwarded      int       `json:"xp_awarded"`
	IsPartial      bool      `json:"is_partial"`
	CompletedAt    time.Time `json:"completed_at"`
}
