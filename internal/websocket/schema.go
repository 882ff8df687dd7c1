package websocket

import (
	"github.com/docentia/simulacro-backend/internal/quiz"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionJump     Action = "jump"
	ActionReview   Action = "review"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to record a single answer.
type AnswerRequest struct {
	Action Action `json:"action"`
	QID    string `json:"q_id"`
	Answer string `json:"ans"`
}

// JumpRequest is sent by the client to jump back to a question from review.
type JumpRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// SubmitRequest is sent by the client to finish and grade the attempt.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventAnswered Event = "answered"
	EventState    Event = "state"
	EventTick     Event = "tick"
	EventExpired  Event = "expired"
	EventGraded   Event = "graded"
	EventPong     Event = "pong"
)

// AnsweredResponse acknowledges a recorded answer; Feedback is present only
// in study mode.
type AnsweredResponse struct {
	Event    Event          `json:"event"`
	Recorded bool           `json:"recorded"`
	Feedback *quiz.Feedback `json:"feedback,omitempty"`
}

// StateResponse carries a full state-machine snapshot after navigation.
type StateResponse struct {
	Event Event      `json:"event"`
	State quiz.State `json:"state"`
}

// TickResponse is the once-per-second countdown push.
type TickResponse struct {
	Event     Event      `json:"event"`
	Remaining int        `json:"remaining"`
	Phase     quiz.Phase `json:"phase"`
}

// ExpiredResponse announces that the clock ran out and the attempt is being
// graded server-side.
type ExpiredResponse struct {
	Event Event `json:"event"`
}

// GradedResponse delivers the final summary.
type GradedResponse struct {
	Event   Event         `json:"event"`
	Summary *quiz.Summary `json:"summary"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
