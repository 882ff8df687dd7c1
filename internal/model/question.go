package model

import (
	"github.com/google/uuid"
)

// Option is a single answer choice. IDs are unique within a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question represents a single quiz question. Immutable once loaded into an
// attempt. PromptOnly questions are self-assessed free-response items: they
// have no scorable options and never count toward the percentage denominator.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	Module        Module     `json:"module"`
	Text          string     `json:"text"`
	Options       []Option   `json:"options"`
	CorrectOption string     `json:"correct_option"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	PromptOnly    bool       `json:"prompt_only"`
}

// Sanitized returns a copy safe to ship to the client mid-attempt: the
// correct option and explanation are stripped so the paper itself never
// leaks answers.
func (q Question) Sanitized() Question {
	q.CorrectOption = ""
	q.Explanation = ""
	return q
}

// AddQuestionRequest is the payload for adding a question to the bank.
type AddQuestionRequest struct {
	Module      Module     `json:"module" binding:"required"`
	Text        string     `json:"text" binding:"required,min=1,max=4000"`
	Options     []Option   `json:"options" binding:"omitempty,dive"`
	Correct     string     `json:"correct_option" binding:"max=10"`
	Explanation string     `json:"explanation" binding:"max=4000"`
	Difficulty  Difficulty `json:"difficulty" binding:"required,oneof=baja media media_alta alta avanzada"`
	ImageURL    *string    `json:"image_url" binding:"omitempty,url"`
	PromptOnly  bool       `json:"prompt_only"`
}
