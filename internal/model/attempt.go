package model

// StartAttemptRequest is the payload for launching a new simulacro.
// Either Module+Count (random selection from the bank) or explicit
// QuestionIDs must be provided. TimeLimitSeconds defaults to two minutes
// per question when omitted.
type StartAttemptRequest struct {
	Module           Module   `json:"module" binding:"required"`
	Count            int      `json:"count" binding:"omitempty,min=1,max=100"`
	QuestionIDs      []string `json:"question_ids" binding:"omitempty,dive,uuid"`
	TimeLimitSeconds int      `json:"time_limit_seconds" binding:"omitempty,min=30,max=14400"`
	StudyMode        bool     `json:"study_mode"`
}

// AnswerRequest records a selection for one question of the active attempt.
// Option carries the chosen option id, or the free-text response for
// prompt-only questions.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Option     string `json:"option" binding:"required,max=4000"`
}

// JumpRequest moves the cursor to a specific question from the review screen.
type JumpRequest struct {
	Index int `json:"index" binding:"min=0"`
}
