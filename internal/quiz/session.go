package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docentia/simulacro-backend/internal/model"
)

// Phase enumerates the attempt lifecycle states.
type Phase string

const (
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseReviewing  Phase = "REVIEWING"
	PhaseSubmitting Phase = "SUBMITTING"
	PhaseDone       Phase = "DONE"
)

// Session-level errors. Out-of-range navigation and unknown options are not
// errors; they are clamped or ignored, since the client only ever offers
// valid choices.
var (
	ErrFinished         = errors.New("attempt already finished")
	ErrStillInProgress  = errors.New("attempt is still in progress")
	ErrAIQuotaExhausted = errors.New("ai explanation quota exhausted")
)

// Capability carries the entitlements injected at session construction, so
// the state machine never reads ambient account state.
type Capability struct {
	IsPremium bool
	AIQuota   int
}

// ResultSink is the persistence boundary. The session calls Save exactly once
// per completed attempt; a failure never blocks presenting the score.
type ResultSink interface {
	Save(ctx context.Context, r *model.Result) error
}

// Config assembles everything a session needs at launch.
type Config struct {
	UserID           int
	Module           model.Module
	Questions        []model.Question
	TimeLimitSeconds int // 0 applies the two-minutes-per-question default
	StudyMode        bool
	Capability       Capability
	Prior            *model.MasteryProfile
	Sink             ResultSink
	Now              func() time.Time // nil means time.Now
}

// Feedback is the immediate per-question verdict returned in study mode.
type Feedback struct {
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// Summary is the outcome of a finished attempt. It is computed before the
// sink is invoked and survives a persistence failure: Saved reports whether
// the result actually landed.
type Summary struct {
	Result        model.Result            `json:"result"`
	Breakdown     Breakdown               `json:"breakdown"`
	Achievements  []model.AchievementCode `json:"achievements"`
	TimeRemaining int                     `json:"time_remaining"`
	Saved         bool                    `json:"saved"`
	SaveErr       error                   `json:"-"`
}

// State is a reload-safe snapshot of a running attempt.
type State struct {
	Module         model.Module      `json:"module"`
	Phase          Phase             `json:"phase"`
	CurrentIndex   int               `json:"current_index"`
	TotalQuestions int               `json:"total_questions"`
	Answered       int               `json:"answered"`
	TimeRemaining  int               `json:"time_remaining"`
	TimeLimit      int               `json:"time_limit"`
	StudyMode      bool              `json:"study_mode"`
	StartedAt      time.Time         `json:"started_at"`
	Answers        map[string]string `json:"answers"`
}

// Session is the state machine driving one timed attempt. Exactly one
// session is active per user; all mutation goes through its methods, which
// serialize access with an internal mutex.
type Session struct {
	mu sync.Mutex

	userID     int
	module     model.Module
	questions  []model.Question
	ledger     *Ledger
	timer      *Timer
	phase      Phase
	current    int
	startedAt  time.Time
	timeLimit  int
	studyMode  bool
	capability Capability
	prior      *model.MasteryProfile
	sink       ResultSink
	now        func() time.Time

	summary *Summary
}

// NewSession launches an attempt over a fixed question list.
func NewSession(cfg Config) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	limit := cfg.TimeLimitSeconds
	if limit <= 0 {
		limit = DefaultSecondsPerQuestion * len(cfg.Questions)
	}

	return &Session{
		userID:     cfg.UserID,
		module:     cfg.Module,
		questions:  cfg.Questions,
		ledger:     NewLedger(),
		timer:      NewTimer(limit),
		phase:      PhaseInProgress,
		startedAt:  now(),
		timeLimit:  limit,
		studyMode:  cfg.StudyMode,
		capability: cfg.Capability,
		prior:      cfg.Prior,
		sink:       cfg.Sink,
		now:        now,
	}
}

// UserID returns the owning user.
func (s *Session) UserID() int { return s.userID }

// Module returns the competency area of this attempt.
func (s *Session) Module() model.Module { return s.module }

// Questions returns sanitized copies of the attempt's question list, in
// order. Correct options and explanations are stripped.
func (s *Session) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Sanitized()
	}
	return out
}

// Answer records a selection for a question. For prompt-only questions the
// value is the free-text response and any non-blank text marks the item
// answered. Unknown questions and options are ignored. In study mode the
// verdict for the question is returned immediately; otherwise feedback is
// deferred to the result screen.
func (s *Session) Answer(questionID uuid.UUID, value string) (*Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return nil, false
	}

	q := s.find(questionID)
	if q == nil {
		return nil, false
	}

	if q.PromptOnly {
		if strings.TrimSpace(value) == "" {
			return nil, false
		}
		s.ledger.Record(q.ID, value)
		return nil, true
	}

	if !hasOption(q, value) {
		return nil, false
	}
	s.ledger.Record(q.ID, value)

	if s.studyMode {
		return &Feedback{
			Correct:       value == q.CorrectOption,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		}, true
	}
	return nil, true
}

// Next advances the cursor. On the last question it transitions the attempt
// into review instead of running past the end.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return
	}
	if s.current < len(s.questions)-1 {
		s.current++
		return
	}
	s.phase = PhaseReviewing
}

// Previous moves the cursor back one question, clamped at the first.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return
	}
	if s.current > 0 {
		s.current--
	}
}

// JumpTo returns from the review screen to a specific question so the user
// can edit the answer. Only valid while reviewing; the index is clamped into
// range.
func (s *Session) JumpTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReviewing || len(s.questions) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.questions)-1 {
		index = len(s.questions) - 1
	}
	s.current = index
	s.phase = PhaseInProgress
}

// Review moves the attempt to the review screen without walking through the
// remaining questions.
func (s *Session) Review() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseInProgress {
		s.phase = PhaseReviewing
	}
}

// Tick consumes one second of the time budget. It reports the remaining
// seconds and whether this tick exhausted the clock; expiry is reported
// exactly once, after which the caller must force a submission.
func (s *Session) Tick() (remaining int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseInProgress || s.phase == PhaseReviewing {
		expired = s.timer.Tick()
	}
	return s.timer.Remaining(), expired
}

// Submit finishes the attempt. Valid from review, or from any live phase
// once the timer has expired (a timed-out attempt is final, not partial).
// Persistence failure does not fail the call: the summary is computed and
// returned regardless, flagged unsaved.
func (s *Session) Submit(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseDone:
		return s.summary, nil
	case PhaseInProgress:
		if !s.timer.Expired() {
			return nil, ErrStillInProgress
		}
	}

	return s.finalize(ctx, false), nil
}

// ForceExit closes the attempt early (user navigated away). Whatever was
// answered is scored and persisted as a partial result. Partial exits award
// no XP and no achievements.
func (s *Session) ForceExit(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseDone {
		return s.summary, ErrFinished
	}
	return s.finalize(ctx, true), nil
}

// finalize runs the scoring pipeline and invokes the sink once. Caller must
// hold s.mu.
func (s *Session) finalize(ctx context.Context, partial bool) *Summary {
	s.phase = PhaseSubmitting
	remaining := s.timer.Remaining()
	s.timer.Stop()

	b := Score(s.questions, s.ledger)

	xp := 0
	var earned []model.AchievementCode
	if !partial {
		xp = ComputeXP(b.Percentage, remaining, s.timeLimit)
		earned = Achievements(s.prior, b.Correct, b.Scorable, remaining, s.timeLimit)
	}

	res := model.Result{
		UserID:         s.userID,
		Module:         s.module,
		Score:          b.Correct,
		TotalQuestions: b.Total,
		Scorable:       b.Scorable,
		Percentage:     b.Percentage,
		XPAwarded:      xp,
		IsPartial:      partial,
		CompletedAt:    s.now(),
	}

	summary := &Summary{
		Result:        res,
		Breakdown:     b,
		Achievements:  earned,
		TimeRemaining: remaining,
		Saved:         true,
	}

	// The score must never be lost to a backend failure: save errors are
	// captured for the caller to surface, not propagated.
	if s.sink != nil {
		if err := s.sink.Save(ctx, &summary.Result); err != nil {
			summary.Saved = false
			summary.SaveErr = err
		}
	}

	s.summary = summary
	s.phase = PhaseDone
	return summary
}

// State snapshots the attempt for page-reload recovery.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Module:         s.module,
		Phase:          s.phase,
		CurrentIndex:   s.current,
		TotalQuestions: len(s.questions),
		Answered:       s.ledger.Len(),
		TimeRemaining:  s.timer.Remaining(),
		TimeLimit:      s.timeLimit,
		StudyMode:      s.studyMode,
		StartedAt:      s.startedAt,
		Answers:        s.ledger.Snapshot(),
	}
}

// Current returns the sanitized question under the cursor.
func (s *Session) Current() (model.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return model.Question{}, 0, false
	}
	return s.questions[s.current].Sanitized(), s.current, true
}

// RestoreAnswers replays autosaved answers into a freshly launched session.
// Only meaningful while the attempt is live.
func (s *Session) RestoreAnswers(saved map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseInProgress || s.phase == PhaseReviewing {
		s.ledger.Restore(saved)
	}
}

// Summary returns the final summary once the attempt is done.
func (s *Session) Summary() (*Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.summary != nil
}

// ConsumeAIQuota burns one AI-explanation credit. Premium accounts are not
// quota-limited. Returns the remaining credits.
func (s *Session) ConsumeAIQuota() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capability.IsPremium {
		return s.capability.AIQuota, nil
	}
	if s.capability.AIQuota <= 0 {
		return 0, ErrAIQuotaExhausted
	}
	s.capability.AIQuota--
	return s.capability.AIQuota, nil
}

func (s *Session) find(questionID uuid.UUID) *model.Question {
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			return &s.questions[i]
		}
	}
	return nil
}

func hasOption(q *model.Question, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
