package quiz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/quiz"
)

type recordingSink struct {
	saved []model.Result
	err   error
}

func (s *recordingSink) Save(_ context.Context, r *model.Result) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, *r)
	return nil
}

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:     uuid.New(),
			Module: model.ModuleMatematica,
			Text:   "pregunta",
			Options: []model.Option{
				{ID: "a", Text: "opción A"},
				{ID: "b", Text: "opción B"},
				{ID: "c", Text: "opción C"},
			},
			CorrectOption: "b",
			Difficulty:    model.DifficultyMedia,
		}
	}
	return qs
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestPerfectRun(t *testing.T) {
	sink := &recordingSink{}
	qs := makeQuestions(2)
	s := quiz.NewSession(quiz.Config{
		UserID:           1,
		Module:           model.ModuleMatematica,
		Questions:        qs,
		TimeLimitSeconds: 240,
		Sink:             sink,
		Now:              fixedClock(),
	})

	for _, q := range qs {
		if _, ok := s.Answer(q.ID, "b"); !ok {
			t.Fatalf("answer for %s not recorded", q.ID)
		}
		s.Next()
	}
	if st := s.State(); st.Phase != quiz.PhaseReviewing {
		t.Fatalf("expected review after last question, got %s", st.Phase)
	}

	// Burn 40 seconds: 200 remain, more than half the budget.
	for i := 0; i < 40; i++ {
		s.Tick()
	}

	sum, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sum.Result.Score != 2 || sum.Result.TotalQuestions != 2 {
		t.Fatalf("expected 2/2, got %d/%d", sum.Result.Score, sum.Result.TotalQuestions)
	}
	if sum.Result.Percentage != 100 {
		t.Fatalf("expected 100%%, got %d", sum.Result.Percentage)
	}
	if !hasAchievement(sum.Achievements, model.AchievementPuntajePerfecto) {
		t.Fatalf("expected perfect-score achievement, got %v", sum.Achievements)
	}
	if !hasAchievement(sum.Achievements, model.AchievementContrarreloj) {
		t.Fatalf("expected fast-finisher achievement, got %v", sum.Achievements)
	}
	halfRunXP := quiz.ComputeXP(50, 200, 240)
	if sum.Result.XPAwarded <= halfRunXP {
		t.Fatalf("perfect-run XP %d should beat 50%%-run XP %d", sum.Result.XPAwarded, halfRunXP)
	}
	if len(sink.saved) != 1 || sink.saved[0].IsPartial {
		t.Fatalf("expected one non-partial save, got %+v", sink.saved)
	}
}

func TestForceExitPartial(t *testing.T) {
	sink := &recordingSink{}
	qs := makeQuestions(5)
	s := quiz.NewSession(quiz.Config{
		UserID: 7, Module: model.ModuleMatematica, Questions: qs,
		TimeLimitSeconds: 600, Sink: sink, Now: fixedClock(),
	})

	s.Answer(qs[0].ID, "b") // correct
	s.Answer(qs[1].ID, "a") // wrong

	sum, err := s.ForceExit(context.Background())
	if err != nil {
		t.Fatalf("force exit failed: %v", err)
	}
	if !sum.Result.IsPartial {
		t.Fatal("expected partial result")
	}
	if sum.Result.Score != 1 {
		t.Fatalf("expected score 1 from the answered pair, got %d", sum.Result.Score)
	}
	if sum.Result.XPAwarded != 0 || len(sum.Achievements) != 0 {
		t.Fatalf("partial exit must not award XP or badges, got xp=%d %v",
			sum.Result.XPAwarded, sum.Achievements)
	}
	if len(sink.saved) != 1 || !sink.saved[0].IsPartial {
		t.Fatalf("expected exactly one partial save, got %+v", sink.saved)
	}

	if _, err := s.ForceExit(context.Background()); !errors.Is(err, quiz.ErrFinished) {
		t.Fatalf("second exit should report finished, got %v", err)
	}
}

func TestTimerExpiryAutoSubmit(t *testing.T) {
	sink := &recordingSink{}
	s := quiz.NewSession(quiz.Config{
		UserID: 3, Module: model.ModuleRazonamientoLogico,
		Questions: makeQuestions(1), TimeLimitSeconds: 1,
		Sink: sink, Now: fixedClock(),
	})

	remaining, expired := s.Tick()
	if remaining != 0 || !expired {
		t.Fatalf("expected expiry at first tick, got remaining=%d expired=%v", remaining, expired)
	}

	// Expiry fires once.
	if _, again := s.Tick(); again {
		t.Fatal("expiry reported twice")
	}

	sum, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("forced submit after expiry failed: %v", err)
	}
	if sum.Result.Score != 0 || sum.Result.IsPartial {
		t.Fatalf("timed-out attempt must be final with score 0, got %+v", sum.Result)
	}
}

func TestSubmitRequiresReviewOrExpiry(t *testing.T) {
	s := quiz.NewSession(quiz.Config{
		UserID: 1, Questions: makeQuestions(3), TimeLimitSeconds: 300,
	})

	if _, err := s.Submit(context.Background()); !errors.Is(err, quiz.ErrStillInProgress) {
		t.Fatalf("expected ErrStillInProgress, got %v", err)
	}
}

func TestNavigationClamping(t *testing.T) {
	s := quiz.NewSession(quiz.Config{UserID: 1, Questions: makeQuestions(3), TimeLimitSeconds: 300})

	s.Previous()
	if st := s.State(); st.CurrentIndex != 0 {
		t.Fatalf("previous at 0 must stay at 0, got %d", st.CurrentIndex)
	}

	s.Next()
	s.Next()
	if st := s.State(); st.CurrentIndex != 2 || st.Phase != quiz.PhaseInProgress {
		t.Fatalf("expected index 2 in progress, got %+v", st)
	}

	// Next on the last question enters review instead of overflowing.
	s.Next()
	st := s.State()
	if st.Phase != quiz.PhaseReviewing || st.CurrentIndex != 2 {
		t.Fatalf("expected review at index 2, got %+v", st)
	}

	// Jump back re-enters the live phase, clamped into range.
	s.JumpTo(99)
	st = s.State()
	if st.Phase != quiz.PhaseInProgress || st.CurrentIndex != 2 {
		t.Fatalf("expected clamped jump to 2, got %+v", st)
	}

	// Explicit return to review.
	s.Review()
	if st := s.State(); st.Phase != quiz.PhaseReviewing {
		t.Fatalf("expected review, got %s", st.Phase)
	}
}

func TestAnswerOverwriteAndValidation(t *testing.T) {
	qs := makeQuestions(2)
	s := quiz.NewSession(quiz.Config{UserID: 1, Questions: qs, TimeLimitSeconds: 300})

	s.Answer(qs[0].ID, "a")
	s.Answer(qs[0].ID, "a")
	s.Answer(qs[0].ID, "c")

	st := s.State()
	if st.Answered != 1 {
		t.Fatalf("overwrites must not add entries, answered=%d", st.Answered)
	}
	if got := st.Answers[qs[0].ID.String()]; got != "c" {
		t.Fatalf("last write wins, got %q", got)
	}

	// Unknown option and unknown question are ignored, not errors.
	if _, ok := s.Answer(qs[0].ID, "zz"); ok {
		t.Fatal("unknown option must be ignored")
	}
	if _, ok := s.Answer(uuid.New(), "a"); ok {
		t.Fatal("unknown question must be ignored")
	}
}

func TestStudyModeFeedback(t *testing.T) {
	qs := makeQuestions(1)
	qs[0].Explanation = "porque sí"
	s := quiz.NewSession(quiz.Config{
		UserID: 1, Questions: qs, TimeLimitSeconds: 300, StudyMode: true,
	})

	fb, ok := s.Answer(qs[0].ID, "a")
	if !ok || fb == nil {
		t.Fatal("study mode must return immediate feedback")
	}
	if fb.Correct || fb.CorrectOption != "b" || fb.Explanation != "porque sí" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
}

func TestPromptOnlyAnsweredByText(t *testing.T) {
	qs := makeQuestions(2)
	qs[1].PromptOnly = true
	qs[1].Options = nil
	qs[1].CorrectOption = ""

	s := quiz.NewSession(quiz.Config{UserID: 1, Questions: qs, TimeLimitSeconds: 300})

	if _, ok := s.Answer(qs[1].ID, "   "); ok {
		t.Fatal("blank free-text must not mark a prompt-only item answered")
	}
	if _, ok := s.Answer(qs[1].ID, "mi desarrollo"); !ok {
		t.Fatal("non-blank free-text must be recorded")
	}

	s.Answer(qs[0].ID, "b")
	s.Review()
	sum, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// Prompt-only item occupies a display slot but not the percentage
	// denominator.
	if sum.Result.TotalQuestions != 2 || sum.Result.Scorable != 1 {
		t.Fatalf("expected total=2 scorable=1, got %+v", sum.Result)
	}
	if sum.Result.Percentage != 100 {
		t.Fatalf("expected 100%% over the scorable question, got %d", sum.Result.Percentage)
	}
}

func TestSubmitSurvivesSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("backend caído")}
	qs := makeQuestions(1)
	s := quiz.NewSession(quiz.Config{UserID: 1, Questions: qs, TimeLimitSeconds: 120, Sink: sink})

	s.Answer(qs[0].ID, "b")
	s.Review()

	sum, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit must not fail on persistence error: %v", err)
	}
	if sum.Saved || sum.SaveErr == nil {
		t.Fatalf("expected unsaved summary, got %+v", sum)
	}
	if sum.Result.Score != 1 {
		t.Fatalf("score must survive the failure, got %d", sum.Result.Score)
	}
	if st := s.State(); st.Phase != quiz.PhaseDone {
		t.Fatalf("attempt must still finish, phase=%s", st.Phase)
	}
}

func TestZeroQuestionAttempt(t *testing.T) {
	s := quiz.NewSession(quiz.Config{UserID: 1, TimeLimitSeconds: 60})

	s.Next() // straight to review on an empty list
	sum, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sum.Result.Score != 0 || sum.Result.TotalQuestions != 0 || sum.Result.Percentage != 0 {
		t.Fatalf("empty attempt must score all zeros, got %+v", sum.Result)
	}
}

func TestAIQuota(t *testing.T) {
	s := quiz.NewSession(quiz.Config{
		UserID: 1, Questions: makeQuestions(1), TimeLimitSeconds: 60,
		Capability: quiz.Capability{AIQuota: 2},
	})

	if n, err := s.ConsumeAIQuota(); err != nil || n != 1 {
		t.Fatalf("expected 1 left, got %d %v", n, err)
	}
	if n, err := s.ConsumeAIQuota(); err != nil || n != 0 {
		t.Fatalf("expected 0 left, got %d %v", n, err)
	}
	if _, err := s.ConsumeAIQuota(); !errors.Is(err, quiz.ErrAIQuotaExhausted) {
		t.Fatalf("expected quota exhaustion, got %v", err)
	}

	premium := quiz.NewSession(quiz.Config{
		UserID: 2, Questions: makeQuestions(1), TimeLimitSeconds: 60,
		Capability: quiz.Capability{IsPremium: true},
	})
	if _, err := premium.ConsumeAIQuota(); err != nil {
		t.Fatalf("premium must not be quota-limited: %v", err)
	}
}

func hasAchievement(codes []model.AchievementCode, want model.AchievementCode) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}
