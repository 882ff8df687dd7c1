package quiz_test

import (
	"testing"

	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/quiz"
)

func TestScoreEmptyAttempt(t *testing.T) {
	b := quiz.Score(nil, quiz.NewLedger())
	if b.Correct != 0 || b.Total != 0 || b.Percentage != 0 {
		t.Fatalf("empty attempt must be all zeros, got %+v", b)
	}
}

func TestScoreBounds(t *testing.T) {
	qs := makeQuestions(4)
	led := quiz.NewLedger()
	led.Record(qs[0].ID, "b")
	led.Record(qs[1].ID, "a")
	led.Record(qs[2].ID, "b")

	b := quiz.Score(qs, led)
	if b.Correct < 0 || b.Correct > b.Total {
		t.Fatalf("correct out of bounds: %+v", b)
	}
	if b.Correct != 2 || b.Total != 4 {
		t.Fatalf("expected 2/4, got %d/%d", b.Correct, b.Total)
	}
	if b.Percentage != 50 {
		t.Fatalf("expected 50%%, got %d", b.Percentage)
	}

	ms := b.PerModule[model.ModuleMatematica]
	if ms.Correct != 2 || ms.Total != 4 {
		t.Fatalf("unexpected per-module score %+v", ms)
	}
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	cases := []struct {
		correct, scorable, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13}, // 12.5 rounds up
		{7, 7, 100},
	}
	for _, c := range cases {
		if got := quiz.Percentage(c.correct, c.scorable); got != c.want {
			t.Errorf("Percentage(%d,%d) = %d, want %d", c.correct, c.scorable, got, c.want)
		}
	}
}

func TestXPMonotonicity(t *testing.T) {
	prev := -1
	for pct := 0; pct <= 100; pct += 10 {
		xp := quiz.ComputeXP(pct, 0, 600)
		if xp < prev {
			t.Fatalf("XP decreased: pct=%d xp=%d prev=%d", pct, xp, prev)
		}
		prev = xp
	}

	prev = -1
	for remaining := 0; remaining <= 600; remaining += 50 {
		xp := quiz.ComputeXP(70, remaining, 600)
		if xp < prev {
			t.Fatalf("XP decreased with more time left: rem=%d xp=%d prev=%d", remaining, xp, prev)
		}
		prev = xp
	}

	if quiz.ComputeXP(0, 0, 0) != 0 {
		t.Fatal("floor must be zero XP")
	}
	if quiz.ComputeXP(100, 0, 600) >= quiz.ComputeXP(100, 300, 600) {
		t.Fatal("running out the clock must not out-earn a fast finish")
	}
}

func TestAchievementThresholds(t *testing.T) {
	// Cold profile: first attempt badge.
	got := quiz.Achievements(nil, 5, 10, 0, 600)
	if !hasAchievement(got, model.AchievementPrimerIntento) {
		t.Fatalf("expected first-attempt badge, got %v", got)
	}

	prior := model.NewMasteryProfile(1)
	prior.TotalSimulations = 3

	got = quiz.Achievements(prior, 10, 10, 400, 600)
	if !hasAchievement(got, model.AchievementPuntajePerfecto) || !hasAchievement(got, model.AchievementContrarreloj) {
		t.Fatalf("expected perfect + fast badges, got %v", got)
	}
	if hasAchievement(got, model.AchievementPrimerIntento) {
		t.Fatalf("veteran must not re-earn first-attempt, got %v", got)
	}

	// A perfect score over zero scorable questions is not perfect.
	got = quiz.Achievements(prior, 0, 0, 0, 600)
	if hasAchievement(got, model.AchievementPuntajePerfecto) {
		t.Fatalf("empty attempt must not be perfect, got %v", got)
	}

	// Deterministic: same inputs, same badges.
	again := quiz.Achievements(prior, 10, 10, 400, 600)
	if len(again) != 2 {
		t.Fatalf("re-evaluation changed the outcome: %v", again)
	}
}

func TestTimerSingleShotExpiry(t *testing.T) {
	tm := quiz.NewTimer(3)

	fired := 0
	for i := 0; i < 10; i++ {
		if tm.Tick() {
			fired++
		}
		if tm.Remaining() > 3 {
			t.Fatalf("timer exceeded its budget: %d", tm.Remaining())
		}
	}
	if fired != 1 {
		t.Fatalf("expiry must fire exactly once, fired %d times", fired)
	}
	if !tm.Expired() || tm.Remaining() != 0 {
		t.Fatalf("expected exhausted timer, remaining=%d", tm.Remaining())
	}
}

func TestTimerStopPreventsExpiry(t *testing.T) {
	tm := quiz.NewTimer(2)
	tm.Tick()
	tm.Stop()

	for i := 0; i < 5; i++ {
		if tm.Tick() {
			t.Fatal("stopped timer must never fire")
		}
	}
	if tm.Expired() {
		t.Fatal("stopped timer must not report expiry")
	}
}

func TestLedgerOverwrite(t *testing.T) {
	qs := makeQuestions(1)
	led := quiz.NewLedger()

	led.Record(qs[0].ID, "a")
	led.Record(qs[0].ID, "a")
	if v, ok := led.Get(qs[0].ID); !ok || v != "a" {
		t.Fatalf("idempotent record broken: %q %v", v, ok)
	}

	led.Record(qs[0].ID, "b")
	if v, _ := led.Get(qs[0].ID); v != "b" {
		t.Fatalf("overwrite broken, got %q", v)
	}
	if led.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", led.Len())
	}
}
