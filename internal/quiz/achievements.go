package quiz

import (
	"github.com/docentia/simulacro-backend/internal/model"
)

// Achievements reports every badge threshold met by this attempt. The
// evaluation is pure: it always reports what was met, and the caller is
// responsible for filtering out badges the user already holds.
func Achievements(prior *model.MasteryProfile, correct, scorable, timeRemaining, timeLimit int) []model.AchievementCode {
	var earned []model.AchievementCode

	if prior == nil || prior.TotalSimulations == 0 {
		earned = append(earned, model.AchievementPrimerIntento)
	}
	if scorable > 0 && correct == scorable {
		earned = append(earned, model.AchievementPuntajePerfecto)
	}
	if timeLimit > 0 && timeRemaining*2 >= timeLimit {
		earned = append(earned, model.AchievementContrarreloj)
	}

	return earned
}
