package model

import "time"

// AchievementCode identifies an unlockable badge.
type AchievementCode string

const (
	// AchievementPrimerIntento: first completed simulacro ever.
	AchievementPrimerIntento AchievementCode = "primer_intento"
	// AchievementPuntajePerfecto: every scorable question correct.
	AchievementPuntajePerfecto AchievementCode = "puntaje_perfecto"
	// AchievementContrarreloj: finished with at least half the budget left.
	AchievementContrarreloj AchievementCode = "contrarreloj"
)

// UserAchievement records a badge earned by a user. A badge is earned at
// most once; re-meeting the threshold never re-awards it.
type UserAchievement struct {
	UserID   int             `json:"user_id"`
	Code     AchievementCode `json:"code"`
	EarnedAt time.Time       `json:"earned_at"`
}
