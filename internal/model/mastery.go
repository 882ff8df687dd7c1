package model

import "time"

// ModuleMastery is the rolling per-module score for one user, in [0,100].
type ModuleMastery struct {
	UserID    int       `json:"user_id"`
	Module    Module    `json:"module"`
	Score     int       `json:"score"`
	Attempts  int       `json:"attempts"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MasteryProfile aggregates a user's standing across all modules. Modules
// with no attempts default to 0.
type MasteryProfile struct {
	UserID           int            `json:"user_id"`
	Scores           map[Module]int `json:"scores"`
	AverageScore     float64        `json:"average_score"`
	TotalSimulations int            `json:"total_simulations"`
}

// NewMasteryProfile builds an empty profile with every module at 0.
func NewMasteryProfile(userID int) *MasteryProfile {
	scores := make(map[Module]int, len(Modules))
	for _, m := range Modules {
		scores[m] = 0
	}
	return &MasteryProfile{UserID: userID, Scores: scores}
}
