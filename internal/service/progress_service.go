package service

import (
	"context"
	"fmt"

	"github.com/docentia/simulacro-backend/internal/advice"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/repository"
)

// Progress bundles everything the student progress screen shows.
type Progress struct {
	Profile      *model.MasteryProfile   `json:"profile"`
	XP           int                     `json:"xp"`
	History      []model.Result          `json:"history"`
	Achievements []model.UserAchievement `json:"achievements"`
}

// ProgressService serves the student progress screen and the study
// recommendation.
type ProgressService struct {
	userRepo        *repository.UserRepository
	resultRepo      *repository.ResultRepository
	masteryRepo     *repository.MasteryRepository
	achievementRepo *repository.AchievementRepository
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	userRepo *repository.UserRepository,
	resultRepo *repository.ResultRepository,
	masteryRepo *repository.MasteryRepository,
	achievementRepo *repository.AchievementRepository,
) *ProgressService {
	return &ProgressService{
		userRepo:        userRepo,
		resultRepo:      resultRepo,
		masteryRepo:     masteryRepo,
		achievementRepo: achievementRepo,
	}
}

// GetProgress assembles the mastery profile, result history, and badges.
func (s *ProgressService) GetProgress(ctx context.Context, userID int, module *model.Module, historyLimit int) (*Progress, error) {
	profile, err := s.masteryRepo.GetProfile(ctx, userID, s.resultRepo)
	if err != nil {
		return nil, fmt.Errorf("load mastery profile: %w", err)
	}

	if historyLimit <= 0 {
		historyLimit = 20
	}
	history, err := s.resultRepo.ListByUser(ctx, userID, module, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load result history: %w", err)
	}

	achievements, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &Progress{
		Profile:      profile,
		XP:           u.XP,
		History:      history,
		Achievements: achievements,
	}, nil
}

// GetRecommendation runs the advice engine over the user's mastery profile.
func (s *ProgressService) GetRecommendation(ctx context.Context, userID int) (*advice.Recommendation, error) {
	profile, err := s.masteryRepo.GetProfile(ctx, userID, s.resultRepo)
	if err != nil {
		return nil, fmt.Errorf("load mastery profile: %w", err)
	}

	rec := advice.Analyze(advice.Input{
		Mastery:          profile.Scores,
		AverageScore:     profile.AverageScore,
		TotalSimulations: profile.TotalSimulations,
	})
	return &rec, nil
}
