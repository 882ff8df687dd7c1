package service

import (
	"context"
	"fmt"

	"github.com/docentia/simulacro-backend/internal/repository"
)

// DashboardSummary is the admin dashboard payload.
type DashboardSummary struct {
	TotalStudents  int                                `json:"total_students"`
	TotalQuestions int                                `json:"total_questions"`
	TotalResults   int                                `json:"total_results"`
	RecentResults  []repository.DashboardRecentResult `json:"recent_results"`
	ModuleAverages []repository.ModuleAverage         `json:"module_averages"`
}

// DashboardService aggregates platform metrics for administrators.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// GetSummary assembles the dashboard in one call.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	students, questions, results, err := s.dashboardRepo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}

	recent, err := s.dashboardRepo.GetRecentResults(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}

	averages, err := s.dashboardRepo.GetModuleAverages(ctx)
	if err != nil {
		return nil, fmt.Errorf("module averages: %w", err)
	}

	return &DashboardSummary{
		TotalStudents:  students,
		TotalQuestions: questions,
		TotalResults:   results,
		RecentResults:  recent,
		ModuleAverages: averages,
	}, nil
}
