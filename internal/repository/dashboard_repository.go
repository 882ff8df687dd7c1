package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docentia/simulacro-backend/internal/model"
)

// DashboardRecentResult is one row of the admin dashboard's recent activity.
type DashboardRecentResult struct {
	UserID      int          `json:"user_id"`
	UserName    string       `json:"user_name"`
	Module      model.Module `json:"module"`
	Percentage  int          `json:"percentage"`
	IsPartial   bool         `json:"is_partial"`
	CompletedAt time.Time    `json:"completed_at"`
}

// ModuleAverage is the platform-wide average percentage for one module.
type ModuleAverage struct {
	Module  model.Module `json:"module"`
	Average float64      `json:"average"`
	Count   int          `json:"count"`
}

// DashboardRepository aggregates platform metrics for the admin dashboard.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts returns the headline counters.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (users, questions, results int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM results)
	`).Scan(&users, &questions, &results)
	return users, questions, results, err
}

// GetRecentResults returns the latest completed attempts across all users.
func (r *DashboardRepository) GetRecentResults(ctx context.Context, limit int) ([]DashboardRecentResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT res.user_id, u.name, res.module, res.percentage, res.is_partial, res.completed_at
		FROM results res
		JOIN users u ON res.user_id = u.id
		ORDER BY res.completed_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DashboardRecentResult
	for rows.Next() {
		var d DashboardRecentResult
		if err := rows.Scan(&d.UserID, &d.UserName, &d.Module, &d.Percentage, &d.IsPartial, &d.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetModuleAverages returns the platform-wide average percentage per module
// over completed attempts.
func (r *DashboardRepository) GetModuleAverages(ctx context.Context) ([]ModuleAverage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT module, COALESCE(AVG(percentage), 0), COUNT(*)
		FROM results
		WHERE is_partial = FALSE
		GROUP BY module
		ORDER BY module`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModuleAverage
	for rows.Next() {
		var m ModuleAverage
		if err := rows.Scan(&m.Module, &m.Average, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
