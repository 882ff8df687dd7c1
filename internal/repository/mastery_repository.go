package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docentia/simulacro-backend/internal/model"
)

// MasteryRepository handles the per-module rolling mastery scores.
type MasteryRepository struct {
	pool *pgxpool.Pool
}

// NewMasteryRepository creates a new MasteryRepository.
func NewMasteryRepository(pool *pgxpool.Pool) *MasteryRepository {
	return &MasteryRepository{pool: pool}
}

// ListByUser retrieves a user's per-module mastery rows.
func (r *MasteryRepository) ListByUser(ctx context.Context, userID int) ([]model.ModuleMastery, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, module, score, attempts, updated_at
		 FROM user_mastery WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ModuleMastery
	for rows.Next() {
		var m model.ModuleMastery
		if err := rows.Scan(&m.UserID, &m.Module, &m.Score, &m.Attempts, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetProfile assembles the full mastery profile for the advice engine:
// every module present (defaulting to 0), plus aggregate stats computed
// from the result history.
func (r *MasteryRepository) GetProfile(ctx context.Context, userID int, results *ResultRepository) (*model.MasteryProfile, error) {
	profile := model.NewMasteryProfile(userID)

	rows, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		profile.Scores[m.Module] = m.Score
	}

	avg, total, err := results.AggregateStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.AverageScore = avg
	profile.TotalSimulations = total

	return profile, nil
}
