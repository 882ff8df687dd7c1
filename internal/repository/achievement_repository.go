package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docentia/simulacro-backend/internal/model"
)

// AchievementRepository handles earned badges. A badge is held at most once
// per user; re-inserts are no-ops.
type AchievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{pool: pool}
}

// ListCodes returns the set of badges a user already holds.
func (r *AchievementRepository) ListCodes(ctx context.Context, userID int) (map[model.AchievementCode]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	held := make(map[model.AchievementCode]bool)
	for rows.Next() {
		var code model.AchievementCode
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		held[code] = true
	}
	return held, rows.Err()
}

// ListByUser returns a user's badges with their earn timestamps.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID int) ([]model.UserAchievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, code, earned_at
		 FROM user_achievements WHERE user_id = $1 ORDER BY earned_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserAchievement
	for rows.Next() {
		var a model.UserAchievement
		if err := rows.Scan(&a.UserID, &a.Code, &a.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Award grants badges to a user. Already-held badges are skipped by the
// unique constraint.
func (r *AchievementRepository) Award(ctx context.Context, userID int, codes []model.AchievementCode, at time.Time) error {
	for _, code := range codes {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO user_achievements (user_id, code, earned_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, code) DO NOTHING`,
			userID, code, at)
		if err != nil {
			return err
		}
	}
	return nil
}
