package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docentia/simulacro-backend/internal/model"
)

// ResultRepository handles the append-only result history. It is the
// production implementation of the session's ResultSink port.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Save appends one result row. Results are never updated.
func (r *ResultRepository) Save(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, module, score, total_questions, scorable, percentage, xp_awarded, is_partial, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		res.UserID, res.Module, res.Score, res.TotalQuestions, res.Scorable,
		res.Percentage, res.XPAwarded, res.IsPartial, res.CompletedAt,
	).Scan(&res.ID)
}

// ListByUser retrieves a user's result history, newest first, optionally
// filtered by module.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int, module *model.Module, limit int) ([]model.Result, error) {
	query := `SELECT id, user_id, module, score, total_questions, scorable, percentage, xp_awarded, is_partial, completed_at
	          FROM results WHERE user_id = $1`
	args := []any{userID}

	if module != nil {
		args = append(args, *module)
		query += fmt.Sprintf(" AND module = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY completed_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.UserID, &res.Module, &res.Score,
			&res.TotalQuestions, &res.Scorable, &res.Percentage,
			&res.XPAwarded, &res.IsPartial, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// AggregateStats returns the average percentage and simulation count over a
// user's completed (non-partial) results.
func (r *ResultRepository) AggregateStats(ctx context.Context, userID int) (avg float64, total int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(percentage), 0), COUNT(*)
		 FROM results
		 WHERE user_id = $1 AND is_partial = FALSE`, userID,
	).Scan(&avg, &total)
	return avg, total, err
}
