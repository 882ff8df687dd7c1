package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docentia/simulacro-backend/internal/model"
)

// QuestionRepository handles question bank data access. Options are stored
// as a JSONB array alongside the row.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, module, text, options, correct_option, explanation, difficulty, image_url, prompt_only`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var rawOptions []byte
	err := row.Scan(&q.ID, &q.Module, &q.Text, &rawOptions, &q.CorrectOption,
		&q.Explanation, &q.Difficulty, &q.ImageURL, &q.PromptOnly)
	if err != nil {
		return nil, err
	}
	if len(rawOptions) > 0 {
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
	}
	return q, nil
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var out []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO questions (id, module, text, options, correct_option, explanation, difficulty, image_url, prompt_only)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.Module, q.Text, opts, q.CorrectOption, q.Explanation,
		q.Difficulty, q.ImageURL, q.PromptOnly)
	return err
}

// Update replaces a question's content.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET module = $1, text = $2, options = $3, correct_option = $4,
		     explanation = $5, difficulty = $6, image_url = $7, prompt_only = $8
		 WHERE id = $9`,
		q.Module, q.Text, opts, q.CorrectOption, q.Explanation,
		q.Difficulty, q.ImageURL, q.PromptOnly, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a question from the bank.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// GetByIDs retrieves questions by explicit ids, preserving the input order.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}

	fetched, err := collectQuestions(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]model.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// PickRandom selects up to count random questions for a module, optionally
// filtered by difficulty.
func (r *QuestionRepository) PickRandom(ctx context.Context, module model.Module, count int, difficulty *model.Difficulty) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE module = $1`
	args := []any{module}

	if difficulty != nil {
		args = append(args, *difficulty)
		query += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}

	args = append(args, count)
	query += fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// List retrieves paginated questions for admin management, optionally
// filtered by module.
func (r *QuestionRepository) List(ctx context.Context, page, perPage int, module *model.Module) ([]model.Question, int64, error) {
	offset := (page - 1) * perPage

	where := ""
	args := []any{}
	if module != nil {
		args = append(args, *module)
		where = " WHERE module = $1"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questions"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		fmt.Sprintf(" ORDER BY module, difficulty LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	questions, err := collectQuestions(rows)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}
