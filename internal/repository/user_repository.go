package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docentia/simulacro-backend/internal/model"
)

// UserRepository handles user account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, is_premium, ai_quota, xp, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.IsPremium, &u.AIQuota, &u.XP, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role, is_premium, ai_quota)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, xp, created_at, updated_at`,
		u.Email, u.Name, u.PasswordHash, u.Role, u.IsPremium, u.AIQuota,
	).Scan(&u.ID, &u.XP, &u.CreatedAt, &u.UpdatedAt)
}

// AddXP credits experience points to a user.
func (r *UserRepository) AddXP(ctx context.Context, userID, delta int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET xp = xp + $1, updated_at = NOW() WHERE id = $2`,
		delta, userID)
	return err
}

// SetPremium toggles the premium entitlement for a user.
func (r *UserRepository) SetPremium(ctx context.Context, userID int, premium bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_premium = $1, updated_at = NOW() WHERE id = $2`,
		premium, userID)
	return err
}
