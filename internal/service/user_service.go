package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docentia/simulacro-backend/internal/config"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/repository"
)

// ErrEmailTaken rejects registration with an already-used email.
var ErrEmailTaken = errors.New("email already registered")

// UserService handles account management.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
	cfg      *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService, cfg *config.Config) *UserService {
	return &UserService{userRepo: userRepo, auth: auth, cfg: cfg}
}

// Register creates a new student account.
func (s *UserService) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		AIQuota:      s.cfg.DefaultAIQuota,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves an account by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an account by id.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SetPremium toggles an account's premium entitlement.
func (s *UserService) SetPremium(ctx context.Context, userID int, premium bool) error {
	return s.userRepo.SetPremium(ctx, userID, premium)
}
