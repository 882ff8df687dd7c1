package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/repository"
)

// ErrInvalidQuestion rejects a question whose options and correct answer do
// not line up.
var ErrInvalidQuestion = errors.New("invalid question definition")

// QuestionService handles question bank management.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// Add validates and inserts a new question.
func (s *QuestionService) Add(ctx context.Context, req *model.AddQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		ID:            uuid.New(),
		Module:        req.Module,
		Text:          req.Text,
		Options:       req.Options,
		CorrectOption: req.Correct,
		Explanation:   req.Explanation,
		Difficulty:    req.Difficulty,
		ImageURL:      req.ImageURL,
		PromptOnly:    req.PromptOnly,
	}

	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Update replaces a question's content.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		ID:            id,
		Module:        req.Module,
		Text:          req.Text,
		Options:       req.Options,
		CorrectOption: req.Correct,
		Explanation:   req.Explanation,
		Difficulty:    req.Difficulty,
		ImageURL:      req.ImageURL,
		PromptOnly:    req.PromptOnly,
	}

	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question from the bank.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.questionRepo.Delete(ctx, id)
}

// Get retrieves a single question, answer included (admin view).
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// List retrieves paginated questions, optionally filtered by module.
func (s *QuestionService) List(ctx context.Context, page, perPage int, module *model.Module) ([]model.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.questionRepo.List(ctx, page, perPage, module)
}

// validateQuestion enforces the structural invariants the binding tags
// cannot express: a scorable question needs at least two options with unique
// ids, one of which is the correct answer; a prompt-only question carries
// neither.
func validateQuestion(q *model.Question) error {
	if !q.Module.Valid() {
		return ErrInvalidQuestion
	}

	if q.PromptOnly {
		if len(q.Options) > 0 || q.CorrectOption != "" {
			return ErrInvalidQuestion
		}
		return nil
	}

	if len(q.Options) < 2 {
		return ErrInvalidQuestion
	}

	seen := make(map[string]bool, len(q.Options))
	correctFound := false
	for _, o := range q.Options {
		id := strings.TrimSpace(o.ID)
		if id == "" || seen[id] {
			return ErrInvalidQuestion
		}
		seen[id] = true
		if id == q.CorrectOption {
			correctFound = true
		}
	}
	if !correctFound {
		return ErrInvalidQuestion
	}
	return nil
}
