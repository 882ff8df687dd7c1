package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docentia/simulacro-backend/internal/middleware"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/quiz"
	"github.com/docentia/simulacro-backend/internal/response"
	"github.com/docentia/simulacro-backend/internal/service"
	"github.com/docentia/simulacro-backend/internal/validator"
)

// AttemptHandler handles the quiz attempt lifecycle over HTTP.
type AttemptHandler struct {
	attemptService *service.AttemptService
	userService    *service.UserService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, userService *service.UserService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		userService:    userService,
	}
}

// Start godoc
// POST /api/v1/attempts
// Launches a new attempt. A still-running attempt is force-exited first.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if !req.Module.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	view, err := h.attemptService.StartAttempt(c.Request.Context(), u, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, view)
}

// Active godoc
// GET /api/v1/attempts/active
// Returns the running attempt, rebuilding it from the autosave snapshot if
// the process restarted.
func (h *AttemptHandler) Active(c *gin.Context) {
	claims := middleware.GetClaims(c)

	u, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	view, err := h.attemptService.Active(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Answer godoc
// POST /api/v1/attempts/active/answers
// Records a selection. Unknown questions and options are reported, not
// errors; study mode returns the verdict inline.
func (h *AttemptHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	feedback, recorded, err := h.attemptService.Answer(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"recorded": recorded,
		"feedback": feedback,
	})
}

// Next godoc
// POST /api/v1/attempts/active/next
func (h *AttemptHandler) Next(c *gin.Context) {
	h.navigate(c, func(userID int) (*service.AttemptView, error) {
		return h.attemptService.Next(userID)
	})
}

// Previous godoc
// POST /api/v1/attempts/active/previous
func (h *AttemptHandler) Previous(c *gin.Context) {
	h.navigate(c, func(userID int) (*service.AttemptView, error) {
		return h.attemptService.Previous(userID)
	})
}

// Review godoc
// POST /api/v1/attempts/active/review
func (h *AttemptHandler) Review(c *gin.Context) {
	h.navigate(c, func(userID int) (*service.AttemptView, error) {
		return h.attemptService.Review(userID)
	})
}

// Jump godoc
// POST /api/v1/attempts/active/jump
// Returns from the review screen to a specific question.
func (h *AttemptHandler) Jump(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.JumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.attemptService.JumpTo(claims.UserID, req.Index)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Submit godoc
// POST /api/v1/attempts/active/submit
// Grades the attempt. Allowed from review, or any time after the clock
// expired. A persistence failure still returns the score, flagged unsaved.
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	summary, err := h.attemptService.Submit(c.Request.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		case errors.Is(err, quiz.ErrStillInProgress):
			response.Fail(c, http.StatusConflict, response.ErrAttemptInProgress)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// Exit godoc
// POST /api/v1/attempts/active/exit
// Abandons the attempt; whatever was answered lands as a partial result.
func (h *AttemptHandler) Exit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	summary, err := h.attemptService.ForceExit(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// ConsumeAIQuota godoc
// POST /api/v1/attempts/active/ai-explain
// Burns one AI-explanation credit and reports the remainder. Premium
// accounts are not limited.
func (h *AttemptHandler) ConsumeAIQuota(c *gin.Context) {
	claims := middleware.GetClaims(c)

	remaining, err := h.attemptService.ConsumeAIQuota(claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		case errors.Is(err, quiz.ErrAIQuotaExhausted):
			response.Fail(c, http.StatusForbidden, response.ErrAIQuotaExhausted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"remaining": remaining})
}

func (h *AttemptHandler) navigate(c *gin.Context, move func(int) (*service.AttemptView, error)) {
	claims := middleware.GetClaims(c)

	view, err := move(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}
	response.Success(c, http.StatusOK, view)
}
