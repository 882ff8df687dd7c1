package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/docentia/simulacro-backend/internal/middleware"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/service"
	ws "github.com/docentia/simulacro-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a running attempt: countdown ticks out, actions in.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/stream
// Upgrades to WebSocket for the active attempt: the server pushes a tick
// every second and the graded summary on completion; the client sends
// answers and navigation. All writes happen from this goroutine.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if _, ok := h.attemptService.StateOf(userID); !ok {
		ws.WriteError(conn, "no active attempt")
		return
	}

	wsLog := h.log.With().Int("user_id", userID).Logger()
	wsLog.Info().Msg("Student connected")

	msgs := make(chan []byte)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case msgs <- raw:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ticker.C:
			if h.pushTick(conn, wsLog, userID) {
				return
			}

		case raw := <-msgs:
			if h.handleMessage(c.Request.Context(), conn, wsLog, userID, raw) {
				return
			}
		}
	}
}

// pushTick sends the per-second countdown, or the graded summary if the
// clock expired the attempt server-side. Returns true when the stream is
// finished.
func (h *WSHandler) pushTick(conn *websocket.Conn, wsLog zerolog.Logger, userID int) bool {
	if state, ok := h.attemptService.StateOf(userID); ok {
		ws.WriteTyped(conn, ws.TickResponse{
			Event:     ws.EventTick,
			Remaining: state.TimeRemaining,
			Phase:     state.Phase,
		})
		return false
	}

	// Session gone: either the clock graded it, or another device closed it.
	if summary, ok := h.attemptService.TakeSummary(userID); ok {
		ws.WriteTyped(conn, ws.ExpiredResponse{Event: ws.EventExpired})
		ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Summary: summary})
		wsLog.Info().Int("percentage", summary.Result.Percentage).Msg("Attempt graded on expiry")
	} else {
		ws.WriteError(conn, "attempt closed")
	}
	return true
}

// handleMessage dispatches one client action. Returns true when the stream
// is finished.
func (h *WSHandler) handleMessage(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, userID int, raw []byte) bool {
	var envelope ws.RequestEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		ws.WriteError(conn, "invalid message")
		return false
	}

	switch envelope.Action {
	case ws.ActionAnswer:
		h.handleAnswer(ctx, conn, userID, raw)

	case ws.ActionNext:
		h.pushState(conn, userID, func() (*service.AttemptView, error) {
			return h.attemptService.Next(userID)
		})

	case ws.ActionPrevious:
		h.pushState(conn, userID, func() (*service.AttemptView, error) {
			return h.attemptService.Previous(userID)
		})

	case ws.ActionReview:
		h.pushState(conn, userID, func() (*service.AttemptView, error) {
			return h.attemptService.Review(userID)
		})

	case ws.ActionJump:
		var req ws.JumpRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			ws.WriteError(conn, "invalid jump payload")
			return false
		}
		h.pushState(conn, userID, func() (*service.AttemptView, error) {
			return h.attemptService.JumpTo(userID, req.Index)
		})

	case ws.ActionSubmit:
		return h.handleSubmit(ctx, conn, wsLog, userID)

	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

	default:
		wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
		ws.WriteError(conn, "unknown action: "+string(envelope.Action))
	}
	return false
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, userID int, raw []byte) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.QID == "" {
		ws.WriteError(conn, "q_id and ans are required")
		return
	}

	feedback, recorded, err := h.attemptService.Answer(ctx, userID, &model.AnswerRequest{
		QuestionID: req.QID,
		Option:     req.Answer,
	})
	if err != nil {
		ws.WriteError(conn, "answer failed")
		return
	}

	ws.WriteTyped(conn, ws.AnsweredResponse{
		Event:    ws.EventAnswered,
		Recorded: recorded,
		Feedback: feedback,
	})
}

func (h *WSHandler) pushState(conn *websocket.Conn, userID int, move func() (*service.AttemptView, error)) {
	view, err := move()
	if err != nil {
		ws.WriteError(conn, "no active attempt")
		return
	}
	ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: view.State})
}

// handleSubmit grades the attempt and closes the stream.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, userID int) bool {
	summary, err := h.attemptService.Submit(ctx, userID)
	if err != nil {
		ws.WriteError(conn, "submit rejected")
		return false
	}

	ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Summary: summary})
	wsLog.Info().
		Int("percentage", summary.Result.Percentage).
		Bool("saved", summary.Saved).
		Msg("Attempt graded")
	return true
}
