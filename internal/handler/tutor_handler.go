package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/middleware"
	"github.com/brightclass/portal-api/internal/service"
	"github.com/brightclass/portal-api/internal/utils"
)

// TutorHandler wires the AI tutoring endpoints including the websocket upgrade.
type TutorHandler struct {
	service service.TutorChatService
	logger  zerolog.Logger
}

// NewTutorHandler creates a tutor handler instance.
func NewTutorHandler(service service.TutorChatService, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		service: service,
		logger:  logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// Register binds tutoring routes under the provided router group.
func (h *TutorHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Post("/messages", middleware.RateLimit("tutor", 20, time.Minute), h.send)
	router.Get("/sessions/:session/history", h.history)
}

func (h *TutorHandler) handleConnection(conn *websocket.Conn) {
	studentID := websocketUserID(conn)
	if studentID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	name := strings.TrimSpace(fmt.Sprint(conn.Locals("user_name")))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.TutorConnectionOptions{
		StudentID:   studentID,
		StudentName: name,
		Context:     baseCtx,
	}

	h.logger.Info().Uint("student_id", studentID).Msg("tutor websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Uint("student_id", studentID).Msg("tutor websocket disconnected")
}

func (h *TutorHandler) send(c *fiber.Ctx) error {
	var payload dto.TutorMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.service.Send(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tutor reply", reply)
}

func (h *TutorHandler) history(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Params("session"))
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "session id required")
	}

	messages, err := h.service.History(c.UserContext(), sessionID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tutor history", messages)
}

func (h *TutorHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTutorMessageEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, "message empty after sanitization")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func websocketUserID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		case float64:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
