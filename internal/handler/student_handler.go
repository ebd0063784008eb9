package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/service"
	"github.com/brightclass/portal-api/internal/utils"
)

// StudentHandler exposes the learning profile and progression views.
type StudentHandler struct {
	profiles service.LearningProfileService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(profiles service.LearningProfileService, progress service.ProgressService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		profiles: profiles,
		progress: progress,
		logger:   logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student analytics endpoints to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/:id/profile", h.profile)
	router.Get("/:id/progress", h.progressChart)
}

func (h *StudentHandler) profile(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	// Students only see their own analytics.
	if actor := actorFromContext(c); !actor.IsStaff() && actor.ID != studentID {
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	}

	profile, err := h.profiles.GetProfile(c.UserContext(), studentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learning profile retrieved", profile)
}

func (h *StudentHandler) progressChart(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if actor := actorFromContext(c); !actor.IsStaff() && actor.ID != studentID {
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	}

	progress, err := h.progress.GetProgress(c.UserContext(), studentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *StudentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
