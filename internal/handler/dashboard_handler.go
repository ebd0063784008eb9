package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/middleware"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/service"
	"github.com/brightclass/portal-api/internal/utils"
)

// DashboardHandler serves the per-role dashboard views.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard endpoints to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/student", h.student)
	router.Get("/teacher", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), h.teacher)
	router.Get("/admin", middleware.RequireRole(models.RoleAdmin), h.admin)
}

func (h *DashboardHandler) student(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	dashboard, err := h.service.StudentDashboard(c.UserContext(), userID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "student dashboard", dashboard)
}

func (h *DashboardHandler) teacher(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	dashboard, err := h.service.TeacherDashboard(c.UserContext(), userID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "teacher dashboard", dashboard)
}

func (h *DashboardHandler) admin(c *fiber.Ctx) error {
	dashboard, err := h.service.AdminDashboard(c.UserContext())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "admin dashboard", dashboard)
}

func (h *DashboardHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
