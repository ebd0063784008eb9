package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/middleware"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/service"
	"github.com/brightclass/portal-api/internal/utils"
)

// SubmissionHandler wires submission upload, grading and review routes.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/grade", middleware.RateLimit("grade", 5, time.Minute), h.grade)
	router.Get("/:id/feedback", h.feedback)
	router.Post("/:id/cancel", h.cancel)
	router.Post("/:id/approve", staff, h.approve)
	router.Post("/:id/return", staff, h.returnToStudent)
	router.Post("/:id/adjust", staff, h.adjustMarks)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	assignmentID, err := parseQueryUint(c, "assignment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := dto.SubmissionFilter{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       queryString(c, "status"),
		Mode:         queryString(c, "mode"),
	}

	submissions, err := h.submissions.List(c.UserContext(), filter, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	assignmentID, err := strconv.ParseUint(c.FormValue("assignment_id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment_id")
	}

	payload := dto.SubmissionCreateRequest{
		AssignmentID: uint(assignmentID),
		Mode:         c.FormValue("mode", models.SubmissionModeFinal),
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	submission, err := h.submissions.Create(c.UserContext(), payload, file, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission stored", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Get(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.grading.Process(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", result)
}

func (h *SubmissionHandler) feedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feedback, err := h.grading.ListFeedback(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback retrieved", feedback)
}

func (h *SubmissionHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Cancel(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission cancelled", submission)
}

func (h *SubmissionHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Approve(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission approved", submission)
}

func (h *SubmissionHandler) returnToStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Return(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission returned", submission)
}

func (h *SubmissionHandler) adjustMarks(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AdjustMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.submissions.AdjustMarks(c.UserContext(), id, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "marks adjusted", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrSubmissionFileRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "submission file is required")
	case errors.Is(err, service.ErrSubmissionTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "submission file exceeds maximum allowed size")
	case errors.Is(err, service.ErrSubmissionNotPDF):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "submissions must be PDF documents")
	case errors.Is(err, service.ErrAssignmentNotOpen):
		return utils.SendError(c, fiber.StatusConflict, "assignment is not open for submissions")
	case errors.Is(err, service.ErrSubmissionPastDue):
		return utils.SendError(c, fiber.StatusConflict, "assignment due date has passed")
	case errors.Is(err, service.ErrInvalidStatusChange):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSubmissionNotGraded):
		return utils.SendError(c, fiber.StatusConflict, "submission has not been graded")
	case errors.Is(err, service.ErrGradingInProgress):
		return utils.SendError(c, fiber.StatusConflict, "grading already in progress")
	case errors.Is(err, service.ErrGradingFailed):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
