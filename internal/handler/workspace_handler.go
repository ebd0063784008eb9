package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/service"
	"github.com/brightclass/portal-api/internal/utils"
)

// WorkspaceHandler wires the notebook and spreadsheet document routes.
type WorkspaceHandler struct {
	service service.WorkspaceService
	logger  zerolog.Logger
}

// NewWorkspaceHandler constructs the handler.
func NewWorkspaceHandler(service service.WorkspaceService, logger zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		logger:  logger.With().Str("component", "workspace_handler").Logger(),
	}
}

// RegisterNotebooks attaches notebook endpoints to the router group.
func (h *WorkspaceHandler) RegisterNotebooks(router fiber.Router) {
	router.Get("", h.listNotebooks)
	router.Get("/:id", h.getNotebook)
	router.Post("", h.createNotebook)
	router.Put("/:id", h.updateNotebook)
	router.Delete("/:id", h.deleteNotebook)
}

// RegisterSpreadsheets attaches spreadsheet endpoints to the router group.
func (h *WorkspaceHandler) RegisterSpreadsheets(router fiber.Router) {
	router.Get("", h.listSpreadsheets)
	router.Get("/:id", h.getSpreadsheet)
	router.Post("", h.createSpreadsheet)
	router.Put("/:id", h.updateSpreadsheet)
	router.Delete("/:id", h.deleteSpreadsheet)
}

func (h *WorkspaceHandler) listNotebooks(c *fiber.Ctx) error {
	notebooks, err := h.service.ListNotebooks(c.UserContext(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notebooks retrieved", notebooks)
}

func (h *WorkspaceHandler) getNotebook(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	notebook, err := h.service.GetNotebook(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notebook retrieved", notebook)
}

func (h *WorkspaceHandler) createNotebook(c *fiber.Ctx) error {
	var payload dto.NotebookSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	notebook, err := h.service.CreateNotebook(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notebook created", notebook)
}

func (h *WorkspaceHandler) updateNotebook(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.NotebookSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	notebook, err := h.service.UpdateNotebook(c.UserContext(), id, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notebook updated", notebook)
}

func (h *WorkspaceHandler) deleteNotebook(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteNotebook(c.UserContext(), id, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notebook deleted", fiber.Map{"id": id})
}

func (h *WorkspaceHandler) listSpreadsheets(c *fiber.Ctx) error {
	spreadsheets, err := h.service.ListSpreadsheets(c.UserContext(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "spreadsheets retrieved", spreadsheets)
}

func (h *WorkspaceHandler) getSpreadsheet(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	spreadsheet, err := h.service.GetSpreadsheet(c.UserContext(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "spreadsheet retrieved", spreadsheet)
}

func (h *WorkspaceHandler) createSpreadsheet(c *fiber.Ctx) error {
	var payload dto.SpreadsheetSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	spreadsheet, err := h.service.CreateSpreadsheet(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "spreadsheet created", spreadsheet)
}

func (h *WorkspaceHandler) updateSpreadsheet(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SpreadsheetSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	spreadsheet, err := h.service.UpdateSpreadsheet(c.UserContext(), id, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "spreadsheet updated", spreadsheet)
}

func (h *WorkspaceHandler) deleteSpreadsheet(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteSpreadsheet(c.UserContext(), id, actorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "spreadsheet deleted", fiber.Map{"id": id})
}

func (h *WorkspaceHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "document not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
