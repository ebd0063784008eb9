package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
)

// ErrDocumentNotFound indicates the notebook or spreadsheet does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// WorkspaceService manages notebooks and spreadsheets. They are plain stored
// documents; every operation is scoped to the owning user.
type WorkspaceService interface {
	ListNotebooks(ctx context.Context, actor Actor) ([]dto.NotebookResponse, error)
	GetNotebook(ctx context.Context, id uint, actor Actor) (dto.NotebookResponse, error)
	CreateNotebook(ctx context.Context, payload dto.NotebookSaveRequest, actor Actor) (dto.NotebookResponse, error)
	UpdateNotebook(ctx context.Context, id uint, payload dto.NotebookSaveRequest, actor Actor) (dto.NotebookResponse, error)
	DeleteNotebook(ctx context.Context, id uint, actor Actor) error

	ListSpreadsheets(ctx context.Context, actor Actor) ([]dto.SpreadsheetResponse, error)
	GetSpreadsheet(ctx context.Context, id uint, actor Actor) (dto.SpreadsheetResponse, error)
	CreateSpreadsheet(ctx context.Context, payload dto.SpreadsheetSaveRequest, actor Actor) (dto.SpreadsheetResponse, error)
	UpdateSpreadsheet(ctx context.Context, id uint, payload dto.SpreadsheetSaveRequest, actor Actor) (dto.SpreadsheetResponse, error)
	DeleteSpreadsheet(ctx context.Context, id uint, actor Actor) error
}

type workspaceService struct {
	notebooks    repository.NotebookRepository
	spreadsheets repository.SpreadsheetRepository
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewWorkspaceService constructs the workspace document service.
func NewWorkspaceService(notebooks repository.NotebookRepository, spreadsheets repository.SpreadsheetRepository, validate *validator.Validate, logger zerolog.Logger) WorkspaceService {
	return &workspaceService{
		notebooks:    notebooks,
		spreadsheets: spreadsheets,
		validator:    validate,
		logger:       logger.With().Str("component", "workspace_service").Logger(),
	}
}

func (s *workspaceService) ListNotebooks(ctx context.Context, actor Actor) ([]dto.NotebookResponse, error) {
	notebooks, err := s.notebooks.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewNotebookResponseSlice(notebooks), nil
}

func (s *workspaceService) GetNotebook(ctx context.Context, id uint, actor Actor) (dto.NotebookResponse, error) {
	notebook, err := s.getOwnedNotebook(ctx, id, actor)
	if err != nil {
		return dto.NotebookResponse{}, err
	}
	return dto.NewNotebookResponse(notebook), nil
}

func (s *workspaceService) CreateNotebook(ctx context.Context, payload dto.NotebookSaveRequest, actor Actor) (dto.NotebookResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotebookResponse{}, err
	}

	notebook := models.Notebook{
		OwnerID: actor.ID,
		Title:   strings.TrimSpace(payload.Title),
		Subject: strings.TrimSpace(payload.Subject),
		Cells:   datatypes.JSON(payload.Cells),
	}

	if err := s.notebooks.Create(ctx, &notebook); err != nil {
		return dto.NotebookResponse{}, err
	}

	return dto.NewNotebookResponse(notebook), nil
}

func (s *workspaceService) UpdateNotebook(ctx context.Context, id uint, payload dto.NotebookSaveRequest, actor Actor) (dto.NotebookResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotebookResponse{}, err
	}

	notebook, err := s.getOwnedNotebook(ctx, id, actor)
	if err != nil {
		return dto.NotebookResponse{}, err
	}

	notebook.Title = strings.TrimSpace(payload.Title)
	notebook.Subject = strings.TrimSpace(payload.Subject)
	notebook.Cells = datatypes.JSON(payload.Cells)

	if err := s.notebooks.Update(ctx, &notebook); err != nil {
		return dto.NotebookResponse{}, err
	}

	return dto.NewNotebookResponse(notebook), nil
}

func (s *workspaceService) DeleteNotebook(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.getOwnedNotebook(ctx, id, actor); err != nil {
		return err
	}
	return s.notebooks.Delete(ctx, id)
}

func (s *workspaceService) ListSpreadsheets(ctx context.Context, actor Actor) ([]dto.SpreadsheetResponse, error) {
	sheets, err := s.spreadsheets.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewSpreadsheetResponseSlice(sheets), nil
}

func (s *workspaceService) GetSpreadsheet(ctx context.Context, id uint, actor Actor) (dto.SpreadsheetResponse, error) {
	sheet, err := s.getOwnedSpreadsheet(ctx, id, actor)
	if err != nil {
		return dto.SpreadsheetResponse{}, err
	}
	return dto.NewSpreadsheetResponse(sheet), nil
}

func (s *workspaceService) CreateSpreadsheet(ctx context.Context, payload dto.SpreadsheetSaveRequest, actor Actor) (dto.SpreadsheetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SpreadsheetResponse{}, err
	}

	sheet := models.Spreadsheet{
		OwnerID: actor.ID,
		Title:   strings.TrimSpace(payload.Title),
		Rows:    datatypes.JSON(payload.Rows),
	}

	if err := s.spreadsheets.Create(ctx, &sheet); err != nil {
		return dto.SpreadsheetResponse{}, err
	}

	return dto.NewSpreadsheetResponse(sheet), nil
}

func (s *workspaceService) UpdateSpreadsheet(ctx context.Context, id uint, payload dto.SpreadsheetSaveRequest, actor Actor) (dto.SpreadsheetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SpreadsheetResponse{}, err
	}

	sheet, err := s.getOwnedSpreadsheet(ctx, id, actor)
	if err != nil {
		return dto.SpreadsheetResponse{}, err
	}

	sheet.Title = strings.TrimSpace(payload.Title)
	sheet.Rows = datatypes.JSON(payload.Rows)

	if err := s.spreadsheets.Update(ctx, &sheet); err != nil {
		return dto.SpreadsheetResponse{}, err
	}

	return dto.NewSpreadsheetResponse(sheet), nil
}

func (s *workspaceService) DeleteSpreadsheet(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.getOwnedSpreadsheet(ctx, id, actor); err != nil {
		return err
	}
	return s.spreadsheets.Delete(ctx, id)
}

// Ownership is checked after existence so a stolen id still reads as missing,
// not forbidden, to non-owners.
func (s *workspaceService) getOwnedNotebook(ctx context.Context, id uint, actor Actor) (models.Notebook, error) {
	notebook, err := s.notebooks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Notebook{}, ErrDocumentNotFound
		}
		return models.Notebook{}, err
	}
	if notebook.OwnerID != actor.ID {
		return models.Notebook{}, ErrDocumentNotFound
	}
	return notebook, nil
}

func (s *workspaceService) getOwnedSpreadsheet(ctx context.Context, id uint, actor Actor) (models.Spreadsheet, error) {
	sheet, err := s.spreadsheets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Spreadsheet{}, ErrDocumentNotFound
		}
		return models.Spreadsheet{}, err
	}
	if sheet.OwnerID != actor.ID {
		return models.Spreadsheet{}, ErrDocumentNotFound
	}
	return sheet, nil
}
