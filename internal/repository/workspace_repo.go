package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/models"
)

// NotebookRepository defines data operations for notebooks.
type NotebookRepository interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Notebook, error)
	GetByID(ctx context.Context, id uint) (models.Notebook, error)
	Create(ctx context.Context, notebook *models.Notebook) error
	Update(ctx context.Context, notebook *models.Notebook) error
	Delete(ctx context.Context, id uint) error
}

type notebookRepository struct {
	db *gorm.DB
}

// NewNotebookRepository instantiates the repository.
func NewNotebookRepository(db *gorm.DB) NotebookRepository {
	return &notebookRepository{db: db}
}

func (r *notebookRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Notebook, error) {
	var notebooks []models.Notebook
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&notebooks).Error
	if err != nil {
		return nil, err
	}

	return notebooks, nil
}

func (r *notebookRepository) GetByID(ctx context.Context, id uint) (models.Notebook, error) {
	var notebook models.Notebook
	if err := r.db.WithContext(ctx).First(&notebook, id).Error; err != nil {
		return models.Notebook{}, err
	}

	return notebook, nil
}

func (r *notebookRepository) Create(ctx context.Context, notebook *models.Notebook) error {
	return r.db.WithContext(ctx).Create(notebook).Error
}

func (r *notebookRepository) Update(ctx context.Context, notebook *models.Notebook) error {
	return r.db.WithContext(ctx).Save(notebook).Error
}

func (r *notebookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notebook{}, id).Error
}

// SpreadsheetRepository defines data operations for spreadsheets.
type SpreadsheetRepository interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Spreadsheet, error)
	GetByID(ctx context.Context, id uint) (models.Spreadsheet, error)
	Create(ctx context.Context, sheet *models.Spreadsheet) error
	Update(ctx context.Context, sheet *models.Spreadsheet) error
	Delete(ctx context.Context, id uint) error
}

type spreadsheetRepository struct {
	db *gorm.DB
}

// NewSpreadsheetRepository instantiates the repository.
func NewSpreadsheetRepository(db *gorm.DB) SpreadsheetRepository {
	return &spreadsheetRepository{db: db}
}

func (r *spreadsheetRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Spreadsheet, error) {
	var sheets []models.Spreadsheet
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&sheets).Error
	if err != nil {
		return nil, err
	}

	return sheets, nil
}

func (r *spreadsheetRepository) GetByID(ctx context.Context, id uint) (models.Spreadsheet, error) {
	var sheet models.Spreadsheet
	if err := r.db.WithContext(ctx).First(&sheet, id).Error; err != nil {
		return models.Spreadsheet{}, err
	}

	return sheet, nil
}

func (r *spreadsheetRepository) Create(ctx context.Context, sheet *models.Spreadsheet) error {
	return r.db.WithContext(ctx).Create(sheet).Error
}

func (r *spreadsheetRepository) Update(ctx context.Context, sheet *models.Spreadsheet) error {
	return r.db.WithContext(ctx).Save(sheet).Error
}

func (r *spreadsheetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Spreadsheet{}, id).Error
}
