package dto

import (
	"encoding/json"
	"time"

	"github.com/brightclass/portal-api/internal/models"
)

// NotebookSaveRequest creates or replaces a notebook's content.
type NotebookSaveRequest struct {
	Title   string          `json:"title" validate:"required,min=1"`
	Subject string          `json:"subject"`
	Cells   json.RawMessage `json:"cells" validate:"required"`
}

// NotebookResponse serializes a notebook.
type NotebookResponse struct {
	ID        uint            `json:"id"`
	OwnerID   uint            `json:"owner_id"`
	Title     string          `json:"title"`
	Subject   string          `json:"subject"`
	Cells     json.RawMessage `json:"cells"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewNotebookResponse converts a Notebook model into a DTO.
func NewNotebookResponse(model models.Notebook) NotebookResponse {
	return NotebookResponse{
		ID:        model.ID,
		OwnerID:   model.OwnerID,
		Title:     model.Title,
		Subject:   model.Subject,
		Cells:     json.RawMessage(model.Cells),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewNotebookResponseSlice converts a slice of models.
func NewNotebookResponseSlice(items []models.Notebook) []NotebookResponse {
	responses := make([]NotebookResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewNotebookResponse(item))
	}
	return responses
}

// SpreadsheetSaveRequest creates or replaces a spreadsheet's content.
type SpreadsheetSaveRequest struct {
	Title string          `json:"title" validate:"required,min=1"`
	Rows  json.RawMessage `json:"rows" validate:"required"`
}

// SpreadsheetResponse serializes a spreadsheet.
type SpreadsheetResponse struct {
	ID        uint            `json:"id"`
	OwnerID   uint            `json:"owner_id"`
	Title     string          `json:"title"`
	Rows      json.RawMessage `json:"rows"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSpreadsheetResponse converts a Spreadsheet model into a DTO.
func NewSpreadsheetResponse(model models.Spreadsheet) SpreadsheetResponse {
	return SpreadsheetResponse{
		ID:        model.ID,
		OwnerID:   model.OwnerID,
		Title:     model.Title,
		Rows:      json.RawMessage(model.Rows),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewSpreadsheetResponseSlice converts a slice of models.
func NewSpreadsheetResponseSlice(items []models.Spreadsheet) []SpreadsheetResponse {
	responses := make([]SpreadsheetResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSpreadsheetResponse(item))
	}
	return responses
}
