package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/config"
	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/handler"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
	"github.com/brightclass/portal-api/internal/router"
	"github.com/brightclass/portal-api/internal/service"
)

func setupWorkspaceApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notebook{}, &models.Spreadsheet{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	workspaceService := service.NewWorkspaceService(
		repository.NewNotebookRepository(db),
		repository.NewSpreadsheetRepository(db),
		validate,
		logger,
	)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		WorkspaceHandler: workspaceHandler,
		JWTMiddleware:    testAuth,
	})

	return app
}

func notebookPayload(title string) dto.NotebookSaveRequest {
	return dto.NotebookSaveRequest{
		Title:   title,
		Subject: "Physics",
		Cells:   json.RawMessage(`[{"type":"markdown","source":"# Kinematics"}]`),
	}
}

func TestNotebookCRUD(t *testing.T) {
	app := setupWorkspaceApp(t)

	resp, err := app.Test(asRole(jsonRequest(t, "POST", "/api/v1/notebooks", notebookPayload("Week 1 notes")), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Success bool                 `json:"success"`
		Data    dto.NotebookResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)
	require.True(t, createResp.Success)
	require.Equal(t, uint(3), createResp.Data.OwnerID)

	notebookPath := fmt.Sprintf("/api/v1/notebooks/%d", createResp.Data.ID)

	resp, err = app.Test(asRole(jsonRequest(t, "PUT", notebookPath, notebookPayload("Week 1 notes (revised)")), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updateResp struct {
		Data dto.NotebookResponse `json:"data"`
	}
	decodeResponse(t, resp, &updateResp)
	require.Equal(t, "Week 1 notes (revised)", updateResp.Data.Title)

	resp, err = app.Test(asRole(jsonRequest(t, "DELETE", notebookPath, nil), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(asRole(jsonRequest(t, "GET", notebookPath, nil), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNotebookScopedToOwner(t *testing.T) {
	app := setupWorkspaceApp(t)

	resp, err := app.Test(asRole(jsonRequest(t, "POST", "/api/v1/notebooks", notebookPayload("Private notes")), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Data dto.NotebookResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)

	// Another user reads the id as missing, not forbidden.
	resp, err = app.Test(asRole(jsonRequest(t, "GET", fmt.Sprintf("/api/v1/notebooks/%d", createResp.Data.ID), nil), 4, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(asRole(jsonRequest(t, "GET", "/api/v1/notebooks", nil), 4, models.RoleStudent))
	require.NoError(t, err)

	var listResp struct {
		Data []dto.NotebookResponse `json:"data"`
	}
	decodeResponse(t, resp, &listResp)
	require.Empty(t, listResp.Data)
}

func TestSpreadsheetValidation(t *testing.T) {
	app := setupWorkspaceApp(t)

	payload := dto.SpreadsheetSaveRequest{Title: "", Rows: json.RawMessage(`[]`)}
	resp, err := app.Test(asRole(jsonRequest(t, "POST", "/api/v1/spreadsheets", payload), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	payload.Title = "Grade tracker"
	resp, err = app.Test(asRole(jsonRequest(t, "POST", "/api/v1/spreadsheets", payload), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Data dto.SpreadsheetResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)
	require.Equal(t, "Grade tracker", createResp.Data.Title)
	require.Equal(t, uint(3), createResp.Data.OwnerID)
}
