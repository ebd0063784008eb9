package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

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

// testAuth reads the caller identity from test headers so one app instance
// can exercise every role.
func testAuth(c *fiber.Ctx) error {
	if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
		c.Locals("user_id", uint(id))
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func setupAssignmentApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		JWTMiddleware:     testAuth,
	})

	return app
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asRole(req *http.Request, userID uint, role string) *http.Request {
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	req.Header.Set("X-Test-Role", role)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func assignmentPayload() dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		Title:   "Quadratic Equations",
		Subject: "Mathematics",
		Class:   "4E1",
		Questions: []dto.QuestionPayload{
			{ID: "q1", Text: "Solve x^2-5x+6=0.", Marks: 40, Topic: "Algebra"},
		},
		TotalMarks: 40,
		DueDate:    time.Now().Add(7 * 24 * time.Hour),
	}
}

func TestAssignmentHandlerLifecycle(t *testing.T) {
	app := setupAssignmentApp(t)

	resp, err := app.Test(asRole(jsonRequest(t, "POST", "/api/v1/assignments", assignmentPayload()), 7, models.RoleTeacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Success bool                   `json:"success"`
		Data    dto.AssignmentResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &createResp)
	require.True(t, createResp.Success)
	require.Equal(t, models.AssignmentStatusDraft, createResp.Data.Status)
	require.NotZero(t, createResp.Data.ID)

	assignmentPath := fmt.Sprintf("/api/v1/assignments/%d", createResp.Data.ID)

	// Students never see drafts.
	resp, err = app.Test(asRole(jsonRequest(t, "GET", assignmentPath, nil), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(asRole(jsonRequest(t, "POST", assignmentPath+"/publish", nil), 7, models.RoleTeacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(asRole(jsonRequest(t, "GET", "/api/v1/assignments", nil), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listResp struct {
		Success bool                     `json:"success"`
		Data    []dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &listResp)
	require.Len(t, listResp.Data, 1)
	require.Equal(t, models.AssignmentStatusPublished, listResp.Data[0].Status)
}

func TestAssignmentHandlerStudentCannotCreate(t *testing.T) {
	app := setupAssignmentApp(t)

	resp, err := app.Test(asRole(jsonRequest(t, "POST", "/api/v1/assignments", assignmentPayload()), 3, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssignmentHandlerOwnershipEnforced(t *testing.T) {
	app := setupAssignmentApp(t)

	resp, err := app.Test(asRole(jsonRequest(t, "POST", "/api/v1/assignments", assignmentPayload()), 7, models.RoleTeacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)

	update := map[string]interface{}{"title": "Hijacked"}
	resp, err = app.Test(asRole(jsonRequest(t, "PATCH", fmt.Sprintf("/api/v1/assignments/%d", createResp.Data.ID), update), 8, models.RoleTeacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := setupAssignmentApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &health)
	require.True(t, health.Success)
	require.Equal(t, "ok", health.Data.Status)
}
