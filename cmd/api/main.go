package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/config"
	"github.com/brightclass/portal-api/internal/database"
	"github.com/brightclass/portal-api/internal/handler"
	"github.com/brightclass/portal-api/internal/middleware"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
	"github.com/brightclass/portal-api/internal/router"
	"github.com/brightclass/portal-api/internal/service"
	"github.com/brightclass/portal-api/pkg/ai"
	cloud "github.com/brightclass/portal-api/pkg/cloudinary"
	"github.com/brightclass/portal-api/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Submission{},
		&models.Feedback{},
		&models.LearningProfile{},
		&models.Notification{},
		&models.TutorMessage{},
		&models.Notebook{},
		&models.Spreadsheet{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	openAI, err := ai.NewOpenAIMarker(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create openai client: %v", err)
	}
	marker := ai.NewLimitedMarker(openAI, int64(cfg.MarkerMaxConcurrent))

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	profileRepo := repository.NewLearningProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	tutorRepo := repository.NewTutorChatRepository(db)
	notebookRepo := repository.NewNotebookRepository(db)
	spreadsheetRepo := repository.NewSpreadsheetRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, "portal", natsConn, validate, logger)
	profileService := service.NewLearningProfileService(profileRepo, logger)
	gradingService := service.NewGradingService(submissionRepo, feedbackRepo, profileService, marker, notificationService, cfg.GradingTimeout, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, uploader, pdf.New(), notificationService, validate, cfg.MaxUploadMB, logger)
	progressService := service.NewProgressService(submissionRepo, profileService, logger)
	tutorService := service.NewTutorChatService(tutorRepo, profileService, openAI, redisClient, "portal", validate, logger)
	workspaceService := service.NewWorkspaceService(notebookRepo, spreadsheetRepo, validate, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, submissionRepo, userRepo, notificationRepo, profileService, redisClient, cfg.DashboardCacheTTL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationService.Start(ctx)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, gradingService, logger)
	studentHandler := handler.NewStudentHandler(profileService, progressService, logger)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.StreamKeepAlive)
	tutorHandler := handler.NewTutorHandler(tutorService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler:   assignmentHandler,
		SubmissionHandler:   submissionHandler,
		StudentHandler:      studentHandler,
		WorkspaceHandler:    workspaceHandler,
		NotificationHandler: notificationHandler,
		TutorHandler:        tutorHandler,
		DashboardHandler:    dashboardHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
