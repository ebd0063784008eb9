package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/grading"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
)

const dashboardRecentLimit = 5

// DashboardService builds the role landing-page view models. Responses are
// cached in redis per user for a short TTL; the cache is advisory and every
// failure falls through to a fresh build.
type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	TeacherDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error)
	AdminDashboard(ctx context.Context) (dto.AdminDashboardResponse, error)
}

type dashboardService struct {
	assignments   repository.AssignmentRepository
	submissions   repository.SubmissionRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	profiles      LearningProfileService
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	profiles LearningProfileService,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) DashboardService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &dashboardService{
		assignments:   assignments,
		submissions:   submissions,
		users:         users,
		notifications: notifications,
		profiles:      profiles,
		cache:         cache,
		cacheTTL:      ttl,
		logger:        logger.With().Str("component", "dashboard_service").Logger(),
		now:           time.Now,
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	var cached dto.StudentDashboardResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	published := models.AssignmentStatusPublished
	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{Status: &published})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	profile, err := s.profiles.GetProfile(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildStudentDashboard(studentID, assignments, submissions, profile)

	if unread, err := s.countUnread(ctx, studentID); err == nil {
		response.UnreadCount = unread
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) buildStudentDashboard(studentID uint, assignments []models.Assignment, submissions []models.Submission, profile dto.LearningProfileResponse) dto.StudentDashboardResponse {
	now := s.now()

	submitted := make(map[uint]bool, len(submissions))
	var pending, completed int
	recentFeedback := make([]dto.SubmissionResponse, 0, dashboardRecentLimit)

	for _, submission := range submissions {
		submitted[submission.AssignmentID] = true
		switch submission.Status {
		case models.SubmissionStatusPending, models.SubmissionStatusProcessing:
			pending++
		case models.SubmissionStatusCompleted, models.SubmissionStatusApproved, models.SubmissionStatusReturned:
			completed++
			if len(recentFeedback) < dashboardRecentLimit {
				recentFeedback = append(recentFeedback, dto.NewSubmissionResponse(submission))
			}
		}
	}

	upcoming := make([]dto.AssignmentResponse, 0)
	for _, assignment := range assignments {
		if submitted[assignment.ID] || assignment.IsPastDue(now) {
			continue
		}
		upcoming = append(upcoming, dto.NewAssignmentResponse(assignment))
	}

	var average float64
	if len(profile.RecentGrades) > 0 {
		values := make([]float64, 0, len(profile.RecentGrades))
		for _, grade := range profile.RecentGrades {
			values = append(values, grade.Percentage)
		}
		average = grading.Round1(grading.Mean(values))
	}

	return dto.StudentDashboardResponse{
		StudentID:      studentID,
		AbilityLevel:   profile.OverallAbilityLevel,
		PendingCount:   pending,
		CompletedCount: completed,
		AverageRecent:  average,
		UpcomingWork:   upcoming,
		RecentFeedback: recentFeedback,
		StrongTopics:   profile.StrongTopics,
		WeakTopics:     profile.WeakTopics,
		GeneratedAt:    now,
	}
}

func (s *dashboardService) TeacherDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:teacher:%d", teacherID)

	var cached dto.TeacherDashboardResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	published := models.AssignmentStatusPublished
	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{TeacherID: &teacherID, Status: &published})
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	awaiting := make([]dto.SubmissionResponse, 0)
	failed := make([]dto.SubmissionResponse, 0)
	for _, assignment := range assignments {
		assignmentID := assignment.ID
		rows, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
		if err != nil {
			return dto.TeacherDashboardResponse{}, err
		}
		for _, submission := range rows {
			switch submission.Status {
			case models.SubmissionStatusCompleted:
				awaiting = append(awaiting, dto.NewSubmissionResponse(submission))
			case models.SubmissionStatusFailed:
				failed = append(failed, dto.NewSubmissionResponse(submission))
			}
		}
	}

	response := dto.TeacherDashboardResponse{
		TeacherID:       teacherID,
		OpenAssignments: len(assignments),
		AwaitingReview:  awaiting,
		FailedGradings:  failed,
		GeneratedAt:     s.now(),
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) AdminDashboard(ctx context.Context) (dto.AdminDashboardResponse, error) {
	cacheKey := "dashboard:admin"

	var cached dto.AdminDashboardResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	students, err := s.users.Count(ctx, models.RoleStudent)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	teachers, err := s.users.Count(ctx, models.RoleTeacher)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{})
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	response := dto.AdminDashboardResponse{
		Students:    students,
		Teachers:    teachers,
		Assignments: len(assignments),
		Submissions: len(submissions),
		GeneratedAt: s.now(),
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) countUnread(ctx context.Context, userID uint) (int, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, notification := range notifications {
		if !notification.Read {
			unread++
		}
	}
	return unread, nil
}

func (s *dashboardService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		return false
	}
	return true
}

func (s *dashboardService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}
