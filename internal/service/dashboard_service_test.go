package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
)

type fakeUserRepo struct {
	counts map[string]int64
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Count(ctx context.Context, role string) (int64, error) {
	return f.counts[role], nil
}

type dashboardProfileService struct {
	fakeProfileService
	profile dto.LearningProfileResponse
}

func (d *dashboardProfileService) GetProfile(ctx context.Context, studentID uint) (dto.LearningProfileResponse, error) {
	return d.profile, nil
}

func dashboardSubmission(id, assignmentID uint, status string) models.Submission {
	return models.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    3,
		Mode:         models.SubmissionModeFinal,
		Status:       status,
	}
}

func TestStudentDashboardCountsAndUpcoming(t *testing.T) {
	open := draftAssignment(1, 7)
	open.Status = models.AssignmentStatusPublished
	open.DueDate = time.Now().Add(48 * time.Hour)
	submittedTo := draftAssignment(2, 7)
	submittedTo.Status = models.AssignmentStatusPublished
	submittedTo.DueDate = time.Now().Add(48 * time.Hour)
	overdue := draftAssignment(3, 7)
	overdue.Status = models.AssignmentStatusPublished
	overdue.DueDate = time.Now().Add(-time.Hour)

	assignments := newFakeAssignmentRepo(open, submittedTo, overdue)
	submissions := newFakeSubmissionRepo(
		dashboardSubmission(1, 2, models.SubmissionStatusCompleted),
		dashboardSubmission(2, 2, models.SubmissionStatusPending),
	)
	profiles := &dashboardProfileService{profile: dto.LearningProfileResponse{
		StudentID:           3,
		OverallAbilityLevel: "at_grade",
		RecentGrades:        []models.RecentGrade{{Percentage: 70}, {Percentage: 80}},
	}}

	svc := NewDashboardService(assignments, submissions, &fakeUserRepo{}, newFakeNotificationRepo(), profiles, testRedis(t), time.Minute, testLogger())

	dashboard, err := svc.StudentDashboard(context.Background(), 3)
	require.NoError(t, err)

	require.Equal(t, 1, dashboard.PendingCount)
	require.Equal(t, 1, dashboard.CompletedCount)
	require.Equal(t, 75.0, dashboard.AverageRecent)
	require.Equal(t, "at_grade", dashboard.AbilityLevel)

	// Only the open assignment with nothing submitted is upcoming; past-due
	// and already-submitted work stays out.
	require.Len(t, dashboard.UpcomingWork, 1)
	require.Equal(t, uint(1), dashboard.UpcomingWork[0].ID)
}

func TestStudentDashboardCached(t *testing.T) {
	assignment := draftAssignment(1, 7)
	assignment.Status = models.AssignmentStatusPublished
	assignment.DueDate = time.Now().Add(48 * time.Hour)
	assignments := newFakeAssignmentRepo(assignment)
	submissions := newFakeSubmissionRepo()
	profiles := &dashboardProfileService{profile: dto.LearningProfileResponse{StudentID: 3}}

	svc := NewDashboardService(assignments, submissions, &fakeUserRepo{}, newFakeNotificationRepo(), profiles, testRedis(t), time.Minute, testLogger())

	first, err := svc.StudentDashboard(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, first.UpcomingWork, 1)

	// New data arriving inside the TTL is not reflected until expiry.
	require.NoError(t, submissions.Create(context.Background(), &models.Submission{
		AssignmentID: 1, StudentID: 3, Status: models.SubmissionStatusPending,
	}))

	second, err := svc.StudentDashboard(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, first.PendingCount, second.PendingCount)
	require.Len(t, second.UpcomingWork, 1)
}

func TestTeacherDashboardReviewQueues(t *testing.T) {
	mine := draftAssignment(1, 7)
	mine.Status = models.AssignmentStatusPublished
	other := draftAssignment(2, 8)
	other.Status = models.AssignmentStatusPublished

	assignments := newFakeAssignmentRepo(mine, other)
	submissions := newFakeSubmissionRepo(
		dashboardSubmission(1, 1, models.SubmissionStatusCompleted),
		dashboardSubmission(2, 1, models.SubmissionStatusFailed),
		dashboardSubmission(3, 2, models.SubmissionStatusCompleted),
	)

	svc := NewDashboardService(assignments, submissions, &fakeUserRepo{}, newFakeNotificationRepo(), &dashboardProfileService{}, testRedis(t), time.Minute, testLogger())

	dashboard, err := svc.TeacherDashboard(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, 1, dashboard.OpenAssignments)
	require.Len(t, dashboard.AwaitingReview, 1)
	require.Equal(t, uint(1), dashboard.AwaitingReview[0].ID)
	require.Len(t, dashboard.FailedGradings, 1)
	require.Equal(t, uint(2), dashboard.FailedGradings[0].ID)
}

func TestAdminDashboardTotals(t *testing.T) {
	assignments := newFakeAssignmentRepo(draftAssignment(1, 7), draftAssignment(2, 7))
	submissions := newFakeSubmissionRepo(dashboardSubmission(1, 1, models.SubmissionStatusCompleted))
	users := &fakeUserRepo{counts: map[string]int64{
		models.RoleStudent: 120,
		models.RoleTeacher: 9,
	}}

	svc := NewDashboardService(assignments, submissions, users, newFakeNotificationRepo(), &dashboardProfileService{}, testRedis(t), time.Minute, testLogger())

	dashboard, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(120), dashboard.Students)
	require.Equal(t, int64(9), dashboard.Teachers)
	require.Equal(t, 2, dashboard.Assignments)
	require.Equal(t, 1, dashboard.Submissions)
}
