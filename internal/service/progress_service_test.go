package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
)

type stubProfileService struct {
	fakeProfileService
	profile dto.LearningProfileResponse
}

func (s *stubProfileService) GetProfile(ctx context.Context, studentID uint) (dto.LearningProfileResponse, error) {
	return s.profile, nil
}

func chartSubmission(id uint, percentage float64, createdAt time.Time, subject string) models.Submission {
	grade := "B4"
	marks := percentage
	total := 100.0
	return models.Submission{
		ID:           id,
		AssignmentID: id,
		StudentID:    1,
		Mode:         models.SubmissionModeFinal,
		Status:       models.SubmissionStatusCompleted,
		MarksAwarded: &marks,
		MarksTotal:   &total,
		Percentage:   &percentage,
		Grade:        &grade,
		CreatedAt:    createdAt,
		Assignment:   models.Assignment{ID: id, Subject: subject},
	}
}

func TestGetProgressMovingAverageAndGrouping(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeSubmissionRepo(
		chartSubmission(1, 60, base, "Mathematics"),
		chartSubmission(2, 70, base.Add(24*time.Hour), "Mathematics"),
		chartSubmission(3, 80, base.Add(48*time.Hour), "Physics"),
		chartSubmission(4, 90, base.Add(72*time.Hour), "Mathematics"),
	)
	profiles := &stubProfileService{}

	svc := NewProgressService(repo, profiles, testLogger())

	result, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, result.MovingAverage, 4)
	averages := make([]float64, 0, 4)
	for _, point := range result.MovingAverage {
		averages = append(averages, point.MovingAverage)
	}
	// Window of 3 grows from a single value: 60, (60+70)/2, then full windows.
	require.Equal(t, []float64{60, 65, 70, 80}, averages)

	// Points stay in chronological order.
	require.Equal(t, uint(1), result.MovingAverage[0].SubmissionID)
	require.Equal(t, uint(4), result.MovingAverage[3].SubmissionID)

	subjects := make(map[string]int)
	for _, series := range result.Subjects {
		subjects[series.Subject] = len(series.Points)
	}
	require.Equal(t, map[string]int{"Mathematics": 3, "Physics": 1}, subjects)
}

func TestGetProgressSkipsUngradedAndCancelled(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	graded := chartSubmission(1, 75, base, "Mathematics")

	pending := chartSubmission(2, 50, base.Add(time.Hour), "Mathematics")
	pending.Status = models.SubmissionStatusPending

	cancelled := chartSubmission(3, 50, base.Add(2*time.Hour), "Mathematics")
	cancelled.Status = models.SubmissionStatusCancelled

	repo := newFakeSubmissionRepo(graded, pending, cancelled)
	svc := NewProgressService(repo, &stubProfileService{}, testLogger())

	result, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.MovingAverage, 1)
	require.Equal(t, uint(1), result.MovingAverage[0].SubmissionID)
}

func TestGetProgressWindowIgnoresUnchartedStatuses(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	submissions := make([]models.Submission, 0, 50)
	for i := 1; i <= 20; i++ {
		submissions = append(submissions, chartSubmission(uint(i), 70, base.Add(time.Duration(i)*time.Hour), "Mathematics"))
	}
	// A pile of newer cancelled finals and completed drafts must not crowd
	// graded work out of the most-recent window.
	for i := 21; i <= 45; i++ {
		item := chartSubmission(uint(i), 50, base.Add(time.Duration(i)*time.Hour), "Mathematics")
		if i%2 == 0 {
			item.Status = models.SubmissionStatusCancelled
		} else {
			item.Mode = models.SubmissionModeDraft
			item.MarksAwarded = nil
			item.MarksTotal = nil
			item.Percentage = nil
			item.Grade = nil
		}
		submissions = append(submissions, item)
	}

	repo := newFakeSubmissionRepo(submissions...)
	svc := NewProgressService(repo, &stubProfileService{}, testLogger())

	result, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.MovingAverage, 20)
	require.Equal(t, uint(1), result.MovingAverage[0].SubmissionID)
	require.Equal(t, uint(20), result.MovingAverage[len(result.MovingAverage)-1].SubmissionID)
}

func TestGetProgressInsights(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	// Older group 50,55,60 then recent group 80,85,90: improving.
	repo := newFakeSubmissionRepo(
		chartSubmission(1, 50, base, "Mathematics"),
		chartSubmission(2, 55, base.Add(1*time.Hour), "Mathematics"),
		chartSubmission(3, 60, base.Add(2*time.Hour), "Mathematics"),
		chartSubmission(4, 80, base.Add(3*time.Hour), "Mathematics"),
		chartSubmission(5, 85, base.Add(4*time.Hour), "Mathematics"),
		chartSubmission(6, 90, base.Add(5*time.Hour), "Mathematics"),
	)
	profiles := &stubProfileService{profile: dto.LearningProfileResponse{
		StudentID:           1,
		OverallAbilityLevel: "above_grade",
		StrongTopics:        []string{"Mathematics: Algebra"},
		WeakTopics:          []string{"Mathematics: Geometry"},
		TotalSubmissions:    10,
		DraftSubmissions:    4,
		FinalSubmissions:    6,
	}}

	svc := NewProgressService(repo, profiles, testLogger())

	result, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)

	byType := make(map[string][]dto.Insight)
	for _, insight := range result.Insights {
		byType[insight.Type] = append(byType[insight.Type], insight)
	}

	require.Len(t, byType[dto.InsightStrength], 1)
	require.Equal(t, []string{"Mathematics: Algebra"}, byType[dto.InsightStrength][0].Topics)

	require.Len(t, byType[dto.InsightImprovement], 1)
	require.Equal(t, []string{"Mathematics: Geometry"}, byType[dto.InsightImprovement][0].Topics)

	require.Len(t, byType[dto.InsightTrend], 1)
	require.Contains(t, byType[dto.InsightTrend][0].Message, "improving")

	// Draft usage 4/10 > 0.3 plus the above-grade nudge.
	require.Len(t, byType[dto.InsightRecommendation], 2)
}

func TestGetProgressDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeSubmissionRepo(
		chartSubmission(1, 62, base, "Mathematics"),
		chartSubmission(2, 71, base.Add(time.Hour), "Physics"),
	)
	svc := NewProgressService(repo, &stubProfileService{}, testLogger())

	first, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGetProgressTooFewForTrend(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeSubmissionRepo(
		chartSubmission(1, 60, base, "Mathematics"),
		chartSubmission(2, 70, base.Add(time.Hour), "Mathematics"),
	)
	svc := NewProgressService(repo, &stubProfileService{}, testLogger())

	result, err := svc.GetProgress(context.Background(), 1)
	require.NoError(t, err)
	for _, insight := range result.Insights {
		require.NotEqual(t, dto.InsightTrend, insight.Type)
	}
}
