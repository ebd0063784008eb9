package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/grading"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
)

const (
	// progressWindow caps how many recent submissions feed the charts.
	progressWindow = 20
	// movingAverageSpan is the trailing window for the smoothed trend line.
	movingAverageSpan = 3
	// trendGroupSize is how many submissions each side of the trend
	// comparison uses.
	trendGroupSize = 3
	// insightTopicLimit caps how many topics an insight names.
	insightTopicLimit = 3
	// draftUsageThreshold is the draft share above which we nudge students to
	// keep using draft feedback.
	draftUsageThreshold = 0.3
)

// ProgressService derives progression charts and insight statements from
// stored submissions and the learning profile. It is a pure read: identical
// stored state yields identical output.
type ProgressService interface {
	GetProgress(ctx context.Context, studentID uint) (dto.ProgressResponse, error)
}

type progressService struct {
	submissions repository.SubmissionRepository
	profiles    LearningProfileService
	logger      zerolog.Logger
}

// NewProgressService constructs the progression engine.
func NewProgressService(submissions repository.SubmissionRepository, profiles LearningProfileService, logger zerolog.Logger) ProgressService {
	return &progressService{
		submissions: submissions,
		profiles:    profiles,
		logger:      logger.With().Str("component", "progress_service").Logger(),
	}
}

func (s *progressService) GetProgress(ctx context.Context, studentID uint) (dto.ProgressResponse, error) {
	mode := models.SubmissionModeFinal
	filter := repository.SubmissionFilter{
		StudentID: &studentID,
		Mode:      &mode,
		Statuses:  models.ProgressStatuses(),
		Limit:     progressWindow,
	}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	graded := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.IsGraded() && submission.Percentage != nil {
			graded = append(graded, submission)
		}
	}
	// List returns newest first; flip to chronological order for charting.
	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].CreatedAt.Before(graded[j].CreatedAt)
	})

	profile, err := s.profiles.GetProfile(ctx, studentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	points := buildProgressPoints(graded)

	return dto.ProgressResponse{
		StudentID:     studentID,
		Subjects:      groupBySubject(points),
		MovingAverage: points,
		Insights:      buildInsights(points, profile),
	}, nil
}

func buildProgressPoints(submissions []models.Submission) []dto.ProgressPoint {
	percentages := make([]float64, 0, len(submissions))
	for _, submission := range submissions {
		percentages = append(percentages, *submission.Percentage)
	}
	averages := grading.MovingAverage(percentages, movingAverageSpan)

	points := make([]dto.ProgressPoint, 0, len(submissions))
	for i, submission := range submissions {
		grade := ""
		if submission.Grade != nil {
			grade = *submission.Grade
		}
		points = append(points, dto.ProgressPoint{
			SubmissionID:  submission.ID,
			AssignmentID:  submission.AssignmentID,
			Subject:       submission.Assignment.Subject,
			Percentage:    percentages[i],
			Grade:         grade,
			SubmittedAt:   submission.CreatedAt,
			MovingAverage: averages[i],
		})
	}
	return points
}

func groupBySubject(points []dto.ProgressPoint) []dto.SubjectSeries {
	index := make(map[string]int)
	series := make([]dto.SubjectSeries, 0)
	for _, point := range points {
		i, ok := index[point.Subject]
		if !ok {
			i = len(series)
			index[point.Subject] = i
			series = append(series, dto.SubjectSeries{Subject: point.Subject})
		}
		series[i].Points = append(series[i].Points, point)
	}
	return series
}

// buildInsights assembles the typed insight statements. Each rule is
// evaluated independently; any subset may be empty.
func buildInsights(points []dto.ProgressPoint, profile dto.LearningProfileResponse) []dto.Insight {
	insights := make([]dto.Insight, 0, 5)

	if len(profile.StrongTopics) > 0 {
		topics := capTopics(profile.StrongTopics)
		insights = append(insights, dto.Insight{
			Type:    dto.InsightStrength,
			Message: fmt.Sprintf("You are performing strongly in %s. Keep it up!", strings.Join(topics, ", ")),
			Topics:  topics,
		})
	}

	if len(profile.WeakTopics) > 0 {
		topics := capTopics(profile.WeakTopics)
		insights = append(insights, dto.Insight{
			Type:    dto.InsightImprovement,
			Message: fmt.Sprintf("Focus your revision on %s.", strings.Join(topics, ", ")),
			Topics:  topics,
		})
	}

	if trend, ok := trendInsight(points); ok {
		insights = append(insights, trend)
	}

	if profile.DraftSubmissions > 0 && profile.FinalSubmissions > 0 && profile.TotalSubmissions > 0 {
		share := float64(profile.DraftSubmissions) / float64(profile.TotalSubmissions)
		if share > draftUsageThreshold {
			insights = append(insights, dto.Insight{
				Type:    dto.InsightRecommendation,
				Message: "You make good use of draft feedback before final submissions. Keep refining your drafts.",
			})
		}
	}

	switch profile.OverallAbilityLevel {
	case string(grading.AbilityAboveGrade):
		insights = append(insights, dto.Insight{
			Type:    dto.InsightRecommendation,
			Message: "You are working above grade level. Ask your teacher for extension tasks.",
		})
	case string(grading.AbilityBelowGrade):
		insights = append(insights, dto.Insight{
			Type:    dto.InsightRecommendation,
			Message: "You are currently below grade level. Consider booking extra tutoring sessions.",
		})
	}

	return insights
}

// trendInsight compares the most recent trendGroupSize submissions against
// the preceding group. It needs at least three submissions overall and at
// least one in the older group.
func trendInsight(points []dto.ProgressPoint) (dto.Insight, bool) {
	if len(points) < trendGroupSize {
		return dto.Insight{}, false
	}

	recent := points[len(points)-trendGroupSize:]
	olderStart := len(points) - 2*trendGroupSize
	if olderStart < 0 {
		olderStart = 0
	}
	older := points[olderStart : len(points)-trendGroupSize]
	if len(older) == 0 {
		return dto.Insight{}, false
	}

	recentMean := grading.Mean(percentagesOf(recent))
	olderMean := grading.Mean(percentagesOf(older))

	var message string
	switch grading.TrendLabel(recentMean, olderMean) {
	case grading.TrendImproving:
		message = "Your recent scores are improving. Great progress!"
	case grading.TrendDeclining:
		message = "Your recent scores have dipped. Review your last few assignments."
	default:
		message = "Your scores have been consistent recently."
	}

	return dto.Insight{Type: dto.InsightTrend, Message: message}, true
}

func percentagesOf(points []dto.ProgressPoint) []float64 {
	values := make([]float64, 0, len(points))
	for _, point := range points {
		values = append(values, point.Percentage)
	}
	return values
}

func capTopics(topics []string) []string {
	if len(topics) > insightTopicLimit {
		topics = topics[:insightTopicLimit]
	}
	return append([]string(nil), topics...)
}
