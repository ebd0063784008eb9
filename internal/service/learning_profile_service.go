package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/grading"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
)

// GradeEvent carries one final-grading outcome into the profile aggregator.
type GradeEvent struct {
	AssignmentID uint
	Subject      string
	Topic        string
	Percentage   float64
	Grade        string
	TopicScores  map[string]models.TopicScore
}

// LearningProfileService maintains the cumulative per-student learning
// profile. It is the only writer of LearningProfile rows.
type LearningProfileService interface {
	RecordFinalGrade(ctx context.Context, studentID uint, event GradeEvent) error
	RecordDraftFeedback(ctx context.Context, studentID uint) error
	GetProfile(ctx context.Context, studentID uint) (dto.LearningProfileResponse, error)
	AbilityLevel(ctx context.Context, studentID uint) string
}

type learningProfileService struct {
	profiles repository.LearningProfileRepository
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	// Profile updates are read-modify-write over one row per student, so
	// concurrent grading completions for the same student must be serialized
	// or increments get lost.
	locks *studentLocks
}

// NewLearningProfileService constructs the profile aggregator.
func NewLearningProfileService(profiles repository.LearningProfileRepository, logger zerolog.Logger) LearningProfileService {
	return &learningProfileService{
		profiles: profiles,
		logger:   logger.With().Str("component", "learning_profile_service").Logger(),
		tracer:   otel.Tracer("github.com/brightclass/portal-api/internal/service/learning_profile"),
		now:      time.Now,
		locks:    newStudentLocks(),
	}
}

func (s *learningProfileService) RecordFinalGrade(ctx context.Context, studentID uint, event GradeEvent) error {
	ctx, span := s.tracer.Start(ctx, "profile.record_final_grade", trace.WithAttributes(
		attribute.Int64("student_id", int64(studentID)),
		attribute.String("subject", event.Subject),
		attribute.Float64("percentage", event.Percentage),
	))
	defer span.End()

	unlock := s.locks.lock(studentID)
	defer unlock()

	profile, err := s.profiles.GetOrCreate(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	now := s.now()

	profile.TotalSubmissions++
	profile.FinalSubmissions++

	entry := models.RecentGrade{
		AssignmentID: event.AssignmentID,
		Subject:      event.Subject,
		Topic:        event.Topic,
		Percentage:   event.Percentage,
		Grade:        event.Grade,
		Date:         now,
	}
	profile.RecentGrades = append([]models.RecentGrade{entry}, profile.RecentGrades...)
	if len(profile.RecentGrades) > models.RecentGradesLimit {
		profile.RecentGrades = profile.RecentGrades[:models.RecentGradesLimit]
	}

	subject := profile.SubjectEntry(event.Subject)
	subject.NoteAssignment(event.AssignmentID)
	subject.CompletedAssignments++
	subject.LastActivityDate = now

	// The subject average is recomputed from the capped recent-grades window,
	// so grades age out of it once they fall off the end. Topic averages below
	// are full incremental means since the topic's first attempt.
	subject.AverageScore = grading.Round1(grading.Mean(subjectPercentages(profile.RecentGrades, event.Subject)))

	for _, topicName := range sortedTopicNames(event.TopicScores) {
		score := event.TopicScores[topicName]
		topic := subject.TopicEntry(topicName)
		previousAverage := topic.AverageScore

		topic.TotalAttempts++
		attempts := float64(topic.TotalAttempts)
		topic.AverageScore = math.Round((previousAverage*(attempts-1) + score.Percentage) / attempts)
		topic.LastAttemptDate = now
		topic.StrengthLevel = string(grading.ClassifyStrength(topic.AverageScore))
		if topic.TotalAttempts > 1 {
			topic.Trend = grading.TrendLabel(score.Percentage, previousAverage)
		} else {
			topic.Trend = grading.TrendConsistent
		}
	}

	profile.StrongTopics, profile.WeakTopics = collectTopicLists(profile.SubjectPerformance)
	profile.OverallAbilityLevel = string(grading.ClassifyAbility(grading.Mean(recentPercentages(profile.RecentGrades))))
	profile.ProficiencyUpdatedAt = now

	if err := s.profiles.Save(ctx, &profile); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Str("subject", event.Subject).
		Float64("percentage", event.Percentage).
		Str("ability", profile.OverallAbilityLevel).
		Msg("learning profile updated")

	return nil
}

func (s *learningProfileService) RecordDraftFeedback(ctx context.Context, studentID uint) error {
	unlock := s.locks.lock(studentID)
	defer unlock()

	profile, err := s.profiles.GetOrCreate(ctx, studentID)
	if err != nil {
		return err
	}

	profile.TotalSubmissions++
	profile.DraftSubmissions++

	return s.profiles.Save(ctx, &profile)
}

func (s *learningProfileService) GetProfile(ctx context.Context, studentID uint) (dto.LearningProfileResponse, error) {
	profile, err := s.profiles.GetOrCreate(ctx, studentID)
	if err != nil {
		return dto.LearningProfileResponse{}, err
	}

	return dto.NewLearningProfileResponse(profile), nil
}

// AbilityLevel returns the student's current ability level, defaulting to
// at_grade when the profile cannot be read. It never fails the caller.
func (s *learningProfileService) AbilityLevel(ctx context.Context, studentID uint) string {
	profile, err := s.profiles.GetByStudent(ctx, studentID)
	if err != nil {
		return string(grading.AbilityAtGrade)
	}
	return profile.OverallAbilityLevel
}

func subjectPercentages(grades []models.RecentGrade, subject string) []float64 {
	values := make([]float64, 0, len(grades))
	for _, grade := range grades {
		if grade.Subject == subject {
			values = append(values, grade.Percentage)
		}
	}
	return values
}

func recentPercentages(grades []models.RecentGrade) []float64 {
	values := make([]float64, 0, len(grades))
	for _, grade := range grades {
		values = append(values, grade.Percentage)
	}
	return values
}

func sortedTopicNames(scores map[string]models.TopicScore) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// collectTopicLists rebuilds the flattened strong/weak topic lists across all
// subjects. Full recomputation keeps the lists consistent after any topic's
// strength level changes.
func collectTopicLists(subjects []models.SubjectPerformance) (strong, weak []string) {
	strong = make([]string, 0)
	weak = make([]string, 0)
	for _, subject := range subjects {
		for _, topic := range subject.Topics {
			label := subject.Subject + ": " + topic.Topic
			switch topic.StrengthLevel {
			case string(grading.StrengthStrong):
				strong = append(strong, label)
			case string(grading.StrengthWeak):
				weak = append(weak, label)
			}
		}
	}
	return strong, weak
}
