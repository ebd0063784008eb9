package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/grading"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/observability"
	"github.com/brightclass/portal-api/internal/repository"
	"github.com/brightclass/portal-api/pkg/ai"
)

// minViableTextLength is the smallest trimmed extraction we will send to the
// marker. Anything shorter is an unreadable upload, not a gradable answer.
const minViableTextLength = 20

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrAccessDenied indicates the caller may not act on this submission.
var ErrAccessDenied = errors.New("access denied")

// ErrGradingInProgress indicates another grading run holds the claim.
var ErrGradingInProgress = errors.New("grading already in progress")

// ErrGradingFailed wraps extraction and marker failures surfaced to callers.
var ErrGradingFailed = errors.New("grading failed")

// Notifier delivers grading lifecycle notifications. Delivery is best-effort
// and never fails the grading run.
type Notifier interface {
	Notify(ctx context.Context, userID uint, notificationType, message string)
}

// GradingService runs the marking pipeline for one submission at a time:
// claim, validate extracted text, invoke the marker, persist feedback, and
// fold final results into the learning profile.
type GradingService interface {
	Process(ctx context.Context, submissionID uint, actor Actor) (dto.GradingResultResponse, error)
	ListFeedback(ctx context.Context, submissionID uint, actor Actor) ([]dto.FeedbackResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	feedbacks   repository.FeedbackRepository
	profiles    LearningProfileService
	marker      ai.Marker
	notifier    Notifier
	timeout     time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading pipeline.
func NewGradingService(
	submissions repository.SubmissionRepository,
	feedbacks repository.FeedbackRepository,
	profiles LearningProfileService,
	marker ai.Marker,
	notifier Notifier,
	timeout time.Duration,
	logger zerolog.Logger,
) GradingService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &gradingService{
		submissions: submissions,
		feedbacks:   feedbacks,
		profiles:    profiles,
		marker:      marker,
		notifier:    notifier,
		timeout:     timeout,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/brightclass/portal-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Process(ctx context.Context, submissionID uint, actor Actor) (dto.GradingResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.process", trace.WithAttributes(
		attribute.Int64("submission_id", int64(submissionID)),
		attribute.Int64("actor_id", int64(actor.ID)),
	))
	defer span.End()

	started := s.now()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradingResultResponse{}, ErrSubmissionNotFound
		}
		return dto.GradingResultResponse{}, err
	}

	if !actor.CanAccessSubmission(submission) {
		span.SetStatus(codes.Error, "access_denied")
		return dto.GradingResultResponse{}, ErrAccessDenied
	}

	claimed, err := s.submissions.ClaimProcessing(ctx, submissionID, models.ClaimableStatuses())
	if err != nil {
		return dto.GradingResultResponse{}, err
	}
	if !claimed {
		span.SetAttributes(attribute.Bool("grading.claim_lost", true))
		return dto.GradingResultResponse{}, ErrGradingInProgress
	}
	submission.Status = models.SubmissionStatusProcessing
	submission.ErrorMessage = ""

	text := strings.TrimSpace(submission.ExtractedText)
	if len(text) < minViableTextLength {
		message := "extracted text is too short to grade; please upload a readable PDF"
		s.fail(ctx, &submission, message)
		span.SetStatus(codes.Error, "extraction_too_short")
		observability.GradingRuns().WithLabelValues(submission.Mode, "failed").Inc()
		return dto.GradingResultResponse{}, fmt.Errorf("%w: %s", ErrGradingFailed, message)
	}

	feedback, gradeEvent, err := s.mark(ctx, &submission, text)
	if err != nil {
		s.fail(ctx, &submission, err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, "marking_failed")
		observability.GradingRuns().WithLabelValues(submission.Mode, "failed").Inc()
		return dto.GradingResultResponse{}, fmt.Errorf("%w: %v", ErrGradingFailed, err)
	}

	if err := s.feedbacks.Create(ctx, feedback); err != nil {
		s.fail(ctx, &submission, "failed to store feedback")
		span.RecordError(err)
		observability.GradingRuns().WithLabelValues(submission.Mode, "failed").Inc()
		return dto.GradingResultResponse{}, fmt.Errorf("%w: store feedback: %v", ErrGradingFailed, err)
	}

	if submission.IsFinal() {
		// Marks are written back before the profile update so the submission's
		// own grade is durable even when aggregation misbehaves.
		if err := s.submissions.Update(ctx, &submission); err != nil {
			s.fail(ctx, &submission, "failed to store marks")
			span.RecordError(err)
			observability.GradingRuns().WithLabelValues(submission.Mode, "failed").Inc()
			return dto.GradingResultResponse{}, fmt.Errorf("%w: store marks: %v", ErrGradingFailed, err)
		}

		// Profile aggregation is best-effort bookkeeping. A failure here is
		// logged and swallowed; the grading result stays authoritative.
		if err := s.profiles.RecordFinalGrade(ctx, submission.StudentID, *gradeEvent); err != nil {
			s.logger.Warn().Err(err).
				Uint("submission_id", submission.ID).
				Uint("student_id", submission.StudentID).
				Msg("learning profile update failed")
			span.AddEvent("profile_update_failed")
		}
	} else {
		if err := s.profiles.RecordDraftFeedback(ctx, submission.StudentID); err != nil {
			s.logger.Warn().Err(err).
				Uint("submission_id", submission.ID).
				Msg("draft counter update failed")
		}
	}

	generatedAt := s.now()
	submission.Status = models.SubmissionStatusCompleted
	submission.FeedbackGeneratedAt = &generatedAt
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.GradingResultResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, submission.StudentID, models.NotificationGradingCompleted,
			fmt.Sprintf("Feedback is ready for %q.", submission.Assignment.Title))
	}

	observability.GradingRuns().WithLabelValues(submission.Mode, "completed").Inc()
	observability.GradingDuration().WithLabelValues(submission.Mode).Observe(s.now().Sub(started).Seconds())

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("mode", submission.Mode).
		Msg("grading completed")

	return dto.GradingResultResponse{
		Submission: dto.NewSubmissionResponse(submission),
		Feedback:   dto.NewFeedbackResponse(*feedback),
	}, nil
}

// mark invokes the marker for the submission's mode and builds the feedback
// row. For final mode it also writes marks onto the submission (in memory)
// and returns the grade event for profile aggregation.
func (s *gradingService) mark(ctx context.Context, submission *models.Submission, text string) (*models.Feedback, *GradeEvent, error) {
	assignment := submission.Assignment

	refs := make([]grading.QuestionRef, 0, len(assignment.Questions))
	for _, question := range assignment.Questions {
		refs = append(refs, grading.QuestionRef{ID: question.ID, Text: question.Text})
	}
	answers := grading.ParseAnswers(text, refs)

	questions := make([]ai.QuestionContext, 0, len(assignment.Questions))
	for _, question := range assignment.Questions {
		questions = append(questions, ai.QuestionContext{
			ID:            question.ID,
			Text:          question.Text,
			Type:          question.Type,
			Marks:         question.Marks,
			MarkingScheme: question.MarkingScheme,
			ModelAnswer:   question.ModelAnswer,
			Topic:         question.Topic,
			Answer:        answers[question.ID],
		})
	}

	markCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if !submission.IsFinal() {
		result, err := s.marker.GenerateDraftFeedback(markCtx, ai.DraftInput{
			Title:         assignment.Title,
			Subject:       assignment.Subject,
			Topic:         assignment.Topic,
			Questions:     questions,
			ExtractedText: text,
			AbilityLevel:  s.profiles.AbilityLevel(ctx, submission.StudentID),
		})
		if err != nil {
			return nil, nil, err
		}

		feedback := &models.Feedback{
			SubmissionID:     submission.ID,
			FeedbackType:     models.FeedbackTypeDraft,
			OverallFeedback:  result.OverallFeedback,
			Strengths:        result.OverallStrengths,
			Improvements:     result.OverallImprovements,
			QuestionFeedback: convertQuestionFeedback(result.QuestionFeedback),
		}
		return feedback, nil, nil
	}

	result, err := s.marker.MarkFinalSubmission(markCtx, ai.FinalInput{
		Title:              assignment.Title,
		Subject:            assignment.Subject,
		Topic:              assignment.Topic,
		Questions:          questions,
		ExtractedText:      text,
		TotalMarksPossible: assignment.TotalMarks,
	})
	if err != nil {
		return nil, nil, err
	}

	// Percentage and grade are always recomputed from the marks so the same
	// scale applies on the submission and feedback paths.
	percentage := grading.Percentage(result.TotalMarksAwarded, result.TotalMarksPossible)
	grade := string(grading.Classify(percentage))

	topicScores := make(map[string]models.TopicScore, len(result.TopicScores))
	for name, score := range result.TopicScores {
		stored := models.TopicScore{Awarded: score.Awarded, Possible: score.Possible, Percentage: score.Percentage}
		if stored.Percentage == 0 && stored.Possible > 0 {
			stored.Percentage = grading.Percentage(stored.Awarded, stored.Possible)
		}
		topicScores[name] = stored
	}

	awarded := result.TotalMarksAwarded
	possible := result.TotalMarksPossible
	feedback := buildFinalFeedback(submission.ID, result, awarded, possible, percentage, grade, topicScores)

	submission.MarksAwarded = &awarded
	submission.MarksTotal = &possible
	submission.Percentage = &percentage
	submission.Grade = &grade

	event := &GradeEvent{
		AssignmentID: assignment.ID,
		Subject:      assignment.Subject,
		Topic:        assignment.Topic,
		Percentage:   percentage,
		Grade:        grade,
		TopicScores:  topicScores,
	}

	return feedback, event, nil
}

func (s *gradingService) ListFeedback(ctx context.Context, submissionID uint, actor Actor) ([]dto.FeedbackResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if !actor.CanAccessSubmission(submission) {
		return nil, ErrAccessDenied
	}

	rows, err := s.feedbacks.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return dto.NewFeedbackResponseSlice(rows), nil
}

// fail records the terminal failure on the submission. Persisting the error
// message is itself best-effort at this point.
func (s *gradingService) fail(ctx context.Context, submission *models.Submission, message string) {
	submission.Status = models.SubmissionStatusFailed
	submission.ErrorMessage = message
	if err := s.submissions.Update(ctx, submission); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist failure state")
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, submission.StudentID, models.NotificationGradingFailed,
			fmt.Sprintf("Grading failed for %q: %s", submission.Assignment.Title, message))
	}

	s.logger.Warn().
		Uint("submission_id", submission.ID).
		Str("reason", message).
		Msg("grading failed")
}

func buildFinalFeedback(submissionID uint, result ai.FinalResult, awarded, possible, percentage float64, grade string, topicScores map[string]models.TopicScore) *models.Feedback {
	feedback := &models.Feedback{
		SubmissionID:       submissionID,
		FeedbackType:       models.FeedbackTypeFinal,
		OverallFeedback:    result.OverallFeedback,
		Strengths:          result.OverallStrengths,
		Improvements:       result.OverallImprovements,
		QuestionFeedback:   convertQuestionFeedback(result.QuestionFeedback),
		TotalMarksAwarded:  &awarded,
		TotalMarksPossible: &possible,
		Percentage:         &percentage,
		Grade:              &grade,
	}
	feedback.TopicScores = datatypes.NewJSONType(topicScores)
	return feedback
}

func convertQuestionFeedback(items []ai.QuestionFeedback) []models.QuestionFeedback {
	converted := make([]models.QuestionFeedback, 0, len(items))
	for _, item := range items {
		converted = append(converted, models.QuestionFeedback{
			QuestionID:    item.QuestionID,
			Feedback:      item.Feedback,
			MarksAwarded:  item.MarksAwarded,
			MarksPossible: item.MarksPossible,
		})
	}
	return converted
}
