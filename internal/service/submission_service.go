package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
	"github.com/brightclass/portal-api/pkg/pdf"
)

var (
	// ErrSubmissionFileRequired indicates no document was attached.
	ErrSubmissionFileRequired = errors.New("submission file is required")
	// ErrSubmissionTooLarge indicates the upload exceeds the size limit.
	ErrSubmissionTooLarge = errors.New("submission file exceeds maximum allowed size")
	// ErrSubmissionNotPDF indicates the uploaded bytes are not a PDF document.
	ErrSubmissionNotPDF = errors.New("submissions must be PDF documents")
	// ErrAssignmentNotOpen indicates the assignment is not accepting submissions.
	ErrAssignmentNotOpen = errors.New("assignment is not open for submissions")
	// ErrSubmissionPastDue indicates the final deadline has passed.
	ErrSubmissionPastDue = errors.New("assignment due date has passed")
	// ErrInvalidStatusChange indicates the requested status transition is not allowed.
	ErrInvalidStatusChange = errors.New("submission status change not allowed")
	// ErrSubmissionNotGraded indicates marks cannot be adjusted before grading.
	ErrSubmissionNotGraded = errors.New("submission has not been graded")
)

// DocumentStorage abstracts where submission documents are kept.
type DocumentStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService manages the upload lifecycle and the teacher review
// actions around graded work. Text extraction happens at upload time, while
// the raw bytes are in hand, so grading never has to re-download the file.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader, actor Actor) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter, actor Actor) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	Cancel(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	Approve(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	Return(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	AdjustMarks(ctx context.Context, id uint, payload dto.AdjustMarksRequest, actor Actor) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	storage     DocumentStorage
	extractor   pdf.Extractor
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	maxSize     int64
	now         func() time.Time
}

// NewSubmissionService constructs the submission service. maxSizeMB caps the
// accepted upload size; values <= 0 fall back to 10MB.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	storage DocumentStorage,
	extractor pdf.Extractor,
	notifier Notifier,
	validator *validator.Validate,
	maxSizeMB int,
	logger zerolog.Logger,
) SubmissionService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		storage:     storage,
		extractor:   extractor,
		notifier:    notifier,
		validator:   validator,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/brightclass/portal-api/internal/service/submission"),
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader, actor Actor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.create", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(payload.AssignmentID)),
		attribute.String("mode", payload.Mode),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if file == nil {
		return dto.SubmissionResponse{}, ErrSubmissionFileRequired
	}
	if file.Size > s.maxSize {
		span.SetStatus(codes.Error, "payload too large")
		return dto.SubmissionResponse{}, ErrSubmissionTooLarge
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !assignment.IsPublished() {
		return dto.SubmissionResponse{}, ErrAssignmentNotOpen
	}
	// Draft submissions stay open past the deadline; they only produce
	// qualitative feedback.
	if payload.Mode == models.SubmissionModeFinal && assignment.IsPastDue(s.now()) {
		return dto.SubmissionResponse{}, ErrSubmissionPastDue
	}

	data, err := readUpload(file, s.maxSize)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if !mimetype.Detect(data).Is("application/pdf") {
		span.SetStatus(codes.Error, "not a pdf")
		return dto.SubmissionResponse{}, ErrSubmissionNotPDF
	}

	extraction, err := s.extractor.Extract(data)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %v", ErrSubmissionNotPDF, err)
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID:  assignment.ID,
		StudentID:     actor.ID,
		Mode:          payload.Mode,
		Status:        models.SubmissionStatusPending,
		FileURL:       url,
		ExtractedText: extraction.Text,
		PageCount:     extraction.PageCount,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, assignment.TeacherID, models.NotificationSubmissionNew,
			fmt.Sprintf("New %s submission for %q.", submission.Mode, assignment.Title))
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", actor.ID).
		Str("mode", submission.Mode).
		Int("pages", extraction.PageCount).
		Msg("submission stored")

	// Reload so the response carries the preloaded assignment and student.
	stored, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}
	return dto.NewSubmissionResponse(stored), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter, actor Actor) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
		Mode:         filter.Mode,
	}
	// Students only ever see their own submissions regardless of the filter.
	if !actor.IsStaff() {
		repoFilter.StudentID = &actor.ID
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.getAuthorized(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// Cancel withdraws a pending submission. Only the owning student may cancel.
func (s *submissionService) Cancel(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.getAuthorized(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, ErrAccessDenied
	}

	return s.transition(ctx, submission, models.SubmissionStatusCancelled, nil)
}

// Approve signs off a completed submission. Staff only.
func (s *submissionService) Approve(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.getStaffSubmission(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return s.transition(ctx, submission, models.SubmissionStatusApproved, &actor)
}

// Return hands a completed submission back to the student for revision.
func (s *submissionService) Return(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.getStaffSubmission(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return s.transition(ctx, submission, models.SubmissionStatusReturned, &actor)
}

// AdjustMarks lets a teacher override the marker's awarded total. The original
// marks stay untouched; the adjustment is recorded alongside them.
func (s *submissionService) AdjustMarks(ctx context.Context, id uint, payload dto.AdjustMarksRequest, actor Actor) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getStaffSubmission(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !submission.IsGraded() {
		return dto.SubmissionResponse{}, ErrSubmissionNotGraded
	}

	adjusted := payload.AdjustedMarks
	submission.MarksAdjusted = true
	submission.AdjustedMarks = &adjusted

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("teacher_id", actor.ID).
		Float64("adjusted_marks", adjusted).
		Str("reason", payload.Reason).
		Msg("marks adjusted")

	return dto.NewSubmissionResponse(submission), nil
}

// getAuthorized loads the submission and enforces the owner-or-staff rule.
// Existence is checked before access so the two failure modes stay distinct.
func (s *submissionService) getAuthorized(ctx context.Context, id uint, actor Actor) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	if !actor.CanAccessSubmission(submission) {
		return models.Submission{}, ErrAccessDenied
	}
	return submission, nil
}

func (s *submissionService) getStaffSubmission(ctx context.Context, id uint, actor Actor) (models.Submission, error) {
	if !actor.IsStaff() {
		return models.Submission{}, ErrAccessDenied
	}
	return s.getAuthorized(ctx, id, actor)
}

// transition applies a status change after checking the transition table.
// When a reviewer is given, approval metadata is stamped too.
func (s *submissionService) transition(ctx context.Context, submission models.Submission, to string, reviewer *Actor) (dto.SubmissionResponse, error) {
	if !models.CanTransition(submission.Status, to) {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %s to %s", ErrInvalidStatusChange, submission.Status, to)
	}

	submission.Status = to
	if reviewer != nil {
		reviewedAt := s.now()
		submission.ApprovedBy = &reviewer.ID
		submission.ApprovedAt = &reviewedAt
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func readUpload(file *multipart.FileHeader, maxSize int64) ([]byte, error) {
	handle, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxSize+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > maxSize {
		return nil, ErrSubmissionTooLarge
	}
	return buf.Bytes(), nil
}
