package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrAssignmentNotEditable indicates an archived assignment cannot change.
var ErrAssignmentNotEditable = errors.New("archived assignments cannot be modified")

// ErrQuestionMarksMismatch indicates the per-question marks do not sum to the
// assignment total.
var ErrQuestionMarksMismatch = errors.New("question marks do not sum to total marks")

// AssignmentService manages the assignment lifecycle for teachers and admins.
type AssignmentService interface {
	List(ctx context.Context, filter dto.AssignmentFilter, actor Actor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor Actor) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actor Actor) (dto.AssignmentResponse, error)
	Publish(ctx context.Context, id uint, actor Actor) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validator *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentFilter, actor Actor) ([]dto.AssignmentResponse, error) {
	repoFilter := repository.AssignmentFilter{
		Subject:   filter.Subject,
		Class:     filter.Class,
		Status:    filter.Status,
		TeacherID: filter.TeacherID,
	}
	// Students only ever see published work.
	if !actor.IsStaff() {
		published := models.AssignmentStatusPublished
		repoFilter.Status = &published
	}

	assignments, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, actor Actor) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !actor.IsStaff() && !assignment.IsPublished() {
		return dto.AssignmentResponse{}, ErrAssignmentNotFound
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor Actor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	questions := questionsFromPayload(payload.Questions)
	if err := checkQuestionMarks(questions, payload.TotalMarks); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:      strings.TrimSpace(payload.Title),
		Subject:    strings.TrimSpace(payload.Subject),
		Topic:      strings.TrimSpace(payload.Topic),
		Class:      strings.TrimSpace(payload.Class),
		SchoolID:   strings.TrimSpace(payload.SchoolID),
		TeacherID:  actor.ID,
		Questions:  datatypes.NewJSONSlice(questions),
		TotalMarks: payload.TotalMarks,
		Status:     models.AssignmentStatusDraft,
		Difficulty: payload.Difficulty,
		DueDate:    payload.DueDate,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("teacher_id", actor.ID).
		Str("subject", assignment.Subject).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actor Actor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getOwnedAssignment(ctx, id, actor)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if assignment.Status == models.AssignmentStatusArchived {
		return dto.AssignmentResponse{}, ErrAssignmentNotEditable
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Topic != nil {
		assignment.Topic = strings.TrimSpace(*payload.Topic)
	}
	if payload.Questions != nil {
		assignment.Questions = datatypes.NewJSONSlice(questionsFromPayload(*payload.Questions))
	}
	if payload.TotalMarks != nil {
		assignment.TotalMarks = *payload.TotalMarks
	}
	if payload.Questions != nil || payload.TotalMarks != nil {
		if err := checkQuestionMarks(assignment.Questions, assignment.TotalMarks); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}
	if payload.Status != nil {
		assignment.Status = *payload.Status
	}
	if payload.Difficulty != nil {
		assignment.Difficulty = *payload.Difficulty
	}
	if payload.DueDate != nil {
		assignment.DueDate = *payload.DueDate
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Publish(ctx context.Context, id uint, actor Actor) (dto.AssignmentResponse, error) {
	assignment, err := s.getOwnedAssignment(ctx, id, actor)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if assignment.Status == models.AssignmentStatusArchived {
		return dto.AssignmentResponse{}, ErrAssignmentNotEditable
	}

	assignment.Status = models.AssignmentStatusPublished
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment published")

	return dto.NewAssignmentResponse(assignment), nil
}

// Delete archives the assignment instead of removing it once submissions
// exist, so graded work keeps a valid parent.
func (s *assignmentService) Delete(ctx context.Context, id uint, actor Actor) error {
	assignment, err := s.getOwnedAssignment(ctx, id, actor)
	if err != nil {
		return err
	}

	count, err := s.repo.CountSubmissions(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		assignment.Status = models.AssignmentStatusArchived
		return s.repo.Update(ctx, &assignment)
	}

	return s.repo.Delete(ctx, id)
}

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

// getOwnedAssignment loads the assignment and enforces write ownership:
// admins may modify anything, teachers only their own work.
func (s *assignmentService) getOwnedAssignment(ctx context.Context, id uint, actor Actor) (models.Assignment, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if actor.Role != models.RoleAdmin && assignment.TeacherID != actor.ID {
		return models.Assignment{}, ErrAccessDenied
	}
	return assignment, nil
}

func questionsFromPayload(payloads []dto.QuestionPayload) []models.Question {
	questions := make([]models.Question, 0, len(payloads))
	for _, payload := range payloads {
		questions = append(questions, models.Question{
			ID:            strings.ToLower(strings.TrimSpace(payload.ID)),
			Text:          strings.TrimSpace(payload.Text),
			Type:          payload.Type,
			Marks:         payload.Marks,
			MarkingScheme: payload.MarkingScheme,
			ModelAnswer:   payload.ModelAnswer,
			Topic:         strings.TrimSpace(payload.Topic),
			Difficulty:    payload.Difficulty,
		})
	}
	return questions
}

func checkQuestionMarks(questions []models.Question, total float64) error {
	var sum float64
	for _, question := range questions {
		sum += question.Marks
	}
	if sum != 0 && sum != total {
		return ErrQuestionMarksMismatch
	}
	return nil
}
