package dto

import (
	"time"

	"github.com/brightclass/portal-api/internal/models"
)

// QuestionPayload describes one question in a create/update request.
type QuestionPayload struct {
	ID            string  `json:"id" validate:"required"`
	Text          string  `json:"text" validate:"required"`
	Type          string  `json:"type" validate:"omitempty,oneof=short_answer structured essay mcq"`
	Marks         float64 `json:"marks" validate:"gte=0"`
	MarkingScheme string  `json:"marking_scheme"`
	ModelAnswer   string  `json:"model_answer"`
	Topic         string  `json:"topic"`
	Difficulty    string  `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// AssignmentCreateRequest is the payload for creating an assignment.
type AssignmentCreateRequest struct {
	Title      string            `json:"title" validate:"required,min=3"`
	Subject    string            `json:"subject" validate:"required"`
	Topic      string            `json:"topic"`
	Class      string            `json:"class" validate:"required"`
	SchoolID   string            `json:"school_id"`
	Questions  []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
	TotalMarks float64           `json:"total_marks" validate:"required,gt=0"`
	Difficulty string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	DueDate    time.Time         `json:"due_date"`
}

// AssignmentUpdateRequest mutates assignment fields explicitly.
type AssignmentUpdateRequest struct {
	Title      *string            `json:"title" validate:"omitempty,min=3"`
	Topic      *string            `json:"topic"`
	Questions  *[]QuestionPayload `json:"questions" validate:"omitempty,min=1,dive"`
	TotalMarks *float64           `json:"total_marks" validate:"omitempty,gt=0"`
	Status     *string            `json:"status" validate:"omitempty,oneof=draft published archived"`
	Difficulty *string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	DueDate    *time.Time         `json:"due_date"`
}

// AssignmentFilter describes query string filters for listing assignments.
type AssignmentFilter struct {
	Subject   *string `query:"subject"`
	Class     *string `query:"class"`
	Status    *string `query:"status" validate:"omitempty,oneof=draft published archived"`
	TeacherID *uint   `query:"teacher_id"`
}

// AssignmentResponse is returned to API clients.
type AssignmentResponse struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Subject    string            `json:"subject"`
	Topic      string            `json:"topic"`
	SchoolID   string            `json:"school_id"`
	Class      string            `json:"class"`
	TeacherID  uint              `json:"teacher_id"`
	Questions  []models.Question `json:"questions"`
	TotalMarks float64           `json:"total_marks"`
	Status     string            `json:"status"`
	Difficulty string            `json:"difficulty"`
	DueDate    time.Time         `json:"due_date"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         model.ID,
		Title:      model.Title,
		Subject:    model.Subject,
		Topic:      model.Topic,
		SchoolID:   model.SchoolID,
		Class:      model.Class,
		TeacherID:  model.TeacherID,
		Questions:  model.Questions,
		TotalMarks: model.TotalMarks,
		Status:     model.Status,
		Difficulty: model.Difficulty,
		DueDate:    model.DueDate,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models.
func NewAssignmentResponseSlice(items []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssignmentResponse(item))
	}
	return responses
}
