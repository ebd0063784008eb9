package dto

import (
	"time"

	"github.com/brightclass/portal-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for a submission
// upload. The student is taken from the authenticated context.
type SubmissionCreateRequest struct {
	AssignmentID uint   `form:"assignment_id" validate:"required,gt=0"`
	Mode         string `form:"mode" validate:"required,oneof=draft final"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=pending processing completed failed approved returned cancelled"`
	Mode         *string `query:"mode" validate:"omitempty,oneof=draft final"`
}

// AdjustMarksRequest lets a teacher override the awarded marks.
type AdjustMarksRequest struct {
	AdjustedMarks float64 `json:"adjusted_marks" validate:"gte=0"`
	Reason        string  `json:"reason" validate:"omitempty,min=3"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	Subject    string  `json:"subject"`
	Topic      string  `json:"topic"`
	TotalMarks float64 `json:"total_marks"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID            uint       `json:"id"`
	AssignmentID  uint       `json:"assignment_id"`
	StudentID     uint       `json:"student_id"`
	Mode          string     `json:"mode"`
	Status        string     `json:"status"`
	FileURL       string     `json:"file_url"`
	PageCount     int        `json:"page_count"`
	MarksAwarded  *float64   `json:"marks_awarded"`
	MarksTotal    *float64   `json:"marks_total"`
	Percentage    *float64   `json:"percentage"`
	Grade         *string    `json:"grade"`
	MarksAdjusted bool       `json:"marks_adjusted"`
	AdjustedMarks *float64   `json:"adjusted_marks"`
	ApprovedBy    *uint      `json:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at"`
	ErrorMessage  string     `json:"error_message,omitempty"`

	FeedbackGeneratedAt *time.Time     `json:"feedback_generated_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	Assignment          AssignmentLite `json:"assignment"`
	Student             StudentLite    `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            model.ID,
		AssignmentID:  model.AssignmentID,
		StudentID:     model.StudentID,
		Mode:          model.Mode,
		Status:        model.Status,
		FileURL:       model.FileURL,
		PageCount:     model.PageCount,
		MarksAwarded:  model.MarksAwarded,
		MarksTotal:    model.MarksTotal,
		Percentage:    model.Percentage,
		Grade:         model.Grade,
		MarksAdjusted: model.MarksAdjusted,
		AdjustedMarks: model.AdjustedMarks,
		ApprovedBy:    model.ApprovedBy,
		ApprovedAt:    model.ApprovedAt,
		ErrorMessage:  model.ErrorMessage,

		FeedbackGeneratedAt: model.FeedbackGeneratedAt,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
		Assignment: AssignmentLite{
			ID:         model.Assignment.ID,
			Title:      model.Assignment.Title,
			Subject:    model.Assignment.Subject,
			Topic:      model.Assignment.Topic,
			TotalMarks: model.Assignment.TotalMarks,
		},
		Student: StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Class: model.Student.Class,
		},
	}
}

// NewSubmissionResponseSlice converts a slice of models.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}
