package dto

import (
	"time"

	"github.com/brightclass/portal-api/internal/models"
)

// FeedbackResponse serializes one grading pass for API clients.
type FeedbackResponse struct {
	ID               uint                      `json:"id"`
	SubmissionID     uint                      `json:"submission_id"`
	FeedbackType     string                    `json:"feedback_type"`
	OverallFeedback  string                    `json:"overall_feedback"`
	Strengths        []string                  `json:"strengths"`
	Improvements     []string                  `json:"improvements"`
	QuestionFeedback []models.QuestionFeedback `json:"question_feedback"`

	TotalMarksAwarded  *float64                     `json:"total_marks_awarded,omitempty"`
	TotalMarksPossible *float64                     `json:"total_marks_possible,omitempty"`
	Percentage         *float64                     `json:"percentage,omitempty"`
	Grade              *string                      `json:"grade,omitempty"`
	TopicScores        map[string]models.TopicScore `json:"topic_scores,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackResponse converts a Feedback model into a DTO.
func NewFeedbackResponse(model models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:               model.ID,
		SubmissionID:     model.SubmissionID,
		FeedbackType:     model.FeedbackType,
		OverallFeedback:  model.OverallFeedback,
		Strengths:        model.Strengths,
		Improvements:     model.Improvements,
		QuestionFeedback: model.QuestionFeedback,

		TotalMarksAwarded:  model.TotalMarksAwarded,
		TotalMarksPossible: model.TotalMarksPossible,
		Percentage:         model.Percentage,
		Grade:              model.Grade,
		TopicScores:        model.TopicScores.Data(),

		CreatedAt: model.CreatedAt,
	}
}

// NewFeedbackResponseSlice converts a slice of models.
func NewFeedbackResponseSlice(items []models.Feedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewFeedbackResponse(item))
	}
	return responses
}

// GradingResultResponse is the success payload of a grading request.
type GradingResultResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Feedback   FeedbackResponse   `json:"feedback"`
}
