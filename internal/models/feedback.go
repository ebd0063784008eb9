package models

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback types mirror submission modes.
const (
	FeedbackTypeDraft = "draft"
	FeedbackTypeFinal = "final"
)

// QuestionFeedback is the stored per-question commentary from one grading pass.
type QuestionFeedback struct {
	QuestionID    string  `json:"question_id"`
	Feedback      string  `json:"feedback"`
	MarksAwarded  float64 `json:"marks_awarded"`
	MarksPossible float64 `json:"marks_possible"`
}

// TopicScore is the stored topic-level breakdown within a final feedback row.
type TopicScore struct {
	Awarded    float64 `json:"awarded"`
	Possible   float64 `json:"possible"`
	Percentage float64 `json:"percentage"`
}

// Feedback records the outcome of one grading pass. Rows are immutable: a
// submission accumulates feedback across attempts, never updates in place.
type Feedback struct {
	ID               uint                                  `gorm:"primaryKey" json:"id"`
	SubmissionID     uint                                  `gorm:"not null;index" json:"submission_id"`
	FeedbackType     string                                `gorm:"size:16;not null" json:"feedback_type"`
	OverallFeedback  string                                `gorm:"type:text" json:"overall_feedback"`
	Strengths        datatypes.JSONSlice[string]           `json:"strengths"`
	Improvements     datatypes.JSONSlice[string]           `json:"improvements"`
	QuestionFeedback datatypes.JSONSlice[QuestionFeedback] `json:"question_feedback"`

	// Final-type rows only.
	TotalMarksAwarded  *float64                                `json:"total_marks_awarded"`
	TotalMarksPossible *float64                                `json:"total_marks_possible"`
	Percentage         *float64                                `json:"percentage"`
	Grade              *string                                 `gorm:"size:4" json:"grade"`
	TopicScores        datatypes.JSONType[map[string]TopicScore] `json:"topic_scores"`

	CreatedAt time.Time `json:"created_at"`
}

// IsFinal reports whether the row carries numeric marks.
func (f Feedback) IsFinal() bool {
	return f.FeedbackType == FeedbackTypeFinal
}
