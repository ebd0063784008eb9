package dto

import (
	"time"

	"github.com/brightclass/portal-api/internal/models"
)

// LearningProfileResponse serializes a student's learning profile.
type LearningProfileResponse struct {
	StudentID           uint                        `json:"student_id"`
	OverallAbilityLevel string                      `json:"overall_ability_level"`
	SubjectPerformance  []models.SubjectPerformance `json:"subject_performance"`
	RecentGrades        []models.RecentGrade        `json:"recent_grades"`
	StrongTopics        []string                    `json:"strong_topics"`
	WeakTopics          []string                    `json:"weak_topics"`
	TotalSubmissions    int                         `json:"total_submissions"`
	DraftSubmissions    int                         `json:"draft_submissions"`
	FinalSubmissions    int                         `json:"final_submissions"`

	ProficiencyUpdatedAt time.Time `json:"proficiency_updated_at"`
}

// NewLearningProfileResponse converts a LearningProfile model into a DTO.
func NewLearningProfileResponse(model models.LearningProfile) LearningProfileResponse {
	return LearningProfileResponse{
		StudentID:           model.StudentID,
		OverallAbilityLevel: model.OverallAbilityLevel,
		SubjectPerformance:  model.SubjectPerformance,
		RecentGrades:        model.RecentGrades,
		StrongTopics:        model.StrongTopics,
		WeakTopics:          model.WeakTopics,
		TotalSubmissions:    model.TotalSubmissions,
		DraftSubmissions:    model.DraftSubmissions,
		FinalSubmissions:    model.FinalSubmissions,

		ProficiencyUpdatedAt: model.ProficiencyUpdatedAt,
	}
}

// ProgressPoint is one charted submission score.
type ProgressPoint struct {
	SubmissionID  uint      `json:"submission_id"`
	AssignmentID  uint      `json:"assignment_id"`
	Subject       string    `json:"subject"`
	Percentage    float64   `json:"percentage"`
	Grade         string    `json:"grade"`
	SubmittedAt   time.Time `json:"submitted_at"`
	MovingAverage float64   `json:"moving_average"`
}

// SubjectSeries groups progression points for one subject, oldest first.
type SubjectSeries struct {
	Subject string          `json:"subject"`
	Points  []ProgressPoint `json:"points"`
}

// Insight types emitted by the progression engine.
const (
	InsightStrength       = "strength"
	InsightImprovement    = "improvement"
	InsightTrend          = "trend"
	InsightRecommendation = "recommendation"
)

// Insight is one human-readable statement about a student's learning.
type Insight struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Topics  []string `json:"topics,omitempty"`
}

// ProgressResponse is the on-demand progression and insight view model.
type ProgressResponse struct {
	StudentID     uint            `json:"student_id"`
	Subjects      []SubjectSeries `json:"subjects"`
	MovingAverage []ProgressPoint `json:"moving_average"`
	Insights      []Insight       `json:"insights"`
}
