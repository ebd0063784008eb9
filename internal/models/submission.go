package models

import "time"

// Submission modes. Draft submissions receive qualitative feedback only;
// final submissions are marked numerically and feed the learning profile.
const (
	SubmissionModeDraft = "draft"
	SubmissionModeFinal = "final"
)

// Submission lifecycle statuses.
const (
	SubmissionStatusPending    = "pending"
	SubmissionStatusProcessing = "processing"
	SubmissionStatusCompleted  = "completed"
	SubmissionStatusFailed     = "failed"
	SubmissionStatusApproved   = "approved"
	SubmissionStatusReturned   = "returned"
	SubmissionStatusCancelled  = "cancelled"
)

// allowedTransitions maps a target status to the statuses it may follow.
var allowedTransitions = map[string][]string{
	SubmissionStatusProcessing: {SubmissionStatusPending, SubmissionStatusFailed},
	SubmissionStatusCompleted:  {SubmissionStatusProcessing},
	SubmissionStatusFailed:     {SubmissionStatusProcessing},
	SubmissionStatusApproved:   {SubmissionStatusCompleted},
	SubmissionStatusReturned:   {SubmissionStatusCompleted},
	SubmissionStatusCancelled:  {SubmissionStatusPending},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// ClaimableStatuses are the statuses from which a grading run may claim a
// submission. The claim itself is a single conditional update in the
// repository so concurrent grading requests cannot both win.
func ClaimableStatuses() []string {
	return []string{SubmissionStatusPending, SubmissionStatusFailed}
}

// ProgressStatuses are the statuses charted by the progression view.
func ProgressStatuses() []string {
	return []string{SubmissionStatusCompleted, SubmissionStatusApproved, SubmissionStatusReturned}
}

// Submission is a student's uploaded answer document for an assignment.
type Submission struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AssignmentID  uint       `gorm:"not null;index" json:"assignment_id"`
	StudentID     uint       `gorm:"not null;index" json:"student_id"`
	Mode          string     `gorm:"size:16;not null;default:final" json:"mode"`
	Status        string     `gorm:"size:32;not null;default:pending" json:"status"`
	FileURL       string     `gorm:"size:512" json:"file_url"`
	ExtractedText string     `gorm:"type:text" json:"extracted_text"`
	PageCount     int        `json:"page_count"`
	MarksAwarded  *float64   `json:"marks_awarded"`
	MarksTotal    *float64   `json:"marks_total"`
	Percentage    *float64   `json:"percentage"`
	Grade         *string    `gorm:"size:4" json:"grade"`
	MarksAdjusted bool       `gorm:"not null;default:false" json:"marks_adjusted"`
	AdjustedMarks *float64   `json:"adjusted_marks"`
	ApprovedBy    *uint      `json:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message"`

	FeedbackGeneratedAt *time.Time `json:"feedback_generated_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Assignment Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student    User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsFinal reports whether the submission is marked numerically.
func (s Submission) IsFinal() bool {
	return s.Mode == SubmissionModeFinal
}

// IsGraded reports whether a grading pass produced marks for this submission.
func (s Submission) IsGraded() bool {
	return s.MarksAwarded != nil && s.MarksTotal != nil
}
