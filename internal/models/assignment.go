package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment statuses.
const (
	AssignmentStatusDraft     = "draft"
	AssignmentStatusPublished = "published"
	AssignmentStatusArchived  = "archived"
)

// Question is one marked item within an assignment. Questions are stored as
// an ordered JSON list because marker numbers in submissions index into them.
type Question struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Type          string  `json:"type"`
	Marks         float64 `json:"marks"`
	MarkingScheme string  `json:"marking_scheme,omitempty"`
	ModelAnswer   string  `json:"model_answer,omitempty"`
	Topic         string  `json:"topic,omitempty"`
	Difficulty    string  `json:"difficulty,omitempty"`
}

// Assignment is a piece of work set by a teacher for a class.
type Assignment struct {
	ID          uint                          `gorm:"primaryKey" json:"id"`
	Title       string                        `gorm:"size:255;not null" json:"title"`
	Subject     string                        `gorm:"size:128;not null;index" json:"subject"`
	Topic       string                        `gorm:"size:128" json:"topic"`
	SchoolID    string                        `gorm:"size:64;index" json:"school_id"`
	Class       string                        `gorm:"size:64;index" json:"class"`
	TeacherID   uint                          `gorm:"not null;index" json:"teacher_id"`
	Questions   datatypes.JSONSlice[Question] `json:"questions"`
	TotalMarks  float64                       `gorm:"not null" json:"total_marks"`
	Status      string                        `gorm:"size:32;not null;default:draft" json:"status"`
	Difficulty  string                        `gorm:"size:32" json:"difficulty"`
	DueDate     time.Time                     `json:"due_date"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
	Submissions []Submission                  `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return !a.DueDate.IsZero() && reference.After(a.DueDate)
}

// IsPublished reports whether students may submit against the assignment.
func (a Assignment) IsPublished() bool {
	return a.Status == AssignmentStatusPublished
}
