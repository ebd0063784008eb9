package models

import "time"

// TutorMessage roles.
const (
	TutorRoleStudent   = "user"
	TutorRoleAssistant = "assistant"
)

// TutorMessage is one turn in a student's AI tutoring conversation.
type TutorMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	SessionID string    `gorm:"size:64;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types emitted by the grading pipeline.
const (
	NotificationGradingCompleted = "grading.completed"
	NotificationGradingFailed    = "grading.failed"
	NotificationSubmissionNew    = "submission.created"
)

// Notification is a message targeted at one user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:64" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
