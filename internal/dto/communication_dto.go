package dto

import (
	"time"

	"github.com/brightclass/portal-api/internal/models"
)

// NotificationCreateRequest publishes a notification to one user.
type NotificationCreateRequest struct {
	UserID  uint   `json:"user_id" validate:"required,gt=0"`
	Type    string `json:"type" validate:"required"`
	Message string `json:"message" validate:"required,min=1"`
}

// NotificationResponse serializes a notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a Notification model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      model.Type,
		Message:   model.Message,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewNotificationResponse(item))
	}
	return responses
}

// TutorMessageRequest is one student message to the AI tutor.
type TutorMessageRequest struct {
	SessionID string `json:"session_id" validate:"required,min=1,max=64"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
}

// TutorMessageResponse is one tutoring conversation turn.
type TutorMessageResponse struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTutorMessageResponse converts a TutorMessage model into a DTO.
func NewTutorMessageResponse(model models.TutorMessage) TutorMessageResponse {
	return TutorMessageResponse{
		SessionID: model.SessionID,
		Role:      model.Role,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}
