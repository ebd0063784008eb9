package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/models"
)

// TutorChatRepository persists tutoring conversation turns.
type TutorChatRepository interface {
	Create(ctx context.Context, message *models.TutorMessage) error
	ListBySession(ctx context.Context, studentID uint, sessionID string, limit int) ([]models.TutorMessage, error)
}

type tutorChatRepository struct {
	db *gorm.DB
}

// NewTutorChatRepository instantiates the repository.
func NewTutorChatRepository(db *gorm.DB) TutorChatRepository {
	return &tutorChatRepository{db: db}
}

func (r *tutorChatRepository) Create(ctx context.Context, message *models.TutorMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *tutorChatRepository) ListBySession(ctx context.Context, studentID uint, sessionID string, limit int) ([]models.TutorMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var messages []models.TutorMessage
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND session_id = ?", studentID, sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Newest-first from the query, oldest-first for prompt assembly.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
