package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/models"
)

// FeedbackRepository persists grading outcomes. Feedback rows are immutable,
// so the interface deliberately has no update or delete.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.Feedback, error) {
	var rows []models.Feedback
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
