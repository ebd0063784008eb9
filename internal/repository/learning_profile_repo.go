package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/grading"
	"github.com/brightclass/portal-api/internal/models"
)

// LearningProfileRepository persists the one-per-student learning profile.
type LearningProfileRepository interface {
	GetByStudent(ctx context.Context, studentID uint) (models.LearningProfile, error)
	// GetOrCreate returns the student's profile, lazily creating one with
	// fixed defaults so callers never observe a missing profile.
	GetOrCreate(ctx context.Context, studentID uint) (models.LearningProfile, error)
	Save(ctx context.Context, profile *models.LearningProfile) error
}

type learningProfileRepository struct {
	db *gorm.DB
}

// NewLearningProfileRepository instantiates the repository.
func NewLearningProfileRepository(db *gorm.DB) LearningProfileRepository {
	return &learningProfileRepository{db: db}
}

func (r *learningProfileRepository) GetByStudent(ctx context.Context, studentID uint) (models.LearningProfile, error) {
	var profile models.LearningProfile
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&profile).Error
	if err != nil {
		return models.LearningProfile{}, err
	}

	return profile, nil
}

func (r *learningProfileRepository) GetOrCreate(ctx context.Context, studentID uint) (models.LearningProfile, error) {
	profile, err := r.GetByStudent(ctx, studentID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LearningProfile{}, err
	}

	profile = models.LearningProfile{
		StudentID:           studentID,
		OverallAbilityLevel: string(grading.AbilityAtGrade),
	}
	if err := r.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return models.LearningProfile{}, err
	}

	return profile, nil
}

func (r *learningProfileRepository) Save(ctx context.Context, profile *models.LearningProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
