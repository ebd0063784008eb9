package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.Feedback{}, &models.LearningProfile{}))
	return db
}

func TestClaimProcessing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{
		AssignmentID: 1,
		StudentID:    2,
		Mode:         models.SubmissionModeFinal,
		Status:       models.SubmissionStatusPending,
		ErrorMessage: "old failure",
	}
	require.NoError(t, db.Create(&submission).Error)

	claimed, err := repo.ClaimProcessing(context.Background(), submission.ID, models.ClaimableStatuses())
	require.NoError(t, err)
	require.True(t, claimed)

	// The claim already moved the row out of pending, so a duplicate request
	// must lose.
	claimed, err = repo.ClaimProcessing(context.Background(), submission.ID, models.ClaimableStatuses())
	require.NoError(t, err)
	require.False(t, claimed)

	var reloaded models.Submission
	require.NoError(t, db.First(&reloaded, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusProcessing, reloaded.Status)
	require.Empty(t, reloaded.ErrorMessage)
}

func TestClaimProcessingFromFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{
		AssignmentID: 1,
		StudentID:    2,
		Mode:         models.SubmissionModeFinal,
		Status:       models.SubmissionStatusFailed,
	}
	require.NoError(t, db.Create(&submission).Error)

	claimed, err := repo.ClaimProcessing(context.Background(), submission.ID, models.ClaimableStatuses())
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestClaimProcessingRejectsCompleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{
		AssignmentID: 1,
		StudentID:    2,
		Mode:         models.SubmissionModeFinal,
		Status:       models.SubmissionStatusCompleted,
	}
	require.NoError(t, db.Create(&submission).Error)

	claimed, err := repo.ClaimProcessing(context.Background(), submission.ID, models.ClaimableStatuses())
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestLearningProfileGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLearningProfileRepository(db)

	profile, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, uint(7), profile.StudentID)
	require.Equal(t, "at_grade", profile.OverallAbilityLevel)
	require.Zero(t, profile.TotalSubmissions)

	profile.TotalSubmissions = 3
	require.NoError(t, repo.Save(context.Background(), &profile))

	again, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, profile.ID, again.ID)
	require.Equal(t, 3, again.TotalSubmissions)
}
