package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/repository"
)

type fakeAssignmentRepo struct {
	assignments     map[uint]models.Assignment
	submissionCount int64
	deleted         []uint
	nextID          uint
}

func newFakeAssignmentRepo(items ...models.Assignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{assignments: make(map[uint]models.Assignment)}
	for _, item := range items {
		repo.assignments[item.ID] = item
		if item.ID > repo.nextID {
			repo.nextID = item.ID
		}
	}
	return repo
}

func (f *fakeAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	items := make([]models.Assignment, 0, len(f.assignments))
	for _, item := range f.assignments {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.TeacherID != nil && item.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.Subject != nil && item.Subject != *filter.Subject {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	f.nextID++
	assignment.ID = f.nextID
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.assignments, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAssignmentRepo) CountSubmissions(ctx context.Context, assignmentID uint) (int64, error) {
	return f.submissionCount, nil
}

func draftAssignment(id, teacherID uint) models.Assignment {
	return models.Assignment{
		ID:         id,
		Title:      "Quadratic Equations",
		Subject:    "Mathematics",
		Class:      "4E1",
		TeacherID:  teacherID,
		TotalMarks: 40,
		Status:     models.AssignmentStatusDraft,
		Questions: []models.Question{
			{ID: "q1", Text: "Solve x^2-5x+6=0.", Marks: 40, Topic: "Algebra"},
		},
	}
}

func newAssignmentTestService(repo repository.AssignmentRepository) AssignmentService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAssignmentService(repo, validate, testLogger())
}

func TestAssignmentCreateStartsAsDraft(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newAssignmentTestService(repo)

	created, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		Title:   "Forces and Motion",
		Subject: "Physics",
		Class:   "4E1",
		Questions: []dto.QuestionPayload{
			{ID: "Q1", Text: "State Newton's second law.", Marks: 10, Topic: "Dynamics"},
		},
		TotalMarks: 10,
		DueDate:    time.Now().Add(7 * 24 * time.Hour),
	}, Actor{ID: 5, Role: models.RoleTeacher})
	require.NoError(t, err)

	require.Equal(t, models.AssignmentStatusDraft, created.Status)
	require.Equal(t, uint(5), created.TeacherID)
	require.Equal(t, "q1", created.Questions[0].ID)
}

func TestAssignmentCreateRejectsMarksMismatch(t *testing.T) {
	svc := newAssignmentTestService(newFakeAssignmentRepo())

	_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		Title:   "Forces and Motion",
		Subject: "Physics",
		Class:   "4E1",
		Questions: []dto.QuestionPayload{
			{ID: "q1", Text: "State Newton's second law.", Marks: 10},
		},
		TotalMarks: 25,
	}, Actor{ID: 5, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrQuestionMarksMismatch)
}

func TestAssignmentStudentsOnlySeePublished(t *testing.T) {
	draft := draftAssignment(1, 5)
	published := draftAssignment(2, 5)
	published.Status = models.AssignmentStatusPublished
	repo := newFakeAssignmentRepo(draft, published)
	svc := newAssignmentTestService(repo)

	student := Actor{ID: 9, Role: models.RoleStudent}

	listed, err := svc.List(context.Background(), dto.AssignmentFilter{}, student)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, uint(2), listed[0].ID)

	_, err = svc.Get(context.Background(), 1, student)
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	got, err := svc.Get(context.Background(), 2, student)
	require.NoError(t, err)
	require.Equal(t, uint(2), got.ID)
}

func TestAssignmentUpdateOwnership(t *testing.T) {
	repo := newFakeAssignmentRepo(draftAssignment(1, 5))
	svc := newAssignmentTestService(repo)

	_, err := svc.Update(context.Background(), 1, dto.AssignmentUpdateRequest{Title: ptrString("Renamed")}, Actor{ID: 6, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrAccessDenied)

	updated, err := svc.Update(context.Background(), 1, dto.AssignmentUpdateRequest{Title: ptrString("Renamed")}, Actor{ID: 5, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)

	// Admins may edit anyone's assignment.
	updated, err = svc.Update(context.Background(), 1, dto.AssignmentUpdateRequest{Title: ptrString("Admin rename")}, Actor{ID: 99, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "Admin rename", updated.Title)
}

func TestAssignmentPublish(t *testing.T) {
	repo := newFakeAssignmentRepo(draftAssignment(1, 5))
	svc := newAssignmentTestService(repo)

	published, err := svc.Publish(context.Background(), 1, Actor{ID: 5, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPublished, published.Status)
}

func TestAssignmentDeleteArchivesWhenSubmissionsExist(t *testing.T) {
	repo := newFakeAssignmentRepo(draftAssignment(1, 5))
	repo.submissionCount = 3
	svc := newAssignmentTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1, Actor{ID: 5, Role: models.RoleTeacher}))

	stored := repo.assignments[1]
	require.Equal(t, models.AssignmentStatusArchived, stored.Status)
	require.Empty(t, repo.deleted)
}

func TestAssignmentDeleteRemovesWhenUnused(t *testing.T) {
	repo := newFakeAssignmentRepo(draftAssignment(1, 5))
	svc := newAssignmentTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1, Actor{ID: 5, Role: models.RoleTeacher}))
	require.Equal(t, []uint{1}, repo.deleted)
}

func TestAssignmentArchivedIsFrozen(t *testing.T) {
	archived := draftAssignment(1, 5)
	archived.Status = models.AssignmentStatusArchived
	repo := newFakeAssignmentRepo(archived)
	svc := newAssignmentTestService(repo)

	_, err := svc.Update(context.Background(), 1, dto.AssignmentUpdateRequest{Title: ptrString("Nope")}, Actor{ID: 5, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrAssignmentNotEditable)

	_, err = svc.Publish(context.Background(), 1, Actor{ID: 5, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrAssignmentNotEditable)
}
