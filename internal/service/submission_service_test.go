package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/pkg/pdf"
)

type fakeStorage struct {
	uploads []string
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, name)
	return "https://cdn.example.com/docs/" + name, nil
}

type fakeExtractor struct {
	extraction pdf.Extraction
	err        error
}

func (f *fakeExtractor) Extract(data []byte) (pdf.Extraction, error) {
	if f.err != nil {
		return pdf.Extraction{}, f.err
	}
	return f.extraction, nil
}

// multipartFile builds a real FileHeader so Create can open the upload the
// same way Fiber hands it over.
func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 10240)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
}

func publishedTestAssignment() models.Assignment {
	return models.Assignment{
		ID:        2,
		Title:     "Linear Graphs",
		Subject:   "Mathematics",
		Class:     "4E1",
		TeacherID: 7,
		Status:    models.AssignmentStatusPublished,
		DueDate:   time.Now().Add(48 * time.Hour),
	}
}

func newSubmissionTestService(
	submissions *fakeSubmissionRepo,
	assignments *fakeAssignmentRepo,
	storage *fakeStorage,
	extractor pdf.Extractor,
	notifier Notifier,
) SubmissionService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSubmissionService(submissions, assignments, storage, extractor, notifier, validate, 10, testLogger())
}

func TestSubmissionCreateStoresExtractedText(t *testing.T) {
	submissions := newFakeSubmissionRepo()
	assignments := newFakeAssignmentRepo(publishedTestAssignment())
	storage := &fakeStorage{}
	extractor := &fakeExtractor{extraction: pdf.Extraction{Text: "Q1: the gradient is 2.", PageCount: 3}}
	notifier := &recordingNotifier{}

	svc := newSubmissionTestService(submissions, assignments, storage, extractor, notifier)

	created, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: 2,
		Mode:         models.SubmissionModeFinal,
	}, multipartFile(t, "answers.pdf", pdfBytes()), Actor{ID: 3, Role: models.RoleStudent})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Equal(t, uint(3), created.StudentID)
	require.Equal(t, 3, created.PageCount)
	require.Equal(t, []string{"answers.pdf"}, storage.uploads)

	stored, err := submissions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Q1: the gradient is 2.", stored.ExtractedText)

	// The assignment owner hears about new work.
	require.Equal(t, []uint{7}, notifier.users)
	require.Equal(t, []string{models.NotificationSubmissionNew}, notifier.sent)
}

func TestSubmissionCreateRejectsNonPDF(t *testing.T) {
	assignments := newFakeAssignmentRepo(publishedTestAssignment())
	svc := newSubmissionTestService(newFakeSubmissionRepo(), assignments, &fakeStorage{}, &fakeExtractor{}, nil)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: 2,
		Mode:         models.SubmissionModeFinal,
	}, multipartFile(t, "answers.txt", []byte("plain text, not a document")), Actor{ID: 3, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrSubmissionNotPDF)
}

func TestSubmissionCreateRejectsMissingFile(t *testing.T) {
	assignments := newFakeAssignmentRepo(publishedTestAssignment())
	svc := newSubmissionTestService(newFakeSubmissionRepo(), assignments, &fakeStorage{}, &fakeExtractor{}, nil)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: 2,
		Mode:         models.SubmissionModeFinal,
	}, nil, Actor{ID: 3, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrSubmissionFileRequired)
}

func TestSubmissionCreateDeadlineRules(t *testing.T) {
	assignment := publishedTestAssignment()
	assignment.DueDate = time.Now().Add(-time.Hour)
	assignments := newFakeAssignmentRepo(assignment)
	extractor := &fakeExtractor{extraction: pdf.Extraction{Text: "late working", PageCount: 1}}
	svc := newSubmissionTestService(newFakeSubmissionRepo(), assignments, &fakeStorage{}, extractor, nil)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: 2,
		Mode:         models.SubmissionModeFinal,
	}, multipartFile(t, "late.pdf", pdfBytes()), Actor{ID: 3, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrSubmissionPastDue)

	// Drafts stay open for feedback after the deadline.
	_, err = svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: 2,
		Mode:         models.SubmissionModeDraft,
	}, multipartFile(t, "late.pdf", pdfBytes()), Actor{ID: 3, Role: models.RoleStudent})
	require.NoError(t, err)
}

func TestSubmissionCreateRequiresPublishedAssignment(t *testing.T) {
	assignment := publishedTestAssignment()
	assignment.Status = models.AssignmentStatusDraft
	assignments := newFakeAssignmentRepo(assignment)
	svc := newSubmissionTestService(newFakeSubmissionRepo(), assignments, &fakeStorage{}, &fakeExtractor{}, nil)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: 2,
		Mode:         models.SubmissionModeFinal,
	}, multipartFile(t, "answers.pdf", pdfBytes()), Actor{ID: 3, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrAssignmentNotOpen)
}

func TestSubmissionListScopesStudents(t *testing.T) {
	mine := finalTestSubmission()
	theirs := finalTestSubmission()
	theirs.ID = 2
	theirs.StudentID = 4
	submissions := newFakeSubmissionRepo(mine, theirs)
	svc := newSubmissionTestService(submissions, newFakeAssignmentRepo(), &fakeStorage{}, &fakeExtractor{}, nil)

	listed, err := svc.List(context.Background(), dto.SubmissionFilter{StudentID: ptrUint(4)}, Actor{ID: 3, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, uint(3), listed[0].StudentID)

	listed, err = svc.List(context.Background(), dto.SubmissionFilter{}, Actor{ID: 7, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestSubmissionCancelOwnerOnly(t *testing.T) {
	submissions := newFakeSubmissionRepo(finalTestSubmission())
	svc := newSubmissionTestService(submissions, newFakeAssignmentRepo(), &fakeStorage{}, &fakeExtractor{}, nil)

	_, err := svc.Cancel(context.Background(), 1, Actor{ID: 7, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrAccessDenied)

	cancelled, err := svc.Cancel(context.Background(), 1, Actor{ID: 3, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusCancelled, cancelled.Status)

	// A cancelled submission cannot be cancelled again.
	_, err = svc.Cancel(context.Background(), 1, Actor{ID: 3, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrInvalidStatusChange)
}

func TestSubmissionReviewTransitions(t *testing.T) {
	completed := finalTestSubmission()
	completed.Status = models.SubmissionStatusCompleted
	submissions := newFakeSubmissionRepo(completed)
	svc := newSubmissionTestService(submissions, newFakeAssignmentRepo(), &fakeStorage{}, &fakeExtractor{}, nil)
	teacher := Actor{ID: 7, Role: models.RoleTeacher}

	_, err := svc.Approve(context.Background(), 1, Actor{ID: 3, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrAccessDenied)

	approved, err := svc.Approve(context.Background(), 1, teacher)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, approved.Status)
	require.Equal(t, uint(7), *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	// Approved work cannot also be returned.
	_, err = svc.Return(context.Background(), 1, teacher)
	require.ErrorIs(t, err, ErrInvalidStatusChange)
}

func TestSubmissionAdjustMarksKeepsOriginals(t *testing.T) {
	graded := finalTestSubmission()
	graded.Status = models.SubmissionStatusCompleted
	awarded, total := 73.0, 100.0
	graded.MarksAwarded = &awarded
	graded.MarksTotal = &total
	submissions := newFakeSubmissionRepo(graded)
	svc := newSubmissionTestService(submissions, newFakeAssignmentRepo(), &fakeStorage{}, &fakeExtractor{}, nil)

	adjusted, err := svc.AdjustMarks(context.Background(), 1, dto.AdjustMarksRequest{
		AdjustedMarks: 78,
		Reason:        "method marks for q2",
	}, Actor{ID: 7, Role: models.RoleTeacher})
	require.NoError(t, err)

	require.True(t, adjusted.MarksAdjusted)
	require.Equal(t, 78.0, *adjusted.AdjustedMarks)
	require.Equal(t, 73.0, *adjusted.MarksAwarded)
}

func TestSubmissionAdjustMarksRequiresGrading(t *testing.T) {
	submissions := newFakeSubmissionRepo(finalTestSubmission())
	svc := newSubmissionTestService(submissions, newFakeAssignmentRepo(), &fakeStorage{}, &fakeExtractor{}, nil)

	_, err := svc.AdjustMarks(context.Background(), 1, dto.AdjustMarksRequest{AdjustedMarks: 10}, Actor{ID: 7, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrSubmissionNotGraded)
}
