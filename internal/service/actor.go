package service

import "github.com/brightclass/portal-api/internal/models"

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

// IsStaff reports whether the actor may act on other students' records.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleTeacher || a.Role == models.RoleAdmin
}

// CanAccessSubmission reports whether the actor may read or grade the given
// submission. Ownership is checked after the record is confirmed to exist, so
// a student probing another student's ID gets "access denied" rather than
// "not found".
func (a Actor) CanAccessSubmission(submission models.Submission) bool {
	return a.IsStaff() || a.ID == submission.StudentID
}
