package models

import "time"

// Roles recognised by the portal.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents a portal account: a student, teacher, or administrator.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	Class     string    `gorm:"size:64;index" json:"class"`
	SchoolID  string    `gorm:"size:64;index" json:"school_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStaff reports whether the user may act on other students' submissions.
func (u User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
