package dto

import "time"

// StudentDashboardResponse summarizes a student's current standing.
type StudentDashboardResponse struct {
	StudentID      uint                 `json:"student_id"`
	AbilityLevel   string               `json:"ability_level"`
	PendingCount   int                  `json:"pending_count"`
	CompletedCount int                  `json:"completed_count"`
	AverageRecent  float64              `json:"average_recent"`
	UpcomingWork   []AssignmentResponse `json:"upcoming_work"`
	RecentFeedback []SubmissionResponse `json:"recent_feedback"`
	StrongTopics   []string             `json:"strong_topics"`
	WeakTopics     []string             `json:"weak_topics"`
	UnreadCount    int                  `json:"unread_count"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// TeacherDashboardResponse summarizes grading work for a teacher.
type TeacherDashboardResponse struct {
	TeacherID       uint                 `json:"teacher_id"`
	OpenAssignments int                  `json:"open_assignments"`
	AwaitingReview  []SubmissionResponse `json:"awaiting_review"`
	FailedGradings  []SubmissionResponse `json:"failed_gradings"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// AdminDashboardResponse summarizes portal-wide counts.
type AdminDashboardResponse struct {
	Students    int64     `json:"students"`
	Teachers    int64     `json:"teachers"`
	Assignments int       `json:"assignments"`
	Submissions int       `json:"submissions"`
	GeneratedAt time.Time `json:"generated_at"`
}
