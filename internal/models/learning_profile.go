package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecentGradesLimit caps the recent-grades window. Subject averages and the
// overall ability level are computed over this window, so old grades age out
// of them once they fall off the end.
const RecentGradesLimit = 10

// TopicPerformance tracks cumulative performance on one syllabus topic.
// averageScore is a full incremental mean since the first attempt, unlike the
// windowed subject average.
type TopicPerformance struct {
	Topic           string    `json:"topic"`
	TotalAttempts   int       `json:"total_attempts"`
	AverageScore    float64   `json:"average_score"`
	LastAttemptDate time.Time `json:"last_attempt_date"`
	Trend           string    `json:"trend"`
	StrengthLevel   string    `json:"strength_level"`
}

// SubjectPerformance tracks a student's performance within one subject.
// totalAssignments counts distinct assignments graded in the subject;
// completedAssignments counts final gradings, so a regraded assignment moves
// only the latter.
type SubjectPerformance struct {
	Subject              string             `json:"subject"`
	AverageScore         float64            `json:"average_score"`
	TotalAssignments     int                `json:"total_assignments"`
	CompletedAssignments int                `json:"completed_assignments"`
	SeenAssignmentIDs    []uint             `json:"seen_assignment_ids"`
	LastActivityDate     time.Time          `json:"last_activity_date"`
	Topics               []TopicPerformance `json:"topics"`
}

// RecentGrade is one entry in the capped newest-first recent-grades list.
type RecentGrade struct {
	AssignmentID uint      `json:"assignment_id"`
	Subject      string    `json:"subject"`
	Topic        string    `json:"topic"`
	Percentage   float64   `json:"percentage"`
	Grade        string    `json:"grade"`
	Date         time.Time `json:"date"`
}

// LearningProfile is the cumulative per-student performance summary. One row
// per student, created lazily and never deleted; mutated only by the profile
// aggregation path.
type LearningProfile struct {
	ID                  uint                                      `gorm:"primaryKey" json:"id"`
	StudentID           uint                                      `gorm:"uniqueIndex;not null" json:"student_id"`
	OverallAbilityLevel string                                    `gorm:"size:32;not null;default:at_grade" json:"overall_ability_level"`
	SubjectPerformance  datatypes.JSONSlice[SubjectPerformance]   `json:"subject_performance"`
	RecentGrades        datatypes.JSONSlice[RecentGrade]          `json:"recent_grades"`
	StrongTopics        datatypes.JSONSlice[string]               `json:"strong_topics"`
	WeakTopics          datatypes.JSONSlice[string]               `json:"weak_topics"`
	TotalSubmissions    int                                       `gorm:"not null;default:0" json:"total_submissions"`
	DraftSubmissions    int                                       `gorm:"not null;default:0" json:"draft_submissions"`
	FinalSubmissions    int                                       `gorm:"not null;default:0" json:"final_submissions"`

	ProficiencyUpdatedAt time.Time `json:"proficiency_updated_at"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// SubjectEntry returns a pointer to the performance record for subject,
// creating it when absent. The returned pointer aliases the profile's slice.
func (p *LearningProfile) SubjectEntry(subject string) *SubjectPerformance {
	for i := range p.SubjectPerformance {
		if p.SubjectPerformance[i].Subject == subject {
			return &p.SubjectPerformance[i]
		}
	}
	p.SubjectPerformance = append(p.SubjectPerformance, SubjectPerformance{Subject: subject})
	return &p.SubjectPerformance[len(p.SubjectPerformance)-1]
}

// NoteAssignment records an assignment id under s, keeping TotalAssignments
// equal to the number of distinct assignments seen.
func (s *SubjectPerformance) NoteAssignment(id uint) {
	for _, seen := range s.SeenAssignmentIDs {
		if seen == id {
			return
		}
	}
	s.SeenAssignmentIDs = append(s.SeenAssignmentIDs, id)
	s.TotalAssignments = len(s.SeenAssignmentIDs)
}

// TopicEntry returns a pointer to the topic record under s, creating it when
// absent.
func (s *SubjectPerformance) TopicEntry(topic string) *TopicPerformance {
	for i := range s.Topics {
		if s.Topics[i].Topic == topic {
			return &s.Topics[i]
		}
	}
	s.Topics = append(s.Topics, TopicPerformance{Topic: topic})
	return &s.Topics[len(s.Topics)-1]
}
