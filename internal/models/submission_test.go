package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{SubmissionStatusPending, SubmissionStatusProcessing},
		{SubmissionStatusFailed, SubmissionStatusProcessing},
		{SubmissionStatusProcessing, SubmissionStatusCompleted},
		{SubmissionStatusProcessing, SubmissionStatusFailed},
		{SubmissionStatusCompleted, SubmissionStatusApproved},
		{SubmissionStatusCompleted, SubmissionStatusReturned},
		{SubmissionStatusPending, SubmissionStatusCancelled},
	}
	for _, pair := range allowed {
		require.True(t, CanTransition(pair[0], pair[1]), "%s -> %s should be allowed", pair[0], pair[1])
	}

	denied := [][2]string{
		{SubmissionStatusCompleted, SubmissionStatusProcessing},
		{SubmissionStatusProcessing, SubmissionStatusCancelled},
		{SubmissionStatusApproved, SubmissionStatusReturned},
		{SubmissionStatusCancelled, SubmissionStatusProcessing},
		{SubmissionStatusPending, SubmissionStatusCompleted},
	}
	for _, pair := range denied {
		require.False(t, CanTransition(pair[0], pair[1]), "%s -> %s should be denied", pair[0], pair[1])
	}
}

func TestProgressStatuses(t *testing.T) {
	statuses := ProgressStatuses()
	require.ElementsMatch(t, []string{
		SubmissionStatusCompleted,
		SubmissionStatusApproved,
		SubmissionStatusReturned,
	}, statuses)
	require.NotContains(t, statuses, SubmissionStatusPending)
	require.NotContains(t, statuses, SubmissionStatusFailed)
}

func TestProfileSubjectAndTopicEntry(t *testing.T) {
	profile := LearningProfile{}

	maths := profile.SubjectEntry("Mathematics")
	maths.CompletedAssignments = 1
	require.Len(t, profile.SubjectPerformance, 1)

	again := profile.SubjectEntry("Mathematics")
	require.Equal(t, 1, again.CompletedAssignments)
	require.Len(t, profile.SubjectPerformance, 1)

	topic := again.TopicEntry("Algebra")
	topic.TotalAttempts = 2
	require.Equal(t, 2, profile.SubjectPerformance[0].Topics[0].TotalAttempts)
}
