package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeValidatedFinalResult(t *testing.T) {
	content := `{
		"overall_feedback": "Solid attempt with some gaps in binary arithmetic.",
		"overall_strengths": ["clear working"],
		"overall_improvements": ["show units"],
		"question_feedback": [
			{"question_id": "q1", "feedback": "correct", "marks_awarded": 5, "marks_possible": 5}
		],
		"total_marks_awarded": 73,
		"total_marks_possible": 100,
		"percentage": 73,
		"grade": "B4",
		"topic_scores": {
			"Binary Systems": {"awarded": 10, "possible": 15, "percentage": 66.7}
		}
	}`

	var result FinalResult
	require.NoError(t, decodeValidated(content, finalSchema, &result))
	require.Equal(t, 73.0, result.TotalMarksAwarded)
	require.Equal(t, "B4", result.Grade)
	require.Equal(t, 66.7, result.TopicScores["Binary Systems"].Percentage)
}

func TestDecodeValidatedRejectsMissingMarks(t *testing.T) {
	content := `{"overall_feedback": "nice"}`

	var result FinalResult
	err := decodeValidated(content, finalSchema, &result)
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema validation")
}

func TestDecodeValidatedRejectsMalformedJSON(t *testing.T) {
	var result DraftResult
	err := decodeValidated("I could not grade this, sorry!", draftSchema, &result)
	require.Error(t, err)
}

func TestDecodeValidatedRejectsWrongTypes(t *testing.T) {
	content := `{"overall_feedback": "ok", "total_marks_awarded": "seventy", "total_marks_possible": 100}`

	var result FinalResult
	err := decodeValidated(content, finalSchema, &result)
	require.Error(t, err)
}

func TestDecodeValidatedDraftResult(t *testing.T) {
	content := `{
		"overall_feedback": "Good structure so far.",
		"overall_strengths": ["organisation"],
		"overall_improvements": ["add examples"],
		"question_feedback": [{"question_id": "q1", "feedback": "expand this"}]
	}`

	var result DraftResult
	require.NoError(t, decodeValidated(content, draftSchema, &result))
	require.Equal(t, "Good structure so far.", result.OverallFeedback)
	require.Len(t, result.QuestionFeedback, 1)
}
