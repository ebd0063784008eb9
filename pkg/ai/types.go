package ai

import "context"

// QuestionContext describes one assignment question handed to the marker.
type QuestionContext struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Type          string  `json:"type"`
	Marks         float64 `json:"marks"`
	MarkingScheme string  `json:"marking_scheme,omitempty"`
	ModelAnswer   string  `json:"model_answer,omitempty"`
	Topic         string  `json:"topic,omitempty"`
	Answer        string  `json:"answer,omitempty"`
}

// TopicScore is the marker-reported breakdown for one syllabus subtopic.
type TopicScore struct {
	Awarded    float64 `json:"awarded"`
	Possible   float64 `json:"possible"`
	Percentage float64 `json:"percentage"`
}

// QuestionFeedback carries per-question commentary from the marker.
type QuestionFeedback struct {
	QuestionID    string  `json:"question_id"`
	Feedback      string  `json:"feedback"`
	MarksAwarded  float64 `json:"marks_awarded"`
	MarksPossible float64 `json:"marks_possible"`
}

// DraftInput is the context for qualitative draft feedback. No marks are
// requested or returned.
type DraftInput struct {
	Title         string
	Subject       string
	Topic         string
	Questions     []QuestionContext
	ExtractedText string
	AbilityLevel  string
}

// DraftResult is the structured draft feedback returned by the marker.
type DraftResult struct {
	OverallFeedback     string             `json:"overall_feedback"`
	OverallStrengths    []string           `json:"overall_strengths"`
	OverallImprovements []string           `json:"overall_improvements"`
	QuestionFeedback    []QuestionFeedback `json:"question_feedback"`
}

// FinalInput is the context for numeric marking of a final submission.
type FinalInput struct {
	Title              string
	Subject            string
	Topic              string
	Questions          []QuestionContext
	ExtractedText      string
	TotalMarksPossible float64
}

// FinalResult is the structured marking result for a final submission.
type FinalResult struct {
	OverallFeedback     string                `json:"overall_feedback"`
	OverallStrengths    []string              `json:"overall_strengths"`
	OverallImprovements []string              `json:"overall_improvements"`
	QuestionFeedback    []QuestionFeedback    `json:"question_feedback"`
	TotalMarksAwarded   float64               `json:"total_marks_awarded"`
	TotalMarksPossible  float64               `json:"total_marks_possible"`
	Percentage          float64               `json:"percentage"`
	Grade               string                `json:"grade"`
	TopicScores         map[string]TopicScore `json:"topic_scores"`
}

// Marker grades student submissions. Implementations are external,
// rate-limited services; every method may fail and failures must never be
// substituted with default scores.
type Marker interface {
	GenerateDraftFeedback(ctx context.Context, input DraftInput) (DraftResult, error)
	MarkFinalSubmission(ctx context.Context, input FinalInput) (FinalResult, error)
}

// TutorInput carries one student message plus conversational context.
type TutorInput struct {
	StudentName  string
	AbilityLevel string
	WeakTopics   []string
	History      []TutorTurn
	Message      string
}

// TutorTurn is one prior exchange in a tutoring conversation.
type TutorTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tutor answers tutoring chat messages.
type Tutor interface {
	Reply(ctx context.Context, input TutorInput) (string, error)
}
