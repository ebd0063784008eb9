package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	markingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Subsystem: "ai",
		Name:      "marking_duration_seconds",
		Help:      "Duration of AI marking requests",
	}, []string{"model", "operation"})

	markingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "ai",
		Name:      "marking_failures_total",
		Help:      "Number of AI marking failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI marker.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIMarker implements Marker and Tutor against the OpenAI chat
// completion API.
type OpenAIMarker struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIMarker builds a marker using the provided configuration.
func NewOpenAIMarker(cfg OpenAIConfig) (*OpenAIMarker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIMarker{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/brightclass/portal-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// GenerateDraftFeedback requests qualitative, mark-free feedback for a draft
// submission.
func (m *OpenAIMarker) GenerateDraftFeedback(parent context.Context, input DraftInput) (DraftResult, error) {
	ctx, span := m.tracer.Start(parent, "openai.draft_feedback", trace.WithAttributes(
		attribute.String("model", m.cfg.Model),
		attribute.String("subject", input.Subject),
	))
	defer span.End()

	content, err := m.complete(ctx, "draft", draftSystemPrompt(), buildDraftPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DraftResult{}, err
	}

	var result DraftResult
	if err := decodeValidated(content, draftSchema, &result); err != nil {
		markingFailures.WithLabelValues(m.cfg.Model, "draft").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DraftResult{}, err
	}

	return result, nil
}

// MarkFinalSubmission requests numeric marking with a topic-level breakdown.
func (m *OpenAIMarker) MarkFinalSubmission(parent context.Context, input FinalInput) (FinalResult, error) {
	ctx, span := m.tracer.Start(parent, "openai.mark_final", trace.WithAttributes(
		attribute.String("model", m.cfg.Model),
		attribute.String("subject", input.Subject),
		attribute.Float64("marks_possible", input.TotalMarksPossible),
	))
	defer span.End()

	content, err := m.complete(ctx, "final", finalSystemPrompt(), buildFinalPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FinalResult{}, err
	}

	var result FinalResult
	if err := decodeValidated(content, finalSchema, &result); err != nil {
		markingFailures.WithLabelValues(m.cfg.Model, "final").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FinalResult{}, err
	}

	if result.TotalMarksAwarded > result.TotalMarksPossible {
		result.TotalMarksAwarded = result.TotalMarksPossible
	}

	return result, nil
}

// Reply answers a tutoring chat message with learning-profile context.
func (m *OpenAIMarker) Reply(parent context.Context, input TutorInput) (string, error) {
	ctx, span := m.tracer.Start(parent, "openai.tutor_reply", trace.WithAttributes(
		attribute.String("model", m.cfg.Model),
	))
	defer span.End()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: tutorSystemPrompt(input)},
	}
	for _, turn := range input.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input.Message})

	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
		Messages:    messages,
	})
	markingDuration.WithLabelValues(m.cfg.Model, "tutor").Observe(time.Since(start).Seconds())
	if err != nil {
		markingFailures.WithLabelValues(m.cfg.Model, "tutor").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai tutor reply: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		markingFailures.WithLabelValues(m.cfg.Model, "tutor").Inc()
		span.RecordError(err)
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (m *OpenAIMarker) complete(ctx context.Context, operation, system, user string) (string, error) {
	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	markingDuration.WithLabelValues(m.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		markingFailures.WithLabelValues(m.cfg.Model, operation).Inc()
		return "", fmt.Errorf("openai %s marking: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		markingFailures.WithLabelValues(m.cfg.Model, operation).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func draftSystemPrompt() string {
	return "You are an experienced school teacher reviewing a draft submission. Respond with a JSON object containing overall_" +
		"feedback (string), overall_strengths (array of strings), overall_improvements (array of strings), and question_feedbac" +
		"k (array of {question_id, feedback}). Give constructive qualitative feedback only. Do not award marks."
}

func finalSystemPrompt() string {
	return "You are an experienced school examiner marking a final submission. Respond with a JSON object containing overall_f" +
		"eedback, overall_strengths, overall_improvements, question_feedback (array of {question_id, feedback, marks_awarded, m" +
		"arks_possible}), total_marks_awarded, total_marks_possible, percentage, grade, and topic_scores (object mapping topic " +
		"name to {awarded, possible, percentage}). Mark strictly against the marking scheme."
}

func tutorSystemPrompt(input TutorInput) string {
	builder := strings.Builder{}
	builder.WriteString("You are a patient tutor helping a secondary school student. Explain concepts step by step and never just give away answers.")
	if input.StudentName != "" {
		builder.WriteString(" The student's name is ")
		builder.WriteString(input.StudentName)
		builder.WriteString(".")
	}
	if input.AbilityLevel != "" {
		builder.WriteString(" Their current ability level is ")
		builder.WriteString(input.AbilityLevel)
		builder.WriteString(".")
	}
	if len(input.WeakTopics) > 0 {
		builder.WriteString(" Topics they struggle with: ")
		builder.WriteString(strings.Join(input.WeakTopics, ", "))
		builder.WriteString(".")
	}
	return builder.String()
}

func buildDraftPrompt(input DraftInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Assignment\n")
	builder.WriteString(input.Title)
	builder.WriteString("\n\n## Subject\n")
	builder.WriteString(input.Subject)
	builder.WriteString("\n\n## Topic\n")
	builder.WriteString(input.Topic)
	if input.AbilityLevel != "" {
		builder.WriteString("\n\n## Student Ability Level\n")
		builder.WriteString(input.AbilityLevel)
	}
	writeQuestions(&builder, input.Questions)
	builder.WriteString("\n\n## Submission Text\n")
	builder.WriteString(input.ExtractedText)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func buildFinalPrompt(input FinalInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Assignment\n")
	builder.WriteString(input.Title)
	builder.WriteString("\n\n## Subject\n")
	builder.WriteString(input.Subject)
	builder.WriteString("\n\n## Topic\n")
	builder.WriteString(input.Topic)
	builder.WriteString(fmt.Sprintf("\n\n## Total Marks Possible\n%g", input.TotalMarksPossible))
	writeQuestions(&builder, input.Questions)
	builder.WriteString("\n\n## Submission Text\n")
	builder.WriteString(input.ExtractedText)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func writeQuestions(builder *strings.Builder, questions []QuestionContext) {
	if len(questions) == 0 {
		return
	}
	builder.WriteString("\n\n## Questions\n")
	for i, q := range questions {
		builder.WriteString(fmt.Sprintf("%d. [%s] %s", i+1, q.ID, q.Text))
		if q.Marks > 0 {
			builder.WriteString(fmt.Sprintf(" (%g marks)", q.Marks))
		}
		if q.Topic != "" {
			builder.WriteString(fmt.Sprintf(" [topic: %s]", q.Topic))
		}
		if q.MarkingScheme != "" {
			builder.WriteString("\n   Marking scheme: ")
			builder.WriteString(q.MarkingScheme)
		}
		if q.ModelAnswer != "" {
			builder.WriteString("\n   Model answer: ")
			builder.WriteString(q.ModelAnswer)
		}
		if q.Answer != "" {
			builder.WriteString("\n   Student answer: ")
			builder.WriteString(q.Answer)
		}
		builder.WriteString("\n")
	}
}
