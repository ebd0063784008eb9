package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
	"github.com/brightclass/portal-api/internal/observability"
	"github.com/brightclass/portal-api/internal/repository"
	"github.com/brightclass/portal-api/pkg/ai"
)

const (
	tutorHistoryLimit   = 20
	tutorHistoryTTL     = 30 * time.Minute
	tutorSendBufferSize = 8
	tutorWeakTopicLimit = 5
)

// ErrTutorMessageEmpty indicates the message had no content after sanitization.
var ErrTutorMessageEmpty = errors.New("tutor message empty after sanitization")

// TutorConnectionOptions wraps metadata extracted during the HTTP upgrade.
type TutorConnectionOptions struct {
	StudentID   uint
	StudentName string
	Context     context.Context
}

// TutorChatService runs the AI tutoring conversation over a websocket. Each
// student turn is sanitized, persisted, answered by the tutor model with the
// student's learning profile as context, and written back over the socket.
type TutorChatService interface {
	ServeConnection(conn *websocket.Conn, opts TutorConnectionOptions)
	Send(ctx context.Context, payload dto.TutorMessageRequest, actor Actor) (dto.TutorMessageResponse, error)
	History(ctx context.Context, sessionID string, actor Actor) ([]dto.TutorMessageResponse, error)
}

type tutorChatService struct {
	repo      repository.TutorChatRepository
	profiles  LearningProfileService
	tutor     ai.Tutor
	redis     *redis.Client
	cacheBase string
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewTutorChatService constructs the tutoring chat service. channelBase names
// the redis history cache prefix; empty disables caching.
func NewTutorChatService(repo repository.TutorChatRepository, profiles LearningProfileService, tutor ai.Tutor, redisClient *redis.Client, channelBase string, validate *validator.Validate, logger zerolog.Logger) TutorChatService {
	cacheBase := ""
	if channelBase != "" {
		cacheBase = channelBase + ":tutor:history"
	}

	return &tutorChatService{
		repo:      repo,
		profiles:  profiles,
		tutor:     tutor,
		redis:     redisClient,
		cacheBase: cacheBase,
		validator: validate,
		logger:    logger.With().Str("component", "tutor_chat_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *tutorChatService) ServeConnection(conn *websocket.Conn, opts TutorConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &tutorClient{
		conn:    conn,
		send:    make(chan dto.TutorMessageResponse, tutorSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	go client.writer()
	client.reader()
}

// Send processes one student turn and returns the tutor's reply.
func (s *tutorChatService) Send(ctx context.Context, payload dto.TutorMessageRequest, actor Actor) (dto.TutorMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TutorMessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if clean == "" {
		return dto.TutorMessageResponse{}, ErrTutorMessageEmpty
	}

	history := s.loadHistory(ctx, actor.ID, payload.SessionID)

	studentTurn := models.TutorMessage{
		StudentID: actor.ID,
		SessionID: payload.SessionID,
		Role:      models.TutorRoleStudent,
		Content:   clean,
	}
	if err := s.repo.Create(ctx, &studentTurn); err != nil {
		return dto.TutorMessageResponse{}, err
	}

	profile, profileErr := s.profiles.GetProfile(ctx, actor.ID)
	if profileErr != nil {
		s.logger.Warn().Err(profileErr).Uint("student_id", actor.ID).Msg("tutor proceeding without learning profile")
	}

	weakTopics := profile.WeakTopics
	if len(weakTopics) > tutorWeakTopicLimit {
		weakTopics = weakTopics[:tutorWeakTopicLimit]
	}

	reply, err := s.tutor.Reply(ctx, ai.TutorInput{
		AbilityLevel: profile.OverallAbilityLevel,
		WeakTopics:   weakTopics,
		History:      history,
		Message:      clean,
	})
	if err != nil {
		observability.TutorTurns().WithLabelValues("failed").Inc()
		return dto.TutorMessageResponse{}, err
	}

	assistantTurn := models.TutorMessage{
		StudentID: actor.ID,
		SessionID: payload.SessionID,
		Role:      models.TutorRoleAssistant,
		Content:   reply,
	}
	if err := s.repo.Create(ctx, &assistantTurn); err != nil {
		return dto.TutorMessageResponse{}, err
	}

	s.cacheHistory(ctx, actor.ID, payload.SessionID, append(history,
		ai.TutorTurn{Role: models.TutorRoleStudent, Content: clean},
		ai.TutorTurn{Role: models.TutorRoleAssistant, Content: reply},
	))

	observability.TutorTurns().WithLabelValues("completed").Inc()

	return dto.NewTutorMessageResponse(assistantTurn), nil
}

func (s *tutorChatService) History(ctx context.Context, sessionID string, actor Actor) ([]dto.TutorMessageResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	messages, err := s.repo.ListBySession(ctx, actor.ID, sessionID, tutorHistoryLimit*2)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TutorMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, dto.NewTutorMessageResponse(message))
	}
	return responses, nil
}

// loadHistory prefers the redis cache and falls back to the database. History
// is advisory prompt context, so cache failures degrade silently.
func (s *tutorChatService) loadHistory(ctx context.Context, studentID uint, sessionID string) []ai.TutorTurn {
	if s.redis != nil && s.cacheBase != "" {
		result, err := s.redis.Get(ctx, s.historyKey(studentID, sessionID)).Result()
		if err == nil {
			var turns []ai.TutorTurn
			if err := json.Unmarshal([]byte(result), &turns); err == nil {
				return turns
			}
			s.logger.Warn().Msg("discarding malformed cached tutor history")
		}
	}

	messages, err := s.repo.ListBySession(ctx, studentID, sessionID, tutorHistoryLimit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("tutor history load failed")
		return nil
	}

	turns := make([]ai.TutorTurn, 0, len(messages))
	for _, message := range messages {
		turns = append(turns, ai.TutorTurn{Role: message.Role, Content: message.Content})
	}
	return turns
}

func (s *tutorChatService) cacheHistory(ctx context.Context, studentID uint, sessionID string, turns []ai.TutorTurn) {
	if s.redis == nil || s.cacheBase == "" {
		return
	}

	if len(turns) > tutorHistoryLimit {
		turns = turns[len(turns)-tutorHistoryLimit:]
	}

	payload, err := json.Marshal(turns)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal tutor history for cache")
		return
	}

	if err := s.redis.Set(ctx, s.historyKey(studentID, sessionID), payload, tutorHistoryTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache tutor history")
	}
}

func (s *tutorChatService) historyKey(studentID uint, sessionID string) string {
	return fmt.Sprintf("%s:%d:%s", s.cacheBase, studentID, sessionID)
}

type tutorClient struct {
	conn    *websocket.Conn
	send    chan dto.TutorMessageResponse
	options TutorConnectionOptions
	service *tutorChatService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

func (c *tutorClient) reader() {
	defer c.close()

	actor := Actor{ID: c.options.StudentID, Role: models.RoleStudent}

	for {
		var payload dto.TutorMessageRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("tutor read loop ended")
			return
		}

		response, err := c.service.Send(c.baseCtx, payload, actor)
		if err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process tutor message")
			continue
		}

		select {
		case <-c.closed:
			return
		default:
		}

		select {
		case c.send <- response:
		default:
			c.service.logger.Warn().Msg("tutor send queue full, dropping reply")
		}
	}
}

func (c *tutorClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("tutor write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("tutor ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *tutorClient) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}
