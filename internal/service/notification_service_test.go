package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brightclass/portal-api/internal/dto"
	"github.com/brightclass/portal-api/internal/models"
)

type fakeNotificationRepo struct {
	notifications map[uint]models.Notification
	nextID        uint
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uint]models.Notification)}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	f.nextID++
	notification.ID = f.nextID
	notification.CreatedAt = time.Now()
	f.notifications[notification.ID] = *notification
	return nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	items := make([]models.Notification, 0)
	for _, item := range f.notifications {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id uint) (models.Notification, error) {
	notification, ok := f.notifications[id]
	if !ok {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	return notification, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id uint) error {
	notification, ok := f.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	notification.Read = true
	f.notifications[id] = notification
	return nil
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func newNotificationTestService(t *testing.T, repo *fakeNotificationRepo) NotificationService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewNotificationService(repo, testRedis(t), "portal", nil, validate, testLogger())
}

func TestNotificationPublishDeliversToSubscriber(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newNotificationTestService(t, repo)

	stream, cleanup := svc.Subscribe(3)
	defer cleanup()

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  3,
		Type:    models.NotificationGradingCompleted,
		Message: "Your submission was graded.",
	})
	require.NoError(t, err)
	require.NotZero(t, published.ID)

	select {
	case received := <-stream:
		require.Equal(t, published.ID, received.ID)
		require.Equal(t, models.NotificationGradingCompleted, received.Type)
	case <-time.After(time.Second):
		t.Fatal("expected notification on subscriber channel")
	}
}

func TestNotificationPublishSanitizesMessage(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newNotificationTestService(t, repo)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  3,
		Type:    "generic",
		Message: `<script>alert("x")</script>New feedback available`,
	})
	require.NoError(t, err)
	require.Equal(t, "New feedback available", published.Message)

	// A payload that is nothing but markup is rejected outright.
	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  3,
		Type:    "generic",
		Message: "<script>alert(1)</script>",
	})
	require.Error(t, err)
}

func TestNotificationMarkReadOwnership(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newNotificationTestService(t, repo)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  3,
		Type:    "generic",
		Message: "hello",
	})
	require.NoError(t, err)

	// Another user's id reads as missing, not forbidden.
	_, err = svc.MarkRead(context.Background(), published.ID, 4)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	updated, err := svc.MarkRead(context.Background(), published.ID, 3)
	require.NoError(t, err)
	require.True(t, updated.Read)

	_, err = svc.MarkRead(context.Background(), 999, 3)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationSubscribeCleanupClosesChannel(t *testing.T) {
	svc := newNotificationTestService(t, newFakeNotificationRepo())

	stream, cleanup := svc.Subscribe(3)
	cleanup()

	_, open := <-stream
	require.False(t, open)
}

// The grading pipeline takes its Notifier straight from the service interface.
var _ Notifier = (NotificationService)(nil)

func TestNotificationNotifyThroughInterface(t *testing.T) {
	repo := newFakeNotificationRepo()

	svc := newNotificationTestService(t, repo)
	svc.Notify(context.Background(), 3, models.NotificationGradingCompleted, "Feedback ready")

	stored, err := repo.ListByUser(context.Background(), 3, 10, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "Feedback ready", stored[0].Message)
}

func TestNotificationNotifySwallowsErrors(t *testing.T) {
	svc := newNotificationTestService(t, newFakeNotificationRepo())

	// Invalid payloads are logged, not propagated.
	svc.Notify(context.Background(), 0, "generic", "")
}
