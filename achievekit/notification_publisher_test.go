package achievekit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationPublisher_Send(t *testing.T) {
	nk := newTestNakama()
	p := &NotificationPublisher{Notifier: nk, UserID: "user-1"}

	p.Send(context.Background(), &mockLogger{}, []*PublisherEvent{
		{
			Name:      eventAchievementCompleted,
			Id:        "evt-1",
			Timestamp: 1700000000,
			Value:     "World Tour",
			Metadata:  map[string]string{"module": "Generic", "secret": "false"},
			SourceId:  "7001",
		},
		{Name: "something_else", Id: "evt-2"},
	})

	require.Len(t, nk.notifications, 1)
	n := nk.notifications[0]
	assert.Equal(t, "user-1", n.UserID)
	assert.Equal(t, "Achievement unlocked", n.Subject)
	assert.Equal(t, notificationCodeAchievementCompleted, n.Code)
	assert.Equal(t, map[string]interface{}{
		"event_id":       "evt-1",
		"achievement_id": "7001",
		"title":          "World Tour",
		"module":         "Generic",
		"completed_at":   int64(1700000000),
	}, n.Content)
}

func TestNotificationPublisher_SecretSubject(t *testing.T) {
	nk := newTestNakama()
	p := &NotificationPublisher{Notifier: nk, UserID: "user-1"}

	p.Send(context.Background(), &mockLogger{}, []*PublisherEvent{{
		Name:     eventAchievementCompleted,
		Metadata: map[string]string{"secret": "true"},
	}})

	require.Len(t, nk.notifications, 1)
	assert.Equal(t, "Secret achievement unlocked", nk.notifications[0].Subject)
}

type failingNotifier struct{}

func (failingNotifier) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	return errors.New("notification backend down")
}

func TestNotificationPublisher_LogsSendFailure(t *testing.T) {
	logger := &captureLogger{}
	p := &NotificationPublisher{Notifier: failingNotifier{}, UserID: "user-1"}

	p.Send(context.Background(), logger, []*PublisherEvent{{Name: eventAchievementCompleted}})
	p.Connected(context.Background(), logger, true)

	assert.Equal(t, 1, logger.count("error"))
}
