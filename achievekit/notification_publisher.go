package achievekit

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

const notificationCodeAchievementCompleted = 2001

// Notifier is the part of runtime.NakamaModule used to deliver notifications.
type Notifier interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

// NotificationPublisher forwards completed achievements to the player as
// persistent Nakama notifications.
type NotificationPublisher struct {
	Notifier Notifier
	UserID   string
}

func (p *NotificationPublisher) Connected(ctx context.Context, logger runtime.Logger, fresh bool) {
	// No-op
}

func (p *NotificationPublisher) Send(ctx context.Context, logger runtime.Logger, events []*PublisherEvent) {
	for _, event := range events {
		if event.Name != eventAchievementCompleted {
			continue
		}
		subject := "Achievement unlocked"
		if event.Metadata["secret"] == "true" {
			subject = "Secret achievement unlocked"
		}
		content := map[string]interface{}{
			"event_id":       event.Id,
			"achievement_id": event.SourceId,
			"title":          event.Value,
			"module":         event.Metadata["module"],
			"completed_at":   event.Timestamp,
		}
		if err := p.Notifier.NotificationSend(ctx, p.UserID, subject, content, notificationCodeAchievementCompleted, "", true); err != nil {
			logger.Error("Failed to send achievement notification to user %s: %v", p.UserID, err)
		}
	}
}
