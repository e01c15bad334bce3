package achievekit

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	eventAchievementCompleted = "achievement_completed"

	publisherSendLabel = "publisher_send"
)

type PublisherEvent struct {
	Name      string            `json:"name,omitempty"`
	Id        string            `json:"id,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Value     string            `json:"value,omitempty"`

	// SourceId is the identifier of the event source, such as an achievement ID.
	SourceId string `json:"-"`
	// Source is the object that produced the event, such as the achievement.
	Source any `json:"-"`
}

// The Publisher receives events generated by the engine, typically to surface
// a toast for each completed achievement or to forward analytics.
//
// Send is called on the goroutine that completed the achievement, so
// implementations must return quickly and handle their own errors; callers
// never retry.
type Publisher interface {
	// Connected is called after each successful server connection. fresh is
	// true when no save data existed remotely.
	Connected(ctx context.Context, logger runtime.Logger, fresh bool)

	// Send is called when there are one or more events generated.
	Send(ctx context.Context, logger runtime.Logger, events []*PublisherEvent)
}
