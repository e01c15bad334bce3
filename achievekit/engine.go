package achievekit

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Engine wires the achievement registry, the event bus and the persistence
// coordinator together for one local player.
type Engine struct {
	cfg    Config
	logger runtime.Logger
	bus    *Bus
	state  StateInspector
	clock  Clock

	cache       *Cache
	coordinator *Coordinator

	mu            sync.RWMutex
	publishers    []Publisher
	subscriptions []Subscription
}

type EngineOption func(*Engine)

// WithClock replaces the wall clock used by achievements and the coordinator.
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithPublisher registers a publisher at construction time.
func WithPublisher(publisher Publisher) EngineOption {
	return func(e *Engine) {
		e.publishers = append(e.publishers, publisher)
	}
}

// NewEngine builds an engine in the Idle phase with a freshly registered,
// not yet loaded save data container. profile may be nil, in which case the
// completed count is never pushed.
func NewEngine(cfg Config, logger runtime.Logger, bus *Bus, state StateInspector, remote RemoteStore, profile ProfileStore, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		logger: logger,
		bus:    bus,
		state:  state,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cache = NewCache(e.newSaveData())
	coordinator, err := NewCoordinator(cfg, e.cache, remote, profile, e.newSaveData, logger, e.clock)
	if err != nil {
		return nil, err
	}
	e.coordinator = coordinator
	e.subscribe()
	return e, nil
}

func (e *Engine) newSaveData() *SaveData {
	d := NewSaveData(e.onAchievementCompleted, e.clock)
	RegisterAchievements(d, e.state)
	return d
}

func (e *Engine) onAchievementCompleted(id int, title string) {
	module := ModuleGeneric
	secret := false
	if a, ok := e.cache.Data().Get(id); ok {
		module = a.Module()
		secret = a.Secret()
	}
	achievementsCompleted.WithLabelValues(string(module)).Inc()
	e.logger.Info("Achievement completed: %s (%d)", title, id)
	e.coordinator.PushCompletedCount()

	e.publish(&PublisherEvent{
		Name:      eventAchievementCompleted,
		Id:        uuid.New().String(),
		Timestamp: e.clock.Now().Unix(),
		Value:     title,
		Metadata: map[string]string{
			"module": string(module),
			"secret": strconv.FormatBool(secret),
		},
		SourceId: strconv.Itoa(id),
	})
}

func (e *Engine) publish(event *PublisherEvent) {
	e.mu.RLock()
	publishers := e.publishers
	e.mu.RUnlock()
	for _, p := range publishers {
		e.send(p, event)
	}
}

func (e *Engine) send(p Publisher, event *PublisherEvent) {
	defer func() {
		if r := recover(); r != nil {
			eventHandlerPanics.WithLabelValues(publisherSendLabel).Inc()
			e.logger.Error("Publisher failed to send %s event: %v", event.Name, r)
		}
	}()
	p.Send(context.Background(), e.logger, []*PublisherEvent{event})
}

// AddPublisher registers a publisher for completion events.
func (e *Engine) AddPublisher(publisher Publisher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publishers = append(e.publishers[:len(e.publishers):len(e.publishers)], publisher)
}

// OnServerConnection loads previous, the blob stored remotely ("" if none),
// and starts periodic uploads when the data is valid.
func (e *Engine) OnServerConnection(ctx context.Context, previous string) error {
	if err := e.coordinator.OnServerConnection(ctx, previous); err != nil {
		return err
	}
	e.mu.RLock()
	publishers := e.publishers
	e.mu.RUnlock()
	for _, p := range publishers {
		p.Connected(ctx, e.logger, previous == "")
	}
	return nil
}

func (e *Engine) OnDisconnect(ctx context.Context, intentional bool) {
	e.coordinator.OnDisconnect(ctx, intentional)
}

// ResetAchievementData wipes all progress and uploads the empty state.
func (e *Engine) ResetAchievementData(ctx context.Context) error {
	return e.coordinator.Reset(ctx)
}

// UploadNow pushes the current state immediately.
func (e *Engine) UploadNow(ctx context.Context) error {
	return e.coordinator.UploadNow(ctx)
}

func (e *Engine) Cache() *Cache                   { return e.cache }
func (e *Engine) Data() *SaveData                 { return e.cache.Data() }
func (e *Engine) Total() int                      { return e.cache.Data().Total() }
func (e *Engine) Completed() int                  { return e.cache.Data().CompletedCount() }
func (e *Engine) ByModule(m Module) []Achievement { return e.cache.Data().ByModule(m) }
func (e *Engine) Get(id int) (Achievement, bool)  { return e.cache.Data().Get(id) }
func (e *Engine) Title(id int) (string, bool)     { return e.cache.Data().Title(id) }
func (e *Engine) Running() bool                   { return e.coordinator.Running() }
func (e *Engine) WaitCompletedCount()             { e.coordinator.WaitCompletedCount() }

// Close unsubscribes every handler and stops background work.
func (e *Engine) Close() {
	e.mu.Lock()
	subscriptions := e.subscriptions
	e.subscriptions = nil
	e.mu.Unlock()
	for _, s := range subscriptions {
		e.bus.Unsubscribe(s)
	}
	e.coordinator.Close()
}
