package achievekit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// RemoteStore receives full save data snapshots.
type RemoteStore interface {
	Upload(ctx context.Context, blob string) error
}

// ProfileContent is the public profile object that carries the completed
// achievement count.
type ProfileContent struct {
	CompletedAchievementsTotal int   `json:"completed_achievements_total"`
	UpdatedAt                  int64 `json:"updated_at,omitempty"`
}

// ProfileStore reads and writes the profile content object.
type ProfileStore interface {
	GetContent(ctx context.Context) (*ProfileContent, error)
	SetContent(ctx context.Context, content *ProfileContent) error
}

// Coordinator syncs the save data in a Cache with a RemoteStore. It is Idle
// until a connection loads valid data, then Running: a background loop uploads
// a snapshot on every tick of its schedule. Background tasks only read the
// save data.
type Coordinator struct {
	cfg      Config
	cache    *Cache
	remote   RemoteStore
	profile  ProfileStore
	newData  func() *SaveData
	schedule cron.Schedule
	logger   runtime.Logger
	clock    Clock
	tracer   trace.Tracer

	resetLimiter *rate.Limiter
	countPush    debouncer

	mu        sync.Mutex
	connected bool
	sessionID string

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCoordinator builds an idle coordinator. newData must return a freshly
// registered container; it is used on first connection and on reset.
func NewCoordinator(cfg Config, cache *Cache, remote RemoteStore, profile ProfileStore, newData func() *SaveData, logger runtime.Logger, clock Clock) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	schedule, err := newSaveSchedule(cfg)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Coordinator{
		cfg:          cfg,
		cache:        cache,
		remote:       remote,
		profile:      profile,
		newData:      newData,
		schedule:     schedule,
		logger:       logger,
		clock:        clock,
		tracer:       otel.Tracer("gagforge/achievekit"),
		resetLimiter: rate.NewLimiter(rate.Every(cfg.ResetInterval), cfg.ResetBurst),
	}, nil
}

// OnServerConnection decides how the in-memory save data relates to the
// snapshot the server holds, then starts the periodic loop when uploads are
// allowed. previous is the stored blob, or "" when the server has none.
func (c *Coordinator) OnServerConnection(ctx context.Context, previous string) error {
	c.mu.Lock()
	c.connected = true
	c.sessionID = uuid.New().String()
	c.mu.Unlock()

	if last := c.cache.LastUnhandledDisconnect(); !last.IsZero() && c.cache.CanUpload() {
		// The previous session dropped mid-flight. The in-memory state is newer
		// than anything on the server, so keep it.
		c.logger.Info("Resuming achievement sync with in-memory data after unhandled disconnect at %s", last.Format(time.RFC3339))
		c.cache.ClearUnhandledDisconnect()
		saveDataLoads.WithLabelValues("resumed").Inc()
		c.start()
		return nil
	}
	c.cache.ClearUnhandledDisconnect()

	if previous == "" {
		c.logger.Info("No achievement save data on server, starting fresh")
		c.cache.Replace(c.newData())
		c.cache.SetValidSaveData(true)
		c.cache.SetSaveDataLoaded(true)
		saveDataLoads.WithLabelValues("fresh").Inc()
		c.start()
		return nil
	}

	data := c.newData()
	err := c.load(ctx, previous, data)
	c.cache.Replace(data)
	c.cache.SetValidSaveData(err == nil)
	// Loaded is set even on failure so that CanUpload stays false for the rest
	// of the session instead of waiting for a load that will never succeed.
	c.cache.SetSaveDataLoaded(true)
	if err != nil {
		saveDataLoads.WithLabelValues("corrupt").Inc()
		c.logger.Error("Failed to load achievement save data, uploads disabled for this session: %v", err)
		return err
	}
	saveDataLoads.WithLabelValues("loaded").Inc()
	c.start()
	return nil
}

func (c *Coordinator) load(ctx context.Context, blob string, data *SaveData) error {
	_, span := c.tracer.Start(ctx, "achievekit.load")
	defer span.End()

	file, err := Decode(blob)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return err
	}
	skipped := Apply(file, data, c.logger)
	span.SetAttributes(
		attribute.Int("achievements", len(file.Achievements)),
		attribute.Int("skipped", skipped),
	)
	c.logger.Info("Loaded achievement save data: %d records, %d skipped", len(file.Achievements), skipped)
	return nil
}

// OnDisconnect stops every upload. An intentional disconnect first writes a
// final snapshot and leaves the cache clean; an unexpected one records the
// time so the next connection trusts the in-memory data.
func (c *Coordinator) OnDisconnect(ctx context.Context, intentional bool) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	c.stop()
	c.countPush.Stop()

	if !intentional {
		c.cache.MarkUnhandledDisconnect(c.clock.Now())
		c.logger.Warn("Unhandled disconnect, achievement uploads paused")
		return
	}
	if c.cache.CanUpload() {
		if err := c.upload(ctx, "disconnect"); err != nil {
			c.logger.Error("Failed to upload achievement save data on disconnect: %v", err)
		}
	}
	c.cache.Invalidate()
	c.cache.ClearUnhandledDisconnect()
}

// Running reports whether the periodic loop is active.
func (c *Coordinator) Running() bool {
	c.loopMu.Lock()
	done := c.done
	c.loopMu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (c *Coordinator) start() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	c.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go c.run(ctx, done)
}

func (c *Coordinator) stop() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	c.stopLocked()
}

func (c *Coordinator) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel, c.done = nil, nil
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		now := c.clock.Now()
		next := c.schedule.Next(now)
		if next.IsZero() {
			c.logger.Error("Achievement save schedule has no next activation, stopping sync loop")
			return
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !c.cache.CanUpload() {
			c.logger.Warn("Achievement save data no longer uploadable, stopping sync loop")
			return
		}
		if err := c.upload(ctx, "periodic"); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("Periodic achievement upload failed, will retry next cycle: %v", err)
		}
	}
}

// UploadNow pushes a full snapshot outside the periodic cadence.
func (c *Coordinator) UploadNow(ctx context.Context) error {
	if !c.cache.CanUpload() {
		return ErrCannotUpload
	}
	return c.upload(ctx, "manual")
}

func (c *Coordinator) upload(ctx context.Context, trigger string) error {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "achievekit.upload", trace.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	start := time.Now()
	blob, err := Encode(c.cache.Data(), c.cfg.CompressionLevel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		saveDataUploads.WithLabelValues(trigger, "error").Inc()
		return err
	}
	if err := c.remote.Upload(ctx, blob); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		saveDataUploads.WithLabelValues(trigger, "error").Inc()
		return fmt.Errorf("upload save data: %w", err)
	}
	saveDataUploadDuration.Observe(time.Since(start).Seconds())
	saveDataUploads.WithLabelValues(trigger, "ok").Inc()
	span.SetAttributes(attribute.Int("bytes", len(blob)))
	c.logger.Debug("Uploaded achievement save data (%s, %d bytes)", trigger, len(blob))
	return nil
}

// PushCompletedCount schedules a push of the completed count to the profile
// store. A newer call cancels a pending one, so a burst of completions results
// in a single write.
func (c *Coordinator) PushCompletedCount() {
	if c.profile == nil {
		return
	}
	c.countPush.Run(context.Background(), func(ctx context.Context) {
		if c.cfg.CountPushDelay > 0 {
			timer := time.NewTimer(c.cfg.CountPushDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		if !c.cache.CanUpload() {
			return
		}
		if err := c.pushCompletedCount(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			completedCountPushes.WithLabelValues("error").Inc()
			c.logger.Warn("Failed to push completed achievement count: %v", err)
			return
		}
		completedCountPushes.WithLabelValues("ok").Inc()
	})
}

func (c *Coordinator) pushCompletedCount(ctx context.Context) error {
	total := c.cache.Data().CompletedCount()
	content, err := c.profile.GetContent(ctx)
	if err != nil {
		return fmt.Errorf("get profile content: %w", err)
	}
	if content == nil {
		content = &ProfileContent{}
	}
	content.CompletedAchievementsTotal = total
	content.UpdatedAt = c.clock.Now().Unix()
	if err := c.profile.SetContent(ctx, content); err != nil {
		return fmt.Errorf("set profile content: %w", err)
	}
	return nil
}

// WaitCompletedCount blocks until a pending count push has finished.
func (c *Coordinator) WaitCompletedCount() {
	c.countPush.Wait()
}

// Reset discards all progress, installs freshly registered data and uploads
// it immediately so the reset survives an exit before the next tick.
func (c *Coordinator) Reset(ctx context.Context) error {
	if !c.resetLimiter.Allow() {
		return ErrResetThrottled
	}
	c.countPush.Stop()
	c.stop()

	c.cache.Replace(c.newData())
	c.cache.SetValidSaveData(true)
	c.cache.SetSaveDataLoaded(true)
	c.logger.Info("Achievement data reset")

	err := c.upload(ctx, "reset")

	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	if connected {
		c.start()
	}
	return err
}

// Close stops all background work.
func (c *Coordinator) Close() {
	c.stop()
	c.countPush.Stop()
}
