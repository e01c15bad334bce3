package achievekit

import (
	"sync"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrNoSessionUser      = runtime.NewError("no user ID in session", INVALID_ARGUMENT_ERROR_CODE)
	ErrPayloadDecode      = runtime.NewError("cannot decode json", INTERNAL_ERROR_CODE)
	ErrPayloadEncode      = runtime.NewError("cannot encode json", INTERNAL_ERROR_CODE)
	ErrPayloadEmpty       = runtime.NewError("payload should not be empty", INVALID_ARGUMENT_ERROR_CODE)
	ErrSaveDataNotFound   = runtime.NewError("save data not found", NOT_FOUND_ERROR_CODE)
	ErrCannotUpload       = runtime.NewError("save data is not loaded or not valid", FAILED_PRECONDITION_ERROR_CODE)
	ErrResetThrottled     = runtime.NewError("achievement reset requested too often", RESOURCE_EXHAUSTED_ERROR_CODE)
	ErrUnsupportedVersion = runtime.NewError("unsupported save data version", FAILED_PRECONDITION_ERROR_CODE)
	ErrCorruptSaveData    = runtime.NewError("save data is corrupt", INTERNAL_ERROR_CODE)
	ErrCorruptProfile     = runtime.NewError("profile content is corrupt", INTERNAL_ERROR_CODE)
	ErrStoreUnavailable   = runtime.NewError("remote store unavailable", UNAVAILABLE_ERROR_CODE)
)

// AchievementType tags each variant in persisted snapshots.
type AchievementType string

const (
	AchievementTypeProgress                AchievementType = "Progress"
	AchievementTypeTimedProgress           AchievementType = "TimedProgress"
	AchievementTypeThreshold               AchievementType = "Threshold"
	AchievementTypeConditional             AchievementType = "Conditional"
	AchievementTypeConditionalThreshold    AchievementType = "ConditionalThreshold"
	AchievementTypeConditionalProgress     AchievementType = "ConditionalProgress"
	AchievementTypeTimeRequiredConditional AchievementType = "TimeRequiredConditional"
	AchievementTypeTimeLimitConditional    AchievementType = "TimeLimitConditional"
	AchievementTypeDuration                AchievementType = "Duration"
)

// Module groups achievements for listing.
type Module string

const (
	ModuleGags      Module = "Gags"
	ModuleWardrobe  Module = "Wardrobe"
	ModulePuppeteer Module = "Puppeteer"
	ModuleToybox    Module = "Toybox"
	ModuleRemotes   Module = "Remotes"
	ModuleHardcore  Module = "Hardcore"
	ModuleGeneric   Module = "Generic"
	ModuleSecrets   Module = "Secrets"
)

// CompletionFn is invoked once, synchronously, when an achievement completes.
type CompletionFn func(id int, title string)

// Predicate reads live external state.
type Predicate func() bool

// Clock abstracts wall time so trackers can be driven deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the UTC wall clock.
var SystemClock Clock = systemClock{}

// Meta holds the immutable description of an achievement.
type Meta struct {
	ID          int
	Module      Module
	Title       string
	Description string
	Secret      bool
}

// Achievement is implemented by every achievement variant. The set of
// variants is closed: record and restore are unexported.
type Achievement interface {
	ID() int
	Title() string
	Description() string
	Module() Module
	Secret() bool
	Type() AchievementType
	Completed() bool
	CompletedAt() time.Time

	record() SavedAchievement
	restore(rec SavedAchievement)
}

// base carries the shared contract. Every variant guards its own state with
// mu; snapshots therefore see each achievement consistently but not the
// container as a whole.
type base struct {
	mu          sync.Mutex
	meta        Meta
	kind        AchievementType
	completed   bool
	completedAt time.Time
	onComplete  CompletionFn
	clock       Clock
}

func (b *base) init(meta Meta, kind AchievementType, onComplete CompletionFn, clock Clock) {
	if clock == nil {
		clock = SystemClock
	}
	b.meta = meta
	b.kind = kind
	b.onComplete = onComplete
	b.clock = clock
}

func (b *base) ID() int               { return b.meta.ID }
func (b *base) Title() string         { return b.meta.Title }
func (b *base) Description() string   { return b.meta.Description }
func (b *base) Module() Module        { return b.meta.Module }
func (b *base) Secret() bool          { return b.meta.Secret }
func (b *base) Type() AchievementType { return b.kind }

func (b *base) Completed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed
}

func (b *base) CompletedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completedAt
}

// mutate runs fn under the lock unless already completed. When fn reports the
// goal reached the flag flips and the callback fires after the lock is released.
func (b *base) mutate(fn func(now time.Time) bool) {
	if b.apply(fn) && b.onComplete != nil {
		b.onComplete(b.meta.ID, b.meta.Title)
	}
}

// apply reports whether fn completed the achievement. The lock is released
// even when fn panics.
func (b *base) apply(fn func(now time.Time) bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.completed {
		return false
	}
	now := b.clock.Now()
	if !fn(now) {
		return false
	}
	b.completed = true
	b.completedAt = now
	return true
}

func (b *base) baseRecord() SavedAchievement {
	return SavedAchievement{
		Type:          b.kind,
		AchievementID: b.meta.ID,
		IsCompleted:   b.completed,
		CompletedAt:   b.completedAt,
	}
}

func (b *base) baseRestore(rec SavedAchievement) {
	b.completed = rec.IsCompleted
	b.completedAt = time.Time{}
	if rec.IsCompleted {
		b.completedAt = rec.CompletedAt
	}
}
