package achievekit

import (
	"fmt"
	"sync"
	"time"
)

// SaveData is the ordered registry of every achievement plus auxiliary
// progress that is persisted alongside it. Achievements are registered once
// and never removed, so the registry itself is read-only after construction.
type SaveData struct {
	achievements map[int]Achievement
	order        []int

	onComplete CompletionFn
	clock      Clock

	mu               sync.RWMutex
	visitedWorldTour map[uint16]bool
}

// NewSaveData returns an empty container whose achievements will report
// completion to onComplete.
func NewSaveData(onComplete CompletionFn, clock Clock) *SaveData {
	if clock == nil {
		clock = SystemClock
	}
	return &SaveData{
		achievements:     make(map[int]Achievement),
		onComplete:       onComplete,
		clock:            clock,
		visitedWorldTour: make(map[uint16]bool),
	}
}

func (d *SaveData) add(a Achievement) {
	if _, exists := d.achievements[a.ID()]; exists {
		panic(fmt.Sprintf("achievement %d registered twice", a.ID()))
	}
	d.achievements[a.ID()] = a
	d.order = append(d.order, a.ID())
}

func (d *SaveData) AddProgress(meta Meta, target int) *ProgressAchievement {
	a := NewProgressAchievement(meta, target, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddTimedProgress(meta Meta, target int, window time.Duration) *TimedProgressAchievement {
	a := NewTimedProgressAchievement(meta, target, window, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddThreshold(meta Meta, target int) *ThresholdAchievement {
	a := NewThresholdAchievement(meta, target, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddConditional(meta Meta, condition Predicate) *ConditionalAchievement {
	a := NewConditionalAchievement(meta, condition, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddConditionalThreshold(meta Meta, target int, condition Predicate) *ConditionalThresholdAchievement {
	a := NewConditionalThresholdAchievement(meta, target, condition, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddConditionalProgress(meta Meta, target int, condition Predicate) *ConditionalProgressAchievement {
	a := NewConditionalProgressAchievement(meta, target, condition, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddTimeRequiredConditional(meta Meta, required time.Duration, condition Predicate) *TimeRequiredConditionalAchievement {
	a := NewTimeRequiredConditionalAchievement(meta, required, condition, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddTimeLimitConditional(meta Meta, limit time.Duration, condition Predicate) *TimeLimitConditionalAchievement {
	a := NewTimeLimitConditionalAchievement(meta, limit, condition, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) AddDuration(meta Meta, target time.Duration) *DurationAchievement {
	a := NewDurationAchievement(meta, target, d.onComplete, d.clock)
	d.add(a)
	return a
}

func (d *SaveData) Get(id int) (Achievement, bool) {
	a, ok := d.achievements[id]
	return a, ok
}

// Title returns the title of achievement id.
func (d *SaveData) Title(id int) (string, bool) {
	a, ok := d.achievements[id]
	if !ok {
		return "", false
	}
	return a.Title(), true
}

// All returns every achievement in registration order.
func (d *SaveData) All() []Achievement {
	out := make([]Achievement, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.achievements[id])
	}
	return out
}

// ByModule returns the achievements of module m in registration order.
func (d *SaveData) ByModule(m Module) []Achievement {
	var out []Achievement
	for _, id := range d.order {
		if a := d.achievements[id]; a.Module() == m {
			out = append(out, a)
		}
	}
	return out
}

func (d *SaveData) Total() int {
	return len(d.order)
}

func (d *SaveData) CompletedCount() int {
	n := 0
	for _, id := range d.order {
		if d.achievements[id].Completed() {
			n++
		}
	}
	return n
}

// VisitZone records a world tour visit and returns the number of distinct
// zones visited so far.
func (d *SaveData) VisitZone(zone uint16) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visitedWorldTour[zone] = true
	return len(d.visitedWorldTour)
}

func (d *SaveData) Visited(zone uint16) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visitedWorldTour[zone]
}

// VisitedZones returns a copy of the world tour flags.
func (d *SaveData) VisitedZones() map[uint16]bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[uint16]bool, len(d.visitedWorldTour))
	for zone, v := range d.visitedWorldTour {
		out[zone] = v
	}
	return out
}

// durations returns the duration achievements, used to fan out online syncs.
func (d *SaveData) durations() []*DurationAchievement {
	var out []*DurationAchievement
	for _, id := range d.order {
		if da, ok := d.achievements[id].(*DurationAchievement); ok {
			out = append(out, da)
		}
	}
	return out
}

// withAchievement runs fn against achievement id if it is registered with
// type T.
func withAchievement[T Achievement](d *SaveData, id int, fn func(T)) {
	if a, ok := d.achievements[id].(T); ok {
		fn(a)
	}
}

