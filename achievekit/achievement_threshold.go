package achievekit

import "time"

// ThresholdAchievement tracks a live gauge and completes the first time the
// gauge meets its target. Later drops do not undo completion.
type ThresholdAchievement struct {
	base
	current int
	target  int
}

func NewThresholdAchievement(meta Meta, target int, onComplete CompletionFn, clock Clock) *ThresholdAchievement {
	a := &ThresholdAchievement{
		target: target,
	}
	a.init(meta, AchievementTypeThreshold, onComplete, clock)
	return a
}

func (a *ThresholdAchievement) UpdateThreshold(value int) {
	a.mutate(func(time.Time) bool {
		a.current = value
		return a.current >= a.target
	})
}

func (a *ThresholdAchievement) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *ThresholdAchievement) Target() int { return a.target }

func (a *ThresholdAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.Progress = int64(a.current)
	return rec
}

func (a *ThresholdAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	a.current = int(rec.Progress)
}

// ConditionalThresholdAchievement is a gauge that only counts while its guard
// holds; when the guard fails the gauge drops to zero.
type ConditionalThresholdAchievement struct {
	base
	current   int
	target    int
	condition Predicate
}

func NewConditionalThresholdAchievement(meta Meta, target int, condition Predicate, onComplete CompletionFn, clock Clock) *ConditionalThresholdAchievement {
	a := &ConditionalThresholdAchievement{
		target:    target,
		condition: condition,
	}
	a.init(meta, AchievementTypeConditionalThreshold, onComplete, clock)
	return a
}

func (a *ConditionalThresholdAchievement) UpdateThreshold(value int) {
	a.mutate(func(time.Time) bool {
		if a.condition != nil && !a.condition() {
			a.current = 0
			return false
		}
		a.current = value
		return a.current >= a.target
	})
}

func (a *ConditionalThresholdAchievement) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *ConditionalThresholdAchievement) Target() int { return a.target }

func (a *ConditionalThresholdAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.Progress = int64(a.current)
	return rec
}

func (a *ConditionalThresholdAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	a.current = int(rec.Progress)
}
