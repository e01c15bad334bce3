package achievekit

import "time"

// ProgressAchievement completes once Progress reaches Target.
type ProgressAchievement struct {
	base
	progress int
	target   int
}

func NewProgressAchievement(meta Meta, target int, onComplete CompletionFn, clock Clock) *ProgressAchievement {
	a := &ProgressAchievement{
		target: target,
	}
	a.init(meta, AchievementTypeProgress, onComplete, clock)
	return a
}

// IncrementProgress adds amount to the progress. Non-positive amounts are ignored.
func (a *ProgressAchievement) IncrementProgress(amount int) {
	if amount <= 0 {
		return
	}
	a.mutate(func(time.Time) bool {
		a.progress += amount
		return a.progress >= a.target
	})
}

func (a *ProgressAchievement) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

func (a *ProgressAchievement) Target() int { return a.target }

func (a *ProgressAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.Progress = int64(a.progress)
	return rec
}

func (a *ProgressAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	a.progress = int(rec.Progress)
}

// TimedProgressAchievement counts only the increments recorded within the
// rolling window ending now.
type TimedProgressAchievement struct {
	base
	target   int
	window   time.Duration
	recorded []time.Time
}

func NewTimedProgressAchievement(meta Meta, target int, window time.Duration, onComplete CompletionFn, clock Clock) *TimedProgressAchievement {
	a := &TimedProgressAchievement{
		target: target,
		window: window,
	}
	a.init(meta, AchievementTypeTimedProgress, onComplete, clock)
	return a
}

func (a *TimedProgressAchievement) IncrementProgress() {
	a.mutate(func(now time.Time) bool {
		a.prune(now)
		a.recorded = append(a.recorded, now)
		return len(a.recorded) >= a.target
	})
}

// prune drops increments older than the window. Caller holds the lock.
func (a *TimedProgressAchievement) prune(now time.Time) {
	cutoff := now.Add(-a.window)
	kept := a.recorded[:0]
	for _, t := range a.recorded {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	a.recorded = kept
}

// Current returns the number of increments still inside the window.
func (a *TimedProgressAchievement) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.completed {
		return a.target
	}
	a.prune(a.clock.Now())
	return len(a.recorded)
}

func (a *TimedProgressAchievement) Target() int { return a.target }

func (a *TimedProgressAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.RecordedDateTimes = append([]time.Time(nil), a.recorded...)
	return rec
}

func (a *TimedProgressAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	a.recorded = append([]time.Time(nil), rec.RecordedDateTimes...)
}
