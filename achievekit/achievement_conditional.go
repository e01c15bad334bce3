package achievekit

import "time"

// ConditionalAchievement completes when its predicate holds at the moment it
// is re-checked. Nothing polls it.
type ConditionalAchievement struct {
	base
	condition Predicate
}

func NewConditionalAchievement(meta Meta, condition Predicate, onComplete CompletionFn, clock Clock) *ConditionalAchievement {
	a := &ConditionalAchievement{condition: condition}
	a.init(meta, AchievementTypeConditional, onComplete, clock)
	return a
}

func (a *ConditionalAchievement) CheckCompletion() {
	a.mutate(func(time.Time) bool {
		return a.condition != nil && a.condition()
	})
}

func (a *ConditionalAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.baseRecord()
}

func (a *ConditionalAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
}

// ConditionalProgressAchievement counts bounded tasks. A task window is opened
// with BeginConditionalTask and only commits progress when the predicate holds
// at FinishConditionalTask.
type ConditionalProgressAchievement struct {
	base
	progress  int
	target    int
	condition Predicate

	taskBegun   bool
	startTime   time.Time
	accrueAfter time.Time
}

func NewConditionalProgressAchievement(meta Meta, target int, condition Predicate, onComplete CompletionFn, clock Clock) *ConditionalProgressAchievement {
	a := &ConditionalProgressAchievement{target: target, condition: condition}
	a.init(meta, AchievementTypeConditionalProgress, onComplete, clock)
	return a
}

// BeginConditionalTask opens a task window. Progress can only be committed
// once delay has elapsed. Beginning while a window is open is a no-op.
func (a *ConditionalProgressAchievement) BeginConditionalTask(delay time.Duration) {
	a.mutate(func(now time.Time) bool {
		if a.taskBegun {
			return false
		}
		a.taskBegun = true
		a.startTime = now
		a.accrueAfter = now.Add(delay)
		return false
	})
}

// FinishConditionalTask closes the open window and commits one unit of
// progress when the predicate holds.
func (a *ConditionalProgressAchievement) FinishConditionalTask() {
	a.mutate(func(now time.Time) bool {
		if !a.taskBegun {
			return false
		}
		ready := !now.Before(a.accrueAfter)
		a.closeWindow()
		if !ready || (a.condition != nil && !a.condition()) {
			return false
		}
		a.progress++
		return a.progress >= a.target
	})
}

// StartOverDueToInterrupt discards the open window without progress.
func (a *ConditionalProgressAchievement) StartOverDueToInterrupt() {
	a.mutate(func(time.Time) bool {
		a.closeWindow()
		return false
	})
}

func (a *ConditionalProgressAchievement) closeWindow() {
	a.taskBegun = false
	a.startTime = time.Time{}
	a.accrueAfter = time.Time{}
}

func (a *ConditionalProgressAchievement) ConditionalTaskBegun() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.taskBegun
}

func (a *ConditionalProgressAchievement) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

func (a *ConditionalProgressAchievement) Target() int { return a.target }

func (a *ConditionalProgressAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.Progress = int64(a.progress)
	rec.ConditionalTaskBegun = a.taskBegun
	rec.StartTime = a.startTime
	return rec
}

func (a *ConditionalProgressAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	a.progress = int(rec.Progress)
	a.taskBegun = rec.ConditionalTaskBegun && !rec.IsCompleted
	a.startTime = rec.StartTime
	// The accrual delay is not persisted; a restored window is ready to finish.
	a.accrueAfter = rec.StartTime
}

// TimeRequiredConditionalAchievement completes once its predicate has held
// for at least the required duration, measured from StartTask.
type TimeRequiredConditionalAchievement struct {
	base
	required  time.Duration
	condition Predicate
	startTime time.Time
}

func NewTimeRequiredConditionalAchievement(meta Meta, required time.Duration, condition Predicate, onComplete CompletionFn, clock Clock) *TimeRequiredConditionalAchievement {
	a := &TimeRequiredConditionalAchievement{required: required, condition: condition}
	a.init(meta, AchievementTypeTimeRequiredConditional, onComplete, clock)
	return a
}

// StartTask starts the timer if the predicate holds and no timer is running.
func (a *TimeRequiredConditionalAchievement) StartTask() {
	a.mutate(func(now time.Time) bool {
		if !a.startTime.IsZero() || (a.condition != nil && !a.condition()) {
			return false
		}
		a.startTime = now
		return false
	})
}

// CheckCompletion completes once the required time has elapsed with the
// predicate still holding. A failed predicate resets the timer.
func (a *TimeRequiredConditionalAchievement) CheckCompletion() {
	a.mutate(func(now time.Time) bool {
		if a.startTime.IsZero() {
			return false
		}
		if a.condition != nil && !a.condition() {
			a.startTime = time.Time{}
			return false
		}
		return now.Sub(a.startTime) >= a.required
	})
}

func (a *TimeRequiredConditionalAchievement) InterruptTask() {
	a.mutate(func(time.Time) bool {
		a.startTime = time.Time{}
		return false
	})
}

// Running reports whether a timer is active.
func (a *TimeRequiredConditionalAchievement) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.startTime.IsZero()
}

func (a *TimeRequiredConditionalAchievement) Required() time.Duration { return a.required }

func (a *TimeRequiredConditionalAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.StartTime = a.startTime
	return rec
}

func (a *TimeRequiredConditionalAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	if !rec.IsCompleted {
		a.startTime = rec.StartTime
	}
}

// TimeLimitConditionalAchievement must see its predicate hold within limit of
// StartTask. Attempts that run over are dropped silently.
type TimeLimitConditionalAchievement struct {
	base
	limit     time.Duration
	condition Predicate
	startTime time.Time
}

func NewTimeLimitConditionalAchievement(meta Meta, limit time.Duration, condition Predicate, onComplete CompletionFn, clock Clock) *TimeLimitConditionalAchievement {
	a := &TimeLimitConditionalAchievement{limit: limit, condition: condition}
	a.init(meta, AchievementTypeTimeLimitConditional, onComplete, clock)
	return a
}

func (a *TimeLimitConditionalAchievement) StartTask() {
	a.mutate(func(now time.Time) bool {
		if a.startTime.IsZero() {
			a.startTime = now
		}
		return false
	})
}

func (a *TimeLimitConditionalAchievement) CheckCompletion() {
	a.mutate(func(now time.Time) bool {
		if a.startTime.IsZero() {
			return false
		}
		if now.Sub(a.startTime) > a.limit {
			a.startTime = time.Time{}
			return false
		}
		return a.condition == nil || a.condition()
	})
}

func (a *TimeLimitConditionalAchievement) InterruptTask() {
	a.mutate(func(time.Time) bool {
		a.startTime = time.Time{}
		return false
	})
}

func (a *TimeLimitConditionalAchievement) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.startTime.IsZero()
}

func (a *TimeLimitConditionalAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.StartTime = a.startTime
	return rec
}

func (a *TimeLimitConditionalAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	if !rec.IsCompleted {
		a.startTime = rec.StartTime
	}
}
