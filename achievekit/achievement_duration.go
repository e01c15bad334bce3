package achievekit

import (
	"sort"
	"time"
)

// TrackingKey identifies one open duration interval: a domain item (for
// example "0_BallGag", gag layer plus gag type) and the user it applies to.
type TrackingKey struct {
	Item string
	UID  string
}

// DurationAchievement accumulates time spent in a state across any number of
// independently keyed intervals. The cumulative total never decreases.
type DurationAchievement struct {
	base
	target     time.Duration
	cumulative time.Duration
	active     map[TrackingKey]time.Time
}

func NewDurationAchievement(meta Meta, target time.Duration, onComplete CompletionFn, clock Clock) *DurationAchievement {
	a := &DurationAchievement{
		target: target,
		active: make(map[TrackingKey]time.Time),
	}
	a.init(meta, AchievementTypeDuration, onComplete, clock)
	return a
}

// StartTracking opens an interval for item and uid unless one is already open.
func (a *DurationAchievement) StartTracking(item, uid string) {
	a.mutate(func(now time.Time) bool {
		key := TrackingKey{Item: item, UID: uid}
		if _, ok := a.active[key]; !ok {
			a.active[key] = now
		}
		return false
	})
}

// StopTracking closes the interval for item and uid and commits its elapsed
// time. Stopping an interval that was never opened is a no-op.
func (a *DurationAchievement) StopTracking(item, uid string) {
	a.mutate(func(now time.Time) bool {
		key := TrackingKey{Item: item, UID: uid}
		if !a.close(key, now) {
			return false
		}
		return a.cumulative >= a.target
	})
}

// CleanupTracking force-closes every interval for uid whose item is not in
// activeItems. It is called after an online sync to account for stop events
// missed while disconnected.
func (a *DurationAchievement) CleanupTracking(uid string, activeItems []string) {
	a.mutate(func(now time.Time) bool {
		still := make(map[string]struct{}, len(activeItems))
		for _, item := range activeItems {
			still[item] = struct{}{}
		}
		for key := range a.active {
			if key.UID != uid {
				continue
			}
			if _, ok := still[key.Item]; ok {
				continue
			}
			a.close(key, now)
		}
		return a.cumulative >= a.target
	})
}

// CheckCompletion completes the achievement when committed plus open time
// reaches the target. Open intervals are folded into the total on completion.
func (a *DurationAchievement) CheckCompletion() {
	a.mutate(func(now time.Time) bool {
		if a.cumulative+a.openElapsed(now) < a.target {
			return false
		}
		for key := range a.active {
			a.close(key, now)
		}
		return true
	})
}

// close commits an open interval. Caller holds the lock.
func (a *DurationAchievement) close(key TrackingKey, now time.Time) bool {
	started, ok := a.active[key]
	if !ok {
		return false
	}
	delete(a.active, key)
	if elapsed := now.Sub(started); elapsed > 0 {
		a.cumulative += elapsed
	}
	return true
}

func (a *DurationAchievement) openElapsed(now time.Time) time.Duration {
	var total time.Duration
	for _, started := range a.active {
		if elapsed := now.Sub(started); elapsed > 0 {
			total += elapsed
		}
	}
	return total
}

// Cumulative returns the committed time.
func (a *DurationAchievement) Cumulative() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cumulative
}

func (a *DurationAchievement) Target() time.Duration { return a.target }

// Tracking reports whether an interval is open for item and uid.
func (a *DurationAchievement) Tracking(item, uid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.active[TrackingKey{Item: item, UID: uid}]
	return ok
}

// ActiveKeys lists open intervals in a stable order.
func (a *DurationAchievement) ActiveKeys() []TrackingKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := make([]TrackingKey, 0, len(a.active))
	for key := range a.active {
		keys = append(keys, key)
	}
	sortTrackingKeys(keys)
	return keys
}

func sortTrackingKeys(keys []TrackingKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Item != keys[j].Item {
			return keys[i].Item < keys[j].Item
		}
		return keys[i].UID < keys[j].UID
	})
}

func (a *DurationAchievement) record() SavedAchievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := a.baseRecord()
	rec.Progress = a.cumulative.Milliseconds()
	rec.ActiveItems = make([]ActiveItem, 0, len(a.active))
	for key, started := range a.active {
		rec.ActiveItems = append(rec.ActiveItems, ActiveItem{Item: key.Item, UIDAffected: key.UID, TimeAdded: started})
	}
	sortActiveItems(rec.ActiveItems)
	return rec
}

func (a *DurationAchievement) restore(rec SavedAchievement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseRestore(rec)
	a.cumulative = time.Duration(rec.Progress) * time.Millisecond
	a.active = make(map[TrackingKey]time.Time, len(rec.ActiveItems))
	if rec.IsCompleted {
		return
	}
	for _, item := range rec.ActiveItems {
		a.active[TrackingKey{Item: item.Item, UID: item.UIDAffected}] = item.TimeAdded
	}
}
