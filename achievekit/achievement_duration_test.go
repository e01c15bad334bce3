package achievekit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDuration(target time.Duration) (*DurationAchievement, *fakeClock, *completions) {
	clock := newFakeClock()
	done := &completions{}
	return NewDurationAchievement(testMeta(10), target, done.fn, clock), clock, done
}

func TestDurationAchievement_AccumulatesAcrossIntervals(t *testing.T) {
	a, clock, done := newTestDuration(time.Hour)

	a.StartTracking("0_ball", "pair")
	clock.Advance(30 * time.Minute)
	a.StopTracking("0_ball", "pair")
	assert.Equal(t, 30*time.Minute, a.Cumulative())
	assert.False(t, a.Completed())

	clock.Advance(time.Hour)
	a.StartTracking("0_ball", "pair")
	clock.Advance(30 * time.Minute)
	a.StopTracking("0_ball", "pair")

	assert.True(t, a.Completed())
	assert.Equal(t, time.Hour, a.Cumulative())
	assert.Equal(t, []int{10}, done.list())
}

func TestDurationAchievement_StartStopImmediately(t *testing.T) {
	a, _, _ := newTestDuration(time.Hour)
	a.StartTracking("set", "u")
	a.StopTracking("set", "u")
	assert.GreaterOrEqual(t, a.Cumulative(), time.Duration(0))
	assert.Less(t, a.Cumulative(), time.Hour)
	assert.False(t, a.Tracking("set", "u"))
}

func TestDurationAchievement_StartIsIdempotent(t *testing.T) {
	a, clock, _ := newTestDuration(time.Hour)
	a.StartTracking("set", "u")
	clock.Advance(10 * time.Minute)
	a.StartTracking("set", "u")
	clock.Advance(10 * time.Minute)
	a.StopTracking("set", "u")
	assert.Equal(t, 20*time.Minute, a.Cumulative(), "a second start keeps the original interval")
}

func TestDurationAchievement_StopUnknownIsNoop(t *testing.T) {
	a, clock, _ := newTestDuration(time.Hour)
	clock.Advance(time.Minute)
	a.StopTracking("missing", "u")
	assert.Equal(t, time.Duration(0), a.Cumulative())
}

func TestDurationAchievement_KeysAreIndependentPerUser(t *testing.T) {
	a, clock, _ := newTestDuration(10 * time.Hour)
	a.StartTracking("0_ball", "alice")
	a.StartTracking("0_ball", "bob")
	clock.Advance(time.Minute)
	a.StopTracking("0_ball", "alice")

	assert.Equal(t, time.Minute, a.Cumulative())
	assert.True(t, a.Tracking("0_ball", "bob"))
	assert.Equal(t, []TrackingKey{{Item: "0_ball", UID: "bob"}}, a.ActiveKeys())
}

func TestDurationAchievement_CleanupClosesMissingItemsOnce(t *testing.T) {
	a, clock, _ := newTestDuration(10 * time.Hour)
	a.StartTracking("0_ball", "pair")
	a.StartTracking("1_tape", "pair")
	a.StartTracking("0_ball", "other")
	clock.Advance(15 * time.Minute)

	a.CleanupTracking("pair", []string{"1_tape"})
	assert.Equal(t, 15*time.Minute, a.Cumulative())
	assert.False(t, a.Tracking("0_ball", "pair"))
	assert.True(t, a.Tracking("1_tape", "pair"))
	assert.True(t, a.Tracking("0_ball", "other"), "other users are untouched")

	clock.Advance(5 * time.Minute)
	a.CleanupTracking("pair", []string{"1_tape"})
	assert.Equal(t, 15*time.Minute, a.Cumulative(), "a second cleanup must not double count")
}

func TestDurationAchievement_CleanupWithNoActiveItems(t *testing.T) {
	a, clock, _ := newTestDuration(10 * time.Hour)
	a.StartTracking("0_ball", "pair")
	a.StartTracking("1_tape", "pair")
	clock.Advance(time.Minute)

	a.CleanupTracking("pair", nil)
	assert.Empty(t, a.ActiveKeys())
	assert.Equal(t, 2*time.Minute, a.Cumulative())

	a.CleanupTracking("pair", nil)
	assert.Equal(t, 2*time.Minute, a.Cumulative())
}

func TestDurationAchievement_CleanupCanComplete(t *testing.T) {
	a, clock, done := newTestDuration(time.Hour)
	a.StartTracking("set", "pair")
	clock.Advance(2 * time.Hour)
	a.CleanupTracking("pair", []string{})
	assert.True(t, a.Completed())
	assert.Len(t, done.list(), 1)
}

func TestDurationAchievement_CheckCompletionCountsOpenTime(t *testing.T) {
	a, clock, done := newTestDuration(time.Hour)
	a.StartTracking("set", "self")
	clock.Advance(59 * time.Minute)
	a.CheckCompletion()
	assert.False(t, a.Completed())
	assert.Equal(t, time.Duration(0), a.Cumulative(), "checking does not commit open time")

	clock.Advance(time.Minute)
	a.CheckCompletion()
	assert.True(t, a.Completed())
	assert.Equal(t, time.Hour, a.Cumulative())
	assert.Empty(t, a.ActiveKeys())
	assert.Equal(t, []int{10}, done.list())
}

func TestDurationAchievement_RecordRestore(t *testing.T) {
	a, clock, _ := newTestDuration(time.Hour)
	a.StartTracking("b", "u2")
	a.StartTracking("a", "u1")
	clock.Advance(90 * time.Second)
	a.StopTracking("b", "u2")

	rec := a.record()
	assert.Equal(t, int64(90000), rec.Progress)
	require.Len(t, rec.ActiveItems, 1)
	assert.Equal(t, ActiveItem{Item: "a", UIDAffected: "u1", TimeAdded: testEpoch}, rec.ActiveItems[0])

	b, _, _ := newTestDuration(time.Hour)
	b.restore(rec)
	assert.Equal(t, 90*time.Second, b.Cumulative())
	assert.True(t, b.Tracking("a", "u1"))
}

func TestDurationAchievement_RestoreCompletedDropsIntervals(t *testing.T) {
	b, _, _ := newTestDuration(time.Hour)
	b.restore(SavedAchievement{
		Type:          AchievementTypeDuration,
		AchievementID: 10,
		IsCompleted:   true,
		Progress:      time.Hour.Milliseconds(),
		ActiveItems:   []ActiveItem{{Item: "a", UIDAffected: "u", TimeAdded: testEpoch}},
	})
	assert.True(t, b.Completed())
	assert.Empty(t, b.ActiveKeys())
}
