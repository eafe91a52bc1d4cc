package schedule_test

import (
	"testing"

	"github.com/mkalens/liftlog/internal/schedule"
	"github.com/mkalens/liftlog/internal/workoutlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(t *testing.T, logs ...workoutlog.WorkoutLog) []schedule.StreakEntry {
	t.Helper()
	e, err := schedule.StreakEntries(logs)
	require.NoError(t, err)
	return e
}

func TestCurrentStreak(t *testing.T) {
	var policy schedule.StreakPolicy

	assert.Equal(t, 0, schedule.CurrentStreak(nil, policy))

	// most-recent-first, skip two days back truncates the streak to 2
	streak := schedule.CurrentStreak(entries(t,
		workoutlog.WorkoutLog{Date: "2024-06-10"},
		workoutlog.WorkoutLog{Date: "2024-06-09"},
		workoutlog.WorkoutLog{Date: "2024-06-08", Skipped: true},
	), policy)
	assert.Equal(t, 2, streak)

	// skip at the front kills the streak entirely
	streak = schedule.CurrentStreak(entries(t,
		workoutlog.WorkoutLog{Date: "2024-06-10", Skipped: true},
		workoutlog.WorkoutLog{Date: "2024-06-09"},
	), policy)
	assert.Equal(t, 0, streak)

	// no skips at all
	streak = schedule.CurrentStreak(entries(t,
		workoutlog.WorkoutLog{Date: "2024-06-10"},
		workoutlog.WorkoutLog{Date: "2024-06-09"},
		workoutlog.WorkoutLog{Date: "2024-06-08"},
	), policy)
	assert.Equal(t, 3, streak)
}

func TestCurrentStreak_SkipTruncatesAtEveryPosition(t *testing.T) {
	var policy schedule.StreakPolicy
	dates := []string{
		"2024-06-10", "2024-06-09", "2024-06-08", "2024-06-07", "2024-06-06",
	}

	for k := range dates {
		logs := make([]workoutlog.WorkoutLog, len(dates))
		for i, d := range dates {
			logs[i] = workoutlog.WorkoutLog{Date: d, Skipped: i == k}
		}
		assert.Equal(t, k, schedule.CurrentStreak(entries(t, logs...), policy))
	}
}

func TestCurrentStreak_GapPolicy(t *testing.T) {
	// 2024-06-07 has no record at all
	logs := []workoutlog.WorkoutLog{
		{Date: "2024-06-10"},
		{Date: "2024-06-09"},
		{Date: "2024-06-08"},
		{Date: "2024-06-06"},
		{Date: "2024-06-05"},
	}

	// default: a missing day is invisible, records bridge the gap
	assert.Equal(t, 5, schedule.CurrentStreak(entries(t, logs...), schedule.StreakPolicy{}))

	// opt-in: a missing calendar day breaks the streak
	assert.Equal(t, 3, schedule.CurrentStreak(
		entries(t, logs...),
		schedule.StreakPolicy{BreakOnGap: true},
	))
}

func TestBestStreak(t *testing.T) {
	var policy schedule.StreakPolicy

	assert.Equal(t, 0, schedule.BestStreak(nil, policy))

	// chronological: two non-skipped before the reset
	best := schedule.BestStreak(entries(t,
		workoutlog.WorkoutLog{Date: "2024-06-08", Skipped: true},
		workoutlog.WorkoutLog{Date: "2024-06-09"},
		workoutlog.WorkoutLog{Date: "2024-06-10"},
	), policy)
	assert.Equal(t, 2, best)

	// the final running value counts too
	best = schedule.BestStreak(entries(t,
		workoutlog.WorkoutLog{Date: "2024-06-05"},
		workoutlog.WorkoutLog{Date: "2024-06-06", Skipped: true},
		workoutlog.WorkoutLog{Date: "2024-06-07"},
		workoutlog.WorkoutLog{Date: "2024-06-08"},
		workoutlog.WorkoutLog{Date: "2024-06-09"},
	), policy)
	assert.Equal(t, 3, best)

	// all skipped
	best = schedule.BestStreak(entries(t,
		workoutlog.WorkoutLog{Date: "2024-06-09", Skipped: true},
		workoutlog.WorkoutLog{Date: "2024-06-10", Skipped: true},
	), policy)
	assert.Equal(t, 0, best)
}

func TestBestStreak_GapPolicy(t *testing.T) {
	logs := []workoutlog.WorkoutLog{
		{Date: "2024-06-01"},
		{Date: "2024-06-02"},
		{Date: "2024-06-05"},
		{Date: "2024-06-06"},
		{Date: "2024-06-07"},
	}

	assert.Equal(t, 5, schedule.BestStreak(entries(t, logs...), schedule.StreakPolicy{}))
	assert.Equal(t, 3, schedule.BestStreak(
		entries(t, logs...),
		schedule.StreakPolicy{BreakOnGap: true},
	))
}

func TestBestStreak_AtLeastCurrentStreak(t *testing.T) {
	logSets := [][]workoutlog.WorkoutLog{
		{},
		{{Date: "2024-06-10"}},
		{{Date: "2024-06-10"}, {Date: "2024-06-09"}, {Date: "2024-06-08", Skipped: true}},
		{{Date: "2024-06-10", Skipped: true}, {Date: "2024-06-09"}},
		{
			{Date: "2024-06-10"}, {Date: "2024-06-09", Skipped: true},
			{Date: "2024-06-08"}, {Date: "2024-06-07"}, {Date: "2024-06-06"},
		},
	}

	var policy schedule.StreakPolicy
	for _, logs := range logSets {
		descending := entries(t, logs...)

		chronological := make([]schedule.StreakEntry, len(descending))
		for i, e := range descending {
			chronological[len(descending)-1-i] = e
		}

		current := schedule.CurrentStreak(descending, policy)
		best := schedule.BestStreak(chronological, policy)
		assert.GreaterOrEqual(t, best, current)
	}
}

func TestStreakEntries_MalformedDate(t *testing.T) {
	_, err := schedule.StreakEntries([]workoutlog.WorkoutLog{
		{ID: 7, Date: "10.06.2024"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrMalformedDate)
}
