package schedule

import (
	"fmt"
	"time"

	"github.com/mkalens/liftlog/internal/workoutlog"
)

// StreakEntry is the minimal slice of a log record the streak counters
// need: its day and whether it was skipped.
type StreakEntry struct {
	Day     time.Time
	Skipped bool
}

// StreakPolicy controls how days with no record at all are treated. The
// historical behavior is that a missing calendar day is simply invisible
// to the streak, so two records with a gap between them still count as
// consecutive. BreakOnGap makes a calendar gap end the streak instead.
type StreakPolicy struct {
	BreakOnGap bool
}

// StreakEntries converts logs into streak entries, preserving order.
// A log with an unparseable date fails the conversion.
func StreakEntries(logs []workoutlog.WorkoutLog) ([]StreakEntry, error) {
	entries := make([]StreakEntry, 0, len(logs))
	for _, l := range logs {
		day, err := ParseDay(l.Date)
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", l.ID, err)
		}
		entries = append(entries, StreakEntry{Day: day, Skipped: l.Skipped})
	}
	return entries, nil
}

// adjacentDays reports whether earlier and later are consecutive calendar
// days (later == earlier + 1 day).
func adjacentDays(earlier, later time.Time) bool {
	return DayKey(earlier.AddDate(0, 0, 1)) == DayKey(later)
}

// CurrentStreak counts consecutive non-skipped entries from the front of a
// most-recent-first sequence, stopping at the first skip. The caller
// supplies a suitably bounded and ordered window; the counter itself is
// window-size-agnostic. Empty input yields 0.
func CurrentStreak(entries []StreakEntry, policy StreakPolicy) int {
	streak := 0
	for i, e := range entries {
		if e.Skipped {
			break
		}
		if policy.BreakOnGap && i > 0 && !adjacentDays(e.Day, entries[i-1].Day) {
			break
		}
		streak++
	}
	return streak
}

// BestStreak finds the longest run of non-skipped entries in a
// chronological sequence. A skipped entry resets the run; with BreakOnGap
// a calendar gap resets it too. The final running value counts.
func BestStreak(entries []StreakEntry, policy StreakPolicy) int {
	best, run := 0, 0
	for i, e := range entries {
		if e.Skipped {
			run = 0
			continue
		}
		if policy.BreakOnGap && i > 0 && !adjacentDays(entries[i-1].Day, e.Day) {
			run = 0
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}
