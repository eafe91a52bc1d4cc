package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkalens/liftlog/internal/plans"
	"github.com/mkalens/liftlog/internal/workoutlog"
)

// ErrMalformedDate is returned when a calendar date string cannot be
// parsed. Dates are rejected at this boundary so classification never
// operates on a half-valid date.
var ErrMalformedDate = errors.New("malformed date")

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(workoutlog.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return day, nil
}

// DayKey renders a date in its canonical log-lookup form.
func DayKey(t time.Time) string {
	return t.Format(workoutlog.DateLayout)
}

// WeekdayKey renders the weekday name in its canonical template-lookup form.
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// beforeDay reports whether a falls on an earlier calendar day than b,
// ignoring the time of day. Today itself is never "before" today.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// BuildLogIndex maps logs by date. The persistence layer guarantees at
// most one row per date; should a duplicate sneak in anyway, the first
// one in collection order wins. A log with an unparseable date fails the
// whole build rather than being silently dropped.
func BuildLogIndex(logs []workoutlog.WorkoutLog) (map[string]workoutlog.WorkoutLog, error) {
	index := make(map[string]workoutlog.WorkoutLog, len(logs))
	for _, l := range logs {
		day, err := ParseDay(l.Date)
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", l.ID, err)
		}
		key := DayKey(day)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = l
	}
	return index, nil
}

// BuildTemplateIndex maps templates by canonical weekday name, first row
// per weekday winning. That tie-break is deliberate: duplicates are legal
// and the plan view must resolve them the same way every render.
func BuildTemplateIndex(templates []plans.Template) map[string]plans.Template {
	index := make(map[string]plans.Template, len(templates))
	for _, t := range templates {
		key := t.CanonicalDay()
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = t
	}
	return index
}

// Day is the classification result for one calendar date, carrying the
// label payload the calendar views render.
type Day struct {
	Date        string                       `json:"date"`
	Status      DayStatus                    `json:"status"`
	WorkoutName string                       `json:"workoutName,omitempty"`
	MuscleGroup string                       `json:"muscleGroup,omitempty"`
	LogID       int                          `json:"logId,omitempty"`
	Exercises   *workoutlog.ExerciseSections `json:"exercises,omitempty"`
}

// Classify resolves the status of one calendar day. Priority order, first
// match wins:
//
//  1. skipped log row
//  2. completed log row
//  3. forecast log row stored ahead of time
//  4. elapsed day with no row at all
//  5. weekly template matching the weekday
//  6. nothing
//
// An explicit row is ground truth and always shadows the template; a plan
// only applies to days that have not elapsed yet. Pure function, today is
// injected by the caller.
func Classify(
	day time.Time,
	today time.Time,
	logsByDate map[string]workoutlog.WorkoutLog,
	templatesByWeekday map[string]plans.Template,
) Day {
	result := Day{Date: DayKey(day)}

	if l, ok := logsByDate[result.Date]; ok {
		result.WorkoutName = l.WorkoutName
		result.MuscleGroup = l.MuscleGroup
		result.LogID = l.ID
		exercises := l.Exercises
		exercises.Normalize()
		result.Exercises = &exercises
		switch {
		case l.Skipped:
			result.Status = DayStatusSkipped
		case l.Forecast:
			result.Status = DayStatusForecastMaterialized
		default:
			result.Status = DayStatusLogged
		}
		return result
	}

	if beforeDay(day, today) {
		result.Status = DayStatusNotLoggedPast
		return result
	}

	if t, ok := templatesByWeekday[WeekdayKey(day)]; ok {
		result.Status = DayStatusPlanned
		result.WorkoutName = t.WorkoutName
		result.MuscleGroup = t.MuscleGroup
		exercises := t.Exercises
		exercises.Normalize()
		result.Exercises = &exercises
		return result
	}

	result.Status = DayStatusNoPlan
	return result
}

// ClassifyRange classifies every date in the given range, one result per
// input date, in input order. Week and month calendar views both use it;
// they only differ in label verbosity, which is the handler's business.
func ClassifyRange(
	dates []time.Time,
	today time.Time,
	logsByDate map[string]workoutlog.WorkoutLog,
	templatesByWeekday map[string]plans.Template,
) []Day {
	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, Classify(d, today, logsByDate, templatesByWeekday))
	}
	return days
}

// DaysBetween expands an inclusive from/to range into consecutive dates.
func DaysBetween(from, to time.Time) []time.Time {
	if beforeDay(to, from) {
		return nil
	}
	var days []time.Time
	for d := from; !beforeDay(to, d); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
