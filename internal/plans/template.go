package plans

import (
	"strings"

	"github.com/mkalens/liftlog/internal/workoutlog"
)

// Template is one day of the recurring weekly plan. The full set is
// replaced wholesale whenever the profile changes and the plan is
// regenerated; rows are never patched individually.
type Template struct {
	ID          int                         `json:"id"`
	DayOfWeek   string                      `json:"dayOfWeek"`
	WorkoutName string                      `json:"workoutName"`
	MuscleGroup string                      `json:"muscleGroup"`
	Split       string                      `json:"split"`
	Exercises   workoutlog.ExerciseSections `json:"exercises"`
}

// CanonicalDay returns the weekday name in its canonical lookup form.
// Matching is case-insensitive and whitespace-trimmed; when several rows
// share a weekday the first one in collection order wins.
func (t Template) CanonicalDay() string {
	return strings.ToLower(strings.TrimSpace(t.DayOfWeek))
}

// Normalize prepares a template coming in over the wire or out of storage.
func (t *Template) Normalize() {
	t.DayOfWeek = t.CanonicalDay()
	t.Exercises.Normalize()
}
