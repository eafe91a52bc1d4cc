package workoutlog

import (
	"time"
)

// DateLayout is the canonical calendar-day format used across the service.
// One log row exists per date; the database enforces it with a unique
// constraint and the repo converts a duplicate insert into an update.
const DateLayout = "2006-01-02"

type ExerciseKind string

const (
	ExerciseKindWeighted   ExerciseKind = "weighted"
	ExerciseKindTimed      ExerciseKind = "timed"
	ExerciseKindCardio     ExerciseKind = "cardio"
	ExerciseKindBodyweight ExerciseKind = "bodyweight"
)

// Exercise is one entry of a workout section. Older clients sent the
// weighted/timed/cardio flags inconsistently, sometimes only implying them
// through which fields were present, so Kind is resolved once at ingestion
// and everything downstream reads Kind only.
type Exercise struct {
	Name     string       `json:"name"`
	Kind     ExerciseKind `json:"kind,omitempty"`
	Sets     int          `json:"sets,omitempty"`
	Reps     int          `json:"reps,omitempty"`
	Weight   string       `json:"weight,omitempty"`
	Duration string       `json:"duration,omitempty"`
	Work     int          `json:"work,omitempty"`
	Rest     int          `json:"rest,omitempty"`
	Weighted bool         `json:"weighted,omitempty"`
	Timed    bool         `json:"timed,omitempty"`
	Cardio   bool         `json:"cardio,omitempty"`
}

// ResolveKind returns the exercise kind, preferring explicit flags and
// falling back to inference from which fields are set.
func (e Exercise) ResolveKind() ExerciseKind {
	switch {
	case e.Cardio:
		return ExerciseKindCardio
	case e.Timed:
		return ExerciseKindTimed
	case e.Weighted:
		return ExerciseKindWeighted
	case e.Work > 0:
		return ExerciseKindCardio
	case e.Duration != "":
		return ExerciseKindTimed
	case e.Weight != "":
		return ExerciseKindWeighted
	default:
		return ExerciseKindBodyweight
	}
}

// Normalize stamps the resolved kind and re-aligns the legacy flags with it.
func (e *Exercise) Normalize() {
	e.Kind = e.ResolveKind()
	e.Weighted = e.Kind == ExerciseKindWeighted
	e.Timed = e.Kind == ExerciseKindTimed
	e.Cardio = e.Kind == ExerciseKindCardio
}

// ExerciseSections holds the three ordered parts of a workout.
type ExerciseSections struct {
	Warmup   []Exercise `json:"warmup"`
	Main     []Exercise `json:"main"`
	Cooldown []Exercise `json:"cooldown"`
}

// Normalize makes absent sections empty instead of nil and resolves the
// kind of every exercise. Logs stored by old clients miss whole sections.
func (s *ExerciseSections) Normalize() {
	if s.Warmup == nil {
		s.Warmup = []Exercise{}
	}
	if s.Main == nil {
		s.Main = []Exercise{}
	}
	if s.Cooldown == nil {
		s.Cooldown = []Exercise{}
	}
	for i := range s.Warmup {
		s.Warmup[i].Normalize()
	}
	for i := range s.Main {
		s.Main[i].Normalize()
	}
	for i := range s.Cooldown {
		s.Cooldown[i].Normalize()
	}
}

// WorkoutLog is the actual outcome recorded for one calendar date: a
// completed workout, an explicitly skipped day, or a plan row materialized
// ahead of time (Forecast) which is not yet completed.
type WorkoutLog struct {
	ID          int              `json:"id"`
	Date        string           `json:"date"`
	WorkoutName string           `json:"workoutName"`
	MuscleGroup string           `json:"muscleGroup"`
	Skipped     bool             `json:"skipped"`
	Forecast    bool             `json:"forecast"`
	Exercises   ExerciseSections `json:"exercises"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Normalize prepares a log coming in over the wire or out of storage.
func (l *WorkoutLog) Normalize() {
	l.Exercises.Normalize()
}

// Day parses the log's calendar date.
func (l *WorkoutLog) Day() (time.Time, error) {
	return time.Parse(DateLayout, l.Date)
}
