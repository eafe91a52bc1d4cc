package workoutlog_test

import (
	"encoding/json"
	"testing"

	"github.com/mkalens/liftlog/internal/workoutlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExercise_ResolveKind(t *testing.T) {
	testCases := []struct {
		name     string
		exercise workoutlog.Exercise
		expected workoutlog.ExerciseKind
	}{
		{
			name:     "ExplicitCardioFlag",
			exercise: workoutlog.Exercise{Name: "bike sprints", Cardio: true, Weight: "20"},
			expected: workoutlog.ExerciseKindCardio,
		},
		{
			name:     "ExplicitTimedFlag",
			exercise: workoutlog.Exercise{Name: "plank", Timed: true},
			expected: workoutlog.ExerciseKindTimed,
		},
		{
			name:     "ExplicitWeightedFlag",
			exercise: workoutlog.Exercise{Name: "bench press", Weighted: true},
			expected: workoutlog.ExerciseKindWeighted,
		},
		{
			name:     "InferredCardioFromInterval",
			exercise: workoutlog.Exercise{Name: "rower", Work: 40, Rest: 20},
			expected: workoutlog.ExerciseKindCardio,
		},
		{
			name:     "InferredTimedFromDuration",
			exercise: workoutlog.Exercise{Name: "dead hang", Duration: "60s"},
			expected: workoutlog.ExerciseKindTimed,
		},
		{
			name:     "InferredWeightedFromWeight",
			exercise: workoutlog.Exercise{Name: "goblet squat", Weight: "24kg"},
			expected: workoutlog.ExerciseKindWeighted,
		},
		{
			name:     "DefaultBodyweight",
			exercise: workoutlog.Exercise{Name: "push ups", Sets: 3, Reps: 15},
			expected: workoutlog.ExerciseKindBodyweight,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.exercise.ResolveKind())
		})
	}
}

func TestExercise_Normalize_RealignsFlags(t *testing.T) {
	// legacy payload: no flags set, only a weight field
	e := workoutlog.Exercise{Name: "row", Weight: "60kg"}
	e.Normalize()
	assert.Equal(t, workoutlog.ExerciseKindWeighted, e.Kind)
	assert.True(t, e.Weighted)
	assert.False(t, e.Timed)
	assert.False(t, e.Cardio)

	// contradictory payload: cardio flag wins over the weight field
	e = workoutlog.Exercise{Name: "sled push", Cardio: true, Weight: "40kg"}
	e.Normalize()
	assert.Equal(t, workoutlog.ExerciseKindCardio, e.Kind)
	assert.True(t, e.Cardio)
	assert.False(t, e.Weighted)
}

func TestExerciseSections_Normalize(t *testing.T) {
	var sections workoutlog.ExerciseSections
	sections.Normalize()
	require.NotNil(t, sections.Warmup)
	require.NotNil(t, sections.Main)
	require.NotNil(t, sections.Cooldown)
	assert.Empty(t, sections.Main)

	sections = workoutlog.ExerciseSections{
		Main: []workoutlog.Exercise{
			{Name: "squat", Weight: "80kg"},
		},
	}
	sections.Normalize()
	require.NotNil(t, sections.Warmup)
	require.Len(t, sections.Main, 1)
	assert.Equal(t, workoutlog.ExerciseKindWeighted, sections.Main[0].Kind)
}

func TestWorkoutLog_Normalize_FromPartialJSON(t *testing.T) {
	// stored logs from early clients miss whole sections
	var l workoutlog.WorkoutLog
	require.NoError(t, json.Unmarshal([]byte(`{
		"date": "2024-06-04",
		"workoutName": "Pull Day",
		"muscleGroup": "back",
		"exercises": {"main": [{"name": "deadlift", "weight": "100kg", "sets": 3, "reps": 5}]}
	}`), &l))

	l.Normalize()
	require.NotNil(t, l.Exercises.Warmup)
	require.NotNil(t, l.Exercises.Cooldown)
	require.Len(t, l.Exercises.Main, 1)
	assert.Equal(t, workoutlog.ExerciseKindWeighted, l.Exercises.Main[0].Kind)

	day, err := l.Day()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-04", day.Format(workoutlog.DateLayout))
}

func TestWorkoutLog_Day_Malformed(t *testing.T) {
	l := workoutlog.WorkoutLog{Date: "04.06.2024"}
	_, err := l.Day()
	require.Error(t, err)
}
