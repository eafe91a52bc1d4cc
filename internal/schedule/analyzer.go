package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mkalens/liftlog/internal/plans"
	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/internal/workoutlog"
)

// streakWindowDays bounds how far back the current streak walk looks.
const streakWindowDays = 30

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=schedule_test

type logsProvider interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]workoutlog.WorkoutLog, error)
	ListAll(ctx context.Context) ([]workoutlog.WorkoutLog, error)
}

type templatesProvider interface {
	ListAll(ctx context.Context) ([]plans.Template, error)
}

// Streak is the streak summary served to the today view.
type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Analyzer pulls logs and templates out of storage, builds the lookups,
// and serves calendar and streak views over the pure classification core.
type Analyzer struct {
	logs      logsProvider
	templates templatesProvider
	policy    StreakPolicy

	// now is injected for tests; day classification needs a stable "today".
	now func() time.Time
}

func NewAnalyzer(
	logs logsProvider,
	templates templatesProvider,
	policy StreakPolicy,
	now func() time.Time,
) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		logs:      logs,
		templates: templates,
		policy:    policy,
		now:       now,
	}
}

// Calendar classifies every day in the inclusive from/to range.
func (a *Analyzer) Calendar(ctx context.Context, from, to time.Time) (_ []Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.schedule.calendar")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if beforeDay(to, from) {
		return nil, fmt.Errorf("invalid range: %s is after %s", DayKey(from), DayKey(to))
	}

	logs, err := a.logs.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	templates, err := a.templates.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	logIndex, err := BuildLogIndex(logs)
	if err != nil {
		return nil, err
	}

	return ClassifyRange(
		DaysBetween(from, to),
		a.now(),
		logIndex,
		BuildTemplateIndex(templates),
	), nil
}

// Day classifies a single date.
func (a *Analyzer) Day(ctx context.Context, date string) (_ Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.schedule.day")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	day, err := ParseDay(date)
	if err != nil {
		return Day{}, err
	}

	days, err := a.Calendar(ctx, day, day)
	if err != nil {
		return Day{}, err
	}
	return days[0], nil
}

// Streak computes the current streak over the recent window and the best
// streak over the full history.
func (a *Analyzer) Streak(ctx context.Context) (_ Streak, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.schedule.streak")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	today := a.now()
	windowStart := today.AddDate(0, 0, -streakWindowDays)

	recent, err := a.logs.ListBetween(ctx, windowStart, today)
	if err != nil {
		return Streak{}, fmt.Errorf("list recent logs: %w", err)
	}
	all, err := a.logs.ListAll(ctx)
	if err != nil {
		return Streak{}, fmt.Errorf("list logs: %w", err)
	}

	recentEntries, err := StreakEntries(recent)
	if err != nil {
		return Streak{}, err
	}
	allEntries, err := StreakEntries(all)
	if err != nil {
		return Streak{}, err
	}

	// current streak walks most-recent-first, best streak chronological
	sort.Slice(recentEntries, func(i, j int) bool {
		return recentEntries[j].Day.Before(recentEntries[i].Day)
	})
	sort.Slice(allEntries, func(i, j int) bool {
		return allEntries[i].Day.Before(allEntries[j].Day)
	})

	return Streak{
		Current: CurrentStreak(recentEntries, a.policy),
		Best:    BestStreak(allEntries, a.policy),
	}, nil
}
