package schedule

// DayStatus is the resolved state of a single calendar day. Exactly one
// status applies per day; Classify picks it by priority, an explicit log
// row always shadowing the weekly plan.
type DayStatus string

const (
	// DayStatusSkipped - a log row exists and the day was explicitly skipped.
	DayStatusSkipped DayStatus = "skipped"
	// DayStatusLogged - a completed, real workout log exists for the day.
	DayStatusLogged DayStatus = "logged"
	// DayStatusForecastMaterialized - a log row was stored ahead of time for a
	// planned workout which is not yet completed.
	DayStatusForecastMaterialized DayStatus = "forecast"
	// DayStatusNotLoggedPast - the day already elapsed and nothing was recorded.
	DayStatusNotLoggedPast DayStatus = "not_logged"
	// DayStatusPlanned - no log yet, day is today or upcoming, and a weekly
	// plan template matches its weekday.
	DayStatusPlanned DayStatus = "planned"
	// DayStatusNoPlan - no log, not past, and no template for the weekday.
	DayStatusNoPlan DayStatus = "no_plan"
)

func (s DayStatus) String() string {
	return string(s)
}
