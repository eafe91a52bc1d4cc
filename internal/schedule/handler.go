package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=schedule_test

type analyzer interface {
	Calendar(ctx context.Context, from, to time.Time) ([]Day, error)
	Day(ctx context.Context, date string) (Day, error)
	Streak(ctx context.Context) (Streak, error)
}

// CalendarDay decorates a classified day with the label the calendar grid
// renders. Month view abbreviates, week view spells it out; that is the
// only difference between the two.
type CalendarDay struct {
	Day
	Label string `json:"label"`
}

type CalendarResponse struct {
	Days []CalendarDay `json:"days"`
}

type Handler struct {
	analyzer analyzer
}

func NewHandler(analyzer analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.calendar")
	defer span.End()

	vars := mux.Vars(r)

	from, err := ParseDay(vars["from"])
	if err != nil {
		http.Error(w, "error, invalid <from> date", http.StatusBadRequest)
		return
	}
	to, err := ParseDay(vars["to"])
	if err != nil {
		http.Error(w, "error, invalid <to> date", http.StatusBadRequest)
		return
	}

	days, err := handler.analyzer.Calendar(ctx, from, to)
	if err != nil {
		log.Errorf("calendar [%s - %s]: %s", vars["from"], vars["to"], err)
		http.Error(w, "failed to get calendar", http.StatusInternalServerError)
		return
	}

	shortLabels := r.URL.Query().Get("view") == "month"
	resp := CalendarResponse{
		Days: make([]CalendarDay, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, CalendarDay{
			Day:   d,
			Label: dayLabel(d, shortLabels),
		})
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal calendar response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.day")
	defer span.End()

	vars := mux.Vars(r)
	date := vars["date"]
	if date == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}

	day, err := handler.analyzer.Day(ctx, date)
	if err != nil {
		if errors.Is(err, ErrMalformedDate) {
			http.Error(w, "error, invalid date", http.StatusBadRequest)
			return
		}
		log.Errorf("get day %s: %s", date, err)
		http.Error(w, "failed to get day", http.StatusInternalServerError)
		return
	}

	dayJson, err := json.Marshal(day)
	if err != nil {
		log.Errorf("marshal day response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, dayJson, http.StatusOK)
}

func (handler *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.streak")
	defer span.End()

	streak, err := handler.analyzer.Streak(ctx)
	if err != nil {
		log.Errorf("get streak: %s", err)
		http.Error(w, "failed to get streak", http.StatusInternalServerError)
		return
	}

	streakJson, err := json.Marshal(streak)
	if err != nil {
		log.Errorf("marshal streak response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, streakJson, http.StatusOK)
}

func dayLabel(d Day, short bool) string {
	switch d.Status {
	case DayStatusSkipped:
		if short {
			return "Skip"
		}
		return "Skipped"
	case DayStatusLogged, DayStatusForecastMaterialized, DayStatusPlanned:
		label := d.MuscleGroup
		if label == "" {
			label = d.WorkoutName
		}
		if label == "" {
			return ""
		}
		if short && len(label) > 4 {
			return strings.ToUpper(label[:1]) + label[1:4]
		}
		return strings.ToUpper(label[:1]) + label[1:]
	default:
		return ""
	}
}
