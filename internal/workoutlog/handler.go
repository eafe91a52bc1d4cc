package workoutlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mkalens/liftlog/internal/telemetry/metrics"
	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workoutlog_test

type logsRepo interface {
	Add(ctx context.Context, workoutLog *WorkoutLog) (*WorkoutLog, error)
	Get(ctx context.Context, id int) (*WorkoutLog, error)
	GetByDate(ctx context.Context, date string) (*WorkoutLog, error)
	ListPage(ctx context.Context, page, size int) (_ []WorkoutLog, total int, err error)
	Update(ctx context.Context, workoutLog *WorkoutLog) error
	Delete(ctx context.Context, id int, deleteAfter time.Time) error
	UndoDelete(ctx context.Context, id int) error
}

type SkipDayRequest struct {
	Date string `json:"date"`
}

type DeleteLogResponse struct {
	DeletedID    int       `json:"deletedId"`
	UndoDeadline time.Time `json:"undoDeadline"`
}

type UndoDeleteResponse struct {
	RestoredID int `json:"restoredId"`
}

type UpdateLogResponse struct {
	UpdatedID int `json:"updatedId"`
}

type LogsListResponse struct {
	Logs  []WorkoutLog `json:"logs"`
	Total int          `json:"total"`
}

type Handler struct {
	repo        logsRepo
	metrics     *metrics.Manager
	deleteGrace time.Duration
}

func NewHandler(repo logsRepo, metricsManager *metrics.Manager, deleteGrace time.Duration) *Handler {
	return &Handler{
		repo:        repo,
		metrics:     metricsManager,
		deleteGrace: deleteGrace,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workoutLog WorkoutLog
	if err := json.NewDecoder(r.Body).Decode(&workoutLog); err != nil {
		log.Errorf("new workout log, unmarshal json params: %s", err)
		http.Error(w, "add workout log failed", http.StatusBadRequest)
		return
	}

	if workoutLog.Date == "" {
		http.Error(w, "error, log date empty", http.StatusBadRequest)
		return
	}

	addedLog, err := handler.repo.Add(ctx, &workoutLog)
	if err != nil {
		log.Errorf("failed to add workout log for [%s]: %s", workoutLog.Date, err)
		http.Error(w, "error, failed to add workout log", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout log added: [%s] [%s]: %d", addedLog.Date, addedLog.MuscleGroup, addedLog.ID)
	handler.metrics.CounterWorkoutsLogged.Inc()

	addedLogJson, err := json.Marshal(addedLog)
	if err != nil {
		log.Errorf("failed to marshal new workout log: %s", err)
		http.Error(w, "error, failed to add workout log", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedLogJson, http.StatusCreated)
}

// HandleSkip records an explicitly skipped day. A skip is just a log row
// with the skipped flag on, so it shadows the weekly plan the same way a
// completed workout does.
func (handler *Handler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.skip")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var skipReq SkipDayRequest
	if err := json.NewDecoder(r.Body).Decode(&skipReq); err != nil {
		log.Errorf("skip day, unmarshal json params: %s", err)
		http.Error(w, "skip day failed", http.StatusBadRequest)
		return
	}

	if skipReq.Date == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}

	skippedLog, err := handler.repo.Add(ctx, &WorkoutLog{
		Date:    skipReq.Date,
		Skipped: true,
	})
	if err != nil {
		log.Errorf("failed to skip day [%s]: %s", skipReq.Date, err)
		http.Error(w, "error, failed to skip day", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsSkipped.Inc()

	skippedLogJson, err := json.Marshal(skippedLog)
	if err != nil {
		log.Errorf("failed to marshal skipped day: %s", err)
		http.Error(w, "error, failed to skip day", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, skippedLogJson, http.StatusCreated)
}

func (handler *Handler) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.getByDate")
	defer span.End()

	vars := mux.Vars(r)
	date := vars["date"]
	if date == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}

	workoutLog, err := handler.repo.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "workout log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout log for %s: %s", date, err)
		http.Error(w, "failed to get workout log", http.StatusInternalServerError)
		return
	}

	logJson, err := json.Marshal(workoutLog)
	if err != nil {
		log.Errorf("failed to marshal workout log: %s", err)
		http.Error(w, "failed to marshal workout log", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.list")
	defer span.End()

	vars := mux.Vars(r)

	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Errorf("handle list workout logs, from <page> param: %s", err)
		http.Error(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Errorf("handle list workout logs, from <size> param: %s", err)
		http.Error(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}

	if page < 1 {
		http.Error(w, "invalid page (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 {
		http.Error(w, "invalid size (has to be non-zero value)", http.StatusBadRequest)
		return
	}

	logs, total, err := handler.repo.ListPage(ctx, page, size)
	if err != nil {
		log.Errorf("list workout logs error: %s", err)
		http.Error(w, "failed to get workout logs", http.StatusInternalServerError)
		return
	}

	listResponseJson, err := json.Marshal(LogsListResponse{
		Logs:  logs,
		Total: total,
	})
	if err != nil {
		log.Errorf("marshal workout logs error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listResponseJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workoutLog WorkoutLog
	if err := json.NewDecoder(r.Body).Decode(&workoutLog); err != nil {
		log.Errorf("update workout log, unmarshal json params: %s", err)
		http.Error(w, "update workout log failed", http.StatusBadRequest)
		return
	}

	if workoutLog.ID <= 0 || workoutLog.Date == "" {
		http.Error(w, "error, log id or date empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Update(ctx, &workoutLog); err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "workout log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update workout log [%d]: %s", workoutLog.ID, err)
		http.Error(w, "error, failed to update workout log", http.StatusInternalServerError)
		return
	}

	updateRespJson, err := json.Marshal(UpdateLogResponse{
		UpdatedID: workoutLog.ID,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout log updated: [%s]: %d", workoutLog.Date, workoutLog.ID)
	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

// HandleDelete starts a grace-period deletion. The log disappears from
// reads right away but stays recoverable via undo until the deadline.
func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.delete")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	undoDeadline := time.Now().Add(handler.deleteGrace)
	if err := handler.repo.Delete(ctx, id, undoDeadline); err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "workout log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout log %d: %s", id, err)
		http.Error(w, "workout log not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteLogResponse{
		DeletedID:    id,
		UndoDeadline: undoDeadline,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleUndoDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.undoDelete")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.UndoDelete(ctx, id); err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "no pending deletion for workout log", http.StatusNotFound)
			return
		}
		log.Errorf("failed to undo delete of workout log %d: %s", id, err)
		http.Error(w, "undo delete failed", http.StatusInternalServerError)
		return
	}

	undoRespJson, err := json.Marshal(UndoDeleteResponse{
		RestoredID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal undo delete response: %s", err)
		http.Error(w, "failed to marshal undo delete response", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout log %d restored", id)
	pkg.WriteJSONResponseOK(w, string(undoRespJson))
}
