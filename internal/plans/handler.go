package plans

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=plans_test

type templatesRepo interface {
	ListAll(ctx context.Context) ([]Template, error)
	ListByDay(ctx context.Context, weekday string) ([]Template, error)
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

type PlanResponse struct {
	Templates []Template `json:"templates"`
}

type Handler struct {
	repo templatesRepo
}

func NewHandler(repo templatesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.list")
	defer span.End()

	templates, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("list plan templates: %s", err)
		http.Error(w, "failed to get plan templates", http.StatusInternalServerError)
		return
	}

	planJson, err := json.Marshal(PlanResponse{Templates: templates})
	if err != nil {
		log.Errorf("marshal plan templates: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, planJson, http.StatusOK)
}

// HandleGetByDay returns the template used for one weekday. Duplicates
// are legal, the first row wins.
func (handler *Handler) HandleGetByDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.getByDay")
	defer span.End()

	vars := mux.Vars(r)
	weekday := strings.ToLower(strings.TrimSpace(vars["weekday"]))
	if !weekdays[weekday] {
		http.Error(w, "error, invalid weekday", http.StatusBadRequest)
		return
	}

	templates, err := handler.repo.ListByDay(ctx, weekday)
	if err != nil {
		log.Errorf("get plan template for %s: %s", weekday, err)
		http.Error(w, "failed to get plan template", http.StatusInternalServerError)
		return
	}

	if len(templates) == 0 {
		http.Error(w, "no plan template for weekday", http.StatusNotFound)
		return
	}

	templateJson, err := json.Marshal(templates[0])
	if err != nil {
		log.Errorf("marshal plan template: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, templateJson, http.StatusOK)
}
