package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkalens/liftlog/internal/plans"
	"github.com/mkalens/liftlog/internal/telemetry/metrics"
	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=profiles_test

type profilesRepo interface {
	Get(ctx context.Context) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

type planGenerator interface {
	GeneratePlan(ctx context.Context, profile Profile) ([]plans.Template, error)
}

type plansReplacer interface {
	ReplaceAll(ctx context.Context, templates []plans.Template) error
}

type SaveProfileResponse struct {
	Profile   *Profile         `json:"profile"`
	Templates []plans.Template `json:"templates"`
}

type Handler struct {
	repo      profilesRepo
	generator planGenerator
	replacer  plansReplacer
	metrics   *metrics.Manager
}

func NewHandler(
	repo profilesRepo,
	generator planGenerator,
	replacer plansReplacer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:      repo,
		generator: generator,
		replacer:  replacer,
		metrics:   metricsManager,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.get")
	defer span.End()

	profile, err := handler.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not set up yet", http.StatusNotFound)
			return
		}
		log.Errorf("get profile: %s", err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("marshal profile: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, profileJson, http.StatusOK)
}

// HandleSave stores the profile and regenerates the weekly plan from it
// in one go. The profile is persisted before generation, but the old
// templates are only replaced after a complete new plan came back, so a
// generation failure keeps the current plan intact.
func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profiles.save")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		log.Errorf("save profile, unmarshal json params: %s", err)
		http.Error(w, "save profile failed", http.StatusBadRequest)
		return
	}

	if profile.Goal == "" {
		http.Error(w, "error, profile goal empty", http.StatusBadRequest)
		return
	}
	if profile.DaysPerWeek < 1 || profile.DaysPerWeek > 7 {
		http.Error(w, "error, days per week out of range", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Upsert(ctx, &profile); err != nil {
		log.Errorf("save profile: %s", err)
		http.Error(w, "error, failed to save profile", http.StatusInternalServerError)
		return
	}

	templates, err := handler.generator.GeneratePlan(ctx, profile)
	if err != nil {
		log.Errorf("generate plan for profile: %s", err)
		handler.metrics.CounterPlanGenerationFails.Inc()
		http.Error(w, "error, failed to generate weekly plan", http.StatusBadGateway)
		return
	}

	if err := handler.replacer.ReplaceAll(ctx, templates); err != nil {
		log.Errorf("replace plan templates: %s", err)
		http.Error(w, "error, failed to store weekly plan", http.StatusInternalServerError)
		return
	}

	log.Debugf("profile saved, weekly plan regenerated: %d templates", len(templates))
	handler.metrics.CounterPlansGenerated.Inc()

	respJson, err := json.Marshal(SaveProfileResponse{
		Profile:   &profile,
		Templates: templates,
	})
	if err != nil {
		log.Errorf("marshal save profile response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
