package internal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mkalens/liftlog/internal/auth"
	"github.com/mkalens/liftlog/internal/config"
	"github.com/mkalens/liftlog/internal/db"
	"github.com/mkalens/liftlog/internal/middleware"
	"github.com/mkalens/liftlog/internal/misc"
	"github.com/mkalens/liftlog/internal/plans"
	"github.com/mkalens/liftlog/internal/profiles"
	"github.com/mkalens/liftlog/internal/schedule"
	"github.com/mkalens/liftlog/internal/telemetry/metrics"
	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/internal/templategen"
	"github.com/mkalens/liftlog/internal/workoutlog"
)

// logsPurgeInterval is how often lapsed soft-deleted workout logs get
// physically removed.
const logsPurgeInterval = 10 * time.Minute

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config        *config.Config
	dbPool        *pgxpool.Pool
	planGen       *templategen.Client
	quotesManager *misc.QuotesManager

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	logDeleteGrace time.Duration

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	OpenAIAPIKey            string
	VersionInfo             string
	AdminUsername           string
	AdminPasswordHash       string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("liftlog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(&auth.Admin{
		Username:     params.AdminUsername,
		PasswordHash: params.AdminPasswordHash,
	}, auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "liftlog-backend")
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	logDeleteGrace := time.Duration(params.Config.LogDeleteGracePeriodMinutes) * time.Minute
	if logDeleteGrace <= 0 {
		logDeleteGrace = 15 * time.Minute
	}

	s := &Server{
		config: params.Config,
		dbPool: dbPool,
		planGen: templategen.NewClient(
			params.Config.OpenAIBaseURL,
			params.OpenAIAPIKey,
			params.Config.OpenAIModel,
			tracedHttpClient,
		),
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		logDeleteGrace: logDeleteGrace,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	quotesCsvFile, err := os.Open(params.Config.QuotesCsvPath)
	if err != nil {
		return nil, fmt.Errorf("open quotes file: %w", err)
	}
	defer func() {
		if err := quotesCsvFile.Close(); err != nil {
			log.Warnf("close quotes csv file: %s", err)
		}
	}()

	s.quotesManager, err = misc.NewQuoteManager(csv.NewReader(quotesCsvFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create quote manager: %s", err)
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	logsRepo := workoutlog.NewRepo(s.dbPool)
	logsHandler := workoutlog.NewHandler(logsRepo, s.metricsManager, s.logDeleteGrace)
	r.HandleFunc("/logs", logsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-log")
	r.HandleFunc("/logs", logsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-log")
	r.HandleFunc("/logs/skip", logsHandler.HandleSkip).Methods("POST", "OPTIONS").Name("skip-day")
	r.HandleFunc("/logs/date/{date}", logsHandler.HandleGetByDate).Methods("GET", "OPTIONS").Name("get-log")
	r.HandleFunc("/logs/list/page/{page}/size/{size}", logsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-logs")
	r.HandleFunc("/logs/{id}", logsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-log")
	r.HandleFunc("/logs/{id}/undo", logsHandler.HandleUndoDelete).Methods("POST", "OPTIONS").Name("undo-delete-log")

	plansRepo := plans.NewRepo(s.dbPool)
	plansHandler := plans.NewHandler(plansRepo)
	r.HandleFunc("/plans", plansHandler.HandleList).Methods("GET", "OPTIONS").Name("list-plans")
	r.HandleFunc("/plans/day/{weekday}", plansHandler.HandleGetByDay).Methods("GET", "OPTIONS").Name("get-plan-day")

	profilesHandler := profiles.NewHandler(
		profiles.NewRepo(s.dbPool),
		s.planGen,
		plansRepo,
		s.metricsManager,
	)
	r.HandleFunc("/profile", profilesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", profilesHandler.HandleSave).Methods("POST", "OPTIONS").Name("save-profile")

	scheduleHandler := schedule.NewHandler(
		schedule.NewAnalyzer(logsRepo, plansRepo, schedule.StreakPolicy{}, nil),
	)
	r.HandleFunc("/schedule/calendar/from/{from}/to/{to}", scheduleHandler.HandleCalendar).Methods("GET", "OPTIONS").Name("calendar")
	r.HandleFunc("/schedule/day/{date}", scheduleHandler.HandleDay).Methods("GET", "OPTIONS").Name("schedule-day")
	r.HandleFunc("/schedule/streak", scheduleHandler.HandleStreak).Methods("GET", "OPTIONS").Name("streak")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	miscHandler := misc.NewHandler(s.quotesManager, s.versionInfo, s.authService)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.startLogsPurgeSweeper(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// startLogsPurgeSweeper periodically removes workout logs whose delete
// grace period has lapsed without an undo.
func (s *Server) startLogsPurgeSweeper(ctx context.Context) {
	logsRepo := workoutlog.NewRepo(s.dbPool)
	go func() {
		ticker := time.NewTicker(logsPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := logsRepo.PurgeDue(ctx, time.Now())
				if err != nil {
					log.Errorf("purge deleted workout logs: %s", err)
					continue
				}
				if purged > 0 {
					log.Debugf("purged %d deleted workout logs", purged)
				}
			}
		}
	}()
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
