package integration_testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mkalens/liftlog/internal"
	"github.com/mkalens/liftlog/internal/config"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort = 9010
	serverHost = "localhost"

	adminUsername = "testadmin"
	adminPassword = "testpass"
	// bcrypt hash of "testpass"
	adminPasswordHash = "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

type Suite struct {
	DB         *sql.DB
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite(ctx context.Context) (_ *Suite) {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}

	pgPort, err := suite.postgresSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}

	cfg := getTestConfig(redisPort, pgPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			OpenAIAPIKey:            "test",
			VersionInfo:             "test-version-info",
			AdminUsername:           adminUsername,
			AdminPasswordHash:       adminPasswordHash,
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		suite.cleanup()
		log.Fatalf("new server: %s", err)
	}

	suite.server.Serve(ctx, cfg.Host, cfg.Port)

	return suite
}

func (s *Suite) cleanup() {
	if s.DB != nil {
		s.DB.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                        serverHost,
		Port:                        serverPort,
		QuotesCsvPath:               "../assets/quotes.csv",
		RedisHost:                   "localhost",
		RedisPort:                   redisPort,
		PostgresPort:                postgresPort,
		PostgresHost:                "localhost",
		PostgresDBName:              "liftlog",
		PrometheusMetricsHost:       "localhost",
		PrometheusMetricsPort:       "9011",
		LoginRateLimitAllowedPerMin: 60,
		LogDeleteGracePeriodMinutes: 15,
	}
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, nil
}

func (s *Suite) postgresSetup() (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "12",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_HOST_AUTH_METHOD=trust",
			"POSTGRES_DB=liftlog",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		pgResource.Close()
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/liftlog?sslmode=disable", pgPort)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db conn: %s", err)
	}
	s.DB = db

	res, err := db.Exec(initSQL)
	if err != nil {
		return "", fmt.Errorf("run init script: %s", err)
	}

	numRows, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("get rows affected: %s", err)
	}

	log.Printf("postgres setup result: %d\n", numRows)

	if db.Ping() != nil {
		return "", fmt.Errorf("ping db: %s", err)
	}

	return pgPort, nil
}

const initSQL = `
CREATE TABLE public.workout_log
(
    id           SERIAL PRIMARY KEY,
    date         DATE    NOT NULL UNIQUE,
    workout_name VARCHAR NOT NULL DEFAULT '',
    muscle_group VARCHAR NOT NULL DEFAULT '',
    skipped      BOOLEAN NOT NULL DEFAULT FALSE,
    forecast     BOOLEAN NOT NULL DEFAULT FALSE,
    exercises    JSONB   NOT NULL DEFAULT '{}',
    created_at   TIMESTAMP WITHOUT TIME ZONE NOT NULL,
    delete_after TIMESTAMP WITHOUT TIME ZONE
);

ALTER TABLE public.workout_log OWNER TO postgres;
CREATE INDEX ix_workout_log_date ON public.workout_log USING btree (date);

CREATE TABLE public.plan_template
(
    id           SERIAL PRIMARY KEY,
    day_of_week  VARCHAR NOT NULL,
    workout_name VARCHAR NOT NULL DEFAULT '',
    muscle_group VARCHAR NOT NULL DEFAULT '',
    split        VARCHAR NOT NULL DEFAULT '',
    exercises    JSONB   NOT NULL DEFAULT '{}'
);

ALTER TABLE public.plan_template OWNER TO postgres;
CREATE INDEX ix_plan_template_day ON public.plan_template (day_of_week);

CREATE TABLE public.profile
(
    id                  INTEGER PRIMARY KEY,
    name                VARCHAR NOT NULL DEFAULT '',
    goal                VARCHAR NOT NULL DEFAULT '',
    experience          VARCHAR NOT NULL DEFAULT '',
    days_per_week       INTEGER NOT NULL DEFAULT 0,
    equipment           VARCHAR NOT NULL DEFAULT '',
    height_cm           INTEGER NOT NULL DEFAULT 0,
    weight_kg           DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_preference     VARCHAR NOT NULL DEFAULT '',
    cardio_preference   VARCHAR NOT NULL DEFAULT '',
    preferred_rest_days JSONB   NOT NULL DEFAULT '[]',
    updated_at          TIMESTAMP WITHOUT TIME ZONE NOT NULL
);

ALTER TABLE public.profile OWNER TO postgres;
`
