package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpilot/internal/agent"
	"hrpilot/internal/costs"
	"hrpilot/internal/domain/audit"
	"hrpilot/internal/domain/auth"
	"hrpilot/internal/domain/compliance"
	"hrpilot/internal/domain/hr"
	"hrpilot/internal/domain/leave"
	"hrpilot/internal/domain/onboarding"
	"hrpilot/internal/llm"
	"hrpilot/internal/platform/config"
	"hrpilot/internal/platform/db"
	"hrpilot/internal/platform/jobs"
	"hrpilot/internal/platform/metrics"
	"hrpilot/internal/transport/http/api"
	audithandler "hrpilot/internal/transport/http/handlers/audit"
	authhandler "hrpilot/internal/transport/http/handlers/auth"
	compliancehandler "hrpilot/internal/transport/http/handlers/compliance"
	employeeshandler "hrpilot/internal/transport/http/handlers/employees"
	leavehandler "hrpilot/internal/transport/http/handlers/leave"
	onboardinghandler "hrpilot/internal/transport/http/handlers/onboarding"
	usagehandler "hrpilot/internal/transport/http/handlers/usage"
	"hrpilot/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New assembles the application: database, model client, workflow dispatcher,
// domain services and the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunMigrations {
		migrationsDir, err := db.FindMigrationsDir()
		if err != nil {
			pool.Close()
			return nil, err
		}
		if err := db.Migrate(ctx, pool, migrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	var client llm.Client
	switch cfg.LLMProvider {
	case "fake":
		client = llm.NewFake("")
	default:
		client = llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
	}

	auditSvc := audit.New(pool)
	tracker := costs.New(pool)
	dispatcher := agent.NewDispatcher(client, tracker, auditSvc,
		agent.Settings{Model: cfg.LLMModel, Temperature: cfg.LeaveTemp, MaxTokens: cfg.LLMMaxTokens},
		agent.Settings{Model: cfg.LLMModel, Temperature: cfg.ComplianceTemp, MaxTokens: cfg.LLMMaxTokens},
		agent.Settings{Model: cfg.LLMModel, Temperature: cfg.OnboardingTemp, MaxTokens: cfg.LLMMaxTokens},
	)

	authStore := auth.NewStore(pool)
	employeeStore := hr.NewStore(pool)
	leaveSvc := leave.NewService(leave.NewStore(pool), employeeStore, dispatcher, auditSvc, cfg.DemoMode, cfg.FastTrackDays)
	complianceSvc := compliance.NewService(pool, employeeStore, dispatcher, auditSvc)
	onboardingSvc := onboarding.NewService(pool, employeeStore, dispatcher, auditSvc, cfg.OnboardingDays)
	jobsSvc := jobs.New(pool, complianceSvc)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeStore, authStore).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, authStore).RegisterRoutes(r)
		compliancehandler.NewHandler(complianceSvc, authStore).RegisterRoutes(r)
		onboardinghandler.NewHandler(onboardingSvc, authStore).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
		usagehandler.NewHandler(tracker, authStore).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Jobs:    jobsSvc,
		Metrics: collector,
	}, nil
}

// Run starts background jobs and serves HTTP until the listener fails.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx, a.Config.ComplianceScanInterval)
	return http.ListenAndServe(a.Config.Addr, a.Router)
}

func (a *App) Close() {
	a.DB.Close()
}
