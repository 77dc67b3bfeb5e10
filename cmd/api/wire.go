package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskapi/docs"
	"taskapi/internal/config"
	handlers "taskapi/internal/http/handler"
	"taskapi/internal/http/middleware"
	"taskapi/internal/repository"
	"taskapi/internal/repository/memory"
	repomongo "taskapi/internal/repository/mongo"
	"taskapi/internal/repository/postgres"
)

type repositories struct {
	tasks         repository.TaskRepository
	customers     repository.CustomerRepository
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	events        repository.EventRepository
}

// newTaskRepository picks the task backend named by TASK_BACKEND.
func newTaskRepository(ctx context.Context, cfg *config.AppConfig, coll repomongo.Collection) (repository.TaskRepository, error) {
	switch cfg.TaskBackend {
	case config.TaskBackendMongo:
		r, err := repomongo.NewTaskMongo(ctx, coll, cfg.OpTimeout)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.TaskBackendMemory:
		return memory.NewTaskMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTaskBackend, cfg.TaskBackend)
	}
}

// newRepositories constructs every backend once. Customers run the shared
// reset, so they are built before subscriptions.
func newRepositories(ctx context.Context, cfg *config.AppConfig, db *sql.DB, tasksColl, eventsColl repomongo.Collection) (*repositories, error) {
	tasks, err := newTaskRepository(ctx, cfg, tasksColl)
	if err != nil {
		return nil, fmt.Errorf("task repository: %w", err)
	}
	customers, err := postgres.NewCustomerPostgres(ctx, db, cfg.OpTimeout)
	if err != nil {
		return nil, fmt.Errorf("customer repository: %w", err)
	}
	plans, err := postgres.NewPlanPostgres(db, cfg.OpTimeout)
	if err != nil {
		return nil, fmt.Errorf("plan repository: %w", err)
	}
	subscriptions, err := postgres.NewSubscriptionPostgres(ctx, db, cfg.OpTimeout)
	if err != nil {
		return nil, fmt.Errorf("subscription repository: %w", err)
	}
	events, err := repomongo.NewEventMongo(ctx, eventsColl, cfg.OpTimeout)
	if err != nil {
		return nil, fmt.Errorf("event repository: %w", err)
	}

	return &repositories{
		tasks:         tasks,
		customers:     customers,
		plans:         plans,
		subscriptions: subscriptions,
		events:        events,
	}, nil
}

// newApp builds the fiber app with middleware, metrics, docs and routes.
func newApp(cfg *config.AppConfig, log *slog.Logger, reg *prometheus.Registry, deps handlers.Deps) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "taskapi",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions,
		}, ","),
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(metrics.Handler())

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// SwaggerInfo is package state read by every doc request; it is written here only.
	docs.SwaggerInfo.Host = cfg.AppHost
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app, deps)
	return app, nil
}
