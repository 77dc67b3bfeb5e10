package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"taskapi/internal/config"
	"taskapi/internal/database"
	"taskapi/internal/database/migration"
	handlers "taskapi/internal/http/handler"
	"taskapi/internal/logger"
	"taskapi/internal/otel"
	"taskapi/internal/service"
	"taskapi/internal/storage"
)

// @title Task API
// @version 1.0
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskapi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.Location(), logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	mongoClient, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("mongo_disconnect_failed", "error", err.Error())
		}
	}()
	mdb := mongoClient.Database(cfg.Mongo.Database)

	repos, err := newRepositories(ctx, cfg,
		db,
		mdb.Collection(cfg.Mongo.TasksCollection),
		mdb.Collection(cfg.Mongo.EventsCollection),
	)
	if err != nil {
		return err
	}
	log.Info("repositories_ready", "task_backend", cfg.TaskBackend)

	billingOpts := []service.BillingOption{service.WithLogger(log)}
	if cfg.MinIO.Enabled() {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		billingOpts = append(billingOpts, service.WithReceipts(store, cfg.MinIO.PresignExpiry))
	} else {
		log.Info("receipts_disabled", "reason", "MINIO_ENDPOINT not set")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := newApp(cfg, log, reg, handlers.Deps{
		Tasks: service.NewTaskService(repos.tasks, service.WithTaskLogger(log)),
		Billing: service.NewBillingService(
			repos.customers, repos.plans, repos.subscriptions, repos.events, billingOpts...,
		),
		Checks: []handlers.Check{
			{Name: "postgres", Probe: database.PostgresHealthcheck(db)},
			{Name: "mongo", Probe: database.MongoHealthcheck(mongoClient)},
		},
	})
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(":" + cfg.Port)
	}()
	log.Info("server_started", "port", cfg.Port)

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("server_shutdown", "timeout", cfg.ShutdownTimeout.String())
	shutdownErr := app.ShutdownWithTimeout(cfg.ShutdownTimeout)

	tctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return errors.Join(shutdownErr, shutdownTracing(tctx))
}
