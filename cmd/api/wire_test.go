package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/docs"
	"taskapi/internal/config"
	handlers "taskapi/internal/http/handler"
	"taskapi/internal/logger"
	"taskapi/internal/repository"
	"taskapi/internal/repository/memory"
	"taskapi/internal/service"
)

func TestNewTaskRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := newTaskRepository(ctx, &config.AppConfig{TaskBackend: config.TaskBackendMemory}, nil)
		require.NoError(t, err)
		assert.IsType(t, &memory.TaskMemory{}, repo)
	})

	t.Run("mongo unreachable", func(t *testing.T) {
		repo, err := newTaskRepository(ctx, &config.AppConfig{TaskBackend: config.TaskBackendMongo}, nil)
		assert.ErrorIs(t, err, repository.ErrConnection)
		assert.Nil(t, repo)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := newTaskRepository(ctx, &config.AppConfig{TaskBackend: "sqlite"}, nil)
		assert.ErrorIs(t, err, config.ErrUnknownTaskBackend)
	})
}

func TestNewApp(t *testing.T) {
	cfg := &config.AppConfig{CORSAllowOrigins: "http://localhost:5173"}
	log := logger.New(io.Discard, time.UTC, slog.LevelInfo)
	reg := prometheus.NewRegistry()

	app, err := newApp(cfg, log, reg, handlers.Deps{
		Tasks: service.NewTaskService(memory.NewTaskMemory()),
	})
	require.NoError(t, err)

	t.Run("routes are mounted", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics exposed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `http_requests_total{method="GET",path="/tasks",status="200"} 1`)
	})

	t.Run("duplicate metrics registration fails", func(t *testing.T) {
		_, err := newApp(cfg, log, reg, handlers.Deps{})
		assert.Error(t, err)
	})
}

func TestNewApp_SwaggerHostFixedAtStartup(t *testing.T) {
	cfg := &config.AppConfig{AppHost: "api.internal:8080", CORSAllowOrigins: "*"}
	log := logger.New(io.Discard, time.UTC, slog.LevelInfo)

	app, err := newApp(cfg, log, prometheus.NewRegistry(), handlers.Deps{
		Tasks: service.NewTaskService(memory.NewTaskMemory()),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Host = "attacker.example"
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"host": "api.internal:8080"`)
	assert.NotContains(t, string(body), "attacker.example")
	assert.Equal(t, "api.internal:8080", docs.SwaggerInfo.Host)
}
