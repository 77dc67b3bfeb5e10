package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskapi/internal/model"
	"taskapi/internal/repository"
	"taskapi/internal/repository/memory"
	"taskapi/internal/service"
	serviceMocks "taskapi/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type tasksBody struct {
	Tasks []model.Task `json:"tasks"`
}

type taskBody struct {
	Task model.Task `json:"task"`
}

func TestTaskRoutes_MemoryBackend(t *testing.T) {
	app := newTestApp(nil)
	RegisterRoutes(app, Deps{Tasks: service.NewTaskService(memory.NewTaskMemory())})

	t.Run("list fixtures", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/tasks", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body tasksBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, memory.FixtureTasks(), body.Tasks)
	})

	t.Run("add appends", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/tasks", model.Task{ID: 4, Name: "x", Status: true})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var body tasksBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Tasks, 4)
		assert.Equal(t, model.Task{ID: 4, Name: "x", Status: true}, body.Tasks[3])
	})

	t.Run("toggle with trailing slash persists", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/tasks/1/", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body taskBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Task.Status)

		resp = doRequest(t, app, http.MethodGet, "/tasks/1", nil)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Task.Status)
	})

	t.Run("get third", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/tasks/3", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body taskBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, model.Task{ID: 3, Name: "My third task", Status: false}, body.Task)
	})

	t.Run("toggle absent", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/tasks/999/", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "task not found", body.Error.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/tasks/abc", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("negative id is absent, not invalid", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/tasks/-1", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("add zero id", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/tasks", model.Task{ID: 0, Name: "zeroth"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = doRequest(t, app, http.MethodGet, "/tasks/0", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body taskBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "zeroth", body.Task.Name)
	})

	t.Run("blank name", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/tasks", model.Task{ID: 5, Name: " "})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestListTasks_BackendFailure(t *testing.T) {
	mockSvc := new(serviceMocks.MockTaskService)
	app := newTestApp(nil)
	app.Get("/tasks", ListTasks(mockSvc))

	mockSvc.On("List", mock.Anything).Return(nil, repository.ErrTransport).Once()

	resp := doRequest(t, app, http.MethodGet, "/tasks", nil)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "dependency unavailable", decodeError(t, resp).Error.Message)
	mockSvc.AssertExpectations(t)
}
