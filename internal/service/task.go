package service

import (
	"context"
	"log/slog"
	"strings"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// TaskService defines the task use cases.
type TaskService interface {
	// List returns every task.
	List(ctx context.Context) ([]model.Task, error)

	// Add stores a task and returns the updated list.
	Add(ctx context.Context, task model.Task) ([]model.Task, error)

	// Get returns a single task.
	Get(ctx context.Context, id int64) (*model.Task, error)

	// Toggle flips a task's status and returns the stored result.
	Toggle(ctx context.Context, id int64) (*model.Task, error)
}

// TaskOption customizes a TaskService.
type TaskOption func(*taskService)

// WithTaskLogger sets the logger used for failures that do not fail the call.
func WithTaskLogger(log *slog.Logger) TaskOption {
	return func(s *taskService) {
		if log != nil {
			s.log = log
		}
	}
}

type taskService struct {
	repo repository.TaskRepository
	log  *slog.Logger
}

// NewTaskService constructs a TaskService on top of any task backend.
func NewTaskService(repo repository.TaskRepository, opts ...TaskOption) TaskService {
	s := &taskService{repo: repo, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *taskService) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

func (s *taskService) Add(ctx context.Context, task model.Task) ([]model.Task, error) {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" {
		return nil, ErrNameRequired
	}
	if err := s.repo.Add(ctx, task); err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		// The task is stored; a retry would insert it twice.
		s.log.WarnContext(ctx, "task_list_after_add_failed", "task_id", task.ID, "error", err.Error())
		return []model.Task{task}, nil
	}
	return all, nil
}

func (s *taskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("task")
	}
	return task, nil
}

func (s *taskService) Toggle(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("task")
	}
	return task, nil
}
