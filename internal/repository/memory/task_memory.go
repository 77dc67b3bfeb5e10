package memory

import (
	"context"
	"sync"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// FixtureTasks are the rows every new TaskMemory starts with.
func FixtureTasks() []model.Task {
	return []model.Task{
		{ID: 1, Name: "My first task", Status: false},
		{ID: 2, Name: "My second task", Status: false},
		{ID: 3, Name: "My third task", Status: false},
	}
}

// TaskMemory is an in-process implementation of repository.TaskRepository.
// It is safe for concurrent use; nothing is persisted.
type TaskMemory struct {
	mu    sync.RWMutex
	tasks []model.Task
}

// NewTaskMemory creates a TaskMemory seeded with FixtureTasks.
func NewTaskMemory() *TaskMemory {
	return &TaskMemory{tasks: FixtureTasks()}
}

var _ repository.TaskRepository = (*TaskMemory)(nil)

// List returns a snapshot of all tasks in insertion order.
func (r *TaskMemory) List(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

// Add appends a task.
func (r *TaskMemory) Add(ctx context.Context, task model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = append(r.tasks, task)
	return nil
}

// FindByID returns a copy of the first task with the given id.
func (r *TaskMemory) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		t := r.tasks[i]
		return &t, nil
	}
	return nil, nil
}

// Toggle flips the status of the first task with the given id.
func (r *TaskMemory) Toggle(ctx context.Context, id int64) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	r.tasks[i].Status = !r.tasks[i].Status
	t := r.tasks[i]
	return &t, nil
}

// indexOf must be called with mu held.
func (r *TaskMemory) indexOf(id int64) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
