package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"task-manager-be/internal/entity"
)

// TaskRepository is the in-memory document store behind the CRUD surface.
// The collection is small by design; search always runs a linear scan over a
// copy of it, so there is no index to maintain here.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*entity.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[uuid.UUID]*entity.Task)}
}

func (r *TaskRepository) Create(_ context.Context, task *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *task
	r.tasks[task.Id] = &stored
	return nil
}

func (r *TaskRepository) Update(_ context.Context, task *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *task
	r.tasks[task.Id] = &stored
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) FindOne(_ context.Context, id uuid.UUID) (*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	out := *task
	return &out, nil
}

// FindAll returns copies ordered by creation time, oldest first, so callers
// see a stable baseline order before any relevance sort.
func (r *TaskRepository) FindAll(_ context.Context) ([]*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		t := *task
		out = append(out, &t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
