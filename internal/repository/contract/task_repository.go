package contract

import (
	"context"

	"github.com/google/uuid"

	"task-manager-be/internal/entity"
)

// TaskRepository is the thin CRUD source/sink for task records. The search
// engine never talks to it directly; it receives copies of the collection.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindOne returns (nil, nil) when the task does not exist.
	FindOne(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	FindAll(ctx context.Context) ([]*entity.Task, error)
}
