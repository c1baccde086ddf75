package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-be/internal/entity"
)

func TestTaskRepositoryMissingIsNilNil(t *testing.T) {
	repo := NewTaskRepository()

	task, err := repo.FindOne(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestTaskRepositoryStoresCopies(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()

	original := &entity.Task{
		Id:        uuid.New(),
		Title:     "Original",
		Priority:  entity.TaskPriorityLow,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, original))

	// Mutating the caller's struct must not leak into the repository.
	original.Title = "Mutated"

	stored, err := repo.FindOne(ctx, original.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Original", stored.Title)

	// And mutating a fetched struct must not leak back either.
	stored.Title = "Mutated again"
	again, err := repo.FindOne(ctx, original.Id)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestTaskRepositoryFindAllSorted(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()

	base := time.Now()
	ids := make([]uuid.UUID, 3)
	for i := 0; i < 3; i++ {
		ids[i] = uuid.New()
		require.NoError(t, repo.Create(ctx, &entity.Task{
			Id:        ids[i],
			Title:     "task",
			CreatedAt: base.Add(time.Duration(2-i) * time.Second),
		}))
	}

	tasks, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	// Oldest first.
	assert.Equal(t, ids[2], tasks[0].Id)
	assert.Equal(t, ids[0], tasks[2].Id)
}

func TestUserRepositoryEmailLookupIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{
		Id:    uuid.New(),
		Email: "Demo@Taskman.Local",
	}))

	user, err := repo.FindByEmail(ctx, "demo@taskman.local")
	require.NoError(t, err)
	require.NotNil(t, user)

	missing, err := repo.FindByEmail(ctx, "nobody@taskman.local")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
