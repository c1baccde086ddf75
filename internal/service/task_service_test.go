package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/repository/memory"
)

type capturingDelivery struct {
	received chan interface{}
}

func newCapturingDelivery() *capturingDelivery {
	return &capturingDelivery{received: make(chan interface{}, 16)}
}

func (d *capturingDelivery) SendToSession(_ string, payload interface{}) {
	d.received <- payload
}

func newTaskFixture(t *testing.T) (ITaskService, *capturingDelivery) {
	t.Helper()
	repo := memory.NewTaskRepository()
	delivery := newCapturingDelivery()

	svc := NewTaskService(repo, delivery, nopLogger{}).(*taskService)
	svc.notifyDelayMin = time.Millisecond
	svc.notifyDelayMax = 2 * time.Millisecond

	return svc, delivery
}

func awaitNotification(t *testing.T, d *capturingDelivery) *dto.NotificationMessage {
	t.Helper()
	select {
	case payload := <-d.received:
		msg, ok := payload.(*dto.NotificationMessage)
		require.True(t, ok)
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestCreateTaskNotifies(t *testing.T) {
	svc, delivery := newTaskFixture(t)

	res, err := svc.Create(context.Background(), "sess-1", &dto.CreateTaskRequest{
		Title:       "Write report",
		Description: "Quarterly numbers",
	})
	require.NoError(t, err)
	assert.Equal(t, "Write report", res.Title)
	assert.Equal(t, "medium", res.Priority)
	assert.False(t, res.Completed)

	msg := awaitNotification(t, delivery)
	assert.Equal(t, "task_created", msg.Type)
	assert.Contains(t, msg.Message, "Write report")
}

func TestCompleteTaskNotifiesOnce(t *testing.T) {
	svc, delivery := newTaskFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, "sess-1", &dto.CreateTaskRequest{Title: "Pay rent"})
	require.NoError(t, err)
	awaitNotification(t, delivery) // creation notice

	done := true
	updated, err := svc.Update(ctx, "sess-1", res.Id, &dto.UpdateTaskRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	msg := awaitNotification(t, delivery)
	assert.Equal(t, "task_completed", msg.Type)

	// Re-completing an already complete task is not news.
	_, err = svc.Update(ctx, "sess-1", res.Id, &dto.UpdateTaskRequest{Completed: &done})
	require.NoError(t, err)

	select {
	case extra := <-delivery.received:
		t.Fatalf("unexpected notification: %v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUpdateMissingTask(t *testing.T) {
	svc, _ := newTaskFixture(t)

	title := "anything"
	_, err := svc.Update(context.Background(), "sess-1", uuid.New(), &dto.UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	svc, delivery := newTaskFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, "sess-1", &dto.CreateTaskRequest{Title: "Throwaway"})
	require.NoError(t, err)
	awaitNotification(t, delivery)

	require.NoError(t, svc.Delete(ctx, "sess-1", res.Id))

	_, err = svc.Show(ctx, res.Id)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	msg := awaitNotification(t, delivery)
	assert.Equal(t, "task_deleted", msg.Type)
}

func TestListOrdersByCreation(t *testing.T) {
	svc, delivery := newTaskFixture(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, "sess-1", &dto.CreateTaskRequest{Title: title})
		require.NoError(t, err)
		awaitNotification(t, delivery)
	}

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "third", tasks[2].Title)
}
