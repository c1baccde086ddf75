package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/entity"
	"task-manager-be/internal/pkg/logger"
	"task-manager-be/internal/repository/contract"
)

var ErrTaskNotFound = errors.New("task not found")

// NotificationDelivery pushes user-facing notices to connected clients.
// The hub implements it; a nil delivery silently drops notices.
type NotificationDelivery interface {
	SendToSession(sessionID string, payload interface{})
}

type ITaskService interface {
	Create(ctx context.Context, sessionID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	Update(ctx context.Context, sessionID string, id uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, sessionID string, id uuid.UUID) error
	Show(ctx context.Context, id uuid.UUID) (*dto.TaskResponse, error)
	List(ctx context.Context) ([]*dto.TaskResponse, error)
}

type taskService struct {
	taskRepo contract.TaskRepository
	delivery NotificationDelivery
	log      logger.ILogger

	// notifyDelay simulates backend processing before a notification
	// arrives. Tests shrink it to keep runs fast.
	notifyDelayMin time.Duration
	notifyDelayMax time.Duration
}

func NewTaskService(taskRepo contract.TaskRepository, delivery NotificationDelivery, log logger.ILogger) ITaskService {
	return &taskService{
		taskRepo:       taskRepo,
		delivery:       delivery,
		log:            log,
		notifyDelayMin: 100 * time.Millisecond,
		notifyDelayMax: 500 * time.Millisecond,
	}
}

func (s *taskService) Create(ctx context.Context, sessionID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	now := time.Now()

	priority := entity.TaskPriorityMedium
	if req.Priority != "" {
		priority = entity.TaskPriority(req.Priority)
	}

	task := &entity.Task{
		Id:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.notify(sessionID, "task_created", fmt.Sprintf("Task '%s' created", task.Title))

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Update(ctx context.Context, sessionID string, id uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	completedNow := false
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = entity.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Completed != nil {
		completedNow = *req.Completed && !task.Completed
		task.Completed = *req.Completed
	}

	now := time.Now()
	task.UpdatedAt = &now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	if completedNow {
		s.notify(sessionID, "task_completed", fmt.Sprintf("Task '%s' completed", task.Title))
	}

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, sessionID string, id uuid.UUID) error {
	task, err := s.taskRepo.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(sessionID, "task_deleted", fmt.Sprintf("Task '%s' deleted", task.Title))
	return nil
}

func (s *taskService) Show(ctx context.Context, id uuid.UUID) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return dto.NewTaskResponse(task), nil
}

func (s *taskService) List(ctx context.Context) ([]*dto.TaskResponse, error) {
	tasks, err := s.taskRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, dto.NewTaskResponse(task))
	}
	return out, nil
}

// notify delivers a notification after a short random delay, mimicking an
// asynchronous backend. Fire and forget.
func (s *taskService) notify(sessionID, notifType, message string) {
	if s.delivery == nil {
		return
	}

	msg := &dto.NotificationMessage{
		Id:        uuid.New(),
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
	}

	delay := s.notifyDelayMin
	if span := s.notifyDelayMax - s.notifyDelayMin; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	go func() {
		time.Sleep(delay)
		s.delivery.SendToSession(sessionID, msg)
		s.log.Debug("task", "notification delivered", map[string]interface{}{
			"type":       notifType,
			"session_id": sessionID,
		})
	}()
}
