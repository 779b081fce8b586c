package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/repository/specification"
	"jenny-assistant-be/internal/repository/unitofwork"
	"jenny-assistant-be/pkg/assistant"

	"github.com/google/uuid"
)

type ITaskService interface {
	Create(ctx context.Context, userId string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	ListOpen(ctx context.Context, userId string, limit int) ([]*dto.TaskResponse, error)
	// Complete returns nil when the task does not exist for this user.
	Complete(ctx context.Context, userId string, id uuid.UUID) (*dto.TaskResponse, error)
	Delete(ctx context.Context, userId string, id uuid.UUID) (bool, error)
	// Reschedulable lists the pending reminders still due after now, for
	// rebuilding the in-memory schedule on startup.
	Reschedulable(ctx context.Context, now time.Time) ([]dto.PublishTaskCreatedMessage, error)
	IsPending(ctx context.Context, id uuid.UUID) (bool, error)
}

type taskService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewTaskService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService, log logger.ILogger) ITaskService {
	return &taskService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *taskService) Create(ctx context.Context, userId string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, assistant.ErrUserRequired
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	task := entity.Task{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      req.Title,
		Details:    req.Details,
		DueAt:      req.DueAt,
		Recurrence: req.Recurrence,
		Status:     entity.TaskStatusPending,
		CreatedAt:  time.Now(),
	}
	if err := uow.TaskRepository().Create(ctx, &task); err != nil {
		return nil, err
	}

	// Only dated tasks become reminders
	if task.DueAt != nil && s.publisherService != nil {
		payload, err := json.Marshal(dto.PublishTaskCreatedMessage{
			TaskId:     task.Id,
			UserId:     task.UserId,
			Title:      task.Title,
			DueAt:      task.DueAt,
			Recurrence: task.Recurrence,
		})
		if err == nil {
			err = s.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("TaskService", "Failed to publish task created", map[string]interface{}{
				"task_id": task.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	return toTaskResponse(&task), nil
}

func (s *taskService) ListOpen(ctx context.Context, userId string, limit int) ([]*dto.TaskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tasks, err := uow.TaskRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByStatus{Status: entity.TaskStatusPending},
		specification.OrderBy{Field: "due_at"},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, toTaskResponse(t))
	}
	return res, nil
}

func (s *taskService) Complete(ctx context.Context, userId string, id uuid.UUID) (*dto.TaskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	task, err := uow.TaskRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByID{ID: id},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	now := time.Now()
	task.Status = entity.TaskStatusCompleted
	task.CompletedAt = &now
	task.UpdatedAt = &now
	if err := uow.TaskRepository().Update(ctx, task); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, userId string, id uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	task, err := uow.TaskRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByID{ID: id},
	)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}
	if err := uow.TaskRepository().Delete(ctx, task.Id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *taskService) Reschedulable(ctx context.Context, now time.Time) ([]dto.PublishTaskCreatedMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tasks, err := uow.TaskRepository().FindAll(ctx,
		specification.ByStatus{Status: entity.TaskStatusPending},
		specification.Reschedulable{At: now},
		specification.OrderBy{Field: "due_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PublishTaskCreatedMessage, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, dto.PublishTaskCreatedMessage{
			TaskId:     t.Id,
			UserId:     t.UserId,
			Title:      t.Title,
			DueAt:      t.DueAt,
			Recurrence: t.Recurrence,
		})
	}
	return out, nil
}

func (s *taskService) IsPending(ctx context.Context, id uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	task, err := uow.TaskRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return false, err
	}
	return task != nil && task.Status == entity.TaskStatusPending, nil
}

func toTaskResponse(t *entity.Task) *dto.TaskResponse {
	return &dto.TaskResponse{
		Id:          t.Id,
		Title:       t.Title,
		Details:     t.Details,
		DueAt:       t.DueAt,
		Recurrence:  t.Recurrence,
		Status:      t.Status,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}
