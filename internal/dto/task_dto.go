package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title      string     `json:"title" validate:"required"`
	Details    string     `json:"details"`
	DueAt      *time.Time `json:"due_at"`
	Recurrence string     `json:"recurrence" validate:"omitempty,oneof=daily weekly monthly"`
}

type TaskResponse struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Details     string     `json:"details,omitempty"`
	DueAt       *time.Time `json:"due_at"`
	Recurrence  string     `json:"recurrence,omitempty"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PublishTaskCreatedMessage is the event bus payload consumed by the reminder service.
type PublishTaskCreatedMessage struct {
	TaskId     uuid.UUID  `json:"task_id"`
	UserId     string     `json:"user_id"`
	Title      string     `json:"title"`
	DueAt      *time.Time `json:"due_at"`
	Recurrence string     `json:"recurrence,omitempty"`
}
