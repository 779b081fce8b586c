package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

type Task struct {
	Id          uuid.UUID
	UserId      string
	Title       string
	Details     string
	DueAt       *time.Time
	Recurrence  string
	Status      string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
