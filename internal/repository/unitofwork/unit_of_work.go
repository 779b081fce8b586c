package unitofwork

import (
	"context"

	"jenny-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TaskRepository() contract.TaskRepository
	ProfileRepository() contract.ProfileRepository
	InteractionRepository() contract.InteractionRepository
	CalendarConnectionRepository() contract.CalendarConnectionRepository
}
