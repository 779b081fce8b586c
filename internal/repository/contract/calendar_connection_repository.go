package contract

import (
	"context"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/repository/specification"
)

type CalendarConnectionRepository interface {
	Upsert(ctx context.Context, conn *entity.CalendarConnection) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CalendarConnection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CalendarConnection, error)
	Delete(ctx context.Context, userId, provider string) error
}
