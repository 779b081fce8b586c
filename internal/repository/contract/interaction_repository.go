package contract

import (
	"context"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/repository/specification"
)

type InteractionRepository interface {
	Create(ctx context.Context, interaction *entity.Interaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error)
}
