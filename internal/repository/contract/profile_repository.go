package contract

import (
	"context"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/repository/specification"
)

type ProfileRepository interface {
	// Upsert inserts or replaces the value for (user, label).
	Upsert(ctx context.Context, pref *entity.ProfilePreference) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProfilePreference, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProfilePreference, error)
}
