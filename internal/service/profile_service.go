package service

import (
	"context"
	"time"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/repository/specification"
	"jenny-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IProfileService interface {
	SavePreference(ctx context.Context, userId, label, value string) error
	// Preferences returns the most recently updated preferences first.
	Preferences(ctx context.Context, userId string, limit int) ([]*entity.ProfilePreference, error)
	// Preference returns nil when the label was never set.
	Preference(ctx context.Context, userId, label string) (*entity.ProfilePreference, error)
}

type profileService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewProfileService(uowFactory unitofwork.RepositoryFactory) IProfileService {
	return &profileService{uowFactory: uowFactory}
}

func (s *profileService) SavePreference(ctx context.Context, userId, label, value string) error {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProfileRepository().Upsert(ctx, &entity.ProfilePreference{
		Id:        uuid.New(),
		UserId:    userId,
		Label:     label,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: &now,
	})
}

func (s *profileService) Preferences(ctx context.Context, userId string, limit int) ([]*entity.ProfilePreference, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProfileRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (s *profileService) Preference(ctx context.Context, userId, label string) (*entity.ProfilePreference, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProfileRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByLabel{Label: label},
	)
}
