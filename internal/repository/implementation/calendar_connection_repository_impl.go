package implementation

import (
	"context"
	"errors"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/mapper"
	"jenny-assistant-be/internal/model"
	"jenny-assistant-be/internal/repository/contract"
	"jenny-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CalendarConnectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CalendarMapper
}

func NewCalendarConnectionRepository(db *gorm.DB) contract.CalendarConnectionRepository {
	return &CalendarConnectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCalendarMapper(),
	}
}

func (r *CalendarConnectionRepositoryImpl) Upsert(ctx context.Context, conn *entity.CalendarConnection) error {
	m := r.mapper.ToModel(conn)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*conn = *r.mapper.ToEntity(m)
	return nil
}

func (r *CalendarConnectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CalendarConnection, error) {
	var m model.CalendarConnection
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CalendarConnectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CalendarConnection, error) {
	var models []*model.CalendarConnection
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.CalendarConnection, len(models))
	for i, m := range models {
		out[i] = r.mapper.ToEntity(m)
	}
	return out, nil
}

func (r *CalendarConnectionRepositoryImpl) Delete(ctx context.Context, userId, provider string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userId, provider).
		Delete(&model.CalendarConnection{}).Error
}
