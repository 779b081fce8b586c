package mapper

import (
	"time"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/model"
)

type ProfileMapper struct{}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

func (m *ProfileMapper) ToEntity(p *model.ProfilePreference) *entity.ProfilePreference {
	if p == nil {
		return nil
	}
	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		u := p.UpdatedAt
		updatedAt = &u
	}
	return &entity.ProfilePreference{
		Id:        p.Id,
		UserId:    p.UserId,
		Label:     p.Label,
		Value:     p.Value,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ProfileMapper) ToModel(p *entity.ProfilePreference) *model.ProfilePreference {
	if p == nil {
		return nil
	}
	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}
	return &model.ProfilePreference{
		Id:        p.Id,
		UserId:    p.UserId,
		Label:     p.Label,
		Value:     p.Value,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}
