package mapper

import (
	"time"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/model"
)

type CalendarMapper struct{}

func NewCalendarMapper() *CalendarMapper {
	return &CalendarMapper{}
}

func (m *CalendarMapper) ToEntity(c *model.CalendarConnection) *entity.CalendarConnection {
	if c == nil {
		return nil
	}
	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		u := c.UpdatedAt
		updatedAt = &u
	}
	return &entity.CalendarConnection{
		Id:           c.Id,
		UserId:       c.UserId,
		Provider:     c.Provider,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *CalendarMapper) ToModel(c *entity.CalendarConnection) *model.CalendarConnection {
	if c == nil {
		return nil
	}
	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}
	return &model.CalendarConnection{
		Id:           c.Id,
		UserId:       c.UserId,
		Provider:     c.Provider,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
