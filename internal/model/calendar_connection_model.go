package model

import (
	"time"

	"github.com/google/uuid"
)

type CalendarConnection struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       string    `gorm:"type:text;not null;uniqueIndex:idx_calendar_user_provider"`
	Provider     string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_calendar_user_provider"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text"`
	TokenType    string    `gorm:"type:varchar(32)"`
	Expiry       *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}
