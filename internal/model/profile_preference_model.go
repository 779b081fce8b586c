package model

import (
	"time"

	"github.com/google/uuid"
)

type ProfilePreference struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string    `gorm:"type:text;not null;uniqueIndex:idx_profile_user_label"`
	Label     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_profile_user_label"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProfilePreference) TableName() string {
	return "profile_preferences"
}
