package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Interaction struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind       string         `gorm:"type:varchar(64);not null;index"`
	UserId     string         `gorm:"type:text;not null;index"`
	Agent      string         `gorm:"type:varchar(64);index"`
	Query      string         `gorm:"type:text"`
	Reply      string         `gorm:"type:text"`
	Properties datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (Interaction) TableName() string {
	return "interactions"
}
