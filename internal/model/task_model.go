package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      string         `gorm:"type:text;not null;index"`
	Title       string         `gorm:"type:text;not null"`
	Details     string         `gorm:"type:text"`
	DueAt       *time.Time     `gorm:"index"`
	Recurrence  string         `gorm:"type:varchar(16)"`
	Status      string         `gorm:"type:varchar(16);not null;default:'pending';index"`
	CompletedAt *time.Time
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Task) TableName() string {
	return "tasks"
}
