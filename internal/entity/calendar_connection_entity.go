package entity

import (
	"time"

	"github.com/google/uuid"
)

type CalendarConnection struct {
	Id           uuid.UUID
	UserId       string
	Provider     string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
