package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProfilePreference is a labeled fact about the user ("drink" -> "coffee").
type ProfilePreference struct {
	Id        uuid.UUID
	UserId    string
	Label     string
	Value     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
