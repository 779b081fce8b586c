package entity

import (
	"time"

	"github.com/google/uuid"
)

// Interaction is one audited query/reply pair.
type Interaction struct {
	Id         uuid.UUID
	Kind       string
	UserId     string
	Agent      string
	Query      string
	Reply      string
	Properties map[string]interface{}
	CreatedAt  time.Time
}
