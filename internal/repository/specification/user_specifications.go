package specification

import (
	"gorm.io/gorm"
)

// UserOwnedBy scopes a query to the rows of one assistant user.
type UserOwnedBy struct {
	UserID string
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}
