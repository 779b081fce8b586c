package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// Reschedulable matches dated tasks whose reminder can still fire after At:
// a future due date, or any recurring task.
type Reschedulable struct {
	At time.Time
}

func (s Reschedulable) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_at IS NOT NULL AND (due_at > ? OR recurrence <> '')", s.At)
}
