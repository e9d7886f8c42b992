package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters rows belonging to one chat session
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// SentAfter filters messages strictly newer than a point in time
type SentAfter struct {
	Time time.Time
}

func (s SentAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sent_at > ?", s.Time)
}

// OrderBySentAt orders messages chronologically
type OrderBySentAt struct{}

func (s OrderBySentAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("sent_at ASC")
}
