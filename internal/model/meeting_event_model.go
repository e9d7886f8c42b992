package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MeetingEvent struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq           uint              `gorm:"autoIncrement;uniqueIndex"` // tie-breaker for equal timestamps
	MeetingLinkId uuid.UUID         `gorm:"type:uuid;not null;index"`
	SessionId     uuid.UUID         `gorm:"type:uuid;not null;index"`
	EventType     string            `gorm:"type:varchar(64);not null"`
	Identity      *string           `gorm:"type:varchar(150)"`
	Role          *string           `gorm:"type:varchar(50)"`
	Metadata      datatypes.JSONMap ``
	CreatedAt     time.Time         `gorm:"index"`
}

func (MeetingEvent) TableName() string {
	return "meeting_events"
}
