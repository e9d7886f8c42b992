package model

import (
	"time"

	"github.com/google/uuid"
)

type MeetingLink struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Creator      *string    `gorm:"type:varchar(150)"`
	RoomName     string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	RoomSid      *string    `gorm:"type:varchar(64)"`
	OneTime      bool       `gorm:"not null;default:false"`
	AllowedCount int        `gorm:"not null;default:1"`
	IssuedCount  int        `gorm:"not null;default:0"`
	Used         bool       `gorm:"not null;default:false"`
	LastIssuedAt *time.Time ``
	ExpiresAt    *time.Time ``
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
}

func (MeetingLink) TableName() string {
	return "meeting_links"
}
