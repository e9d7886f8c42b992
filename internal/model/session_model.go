package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `gorm:"type:varchar(255)"`
	AgentId     *string   `gorm:"type:varchar(150)"`
	CustomerId  *string   `gorm:"type:varchar(150)"`
	MeetingLink *string   `gorm:"type:varchar(1024)"` // denormalized public URL of the latest link
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
