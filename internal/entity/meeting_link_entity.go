package entity

import (
	"time"

	"github.com/google/uuid"
)

// MeetingLink is a consumable capability to join a video room.
// IssuedCount never exceeds AllowedCount, Used only transitions
// false -> true, and rows are never deleted (kept for audit).
type MeetingLink struct {
	Id           uuid.UUID
	SessionId    uuid.UUID
	Creator      *string
	RoomName     string
	RoomSid      *string
	OneTime      bool
	AllowedCount int
	IssuedCount  int
	Used         bool
	LastIssuedAt *time.Time
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

// Expired is a time-derived state, never stored.
func (l *MeetingLink) Expired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return now.After(*l.ExpiresAt)
}
