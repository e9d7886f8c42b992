package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventJoined             = "joined"
	EventLeft               = "left"
	EventMeetingStarted     = "meeting_started"
	EventMeetingEnded       = "meeting_ended"
	EventScreenShareStarted = "screen_share_started"
	EventScreenShareStopped = "screen_share_stopped"
)

// ValidEventType reports whether t is a known meeting lifecycle event.
func ValidEventType(t string) bool {
	switch t {
	case EventJoined, EventLeft, EventMeetingStarted, EventMeetingEnded,
		EventScreenShareStarted, EventScreenShareStopped:
		return true
	}
	return false
}

// MeetingEvent is append-only. The canonical ordering is CreatedAt
// ascending with Seq breaking ties in insertion order.
type MeetingEvent struct {
	Id            uuid.UUID
	Seq           uint
	MeetingLinkId uuid.UUID
	SessionId     uuid.UUID
	EventType     string
	Identity      *string
	Role          *string
	Metadata      map[string]interface{}
	CreatedAt     time.Time
}
