package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMeetingLinkRequest struct {
	Creator      *string    `json:"creator"`
	RoomName     string     `json:"room_name"`
	OneTime      bool       `json:"one_time"`
	AllowedCount int        `json:"allowed_count" validate:"omitempty,min=1"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

type MeetingLinkResponse struct {
	Id           uuid.UUID  `json:"id"`
	SessionId    uuid.UUID  `json:"session_id"`
	Creator      *string    `json:"creator"`
	RoomName     string     `json:"room_name"`
	PublicURL    string     `json:"public_url"`
	OneTime      bool       `json:"one_time"`
	AllowedCount int        `json:"allowed_count"`
	IssuedCount  int        `json:"issued_count"`
	Used         bool       `json:"used"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ValidateMeetingLinkResponse struct {
	Valid bool `json:"valid"`
}

type IssueCredentialRequest struct {
	Identity string `json:"identity" validate:"required"`
}

type IssueCredentialResponse struct {
	Token       string     `json:"token"`
	RoomName    string     `json:"room_name"`
	Identity    string     `json:"identity"`
	IssuedCount int        `json:"issued_count"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type RecordMeetingEventRequest struct {
	EventType string                 `json:"event_type" validate:"required"`
	Identity  *string                `json:"identity"`
	Role      *string                `json:"role"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// MeetingEventMessage is the intake pipeline payload published to the
// in-process event bus between the controller and the persist consumer.
type MeetingEventMessage struct {
	MeetingLinkId uuid.UUID              `json:"meeting_link_id"`
	SessionId     uuid.UUID              `json:"session_id"`
	EventType     string                 `json:"event_type"`
	Identity      *string                `json:"identity"`
	Role          *string                `json:"role"`
	Metadata      map[string]interface{} `json:"metadata"`
	ReceivedAt    time.Time              `json:"received_at"`
}
