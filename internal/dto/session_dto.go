package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title      string  `json:"title"`
	AgentId    *string `json:"agent_id"`
	CustomerId *string `json:"customer_id"`
}

type SessionResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	AgentId     *string   `json:"agent_id"`
	CustomerId  *string   `json:"customer_id"`
	MeetingLink *string   `json:"meeting_link"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type PostMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Sender    string    `json:"sender"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
}

type PresenceResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Online    []string  `json:"online"`
}
