package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once created. SentAt is server-assigned at
// persist time and non-decreasing within a session.
type Message struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Sender    string
	Role      string
	Text      string
	SentAt    time.Time
}
