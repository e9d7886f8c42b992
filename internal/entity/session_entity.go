package entity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a message sender or meeting participant can carry.
const (
	RoleAgent    = "agent"
	RoleCustomer = "customer"
	RoleSystem   = "system"
)

// ValidRole reports whether role is one of the known sender roles.
func ValidRole(role string) bool {
	return role == RoleAgent || role == RoleCustomer || role == RoleSystem
}

type Session struct {
	Id          uuid.UUID
	Title       string
	AgentId     *string
	CustomerId  *string
	MeetingLink *string
	IsActive    bool
	CreatedAt   time.Time
}
