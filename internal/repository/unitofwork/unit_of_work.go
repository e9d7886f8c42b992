package unitofwork

import (
	"context"

	"support-desk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	MessageRepository() contract.MessageRepository
	MeetingLinkRepository() contract.MeetingLinkRepository
	MeetingEventRepository() contract.MeetingEventRepository
}
