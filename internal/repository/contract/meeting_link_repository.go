package contract

import (
	"context"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MeetingLinkRepository interface {
	Create(ctx context.Context, link *entity.MeetingLink) error
	Update(ctx context.Context, link *entity.MeetingLink) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MeetingLink, error)
	// FindOneForUpdate takes a row-level lock on the link. Only valid
	// inside a unit-of-work transaction; the issuance critical section
	// depends on it.
	FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.MeetingLink, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeetingLink, error)
}
