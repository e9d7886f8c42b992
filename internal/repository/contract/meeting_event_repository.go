package contract

import (
	"context"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/specification"
)

type MeetingEventRepository interface {
	Create(ctx context.Context, event *entity.MeetingEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeetingEvent, error)
}
