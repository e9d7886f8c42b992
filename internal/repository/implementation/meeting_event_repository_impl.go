package implementation

import (
	"context"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/mapper"
	"support-desk-be/internal/model"
	"support-desk-be/internal/repository/contract"
	"support-desk-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MeetingEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MeetingMapper
}

func NewMeetingEventRepository(db *gorm.DB) contract.MeetingEventRepository {
	return &MeetingEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewMeetingMapper(),
	}
}

func (r *MeetingEventRepositoryImpl) Create(ctx context.Context, event *entity.MeetingEvent) error {
	m := r.mapper.EventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.EventToEntity(m)
	return nil
}

func (r *MeetingEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeetingEvent, error) {
	var models []model.MeetingEvent
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*entity.MeetingEvent, len(models))
	for i := range models {
		result[i] = r.mapper.EventToEntity(&models[i])
	}
	return result, nil
}
