package implementation

import (
	"context"
	"errors"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/mapper"
	"support-desk-be/internal/model"
	"support-desk-be/internal/repository/contract"
	"support-desk-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MeetingLinkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MeetingMapper
}

func NewMeetingLinkRepository(db *gorm.DB) contract.MeetingLinkRepository {
	return &MeetingLinkRepositoryImpl{
		db:     db,
		mapper: mapper.NewMeetingMapper(),
	}
}

func (r *MeetingLinkRepositoryImpl) Create(ctx context.Context, link *entity.MeetingLink) error {
	m := r.mapper.LinkToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.LinkToEntity(m)
	return nil
}

func (r *MeetingLinkRepositoryImpl) Update(ctx context.Context, link *entity.MeetingLink) error {
	m := r.mapper.LinkToModel(link)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.LinkToEntity(m)
	return nil
}

func (r *MeetingLinkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MeetingLink, error) {
	var m model.MeetingLink
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LinkToEntity(&m), nil
}

// FindOneForUpdate issues SELECT ... FOR UPDATE. Callers must hold an
// open unit-of-work transaction, otherwise the lock is released
// immediately and issuance loses its atomicity.
func (r *MeetingLinkRepositoryImpl) FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.MeetingLink, error) {
	var m model.MeetingLink
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LinkToEntity(&m), nil
}

func (r *MeetingLinkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeetingLink, error) {
	var models []model.MeetingLink
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*entity.MeetingLink, len(models))
	for i := range models {
		result[i] = r.mapper.LinkToEntity(&models[i])
	}
	return result, nil
}
