package mapper

import (
	"support-desk-be/internal/entity"
	"support-desk-be/internal/model"

	"gorm.io/datatypes"
)

type MeetingMapper struct{}

func NewMeetingMapper() *MeetingMapper {
	return &MeetingMapper{}
}

func (m *MeetingMapper) LinkToEntity(l *model.MeetingLink) *entity.MeetingLink {
	if l == nil {
		return nil
	}
	return &entity.MeetingLink{
		Id:           l.Id,
		SessionId:    l.SessionId,
		Creator:      l.Creator,
		RoomName:     l.RoomName,
		RoomSid:      l.RoomSid,
		OneTime:      l.OneTime,
		AllowedCount: l.AllowedCount,
		IssuedCount:  l.IssuedCount,
		Used:         l.Used,
		LastIssuedAt: l.LastIssuedAt,
		ExpiresAt:    l.ExpiresAt,
		CreatedAt:    l.CreatedAt,
	}
}

func (m *MeetingMapper) LinkToModel(l *entity.MeetingLink) *model.MeetingLink {
	if l == nil {
		return nil
	}
	return &model.MeetingLink{
		Id:           l.Id,
		SessionId:    l.SessionId,
		Creator:      l.Creator,
		RoomName:     l.RoomName,
		RoomSid:      l.RoomSid,
		OneTime:      l.OneTime,
		AllowedCount: l.AllowedCount,
		IssuedCount:  l.IssuedCount,
		Used:         l.Used,
		LastIssuedAt: l.LastIssuedAt,
		ExpiresAt:    l.ExpiresAt,
		CreatedAt:    l.CreatedAt,
	}
}

func (m *MeetingMapper) EventToEntity(e *model.MeetingEvent) *entity.MeetingEvent {
	if e == nil {
		return nil
	}
	return &entity.MeetingEvent{
		Id:            e.Id,
		Seq:           e.Seq,
		MeetingLinkId: e.MeetingLinkId,
		SessionId:     e.SessionId,
		EventType:     e.EventType,
		Identity:      e.Identity,
		Role:          e.Role,
		Metadata:      map[string]interface{}(e.Metadata),
		CreatedAt:     e.CreatedAt,
	}
}

func (m *MeetingMapper) EventToModel(e *entity.MeetingEvent) *model.MeetingEvent {
	if e == nil {
		return nil
	}
	var meta datatypes.JSONMap
	if e.Metadata != nil {
		meta = datatypes.JSONMap(e.Metadata)
	}
	return &model.MeetingEvent{
		Id:            e.Id,
		Seq:           e.Seq,
		MeetingLinkId: e.MeetingLinkId,
		SessionId:     e.SessionId,
		EventType:     e.EventType,
		Identity:      e.Identity,
		Role:          e.Role,
		Metadata:      meta,
		CreatedAt:     e.CreatedAt,
	}
}
