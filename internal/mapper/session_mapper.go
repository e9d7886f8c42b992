package mapper

import (
	"support-desk-be/internal/entity"
	"support-desk-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:          s.Id,
		Title:       s.Title,
		AgentId:     s.AgentId,
		CustomerId:  s.CustomerId,
		MeetingLink: s.MeetingLink,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:          s.Id,
		Title:       s.Title,
		AgentId:     s.AgentId,
		CustomerId:  s.CustomerId,
		MeetingLink: s.MeetingLink,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *SessionMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Sender:    msg.Sender,
		Role:      msg.Role,
		Text:      msg.Text,
		SentAt:    msg.SentAt,
	}
}

func (m *SessionMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Sender:    msg.Sender,
		Role:      msg.Role,
		Text:      msg.Text,
		SentAt:    msg.SentAt,
	}
}
