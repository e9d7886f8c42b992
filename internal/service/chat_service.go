package service

import (
	"context"
	"strings"
	"time"

	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// MessageBroadcaster pushes a persisted message into the session's live
// group. Implemented by the websocket hub; nil-safe no-op when nobody
// is connected.
type MessageBroadcaster interface {
	BroadcastMessage(sessionID uuid.UUID, msg *entity.Message)
}

type IChatService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	ListMessages(ctx context.Context, sessionID uuid.UUID, since *time.Time) ([]*dto.MessageResponse, error)
	PostMessage(ctx context.Context, sessionID uuid.UUID, sender, role, text string) (*dto.MessageResponse, error)

	// SaveMessage is the persist-only path shared with the websocket
	// hub (which does its own broadcast).
	SaveMessage(ctx context.Context, sessionID uuid.UUID, sender, role, text string) (*entity.Message, error)

	// SetBroadcaster wires the live-group push after construction; the
	// hub itself is built on top of this service's SaveMessage.
	SetBroadcaster(b MessageBroadcaster)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	broadcaster MessageBroadcaster
}

func NewChatService(uowFactory unitofwork.RepositoryFactory) IChatService {
	return &chatService{
		uowFactory: uowFactory,
	}
}

func (s *chatService) SetBroadcaster(b MessageBroadcaster) {
	s.broadcaster = b
}

func (s *chatService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.Session{
		Id:         uuid.New(),
		Title:      req.Title,
		AgentId:    req.AgentId,
		CustomerId: req.CustomerId,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return sessionToResponse(&session), nil
}

func (s *chatService) GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("session does not exist")
	}

	return sessionToResponse(session), nil
}

func (s *chatService) ListMessages(ctx context.Context, sessionID uuid.UUID, since *time.Time) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("session does not exist")
	}

	specs := []specification.Specification{
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBySentAt{},
	}
	if since != nil {
		specs = append(specs, specification.SentAfter{Time: *since})
	}

	messages, err := uow.MessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MessageResponse, len(messages))
	for i, msg := range messages {
		result[i] = messageToResponse(msg)
	}
	return result, nil
}

// PostMessage is the REST path: persist, then push into the live group.
func (s *chatService) PostMessage(ctx context.Context, sessionID uuid.UUID, sender, role, text string) (*dto.MessageResponse, error) {
	msg, err := s.SaveMessage(ctx, sessionID, sender, role, text)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(sessionID, msg)
	}

	return messageToResponse(msg), nil
}

func (s *chatService) SaveMessage(ctx context.Context, sessionID uuid.UUID, sender, role, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, serverutils.InvalidInput(serverutils.CodeEmptyText, "message text must not be empty")
	}
	if sender == "" {
		sender = "anonymous"
	}
	if !entity.ValidRole(role) {
		role = entity.RoleCustomer
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("session does not exist")
	}

	msg := entity.Message{
		Id:        uuid.New(),
		SessionId: sessionID,
		Sender:    sender,
		Role:      role,
		Text:      text,
	}
	if err := uow.MessageRepository().Create(ctx, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

func sessionToResponse(s *entity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:          s.Id,
		Title:       s.Title,
		AgentId:     s.AgentId,
		CustomerId:  s.CustomerId,
		MeetingLink: s.MeetingLink,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

func messageToResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        m.Id,
		SessionId: m.SessionId,
		Sender:    m.Sender,
		Role:      m.Role,
		Text:      m.Text,
		SentAt:    m.SentAt,
	}
}
