package service

import (
	"context"
	"fmt"
	"time"

	"support-desk-be/internal/config"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"
	"support-desk-be/pkg/events"
	pktNats "support-desk-be/pkg/nats"
	"support-desk-be/pkg/video"

	"github.com/google/uuid"
)

// MeetingNotifier relays a successful issuance into the live session
// group. Implemented by the websocket hub. Strictly best-effort: the
// hub's no-group case is a silent no-op and the service never lets a
// notify failure surface.
type MeetingNotifier interface {
	NotifyMeetingStarted(sessionID, linkID uuid.UUID)
}

type IMeetingService interface {
	CreateLink(ctx context.Context, sessionID uuid.UUID, req *dto.CreateMeetingLinkRequest) (*dto.MeetingLinkResponse, error)
	Validate(ctx context.Context, linkID uuid.UUID) (*dto.ValidateMeetingLinkResponse, error)
	Issue(ctx context.Context, linkID uuid.UUID, identity string) (*dto.IssueCredentialResponse, error)
}

type meetingService struct {
	uowFactory unitofwork.RepositoryFactory
	cfg        config.MeetingConfig
	provider   video.CredentialProvider
	notifier   MeetingNotifier
	publisher  *pktNats.Publisher
	origin     string
	locks      *keyedMutex
	logger     logger.ILogger

	// now is swappable for deterministic expiry tests.
	now func() time.Time
}

func NewMeetingService(
	uowFactory unitofwork.RepositoryFactory,
	cfg config.MeetingConfig,
	provider video.CredentialProvider,
	notifier MeetingNotifier,
	publisher *pktNats.Publisher,
	origin string,
	log logger.ILogger,
) IMeetingService {
	return &meetingService{
		uowFactory: uowFactory,
		cfg:        cfg,
		provider:   provider,
		notifier:   notifier,
		publisher:  publisher,
		origin:     origin,
		locks:      newKeyedMutex(),
		logger:     log,
		now:        time.Now,
	}
}

func (s *meetingService) CreateLink(ctx context.Context, sessionID uuid.UUID, req *dto.CreateMeetingLinkRequest) (*dto.MeetingLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("session does not exist")
	}

	roomName := req.RoomName
	if roomName == "" {
		roomName = fmt.Sprintf("%s-%s", s.cfg.RoomPrefix, uuid.NewString())
	}
	allowedCount := req.AllowedCount
	if allowedCount <= 0 {
		allowedCount = s.cfg.DefaultAllowedCount
	}

	link := entity.MeetingLink{
		Id:           uuid.New(),
		SessionId:    sessionID,
		Creator:      req.Creator,
		RoomName:     roomName,
		OneTime:      req.OneTime,
		AllowedCount: allowedCount,
		ExpiresAt:    req.ExpiresAt,
		CreatedAt:    s.now(),
	}
	if err := uow.MeetingLinkRepository().Create(ctx, &link); err != nil {
		return nil, err
	}

	// Denormalized convenience: the session row shows the newest link's
	// public URL. Not authoritative, so a failed update only warns.
	publicURL := s.publicURL(link.Id)
	session.MeetingLink = &publicURL
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		s.logger.Warn("MeetingService", "Failed to record meeting URL on session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
	}

	return s.linkToResponse(&link), nil
}

// Validate is a pure read. The precedence of the checks is part of the
// API contract: not_found, then expired, then used, then full.
func (s *meetingService) Validate(ctx context.Context, linkID uuid.UUID) (*dto.ValidateMeetingLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := uow.MeetingLinkRepository().FindOne(ctx, specification.ByID{ID: linkID})
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, serverutils.NotFound("meeting link does not exist")
	}
	if appErr := checkIssuable(link, s.now()); appErr != nil {
		return nil, appErr
	}

	return &dto.ValidateMeetingLinkResponse{Valid: true}, nil
}

// Issue consumes one unit of the link's capacity and returns a join
// credential. Atomic per link: a per-link mutex queues concurrent
// callers in this process, and the row lock inside the transaction
// protects against other writers. The credential call and all
// notifications happen after commit, outside the lock.
func (s *meetingService) Issue(ctx context.Context, linkID uuid.UUID, identity string) (*dto.IssueCredentialResponse, error) {
	if identity == "" {
		return nil, serverutils.InvalidInput("missing_identity", "identity is required")
	}

	s.locks.Lock(linkID)
	link, err := s.issueLocked(ctx, linkID)
	s.locks.Unlock(linkID)
	if err != nil {
		return nil, err
	}

	var token string
	if s.provider != nil {
		token, err = s.provider.IssueCredential(link.RoomName, identity)
	}
	if s.provider == nil || err != nil {
		// The issuance is already committed, so fall back to a locally
		// generated opaque token rather than failing the caller.
		if err != nil {
			s.logger.Warn("MeetingService", "Credential provider unavailable, using fallback token", map[string]interface{}{
				"link_id": linkID,
				"error":   err,
			})
		}
		token = video.FallbackToken()
	}

	s.afterIssue(ctx, link, identity)

	return &dto.IssueCredentialResponse{
		Token:       token,
		RoomName:    link.RoomName,
		Identity:    identity,
		IssuedCount: link.IssuedCount,
		ExpiresAt:   link.ExpiresAt,
	}, nil
}

// issueLocked runs the critical section: re-read under a row lock,
// re-check the full precedence chain, then commit the increment.
func (s *meetingService) issueLocked(ctx context.Context, linkID uuid.UUID) (*entity.MeetingLink, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	link, err := uow.MeetingLinkRepository().FindOneForUpdate(ctx, linkID)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if link == nil {
		uow.Rollback()
		return nil, serverutils.NotFound("meeting link does not exist")
	}

	now := s.now()
	if appErr := checkIssuable(link, now); appErr != nil {
		uow.Rollback()
		return nil, appErr
	}

	link.IssuedCount++
	link.LastIssuedAt = &now
	if link.OneTime {
		link.Used = true
	}
	if err := uow.MeetingLinkRepository().Update(ctx, link); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return link, nil
}

// afterIssue handles everything best-effort: the lifecycle event on the
// first issuance, the in-process hub relay, and the bus publish.
// Failures are logged and swallowed, the credential is already
// committed.
func (s *meetingService) afterIssue(ctx context.Context, link *entity.MeetingLink, identity string) {
	if link.IssuedCount == 1 {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		event := entity.MeetingEvent{
			Id:            uuid.New(),
			MeetingLinkId: link.Id,
			SessionId:     link.SessionId,
			EventType:     entity.EventMeetingStarted,
			CreatedAt:     s.now(),
		}
		if err := uow.MeetingEventRepository().Create(ctx, &event); err != nil {
			s.logger.Warn("MeetingService", "Failed to append meeting_started event", map[string]interface{}{
				"link_id": link.Id,
				"error":   err,
			})
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyMeetingStarted(link.SessionId, link.Id)
	}

	if s.publisher != nil {
		evt := events.BaseEvent{
			Type: "meeting.started",
			Data: map[string]interface{}{
				"session_id": link.SessionId.String(),
				"link_id":    link.Id.String(),
				"identity":   identity,
				"origin":     s.origin,
			},
			OccurredAt: s.now(),
		}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("MeetingService", "Failed to publish meeting.started", map[string]interface{}{
				"link_id": link.Id,
				"error":   err,
			})
		}
	}
}

// checkIssuable applies the shared precedence chain for Validate and
// the re-check inside Issue. Returns nil when the link can be issued.
func checkIssuable(link *entity.MeetingLink, now time.Time) *serverutils.AppError {
	if link.Expired(now) {
		return serverutils.Gone(serverutils.CodeExpired, "meeting link has expired")
	}
	if link.OneTime && link.Used {
		return serverutils.Gone(serverutils.CodeUsed, "one-time meeting link was already used")
	}
	if link.IssuedCount >= link.AllowedCount {
		return serverutils.Gone(serverutils.CodeFull, "meeting link has no remaining capacity")
	}
	return nil
}

func (s *meetingService) publicURL(linkID uuid.UUID) string {
	return s.cfg.MeetBaseURL + linkID.String()
}

func (s *meetingService) linkToResponse(l *entity.MeetingLink) *dto.MeetingLinkResponse {
	return &dto.MeetingLinkResponse{
		Id:           l.Id,
		SessionId:    l.SessionId,
		Creator:      l.Creator,
		RoomName:     l.RoomName,
		PublicURL:    s.publicURL(l.Id),
		OneTime:      l.OneTime,
		AllowedCount: l.AllowedCount,
		IssuedCount:  l.IssuedCount,
		Used:         l.Used,
		ExpiresAt:    l.ExpiresAt,
		CreatedAt:    l.CreatedAt,
	}
}
