package service

import (
	"context"
	"fmt"

	"support-desk-be/internal/pkg/logger"
	"support-desk-be/pkg/events"
	pktNats "support-desk-be/pkg/nats"

	"github.com/google/uuid"
)

// INotifierService bridges the durable event bus back into the live
// websocket layer. Each instance runs one, so an issuance committed on
// any instance reaches clients connected to every other instance.
type INotifierService interface {
	Start() error
}

// LocalNotifier delivers a meeting.started announcement to this
// instance's connections only. The relay must not use the full
// broadcast path: the payload already crossed instances on the bus,
// and re-broadcasting would push it onto the backplane a second time.
type LocalNotifier interface {
	NotifyMeetingStartedLocal(sessionID, linkID uuid.UUID)
}

type notifierService struct {
	subscriber *pktNats.Subscriber
	notifier   LocalNotifier
	origin     string
	logger     logger.ILogger
}

func NewNotifierService(
	subscriber *pktNats.Subscriber,
	notifier LocalNotifier,
	origin string,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		subscriber: subscriber,
		notifier:   notifier,
		origin:     origin,
		logger:     log,
	}
}

func (s *notifierService) Start() error {
	return s.subscriber.Subscribe("events.meeting.started", "meeting-notifier", s.handleMeetingStarted)
}

func (s *notifierService) handleMeetingStarted(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	// The publishing instance already notified its own clients.
	if origin, _ := payload["origin"].(string); origin == s.origin {
		return nil
	}

	sessionID, err := parseUUIDField(payload, "session_id")
	if err != nil {
		s.logger.Error("NotifierService", "Malformed meeting.started payload", map[string]interface{}{"error": err})
		return nil // not retryable
	}
	linkID, err := parseUUIDField(payload, "link_id")
	if err != nil {
		s.logger.Error("NotifierService", "Malformed meeting.started payload", map[string]interface{}{"error": err})
		return nil
	}

	s.notifier.NotifyMeetingStartedLocal(sessionID, linkID)
	return nil
}

func parseUUIDField(payload map[string]interface{}, key string) (uuid.UUID, error) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s", key)
	}
	return uuid.Parse(raw)
}
