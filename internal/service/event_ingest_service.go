package service

import (
	"context"
	"encoding/json"
	"time"

	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventIngestTopic is the in-process pipeline between the HTTP intake
// endpoint and the persisting consumer. Delivery is FIFO, which is what
// preserves insertion order for events sharing a timestamp.
const EventIngestTopic = "MEETING_EVENTS"

type IEventIngestService interface {
	// Enqueue validates the request, resolves the link and publishes
	// the event onto the pipeline. Returns before the event is durable.
	Enqueue(ctx context.Context, linkID uuid.UUID, req *dto.RecordMeetingEventRequest) error

	// Consume starts the persisting worker. Non-blocking.
	Consume(ctx context.Context) error
}

type eventIngestService struct {
	pubSub     *gochannel.GoChannel
	uowFactory unitofwork.RepositoryFactory
	analytics  IAnalyticsService
	logger     logger.ILogger
}

func NewEventIngestService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	analytics IAnalyticsService,
	log logger.ILogger,
) IEventIngestService {
	return &eventIngestService{
		pubSub:     pubSub,
		uowFactory: uowFactory,
		analytics:  analytics,
		logger:     log,
	}
}

func (s *eventIngestService) Enqueue(ctx context.Context, linkID uuid.UUID, req *dto.RecordMeetingEventRequest) error {
	if !entity.ValidEventType(req.EventType) {
		return serverutils.InvalidInput("unknown_event_type", "unrecognized meeting event type: "+req.EventType)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	link, err := uow.MeetingLinkRepository().FindOne(ctx, specification.ByID{ID: linkID})
	if err != nil {
		return err
	}
	if link == nil {
		return serverutils.NotFound("meeting link does not exist")
	}

	payload := dto.MeetingEventMessage{
		MeetingLinkId: linkID,
		SessionId:     link.SessionId,
		EventType:     req.EventType,
		Identity:      req.Identity,
		Role:          req.Role,
		Metadata:      req.Metadata,
		// Stamped at intake so the event-log ordering reflects arrival
		// order, not consumer scheduling.
		ReceivedAt: time.Now(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return s.pubSub.Publish(EventIngestTopic, msg)
}

func (s *eventIngestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, EventIngestTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *eventIngestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.MeetingEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("EventIngest", "Failed to unmarshal event payload", map[string]interface{}{"error": err})
		msg.Ack() // malformed messages are not retryable
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	event := entity.MeetingEvent{
		Id:            uuid.New(),
		MeetingLinkId: payload.MeetingLinkId,
		SessionId:     payload.SessionId,
		EventType:     payload.EventType,
		Identity:      payload.Identity,
		Role:          payload.Role,
		Metadata:      payload.Metadata,
		CreatedAt:     payload.ReceivedAt,
	}
	if err := uow.MeetingEventRepository().Create(ctx, &event); err != nil {
		s.logger.Error("EventIngest", "Failed to persist meeting event", map[string]interface{}{
			"link_id": payload.MeetingLinkId,
			"error":   err,
		})
		msg.Nack() // retry persistence
		return
	}

	s.analytics.Invalidate(payload.MeetingLinkId)
	msg.Ack()
}
