package bootstrap

import (
	"context"
	"log"

	"support-desk-be/internal/config"
	"support-desk-be/internal/controller"
	"support-desk-be/internal/handler"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/repository/unitofwork"
	"support-desk-be/internal/service"
	"support-desk-be/internal/websocket"
	pktNats "support-desk-be/pkg/nats"
	"support-desk-be/pkg/video"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	MeetingController   controller.IMeetingController
	AnalyticsController controller.IAnalyticsController

	// Background Services (Exposed for main.go to run)
	EventIngestService service.IEventIngestService

	// WebSockets
	SessionWsHandler *handler.SessionWsHandler
	WebSocketHub     *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS is optional: without it, meeting.started stays in-process.
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		}
	}

	// Redis is optional: without it, the hub runs in single-process mode.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 3. Services
	chatService := service.NewChatService(uowFactory)

	// WebSocket Hub: hub persists inbound chat via the chat service,
	// the chat service broadcasts REST-posted messages via the hub.
	wsLogger := logger.NewIsolatedLogger("logs/hub.log")
	wsHub := websocket.NewHub(chatService, rdb, wsLogger)
	chatService.SetBroadcaster(wsHub)
	go wsHub.Run()

	var credProvider video.CredentialProvider
	if cfg.Video.SigningKey != "" {
		credProvider = video.NewJWTIssuer(cfg.Video.SigningKey, cfg.Video.Issuer, cfg.Video.TokenTTL)
	}

	meetingService := service.NewMeetingService(
		uowFactory,
		cfg.Meeting,
		credProvider,
		wsHub,
		natsPub,
		wsHub.InstanceID(),
		sysLogger,
	)

	analyticsService := service.NewAnalyticsService(uowFactory, cfg.Meeting.SummaryCacheTTL)
	ingestService := service.NewEventIngestService(pubSub, uowFactory, analyticsService, sysLogger)

	// Cross-instance meeting.started relay over NATS. Skipped when the
	// Redis backplane is active: that already carries every broadcast
	// between instances, and a second rail would deliver the
	// announcement twice.
	if natsSub != nil && rdb == nil {
		notifierService := service.NewNotifierService(natsSub, wsHub, wsHub.InstanceID(), sysLogger)
		if err := notifierService.Start(); err != nil {
			log.Printf("[WARN] Failed to start meeting notifier: %v", err)
		}
	}

	wsHandler := handler.NewSessionWsHandler(chatService, wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		SessionWsHandler: wsHandler,
		WebSocketHub:     wsHub,

		SessionController:   controller.NewSessionController(chatService, wsHub.Presence()),
		MeetingController:   controller.NewMeetingController(meetingService, ingestService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService),

		EventIngestService: ingestService,
	}
}
