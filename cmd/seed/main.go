package main

import (
	"log"
	"os"
	"time"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/model"
	"support-desk-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeds a demo support session with a chat transcript, a meeting link
// and a finished call, so the analytics endpoints have data to show.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		color.Red("Error: Failed to migrate database: %v", err)
		os.Exit(1)
	}

	color.Cyan("🌱 Seeding demo support session...")

	agent := "agent.taylor"
	customer := "customer.jordan"
	now := time.Now()

	session := model.Session{
		Id:         uuid.New(),
		Title:      "Billing dispute - order #4821",
		AgentId:    &agent,
		CustomerId: &customer,
		IsActive:   true,
	}
	if err := db.Create(&session).Error; err != nil {
		color.Red("Failed to seed session: %v", err)
		os.Exit(1)
	}
	color.Green("Session %s", session.Id)

	messages := []model.Message{
		{Id: uuid.New(), SessionId: session.Id, Sender: customer, Role: entity.RoleCustomer, Text: "Hi, I was charged twice for my last order.", SentAt: now.Add(-30 * time.Minute)},
		{Id: uuid.New(), SessionId: session.Id, Sender: agent, Role: entity.RoleAgent, Text: "Sorry about that! Let me pull up the order.", SentAt: now.Add(-29 * time.Minute)},
		{Id: uuid.New(), SessionId: session.Id, Sender: agent, Role: entity.RoleAgent, Text: "I can see the duplicate charge. Mind hopping on a quick call?", SentAt: now.Add(-27 * time.Minute)},
		{Id: uuid.New(), SessionId: session.Id, Sender: customer, Role: entity.RoleCustomer, Text: "Sure, works for me.", SentAt: now.Add(-26 * time.Minute)},
	}
	for _, m := range messages {
		if err := db.Create(&m).Error; err != nil {
			color.Red("Failed to seed message: %v", err)
			os.Exit(1)
		}
	}
	color.Green("Messages: %d", len(messages))

	link := model.MeetingLink{
		Id:           uuid.New(),
		SessionId:    session.Id,
		Creator:      &agent,
		RoomName:     "support-" + uuid.NewString(),
		OneTime:      false,
		AllowedCount: 2,
		IssuedCount:  2,
		Used:         false,
	}
	if err := db.Create(&link).Error; err != nil {
		color.Red("Failed to seed meeting link: %v", err)
		os.Exit(1)
	}
	color.Green("Meeting link %s (room %s)", link.Id, link.RoomName)

	callStart := now.Add(-25 * time.Minute)
	agentRole := entity.RoleAgent
	customerRole := entity.RoleCustomer
	seedEvents := []struct {
		eventType string
		identity  *string
		role      *string
		offset    time.Duration
		metadata  datatypes.JSONMap
	}{
		{entity.EventMeetingStarted, &agent, &agentRole, 0, nil},
		{entity.EventJoined, &agent, &agentRole, 5 * time.Second, nil},
		{entity.EventJoined, &customer, &customerRole, 20 * time.Second, nil},
		{entity.EventScreenShareStarted, &agent, &agentRole, 2 * time.Minute, datatypes.JSONMap{"surface": "window"}},
		{entity.EventScreenShareStopped, &agent, &agentRole, 9 * time.Minute, nil},
		{entity.EventLeft, &customer, &customerRole, 14 * time.Minute, nil},
		{entity.EventLeft, &agent, &agentRole, 15 * time.Minute, nil},
		{entity.EventMeetingEnded, nil, nil, 15 * time.Minute, nil},
	}
	for _, e := range seedEvents {
		row := model.MeetingEvent{
			Id:            uuid.New(),
			MeetingLinkId: link.Id,
			SessionId:     session.Id,
			EventType:     e.eventType,
			Identity:      e.identity,
			Role:          e.role,
			Metadata:      e.metadata,
			CreatedAt:     callStart.Add(e.offset),
		}
		if err := db.Create(&row).Error; err != nil {
			color.Red("Failed to seed meeting event: %v", err)
			os.Exit(1)
		}
	}
	color.Green("Meeting events: %d", len(seedEvents))

	updateSessionLink(db, &session, &link)

	color.Cyan("✅ Done. Try GET /api/meetings/%s/analytics", link.Id)
}

func updateSessionLink(db *gorm.DB, session *model.Session, link *model.MeetingLink) {
	base := os.Getenv("MEET_BASE_URL")
	if base == "" {
		base = "http://localhost:5173/meet/"
	}
	url := base + link.Id.String()
	if err := db.Model(session).Update("meeting_link", url).Error; err != nil {
		color.Yellow("Warn: failed to record meeting link on session: %v", err)
	}
}
