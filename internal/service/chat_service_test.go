package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []*entity.Message
}

func (b *recordingBroadcaster) BroadcastMessage(_ uuid.UUID, msg *entity.Message) {
	b.mu.Lock()
	b.calls = append(b.calls, msg)
	b.mu.Unlock()
}

func TestCreateAndGetSession(t *testing.T) {
	f := newFakeUow()
	svc := NewChatService(f)

	agent := "agent.t"
	created, err := svc.CreateSession(context.Background(), &dto.CreateSessionRequest{
		Title:   "refund request",
		AgentId: &agent,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	fetched, err := svc.GetSession(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, "refund request", fetched.Title)
	require.NotNil(t, fetched.AgentId)
	assert.Equal(t, agent, *fetched.AgentId)
}

func TestGetSessionNotFound(t *testing.T) {
	f := newFakeUow()
	svc := NewChatService(f)

	_, err := svc.GetSession(context.Background(), uuid.New())
	assertAppError(t, err, 404, serverutils.CodeNotFound)
}

func TestSaveMessageValidation(t *testing.T) {
	f := newFakeUow()
	svc := NewChatService(f)
	sid := seedSession(f)

	tests := []struct {
		name       string
		sessionID  uuid.UUID
		sender     string
		role       string
		text       string
		wantStatus int
		wantCode   string
		wantSender string
		wantRole   string
	}{
		{
			name:      "valid message",
			sessionID: sid, sender: "alice", role: entity.RoleAgent, text: "hello",
			wantSender: "alice", wantRole: "agent",
		},
		{
			name:      "whitespace text rejected",
			sessionID: sid, sender: "alice", role: entity.RoleAgent, text: "   \n ",
			wantStatus: 400, wantCode: serverutils.CodeEmptyText,
		},
		{
			name:      "unknown session",
			sessionID: uuid.New(), sender: "alice", role: entity.RoleAgent, text: "hello",
			wantStatus: 404, wantCode: serverutils.CodeNotFound,
		},
		{
			name:      "anonymous customer defaults",
			sessionID: sid, sender: "", role: "", text: "hi",
			wantSender: "anonymous", wantRole: "customer",
		},
		{
			name:      "invalid role defaults to customer",
			sessionID: sid, sender: "bob", role: "superuser", text: "hi",
			wantSender: "bob", wantRole: "customer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := svc.SaveMessage(context.Background(), tt.sessionID, tt.sender, tt.role, tt.text)
			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantStatus, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSender, msg.Sender)
			assert.Equal(t, tt.wantRole, msg.Role)
		})
	}
}

func TestPostMessageBroadcasts(t *testing.T) {
	f := newFakeUow()
	svc := NewChatService(f)
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	sid := seedSession(f)

	res, err := svc.PostMessage(context.Background(), sid, "alice", entity.RoleAgent, "ping")
	require.NoError(t, err)

	require.Len(t, b.calls, 1)
	assert.Equal(t, res.Id, b.calls[0].Id)
	assert.Equal(t, "ping", b.calls[0].Text)
}

func TestPostMessageFailedSaveDoesNotBroadcast(t *testing.T) {
	f := newFakeUow()
	svc := NewChatService(f)
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	sid := seedSession(f)

	_, err := svc.PostMessage(context.Background(), sid, "alice", entity.RoleAgent, "  ")
	require.Error(t, err)
	assert.Empty(t, b.calls)
}

func TestListMessagesOrderAndSince(t *testing.T) {
	f := newFakeUow()
	svc := NewChatService(f)
	sid := seedSession(f)

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"first", "second", "third"} {
		f.messages = append(f.messages, &entity.Message{
			Id:        uuid.New(),
			SessionId: sid,
			Sender:    "alice",
			Role:      entity.RoleCustomer,
			Text:      text,
			SentAt:    base.Add(time.Duration(i) * time.Minute),
		})
	}

	all, err := svc.ListMessages(context.Background(), sid, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Text)
	assert.Equal(t, "third", all[2].Text)

	since := base.Add(30 * time.Second)
	recent, err := svc.ListMessages(context.Background(), sid, &since)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Text)
}
