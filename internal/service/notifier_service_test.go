package service

import (
	"context"
	"testing"
	"time"

	"support-desk-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLocalNotifier struct {
	calls []uuid.UUID
}

func (n *recordingLocalNotifier) NotifyMeetingStartedLocal(_ uuid.UUID, linkID uuid.UUID) {
	n.calls = append(n.calls, linkID)
}

func meetingStartedEvent(sessionID, linkID uuid.UUID, origin string) events.BaseEvent {
	return events.BaseEvent{
		Type: "events.meeting.started",
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"link_id":    linkID.String(),
			"origin":     origin,
		},
		OccurredAt: time.Now(),
	}
}

func TestNotifierRelaysRemoteEvents(t *testing.T) {
	rec := &recordingLocalNotifier{}
	svc := &notifierService{
		notifier: rec,
		origin:   "instance-a",
		logger:   nopLogger{},
	}

	sid := uuid.New()
	linkID := uuid.New()
	err := svc.handleMeetingStarted(context.Background(), meetingStartedEvent(sid, linkID, "instance-b"))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{linkID}, rec.calls)
}

func TestNotifierSkipsOwnOrigin(t *testing.T) {
	rec := &recordingLocalNotifier{}
	svc := &notifierService{
		notifier: rec,
		origin:   "instance-a",
		logger:   nopLogger{},
	}

	// Local clients already heard the direct notify; relaying again
	// would deliver the announcement twice.
	err := svc.handleMeetingStarted(context.Background(), meetingStartedEvent(uuid.New(), uuid.New(), "instance-a"))
	require.NoError(t, err)

	assert.Empty(t, rec.calls)
}

func TestNotifierIgnoresMalformedPayload(t *testing.T) {
	rec := &recordingLocalNotifier{}
	svc := &notifierService{
		notifier: rec,
		origin:   "instance-a",
		logger:   nopLogger{},
	}

	bad := events.BaseEvent{
		Type:       "events.meeting.started",
		Data:       map[string]interface{}{"session_id": "not-a-uuid", "origin": "instance-b"},
		OccurredAt: time.Now(),
	}

	// A bad payload is dropped, not retried: the error is swallowed so
	// the bus does not redeliver it forever.
	err := svc.handleMeetingStarted(context.Background(), bad)
	require.NoError(t, err)
	assert.Empty(t, rec.calls)
}
