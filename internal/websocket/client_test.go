package websocket

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFrameInvalidJSON(t *testing.T) {
	h := NewHub(&fakeStore{}, nil, nopLogger{})
	c := newTestClient(h, uuid.New(), 8)

	c.handleFrame([]byte("{not json"))

	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "invalid_json", frames[0]["error"])
}

func TestHandleFrameUnknownAction(t *testing.T) {
	h := NewHub(&fakeStore{}, nil, nopLogger{})
	c := newTestClient(h, uuid.New(), 8)

	c.handleFrame([]byte(`{"action":"dance"}`))

	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "unknown_action", frames[0]["error"])
	assert.Equal(t, "dance", frames[0]["action"])
}

func TestHandleIdentify(t *testing.T) {
	h := NewHub(&fakeStore{}, nil, nopLogger{})
	sid := uuid.New()
	c := newTestClient(h, sid, 8)
	h.Register(c)
	drain(t, c)

	c.handleFrame([]byte(`{"action":"identify","user":"alice","role":"agent"}`))

	assert.Equal(t, "alice", c.identity)
	assert.Equal(t, "agent", c.role)
	assert.Equal(t, []string{"alice"}, h.presence.Snapshot(sid))

	frames := drain(t, c)
	require.Len(t, frames, 2) // presence broadcast, then the direct ack
	assert.Equal(t, "presence", frames[0]["type"])
	assert.Equal(t, "joined", frames[0]["action"])
	assert.Equal(t, "identified", frames[1]["type"])
	assert.Equal(t, "alice", frames[1]["user"])
	assert.Equal(t, []interface{}{"alice"}, frames[1]["online"])
}

func TestHandleIdentifyDefaults(t *testing.T) {
	h := NewHub(&fakeStore{}, nil, nopLogger{})
	sid := uuid.New()
	c := newTestClient(h, sid, 8)

	// identity field is accepted as an alias for user; role defaults.
	c.handleFrame([]byte(`{"action":"identify","identity":"bob"}`))

	assert.Equal(t, "bob", c.identity)
	assert.Equal(t, "customer", c.role)
	assert.Equal(t, []string{"bob"}, h.presence.Snapshot(sid))
}

func TestHandleIdentifyRebind(t *testing.T) {
	h := NewHub(&fakeStore{}, nil, nopLogger{})
	sid := uuid.New()
	c := newTestClient(h, sid, 16)

	c.handleFrame([]byte(`{"action":"identify","user":"alice"}`))
	c.handleFrame([]byte(`{"action":"identify","user":"alice2"}`))

	assert.Equal(t, "alice2", c.identity)
	// The old identity left the presence set.
	assert.Equal(t, []string{"alice2"}, h.presence.Snapshot(sid))
}

func TestHandleMessageEmptyText(t *testing.T) {
	store := &fakeStore{}
	h := NewHub(store, nil, nopLogger{})
	c := newTestClient(h, uuid.New(), 8)

	c.handleFrame([]byte(`{"action":"message","text":"   "}`))

	frames := drain(t, c)
	require.Len(t, frames, 1)
	assert.Equal(t, "empty_text", frames[0]["error"])
	assert.Empty(t, store.saved)
}

func TestHandleMessageSenderResolution(t *testing.T) {
	tests := []struct {
		name       string
		identity   string
		role       string
		frame      string
		wantSender string
		wantRole   string
	}{
		{
			name:       "bound identity wins over frame values",
			identity:   "alice",
			role:       "agent",
			frame:      `{"action":"message","user":"mallory","role":"customer","text":"hi"}`,
			wantSender: "alice",
			wantRole:   "agent",
		},
		{
			name:       "frame values used when unidentified",
			frame:      `{"action":"message","user":"bob","role":"agent","text":"hi"}`,
			wantSender: "bob",
			wantRole:   "agent",
		},
		{
			name:       "anonymous customer fallback",
			frame:      `{"action":"message","text":"hi"}`,
			wantSender: "anonymous",
			wantRole:   "customer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			h := NewHub(store, nil, nopLogger{})
			sid := uuid.New()
			c := newTestClient(h, sid, 8)
			h.Register(c)
			drain(t, c)
			c.identity = tt.identity
			c.role = tt.role

			c.handleFrame([]byte(tt.frame))

			require.Len(t, store.saved, 1)
			assert.Equal(t, tt.wantSender, store.saved[0].Sender)
			assert.Equal(t, tt.wantRole, store.saved[0].Role)

			frames := drain(t, c)
			require.Len(t, frames, 1)
			assert.Equal(t, "message", frames[0]["type"])
			assert.Equal(t, "hi", frames[0]["text"])
		})
	}
}

func TestHandleMessagePersistFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("store down")}
	h := NewHub(store, nil, nopLogger{})
	sid := uuid.New()
	sender := newTestClient(h, sid, 8)
	watcher := newTestClient(h, sid, 8)
	h.Register(sender)
	h.Register(watcher)
	drain(t, sender)
	drain(t, watcher)

	sender.handleFrame([]byte(`{"action":"message","text":"hi"}`))

	// Only the sender hears about the failure; nothing is broadcast.
	frames := drain(t, sender)
	require.Len(t, frames, 1)
	assert.Equal(t, "persist_failed", frames[0]["error"])
	assert.Empty(t, drain(t, watcher))
}
