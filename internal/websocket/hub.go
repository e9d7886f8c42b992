package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MessageStore persists a chat message. The hub calls it before any
// broadcast: the broadcast payload echoes the persisted id and
// timestamp, so nothing unpersisted ever reaches a client.
type MessageStore interface {
	SaveMessage(ctx context.Context, sessionID uuid.UUID, sender, role, text string) (*entity.Message, error)
}

const backplaneChannel = "session_events"

// backplaneEnvelope is what crosses Redis between instances.
type backplaneEnvelope struct {
	Instance  string          `json:"instance"`
	SessionID uuid.UUID       `json:"session_id"`
	Data      json.RawMessage `json:"data"`
}

// Hub manages one broadcast group per chat session.
type Hub struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*group

	presence *Presence
	store    MessageStore

	// Optional cross-instance backplane. nil means single-process mode,
	// which is fully supported.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

// group is the set of live connections attached to one session. Its
// mutex serializes broadcast enqueue, which is what gives each group
// FIFO delivery.
type group struct {
	mu      sync.Mutex
	members map[*Client]struct{}
}

func NewHub(store MessageStore, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		groups:     make(map[uuid.UUID]*group),
		presence:   NewPresence(),
		store:      store,
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Presence exposes the hub-owned presence registry (HTTP snapshot
// endpoint, tests).
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Run starts the backplane subscriber when Redis is configured. It is a
// no-op otherwise; the hub itself needs no event loop.
func (h *Hub) Run() {
	if h.rdb != nil {
		h.subscribeBackplane()
	}
}

// Register adds a connection to its session group and acknowledges it.
// Membership changes happen under the hub lock (then the group lock) so
// a group can never be reaped while a new member is joining it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	g, ok := h.groups[c.SessionID]
	if !ok {
		g = &group{members: make(map[*Client]struct{})}
		h.groups[c.SessionID] = g
	}
	g.mu.Lock()
	g.members[c] = struct{}{}
	g.mu.Unlock()
	h.mu.Unlock()

	c.reply(map[string]interface{}{
		"type":       "connected",
		"session_id": c.SessionID,
	})

	h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": c.SessionID})
}

// Unregister removes a connection from its group. If the connection had
// identified, its identity leaves the presence set and the remaining
// members are told.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	g, ok := h.groups[c.SessionID]
	if !ok {
		h.mu.Unlock()
		c.closeSend()
		return
	}

	g.mu.Lock()
	_, wasMember := g.members[c]
	delete(g.members, c)
	if len(g.members) == 0 {
		delete(h.groups, c.SessionID)
	}
	g.mu.Unlock()
	h.mu.Unlock()

	h.teardown(c)

	if wasMember {
		h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"session_id": c.SessionID})
	}
}

// teardown finishes removing a connection that already left its group:
// close the send channel, then drop the identity from presence and
// tell the remaining members. Both the disconnect path and the
// slow-consumer drop path land here; closeSend makes sure only the
// first caller does the work.
func (h *Hub) teardown(c *Client) {
	if !c.closeSend() {
		return
	}

	identity, _ := c.binding()
	if identity != "" {
		h.presence.Remove(c.SessionID, identity)
		h.Broadcast(c.SessionID, map[string]interface{}{
			"type":   "presence",
			"action": "left",
			"user":   identity,
		})
	}
}

// Broadcast fans a payload out to every member of a session's group, in
// the order broadcasts are issued (FIFO per group). No group means no
// one is connected: a silent no-op.
func (h *Hub) Broadcast(sessionID uuid.UUID, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal broadcast payload", map[string]interface{}{"error": err})
		return
	}

	h.deliverLocal(sessionID, data)

	if h.rdb != nil {
		envelope, _ := json.Marshal(backplaneEnvelope{
			Instance:  h.instanceID,
			SessionID: sessionID,
			Data:      data,
		})
		if err := h.rdb.Publish(context.Background(), backplaneChannel, envelope).Err(); err != nil {
			h.logger.Warn("Hub", "Backplane publish failed", map[string]interface{}{"error": err})
		}
	}
}

func (h *Hub) deliverLocal(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	g, ok := h.groups[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	var dropped []*Client
	g.mu.Lock()
	for member := range g.members {
		if !member.trySend(data) {
			// Slow consumer: drop it rather than stall the group.
			delete(g.members, member)
			dropped = append(dropped, member)
		}
	}
	g.mu.Unlock()

	if len(dropped) == 0 {
		return
	}

	h.reapEmptyGroup(sessionID, g)
	for _, member := range dropped {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"session_id": sessionID})
		h.teardown(member)
	}
}

// reapEmptyGroup removes a group the drop path may have emptied. The
// group is re-checked under both locks: a new member may have joined
// since the drops.
func (h *Hub) reapEmptyGroup(sessionID uuid.UUID, g *group) {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.groups[sessionID]
	if !ok || current != g {
		return
	}
	g.mu.Lock()
	if len(g.members) == 0 {
		delete(h.groups, sessionID)
	}
	g.mu.Unlock()
}

// BroadcastMessage pushes a persisted chat message to the group. Both
// the websocket path and the REST post path end up here, always after
// the save succeeded.
func (h *Hub) BroadcastMessage(sessionID uuid.UUID, msg *entity.Message) {
	h.Broadcast(sessionID, map[string]interface{}{
		"type":       "message",
		"id":         msg.Id,
		"session_id": sessionID,
		"sender":     msg.Sender,
		"role":       msg.Role,
		"text":       msg.Text,
		"created_at": msg.SentAt,
	})
}

// InstanceID identifies this process on the event bus so relays can
// skip notifications this instance already delivered locally.
func (h *Hub) InstanceID() string {
	return h.instanceID
}

// NotifyMeetingStarted relays a successful issuance into the session's
// group. Best-effort by contract: it never fails and never blocks the
// caller, whether or not anyone is connected.
func (h *Hub) NotifyMeetingStarted(sessionID, linkID uuid.UUID) {
	h.Broadcast(sessionID, meetingStartedPayload(sessionID, linkID))
}

// NotifyMeetingStartedLocal delivers the announcement to this
// instance's members only, never echoing it onto the backplane. Bus
// relays use it: their payload already crossed instances once, and
// re-broadcasting would hand it back to the instances that have
// already delivered it.
func (h *Hub) NotifyMeetingStartedLocal(sessionID, linkID uuid.UUID) {
	data, err := json.Marshal(meetingStartedPayload(sessionID, linkID))
	if err != nil {
		return
	}
	h.deliverLocal(sessionID, data)
}

func meetingStartedPayload(sessionID, linkID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"type":       "meeting.started",
		"session_id": sessionID,
		"link_id":    linkID,
	}
}

func (h *Hub) subscribeBackplane() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, backplaneChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope backplaneEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Bad backplane payload", map[string]interface{}{"error": err})
			continue
		}
		// Skip what this instance published itself; local members
		// already received it.
		if envelope.Instance == h.instanceID {
			continue
		}
		h.deliverLocal(envelope.SessionID, envelope.Data)
	}
}
