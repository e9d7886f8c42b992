package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// SessionID keys the broadcast group this connection belongs to.
	SessionID uuid.UUID

	// Buffered channel of outbound frames, drained by writePump.
	send chan []byte

	// mu guards closed and the identity binding. The read pump writes
	// the binding; the hub's drop path reads it from broadcast
	// goroutines.
	mu       sync.Mutex
	closed   bool
	identity string
	role     string
}

// clientFrame is the union of all client->server actions.
type clientFrame struct {
	Action   string `json:"action"`
	User     string `json:"user"`
	Identity string `json:"identity"`
	Role     string `json:"role"`
	Text     string `json:"text"`
}

// reply queues a frame for this connection only.
func (c *Client) reply(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend queues a frame unless the buffer is full or the connection is
// already torn down. Nothing ever sends on a closed channel: closeSend
// flips closed under the same mutex.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		// Buffer full; the hub drops the connection.
		return false
	}
}

// closeSend closes the outbound channel exactly once. Reports whether
// this call performed the close, so the disconnect and slow-consumer
// paths cannot both run the teardown.
func (c *Client) closeSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

func (c *Client) bind(identity, role string) {
	c.mu.Lock()
	c.identity = identity
	c.role = role
	c.mu.Unlock()
}

func (c *Client) binding() (identity, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.role
}

func (c *Client) handleFrame(data []byte) {
	var f clientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		c.reply(map[string]interface{}{"error": "invalid_json"})
		return
	}

	switch f.Action {
	case "identify":
		c.handleIdentify(f)
	case "message":
		c.handleMessage(f)
	default:
		c.reply(map[string]interface{}{"error": "unknown_action", "action": f.Action})
	}
}

// handleIdentify binds an identity to the connection. Re-identify
// overwrites the binding; the previous identity leaves the presence set.
// The reply carries a snapshot of who is online right now; it may be
// stale by the time the client reads it, which is fine for an advisory
// signal.
func (c *Client) handleIdentify(f clientFrame) {
	user := f.User
	if user == "" {
		user = f.Identity
	}
	role := f.Role
	if role == "" {
		role = "customer"
	}

	previous, _ := c.binding()
	if previous != "" && previous != user {
		c.hub.presence.Remove(c.SessionID, previous)
	}
	c.bind(user, role)

	c.hub.presence.Add(c.SessionID, user)
	c.hub.Broadcast(c.SessionID, map[string]interface{}{
		"type":   "presence",
		"action": "joined",
		"user":   user,
		"role":   role,
	})

	c.reply(map[string]interface{}{
		"type":   "identified",
		"user":   user,
		"online": c.hub.presence.Snapshot(c.SessionID),
	})
}

// handleMessage persists and broadcasts a chat message. The bound
// identity wins over frame-supplied sender/role; the frame values exist
// so an unidentified client can still post.
func (c *Client) handleMessage(f clientFrame) {
	text := strings.TrimSpace(f.Text)
	if text == "" {
		c.reply(map[string]interface{}{"error": "empty_text"})
		return
	}

	sender, role := c.binding()
	if sender == "" {
		sender = f.User
	}
	if sender == "" {
		sender = "anonymous"
	}
	if role == "" {
		role = f.Role
	}
	if role == "" {
		role = "customer"
	}

	msg, err := c.hub.store.SaveMessage(context.Background(), c.SessionID, sender, role, text)
	if err != nil {
		c.hub.logger.Error("Client", "Message persist failed", map[string]interface{}{
			"session_id": c.SessionID,
			"error":      err,
		})
		c.reply(map[string]interface{}{"error": "persist_failed"})
		return
	}

	c.hub.BroadcastMessage(c.SessionID, msg)
}

// readPump pumps frames from the websocket connection into the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err,
				})
			}
			break
		}
		c.handleFrame(data)
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
