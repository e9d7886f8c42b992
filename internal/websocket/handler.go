package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded connection to the session's group and
// blocks until the connection closes.
func ServeWs(hub *Hub, conn *websocket.Conn, sessionID uuid.UUID) {
	client := &Client{
		hub:       hub,
		conn:      conn,
		SessionID: sessionID,
		send:      make(chan []byte, 256),
	}
	hub.Register(client)

	go client.writePump()
	client.readPump() // runs on the handler goroutine
}
