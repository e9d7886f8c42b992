package handler

import (
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/service"
	internalWS "support-desk-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// SessionWsHandler upgrades chat clients into a session's broadcast
// group. Connections start anonymous; identity arrives later over the
// socket itself, so the handshake carries no auth.
type SessionWsHandler struct {
	chat   service.IChatService
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSessionWsHandler(chat service.IChatService, hub *internalWS.Hub, log logger.ILogger) *SessionWsHandler {
	return &SessionWsHandler{
		chat:   chat,
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from chat peers.
func (h *SessionWsHandler) ServeWs(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	// Reject before hijacking: once the upgrade happens there is no
	// clean way to return an HTTP status.
	if _, err := h.chat.GetSession(c.Context(), sessionID); err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionWsHandler", "Starting chat session socket", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionWsHandler", "Chat session socket ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket route.
func (h *SessionWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/sessions/:id", h.ServeWs)
}
