package controller

import (
	"time"

	"support-desk-be/internal/dto"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/service"
	ws "support-desk-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	PostMessage(ctx *fiber.Ctx) error
	Presence(ctx *fiber.Ctx) error
}

type sessionController struct {
	service  service.IChatService
	presence *ws.Presence
}

func NewSessionController(service service.IChatService, presence *ws.Presence) ISessionController {
	return &sessionController{service: service, presence: presence}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Get(":id/messages", c.ListMessages)
	h.Post(":id/messages", c.PostMessage)
	h.Get(":id/presence", c.Presence)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.GetSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) ListMessages(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var since *time.Time
	if raw := ctx.Query("since"); raw != "" {
		// An unparseable since is ignored: the full list is a correct,
		// if larger, answer.
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			since = &t
		}
	}

	res, err := c.service.ListMessages(ctx.Context(), id, since)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *sessionController) PostMessage(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.PostMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Identity travels out-of-band so the body stays a plain message.
	sender := ctx.Get("X-User", ctx.Query("user"))
	role := ctx.Get("X-Role", ctx.Query("role"))

	res, err := c.service.PostMessage(ctx.Context(), id, sender, role, req.Text)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success post message", res))
}

func (c *sessionController) Presence(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	if _, err := c.service.GetSession(ctx.Context(), id); err != nil {
		return err
	}

	res := dto.PresenceResponse{
		SessionId: id,
		Online:    c.presence.Snapshot(id),
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get presence", res))
}
