package controller

import (
	"support-desk-be/internal/dto"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMeetingController interface {
	RegisterRoutes(r fiber.Router)
	CreateLink(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	Issue(ctx *fiber.Ctx) error
	RecordEvent(ctx *fiber.Ctx) error
}

type meetingController struct {
	service service.IMeetingService
	ingest  service.IEventIngestService
}

func NewMeetingController(service service.IMeetingService, ingest service.IEventIngestService) IMeetingController {
	return &meetingController{service: service, ingest: ingest}
}

func (c *meetingController) RegisterRoutes(r fiber.Router) {
	r.Post("/sessions/:id/meetings", c.CreateLink)

	h := r.Group("/meetings")
	h.Get(":id/validate", c.Validate)
	h.Post(":id/issue", c.Issue)
	h.Post(":id/events", c.RecordEvent)
}

func (c *meetingController) CreateLink(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	sessionId, _ := uuid.Parse(idParam)

	var req dto.CreateMeetingLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateLink(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create meeting link", res))
}

func (c *meetingController) Validate(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.Validate(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Meeting link is valid", res))
}

func (c *meetingController) Issue(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.IssueCredentialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Issue(ctx.Context(), id, req.Identity)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success issue credential", res))
}

func (c *meetingController) RecordEvent(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.RecordMeetingEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.ingest.Enqueue(ctx.Context(), id, &req); err != nil {
		return err
	}

	// Accepted, not created: the event is durable once the intake
	// consumer drains it.
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Event accepted", nil))
}
