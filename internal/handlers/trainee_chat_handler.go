package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachChatBack/internal/models"
	"github.com/saeid-a/CoachChatBack/internal/services"
)

type traineeChatService interface {
	Coach(ctx context.Context) (*models.User, error)
	FetchConversation(ctx context.Context, viewerRole string, coachID, traineeID int64) (*models.ConversationView, error)
	SendText(ctx context.Context, senderID int64, senderRole string, counterpartyID int64, content string) (*models.ChatMessage, error)
	SendFile(ctx context.Context, senderID int64, senderRole string, counterpartyID int64, upload services.FileUpload, caption string) (*models.ChatMessage, error)
}

// TraineeChatHandler is the trainee-facing surface. The counterparty is
// always "the" coach, resolved per request rather than taken from the URL.
type TraineeChatHandler struct {
	service traineeChatService
	debug   bool
}

func NewTraineeChatHandler(service traineeChatService, debug bool) *TraineeChatHandler {
	return &TraineeChatHandler{service: service, debug: debug}
}

func (h *TraineeChatHandler) GetConversation(c *fiber.Ctx) error {
	traineeID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	coach, err := h.service.Coach(c.Context())
	if err != nil {
		return mapChatError(c, "resolve coach", err, h.debug)
	}

	view, err := h.service.FetchConversation(c.Context(), models.RoleTrainee, coach.ID, traineeID)
	if err != nil {
		return mapChatError(c, "fetch conversation", err, h.debug)
	}

	return respondData(c, fiber.StatusOK, view)
}

func (h *TraineeChatHandler) SendMessage(c *fiber.Ctx) error {
	traineeID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	coach, err := h.service.Coach(c.Context())
	if err != nil {
		return mapChatError(c, "resolve coach", err, h.debug)
	}

	message, err := h.service.SendText(c.Context(), traineeID, models.RoleTrainee, coach.ID, req.Content)
	if err != nil {
		return mapChatError(c, "send message", err, h.debug)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"message": message})
}

func (h *TraineeChatHandler) SendFile(c *fiber.Ctx) error {
	traineeID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	upload, err := formUpload(c)
	if err != nil {
		return respondError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	defer upload.close()

	coach, err := h.service.Coach(c.Context())
	if err != nil {
		return mapChatError(c, "resolve coach", err, h.debug)
	}

	message, err := h.service.SendFile(
		c.Context(),
		traineeID,
		models.RoleTrainee,
		coach.ID,
		upload.FileUpload,
		c.FormValue("caption"),
	)
	if err != nil {
		return mapChatError(c, "send file", err, h.debug)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"message": message})
}
