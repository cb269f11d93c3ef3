package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachChatBack/internal/models"
	"github.com/saeid-a/CoachChatBack/internal/services"
)

type coachChatService interface {
	ListConversationsForCoach(ctx context.Context, coachID int64, search string) ([]models.ConversationSummary, error)
	FetchConversation(ctx context.Context, viewerRole string, coachID, traineeID int64) (*models.ConversationView, error)
	SendText(ctx context.Context, senderID int64, senderRole string, counterpartyID int64, content string) (*models.ChatMessage, error)
	SendFile(ctx context.Context, senderID int64, senderRole string, counterpartyID int64, upload services.FileUpload, caption string) (*models.ChatMessage, error)
	MarkConversationRead(ctx context.Context, conversationID, actorID int64, actorRole string) error
	DeleteMessage(ctx context.Context, messageID, actorID int64) error
	DeleteConversation(ctx context.Context, conversationID, requestingCoachID int64) error
	Stats(ctx context.Context, coachID int64) (*models.ChatStats, error)
}

// ChatHandler is the coach-facing surface. Routes behind it are already
// guarded by AuthRequired + RequireRole(coach).
type ChatHandler struct {
	service coachChatService
	debug   bool
}

func NewChatHandler(service coachChatService, debug bool) *ChatHandler {
	return &ChatHandler{service: service, debug: debug}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	summaries, err := h.service.ListConversationsForCoach(c.Context(), coachID, c.Query("search"))
	if err != nil {
		return mapChatError(c, "list conversations", err, h.debug)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"conversations": summaries})
}

func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	traineeID, err := strconv.ParseInt(c.Params("traineeId"), 10, 64)
	if err != nil || traineeID <= 0 {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid trainee id")
	}

	view, err := h.service.FetchConversation(c.Context(), models.RoleCoach, coachID, traineeID)
	if err != nil {
		return mapChatError(c, "fetch conversation", err, h.debug)
	}

	return respondData(c, fiber.StatusOK, view)
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	traineeID, err := strconv.ParseInt(c.Params("traineeId"), 10, 64)
	if err != nil || traineeID <= 0 {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid trainee id")
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	message, err := h.service.SendText(c.Context(), coachID, models.RoleCoach, traineeID, req.Content)
	if err != nil {
		return mapChatError(c, "send message", err, h.debug)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"message": message})
}

func (h *ChatHandler) SendFile(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	traineeID, err := strconv.ParseInt(c.Params("traineeId"), 10, 64)
	if err != nil || traineeID <= 0 {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid trainee id")
	}

	upload, err := formUpload(c)
	if err != nil {
		return respondError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	defer upload.close()

	message, err := h.service.SendFile(
		c.Context(),
		coachID,
		models.RoleCoach,
		traineeID,
		upload.FileUpload,
		c.FormValue("caption"),
	)
	if err != nil {
		return mapChatError(c, "send file", err, h.debug)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"message": message})
}

func (h *ChatHandler) MarkConversationRead(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	conversationID, err := strconv.ParseInt(c.Params("conversationId"), 10, 64)
	if err != nil || conversationID <= 0 {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid conversation id")
	}

	if err := h.service.MarkConversationRead(c.Context(), conversationID, coachID, models.RoleCoach); err != nil {
		return mapChatError(c, "mark conversation read", err, h.debug)
	}

	return respondMessage(c, "Conversation marked as read")
}

func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	messageID, err := strconv.ParseInt(c.Params("messageId"), 10, 64)
	if err != nil || messageID <= 0 {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid message id")
	}

	if err := h.service.DeleteMessage(c.Context(), messageID, coachID); err != nil {
		return mapChatError(c, "delete message", err, h.debug)
	}

	return respondMessage(c, "Message deleted")
}

func (h *ChatHandler) DeleteConversation(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	conversationID, err := strconv.ParseInt(c.Params("conversationId"), 10, 64)
	if err != nil || conversationID <= 0 {
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid conversation id")
	}

	if err := h.service.DeleteConversation(c.Context(), conversationID, coachID); err != nil {
		return mapChatError(c, "delete conversation", err, h.debug)
	}

	return respondMessage(c, "Conversation deleted")
}

func (h *ChatHandler) Stats(c *fiber.Ctx) error {
	coachID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	stats, err := h.service.Stats(c.Context(), coachID)
	if err != nil {
		return mapChatError(c, "stats", err, h.debug)
	}

	return respondData(c, fiber.StatusOK, stats)
}
