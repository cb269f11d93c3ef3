package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachChatBack/internal/models"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type notificationService interface {
	ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	NotificationUnreadCount(ctx context.Context, userID int64) (int, error)
	MarkNotificationsRead(ctx context.Context, userID int64) error
}

type NotificationHandler struct {
	service notificationService
	debug   bool
}

func NewNotificationHandler(service notificationService, debug bool) *NotificationHandler {
	return &NotificationHandler{service: service, debug: debug}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, err := h.service.ListNotifications(c.Context(), userID, limit)
	if err != nil {
		return mapChatError(c, "list notifications", err, h.debug)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	count, err := h.service.NotificationUnreadCount(c.Context(), userID)
	if err != nil {
		return mapChatError(c, "notification unread count", err, h.debug)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	if err := h.service.MarkNotificationsRead(c.Context(), userID); err != nil {
		return mapChatError(c, "mark notifications read", err, h.debug)
	}

	return respondMessage(c, "Notifications marked as read")
}
