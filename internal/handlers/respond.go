package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachChatBack/internal/services"
)

// Every response uses the {success, data?, message?, error?} envelope.

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": true, "message": message})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
}

// parseActorID reads the authenticated user id the auth middleware stored.
func parseActorID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

// mapChatError translates the service error taxonomy to HTTP statuses once,
// at the edge. Handlers never re-interpret error kinds. Unexpected errors are
// logged with operation context and surfaced as a generic 500 unless debug
// mode exposes the detail.
func mapChatError(c *fiber.Ctx, op string, err error, debug bool) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "Not permitted")
	case errors.Is(err, services.ErrCoachNotFound):
		return respondError(c, fiber.StatusNotFound, "Coach not found")
	case errors.Is(err, services.ErrTraineeNotFound):
		return respondError(c, fiber.StatusNotFound, "Trainee not found")
	case errors.Is(err, services.ErrConversationNotFound):
		return respondError(c, fiber.StatusNotFound, "Conversation not found")
	case errors.Is(err, services.ErrMessageNotFound):
		return respondError(c, fiber.StatusNotFound, "Message not found")
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusUnprocessableEntity, "Invalid request")
	case errors.Is(err, services.ErrPayloadTooLarge):
		return respondError(c, fiber.StatusUnprocessableEntity, "File is too large")
	case errors.Is(err, services.ErrUnsupportedMedia):
		return respondError(c, fiber.StatusUnprocessableEntity, "Unsupported file type")
	case errors.Is(err, services.ErrStorageUnavailable):
		return respondError(c, fiber.StatusServiceUnavailable, "Storage service is not configured")
	default:
		log.Printf("chat: %s failed (actor=%v): %v", op, c.Locals("user_id"), err)
		if debug {
			return respondError(c, fiber.StatusInternalServerError, err.Error())
		}
		return respondError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
}
