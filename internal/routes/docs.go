package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachChatBack/internal/config"
)

type docEntry struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var apiDocs = []docEntry{
	{"POST", "/api/auth/register", "Create a coach or trainee account"},
	{"POST", "/api/auth/login", "Exchange credentials for a JWT"},
	{"GET", "/api/auth/me", "Current authenticated user"},
	{"GET", "/api/v1/conversations", "Coach inbox, optional ?search= by trainee name/email/external ref"},
	{"GET", "/api/v1/conversations/:traineeId", "Full conversation with a trainee; marks coach side read"},
	{"POST", "/api/v1/conversations/:traineeId/messages", "Send a text message to a trainee"},
	{"POST", "/api/v1/conversations/:traineeId/files", "Send a file to a trainee (multipart: file, caption?)"},
	{"POST", "/api/v1/conversations/:conversationId/read", "Mark the coach side of a conversation read"},
	{"DELETE", "/api/v1/conversations/:conversationId", "Delete a conversation (coach only)"},
	{"DELETE", "/api/v1/messages/:messageId", "Delete an own message"},
	{"GET", "/api/v1/notifications", "Notification feed, ?limit="},
	{"GET", "/api/v1/notifications/unread-count", "Unread notification count"},
	{"POST", "/api/v1/notifications/read", "Mark all notifications read"},
	{"GET", "/api/v1/stats", "Coach dashboard counters"},
	{"GET", "/api/v1/trainee/chat/conversation", "Trainee's conversation with the coach; marks trainee side read"},
	{"POST", "/api/v1/trainee/chat/messages", "Trainee sends a text message to the coach"},
	{"POST", "/api/v1/trainee/chat/files", "Trainee sends a file to the coach"},
	{"GET", "/api/v1/ws", "WebSocket delivery of new-message events (?token=)"},
}

// registerDocs exposes the route table in development only.
func registerDocs(app *fiber.App, cfg *config.Config) {
	if !cfg.DocsEnabled() {
		return
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":      "CoachChatBack API",
			"env":       cfg.AppEnv,
			"endpoints": apiDocs,
		})
	})
}
