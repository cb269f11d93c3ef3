package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachChatBack/internal/models"
)

type stubNotificationService struct {
	notifications []models.Notification
	unread        int
	err           error
	lastLimit     int
	markedFor     int64
}

func (s *stubNotificationService) ListNotifications(_ context.Context, _ int64, limit int) ([]models.Notification, error) {
	s.lastLimit = limit
	return s.notifications, s.err
}

func (s *stubNotificationService) NotificationUnreadCount(_ context.Context, _ int64) (int, error) {
	return s.unread, s.err
}

func (s *stubNotificationService) MarkNotificationsRead(_ context.Context, userID int64) error {
	s.markedFor = userID
	return s.err
}

func newNotificationTestApp(service notificationService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "1")
		c.Locals("role", models.RoleCoach)
		return c.Next()
	})

	handler := NewNotificationHandler(service, false)
	app.Get("/notifications", handler.List)
	app.Get("/notifications/unread-count", handler.UnreadCount)
	app.Put("/notifications/read", handler.MarkAllRead)
	return app
}

func TestNotificationListLimitHandling(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{"default", "", defaultNotificationLimit},
		{"explicit", "?limit=5", 5},
		{"capped", "?limit=500", maxNotificationLimit},
		{"garbage falls back", "?limit=abc", defaultNotificationLimit},
		{"negative falls back", "?limit=-3", defaultNotificationLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubNotificationService{}
			app := newNotificationTestApp(service)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notifications"+tc.query, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if service.lastLimit != tc.wantLimit {
				t.Fatalf("expected limit %d, got %d", tc.wantLimit, service.lastLimit)
			}
		})
	}
}

func TestNotificationUnreadCount(t *testing.T) {
	app := newNotificationTestApp(&stubNotificationService{unread: 3})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	var data struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.UnreadCount != 3 {
		t.Fatalf("expected 3 unread, got %d", data.UnreadCount)
	}
}

func TestNotificationMarkAllRead(t *testing.T) {
	service := &stubNotificationService{}
	app := newNotificationTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/notifications/read", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.markedFor != 1 {
		t.Fatalf("expected mark for user 1, got %d", service.markedFor)
	}
	if env := decodeEnvelope(t, resp); env.Message != "Notifications marked as read" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}
