package chatws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/saeid-a/CoachChatBack/internal/models"
)

func receivePayload(t *testing.T, client *Client) []byte {
	t.Helper()
	select {
	case payload := <-client.send:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hub delivery")
		return nil
	}
}

func TestHubDeliversToRecipientAndSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	recipient := NewClient(hub, nil, "2")
	sender := NewClient(hub, nil, "1")

	// Register blocks on an unbuffered channel, so both clients are in the
	// hub's map before PushMessage enqueues the event.
	hub.Register(recipient)
	hub.Register(sender)

	content := "keep your elbows in"
	hub.PushMessage(2, &models.ChatMessage{
		ID:             10,
		ConversationID: 7,
		SenderID:       1,
		Type:           models.MessageTypeText,
		Content:        &content,
		CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})

	var event Event
	if err := json.Unmarshal(receivePayload(t, recipient), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != "message" || event.MessageID != "10" || event.ConversationID != "7" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Content == nil || *event.Content != content {
		t.Fatalf("content not carried: %+v", event.Content)
	}
	if event.Timestamp != "2026-08-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp: %q", event.Timestamp)
	}

	// The sender's own sockets get an echo for multi-device sync.
	if err := json.Unmarshal(receivePayload(t, sender), &event); err != nil {
		t.Fatalf("decode sender echo: %v", err)
	}
	if event.RecipientID != "2" || event.SenderID != "1" {
		t.Fatalf("unexpected echo: %+v", event)
	}
}

func TestHubDropsOfflineRecipient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := NewClient(hub, nil, "1")
	hub.Register(sender)

	// Recipient has no open sockets; only the sender echo should arrive.
	hub.PushMessage(99, &models.ChatMessage{
		ID:             11,
		ConversationID: 7,
		SenderID:       1,
		Type:           models.MessageTypeText,
		CreatedAt:      time.Now(),
	})

	var event Event
	if err := json.Unmarshal(receivePayload(t, sender), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.RecipientID != "99" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, "2")
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, open := <-client.send:
		if open {
			t.Fatal("expected send channel closed after unregister")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestHubSupportsMultipleSocketsPerUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := NewClient(hub, nil, "2")
	second := NewClient(hub, nil, "2")
	hub.Register(first)
	hub.Register(second)

	hub.PushMessage(2, &models.ChatMessage{
		ID:             12,
		ConversationID: 7,
		SenderID:       1,
		Type:           models.MessageTypeImage,
		CreatedAt:      time.Now(),
	})

	receivePayload(t, first)
	receivePayload(t, second)
}
