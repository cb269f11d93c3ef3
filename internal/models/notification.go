package models

import "time"

const (
	NotificationNewMessage   = "new_message"
	NotificationFileReceived = "file_received"
)

// NotificationData is the structured payload stored alongside a notification
// so clients can route taps without an extra lookup.
type NotificationData struct {
	SenderID    int64  `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	MessageType string `json:"message_type"`
	TraineeID   int64  `json:"trainee_id"`
}

// Notification is a denormalized "you have a new message" row. It lives
// independently of the message that triggered it and is only removed when the
// whole conversation goes away.
type Notification struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	ConversationID int64            `json:"conversation_id"`
	MessageID      int64            `json:"message_id"`
	Type           string           `json:"type"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	Data           NotificationData `json:"data"`
	IsRead         bool             `json:"is_read"`
	ReadAt         *time.Time       `json:"read_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`

	// Resolved at read time from the conversation's trainee.
	Trainee *UserSummary `json:"trainee,omitempty"`
}
