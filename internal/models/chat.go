package models

import "time"

const (
	ConversationActive = "active"

	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypePDF   = "pdf"
	MessageTypeDoc   = "doc"
	MessageTypeFile  = "file"

	MessageStatusSent = "sent"
	MessageStatusRead = "read"
)

// Conversation is the single row kept per (coach, trainee) pair. The row is
// soft-deleted and restored, never re-created under a new id.
type Conversation struct {
	ID                 int64      `json:"id"`
	CoachID            int64      `json:"coach_id"`
	TraineeID          int64      `json:"trainee_id"`
	LastMessage        *string    `json:"last_message,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessageSender  *string    `json:"last_message_sender,omitempty"`
	CoachUnreadCount   int        `json:"coach_unread_count"`
	TraineeUnreadCount int        `json:"trainee_unread_count"`
	Status             string     `json:"status"`
	DeletedAt          *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UnreadFor returns the unread counter belonging to the given side.
func (c *Conversation) UnreadFor(role string) int {
	if role == RoleCoach {
		return c.CoachUnreadCount
	}
	return c.TraineeUnreadCount
}

// ParticipantID returns the user id occupying the given side of the pair.
func (c *Conversation) ParticipantID(role string) int64 {
	if role == RoleCoach {
		return c.CoachID
	}
	return c.TraineeID
}

type ChatMessage struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	SenderRole     string     `json:"sender_role"`
	Type           string     `json:"type"`
	Content        *string    `json:"content,omitempty"`
	FilePath       *string    `json:"file_path,omitempty"`
	FileName       *string    `json:"file_name,omitempty"`
	FileType       *string    `json:"file_type,omitempty"`
	FileSize       *int64     `json:"file_size,omitempty"`
	MimeType       *string    `json:"mime_type,omitempty"`
	ThumbnailPath  *string    `json:"thumbnail_path,omitempty"`
	MediaWidth     *int       `json:"media_width,omitempty"`
	MediaHeight    *int       `json:"media_height,omitempty"`
	MediaDuration  *float64   `json:"media_duration,omitempty"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`

	// Derived at read time, never persisted.
	FileURL       string `json:"file_url,omitempty"`
	FileSizeHuman string `json:"file_size_human,omitempty"`
}

// HasAttachment reports whether the message carries stored bytes.
func (m *ChatMessage) HasAttachment() bool {
	return m.FilePath != nil && *m.FilePath != ""
}

// ConversationSummary is the coach inbox row: conversation plus the trainee's
// identity and a presence placeholder, without message bodies.
type ConversationSummary struct {
	Conversation
	Trainee  *UserSummary `json:"trainee,omitempty"`
	Presence string       `json:"presence"`
}

// ConversationView is the full conversation payload returned on fetch.
type ConversationView struct {
	Conversation *Conversation `json:"conversation"`
	Messages     []ChatMessage `json:"messages"`
	Counterparty *UserSummary  `json:"counterparty,omitempty"`
}

type ChatStats struct {
	TotalConversations int `json:"total_conversations"`
	TotalUnread        int `json:"total_unread"`
	ActiveTrainees     int `json:"active_trainees"`
}
