package repository

import (
	"context"
	"encoding/json"

	"github.com/saeid-a/CoachChatBack/internal/models"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type CreateNotificationInput struct {
	UserID         int64
	ConversationID int64
	MessageID      int64
	Type           string
	Title          string
	Body           string
	Data           models.NotificationData
}

func (r *NotificationRepository) Create(
	ctx context.Context,
	input CreateNotificationInput,
) (*models.Notification, error) {
	data, err := json.Marshal(input.Data)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO notifications (user_id, conversation_id, message_id, type, title, body, data, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		RETURNING id, created_at
	`

	notification := models.Notification{
		UserID:         input.UserID,
		ConversationID: input.ConversationID,
		MessageID:      input.MessageID,
		Type:           input.Type,
		Title:          input.Title,
		Body:           input.Body,
		Data:           input.Data,
	}
	err = r.db.QueryRow(ctx, query,
		input.UserID,
		input.ConversationID,
		input.MessageID,
		input.Type,
		input.Title,
		input.Body,
		data,
	).Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListForUser returns the newest notifications first. The originating
// trainee's display name and avatar are resolved at read time through the
// conversation, not denormalized beyond what data embeds.
func (r *NotificationRepository) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]models.Notification, error) {
	query := `
		SELECT
			n.id, n.user_id, n.conversation_id, n.message_id, n.type, n.title, n.body, n.data,
			n.is_read, n.read_at, n.created_at,
			t.id, t.name, t.email, t.avatar_url, t.goal
		FROM notifications n
		JOIN conversations c ON c.id = n.conversation_id
		JOIN users t ON t.id = c.trainee_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var notification models.Notification
		var trainee models.UserSummary
		var data []byte
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.ConversationID,
			&notification.MessageID,
			&notification.Type,
			&notification.Title,
			&notification.Body,
			&data,
			&notification.IsRead,
			&notification.ReadAt,
			&notification.CreatedAt,
			&trainee.ID,
			&trainee.Name,
			&trainee.Email,
			&trainee.AvatarURL,
			&trainee.Goal,
		); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &notification.Data); err != nil {
				return nil, err
			}
		}
		notification.Trainee = &trainee
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAllRead is idempotent: already-read rows are untouched.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return err
}

// MarkReadForConversation clears the recipient's unread notifications for one
// conversation, used by the read-on-fetch path.
func (r *NotificationRepository) MarkReadForConversation(
	ctx context.Context,
	userID int64,
	conversationID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND conversation_id = $2 AND is_read = FALSE
	`, userID, conversationID)
	return err
}

func (r *NotificationRepository) DeleteByConversation(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE conversation_id = $1`, conversationID)
	return err
}
