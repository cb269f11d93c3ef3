package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachChatBack/internal/models"
)

const messageColumns = `id, conversation_id, sender_id, sender_role, type, content,
	file_path, file_name, file_type, file_size, mime_type, thumbnail_path,
	media_width, media_height, media_duration, is_read, read_at, status, created_at`

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func scanMessage(row pgx.Row) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := row.Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.SenderRole,
		&message.Type,
		&message.Content,
		&message.FilePath,
		&message.FileName,
		&message.FileType,
		&message.FileSize,
		&message.MimeType,
		&message.ThumbnailPath,
		&message.MediaWidth,
		&message.MediaHeight,
		&message.MediaDuration,
		&message.IsRead,
		&message.ReadAt,
		&message.Status,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) CreateText(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	senderRole string,
	content string,
) (*models.ChatMessage, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, sender_role, type, content, is_read, status)
		VALUES ($1, $2, $3, 'text', $4, FALSE, 'sent')
		RETURNING ` + messageColumns
	return scanMessage(r.db.QueryRow(ctx, query, conversationID, senderID, senderRole, content))
}

type CreateAttachmentInput struct {
	ConversationID int64
	SenderID       int64
	SenderRole     string
	Type           string
	Caption        *string
	FilePath       string
	FileName       string
	FileType       string
	FileSize       int64
	MimeType       string
}

func (r *MessageRepository) CreateAttachment(
	ctx context.Context,
	input CreateAttachmentInput,
) (*models.ChatMessage, error) {
	query := `
		INSERT INTO messages (
			conversation_id, sender_id, sender_role, type, content,
			file_path, file_name, file_type, file_size, mime_type,
			is_read, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, 'sent')
		RETURNING ` + messageColumns
	return scanMessage(r.db.QueryRow(ctx, query,
		input.ConversationID,
		input.SenderID,
		input.SenderRole,
		input.Type,
		input.Caption,
		input.FilePath,
		input.FileName,
		input.FileType,
		input.FileSize,
		input.MimeType,
	))
}

// ListByConversation returns the conversation oldest first. Creation time
// orders messages, auto-increment id breaks ties.
func (r *MessageRepository) ListByConversation(
	ctx context.Context,
	conversationID int64,
) ([]models.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkInboundRead flags every unread message sent by the other side as read.
func (r *MessageRepository) MarkInboundRead(
	ctx context.Context,
	conversationID int64,
	recipientRole string,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE, read_at = NOW(), status = 'read'
		WHERE conversation_id = $1
		  AND sender_role <> $2
		  AND is_read = FALSE
		  AND deleted_at IS NULL
	`, conversationID, recipientRole)
	return err
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID int64) (*models.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanMessage(r.db.QueryRow(ctx, query, messageID))
}

func (r *MessageRepository) Delete(ctx context.Context, messageID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	return err
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, conversationID)
	return err
}

// ListFilePaths collects every stored object path (attachments and
// thumbnails) for a conversation, for blob cleanup before a cascade delete.
func (r *MessageRepository) ListFilePaths(ctx context.Context, conversationID int64) ([]string, error) {
	query := `
		SELECT file_path, thumbnail_path
		FROM messages
		WHERE conversation_id = $1 AND file_path IS NOT NULL
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var filePath, thumbnailPath *string
		if err := rows.Scan(&filePath, &thumbnailPath); err != nil {
			return nil, err
		}
		if filePath != nil && *filePath != "" {
			paths = append(paths, *filePath)
		}
		if thumbnailPath != nil && *thumbnailPath != "" {
			paths = append(paths, *thumbnailPath)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}
