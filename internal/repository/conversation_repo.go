package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachChatBack/internal/models"
)

const conversationColumns = `id, coach_id, trainee_id, last_message, last_message_at, last_message_sender,
	coach_unread_count, trainee_unread_count, status, deleted_at, created_at, updated_at`

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var conversation models.Conversation
	err := row.Scan(
		&conversation.ID,
		&conversation.CoachID,
		&conversation.TraineeID,
		&conversation.LastMessage,
		&conversation.LastMessageAt,
		&conversation.LastMessageSender,
		&conversation.CoachUnreadCount,
		&conversation.TraineeUnreadCount,
		&conversation.Status,
		&conversation.DeletedAt,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindOrCreateForUpdate returns the conversation for the pair, creating or
// restoring it as needed, with the row locked for the rest of the transaction.
//
// The insert uses ON CONFLICT DO NOTHING rather than letting the unique
// constraint raise: a raised violation would abort the surrounding
// transaction, so the losing side of a concurrent create re-selects the
// winner's row instead. A uniqueness conflict is never surfaced to callers.
func (r *ConversationRepository) FindOrCreateForUpdate(
	ctx context.Context,
	coachID int64,
	traineeID int64,
) (*models.Conversation, error) {
	conversation, err := r.getByPairForUpdate(ctx, coachID, traineeID)
	if err == nil {
		return r.restoreIfDeleted(ctx, conversation)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	insert := `
		INSERT INTO conversations (coach_id, trainee_id, status)
		VALUES ($1, $2, 'active')
		ON CONFLICT (coach_id, trainee_id) DO NOTHING
		RETURNING ` + conversationColumns

	conversation, err = scanConversation(r.db.QueryRow(ctx, insert, coachID, traineeID))
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Lost the race: a concurrent creator committed first. Use its row.
	conversation, err = r.getByPairForUpdate(ctx, coachID, traineeID)
	if err != nil {
		return nil, err
	}
	return r.restoreIfDeleted(ctx, conversation)
}

func (r *ConversationRepository) getByPairForUpdate(
	ctx context.Context,
	coachID int64,
	traineeID int64,
) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE coach_id = $1 AND trainee_id = $2
		FOR UPDATE
	`
	return scanConversation(r.db.QueryRow(ctx, query, coachID, traineeID))
}

// restoreIfDeleted brings a soft-deleted pair back with both counters reset,
// so post-restore counters reflect only messages sent after the restore.
func (r *ConversationRepository) restoreIfDeleted(
	ctx context.Context,
	conversation *models.Conversation,
) (*models.Conversation, error) {
	if conversation.DeletedAt == nil {
		return conversation, nil
	}

	query := `
		UPDATE conversations
		SET deleted_at = NULL,
		    status = 'active',
		    coach_unread_count = 0,
		    trainee_unread_count = 0,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + conversationColumns
	return scanConversation(r.db.QueryRow(ctx, query, conversation.ID))
}

func (r *ConversationRepository) GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanConversation(r.db.QueryRow(ctx, query, conversationID))
}

// GetByIDForUpdate locks the conversation row so concurrent counter mutations
// serialize instead of losing updates.
func (r *ConversationRepository) GetByIDForUpdate(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`
	return scanConversation(r.db.QueryRow(ctx, query, conversationID))
}

// UpdateLastMessage overwrites the preview fields. GREATEST keeps
// last_message_at monotonically non-decreasing; counters are untouched.
func (r *ConversationRepository) UpdateLastMessage(
	ctx context.Context,
	conversationID int64,
	preview string,
	senderRole string,
	at time.Time,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message = $2,
		    last_message_sender = $3,
		    last_message_at = GREATEST(COALESCE(last_message_at, 'epoch'::timestamptz), $4),
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, preview, senderRole, at)
	return err
}

// IncrementUnread bumps the counter belonging to forRole (the recipient side).
func (r *ConversationRepository) IncrementUnread(ctx context.Context, conversationID int64, forRole string) error {
	column := "trainee_unread_count"
	if forRole == models.RoleCoach {
		column = "coach_unread_count"
	}
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET `+column+` = `+column+` + 1, updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

func (r *ConversationRepository) ResetUnread(ctx context.Context, conversationID int64, forRole string) error {
	column := "trainee_unread_count"
	if forRole == models.RoleCoach {
		column = "coach_unread_count"
	}
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET `+column+` = 0, updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

// ListForCoach returns the coach inbox ordered by recent activity. A search
// term matches the trainee's name or email case-insensitively, or an
// external-reference identifier literally.
func (r *ConversationRepository) ListForCoach(
	ctx context.Context,
	coachID int64,
	search string,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id, c.coach_id, c.trainee_id, c.last_message, c.last_message_at, c.last_message_sender,
			c.coach_unread_count, c.trainee_unread_count, c.status, c.deleted_at, c.created_at, c.updated_at,
			u.id, u.name, u.email, u.avatar_url, u.goal
		FROM conversations c
		JOIN users u ON u.id = c.trainee_id
		WHERE c.coach_id = $1
		  AND c.deleted_at IS NULL
		  AND (
			$2 = ''
			OR u.name ILIKE '%' || $2 || '%'
			OR u.email ILIKE '%' || $2 || '%'
			OR u.external_ref = $2
		  )
		ORDER BY c.last_message_at DESC NULLS LAST, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, coachID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var trainee models.UserSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.CoachID,
			&summary.TraineeID,
			&summary.LastMessage,
			&summary.LastMessageAt,
			&summary.LastMessageSender,
			&summary.CoachUnreadCount,
			&summary.TraineeUnreadCount,
			&summary.Status,
			&summary.DeletedAt,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&trainee.ID,
			&trainee.Name,
			&trainee.Email,
			&trainee.AvatarURL,
			&trainee.Goal,
		); err != nil {
			return nil, err
		}
		summary.Trainee = &trainee
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// SoftDelete marks the conversation deleted. Message and notification cleanup
// is the caller's responsibility and happens in the same transaction.
func (r *ConversationRepository) SoftDelete(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, conversationID)
	return err
}

// StatsForCoach returns the conversation count and the unread sum across all
// of the coach's live conversations.
func (r *ConversationRepository) StatsForCoach(ctx context.Context, coachID int64) (int, int, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(coach_unread_count), 0)
		FROM conversations
		WHERE coach_id = $1 AND deleted_at IS NULL
	`
	var total, unread int
	if err := r.db.QueryRow(ctx, query, coachID).Scan(&total, &unread); err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}
