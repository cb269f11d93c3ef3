package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/CoachChatBack/internal/models"
	"github.com/saeid-a/CoachChatBack/internal/repository"
)

type userDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetCoach(ctx context.Context) (*models.User, error)
	CountActiveTraineesForCoach(ctx context.Context, coachID int64) (int, error)
}

// MessagePusher delivers a committed message to the recipient's open
// realtime connections. Delivery is best effort; the database row is
// authoritative.
type MessagePusher interface {
	PushMessage(recipientID int64, message *models.ChatMessage)
}

// FileUpload carries an inbound attachment before classification.
type FileUpload struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

type ChatService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	notificationRepo *repository.NotificationRepository
	userRepo         userDirectory
	storage          StorageService
	pusher           MessagePusher
}

func NewChatService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	notificationRepo *repository.NotificationRepository,
	userRepo userDirectory,
	storage StorageService,
	pusher MessagePusher,
) *ChatService {
	return &ChatService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		storage:          storage,
		pusher:           pusher,
	}
}

// Coach resolves the singleton coach account every trainee converses with.
func (s *ChatService) Coach(ctx context.Context) (*models.User, error) {
	coach, err := s.userRepo.GetCoach(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

func validRole(role string) bool {
	return role == models.RoleCoach || role == models.RoleTrainee
}

// resolveParties loads and role-checks both sides of a send. The returned
// pair is always (coach, trainee) regardless of who is sending.
func (s *ChatService) resolveParties(
	ctx context.Context,
	senderID int64,
	senderRole string,
	counterpartyID int64,
) (sender *models.User, counterparty *models.User, err error) {
	if counterpartyID <= 0 || counterpartyID == senderID {
		return nil, nil, ErrInvalidInput
	}

	sender, err = s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrForbidden
		}
		return nil, nil, err
	}
	if sender.Role != senderRole {
		return nil, nil, ErrForbidden
	}

	counterparty, err = s.userRepo.GetByID(ctx, counterpartyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, notFoundForRole(models.OppositeRole(senderRole))
		}
		return nil, nil, err
	}
	if counterparty.Role != models.OppositeRole(senderRole) {
		return nil, nil, notFoundForRole(models.OppositeRole(senderRole))
	}

	return sender, counterparty, nil
}

func notFoundForRole(role string) error {
	if role == models.RoleCoach {
		return ErrCoachNotFound
	}
	return ErrTraineeNotFound
}

func pairIDs(senderID int64, senderRole string, counterpartyID int64) (coachID, traineeID int64) {
	if senderRole == models.RoleCoach {
		return senderID, counterpartyID
	}
	return counterpartyID, senderID
}

// SendText appends a text message: find-or-create (or restore) the
// conversation, append the row, refresh the preview, bump the recipient's
// unread counter, and fan out one notification — all in one transaction.
func (s *ChatService) SendText(
	ctx context.Context,
	senderID int64,
	senderRole string,
	counterpartyID int64,
	content string,
) (*models.ChatMessage, error) {
	if !validRole(senderRole) {
		return nil, ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" || len([]rune(content)) > MaxTextLength {
		return nil, ErrInvalidInput
	}

	sender, counterparty, err := s.resolveParties(ctx, senderID, senderRole, counterpartyID)
	if err != nil {
		return nil, err
	}

	message, err := s.deliver(ctx, sender, counterparty, func(ctx context.Context, tx pgx.Tx, conversationID int64) (*models.ChatMessage, error) {
		return repository.NewMessageRepository(tx).CreateText(ctx, conversationID, senderID, senderRole, content)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// SendFile uploads the attachment bytes first, outside the transaction, so a
// slow or failed upload never holds a database lock. If the transaction then
// fails, the orphaned blob is removed best-effort.
func (s *ChatService) SendFile(
	ctx context.Context,
	senderID int64,
	senderRole string,
	counterpartyID int64,
	upload FileUpload,
	caption string,
) (*models.ChatMessage, error) {
	if !validRole(senderRole) {
		return nil, ErrForbidden
	}
	caption = strings.TrimSpace(caption)
	if len([]rune(caption)) > MaxTextLength {
		return nil, ErrInvalidInput
	}

	kind, err := ClassifyAttachment(upload.Name, upload.MimeType)
	if err != nil {
		return nil, err
	}
	if err := ValidateAttachmentSize(kind, upload.Size); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	sender, counterparty, err := s.resolveParties(ctx, senderID, senderRole, counterpartyID)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := ValidateAttachmentSize(kind, int64(len(content))); err != nil {
		return nil, err
	}

	objectPath := GenerateObjectPath(kind, upload.Name)
	if err := s.storage.Upload(ctx, objectPath, content, upload.MimeType); err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	var captionPtr *string
	if caption != "" {
		captionPtr = &caption
	}
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(upload.Name)), ".")

	message, err := s.deliver(ctx, sender, counterparty, func(ctx context.Context, tx pgx.Tx, conversationID int64) (*models.ChatMessage, error) {
		return repository.NewMessageRepository(tx).CreateAttachment(ctx, repository.CreateAttachmentInput{
			ConversationID: conversationID,
			SenderID:       senderID,
			SenderRole:     senderRole,
			Type:           kind,
			Caption:        captionPtr,
			FilePath:       objectPath,
			FileName:       upload.Name,
			FileType:       fileType,
			FileSize:       int64(len(content)),
			MimeType:       upload.MimeType,
		})
	})
	if err != nil {
		s.cleanupOrphan(objectPath)
		return nil, err
	}

	return message, nil
}

// deliver runs the shared send pipeline inside one transaction, with the
// conversation row locked for its duration.
func (s *ChatService) deliver(
	ctx context.Context,
	sender *models.User,
	counterparty *models.User,
	appendMessage func(ctx context.Context, tx pgx.Tx, conversationID int64) (*models.ChatMessage, error),
) (*models.ChatMessage, error) {
	coachID, traineeID := pairIDs(sender.ID, sender.Role, counterparty.ID)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	conversation, err := txConversationRepo.FindOrCreateForUpdate(ctx, coachID, traineeID)
	if err != nil {
		return nil, err
	}

	message, err := appendMessage(ctx, tx, conversation.ID)
	if err != nil {
		return nil, err
	}

	preview := AttachmentLabel(message.Type)
	if message.Type == models.MessageTypeText && message.Content != nil {
		preview = PreviewText(*message.Content)
	}
	if err := txConversationRepo.UpdateLastMessage(ctx, conversation.ID, preview, sender.Role, message.CreatedAt); err != nil {
		return nil, err
	}

	recipientRole := models.OppositeRole(sender.Role)
	if err := txConversationRepo.IncrementUnread(ctx, conversation.ID, recipientRole); err != nil {
		return nil, err
	}

	_, err = txNotificationRepo.Create(ctx, repository.CreateNotificationInput{
		UserID:         counterparty.ID,
		ConversationID: conversation.ID,
		MessageID:      message.ID,
		Type:           NotificationKind(message.Type),
		Title:          "New message from " + sender.Name,
		Body:           NotificationBody(message),
		Data: models.NotificationData{
			SenderID:    sender.ID,
			SenderName:  sender.Name,
			MessageType: message.Type,
			TraineeID:   traineeID,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// Decorate before pushing so realtime events carry the public URL and
	// human size, not the bare storage path.
	s.decorateMessage(message)

	if s.pusher != nil {
		s.pusher.PushMessage(counterparty.ID, message)
	}

	return message, nil
}

func (s *ChatService) cleanupOrphan(objectPath string) {
	if s.storage == nil {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(cleanupCtx, objectPath); err != nil {
		log.Printf("chat: orphaned attachment %s not cleaned up: %v", objectPath, err)
	}
}

// FetchConversation loads the full conversation between the pair from the
// viewer's side. Opening the view implies having seen it: the viewer's
// inbound messages are marked read, their counter resets, and matching
// notifications are cleared, all in the fetch transaction.
func (s *ChatService) FetchConversation(
	ctx context.Context,
	viewerRole string,
	coachID int64,
	traineeID int64,
) (*models.ConversationView, error) {
	if !validRole(viewerRole) {
		return nil, ErrForbidden
	}
	if coachID <= 0 || traineeID <= 0 || coachID == traineeID {
		return nil, ErrInvalidInput
	}

	counterpartyID := traineeID
	if viewerRole == models.RoleTrainee {
		counterpartyID = coachID
	}
	counterparty, err := s.userRepo.GetByID(ctx, counterpartyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundForRole(models.OppositeRole(viewerRole))
		}
		return nil, err
	}
	if counterparty.Role != models.OppositeRole(viewerRole) {
		return nil, notFoundForRole(models.OppositeRole(viewerRole))
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)
	txMessageRepo := repository.NewMessageRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	conversation, err := txConversationRepo.FindOrCreateForUpdate(ctx, coachID, traineeID)
	if err != nil {
		return nil, err
	}

	messages, err := txMessageRepo.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}

	if err := txMessageRepo.MarkInboundRead(ctx, conversation.ID, viewerRole); err != nil {
		return nil, err
	}
	if err := txConversationRepo.ResetUnread(ctx, conversation.ID, viewerRole); err != nil {
		return nil, err
	}

	viewerID := conversation.ParticipantID(viewerRole)
	if err := txNotificationRepo.MarkReadForConversation(ctx, viewerID, conversation.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range messages {
		if messages[i].SenderRole != viewerRole && !messages[i].IsRead {
			messages[i].IsRead = true
			messages[i].Status = models.MessageStatusRead
			messages[i].ReadAt = &now
		}
		s.decorateMessage(&messages[i])
	}
	if viewerRole == models.RoleCoach {
		conversation.CoachUnreadCount = 0
	} else {
		conversation.TraineeUnreadCount = 0
	}

	return &models.ConversationView{
		Conversation: conversation,
		Messages:     messages,
		Counterparty: counterparty.Summary(),
	}, nil
}

func (s *ChatService) decorateMessage(message *models.ChatMessage) {
	if !message.HasAttachment() {
		return
	}
	if s.storage != nil {
		message.FileURL = s.storage.PublicURL(*message.FilePath)
	}
	if message.FileSize != nil {
		message.FileSizeHuman = HumanFileSize(*message.FileSize)
	}
}

// ListConversationsForCoach returns inbox summaries without message bodies.
func (s *ChatService) ListConversationsForCoach(
	ctx context.Context,
	coachID int64,
	search string,
) ([]models.ConversationSummary, error) {
	summaries, err := s.conversationRepo.ListForCoach(ctx, coachID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		// Presence tracking lives in the realtime layer; the inbox only
		// carries a placeholder.
		summaries[i].Presence = "offline"
	}
	return summaries, nil
}

// MarkConversationRead flags the actor's inbound messages read and resets
// their unread counter.
func (s *ChatService) MarkConversationRead(
	ctx context.Context,
	conversationID int64,
	actorID int64,
	actorRole string,
) error {
	if !validRole(actorRole) {
		return ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)

	conversation, err := txConversationRepo.GetByIDForUpdate(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConversationNotFound
		}
		return err
	}
	if conversation.ParticipantID(actorRole) != actorID {
		return ErrForbidden
	}

	if err := repository.NewMessageRepository(tx).MarkInboundRead(ctx, conversationID, actorRole); err != nil {
		return err
	}
	if err := txConversationRepo.ResetUnread(ctx, conversationID, actorRole); err != nil {
		return err
	}
	if err := repository.NewNotificationRepository(tx).MarkReadForConversation(ctx, actorID, conversationID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteMessage removes a message and its attachment bytes. Only the original
// sender may delete; anyone else leaves the row and blob untouched.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID int64, actorID int64) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.SenderID != actorID {
		return ErrForbidden
	}

	if message.HasAttachment() {
		if s.storage == nil {
			return ErrStorageUnavailable
		}
		if err := s.storage.Delete(ctx, *message.FilePath); err != nil {
			return fmt.Errorf("delete attachment: %w", err)
		}
		if message.ThumbnailPath != nil && *message.ThumbnailPath != "" {
			if err := s.storage.Delete(ctx, *message.ThumbnailPath); err != nil {
				log.Printf("chat: thumbnail %s not cleaned up: %v", *message.ThumbnailPath, err)
			}
		}
	}

	return s.messageRepo.Delete(ctx, messageID)
}

// DeleteConversation is coach-only. It removes the conversation's messages
// and notifications, soft-deletes the conversation row, and then clears the
// stored blobs best-effort once the transaction has committed.
func (s *ChatService) DeleteConversation(ctx context.Context, conversationID int64, requestingCoachID int64) error {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConversationNotFound
		}
		return err
	}
	if conversation.CoachID != requestingCoachID {
		return ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)

	// Paths are collected inside the transaction so a message committed after
	// an earlier listing cannot leave its blob behind.
	paths, err := txMessageRepo.ListFilePaths(ctx, conversationID)
	if err != nil {
		return err
	}

	if err := txMessageRepo.DeleteByConversation(ctx, conversationID); err != nil {
		return err
	}
	if err := repository.NewNotificationRepository(tx).DeleteByConversation(ctx, conversationID); err != nil {
		return err
	}
	if err := repository.NewConversationRepository(tx).SoftDelete(ctx, conversationID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	for _, path := range paths {
		s.cleanupOrphan(path)
	}
	return nil
}

// Stats summarizes the coach dashboard counters.
func (s *ChatService) Stats(ctx context.Context, coachID int64) (*models.ChatStats, error) {
	total, unread, err := s.conversationRepo.StatsForCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	active, err := s.userRepo.CountActiveTraineesForCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return &models.ChatStats{
		TotalConversations: total,
		TotalUnread:        unread,
		ActiveTrainees:     active,
	}, nil
}

func (s *ChatService) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		return nil, ErrInvalidInput
	}
	return s.notificationRepo.ListForUser(ctx, userID, limit)
}

func (s *ChatService) NotificationUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}

func (s *ChatService) MarkNotificationsRead(ctx context.Context, userID int64) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
