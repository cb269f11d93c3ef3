package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachChatBack/internal/models"
)

type stubUserDirectory struct {
	users       map[int64]*models.User
	coach       *models.User
	activeCount int
}

func (s *stubUserDirectory) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserDirectory) GetCoach(_ context.Context) (*models.User, error) {
	if s.coach == nil {
		return nil, pgx.ErrNoRows
	}
	return s.coach, nil
}

func (s *stubUserDirectory) CountActiveTraineesForCoach(_ context.Context, _ int64) (int, error) {
	return s.activeCount, nil
}

func newTestService(users *stubUserDirectory) *ChatService {
	// nil pool: these tests only exercise paths that fail before any
	// transaction is opened.
	return NewChatService(nil, nil, nil, nil, users, nil, nil)
}

func testUsers() *stubUserDirectory {
	coach := &models.User{ID: 1, Name: "Sam", Role: models.RoleCoach}
	trainee := &models.User{ID: 2, Name: "Alex", Role: models.RoleTrainee}
	return &stubUserDirectory{
		users: map[int64]*models.User{1: coach, 2: trainee},
		coach: coach,
	}
}

func TestSendTextRejectsUnknownRole(t *testing.T) {
	service := newTestService(testUsers())
	if _, err := service.SendText(context.Background(), 1, "admin", 2, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSendTextRejectsEmptyContent(t *testing.T) {
	service := newTestService(testUsers())
	if _, err := service.SendText(context.Background(), 1, models.RoleCoach, 2, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendTextRejectsOversizedContent(t *testing.T) {
	service := newTestService(testUsers())
	content := strings.Repeat("a", MaxTextLength+1)
	if _, err := service.SendText(context.Background(), 1, models.RoleCoach, 2, content); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendTextRejectsSelfConversation(t *testing.T) {
	service := newTestService(testUsers())
	if _, err := service.SendText(context.Background(), 1, models.RoleCoach, 1, "hi"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendTextRejectsUnknownSender(t *testing.T) {
	service := newTestService(&stubUserDirectory{users: map[int64]*models.User{}})
	if _, err := service.SendText(context.Background(), 99, models.RoleCoach, 2, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSendTextRejectsWrongCounterpartyRole(t *testing.T) {
	users := testUsers()
	users.users[3] = &models.User{ID: 3, Name: "Other Coach", Role: models.RoleCoach}
	service := newTestService(users)

	// A coach can only message trainees.
	if _, err := service.SendText(context.Background(), 1, models.RoleCoach, 3, "hi"); !errors.Is(err, ErrTraineeNotFound) {
		t.Fatalf("expected ErrTraineeNotFound, got %v", err)
	}
}

func TestSendFileRejectsUnsupportedType(t *testing.T) {
	service := newTestService(testUsers())
	upload := FileUpload{Name: "notes.xyz", MimeType: "text/plain", Size: 100}
	if _, err := service.SendFile(context.Background(), 2, models.RoleTrainee, 1, upload, ""); !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestSendFileRejectsOversizedDocument(t *testing.T) {
	service := newTestService(testUsers())
	upload := FileUpload{Name: "plan.pdf", MimeType: "application/pdf", Size: 120 << 20}
	if _, err := service.SendFile(context.Background(), 2, models.RoleTrainee, 1, upload, ""); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestSendFileAcceptsOversizedVideoUntilStorage(t *testing.T) {
	service := newTestService(testUsers())
	upload := FileUpload{Name: "session.mp4", MimeType: "application/octet-stream", Size: 120 << 20}

	// The 120MB video passes the size policy; with no storage configured the
	// next failure is ErrStorageUnavailable, proving video skipped the cap.
	if _, err := service.SendFile(context.Background(), 2, models.RoleTrainee, 1, upload, ""); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestSendFileRejectsOversizedCaption(t *testing.T) {
	service := newTestService(testUsers())
	upload := FileUpload{Name: "plan.pdf", MimeType: "application/pdf", Size: 100}
	caption := strings.Repeat("a", MaxTextLength+1)
	if _, err := service.SendFile(context.Background(), 2, models.RoleTrainee, 1, upload, caption); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCoachResolution(t *testing.T) {
	users := testUsers()
	service := newTestService(users)

	coach, err := service.Coach(context.Background())
	if err != nil {
		t.Fatalf("Coach: %v", err)
	}
	if coach.ID != 1 {
		t.Fatalf("expected coach id 1, got %d", coach.ID)
	}

	service = newTestService(&stubUserDirectory{users: map[int64]*models.User{}})
	if _, err := service.Coach(context.Background()); !errors.Is(err, ErrCoachNotFound) {
		t.Fatalf("expected ErrCoachNotFound, got %v", err)
	}
}

func TestFetchConversationValidation(t *testing.T) {
	service := newTestService(testUsers())

	if _, err := service.FetchConversation(context.Background(), "admin", 1, 2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown role, got %v", err)
	}
	if _, err := service.FetchConversation(context.Background(), models.RoleCoach, 1, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for identical ids, got %v", err)
	}
	if _, err := service.FetchConversation(context.Background(), models.RoleCoach, 1, 42); !errors.Is(err, ErrTraineeNotFound) {
		t.Fatalf("expected ErrTraineeNotFound, got %v", err)
	}
}

func TestListNotificationsRejectsNonPositiveLimit(t *testing.T) {
	service := newTestService(testUsers())
	if _, err := service.ListNotifications(context.Background(), 1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
