package services

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/saeid-a/CoachChatBack/internal/models"
)

func TestClassifyAttachment(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		mimeType string
		want     string
		wantErr  error
	}{
		{"mp4 video", "workout.mp4", "video/mp4", models.MessageTypeVideo, nil},
		{"video with misreported mime", "form-check.MOV", "application/octet-stream", models.MessageTypeVideo, nil},
		{"jpeg image", "progress.jpg", "image/jpeg", models.MessageTypeImage, nil},
		{"svg image", "logo.SVG", "image/svg+xml", models.MessageTypeImage, nil},
		{"pdf", "meal-plan.pdf", "application/pdf", models.MessageTypePDF, nil},
		{"word document", "program.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", models.MessageTypeDoc, nil},
		{"spreadsheet", "macros.xlsx", "application/vnd.ms-excel", models.MessageTypeDoc, nil},
		{"archive", "plans.zip", "application/zip", models.MessageTypeFile, nil},
		{"unknown ext with video mime", "clip.raw", "video/quicktime", models.MessageTypeVideo, nil},
		{"unknown ext with octet-stream", "clip.bin", "application/octet-stream", models.MessageTypeVideo, nil},
		{"unknown ext with text mime", "notes.xyz", "text/plain", "", ErrUnsupportedMedia},
		{"no extension no mime", "README", "", "", ErrUnsupportedMedia},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ClassifyAttachment(tc.filename, tc.mimeType)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ClassifyAttachment(%q, %q) error = %v, want %v", tc.filename, tc.mimeType, err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("ClassifyAttachment(%q, %q) = %q, want %q", tc.filename, tc.mimeType, got, tc.want)
			}
		})
	}
}

func TestValidateAttachmentSize(t *testing.T) {
	const oversized = int64(120 << 20)

	if err := ValidateAttachmentSize(models.MessageTypeVideo, oversized); err != nil {
		t.Fatalf("expected no ceiling for video, got %v", err)
	}
	if err := ValidateAttachmentSize(models.MessageTypePDF, oversized); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge for oversized pdf, got %v", err)
	}
	if err := ValidateAttachmentSize(models.MessageTypeImage, MaxAttachmentBytes); err != nil {
		t.Fatalf("expected exactly 100MB to pass, got %v", err)
	}
	if err := ValidateAttachmentSize(models.MessageTypeImage, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty file, got %v", err)
	}
}

func TestAttachmentFolder(t *testing.T) {
	cases := map[string]string{
		models.MessageTypeImage: "chat/images",
		models.MessageTypeVideo: "chat/videos",
		models.MessageTypePDF:   "chat/pdfs",
		models.MessageTypeDoc:   "chat/documents",
		models.MessageTypeFile:  "chat/files",
	}
	for kind, want := range cases {
		if got := AttachmentFolder(kind); got != want {
			t.Errorf("AttachmentFolder(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestGenerateObjectPath(t *testing.T) {
	pattern := regexp.MustCompile(`^chat/videos/\d+_[a-z0-9]{10}\.mp4$`)
	path := GenerateObjectPath(models.MessageTypeVideo, "My Workout.MP4")
	if !pattern.MatchString(path) {
		t.Fatalf("unexpected object path: %q", path)
	}

	other := GenerateObjectPath(models.MessageTypeVideo, "My Workout.MP4")
	if path == other {
		t.Fatalf("expected unique object paths, got %q twice", path)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 50); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}

	long := strings.Repeat("a", 120)
	got := TruncateText(long, 100)
	if got != strings.Repeat("a", 100)+"..." {
		t.Fatalf("unexpected truncation: %q", got)
	}

	// Multi-byte content must be cut on rune boundaries.
	unicode := strings.Repeat("å", 60)
	got = TruncateText(unicode, 50)
	if got != strings.Repeat("å", 50)+"..." {
		t.Fatalf("unexpected unicode truncation: %q", got)
	}
}

func TestNotificationBody(t *testing.T) {
	content := strings.Repeat("x", 150)
	text := &models.ChatMessage{Type: models.MessageTypeText, Content: &content}
	if got := NotificationBody(text); got != strings.Repeat("x", 100)+"..." {
		t.Fatalf("unexpected text body: %q", got)
	}

	image := &models.ChatMessage{Type: models.MessageTypeImage}
	if got := NotificationBody(image); got != "📷 Image" {
		t.Fatalf("unexpected image body: %q", got)
	}
}

func TestNotificationKind(t *testing.T) {
	if got := NotificationKind(models.MessageTypeText); got != models.NotificationNewMessage {
		t.Fatalf("unexpected kind for text: %q", got)
	}
	if got := NotificationKind(models.MessageTypeVideo); got != models.NotificationFileReceived {
		t.Fatalf("unexpected kind for video: %q", got)
	}
}

func TestHumanFileSize(t *testing.T) {
	cases := map[int64]string{
		512:       "512 B",
		2048:      "2.0 KB",
		100 << 20: "100.0 MB",
		3 << 30:   "3.0 GB",
	}
	for size, want := range cases {
		if got := HumanFileSize(size); got != want {
			t.Errorf("HumanFileSize(%d) = %q, want %q", size, got, want)
		}
	}
}
