package services

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/saeid-a/CoachChatBack/internal/models"
)

const (
	// MaxTextLength bounds text message content.
	MaxTextLength = 5000

	// MaxAttachmentBytes caps every attachment type except video.
	MaxAttachmentBytes = 100 << 20

	previewLimit          = 50
	notificationBodyLimit = 100
)

var videoExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "avi": {}, "wmv": {}, "mkv": {}, "webm": {},
	"3gp": {}, "flv": {}, "m4v": {}, "mpeg": {}, "mpg": {}, "ts": {}, "mts": {},
}

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "bmp": {}, "svg": {},
}

var documentExtensions = map[string]struct{}{
	"doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {}, "txt": {},
}

var archiveExtensions = map[string]struct{}{
	"zip": {}, "rar": {}, "7z": {},
}

// ClassifyAttachment derives the message type from the filename extension
// first and the MIME type second. The extension is authoritative for video
// because browsers and proxies often report video uploads as generic binary;
// for the same reason an unknown extension with a video or octet-stream MIME
// still classifies as video.
func ClassifyAttachment(filename, mimeType string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	switch {
	case extIn(ext, videoExtensions):
		return models.MessageTypeVideo, nil
	case extIn(ext, imageExtensions):
		return models.MessageTypeImage, nil
	case ext == "pdf":
		return models.MessageTypePDF, nil
	case extIn(ext, documentExtensions):
		return models.MessageTypeDoc, nil
	case extIn(ext, archiveExtensions):
		return models.MessageTypeFile, nil
	}

	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mime, "video/") || mime == "application/octet-stream" {
		return models.MessageTypeVideo, nil
	}

	return "", ErrUnsupportedMedia
}

func extIn(ext string, set map[string]struct{}) bool {
	_, ok := set[ext]
	return ok
}

// ValidateAttachmentSize enforces the size policy: video is uncapped,
// everything else stops at 100 MB.
func ValidateAttachmentSize(kind string, size int64) error {
	if size <= 0 {
		return ErrInvalidInput
	}
	if kind == models.MessageTypeVideo {
		return nil
	}
	if size > MaxAttachmentBytes {
		return ErrPayloadTooLarge
	}
	return nil
}

// AttachmentFolder maps a message type to its storage folder.
func AttachmentFolder(kind string) string {
	switch kind {
	case models.MessageTypeImage:
		return "chat/images"
	case models.MessageTypeVideo:
		return "chat/videos"
	case models.MessageTypePDF:
		return "chat/pdfs"
	case models.MessageTypeDoc:
		return "chat/documents"
	default:
		return "chat/files"
	}
}

// AttachmentLabel is the human label used for previews and notifications in
// place of a caption.
func AttachmentLabel(kind string) string {
	switch kind {
	case models.MessageTypeImage:
		return "📷 Image"
	case models.MessageTypeVideo:
		return "🎥 Video"
	case models.MessageTypePDF:
		return "📄 PDF"
	case models.MessageTypeDoc:
		return "📄 Document"
	default:
		return "📎 File"
	}
}

const objectNameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateObjectPath builds the stored path for an upload:
// {folder}/{unixSeconds}_{10-char-random}.{ext}. The random suffix keeps
// concurrent uploads from colliding.
func GenerateObjectPath(kind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%d_%s%s", time.Now().Unix(), randomString(10), ext)
	return AttachmentFolder(kind) + "/" + name
}

func randomString(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// timestamp-derived suffix rather than panicking mid-request.
		return fmt.Sprintf("%010d", time.Now().UnixNano()%1e10)
	}
	for i := range buf {
		buf[i] = objectNameAlphabet[int(buf[i])%len(objectNameAlphabet)]
	}
	return string(buf)
}

// TruncateText shortens s to at most limit runes, appending an ellipsis when
// anything was cut.
func TruncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// PreviewText is the short last-message preview stored on the conversation.
func PreviewText(content string) string {
	return TruncateText(content, previewLimit)
}

// NotificationBody derives the notification body for a message: a truncated
// text preview, or the attachment's type label.
func NotificationBody(message *models.ChatMessage) string {
	if message.Type == models.MessageTypeText && message.Content != nil {
		return TruncateText(*message.Content, notificationBodyLimit)
	}
	return AttachmentLabel(message.Type)
}

// NotificationKind picks the notification type for a message.
func NotificationKind(messageType string) string {
	if messageType == models.MessageTypeText {
		return models.NotificationNewMessage
	}
	return models.NotificationFileReceived
}

// HumanFileSize renders a byte count for display.
func HumanFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// FormatChatTimestamp renders timestamps for websocket events.
func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
