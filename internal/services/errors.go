package services

import "errors"

var (
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidInput         = errors.New("invalid input")
	ErrCoachNotFound        = errors.New("coach not found")
	ErrTraineeNotFound      = errors.New("trainee not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrPayloadTooLarge      = errors.New("attachment exceeds the size limit")
	ErrUnsupportedMedia     = errors.New("unsupported attachment type")
	ErrStorageUnavailable   = errors.New("storage service is not configured")
)
