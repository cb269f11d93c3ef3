package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachChatBack/internal/services"
)

type multipartUpload struct {
	services.FileUpload
	file multipart.File
}

func (u *multipartUpload) close() {
	if u.file != nil {
		_ = u.file.Close()
	}
}

// formUpload extracts the "file" part of a multipart send-file request.
func formUpload(c *fiber.Ctx) (*multipartUpload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("file is required")
	}
	if fileHeader.Size <= 0 {
		return nil, errors.New("file is empty")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("file could not be read")
	}

	return &multipartUpload{
		FileUpload: services.FileUpload{
			Name:     fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Size:     fileHeader.Size,
			Reader:   file,
		},
		file: file,
	}, nil
}
