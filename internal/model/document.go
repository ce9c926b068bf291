package model

import (
	"io"
	"time"
)

// PDFMimeType is the only content type accepted for upload.
const PDFMimeType = "application/pdf"

// Document represents a stored file in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// StoragePath is internal and never serialized to clients.
type Document struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"-"`
	Size        int64     `json:"filesize"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadInput is the validated-at-the-boundary description of one upload.
// DeclaredMimeType and DeclaredSize come from the client and are not trusted
// for the stored record; only the bytes actually read from Content count.
type UploadInput struct {
	Content          io.Reader
	OriginalFilename string
	DeclaredMimeType string
	DeclaredSize     int64
}
