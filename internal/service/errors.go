package service

import "errors"

// Service errors. Store failures are wrapped so that errors.Is matches both the
// service sentinel and the underlying cause.
var (
	// ErrNotFound: no record with the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrIntegrity: a live record points at a blob that no longer exists.
	// Callers surface it exactly like ErrNotFound.
	ErrIntegrity = errors.New("document content missing")

	// ErrStorageWrite: the blob store could not write or remove content.
	ErrStorageWrite = errors.New("document storage failed")

	// ErrPersistence: the metadata store could not be read or written.
	ErrPersistence = errors.New("document metadata persistence failed")
)

// ValidationError is a client fault detected before any store is touched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

var (
	ErrUnsupportedType  = &ValidationError{Reason: "unsupported type"}
	ErrTooLarge         = &ValidationError{Reason: "too large"}
	ErrInvalidID        = &ValidationError{Reason: "invalid id"}
	ErrReaderNil        = &ValidationError{Reason: "file content is required"}
	ErrFilenameRequired = &ValidationError{Reason: "filename is required"}
)
