package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrSessionNotFound         = errors.New("comparison session not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrFileContentMismatch     = errors.New("file content does not match its extension")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrExtractionFailed        = errors.New("document extraction failed")
	ErrInvalidDocument         = errors.New("invalid extracted document")
	ErrSessionNotCompleted     = errors.New("comparison session has not completed")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
