package comparison

import "errors"

var (
	ErrInvalidFieldTable    = errors.New("invalid comparison field table")
	ErrUnknownField         = errors.New("unknown canonical field")
	ErrDocumentTypeMismatch = errors.New("comparison requires one invoice and one bill of lading")
)
