package port

import (
	"context"
	"io"
)

// Object metadata keys attached to stored documents and reports.
const (
	MetadataSessionID    = "session-id"
	MetadataDocumentType = "document-type"
	MetadataReportFormat = "report-format"
)

// UploadInput describes one object write. Metadata is stored alongside the
// object where the backend supports it and ignored otherwise.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// UploadOutput reports where the object landed.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage holds uploaded trade documents and archived comparison
// reports. Download of a missing key returns domain.ErrNotFound; Delete of a
// missing key succeeds.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}
