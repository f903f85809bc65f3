// Package local stores objects under a base URL through viant/afs. Any scheme
// afs understands works; file:// is the usual choice for single-node runs.
package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"tradelens/internal/domain"
	"tradelens/internal/port"
)

type afsStorage struct {
	fs      afs.Service
	baseURL string
}

// NewStorage creates an ObjectStorage rooted at baseURL. Buckets become
// top-level folders under it.
func NewStorage(baseURL string) (port.ObjectStorage, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("local storage: base URL is required")
	}
	return &afsStorage{fs: afs.New(), baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *afsStorage) objectURL(bucket, key string) string {
	return url.Join(s.baseURL, bucket, strings.TrimLeft(key, "/"))
}

func (s *afsStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	location := s.objectURL(input.Bucket, input.Key)
	if err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, input.Body); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	return &port.UploadOutput{Location: location}, nil
}

func (s *afsStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	location := s.objectURL(bucket, key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("local download: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("local download: %w", err)
	}
	return data, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *afsStorage) Delete(ctx context.Context, bucket, key string) error {
	location := s.objectURL(bucket, key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}
