package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradelens/internal/port"
)

var _ port.ObjectStorage = (*MockObjectStorage)(nil)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}

func (m *MockObjectStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

// UploadedKeys lists the keys of every recorded Upload call, in call order.
func (m *MockObjectStorage) UploadedKeys() []string {
	var keys []string
	for _, call := range m.Calls {
		if call.Method != "Upload" {
			continue
		}
		if in, ok := call.Arguments.Get(1).(port.UploadInput); ok {
			keys = append(keys, in.Key)
		}
	}
	return keys
}
