package mocks

import (
	"context"
	"time"

	"docflow/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) PresignUpload(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, size, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) Metadata(ctx context.Context, key string) (storage.ObjectMetadata, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.ObjectMetadata), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
