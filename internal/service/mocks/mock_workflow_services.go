package mocks

import (
	"context"

	"docflow/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) InitiateUpload(ctx context.Context, req service.InitiateUploadRequest) (*service.InitiateUploadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InitiateUploadResult), args.Error(1)
}

func (m *MockUploadService) CompleteUpload(ctx context.Context, documentID string) (*service.CompleteUploadResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompleteUploadResult), args.Error(1)
}

type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) Approve(ctx context.Context, req service.ApproveRequest) (*service.OperationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OperationResult), args.Error(1)
}

func (m *MockValidationService) Reject(ctx context.Context, req service.RejectRequest) (*service.OperationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OperationResult), args.Error(1)
}

func (m *MockValidationService) GetValidationStatus(ctx context.Context, documentID string) (*service.ValidationStatusResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ValidationStatusResult), args.Error(1)
}

type MockDownloadService struct {
	mock.Mock
}

func (m *MockDownloadService) GetDownloadURL(ctx context.Context, documentID string) (*service.DownloadResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}
