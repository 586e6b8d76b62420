package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"docflow/internal/audit"
	"docflow/internal/model"
	"docflow/internal/repository"
	repoMocks "docflow/internal/repository/mocks"
	"docflow/internal/storage"
	storeMocks "docflow/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadService_GetDownloadURL(t *testing.T) {
	ctx := context.Background()
	expiry := 15 * time.Minute
	flowID := "flow-1"
	size := int64(4096)

	baseDoc := func(status model.ValidationStatus) *model.Document {
		d := &model.Document{
			ID:               "d-1",
			Name:             "March Report.pdf",
			MimeType:         "application/pdf",
			SizeBytes:        2048,
			StorageKey:       "documents/k.pdf",
			CreatedBy:        "user-1",
			ValidationStatus: status,
		}
		if status != model.ValidationNone {
			d.ValidationFlowID = &flowID
		}
		return d
	}

	tests := []struct {
		name       string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantStatus string
		wantSize   int64
	}{
		{
			name: "available without validation",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d-1").Return(baseDoc(model.ValidationNone), nil)
				mStore.On("Metadata", ctx, "documents/k.pdf").Return(storage.ObjectMetadata{Exists: true, SizeBytes: &size}, nil)
				mStore.On("PresignDownload", ctx, "documents/k.pdf", expiry).Return("https://dl", nil)
			},
			wantStatus: StatusAvailable,
			wantSize:   4096,
		},
		{
			name: "pending reports status and falls back to declared size",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d-1").Return(baseDoc(model.ValidationPending), nil)
				mStore.On("Metadata", ctx, "documents/k.pdf").Return(storage.ObjectMetadata{Exists: true}, nil)
				mStore.On("PresignDownload", ctx, "documents/k.pdf", expiry).Return("https://dl", nil)
			},
			wantStatus: "Pending",
			wantSize:   2048,
		},
		{
			name: "object missing",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d-1").Return(baseDoc(model.ValidationNone), nil)
				mStore.On("Metadata", ctx, "documents/k.pdf").Return(storage.ObjectMetadata{}, nil)
			},
			wantErr: ErrObjectMissing,
		},
		{
			name: "object vanishes before presign",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d-1").Return(baseDoc(model.ValidationApproved), nil)
				mStore.On("Metadata", ctx, "documents/k.pdf").Return(storage.ObjectMetadata{Exists: true}, nil)
				mStore.On("PresignDownload", ctx, "documents/k.pdf", expiry).Return("", storage.ErrNotFound)
			},
			wantErr: ErrObjectMissing,
		},
		{
			name: "metadata error",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d-1").Return(baseDoc(model.ValidationNone), nil)
				mStore.On("Metadata", ctx, "documents/k.pdf").Return(storage.ObjectMetadata{}, errors.New("timeout"))
			},
			wantErr: errors.New("timeout"),
		},
		{
			name: "document not found",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "d-1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			sink := &recordingSink{}
			svc := NewDownloadService(mStore, mRepo, expiry, WithAuditSink(sink))

			tt.setupMocks(mStore, mRepo)

			res, err := svc.GetDownloadURL(ctx, "d-1")

			switch {
			case errors.Is(tt.wantErr, ErrObjectMissing), errors.Is(tt.wantErr, ErrNotFound):
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			case tt.wantErr != nil:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, "https://dl", res.DownloadURL)
				assert.Equal(t, "March Report.pdf", res.FileName)
				assert.Equal(t, "application/pdf", res.MimeType)
				assert.Equal(t, tt.wantSize, res.SizeBytes)
				assert.Equal(t, 15, res.ExpiryMinutes)
				assert.Equal(t, tt.wantStatus, res.Status)
			}

			ev := sink.last()
			assert.Equal(t, audit.OpDownload, ev.Operation)
			assert.Equal(t, tt.wantErr == nil, ev.Success)
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDownloadService_RejectsEmptyID(t *testing.T) {
	svc := NewDownloadService(new(storeMocks.MockStorage), new(repoMocks.MockDocumentRepository), time.Minute)
	_, err := svc.GetDownloadURL(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
