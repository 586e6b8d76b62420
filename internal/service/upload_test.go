package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"docflow/internal/audit"
	"docflow/internal/config"
	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/repository/memory"
	repoMocks "docflow/internal/repository/mocks"
	storeMocks "docflow/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "7f9c1f8e-1111-4a3b-9c1d-2e3f4a5b6c7d"

func testPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFileSizeBytes: 10 << 20,
		AllowedMimeTypes: []string{"application/pdf", "image/png", "text/plain"},
		URLExpiry:        30 * time.Minute,
	}
}

func validInitiate() InitiateUploadRequest {
	return InitiateUploadRequest{
		CompanyID:  testCompanyID,
		EntityType: "Invoice",
		EntityID:   "INV-1",
		FileName:   "March Report.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  2048,
		UploadedBy: "user-1",
	}
}

func newUploadFixture(t *testing.T) (UploadService, *memory.Store, *storeMocks.MockStorage, *recordingSink) {
	t.Helper()
	store := memory.NewStore()
	mStore := new(storeMocks.MockStorage)
	sink := &recordingSink{}
	svc := NewUploadService(mStore, store.Documents(), store, testPolicy(),
		WithClock(fixedClock), WithIDGenerator(sequentialIDs()), WithAuditSink(sink))
	return svc, store, mStore, sink
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.UploadConfig{
		MaxFileSizeBytes:          1024,
		AllowedMimeTypes:          []string{"text/plain"},
		PresignedURLExpiryMinutes: 15,
	})
	assert.Equal(t, int64(1024), p.MaxFileSizeBytes)
	assert.Equal(t, []string{"text/plain"}, p.AllowedMimeTypes)
	assert.Equal(t, 15*time.Minute, p.URLExpiry)

	p = PolicyFromConfig(config.UploadConfig{PresignedURLExpiryMinutes: 0})
	assert.Equal(t, 30*time.Minute, p.URLExpiry)
}

func TestUploadService_InitiateUpload_NoValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, mStore, sink := newUploadFixture(t)

	wantKey := "documents/company-7f9c1f8e11114a3b9c1d2e3f4a5b6c7d/invoice/INV-1-march-report-00000000000040008000000000000001.pdf"
	mStore.On("PresignUpload", ctx, wantKey, "application/pdf", int64(2048), 30*time.Minute).
		Return("https://store.example/upload?sig=1", nil)

	res, err := svc.InitiateUpload(ctx, validInitiate())

	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", res.DocumentID)
	assert.Equal(t, wantKey, res.StorageKey)
	assert.Equal(t, "https://store.example/upload?sig=1", res.UploadURL)
	assert.Equal(t, 30, res.ExpiryMinutes)
	assert.Equal(t, StatusUploaded, res.Status)

	doc, err := store.Documents().FindByID(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationNone, doc.ValidationStatus)
	assert.Nil(t, doc.ValidationFlowID)
	assert.Equal(t, "user-1", doc.CreatedBy)
	assert.Equal(t, fixedNow, doc.CreatedAt)

	ev := sink.last()
	assert.Equal(t, audit.OpInitiateUpload, ev.Operation)
	assert.Equal(t, res.DocumentID, ev.DocumentID)
	assert.True(t, ev.Success)
	mStore.AssertExpectations(t)
}

func TestUploadService_InitiateUpload_WithValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("single step", func(t *testing.T) {
		svc, store, mStore, _ := newUploadFixture(t)
		mStore.On("PresignUpload", ctx, mock.Anything, "application/pdf", int64(2048), 30*time.Minute).Return("u", nil)

		req := validInitiate()
		req.RequiresValidation = true
		req.UploadedBy = ""
		res, err := svc.InitiateUpload(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, StatusUploadPending, res.Status)

		doc, err := store.Documents().FindByID(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationPending, doc.ValidationStatus)
		assert.Equal(t, "system", doc.CreatedBy)
		require.NotNil(t, doc.ValidationFlowID)

		flow, err := store.Flows().FindByID(ctx, *doc.ValidationFlowID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, flow.DocumentID)
		assert.Equal(t, int64(1), flow.Version)
		require.Len(t, flow.Steps, 1)
		assert.Equal(t, 1, flow.Steps[0].Order)
		assert.Equal(t, model.StepPending, flow.Steps[0].Status)
	})

	t.Run("one step per approver", func(t *testing.T) {
		svc, store, mStore, _ := newUploadFixture(t)
		mStore.On("PresignUpload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)

		req := validInitiate()
		req.RequiresValidation = true
		req.Approvers = []string{"lead", "manager", "cfo"}
		res, err := svc.InitiateUpload(ctx, req)
		require.NoError(t, err)

		doc, err := store.Documents().FindByID(ctx, res.DocumentID)
		require.NoError(t, err)
		flow, err := store.Flows().FindByID(ctx, *doc.ValidationFlowID)
		require.NoError(t, err)
		require.Len(t, flow.Steps, 3)
		for i, approver := range req.Approvers {
			assert.Equal(t, i+1, flow.Steps[i].Order)
			assert.Equal(t, approver, flow.Steps[i].ApproverID)
		}
	})
}

func TestUploadService_InitiateUpload_InvalidRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *InitiateUploadRequest)
		wantMsg string
	}{
		{"missing company", func(r *InitiateUploadRequest) { r.CompanyID = "" }, "company_id is required"},
		{"company not uuid", func(r *InitiateUploadRequest) { r.CompanyID = "acme" }, "company_id must be a valid UUID"},
		{"missing entity type", func(r *InitiateUploadRequest) { r.EntityType = " " }, "entity_type is required"},
		{"entity id too long", func(r *InitiateUploadRequest) { r.EntityID = strings.Repeat("x", 101) }, "entity_id must be at most 100 characters"},
		{"missing file name", func(r *InitiateUploadRequest) { r.FileName = "" }, "file_name is required"},
		{"file name too long", func(r *InitiateUploadRequest) { r.FileName = strings.Repeat("a", 252) + ".pdf" }, "file_name must be at most 255 characters"},
		{"file name with path", func(r *InitiateUploadRequest) { r.FileName = "../etc/passwd" }, "path separators"},
		{"missing mime type", func(r *InitiateUploadRequest) { r.MimeType = "" }, "mime_type is required"},
		{"zero size", func(r *InitiateUploadRequest) { r.SizeBytes = 0 }, "size_bytes must be greater than zero"},
		{"uploader too long", func(r *InitiateUploadRequest) { r.UploadedBy = strings.Repeat("u", 101) }, "uploaded_by"},
		{"approvers without validation", func(r *InitiateUploadRequest) { r.Approvers = []string{"lead"} }, "approvers require requires_validation"},
		{"blank approver", func(r *InitiateUploadRequest) {
			r.RequiresValidation = true
			r.Approvers = []string{"lead", ""}
		}, "approvers[1] is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, mStore, sink := newUploadFixture(t)
			req := validInitiate()
			tt.mutate(&req)

			res, err := svc.InitiateUpload(context.Background(), req)

			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, res)
			assert.False(t, sink.last().Success)
			mStore.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadService_InitiateUpload_Policy(t *testing.T) {
	ctx := context.Background()

	t.Run("too large", func(t *testing.T) {
		svc, store, mStore, _ := newUploadFixture(t)
		req := validInitiate()
		req.SizeBytes = 11 << 20

		_, err := svc.InitiateUpload(ctx, req)

		assert.ErrorIs(t, err, ErrPolicyViolation)
		assert.Contains(t, err.Error(), "exceeds the maximum of 10MiB")
		assertNoDocuments(t, store)
		mStore.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("300MiB against a 100MiB limit", func(t *testing.T) {
		store := memory.NewStore()
		p := testPolicy()
		p.MaxFileSizeBytes = 100 << 20
		svc := NewUploadService(new(storeMocks.MockStorage), store.Documents(), store, p)
		req := validInitiate()
		req.SizeBytes = 300 << 20
		req.RequiresValidation = true

		_, err := svc.InitiateUpload(ctx, req)

		assert.ErrorIs(t, err, ErrPolicyViolation)
		assert.Contains(t, err.Error(), "file size 300MiB exceeds the maximum of 100MiB")
		assertNoDocuments(t, store)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		svc, _, mStore, _ := newUploadFixture(t)
		mStore.On("PresignUpload", ctx, mock.Anything, mock.Anything, int64(10<<20), mock.Anything).Return("u", nil)
		req := validInitiate()
		req.SizeBytes = 10 << 20

		_, err := svc.InitiateUpload(ctx, req)
		assert.NoError(t, err)
	})

	t.Run("mime type not allowed", func(t *testing.T) {
		svc, _, _, _ := newUploadFixture(t)
		req := validInitiate()
		req.MimeType = "application/x-msdownload"

		_, err := svc.InitiateUpload(ctx, req)
		assert.ErrorIs(t, err, ErrPolicyViolation)
	})

	t.Run("mime type with parameters and mixed case", func(t *testing.T) {
		svc, _, mStore, _ := newUploadFixture(t)
		mStore.On("PresignUpload", ctx, mock.Anything, "Text/Plain; charset=utf-8", mock.Anything, mock.Anything).Return("u", nil)
		req := validInitiate()
		req.FileName = "notes.txt"
		req.MimeType = "Text/Plain; charset=utf-8"

		_, err := svc.InitiateUpload(ctx, req)
		assert.NoError(t, err)
	})

	t.Run("empty allow-list rejects everything", func(t *testing.T) {
		store := memory.NewStore()
		p := testPolicy()
		p.AllowedMimeTypes = nil
		svc := NewUploadService(new(storeMocks.MockStorage), store.Documents(), store, p)

		_, err := svc.InitiateUpload(ctx, validInitiate())
		assert.ErrorIs(t, err, ErrPolicyViolation)
	})
}

func TestUploadService_InitiateUpload_RepeatedRequestsGetDistinctKeys(t *testing.T) {
	ctx := context.Background()
	svc, store, mStore, _ := newUploadFixture(t)
	mStore.On("PresignUpload", ctx, mock.Anything, "application/pdf", int64(2048), 30*time.Minute).Return("u", nil)

	first, err := svc.InitiateUpload(ctx, validInitiate())
	require.NoError(t, err)
	second, err := svc.InitiateUpload(ctx, validInitiate())
	require.NoError(t, err)

	assert.NotEqual(t, first.DocumentID, second.DocumentID)
	assert.NotEqual(t, first.StorageKey, second.StorageKey)

	page, err := store.Documents().List(ctx, repository.DocumentFilter{}, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	keys := []string{page.Items[0].StorageKey, page.Items[1].StorageKey}
	assert.ElementsMatch(t, []string{first.StorageKey, second.StorageKey}, keys)
}

func TestUploadService_InitiateUpload_StorageKeyClash(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	mTx := new(repoMocks.MockTransactor)
	mStore := new(storeMocks.MockStorage)
	svc := NewUploadService(mStore, mRepo, mTx, testPolicy())

	mRepo.On("ExistsByStorageKey", ctx, mock.Anything).Return(true, nil)

	res, err := svc.InitiateUpload(ctx, validInitiate())

	assert.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, res)
	mTx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestUploadService_InitiateUpload_TxFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	mFlows := new(repoMocks.MockValidationFlowRepository)
	mTx := &repoMocks.MockTransactor{}
	mTx.Repos.Documents = mRepo
	mTx.Repos.Flows = mFlows
	mStore := new(storeMocks.MockStorage)
	svc := NewUploadService(mStore, mRepo, mTx, testPolicy())

	mRepo.On("ExistsByStorageKey", ctx, mock.Anything).Return(false, nil)
	mTx.On("WithinTx", ctx).Return(nil)
	mFlows.On("Create", ctx, mock.AnythingOfType("*model.ValidationFlow")).Return(nil)
	mRepo.On("Create", ctx, mock.AnythingOfType("*model.Document")).Return(nil, errors.New("db fail"))

	req := validInitiate()
	req.RequiresValidation = true
	_, err := svc.InitiateUpload(ctx, req)

	assert.ErrorContains(t, err, "persist document: db fail")
	mStore.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mFlows.AssertExpectations(t)
}

func TestUploadService_InitiateUpload_PresignFailureKeepsDocument(t *testing.T) {
	ctx := context.Background()
	svc, store, mStore, _ := newUploadFixture(t)
	mStore.On("PresignUpload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("signing key unavailable"))

	_, err := svc.InitiateUpload(ctx, validInitiate())
	assert.ErrorContains(t, err, "presign upload")

	_, err = store.Documents().FindByID(ctx, "00000000-0000-4000-8000-000000000001")
	assert.NoError(t, err)
}

func TestUploadService_InitiateUpload_AuditFailureIgnored(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mStore := new(storeMocks.MockStorage)
	sink := &recordingSink{err: errSinkDown}
	svc := NewUploadService(mStore, store.Documents(), store, testPolicy(), WithAuditSink(sink))
	mStore.On("PresignUpload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)

	res, err := svc.InitiateUpload(ctx, validInitiate())

	require.NoError(t, err)
	assert.NotEmpty(t, res.DocumentID)
	assert.Len(t, sink.events, 1)
}

func assertNoDocuments(t *testing.T, store *memory.Store) {
	t.Helper()
	page, err := store.Documents().List(context.Background(), repository.DocumentFilter{}, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
}

// racingDocuments runs race once, right after the first document read.
type racingDocuments struct {
	repository.DocumentRepository
	once sync.Once
	race func()
}

func (r *racingDocuments) FindByID(ctx context.Context, id string) (*model.Document, error) {
	d, err := r.DocumentRepository.FindByID(ctx, id)
	r.once.Do(r.race)
	return d, err
}

func TestUploadService_CompleteUpload_DoesNotOverwriteDecision(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		decide     func(svc ValidationService) error
		wantStatus model.ValidationStatus
	}{
		{
			name: "approve commits mid-completion",
			decide: func(svc ValidationService) error {
				_, err := svc.Approve(ctx, ApproveRequest{DocumentID: "d1", ApproverID: "u1"})
				return err
			},
			wantStatus: model.ValidationApproved,
		},
		{
			name: "reject commits mid-completion",
			decide: func(svc ValidationService) error {
				_, err := svc.Reject(ctx, RejectRequest{DocumentID: "d1", RejecterID: "u1", Reason: "unreadable"})
				return err
			},
			wantStatus: model.ValidationRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			seedDocument(t, store, "d1", model.ValidationPending, 1)
			validation := newValidationFixture(store)

			var decideErr error
			docs := &racingDocuments{
				DocumentRepository: store.Documents(),
				race:               func() { decideErr = tt.decide(validation) },
			}
			mStore := new(storeMocks.MockStorage)
			mStore.On("Exists", ctx, "documents/d1.pdf").Return(true, nil)
			mStore.On("PresignDownload", ctx, "documents/d1.pdf", 30*time.Minute).Return("https://dl", nil)
			svc := NewUploadService(mStore, docs, store, testPolicy(), WithClock(fixedClock))

			_, err := svc.CompleteUpload(ctx, "d1")

			require.NoError(t, err)
			require.NoError(t, decideErr)

			doc, flow := loadFlow(t, store, "d1")
			assert.Equal(t, tt.wantStatus, doc.ValidationStatus)
			assert.Equal(t, flow.Status, doc.ValidationStatus)
			assert.Equal(t, "flow-d1", *doc.ValidationFlowID)
		})
	}
}

func TestUploadService_CompleteUpload(t *testing.T) {
	ctx := context.Background()
	flowID := "flow-1"

	tests := []struct {
		name       string
		doc        *model.Document
		setupMocks func(mStore *storeMocks.MockStorage)
		wantErr    error
		wantStatus string
	}{
		{
			name: "no validation",
			doc:  &model.Document{ID: "d-1", StorageKey: "k/1", ValidationStatus: model.ValidationNone},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Exists", ctx, "k/1").Return(true, nil)
				mStore.On("PresignDownload", ctx, "k/1", 30*time.Minute).Return("https://dl", nil)
			},
			wantStatus: StatusCompleted,
		},
		{
			name: "pending validation",
			doc:  &model.Document{ID: "d-1", StorageKey: "k/1", ValidationStatus: model.ValidationPending, ValidationFlowID: &flowID},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Exists", ctx, "k/1").Return(true, nil)
				mStore.On("PresignDownload", ctx, "k/1", 30*time.Minute).Return("https://dl", nil)
			},
			wantStatus: StatusPendingValidation,
		},
		{
			name: "rejected",
			doc:  &model.Document{ID: "d-1", StorageKey: "k/1", ValidationStatus: model.ValidationRejected, ValidationFlowID: &flowID},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Exists", ctx, "k/1").Return(true, nil)
				mStore.On("PresignDownload", ctx, "k/1", 30*time.Minute).Return("https://dl", nil)
			},
			wantStatus: StatusRejected,
		},
		{
			name: "approved",
			doc:  &model.Document{ID: "d-1", StorageKey: "k/1", ValidationStatus: model.ValidationApproved, ValidationFlowID: &flowID},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Exists", ctx, "k/1").Return(true, nil)
				mStore.On("PresignDownload", ctx, "k/1", 30*time.Minute).Return("https://dl", nil)
			},
			wantStatus: StatusCompleted,
		},
		{
			name: "object never uploaded",
			doc:  &model.Document{ID: "d-1", StorageKey: "k/1", ValidationStatus: model.ValidationNone},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Exists", ctx, "k/1").Return(false, nil)
			},
			wantErr: ErrObjectMissing,
		},
		{
			name:       "document not found",
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			if tt.doc != nil {
				_, err := store.Documents().Create(ctx, tt.doc)
				require.NoError(t, err)
			}
			mStore := new(storeMocks.MockStorage)
			tt.setupMocks(mStore)
			svc := NewUploadService(mStore, store.Documents(), store, testPolicy(), WithClock(fixedClock))

			res, err := svc.CompleteUpload(ctx, "d-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "d-1", res.DocumentID)
				assert.Equal(t, "https://dl", res.DownloadURL)
				assert.Equal(t, "k/1", res.StorageKey)
				assert.Equal(t, 30, res.ExpiryMinutes)
				assert.Equal(t, tt.wantStatus, res.Status)

				stored, err := store.Documents().FindByID(ctx, "d-1")
				require.NoError(t, err)
				assert.Equal(t, fixedNow, stored.UpdatedAt)
			}
			mStore.AssertExpectations(t)
		})
	}
}
