package service

import (
	"context"
	"fmt"
	"time"

	"docflow/internal/audit"
	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"
)

// StatusAvailable labels documents that need no validation.
const StatusAvailable = "Available"

// DownloadResult carries a presigned download URL and the file details.
type DownloadResult struct {
	DocumentID    string `json:"document_id"`
	DownloadURL   string `json:"download_url"`
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type"`
	SizeBytes     int64  `json:"size_bytes"`
	ExpiryMinutes int    `json:"expiry_minutes"`
	Status        string `json:"status"`
}

// DownloadService issues download URLs for stored documents.
type DownloadService interface {
	GetDownloadURL(ctx context.Context, documentID string) (*DownloadResult, error)
}

type downloadService struct {
	base
	store  storage.Storage
	docs   repository.DocumentRepository
	expiry time.Duration
}

// NewDownloadService constructs a DownloadService issuing URLs valid for expiry.
func NewDownloadService(store storage.Storage, docs repository.DocumentRepository, expiry time.Duration, opts ...Option) DownloadService {
	return &downloadService{
		base:   newBase(opts),
		store:  store,
		docs:   docs,
		expiry: expiry,
	}
}

func (s *downloadService) GetDownloadURL(ctx context.Context, documentID string) (*DownloadResult, error) {
	res, actor, err := s.download(ctx, documentID)
	s.record(ctx, audit.OpDownload, documentID, actor, "issue download url", err)
	return res, err
}

func (s *downloadService) download(ctx context.Context, documentID string) (*DownloadResult, string, error) {
	if err := requiredID("document_id", documentID); err != nil {
		return nil, "", err
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, "", fromRepo(err, "load document")
	}

	meta, err := s.store.Metadata(ctx, doc.StorageKey)
	if err != nil {
		return nil, doc.CreatedBy, fromRepo(err, "object metadata")
	}
	if !meta.Exists {
		return nil, doc.CreatedBy, fmt.Errorf("%w: %s", ErrObjectMissing, doc.StorageKey)
	}

	url, err := s.store.PresignDownload(ctx, doc.StorageKey, s.expiry)
	if err != nil {
		return nil, doc.CreatedBy, fromRepo(err, "presign download")
	}

	size := doc.SizeBytes
	if meta.SizeBytes != nil {
		size = *meta.SizeBytes
	}
	status := doc.ValidationStatus.String()
	if doc.ValidationStatus == model.ValidationNone {
		status = StatusAvailable
	}
	return &DownloadResult{
		DocumentID:    doc.ID,
		DownloadURL:   url,
		FileName:      doc.Name,
		MimeType:      doc.MimeType,
		SizeBytes:     size,
		ExpiryMinutes: expiryMinutes(s.expiry),
		Status:        status,
	}, doc.CreatedBy, nil
}
