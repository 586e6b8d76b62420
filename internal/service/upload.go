package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"docflow/internal/audit"
	"docflow/internal/config"
	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"
)

const (
	maxIDLength       = 100
	maxFileNameLength = 255
	defaultUploader   = "system"

	StatusUploadPending     = "Pending"
	StatusUploaded          = "Uploaded"
	StatusPendingValidation = "PendingValidation"
	StatusRejected          = "Rejected"
	StatusCompleted         = "Completed"
)

// UploadPolicy limits what may be uploaded and how long issued URLs stay valid.
type UploadPolicy struct {
	MaxFileSizeBytes int64
	AllowedMimeTypes []string
	URLExpiry        time.Duration
}

// PolicyFromConfig builds an UploadPolicy from the upload configuration.
func PolicyFromConfig(c config.UploadConfig) UploadPolicy {
	return UploadPolicy{
		MaxFileSizeBytes: c.MaxFileSizeBytes,
		AllowedMimeTypes: c.AllowedMimeTypes,
		URLExpiry:        c.PresignedURLExpiry(),
	}
}

// allows reports whether the media type of contentType is in the allow-list.
// Parameters such as charset are ignored and the comparison is case-insensitive.
func (p UploadPolicy) allows(contentType string) bool {
	mt := mediaType(contentType)
	for _, a := range p.AllowedMimeTypes {
		if mediaType(a) == mt {
			return true
		}
	}
	return false
}

func mediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// InitiateUploadRequest describes a file the caller is about to upload.
type InitiateUploadRequest struct {
	CompanyID          string   `json:"company_id"`
	EntityType         string   `json:"entity_type"`
	EntityID           string   `json:"entity_id"`
	FileName           string   `json:"file_name"`
	MimeType           string   `json:"mime_type"`
	SizeBytes          int64    `json:"size_bytes"`
	RequiresValidation bool     `json:"requires_validation"`
	Approvers          []string `json:"approvers,omitempty"`
	UploadedBy         string   `json:"uploaded_by,omitempty"`
}

// InitiateUploadResult carries the presigned upload URL for a new document.
type InitiateUploadResult struct {
	DocumentID    string `json:"document_id"`
	UploadURL     string `json:"upload_url"`
	StorageKey    string `json:"storage_key"`
	ExpiryMinutes int    `json:"expiry_minutes"`
	Status        string `json:"status"`
}

// CompleteUploadResult carries a download URL for a confirmed upload.
type CompleteUploadResult struct {
	DocumentID    string `json:"document_id"`
	DownloadURL   string `json:"download_url"`
	StorageKey    string `json:"storage_key"`
	ExpiryMinutes int    `json:"expiry_minutes"`
	Status        string `json:"status"`
}

// UploadService drives the two-phase upload: issue a URL, then confirm the bytes arrived.
type UploadService interface {
	// InitiateUpload validates the request, persists the document (and its
	// validation flow when requested) and returns a presigned upload URL.
	InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResult, error)

	// CompleteUpload confirms the object exists in storage and returns a presigned download URL.
	CompleteUpload(ctx context.Context, documentID string) (*CompleteUploadResult, error)
}

type uploadService struct {
	base
	store  storage.Storage
	docs   repository.DocumentRepository
	tx     repository.Transactor
	policy UploadPolicy
}

// NewUploadService constructs an UploadService.
func NewUploadService(store storage.Storage, docs repository.DocumentRepository, tx repository.Transactor, policy UploadPolicy, opts ...Option) UploadService {
	return &uploadService{
		base:   newBase(opts),
		store:  store,
		docs:   docs,
		tx:     tx,
		policy: policy,
	}
}

func (s *uploadService) InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResult, error) {
	res, docID, err := s.initiate(ctx, req)
	s.record(ctx, audit.OpInitiateUpload, docID, uploader(req.UploadedBy),
		fmt.Sprintf("initiate upload of %q (%s, %d bytes)", req.FileName, req.MimeType, req.SizeBytes), err)
	return res, err
}

func (s *uploadService) initiate(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResult, string, error) {
	if err := validateInitiate(req); err != nil {
		return nil, "", err
	}
	if err := s.checkPolicy(req); err != nil {
		return nil, "", err
	}

	now := s.now()
	doc := &model.Document{
		ID:               s.newID(),
		CompanyID:        uuid.MustParse(req.CompanyID).String(),
		EntityType:       strings.TrimSpace(req.EntityType),
		EntityID:         strings.TrimSpace(req.EntityID),
		Name:             req.FileName,
		MimeType:         req.MimeType,
		SizeBytes:        req.SizeBytes,
		CreatedBy:        uploader(req.UploadedBy),
		CreatedAt:        now,
		UpdatedAt:        now,
		ValidationStatus: model.ValidationNone,
	}
	doc.StorageKey = buildStorageKey(doc.CompanyID, doc.EntityType, doc.EntityID, doc.Name, doc.ID)

	taken, err := s.docs.ExistsByStorageKey(ctx, doc.StorageKey)
	if err != nil {
		return nil, doc.ID, fmt.Errorf("check storage key: %w", err)
	}
	if taken {
		return nil, doc.ID, fmt.Errorf("%w: storage key %s already in use", ErrConflict, doc.StorageKey)
	}

	var flow *model.ValidationFlow
	if req.RequiresValidation {
		flow = s.newFlow(req.Approvers, now)
		doc.AttachFlow(flow)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if flow != nil {
			if err := repos.Flows.Create(ctx, flow); err != nil {
				return err
			}
		}
		_, err := repos.Documents.Create(ctx, doc)
		return err
	})
	if err != nil {
		return nil, doc.ID, fromRepo(err, "persist document")
	}

	url, err := s.store.PresignUpload(ctx, doc.StorageKey, doc.MimeType, doc.SizeBytes, s.policy.URLExpiry)
	if err != nil {
		return nil, doc.ID, fmt.Errorf("presign upload: %w", err)
	}

	status := StatusUploaded
	if doc.RequiresValidation() {
		status = StatusUploadPending
	}
	s.logger.InfoContext(ctx, "upload_initiated",
		"document_id", doc.ID,
		"storage_key", doc.StorageKey,
		"validation_status", doc.ValidationStatus.String(),
	)
	return &InitiateUploadResult{
		DocumentID:    doc.ID,
		UploadURL:     url,
		StorageKey:    doc.StorageKey,
		ExpiryMinutes: expiryMinutes(s.policy.URLExpiry),
		Status:        status,
	}, doc.ID, nil
}

// newFlow creates a pending flow with one step per approver, or a single
// unassigned step when no approvers are given.
func (s *uploadService) newFlow(approvers []string, now time.Time) *model.ValidationFlow {
	flow := &model.ValidationFlow{
		ID:        s.newID(),
		Status:    model.ValidationPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(approvers) == 0 {
		approvers = []string{""}
	}
	for i, a := range approvers {
		flow.Steps = append(flow.Steps, model.ValidationStep{
			ID:         s.newID(),
			FlowID:     flow.ID,
			Order:      i + 1,
			Status:     model.StepPending,
			ApproverID: strings.TrimSpace(a),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return flow
}

func validateInitiate(req InitiateUploadRequest) error {
	var errs []error
	if strings.TrimSpace(req.CompanyID) == "" {
		errs = append(errs, errors.New("company_id is required"))
	} else if _, err := uuid.Parse(req.CompanyID); err != nil {
		errs = append(errs, errors.New("company_id must be a valid UUID"))
	}
	errs = append(errs, checkID("entity_type", req.EntityType), checkID("entity_id", req.EntityID))

	switch {
	case strings.TrimSpace(req.FileName) == "":
		errs = append(errs, errors.New("file_name is required"))
	case len(req.FileName) > maxFileNameLength:
		errs = append(errs, fmt.Errorf("file_name must be at most %d characters", maxFileNameLength))
	case strings.ContainsAny(req.FileName, `/\`):
		errs = append(errs, errors.New("file_name must not contain path separators"))
	}
	if strings.TrimSpace(req.MimeType) == "" {
		errs = append(errs, errors.New("mime_type is required"))
	}
	if req.SizeBytes <= 0 {
		errs = append(errs, errors.New("size_bytes must be greater than zero"))
	}
	if len(req.UploadedBy) > maxIDLength {
		errs = append(errs, fmt.Errorf("uploaded_by must be at most %d characters", maxIDLength))
	}
	if len(req.Approvers) > 0 && !req.RequiresValidation {
		errs = append(errs, errors.New("approvers require requires_validation"))
	}
	for i, a := range req.Approvers {
		if err := checkID(fmt.Sprintf("approvers[%d]", i), a); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	return nil
}

func (s *uploadService) checkPolicy(req InitiateUploadRequest) error {
	if s.policy.MaxFileSizeBytes > 0 && req.SizeBytes > s.policy.MaxFileSizeBytes {
		return fmt.Errorf("%w: file size %s exceeds the maximum of %s", ErrPolicyViolation,
			units.BytesSize(float64(req.SizeBytes)), units.BytesSize(float64(s.policy.MaxFileSizeBytes)))
	}
	if !s.policy.allows(req.MimeType) {
		return fmt.Errorf("%w: mime type %q is not allowed", ErrPolicyViolation, req.MimeType)
	}
	return nil
}

func (s *uploadService) CompleteUpload(ctx context.Context, documentID string) (*CompleteUploadResult, error) {
	res, actor, err := s.complete(ctx, documentID)
	s.record(ctx, audit.OpCompleteUpload, documentID, actor, "complete upload", err)
	return res, err
}

func (s *uploadService) complete(ctx context.Context, documentID string) (*CompleteUploadResult, string, error) {
	if err := requiredID("document_id", documentID); err != nil {
		return nil, "", err
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, "", fromRepo(err, "load document")
	}

	ok, err := s.store.Exists(ctx, doc.StorageKey)
	if err != nil {
		return nil, doc.CreatedBy, fmt.Errorf("check object: %w", err)
	}
	if !ok {
		return nil, doc.CreatedBy, fmt.Errorf("%w: %s", ErrObjectMissing, doc.StorageKey)
	}

	// Validation columns belong to the approve/reject transaction; only the timestamp moves here.
	doc.UpdatedAt = s.now()
	if err := s.docs.Touch(ctx, doc.ID, doc.UpdatedAt); err != nil {
		return nil, doc.CreatedBy, fromRepo(err, "update document")
	}

	url, err := s.store.PresignDownload(ctx, doc.StorageKey, s.policy.URLExpiry)
	if err != nil {
		return nil, doc.CreatedBy, fromRepo(err, "presign download")
	}

	status := StatusCompleted
	switch doc.ValidationStatus {
	case model.ValidationPending:
		status = StatusPendingValidation
	case model.ValidationRejected:
		status = StatusRejected
	}
	return &CompleteUploadResult{
		DocumentID:    doc.ID,
		DownloadURL:   url,
		StorageKey:    doc.StorageKey,
		ExpiryMinutes: expiryMinutes(s.policy.URLExpiry),
		Status:        status,
	}, doc.CreatedBy, nil
}

func requiredID(field, v string) error {
	if err := checkID(field, v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	return nil
}

func checkID(field, v string) error {
	switch {
	case strings.TrimSpace(v) == "":
		return fmt.Errorf("%s is required", field)
	case len(v) > maxIDLength:
		return fmt.Errorf("%s must be at most %d characters", field, maxIDLength)
	}
	return nil
}

func uploader(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return defaultUploader
}

func expiryMinutes(d time.Duration) int {
	return int(d / time.Minute)
}
