package service

import (
	"context"
	"fmt"

	"docflow/internal/audit"
	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentFilter narrows a document listing. Empty fields match everything.
type DocumentFilter struct {
	CompanyID  string
	EntityType string
	EntityID   string
}

// DocumentService defines read and delete use cases for document metadata.
type DocumentService interface {
	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, f DocumentFilter, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	base
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, opts ...Option) DocumentService {
	return &documentService{base: newBase(opts), store: store, repo: repo}
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, f DocumentFilter, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.DocumentFilter{
		CompanyID:  f.CompanyID,
		EntityType: f.EntityType,
		EntityID:   f.EntityID,
	}, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if err := requiredID("id", id); err != nil {
		return nil, err
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "load document")
	}
	return doc, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	actor, err := s.delete(ctx, id)
	s.record(ctx, audit.OpDelete, id, actor, "delete document", err)
	return err
}

func (s *documentService) delete(ctx context.Context, id string) (string, error) {
	if err := requiredID("id", id); err != nil {
		return "", err
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", fromRepo(err, "load document")
	}
	// Delete from storage first; if this fails, keep the row so the object is not orphaned
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		return doc.CreatedBy, fmt.Errorf("delete storage: %w", err)
	}
	// repository ignores missing rows
	return doc.CreatedBy, s.repo.Delete(ctx, id)
}
