package repository

import (
	"context"
	"time"

	"docflow/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	// Returns ErrDuplicate if the storage key is already taken.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Update writes the mutable fields of an existing document.
	// The storage key is never rewritten. Returns ErrNotFound if the row is gone.
	Update(ctx context.Context, doc *model.Document) error

	// Touch sets updated_at only, leaving workflow columns to the validation path.
	// Returns ErrNotFound if the row is gone.
	Touch(ctx context.Context, id string, at time.Time) error

	// ExistsByStorageKey reports whether any document already uses key.
	ExistsByStorageKey(ctx context.Context, key string) (bool, error)

	// List returns a paginated list of documents and total rows count for the given filter.
	List(ctx context.Context, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// DocumentFilter narrows List results. Empty fields are ignored.
type DocumentFilter struct {
	CompanyID  string
	EntityType string
	EntityID   string
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
