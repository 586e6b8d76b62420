package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db dbtx
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, company_id, entity_type, entity_id, name, mime_type, size_bytes, storage_key,
		hash, created_by, created_at, updated_at, validation_status, validation_flow_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d      model.Document
		hash   sql.NullString
		flowID sql.NullString
		status string
	)
	if err := row.Scan(
		&d.ID,
		&d.CompanyID,
		&d.EntityType,
		&d.EntityID,
		&d.Name,
		&d.MimeType,
		&d.SizeBytes,
		&d.StorageKey,
		&hash,
		&d.CreatedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
		&status,
		&flowID,
	); err != nil {
		return nil, err
	}
	vs, err := model.ParseValidationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", d.ID, err)
	}
	d.ValidationStatus = vs
	d.Hash = stringPtr(hash)
	d.ValidationFlowID = stringPtr(flowID)
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, company_id, entity_type, entity_id, name, mime_type, size_bytes, storage_key,
			hash, created_by, created_at, updated_at, validation_status, validation_flow_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.CompanyID,
		doc.EntityType,
		doc.EntityID,
		doc.Name,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		nullStringPtr(doc.Hash),
		doc.CreatedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
		string(doc.ValidationStatus),
		nullStringPtr(doc.ValidationFlowID),
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// Update writes the mutable document fields. storage_key and created_* are left untouched.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) error {
	const q = `
		UPDATE documents
		SET name = $2, mime_type = $3, size_bytes = $4, hash = $5, updated_at = $6,
			validation_status = $7, validation_flow_id = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.MimeType,
		doc.SizeBytes,
		nullStringPtr(doc.Hash),
		doc.UpdatedAt,
		string(doc.ValidationStatus),
		nullStringPtr(doc.ValidationFlowID),
	)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Touch bumps updated_at without rewriting the validation columns.
func (r *DocumentPostgres) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsByStorageKey reports whether a document already owns key.
func (r *DocumentPostgres) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM documents WHERE storage_key = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const where = `
		WHERE ($1 = '' OR company_id::text = $1)
		  AND ($2 = '' OR entity_type = $2)
		  AND ($3 = '' OR entity_id = $3)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where,
		f.CompanyID, f.EntityType, f.EntityID,
	).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + documentColumns + ` FROM documents` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.db.QueryContext(ctx, qList, f.CompanyID, f.EntityType, f.EntityID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return err
	}
	return nil
}
