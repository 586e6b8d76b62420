package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/model"
	"docflow/internal/repository"
)

var documentCols = []string{
	"id", "company_id", "entity_type", "entity_id", "name", "mime_type", "size_bytes", "storage_key",
	"hash", "created_by", "created_at", "updated_at", "validation_status", "validation_flow_id",
}

func documentRow(rows *sqlmock.Rows, d *model.Document) *sqlmock.Rows {
	var flowID any
	if d.ValidationFlowID != nil {
		flowID = *d.ValidationFlowID
	}
	return rows.AddRow(d.ID, d.CompanyID, d.EntityType, d.EntityID, d.Name, d.MimeType, d.SizeBytes, d.StorageKey,
		nil, d.CreatedBy, d.CreatedAt, d.UpdatedAt, string(d.ValidationStatus), flowID)
}

func sampleDocument() *model.Document {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	flowID := "flow-1"
	return &model.Document{
		ID:               "doc-1",
		CompanyID:        "7f9c1f8e-1111-4a3b-9c1d-2e3f4a5b6c7d",
		EntityType:       "invoice",
		EntityID:         "INV-1",
		Name:             "march.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        1024,
		StorageKey:       "documents/company-7f9c/invoice/INV-1-march-abc.pdf",
		CreatedBy:        "user-1",
		CreatedAt:        now,
		UpdatedAt:        now,
		ValidationStatus: model.ValidationPending,
		ValidationFlowID: &flowID,
	}
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	doc := sampleDocument()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO documents").
			WithArgs(doc.ID, doc.CompanyID, doc.EntityType, doc.EntityID, doc.Name, doc.MimeType, doc.SizeBytes,
				doc.StorageKey, nil, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt, "Pending", "flow-1").
			WillReturnRows(documentRow(sqlmock.NewRows(documentCols), doc))

		result, err := repo.Create(ctx, doc)

		require.NoError(t, err)
		assert.Equal(t, doc.ID, result.ID)
		assert.Equal(t, model.ValidationPending, result.ValidationStatus)
		require.NotNil(t, result.ValidationFlowID)
		assert.Equal(t, "flow-1", *result.ValidationFlowID)
		assert.Nil(t, result.Hash)
	})

	t.Run("duplicate storage key", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO documents").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_documents_storage_key"})

		result, err := repo.Create(ctx, doc)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, result)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found without flow", func(t *testing.T) {
		d := sampleDocument()
		d.ValidationStatus = model.ValidationNone
		d.ValidationFlowID = nil

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(documentRow(sqlmock.NewRows(documentCols), d))

		doc, err := repo.FindByID(ctx, "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, model.ValidationNone, doc.ValidationStatus)
		assert.Nil(t, doc.ValidationFlowID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})

	t.Run("unknown status", func(t *testing.T) {
		d := sampleDocument()
		d.ValidationStatus = "Archived"

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(documentRow(sqlmock.NewRows(documentCols), d))

		_, err := repo.FindByID(ctx, "doc-1")
		assert.Error(t, err)
	})
}

func TestDocumentPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	doc := sampleDocument()

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents").
			WithArgs(doc.ID, doc.Name, doc.MimeType, doc.SizeBytes, nil, doc.UpdatedAt, "Pending", "flow-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, doc))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, doc), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Touch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("only updated_at is written", func(t *testing.T) {
		mock.ExpectExec(`UPDATE documents SET updated_at = \$2 WHERE id = \$1`).
			WithArgs("doc-1", at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Touch(ctx, "doc-1", at))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents").
			WithArgs("gone", at).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Touch(ctx, "gone", at), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ExistsByStorageKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("documents/a.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("documents/b.pdf").
		WillReturnError(errors.New("connection lost"))

	ok, err := repo.ExistsByStorageKey(context.Background(), "documents/a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.ExistsByStorageKey(context.Background(), "documents/b.pdf")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	filter := repository.DocumentFilter{CompanyID: "c-1", EntityType: "invoice"}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents WHERE").
		WithArgs("c-1", "invoice", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE (.+) ORDER BY").
		WithArgs("c-1", "invoice", "", 10, 0).
		WillReturnRows(documentRow(sqlmock.NewRows(documentCols), sampleDocument()))

	res, err := repo.List(ctx, filter, repository.PageQuery{Limit: 10, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, "doc-1", res.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "test-id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
